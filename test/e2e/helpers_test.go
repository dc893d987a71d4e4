//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// Environment variable names for E2E test configuration.
const (
	EnvServerURL = "INTEGRATION_SERVER_URL"
)

// Default configuration values.
const (
	DefaultServerURL = "http://localhost:8080"
	DefaultTimeout   = 15 * time.Second
)

// getEnvOrDefault returns the value of the environment variable
// identified by key, or defaultVal if the variable is not set.
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// e2eServerURL returns the base URL of the server under test.
func e2eServerURL() string {
	return getEnvOrDefault(EnvServerURL, DefaultServerURL)
}

// skipIfServerUnavailable checks whether the server is reachable
// and skips the test if it is not.
func skipIfServerUnavailable(t *testing.T) {
	t.Helper()

	base := e2eServerURL()
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(base + "/health")
	if err != nil {
		t.Skipf("Server unavailable at %s: %v", base, err)
	}
	resp.Body.Close()
}

// newHTTPClient returns an *http.Client with a sensible timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// apiResponse is a generic API response envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// productResponse represents a product returned by the API.
type productResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Stock       int      `json:"stock"`
	Rating      *float64 `json:"rating,omitempty"`
}

// cartItemResponse represents one cart line returned by the API.
type cartItemResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

// cartSummaryResponse represents the cart summary returned by the API.
type cartSummaryResponse struct {
	Items             []cartItemResponse `json:"items"`
	ItemCount         int                `json:"item_count"`
	Subtotal          int64              `json:"subtotal"`
	Tax               int64              `json:"tax"`
	Total             int64              `json:"total"`
	FormattedSubtotal string             `json:"formatted_subtotal"`
	FormattedTax      string             `json:"formatted_tax"`
	FormattedTotal    string             `json:"formatted_total"`
	IsEmpty           bool               `json:"is_empty"`
}

// addCartItemRequest is the payload for adding a product to the cart.
type addCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// updateCartQuantityRequest is the payload for setting a line quantity.
type updateCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// doRequest performs an HTTP request and returns status code and body.
func doRequest(
	t *testing.T,
	client *http.Client,
	method, url string,
	body io.Reader,
	headers map[string]string,
) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return resp.StatusCode, respBody
}

// jsonHeaders returns the default header map for JSON payloads.
func jsonHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

// listProducts is a helper that lists products, optionally with a query
// string. It fails the test on error.
func listProducts(
	t *testing.T,
	client *http.Client,
	base, query string,
) []productResponse {
	t.Helper()

	status, body := doRequest(
		t, client, http.MethodGet,
		base+"/api/v1/products"+query, nil, nil,
	)

	if status != http.StatusOK {
		t.Fatalf(
			"listProducts: expected 200, got %d. Body: %s",
			status, body,
		)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("listProducts: failed to parse response: %v", err)
	}

	var products []productResponse
	if err := json.Unmarshal(resp.Data, &products); err != nil {
		t.Fatalf("listProducts: failed to parse products: %v", err)
	}

	return products
}

// addToCart is a helper that adds a product to the cart and returns the
// updated summary. It fails the test on error.
func addToCart(
	t *testing.T,
	client *http.Client,
	base, productID string,
) cartSummaryResponse {
	t.Helper()

	payload, _ := json.Marshal(addCartItemRequest{ProductID: productID})
	status, body := doRequest(
		t, client, http.MethodPost,
		base+"/api/v1/cart/items",
		bytes.NewReader(payload), jsonHeaders(),
	)

	if status != http.StatusOK {
		t.Fatalf(
			"addToCart: expected 200, got %d. Body: %s",
			status, body,
		)
	}

	return parseCartSummary(t, body)
}

// getCart is a helper that fetches the current cart summary.
func getCart(
	t *testing.T,
	client *http.Client,
	base string,
) cartSummaryResponse {
	t.Helper()

	status, body := doRequest(
		t, client, http.MethodGet, base+"/api/v1/cart", nil, nil,
	)

	if status != http.StatusOK {
		t.Fatalf(
			"getCart: expected 200, got %d. Body: %s",
			status, body,
		)
	}

	return parseCartSummary(t, body)
}

// clearCart is a helper that empties the shared cart. Tests against a
// deployed instance cannot assume a fresh cart, so they clear before
// and after mutating it.
func clearCart(
	t *testing.T,
	client *http.Client,
	base string,
) {
	t.Helper()

	status, body := doRequest(
		t, client, http.MethodDelete, base+"/api/v1/cart", nil, nil,
	)

	if status != http.StatusOK {
		t.Logf(
			"clearCart cleanup: expected 200, got %d. Body: %s",
			status, body,
		)
	}
}

// parseCartSummary decodes a cart summary out of a response envelope.
func parseCartSummary(t *testing.T, body []byte) cartSummaryResponse {
	t.Helper()

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("Failed to parse response envelope: %v", err)
	}

	var summary cartSummaryResponse
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("Failed to parse cart summary: %v", err)
	}

	return summary
}

// expectedTax returns the 10% tax on a subtotal with half-cent
// fractions rounded up, matching the server's pricing rule.
func expectedTax(subtotal int64) int64 {
	return (subtotal*10 + 50) / 100
}
