//go:build functional

// Package functional provides functional tests for the storefront REST API
// and cart stream server.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/cart"
	"github.com/alexanderop/storefront/internal/catalog"
	"github.com/alexanderop/storefront/internal/config"
	"github.com/alexanderop/storefront/internal/server"
	"github.com/alexanderop/storefront/internal/source"
	"github.com/alexanderop/storefront/internal/storage"
)

// Environment variable names for test configuration.
const (
	EnvTestServerHost    = "TEST_SERVER_HOST"
	EnvTestServerPort    = "TEST_SERVER_PORT"
	EnvTestTimeout       = "TEST_TIMEOUT"
	EnvTestLogLevel      = "TEST_LOG_LEVEL"
	EnvTestMetricsEnable = "TEST_METRICS_ENABLED"
)

// Default test configuration values.
const (
	DefaultTestHost         = "localhost"
	DefaultTestPort         = 0 // 0 means auto-assign
	DefaultTestTimeout      = 30 * time.Second
	DefaultRequestTimeout   = 5 * time.Second
	DefaultWebSocketTimeout = 10 * time.Second
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultLogLevel         = "error"
	DefaultMetricsEnabled   = false
)

// TestConfig holds test configuration loaded from environment.
type TestConfig struct {
	Host           string
	Port           int
	Timeout        time.Duration
	LogLevel       string
	MetricsEnabled bool
}

// LoadTestConfig loads test configuration from environment variables.
func LoadTestConfig() *TestConfig {
	cfg := &TestConfig{
		Host:           DefaultTestHost,
		Port:           DefaultTestPort,
		Timeout:        DefaultTestTimeout,
		LogLevel:       DefaultLogLevel,
		MetricsEnabled: DefaultMetricsEnabled,
	}

	if host := os.Getenv(EnvTestServerHost); host != "" {
		cfg.Host = host
	}

	if portStr := os.Getenv(EnvTestServerPort); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}

	if timeoutStr := os.Getenv(EnvTestTimeout); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Timeout = timeout
		}
	}

	if logLevel := os.Getenv(EnvTestLogLevel); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if metricsStr := os.Getenv(EnvTestMetricsEnable); metricsStr != "" {
		if enabled, err := strconv.ParseBool(metricsStr); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}

	return cfg
}

// TestServer wraps the server for testing purposes.
type TestServer struct {
	Server   *server.Server
	Cart     *cart.Store
	Catalog  *catalog.Store
	BaseURL  string
	WSURL    string
	Port     int
	listener net.Listener
	t        *testing.T
	mu       sync.Mutex
	started  bool
}

// NewTestServer creates a test server with the built-in demo catalog and
// in-memory cart persistence.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServer(t, storage.NewMemory(), source.NewSeeded())
}

// NewTestServerWithStorageDir creates a test server whose cart persists to
// files under dir. Two servers sharing a dir see the same cart, which is
// how restart tests verify hydration.
func NewTestServerWithStorageDir(t *testing.T, dir string) *TestServer {
	t.Helper()

	kv, err := storage.NewFile(dir)
	if err != nil {
		t.Fatalf("Failed to create file storage: %v", err)
	}

	return newTestServer(t, kv, source.NewSeeded())
}

// NewTestServerWithOrigin creates a test server whose catalog is fetched
// from the given products URL instead of the built-in demo catalog.
func NewTestServerWithOrigin(t *testing.T, originURL string) *TestServer {
	t.Helper()

	src := source.NewHTTP(originURL, DefaultRequestTimeout, zap.NewNop())

	return newTestServer(t, storage.NewMemory(), src)
}

// newTestServer wires the stores and server on an auto-assigned port. The
// cart is hydrated and the catalog fetched before the server starts, the
// same order the real entry point uses.
func newTestServer(t *testing.T, kv storage.KV, src catalog.Source) *TestServer {
	t.Helper()

	testCfg := LoadTestConfig()

	// Find an available port
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", testCfg.Host, testCfg.Port))
	if err != nil {
		t.Fatalf("Failed to find available port: %v", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port

	// Create server configuration
	cfg := &config.Config{
		ServerPort:      port,
		LogLevel:        testCfg.LogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  testCfg.MetricsEnabled,
	}

	// Create logger (use nop logger for tests to reduce noise)
	logger := zap.NewNop()

	// Create the stores
	cartStore := cart.NewStore(kv, logger)
	catalogStore := catalog.NewStore(src, logger)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	if err := cartStore.Hydrate(ctx); err != nil {
		t.Fatalf("Failed to hydrate cart: %v", err)
	}
	catalogStore.Fetch(ctx)

	// Create server
	srv := server.New(cfg, logger, cartStore, catalogStore)

	ts := &TestServer{
		Server:   srv,
		Cart:     cartStore,
		Catalog:  catalogStore,
		BaseURL:  fmt.Sprintf("http://%s:%d", testCfg.Host, port),
		WSURL:    fmt.Sprintf("ws://%s:%d", testCfg.Host, port),
		Port:     port,
		listener: listener,
		t:        t,
	}

	return ts
}

// Start starts the test server.
func (ts *TestServer) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.started {
		return
	}

	// Close the listener we used to find the port
	ts.listener.Close()

	// Start server in goroutine
	go func() {
		if err := ts.Server.Start(); err != nil && err != http.ErrServerClosed {
			ts.t.Logf("Server error: %v", err)
		}
	}()

	// Wait for server to be ready
	ts.waitForReady()
	ts.started = true
}

// waitForReady waits for the server to be ready to accept connections.
func (ts *TestServer) waitForReady() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			resp, err := http.Get(ts.BaseURL + "/health")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return
				}
			}
		}
	}
}

// Stop stops the test server.
func (ts *TestServer) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		ts.t.Logf("Server shutdown error: %v", err)
	}

	ts.started = false
}

// HTTPClient provides a configured HTTP client for tests.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	t       *testing.T
}

// NewHTTPClient creates a new HTTP client for testing.
func NewHTTPClient(t *testing.T, baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		baseURL: baseURL,
		t:       t,
	}
}

// Request represents an HTTP request configuration.
type Request struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do executes an HTTP request and returns the response.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		switch v := req.Body.(type) {
		case string:
			bodyReader = bytes.NewBufferString(v)
		case []byte:
			bodyReader = bytes.NewBuffer(v)
		default:
			jsonBody, err := json.Marshal(req.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
			bodyReader = bytes.NewBuffer(jsonBody)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set default content type for requests with body
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// Set custom headers
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodGet,
		Path:    path,
		Headers: headers,
	})
}

// Post performs a POST request.
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodPost,
		Path:    path,
		Body:    body,
		Headers: headers,
	})
}

// Put performs a PUT request.
func (c *HTTPClient) Put(ctx context.Context, path string, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodPut,
		Path:    path,
		Body:    body,
		Headers: headers,
	})
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:  http.MethodDelete,
		Path:    path,
		Headers: headers,
	})
}

// APIResponse represents a generic API response structure.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ProductResponse represents a product on the wire.
type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Stock       int      `json:"stock"`
	Rating      *float64 `json:"rating,omitempty"`
}

// CartItemResponse represents one cart line on the wire.
type CartItemResponse struct {
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

// CartSummaryResponse represents the cart summary on the wire.
type CartSummaryResponse struct {
	Items             []CartItemResponse `json:"items"`
	ItemCount         int                `json:"item_count"`
	Subtotal          int64              `json:"subtotal"`
	Tax               int64              `json:"tax"`
	Total             int64              `json:"total"`
	FormattedSubtotal string             `json:"formatted_subtotal"`
	FormattedTax      string             `json:"formatted_tax"`
	FormattedTotal    string             `json:"formatted_total"`
	IsEmpty           bool               `json:"is_empty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents a readiness check response.
type ReadyResponse struct {
	Status       string `json:"status"`
	ProductCount int    `json:"product_count"`
}

// RefreshResponse represents a catalog refresh response.
type RefreshResponse struct {
	ProductCount int `json:"product_count"`
}

// AddCartItemRequest represents a request to add a product to the cart.
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// UpdateCartQuantityRequest represents a request to set a line quantity.
type UpdateCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ParseAPIResponse parses an API response from bytes.
func ParseAPIResponse(body []byte) (*APIResponse, error) {
	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	return &resp, nil
}

// ParseProduct parses a product from API response data.
func ParseProduct(data json.RawMessage) (*ProductResponse, error) {
	var product ProductResponse
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return &product, nil
}

// ParseProducts parses a list of products from API response data.
func ParseProducts(data json.RawMessage) ([]ProductResponse, error) {
	// Handle empty or nil data (empty list case)
	if len(data) == 0 || string(data) == "null" {
		return []ProductResponse{}, nil
	}

	var products []ProductResponse
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products: %w", err)
	}
	return products, nil
}

// ParseCategories parses a category list from API response data.
func ParseCategories(data json.RawMessage) ([]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return []string{}, nil
	}

	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	return categories, nil
}

// ParseCartSummary parses a cart summary from API response data.
func ParseCartSummary(data json.RawMessage) (*CartSummaryResponse, error) {
	var summary CartSummaryResponse
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse cart summary: %w", err)
	}
	return &summary, nil
}

// ParseHealthResponse parses a health response from API response data.
func ParseHealthResponse(data json.RawMessage) (*HealthResponse, error) {
	var health HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &health, nil
}

// AddProductToCart posts the product to the cart and returns the resulting
// summary.
func AddProductToCart(t *testing.T, client *HTTPClient, productID string) *CartSummaryResponse {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	resp, err := client.Post(ctx, "/api/v1/cart/items", AddCartItemRequest{ProductID: productID}, nil)
	if err != nil {
		t.Fatalf("Add to cart request failed: %v", err)
	}

	AssertStatusCode(t, resp, http.StatusOK)

	apiResp, err := ParseAPIResponse(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	AssertSuccess(t, apiResp)

	summary, err := ParseCartSummary(apiResp.Data)
	if err != nil {
		t.Fatalf("Failed to parse cart summary: %v", err)
	}

	return summary
}

// AssertStatusCode asserts that the response has the expected status code.
func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}

// AssertHeader asserts that the response has the expected header value.
func AssertHeader(t *testing.T, resp *Response, key, expected string) {
	t.Helper()
	actual := resp.Headers.Get(key)
	if actual != expected {
		t.Errorf("Expected header %s to be %q, got %q", key, expected, actual)
	}
}

// AssertSuccess asserts that the API response indicates success.
func AssertSuccess(t *testing.T, apiResp *APIResponse) {
	t.Helper()
	if !apiResp.Success {
		t.Errorf("Expected success=true, got false. Error: %s", apiResp.Error)
	}
}

// AssertError asserts that the API response indicates an error.
func AssertError(t *testing.T, apiResp *APIResponse) {
	t.Helper()
	if apiResp.Success {
		t.Error("Expected success=false, got true")
	}
}

// LogTestStart logs the start of a test.
func LogTestStart(t *testing.T, testID, testName string) {
	t.Helper()
	t.Logf("Starting test %s: %s", testID, testName)
}

// LogTestEnd logs the end of a test.
func LogTestEnd(t *testing.T, testID string) {
	t.Helper()
	t.Logf("Completed test %s", testID)
}
