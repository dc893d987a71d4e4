package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/model"
)

// ErrUnexpectedStatus marks a non-200 response from the product origin.
var ErrUnexpectedStatus = errors.New("unexpected origin status")

// maxPayloadBytes caps the size of an origin response body.
const maxPayloadBytes = 1 << 20

// breakerConsecutiveFailures is how many failures in a row open the
// circuit.
const breakerConsecutiveFailures = 3

// HTTP retrieves the product collection from a JSON endpoint serving an
// array of products. Requests run through a circuit breaker, so a failing
// origin gets time to recover instead of being hammered on every fetch.
type HTTP struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]model.Product]
}

// NewHTTP creates an HTTP source for the given origin URL. The timeout
// bounds each individual request.
func NewHTTP(url string, timeout time.Duration, logger *zap.Logger) *HTTP {
	breaker := gobreaker.NewCircuitBreaker[[]model.Product](gobreaker.Settings{
		Name:    "product-origin",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &HTTP{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

// FetchProducts retrieves and decodes the product collection. While the
// breaker is open it fails fast without contacting the origin.
func (h *HTTP) FetchProducts(ctx context.Context) ([]model.Product, error) {
	return h.breaker.Execute(func() ([]model.Product, error) {
		return h.fetch(ctx)
	})
}

func (h *HTTP) fetch(ctx context.Context) ([]model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes))
	dec.DisallowUnknownFields()

	var products []model.Product
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode product payload: %w", err)
	}

	return products, nil
}
