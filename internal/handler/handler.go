// Package handler provides the HTTP and WebSocket surface of the storefront:
// catalog browsing and refresh, cart mutations, and the cart change stream.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/catalog"
	"github.com/alexanderop/storefront/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status       string `json:"status"`
	ProductCount int    `json:"product_count"`
}

// jsonWriter bundles the JSON response helpers shared by the handlers.
type jsonWriter struct {
	logger *zap.Logger
}

// writeJSON writes a JSON response with the given status code.
func (j *jsonWriter) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		j.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (j *jsonWriter) writeError(w http.ResponseWriter, status int, message string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
	}
	j.writeJSON(w, status, response)
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	jsonWriter
	catalog *catalog.Store
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(catalogStore *catalog.Store, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		jsonWriter: jsonWriter{logger: logger},
		catalog:    catalogStore,
	}
}

// RegisterRoutes registers the probe routes with the router.
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ReadyCheck handles GET /ready requests. The storefront is ready once the
// catalog holds products; until the initial fetch lands, traffic should not
// be routed here.
func (h *HealthHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	count := len(h.catalog.Products())
	if count == 0 {
		h.writeError(w, http.StatusServiceUnavailable, "catalog not loaded")
		return
	}

	response := ReadyResponse{
		Status:       "ready",
		ProductCount: count,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}
