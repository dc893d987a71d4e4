package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/cart"
	"github.com/alexanderop/storefront/internal/catalog"
	"github.com/alexanderop/storefront/internal/model"
)

// addItemRequest is the body of an add-to-cart request. The client names
// the product; its price and details come from the catalog so the cart
// never trusts client-supplied product data.
type addItemRequest struct {
	ProductID string `json:"product_id"`
}

// updateQuantityRequest is the body of a quantity update request.
type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles REST API requests for the shopping cart.
type CartHandler struct {
	jsonWriter
	cart    *cart.Store
	catalog *catalog.Store
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler instance.
func NewCartHandler(cartStore *cart.Store, catalogStore *catalog.Store, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		jsonWriter: jsonWriter{logger: logger},
		cart:       cartStore,
		catalog:    catalogStore,
		logger:     logger,
	}
}

// RegisterRoutes registers the cart routes with the router.
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/cart", h.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/cart", h.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/items", h.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{id}", h.UpdateQuantity).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/cart/items/{id}", h.RemoveItem).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/items/{id}/increment", h.IncrementItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{id}/decrement", h.DecrementItem).Methods(http.MethodPost)
}

// GetCart handles GET /api/v1/cart requests.
func (h *CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}

// AddItem handles POST /api/v1/cart/items requests. The product is looked
// up in the catalog; adding a product that is already in the cart raises
// its quantity by one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if input.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	product, ok := h.catalog.ProductByID(input.ProductID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.cart.Dispatch(ctx, cart.AddItem{Product: product})
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}

// UpdateQuantity handles PUT /api/v1/cart/items/{id} requests. The quantity
// is absolute; zero or less removes the line. Updating a product that is
// not in the cart leaves the cart unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	var input updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.cart.Dispatch(ctx, cart.UpdateQuantity{ProductID: id, Quantity: input.Quantity})
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}

// RemoveItem handles DELETE /api/v1/cart/items/{id} requests. Removal is
// idempotent: deleting a product that is not in the cart succeeds and
// leaves the cart unchanged.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	h.cart.Dispatch(ctx, cart.RemoveItem{ProductID: id})
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}

// IncrementItem handles POST /api/v1/cart/items/{id}/increment requests.
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	h.cart.Dispatch(ctx, cart.IncrementItem{ProductID: id})
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}

// DecrementItem handles POST /api/v1/cart/items/{id}/decrement requests.
// Decrementing a line with quantity one removes it.
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	h.cart.Dispatch(ctx, cart.DecrementItem{ProductID: id})
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}

// ClearCart handles DELETE /api/v1/cart requests.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.cart.Dispatch(ctx, cart.ClearCart{})
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.cart.Summary()))
}
