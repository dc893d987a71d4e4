package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/catalog"
	"github.com/alexanderop/storefront/internal/model"
)

// Query parameter names for product listing.
const (
	paramSearch    = "search"
	paramCategory  = "category"
	paramMinPrice  = "min_price"
	paramMaxPrice  = "max_price"
	paramMinRating = "min_rating"
	paramInStock   = "in_stock"
	paramSort      = "sort"
)

// listParams enumerates every parameter ListProducts understands.
var listParams = []string{
	paramSearch,
	paramCategory,
	paramMinPrice,
	paramMaxPrice,
	paramMinRating,
	paramInStock,
	paramSort,
}

// RefreshResponse reports the outcome of a catalog refresh.
type RefreshResponse struct {
	ProductCount int `json:"product_count"`
}

// CatalogHandler handles REST API requests for the product catalog.
type CatalogHandler struct {
	jsonWriter
	store  *catalog.Store
	logger *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler instance.
func NewCatalogHandler(store *catalog.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		jsonWriter: jsonWriter{logger: logger},
		store:      store,
		logger:     logger,
	}
}

// RegisterRoutes registers the catalog routes with the router. The export
// and refresh routes must precede the {id} route so their path segments are
// not captured as product identifiers.
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/products/export", h.ExportProducts).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/products/refresh", h.RefreshProducts).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/products", h.ListProducts).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/products/{id}", h.GetProduct).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/categories", h.ListCategories).Methods(http.MethodGet)
}

// ListProducts handles GET /api/v1/products requests. Query parameters are
// translated into filter and sort messages before the filtered projection
// is read back, so the response always reflects exactly the requested
// criteria. A request without any known parameter resets the criteria to
// their defaults.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if !hasListParams(query) {
		h.store.Dispatch(catalog.ResetFilter{})
	} else {
		filter, err := parseFilter(query)
		if err != nil {
			h.logger.Warn("invalid filter parameters", zap.Error(err))
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		sort, err := parseSort(query)
		if err != nil {
			h.logger.Warn("invalid sort parameter", zap.Error(err))
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.store.Dispatch(catalog.SetFilter{Filter: filter})
		h.store.Dispatch(catalog.SetSort{Sort: sort})
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.store.FilteredProducts()))
}

// GetProduct handles GET /api/v1/products/{id} requests.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	product, ok := h.store.ProductByID(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(product))
}

// ListCategories handles GET /api/v1/categories requests. The categories
// are derived from the fetched products in order of first appearance.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	categories := h.store.Categories()
	if categories == nil {
		categories = []model.Category{}
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(categories))
}

// RefreshProducts handles POST /api/v1/products/refresh requests. The fetch
// runs synchronously; a failed fetch keeps the previously loaded products
// and reports the failure.
func (h *CatalogHandler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	h.store.Fetch(r.Context())

	if errMsg := h.store.FetchError(); errMsg != "" {
		h.writeError(w, http.StatusBadGateway, errMsg)
		return
	}

	response := RefreshResponse{ProductCount: len(h.store.Products())}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ExportProducts handles GET /api/v1/products/export requests. The response
// is a bare product array without the API envelope, in exactly the shape
// an HTTP catalog source consumes, so one storefront instance can serve as
// the product origin for another.
func (h *CatalogHandler) ExportProducts(w http.ResponseWriter, _ *http.Request) {
	products := h.store.Products()
	if products == nil {
		products = []model.Product{}
	}

	h.writeJSON(w, http.StatusOK, products)
}

// hasListParams reports whether the query carries any known list parameter.
func hasListParams(query url.Values) bool {
	for _, param := range listParams {
		if query.Has(param) {
			return true
		}
	}
	return false
}

// parseFilter builds filter criteria from query parameters. Prices are
// integer cent amounts; the category must name a known category or the
// "all" sentinel.
func parseFilter(query url.Values) (catalog.Filter, error) {
	filter := catalog.DefaultFilter()
	filter.Search = query.Get(paramSearch)

	if raw := query.Get(paramCategory); raw != "" {
		category := model.Category(raw)
		if category != model.CategoryAll && !category.Valid() {
			return catalog.Filter{}, fmt.Errorf("unknown category %q", raw)
		}
		filter.Category = category
	}

	if raw := query.Get(paramMinPrice); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return catalog.Filter{}, fmt.Errorf("%s must be an integer cent amount", paramMinPrice)
		}
		filter.MinPrice = &cents
	}

	if raw := query.Get(paramMaxPrice); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return catalog.Filter{}, fmt.Errorf("%s must be an integer cent amount", paramMaxPrice)
		}
		filter.MaxPrice = &cents
	}

	if raw := query.Get(paramMinRating); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.Filter{}, fmt.Errorf("%s must be a number", paramMinRating)
		}
		filter.MinRating = &rating
	}

	if raw := query.Get(paramInStock); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.Filter{}, fmt.Errorf("%s must be a boolean", paramInStock)
		}
		filter.InStock = inStock
	}

	return filter, nil
}

// parseSort reads the sort key from query parameters, falling back to the
// default ordering when absent.
func parseSort(query url.Values) (catalog.SortKey, error) {
	raw := query.Get(paramSort)
	if raw == "" {
		return catalog.DefaultSort, nil
	}

	key := catalog.SortKey(raw)
	if !key.Valid() {
		return "", fmt.Errorf("unknown sort key %q", raw)
	}

	return key, nil
}
