package catalog

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/model"
)

// Prometheus metrics.
var (
	catalogMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_messages_total",
			Help: "Total number of catalog messages dispatched",
		},
		[]string{"type"},
	)

	catalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Total number of product fetches by result",
		},
		[]string{"result"},
	)

	catalogProductCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_product_count",
			Help: "Number of products in the catalog",
		},
	)
)

// Store holds the current catalog model and is the only place it changes.
// All mutation goes through Dispatch; reads return snapshots or derived
// projections of the model at call time.
type Store struct {
	mu     sync.RWMutex
	model  Model
	source Source
	logger *zap.Logger
}

// NewStore creates a catalog store that retrieves products from source.
// The catalog starts empty; call Fetch to load it.
func NewStore(source Source, logger *zap.Logger) *Store {
	return &Store{
		model:  NewModel(),
		source: source,
		logger: logger,
	}
}

// Dispatch applies one message to the current model through the reducer.
func (s *Store) Dispatch(msg Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalogMessagesTotal.WithLabelValues(msgLabel(msg)).Inc()

	s.model = Update(s.model, msg)
	catalogProductCount.Set(float64(len(s.model.Products)))
}

// Model returns a snapshot of the current catalog state. The product slice
// is a copy, so later dispatches never show through it.
func (s *Store) Model() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.model
	snapshot.Products = cloneProducts(s.model.Products)

	return snapshot
}

// Products returns the full product collection as last fetched, without
// filtering or sorting.
func (s *Store) Products() []model.Product {
	return s.Model().Products
}

// FilteredProducts returns the product collection with the active filter
// and sort applied.
func (s *Store) FilteredProducts() []model.Product {
	m := s.Model()

	return SortProducts(FilterProducts(m.Products, m.Filter), m.Sort)
}

// ProductByID returns the product with the given identifier and whether one
// exists.
func (s *Store) ProductByID(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.model.Products {
		if s.model.Products[i].ID == id {
			return s.model.Products[i], true
		}
	}

	return model.Product{}, false
}

// Categories returns the de-duplicated categories present in the product
// collection, in order of first appearance.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[model.Category]struct{}, len(s.model.Products))
	categories := make([]model.Category, 0, len(s.model.Products))

	for i := range s.model.Products {
		c := s.model.Products[i].Category
		if _, ok := seen[c]; ok {
			continue
		}

		seen[c] = struct{}{}
		categories = append(categories, c)
	}

	return categories
}

// Loading reports whether a product fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.model.Loading
}

// FetchError returns the message of the last failed fetch, or an empty
// string when the last fetch succeeded or none ran yet.
func (s *Store) FetchError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.model.Err
}

// CurrentFilter returns the active filter criteria.
func (s *Store) CurrentFilter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.model.Filter
}

// CurrentSort returns the active sort ordering.
func (s *Store) CurrentSort() SortKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.model.Sort
}

// msgLabel names a message variant for metric labels.
func msgLabel(msg Msg) string {
	switch msg.(type) {
	case SetFilter:
		return "set_filter"
	case SetSort:
		return "set_sort"
	case ResetFilter:
		return "reset_filter"
	case FetchRequest:
		return "fetch_request"
	case FetchSuccess:
		return "fetch_success"
	case FetchFailure:
		return "fetch_failure"
	default:
		return "unknown"
	}
}
