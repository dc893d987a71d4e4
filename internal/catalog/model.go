// Package catalog implements the product catalog state container: the
// fetched product collection, fetch lifecycle flags, the active filter and
// sort settings, and the derived filtered/sorted projections.
package catalog

import (
	"github.com/alexanderop/storefront/internal/model"
)

// SortKey selects the ordering of the filtered product list.
type SortKey string

// Sort orderings.
const (
	SortNameAscending    SortKey = "name-ascending"
	SortNameDescending   SortKey = "name-descending"
	SortPriceAscending   SortKey = "price-ascending"
	SortPriceDescending  SortKey = "price-descending"
	SortRatingDescending SortKey = "rating-descending"
)

// DefaultSort is the ordering a fresh or reset catalog uses.
const DefaultSort = SortNameAscending

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortNameAscending, SortNameDescending, SortPriceAscending, SortPriceDescending, SortRatingDescending:
		return true
	default:
		return false
	}
}

// Filter holds the product selection criteria. Every predicate is optional:
// an empty search, the CategoryAll sentinel (or empty category), nil price
// bounds, a nil rating threshold, and InStock=false each disable their
// predicate.
type Filter struct {
	Search    string
	Category  model.Category
	MinPrice  *int64
	MaxPrice  *int64
	MinRating *float64
	InStock   bool
}

// DefaultFilter returns the criteria of a fresh or reset catalog: no search
// text, no category restriction, no price or rating bounds, out-of-stock
// products included.
func DefaultFilter() Filter {
	return Filter{Category: model.CategoryAll}
}

// Model is a snapshot of catalog state. Loading=true always coincides with
// an empty Err; a failed fetch keeps the previously fetched products.
type Model struct {
	Products []model.Product
	Loading  bool
	Err      string
	Filter   Filter
	Sort     SortKey
}

// NewModel returns the initial catalog state: no products, not loading, no
// error, default filter and sort.
func NewModel() Model {
	return Model{
		Filter: DefaultFilter(),
		Sort:   DefaultSort,
	}
}

// cloneProducts copies a product slice so the model never aliases caller
// memory.
func cloneProducts(products []model.Product) []model.Product {
	if products == nil {
		return nil
	}

	cloned := make([]model.Product, len(products))
	copy(cloned, products)

	return cloned
}
