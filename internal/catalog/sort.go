package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/alexanderop/storefront/internal/model"
)

// SortProducts returns a new slice holding the products ordered by key. The
// input slice and its element order are never modified, the result always
// holds exactly as many items as the input, and the sort is stable: equal
// keys preserve their relative input order. Name orderings compare
// locale-aware; rating ordering treats a missing rating as 0.
func SortProducts(products []model.Product, key SortKey) []model.Product {
	sorted := make([]model.Product, len(products))
	copy(sorted, products)

	switch key {
	case SortNameAscending:
		c := nameCollator()
		slices.SortStableFunc(sorted, func(a, b model.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortNameDescending:
		c := nameCollator()
		slices.SortStableFunc(sorted, func(a, b model.Product) int {
			return c.CompareString(b.Name, a.Name)
		})
	case SortPriceAscending:
		slices.SortStableFunc(sorted, func(a, b model.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDescending:
		slices.SortStableFunc(sorted, func(a, b model.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case SortRatingDescending:
		slices.SortStableFunc(sorted, func(a, b model.Product) int {
			return cmp.Compare(b.RatingOrZero(), a.RatingOrZero())
		})
	default:
		// Unknown keys keep the input order.
	}

	return sorted
}

// nameCollator builds the collator used for name comparison. A fresh
// collator per sort: collate.Collator is not safe for concurrent use.
func nameCollator() *collate.Collator {
	return collate.New(language.English, collate.Loose)
}
