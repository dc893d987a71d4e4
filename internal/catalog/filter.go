package catalog

import (
	"strings"

	"github.com/alexanderop/storefront/internal/model"
)

// FilterProducts returns the products matching every enabled predicate of
// f. The input slice is never modified and the result never holds more
// items than the input. Predicates combine conjunctively: search text
// against name or description (case-insensitive substring), category,
// inclusive price bounds, minimum rating, and stock availability.
func FilterProducts(products []model.Product, f Filter) []model.Product {
	filtered := make([]model.Product, 0, len(products))

	for i := range products {
		if matchesFilter(&products[i], f) {
			filtered = append(filtered, products[i])
		}
	}

	return filtered
}

// matchesFilter evaluates every enabled predicate against one product.
func matchesFilter(p *model.Product, f Filter) bool {
	// Whitespace-only search text means no search predicate.
	if search := strings.TrimSpace(f.Search); search != "" {
		needle := strings.ToLower(search)
		name := strings.ToLower(p.Name)
		description := strings.ToLower(p.Description)

		if !strings.Contains(name, needle) && !strings.Contains(description, needle) {
			return false
		}
	}

	if f.Category != "" && f.Category != model.CategoryAll && p.Category != f.Category {
		return false
	}

	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}

	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}

	// Products without a rating compare as rating 0.
	if f.MinRating != nil && p.RatingOrZero() < *f.MinRating {
		return false
	}

	if f.InStock && p.Stock <= 0 {
		return false
	}

	return true
}
