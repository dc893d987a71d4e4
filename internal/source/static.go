// Package source provides product collections for the catalog fetch
// effect: a built-in demo catalog served from memory and an HTTP origin
// guarded by a circuit breaker.
package source

import (
	"context"
	"fmt"

	"github.com/alexanderop/storefront/internal/model"
)

// Static serves a fixed product collection from memory.
type Static struct {
	products []model.Product
}

// NewStatic creates a source serving the given collection.
func NewStatic(products []model.Product) *Static {
	return &Static{products: products}
}

// NewSeeded creates a source serving the built-in demo catalog.
func NewSeeded() *Static {
	return NewStatic(Seed())
}

// FetchProducts returns a copy of the collection, so callers never share
// backing memory with the source.
func (s *Static) FetchProducts(ctx context.Context) ([]model.Product, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch products: %w", ctx.Err())
	default:
	}

	products := make([]model.Product, len(s.products))
	copy(products, s.products)

	return products, nil
}

// Seed returns the demo catalog: a dozen products across every category,
// including out-of-stock and unrated entries so filter and sort paths all
// have something to chew on.
func Seed() []model.Product {
	return []model.Product{
		{
			ID:          "wh-001",
			Name:        "Wireless Headphones",
			Description: "Noise-cancelling over-ear headphones with 30-hour battery life",
			Price:       19999,
			Category:    model.CategoryElectronics,
			Image:       "/images/wireless-headphones.jpg",
			Stock:       15,
			Rating:      model.NewRating(4.5),
		},
		{
			ID:          "sw-002",
			Name:        "Smart Watch",
			Description: "Fitness tracking, heart rate monitoring and built-in GPS",
			Price:       24999,
			Category:    model.CategoryElectronics,
			Image:       "/images/smart-watch.jpg",
			Stock:       8,
			Rating:      model.NewRating(4.2),
		},
		{
			ID:          "bs-003",
			Name:        "Bluetooth Speaker",
			Description: "Portable waterproof speaker with deep bass",
			Price:       7999,
			Category:    model.CategoryElectronics,
			Image:       "/images/bluetooth-speaker.jpg",
			Stock:       0,
			Rating:      model.NewRating(4.0),
		},
		{
			ID:          "ts-004",
			Name:        "Classic T-Shirt",
			Description: "Soft organic cotton tee in a relaxed fit",
			Price:       1999,
			Category:    model.CategoryClothing,
			Image:       "/images/classic-t-shirt.jpg",
			Stock:       42,
			Rating:      model.NewRating(4.3),
		},
		{
			ID:          "dj-005",
			Name:        "Denim Jacket",
			Description: "Timeless jacket with a worn-in feel",
			Price:       5999,
			Category:    model.CategoryClothing,
			Image:       "/images/denim-jacket.jpg",
			Stock:       12,
		},
		{
			ID:          "bk-006",
			Name:        "The Art of Cooking",
			Description: "Hundreds of classic recipes with step-by-step photos",
			Price:       3499,
			Category:    model.CategoryBooks,
			Image:       "/images/art-of-cooking.jpg",
			Stock:       20,
			Rating:      model.NewRating(4.8),
		},
		{
			ID:          "bk-007",
			Name:        "Mystery at Midnight",
			Description: "A detective thriller set in 1920s London",
			Price:       1499,
			Category:    model.CategoryBooks,
			Image:       "/images/mystery-at-midnight.jpg",
			Stock:       35,
		},
		{
			ID:          "bk-008",
			Name:        "Space Exploration",
			Description: "A visual history of spaceflight from Sputnik to today",
			Price:       4999,
			Category:    model.CategoryBooks,
			Image:       "/images/space-exploration.jpg",
			Stock:       0,
			Rating:      model.NewRating(4.6),
		},
		{
			ID:          "hm-009",
			Name:        "Ceramic Plant Pot",
			Description: "Minimal matte pot for indoor plants",
			Price:       2499,
			Category:    model.CategoryHome,
			Image:       "/images/ceramic-plant-pot.jpg",
			Stock:       25,
		},
		{
			ID:          "hm-010",
			Name:        "Desk Lamp",
			Description: "Adjustable LED lamp with warm and cool modes",
			Price:       3999,
			Category:    model.CategoryHome,
			Image:       "/images/desk-lamp.jpg",
			Stock:       18,
			Rating:      model.NewRating(4.1),
		},
		{
			ID:          "sp-011",
			Name:        "Yoga Mat",
			Description: "Non-slip mat with extra cushioning",
			Price:       2999,
			Category:    model.CategorySports,
			Image:       "/images/yoga-mat.jpg",
			Stock:       30,
			Rating:      model.NewRating(4.4),
		},
		{
			ID:          "sp-012",
			Name:        "Running Shoes",
			Description: "Lightweight shoes with responsive cushioning",
			Price:       8999,
			Category:    model.CategorySports,
			Image:       "/images/running-shoes.jpg",
			Stock:       0,
			Rating:      model.NewRating(4.7),
		},
	}
}
