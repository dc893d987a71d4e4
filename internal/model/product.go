// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"fmt"
)

// Validation errors for Product.
var (
	ErrEmptyID         = errors.New("product id cannot be empty")
	ErrEmptyName       = errors.New("product name cannot be empty")
	ErrNegativePrice   = errors.New("product price cannot be negative")
	ErrNegativeStock   = errors.New("product stock cannot be negative")
	ErrInvalidCategory = errors.New("product category is not a known category")
	ErrRatingRange     = errors.New("product rating must be between 0 and 5")
	ErrDuplicateID     = errors.New("duplicate product id in collection")
)

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Category classifies a product. The set of categories is closed; CategoryAll
// is a sentinel meaning "no category restriction" and is never a valid value
// on a product itself.
type Category string

// Known categories.
const (
	CategoryAll         Category = "all"
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
)

// AllCategories lists every valid product category, excluding the CategoryAll
// sentinel.
func AllCategories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryBooks,
		CategoryHome,
		CategorySports,
	}
}

// Valid reports whether c is a member of the closed category set. The
// CategoryAll sentinel is not a valid product category.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryBooks, CategoryHome, CategorySports:
		return true
	default:
		return false
	}
}

// Product represents a catalog item. Price is held in minor currency units
// (cents) to avoid floating-point rounding error. The JSON field names are
// the wire shape shared by the catalog fetch payload and the persisted cart
// record; they must not change without a migration plan.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Stock       int      `json:"stock"`
	Rating      *float64 `json:"rating,omitempty"`
}

// Validate checks if the Product has valid field values. Description and
// Image may be empty strings; Rating may be absent.
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}

	if p.Name == "" {
		return ErrEmptyName
	}

	if p.Price < 0 {
		return ErrNegativePrice
	}

	if !p.Category.Valid() {
		return ErrInvalidCategory
	}

	if p.Stock < 0 {
		return ErrNegativeStock
	}

	if p.Rating != nil && (*p.Rating < MinRating || *p.Rating > MaxRating) {
		return ErrRatingRange
	}

	return nil
}

// RatingOrZero returns the product rating, treating an absent rating as 0.
func (p *Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// Equal reports whether two products carry the same field values. Ratings
// compare by value, not by pointer identity.
func (p *Product) Equal(other Product) bool {
	if p.ID != other.ID || p.Name != other.Name || p.Description != other.Description {
		return false
	}

	if p.Price != other.Price || p.Category != other.Category || p.Image != other.Image || p.Stock != other.Stock {
		return false
	}

	if (p.Rating == nil) != (other.Rating == nil) {
		return false
	}

	return p.Rating == nil || *p.Rating == *other.Rating
}

// NewRating builds a rating pointer from a literal value.
func NewRating(v float64) *float64 {
	return &v
}

// ValidateCatalog checks every product in the collection and enforces the
// global uniqueness of product identifiers.
func ValidateCatalog(products []Product) error {
	seen := make(map[string]struct{}, len(products))

	for i := range products {
		if err := products[i].Validate(); err != nil {
			return fmt.Errorf("product %d (id %q): %w", i, products[i].ID, err)
		}

		if _, dup := seen[products[i].ID]; dup {
			return fmt.Errorf("product %d (id %q): %w", i, products[i].ID, ErrDuplicateID)
		}
		seen[products[i].ID] = struct{}{}
	}

	return nil
}

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
