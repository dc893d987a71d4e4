// Package cart implements the shopping cart state container: an immutable
// model, a closed set of messages, a pure reducer, derived read views, and
// best-effort persistence of the item collection.
package cart

import (
	"github.com/alexanderop/storefront/internal/model"
)

// Item is one cart line: a product value and how many units of it are in
// the cart. The JSON field names are the persisted wire shape and must not
// change without a migration plan.
type Item struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// Model is a snapshot of cart state: an ordered item sequence in which no
// two items share a product identifier. Reducers never mutate a Model in
// place; every change builds a fresh item slice.
type Model struct {
	Items []Item
}

// indexOf returns the position of the item holding productID, or -1.
func indexOf(items []Item, productID string) int {
	for i := range items {
		if items[i].Product.ID == productID {
			return i
		}
	}

	return -1
}

// cloneItems returns a copy of the item slice so that the original stays
// untouched by later writes.
func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}

	cloned := make([]Item, len(items))
	copy(cloned, items)

	return cloned
}

// itemsEqual reports whether two item sequences hold the same lines in the
// same order, comparing product values field by field.
func itemsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Quantity != b[i].Quantity {
			return false
		}

		if !a[i].Product.Equal(b[i].Product) {
			return false
		}
	}

	return true
}
