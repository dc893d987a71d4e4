package cart

import (
	"github.com/alexanderop/storefront/internal/money"
)

// ItemCount returns the number of units in the cart, summed over all lines.
func ItemCount(m Model) int {
	count := 0
	for i := range m.Items {
		count += m.Items[i].Quantity
	}

	return count
}

// Subtotal returns the pre-tax price of the cart in cents: the sum over all
// lines of unit price times quantity. It is always recomputed from the
// current model, never cached.
func Subtotal(m Model) int64 {
	var subtotal int64
	for i := range m.Items {
		subtotal += m.Items[i].Product.Price * int64(m.Items[i].Quantity)
	}

	return subtotal
}

// Tax returns the sales tax on the cart subtotal in cents.
func Tax(m Model) int64 {
	return money.Tax(Subtotal(m))
}

// Total returns the cart total in cents: subtotal plus tax.
func Total(m Model) int64 {
	subtotal := Subtotal(m)

	return money.Total(subtotal, money.Tax(subtotal))
}

// IsEmpty reports whether the cart holds no lines.
func IsEmpty(m Model) bool {
	return len(m.Items) == 0
}

// ItemInCart returns the line holding productID and whether one exists.
func ItemInCart(m Model, productID string) (Item, bool) {
	if i := indexOf(m.Items, productID); i >= 0 {
		return m.Items[i], true
	}

	return Item{}, false
}

// Summary is a point-in-time aggregate of the cart for transport layers:
// the lines plus every derived projection, with formatted amounts for
// display.
type Summary struct {
	Items             []Item `json:"items"`
	ItemCount         int    `json:"item_count"`
	Subtotal          int64  `json:"subtotal"`
	Tax               int64  `json:"tax"`
	Total             int64  `json:"total"`
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedTax      string `json:"formatted_tax"`
	FormattedTotal    string `json:"formatted_total"`
	IsEmpty           bool   `json:"is_empty"`
}

// Summarize computes all derived cart projections for a model snapshot.
func Summarize(m Model) Summary {
	items := m.Items
	if items == nil {
		items = []Item{}
	}

	subtotal := Subtotal(m)
	tax := money.Tax(subtotal)
	total := money.Total(subtotal, tax)

	return Summary{
		Items:             items,
		ItemCount:         ItemCount(m),
		Subtotal:          subtotal,
		Tax:               tax,
		Total:             total,
		FormattedSubtotal: money.Format(subtotal),
		FormattedTax:      money.Format(tax),
		FormattedTotal:    money.Format(total),
		IsEmpty:           IsEmpty(m),
	}
}
