package cart

import (
	"github.com/alexanderop/storefront/internal/model"
)

// Msg is one state transition of the cart. The message set is closed: every
// variant lives in this package and carries its own reducer logic, so adding
// a variant without transition semantics does not compile.
type Msg interface {
	apply(Model) Model
}

// Update is the cart reducer: a pure function from the current model and a
// message to the next model. It never mutates its input; mutating paths
// return a model backed by a fresh item slice, while no-op paths may return
// the input unchanged.
func Update(m Model, msg Msg) Model {
	return msg.apply(m)
}

// AddItem puts one unit of a product into the cart. If the product is
// already present its quantity grows by 1 and the line keeps its position;
// otherwise a new line with quantity 1 is appended.
type AddItem struct {
	Product model.Product
}

func (msg AddItem) apply(m Model) Model {
	if i := indexOf(m.Items, msg.Product.ID); i >= 0 {
		items := cloneItems(m.Items)
		items[i].Quantity++

		return Model{Items: items}
	}

	items := make([]Item, 0, len(m.Items)+1)
	items = append(items, m.Items...)
	items = append(items, Item{Product: msg.Product, Quantity: 1})

	return Model{Items: items}
}

// RemoveItem drops the line holding ProductID. Absent identifiers are a
// no-op.
type RemoveItem struct {
	ProductID string
}

func (msg RemoveItem) apply(m Model) Model {
	return removeLine(m, msg.ProductID)
}

// UpdateQuantity sets the quantity of the line holding ProductID to an
// absolute value. A quantity of zero or less removes the line, matching
// RemoveItem. Absent identifiers are a no-op.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

func (msg UpdateQuantity) apply(m Model) Model {
	if msg.Quantity <= 0 {
		return removeLine(m, msg.ProductID)
	}

	i := indexOf(m.Items, msg.ProductID)
	if i < 0 {
		return m
	}

	items := cloneItems(m.Items)
	items[i].Quantity = msg.Quantity

	return Model{Items: items}
}

// IncrementItem raises the quantity of the line holding ProductID by 1.
// Absent identifiers are a no-op.
type IncrementItem struct {
	ProductID string
}

func (msg IncrementItem) apply(m Model) Model {
	i := indexOf(m.Items, msg.ProductID)
	if i < 0 {
		return m
	}

	return UpdateQuantity{ProductID: msg.ProductID, Quantity: m.Items[i].Quantity + 1}.apply(m)
}

// DecrementItem lowers the quantity of the line holding ProductID by 1.
// Decrementing from 1 removes the line; no reachable model holds a line
// with quantity below 1. Absent identifiers are a no-op.
type DecrementItem struct {
	ProductID string
}

func (msg DecrementItem) apply(m Model) Model {
	i := indexOf(m.Items, msg.ProductID)
	if i < 0 {
		return m
	}

	return UpdateQuantity{ProductID: msg.ProductID, Quantity: m.Items[i].Quantity - 1}.apply(m)
}

// ClearCart empties the item collection.
type ClearCart struct{}

func (ClearCart) apply(Model) Model {
	return Model{}
}

// HydrateFromStorage replaces the item collection verbatim with a sequence
// loaded from persistent storage. The persistence effect validates the
// sequence before dispatching; the reducer applies it as-is.
type HydrateFromStorage struct {
	Items []Item
}

func (msg HydrateFromStorage) apply(Model) Model {
	return Model{Items: cloneItems(msg.Items)}
}

// removeLine returns m without the line holding productID, or m itself when
// the identifier is absent.
func removeLine(m Model, productID string) Model {
	i := indexOf(m.Items, productID)
	if i < 0 {
		return m
	}

	items := make([]Item, 0, len(m.Items)-1)
	items = append(items, m.Items[:i]...)
	items = append(items, m.Items[i+1:]...)

	return Model{Items: items}
}
