package catalog

import (
	"github.com/alexanderop/storefront/internal/model"
)

// Msg is one state transition of the catalog. The message set is closed:
// every variant lives in this package and carries its own reducer logic, so
// adding a variant without transition semantics does not compile.
type Msg interface {
	apply(Model) Model
}

// Update is the catalog reducer: a pure function from the current model and
// a message to the next model. It never mutates its input.
func Update(m Model, msg Msg) Model {
	return msg.apply(m)
}

// SetFilter replaces the active filter criteria wholesale. It does not
// merge with the previous criteria; omitted fields fall back to their zero
// values.
type SetFilter struct {
	Filter Filter
}

func (msg SetFilter) apply(m Model) Model {
	m.Filter = msg.Filter

	return m
}

// SetSort replaces the active sort ordering.
type SetSort struct {
	Sort SortKey
}

func (msg SetSort) apply(m Model) Model {
	m.Sort = msg.Sort

	return m
}

// ResetFilter restores the default filter criteria and sort ordering,
// leaving products, loading state, and error untouched. Applying it twice
// yields the same state as applying it once.
type ResetFilter struct{}

func (ResetFilter) apply(m Model) Model {
	m.Filter = DefaultFilter()
	m.Sort = DefaultSort

	return m
}

// FetchRequest marks a product retrieval as in flight: loading turns on and
// any previous error clears. Products stay untouched.
type FetchRequest struct{}

func (FetchRequest) apply(m Model) Model {
	m.Loading = true
	m.Err = ""

	return m
}

// FetchSuccess lands a retrieved product collection: the products are
// replaced in full, loading turns off, and any error clears.
type FetchSuccess struct {
	Products []model.Product
}

func (msg FetchSuccess) apply(m Model) Model {
	m.Products = cloneProducts(msg.Products)
	m.Loading = false
	m.Err = ""

	return m
}

// FetchFailure records a failed retrieval: loading turns off and Err holds
// the failure message. The previously fetched products are kept, so stale
// data stays visible after a failed refetch.
type FetchFailure struct {
	Err string
}

func (msg FetchFailure) apply(m Model) Model {
	m.Loading = false
	m.Err = msg.Err

	return m
}
