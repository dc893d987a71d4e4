package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StorageKey is the fixed key under which the cart is persisted. Changing it
// orphans previously saved carts, so it must not change without a migration
// plan.
const StorageKey = "cart-items"

// ErrCorruptPayload marks a persisted cart payload that failed to decode or
// validate. The persistence effect deletes such payloads and hydrates an
// empty cart.
var ErrCorruptPayload = errors.New("corrupted cart payload")

// encodeItems serializes an item sequence for persistence. A nil sequence
// encodes as an empty array.
func encodeItems(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart items: %w", err)
	}

	return string(data), nil
}

// decodeItems parses and validates a persisted cart payload. The only
// accepted shape is an array of {product, quantity} objects in which every
// product passes full validation, every quantity is a positive integer, and
// no product identifier repeats. Anything else is reported as
// ErrCorruptPayload.
func decodeItems(payload string) ([]Item, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()

	var items []Item
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after item array", ErrCorruptPayload)
	}

	seen := make(map[string]struct{}, len(items))

	for i := range items {
		if items[i].Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", ErrCorruptPayload, i, items[i].Quantity)
		}

		if err := items[i].Product.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrCorruptPayload, i, err)
		}

		if _, dup := seen[items[i].Product.ID]; dup {
			return nil, fmt.Errorf("%w: item %d repeats product id %q", ErrCorruptPayload, i, items[i].Product.ID)
		}
		seen[items[i].Product.ID] = struct{}{}
	}

	return items, nil
}
