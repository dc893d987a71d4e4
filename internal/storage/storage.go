// Package storage provides the key-value persistence collaborator used by
// the cart store, with interchangeable backends.
package storage

import (
	"context"
	"errors"
)

// Storage errors.
var (
	ErrEmptyKey   = errors.New("storage key cannot be empty")
	ErrInvalidKey = errors.New("storage key contains invalid characters")
)

// KV defines the interface for persistent key-value operations. A backend
// may be entirely unavailable; Noop implements that degradation, so callers
// never need a nil check.
type KV interface {
	// Get retrieves the value stored under key. The boolean reports whether
	// the key was present; an absent key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any prior content.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Noop is the backend used when no persistent storage is configured. Reads
// report absent and writes succeed silently, so the caller operates purely
// in memory for the session.
type Noop struct{}

// NewNoop creates a new Noop backend.
func NewNoop() Noop {
	return Noop{}
}

// Get always reports an absent key.
func (Noop) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

// Set discards the value.
func (Noop) Set(_ context.Context, _, _ string) error {
	return nil
}

// Delete does nothing.
func (Noop) Delete(_ context.Context, _ string) error {
	return nil
}
