package storage

import (
	"context"
	"fmt"
	"sync"
)

// Memory implements KV with in-memory storage. Values do not survive the
// process; it exists for tests and for running the demo without a backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates a new Memory instance.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
	}
}

// Get retrieves the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("get %q: %w", key, ctx.Err())
	default:
	}

	if key == "" {
		return "", false, ErrEmptyKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.values[key]
	return value, exists, nil
}

// Set stores value under key, overwriting any prior content.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("set %q: %w", key, ctx.Err())
	default:
	}

	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Delete removes the key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete %q: %w", key, ctx.Err())
	default:
	}

	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
