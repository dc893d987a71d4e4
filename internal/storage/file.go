package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File implements KV with one file per key under a directory. Writes go to a
// temporary file followed by a rename, so readers never observe a partially
// written value.
type File struct {
	dir string
}

// NewFile creates a File backend rooted at dir, creating the directory if it
// does not exist.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// Get retrieves the value stored under key.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("get %q: %w", key, ctx.Err())
	default:
	}

	path, err := f.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}

	return string(data), true, nil
}

// Set stores value under key, overwriting any prior content.
func (f *File) Set(ctx context.Context, key, value string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("set %q: %w", key, ctx.Err())
	default:
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %q: %w", key, err)
	}

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %q: %w", key, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file for %q: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %q: %w", key, err)
	}

	return nil
}

// Delete removes the key.
func (f *File) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete %q: %w", key, ctx.Err())
	default:
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", key, err)
	}

	return nil
}

// path maps a key to its file, rejecting keys that would escape the
// storage directory.
func (f *File) path(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}
