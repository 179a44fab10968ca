// Package storage provides durable key-value stores for document snapshots.
//
// All stores implement KV. Callers must treat every call as fallible:
// stores report quota, I/O and database failures as errors rather than
// panicking.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Errors returned by stores.
var (
	// ErrQuotaExceeded is returned when a write would exceed the store's
	// capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("storage closed")

	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("invalid storage key")
)

// KV is a durable key-value store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// Error wraps a store failure with the operation and key.
type Error struct {
	Op  string // "get", "set", "remove"
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Key: key, Err: err}
}

func checkKey(op, key string) error {
	if key == "" {
		return wrap(op, key, ErrInvalidKey)
	}
	return nil
}
