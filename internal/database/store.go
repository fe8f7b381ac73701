// internal/database/store.go

// Package database holds the key-value store abstraction that game state is
// persisted in, along with its SQL and in-memory backends.
package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// ScanFunc is called once per record of a range scan, in ascending key order.
// Returning an error stops the scan; the error is returned from Scan unchanged.
type ScanFunc func(key, value []byte) error

// Store is a durable mapping from byte-string keys to byte-string values.
// Individual operations are atomic; there are no multi-key transactions.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Put(ctx context.Context, key, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error
	// Scan visits every record with start <= key < end in bytewise order.
	Scan(ctx context.Context, start, end []byte, fn ScanFunc) error
	Close() error
}
