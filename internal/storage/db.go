// Package storage is the key-value layer under the identifier cache.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Pair is one write of a batch.
type Pair struct {
	Key   []byte
	Value []byte
}

// DB is a byte-keyed store.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	// PutBatch writes every pair. A failed batch may be partly applied.
	PutBatch(pairs []Pair) error
	Delete(key []byte) error
	// ForEach visits keys with the given prefix in key order. fn receives
	// copies and stops the scan by returning an error.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	// DropPrefix deletes every key with the given prefix.
	DropPrefix(prefix []byte) error
	Close() error
}
