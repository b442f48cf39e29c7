// Package kv is the key-value layer underneath the reference ledger. Every
// backend stores opaque byte keys and values and iterates in key order.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDBClosed is returned when operating on a closed database
	ErrDBClosed = errors.New("kv database is closed")

	// ErrKeyNotFound is returned when a key does not exist
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnsupportedBackend is returned by Open for an unknown backend name
	ErrUnsupportedBackend = errors.New("unsupported backend")
)

// DB defines the operations every backend supports.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies ops atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator walks every key starting with prefix, in key order. A nil
	// prefix walks the whole database.
	Iterator(ctx context.Context, prefix []byte) (Iterator, error)

	Close() error
}

// Iterator traverses database entries. Key and Value are only valid until
// the next call to Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation is a single put or delete in a batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendBBolt   = "bbolt"
	BackendRedis   = "redis"
)

// Backends lists the names accepted by Open.
var Backends = []string{BackendMemory, BackendPebble, BackendLevelDB, BackendBBolt, BackendRedis}

// Open opens the named backend at path. The memory backend ignores path; for
// redis, path is the server address or URL.
func Open(backend, path string) (DB, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendPebble:
		return OpenPebble(path)
	case BackendLevelDB:
		return OpenLevelDB(path)
	case BackendBBolt:
		return OpenBBolt(path)
	case BackendRedis:
		return OpenRedis(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
}

// prefixEnd returns the smallest key greater than every key with prefix, or
// nil when no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
