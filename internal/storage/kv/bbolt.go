package kv

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

var bboltBucket = []byte("accounts")

// BBoltDB is a DB backed by a single bbolt bucket.
type BBoltDB struct {
	mu sync.RWMutex
	db *bbolt.DB
}

// OpenBBolt opens or creates a bbolt file at path.
func OpenBBolt(path string) (*BBoltDB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt at %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bboltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BBoltDB{db: db}, nil
}

func (b *BBoltDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, ErrDBClosed
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bboltBucket).Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		// bbolt values are only valid inside the transaction
		value = clone(v)
		return nil
	})
	return value, err
}

func (b *BBoltDB) Write(ctx context.Context, key, value []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bboltBucket).Put(key, value)
	})
}

func (b *BBoltDB) Delete(ctx context.Context, key []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bboltBucket).Delete(key)
	})
}

func (b *BBoltDB) Batch(ctx context.Context, ops []BatchOperation) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return ErrDBClosed
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bboltBucket)
		for _, op := range ops {
			var err error
			switch op.Type {
			case BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return fmt.Errorf("unknown batch operation type: %d", op.Type)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Iterator holds a read transaction open until Close.
func (b *BBoltDB) Iterator(ctx context.Context, prefix []byte) (Iterator, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, ErrDBClosed
	}

	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, err
	}
	return &bboltIterator{
		tx:     tx,
		cursor: tx.Bucket(bboltBucket).Cursor(),
		prefix: prefix,
	}, nil
}

func (b *BBoltDB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

type bboltIterator struct {
	tx         *bbolt.Tx
	cursor     *bbolt.Cursor
	prefix     []byte
	started    bool
	key, value []byte
}

func (it *bboltIterator) Next() bool {
	var k, v []byte
	if !it.started {
		it.started = true
		k, v = it.cursor.Seek(it.prefix)
	} else {
		k, v = it.cursor.Next()
	}
	if k == nil || !bytes.HasPrefix(k, it.prefix) {
		it.key, it.value = nil, nil
		return false
	}
	it.key, it.value = k, v
	return true
}

func (it *bboltIterator) Key() []byte {
	return it.key
}

func (it *bboltIterator) Value() []byte {
	return it.value
}

func (it *bboltIterator) Error() error {
	return nil
}

func (it *bboltIterator) Close() error {
	return it.tx.Rollback()
}
