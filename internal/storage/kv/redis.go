package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNamespace prefixes every key written by RedisDB so a ledger can share
// a server with other data.
const RedisNamespace = "shadoworacle:"

const (
	redisDialTimeout = 5 * time.Second
	redisScanCount   = 256
)

// RedisDB is a DB backed by a redis server.
type RedisDB struct {
	mu     sync.RWMutex
	client *redis.Client
}

// OpenRedis connects to addr, either host:port or a redis:// or rediss:// URL,
// and checks the server answers.
func OpenRedis(addr string) (*RedisDB, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return &RedisDB{client: client}, nil
}

func (r *RedisDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return nil, ErrDBClosed
	}

	value, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (r *RedisDB) Write(ctx context.Context, key, value []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return ErrDBClosed
	}
	return r.client.Set(ctx, redisKey(key), value, 0).Err()
}

func (r *RedisDB) Delete(ctx context.Context, key []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return ErrDBClosed
	}
	return r.client.Del(ctx, redisKey(key)).Err()
}

// Batch runs ops in a MULTI/EXEC transaction.
func (r *RedisDB) Batch(ctx context.Context, ops []BatchOperation) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != BatchPut && op.Type != BatchDelete {
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	if len(ops) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			if op.Type == BatchPut {
				pipe.Set(ctx, redisKey(op.Key), op.Value, 0)
			} else {
				pipe.Del(ctx, redisKey(op.Key))
			}
		}
		return nil
	})
	return err
}

// Iterator scans the matching keys up front and fetches their values in
// chunks, so it sees a snapshot of the key set but not of the values. Keys
// deleted between the scan and the fetch are skipped.
func (r *RedisDB) Iterator(ctx context.Context, prefix []byte) (Iterator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		return nil, ErrDBClosed
	}

	seen := make(map[string]struct{})
	scan := r.client.Scan(ctx, 0, RedisNamespace+escapeGlob(string(prefix))+"*", redisScanCount).Iterator()
	for scan.Next(ctx) {
		seen[scan.Val()] = struct{}{}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("scan redis keys: %w", err)
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	it := &sliceIterator{pos: -1}
	for start := 0; start < len(keys); start += redisScanCount {
		chunk := keys[start:min(start+redisScanCount, len(keys))]
		values, err := r.client.MGet(ctx, chunk...).Result()
		if err != nil {
			return nil, fmt.Errorf("fetch redis values: %w", err)
		}
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			it.keys = append(it.keys, []byte(strings.TrimPrefix(chunk[i], RedisNamespace)))
			it.values = append(it.values, []byte(s))
		}
	}
	return it, nil
}

func (r *RedisDB) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func redisKey(key []byte) string {
	return RedisNamespace + string(key)
}

// escapeGlob quotes the characters SCAN MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// sliceIterator walks keys and values collected in advance.
type sliceIterator struct {
	keys, values [][]byte
	pos          int
}

func (it *sliceIterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return nil
	}
	return it.keys[it.pos]
}

func (it *sliceIterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.values) {
		return nil
	}
	return it.values[it.pos]
}

func (it *sliceIterator) Error() error {
	return nil
}

func (it *sliceIterator) Close() error {
	return nil
}
