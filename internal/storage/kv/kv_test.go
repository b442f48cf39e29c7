package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends opens every backend in a fresh temporary location. The redis
// backend joins when SHADOW_ORACLE_TEST_REDIS names a server.
func backends() map[string]func(t *testing.T) DB {
	m := map[string]func(t *testing.T) DB{
		BackendMemory: func(t *testing.T) DB { return NewMemory() },
		BackendPebble: func(t *testing.T) DB {
			db, err := OpenPebble(t.TempDir())
			require.NoError(t, err)
			return db
		},
		BackendLevelDB: func(t *testing.T) DB {
			db, err := OpenLevelDB(t.TempDir())
			require.NoError(t, err)
			return db
		},
		BackendBBolt: func(t *testing.T) DB {
			db, err := OpenBBolt(filepath.Join(t.TempDir(), "ledger.db"))
			require.NoError(t, err)
			return db
		},
		"cached": func(t *testing.T) DB {
			db, err := NewCached(NewMemory(), 2)
			require.NoError(t, err)
			return db
		},
	}
	if addr := os.Getenv("SHADOW_ORACLE_TEST_REDIS"); addr != "" {
		m[BackendRedis] = func(t *testing.T) DB {
			db, err := OpenRedis(addr)
			require.NoError(t, err)
			clearRedis(t, db)
			return db
		}
	}
	return m
}

func clearRedis(t *testing.T, db *RedisDB) {
	t.Helper()
	ctx := context.Background()
	it, err := db.Iterator(ctx, nil)
	require.NoError(t, err)
	var ops []BatchOperation
	for it.Next() {
		ops = append(ops, BatchOperation{Type: BatchDelete, Key: it.Key()})
	}
	require.NoError(t, it.Close())
	require.NoError(t, db.Batch(ctx, ops))
}

func forEachBackend(t *testing.T, fn func(t *testing.T, db DB)) {
	for name, open := range backends() {
		open := open
		t.Run(name, func(t *testing.T) {
			db := open(t)
			t.Cleanup(func() { db.Close() })
			fn(t, db)
		})
	}
}

func collect(t *testing.T, db DB, prefix []byte) []string {
	t.Helper()
	it, err := db.Iterator(context.Background(), prefix)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key())+"="+string(it.Value()))
	}
	require.NoError(t, it.Error())
	return keys
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db DB) {
		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, ErrKeyNotFound)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, db.Delete(ctx, []byte("k")))
		_, err = db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, ErrKeyNotFound)

		assert.NoError(t, db.Delete(ctx, []byte("never-written")))
	})
}

func TestReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db DB) {
		value := []byte("value")
		require.NoError(t, db.Write(ctx, []byte("k"), value))
		value[0] = 'X'

		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)

		got[0] = 'Y'
		again, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), again)
	})
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db DB) {
		require.NoError(t, db.Write(ctx, []byte("old"), []byte("x")))

		err := db.Batch(ctx, []BatchOperation{
			{Type: BatchPut, Key: []byte("a"), Value: []byte("1")},
			{Type: BatchPut, Key: []byte("b"), Value: []byte("2")},
			{Type: BatchDelete, Key: []byte("old")},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"a=1", "b=2"}, collect(t, db, nil))
	})
}

func TestIteratorPrefix(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db DB) {
		for _, k := range []string{"acct/b", "acct/a", "acct0", "acct", "sysvar/clock", "acct/\xff"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v")))
		}

		assert.Equal(t, []string{"acct/a=v", "acct/b=v", "acct/\xff=v"}, collect(t, db, []byte("acct/")))
		assert.Equal(t, []string{"sysvar/clock=v"}, collect(t, db, []byte("sysvar/")))
		assert.Empty(t, collect(t, db, []byte("none/")))
		assert.Len(t, collect(t, db, nil), 6)
	})
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		if name == "cached" {
			continue
		}
		open := open
		t.Run(name, func(t *testing.T) {
			db := open(t)
			require.NoError(t, db.Close())
			assert.NoError(t, db.Close(), "closing twice is harmless")

			_, err := db.Read(ctx, []byte("k"))
			assert.ErrorIs(t, err, ErrDBClosed)
			assert.ErrorIs(t, db.Write(ctx, []byte("k"), nil), ErrDBClosed)
			assert.ErrorIs(t, db.Delete(ctx, []byte("k")), ErrDBClosed)
			assert.ErrorIs(t, db.Batch(ctx, nil), ErrDBClosed)
			_, err = db.Iterator(ctx, nil)
			assert.ErrorIs(t, err, ErrDBClosed)
		})
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{BackendPebble, BackendLevelDB, BackendBBolt} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store")

			db, err := Open(backend, path)
			require.NoError(t, err)
			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
			require.NoError(t, db.Close())

			db, err = Open(backend, path)
			require.NoError(t, err)
			defer db.Close()
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("rocksdb", t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedBackend)

	db, err := Open(BackendMemory, "")
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("acct0"), prefixEnd([]byte("acct/")))
	assert.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff, 0xff}))
	assert.Nil(t, prefixEnd(nil))
	assert.Equal(t, []byte("b"), prefixEnd([]byte("a")))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "acct/", escapeGlob("acct/"))
	assert.Equal(t, `a\*b\?c\[d\]e\\`, escapeGlob(`a*b?c[d]e\`))
	assert.Equal(t, "", escapeGlob(""))
}

func TestSliceIterator(t *testing.T) {
	it := &sliceIterator{
		keys:   [][]byte{[]byte("a"), []byte("b")},
		values: [][]byte{[]byte("1"), []byte("2")},
		pos:    -1,
	}
	assert.Nil(t, it.Key())

	var got []string
	for it.Next() {
		got = append(got, string(it.Key())+"="+string(it.Value()))
	}
	assert.Equal(t, []string{"a=1", "b=2"}, got)
	assert.False(t, it.Next())
	assert.Nil(t, it.Value())
	assert.NoError(t, it.Error())
	assert.NoError(t, it.Close())
}

func TestOpenRedisUnreachable(t *testing.T) {
	_, err := OpenRedis("redis://127.0.0.1:1/0")
	assert.Error(t, err)

	_, err = OpenRedis("redis://:bad url")
	assert.Error(t, err)
}
