package store

import (
	"testing"

	"github.com/iov-one/bazaar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeMemBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestBTreeCache(t *testing.T) {
	CheckCacheableKVStore(t, makeMemBase)
}

func TestBTreeCacheNestedDiscard(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("item:1"), []byte("alice")))

	outer := base.CacheWrap()
	require.NoError(t, outer.Set([]byte("item:2"), []byte("bob")))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Delete([]byte("item:1")))
	require.NoError(t, inner.Set([]byte("item:2"), []byte("carol")))
	inner.Discard()

	got, err := outer.Get([]byte("item:1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), got)
	got, err = outer.Get([]byte("item:2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bob"), got)

	require.NoError(t, outer.Write())
	got, err = base.Get([]byte("item:2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bob"), got)
}

func TestCacheIteratorRelease(t *testing.T) {
	db := MemStore()
	require.NoError(t, db.Set([]byte("a"), []byte("A")))
	cache := db.CacheWrap()

	it, err := cache.Iterator([]byte("a"), []byte("z"))
	require.NoError(t, err)
	it.Release()
	// Release is synchronous, the store can be modified right away.
	require.NoError(t, db.Delete([]byte("a")))

	it, err = cache.ReverseIterator(nil, nil)
	require.NoError(t, err)
	it.Release()
}

func TestSliceIterator(t *testing.T) {
	models := numbered("item", 0, 10)

	it := NewSliceIterator(models)
	for i := range models {
		k, v, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, models[i].Key, k)
		assert.Equal(t, models[i].Value, v)
	}
	_, _, err := it.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))

	it = NewSliceIterator(models)
	it.Release()
	_, _, err = it.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))
}
