package orm

import (
	"testing"

	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()

	b := NewModelBucket("cnts", &Counter{})

	key, err := b.Put(db, []byte("c1"), &Counter{Count: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("c1"), key)

	var c1 Counter
	require.NoError(t, b.One(db, []byte("c1"), &c1))
	assert.Equal(t, uint64(1), c1.Count)
	assert.NoError(t, b.Has(db, []byte("c1")))

	require.NoError(t, b.Delete(db, []byte("c1")))
	err = b.Delete(db, []byte("unknown"))
	assert.True(t, errors.ErrNotFound.Is(err))
	err = b.One(db, []byte("c1"), &c1)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, []byte("c1"))))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, nil)))

	_, err = b.Put(db, []byte("c2"), &Counter{})
	assert.True(t, errors.ErrEmpty.Is(err))

	_, err = b.Put(db, []byte("c2"), &MultiRef{Refs: [][]byte{{1}}})
	assert.True(t, errors.ErrInvalidType.Is(err))
}

func TestModelBucketSequence(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	k1, err := b.Put(db, nil, &Counter{Count: 10})
	require.NoError(t, err)
	k2, err := b.Put(db, nil, &Counter{Count: 20})
	require.NoError(t, err)
	assert.Equal(t, EncodeSequence(1), k1)
	assert.Equal(t, EncodeSequence(2), k2)
}

func TestModelBucketByIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{},
		WithIndex("owner", ownerIndex, false))

	_, err := b.Put(db, []byte("a"), &Counter{Count: 1, Owner: []byte("alice")})
	require.NoError(t, err)
	_, err = b.Put(db, []byte("b"), &Counter{Count: 2, Owner: []byte("alice")})
	require.NoError(t, err)
	_, err = b.Put(db, []byte("c"), &Counter{Count: 3, Owner: []byte("bob")})
	require.NoError(t, err)

	cases := map[string]struct {
		indexName string
		key       string
		dest      ModelSlicePtr
		wantErr   *errors.Error
		wantKeys  [][]byte
	}{
		"find none": {
			indexName: "owner",
			key:       "carol",
			dest:      &[]Counter{},
		},
		"find many into slice of structs": {
			indexName: "owner",
			key:       "alice",
			dest:      &[]Counter{},
			wantKeys:  [][]byte{[]byte("a"), []byte("b")},
		},
		"find one into slice of pointers": {
			indexName: "owner",
			key:       "bob",
			dest:      &[]*Counter{},
			wantKeys:  [][]byte{[]byte("c")},
		},
		"unknown index": {
			indexName: "xyz",
			key:       "bob",
			dest:      &[]Counter{},
			wantErr:   ErrInvalidIndex,
		},
		"wrong destination type": {
			indexName: "owner",
			key:       "bob",
			dest:      &[]MultiRef{},
			wantErr:   errors.ErrInvalidType,
		},
		"destination not a pointer": {
			indexName: "owner",
			key:       "bob",
			dest:      []Counter{},
			wantErr:   errors.ErrInvalidType,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			keys, err := b.ByIndex(db, tc.indexName, []byte(tc.key), tc.dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantKeys, keys)
		})
	}

	var got []Counter
	_, err = b.ByIndex(db, "owner", []byte("alice"), &got)
	require.NoError(t, err)
	assert.Equal(t, []Counter{{Count: 1, Owner: []byte("alice")}, {Count: 2, Owner: []byte("alice")}}, got)
}

func TestModelBucketPrefixScan(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	for i := uint64(1); i <= 3; i++ {
		_, err := b.Put(db, nil, &Counter{Count: i * 10})
		require.NoError(t, err)
	}

	collect := func(reverse bool) []uint64 {
		it, err := b.PrefixScan(db, nil, reverse)
		require.NoError(t, err)
		defer it.Release()

		var res []uint64
		for {
			var c Counter
			key, err := it.LoadNext(&c)
			if errors.ErrIteratorDone.Is(err) {
				return res
			}
			require.NoError(t, err)
			id, err := DecodeSequence(key)
			require.NoError(t, err)
			assert.Equal(t, id*10, c.Count)
			res = append(res, c.Count)
		}
	}

	assert.Equal(t, []uint64{10, 20, 30}, collect(false))
	assert.Equal(t, []uint64{30, 20, 10}, collect(true))
}
