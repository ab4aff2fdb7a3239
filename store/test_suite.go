package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/bazaar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreConstructor returns a fresh, empty store and a function releasing it.
type StoreConstructor func() (base CacheableKVStore, cleanup func())

// CheckCacheableKVStore runs the storage checks every CacheableKVStore
// implementation must pass. The in-memory btree store and the iavl adapter
// are both verified with it.
func CheckCacheableKVStore(t *testing.T, newStore StoreConstructor) {
	t.Run("cache wrap isolation", func(t *testing.T) { checkCacheIsolation(t, newStore) })
	t.Run("overwrite and delete", func(t *testing.T) { checkOverwrites(t, newStore) })
	t.Run("range iteration", func(t *testing.T) { checkRanges(t, newStore) })
}

func checkCacheIsolation(t *testing.T, newStore StoreConstructor) {
	base, cleanup := newStore()
	defer cleanup()

	item, holder := []byte("item:1"), []byte("escrow")
	AssertGetHas(t, base, item, nil, false)
	require.NoError(t, base.Set(item, holder))
	AssertGetHas(t, base, item, holder, true)

	// A wrap reads through to the base but keeps its own writes.
	sale := base.CacheWrap()
	AssertGetHas(t, sale, item, holder, true)
	listing, seller := []byte("listing:1"), []byte("alice")
	require.NoError(t, sale.Set(listing, seller))
	AssertGetHas(t, sale, listing, seller, true)
	AssertGetHas(t, base, listing, nil, false)

	require.NoError(t, sale.Write())
	AssertGetHas(t, base, item, holder, true)
	AssertGetHas(t, base, listing, seller, true)

	failed := base.CacheWrap()
	require.NoError(t, failed.Set([]byte("tax:1"), []byte("3")))
	failed.Discard()
	AssertGetHas(t, base, []byte("tax:1"), nil, false)

	// Writes of one wrap are visible in a sibling wrap once written.
	cancel := base.CacheWrap()
	require.NoError(t, cancel.Delete(item))
	require.NoError(t, cancel.Write())
	AssertGetHas(t, failed, item, nil, false)
	AssertGetHas(t, failed, listing, seller, true)
}

func checkOverwrites(t *testing.T, newStore StoreConstructor) {
	key := func(n int) []byte { return []byte(fmt.Sprintf("listing:%d", n)) }

	cases := map[string]struct {
		parent     []Op
		child      []Op
		wantParent []Model
		wantChild  []Model
	}{
		"overwrite one, delete another, add a third": {
			parent:     []Op{SetOp(key(1), []byte("alice")), SetOp(key(2), []byte("bob"))},
			child:      []Op{SetOp(key(1), []byte("carol")), SetOp(key(3), []byte("dave")), DelOp(key(2))},
			wantParent: []Model{Pair(key(1), []byte("alice")), Pair(key(2), []byte("bob")), Pair(key(3), nil)},
			wantChild:  []Model{Pair(key(1), []byte("carol")), Pair(key(2), nil), Pair(key(3), []byte("dave"))},
		},
		"set after delete": {
			parent:     []Op{SetOp(key(1), []byte("alice"))},
			child:      []Op{DelOp(key(1)), SetOp(key(1), []byte("bob"))},
			wantParent: []Model{Pair(key(1), []byte("alice"))},
			wantChild:  []Model{Pair(key(1), []byte("bob"))},
		},
		"delete missing key": {
			child:      []Op{DelOp(key(9))},
			wantParent: []Model{Pair(key(9), nil)},
			wantChild:  []Model{Pair(key(9), nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := newStore()
			defer cleanup()
			for _, op := range tc.parent {
				require.NoError(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.child {
				require.NoError(t, op.Apply(child))
			}

			for _, m := range tc.wantParent {
				AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
			for _, m := range tc.wantChild {
				AssertGetHas(t, child, m.Key, m.Value, m.Value != nil)
			}
			require.NoError(t, child.Write())
			for _, m := range tc.wantChild {
				AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
		})
	}
}

func checkRanges(t *testing.T, newStore StoreConstructor) {
	items := numbered("item", 0, 40)
	listings := numbered("listing", 0, 40)
	// The child removes the first ten listings and rewrites the next five.
	rewritten := numbered("listing", 10, 15)
	for i := range rewritten {
		rewritten[i].Value = []byte("relisted")
	}

	merged := sortModels(append(append(append([]Model{}, items...), rewritten...), listings[15:]...))

	cases := map[string]struct {
		parent []Op
		child  []Op
		want   []Model
	}{
		"child only": {
			child: setOps(items...),
			want:  items,
		},
		"parent only": {
			parent: setOps(items...),
			want:   items,
		},
		"child merged with parent": {
			parent: setOps(listings...),
			child:  append(append(setOps(items...), delOps(listings[:10]...)...), setOps(rewritten...)...),
			want:   merged,
		},
		"everything deleted": {
			parent: setOps(listings[:5]...),
			child:  delOps(listings[:5]...),
			want:   nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := newStore()
			defer cleanup()
			for _, op := range tc.parent {
				require.NoError(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range tc.child {
				require.NoError(t, op.Apply(child))
			}

			n := len(tc.want)
			assertRange(t, child, nil, nil, tc.want)
			if n < 30 {
				return
			}
			assertRange(t, child, tc.want[10].Key, nil, tc.want[10:])
			assertRange(t, child, nil, tc.want[n-8].Key, tc.want[:n-8])
			assertRange(t, child, tc.want[17].Key, tc.want[28].Key, tc.want[17:28])
			// an end key that is not stored cuts off before the next key
			assertRange(t, child, nil, append(append([]byte{}, tc.want[5].Key...), 0), tc.want[:6])
		})
	}
}

// assertRange checks the forward and reverse iteration over [start, end).
func assertRange(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()

	it, err := kv.Iterator(start, end)
	require.NoError(t, err)
	assert.Equal(t, want, drain(t, it), "forward %q - %q", start, end)

	it, err = kv.ReverseIterator(start, end)
	require.NoError(t, err)
	assert.Equal(t, reverse(want), drain(t, it), "reverse %q - %q", start, end)
}

func drain(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Release()
	var res []Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		require.NoError(t, err)
		res = append(res, Pair(key, value))
	}
}

// AssertGetHas checks both Get and Has for given key.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got, "value of %q", key)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists, "presence of %q", key)
}

// numbered returns models with keys "<prefix>:NNN" for n in [from, to).
func numbered(prefix string, from, to int) []Model {
	res := make([]Model, 0, to-from)
	for n := from; n < to; n++ {
		res = append(res, Pair(
			[]byte(fmt.Sprintf("%s:%03d", prefix, n)),
			[]byte(fmt.Sprintf("value of %s %d", prefix, n)),
		))
	}
	return res
}

func reverse(models []Model) []Model {
	if models == nil {
		return nil
	}
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

func sortModels(models []Model) []Model {
	res := append([]Model(nil), models...)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func setOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func delOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
