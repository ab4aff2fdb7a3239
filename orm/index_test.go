package orm

import (
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterKey(pk []byte) []byte {
	return append([]byte("cnts:"), pk...)
}

func TestIndexUpdate(t *testing.T) {
	alice, bob := []byte("alice"), []byte("bob")
	obj := func(pk string, owner []byte) Object {
		return NewObject([]byte(pk), &Counter{Count: 1, Owner: owner})
	}

	cases := map[string]struct {
		unique  bool
		setup   [][2]Object
		prev    Object
		save    Object
		wantErr *errors.Error
		want    map[string][]string
	}{
		"insert": {
			save: obj("a", alice),
			want: map[string][]string{"alice": {"a"}},
		},
		"insert next to another": {
			setup: [][2]Object{{nil, obj("b", alice)}},
			save:  obj("a", alice),
			want:  map[string][]string{"alice": {"a", "b"}},
		},
		"move to a new value": {
			setup: [][2]Object{{nil, obj("a", alice)}},
			prev:  obj("a", alice),
			save:  obj("a", bob),
			want:  map[string][]string{"alice": nil, "bob": {"a"}},
		},
		"delete": {
			setup: [][2]Object{{nil, obj("a", alice)}, {nil, obj("b", alice)}},
			prev:  obj("a", alice),
			want:  map[string][]string{"alice": {"b"}},
		},
		"nil value is not indexed": {
			save: obj("a", nil),
			want: map[string][]string{"": nil},
		},
		"unique conflict": {
			unique:  true,
			setup:   [][2]Object{{nil, obj("a", alice)}},
			save:    obj("b", alice),
			wantErr: errors.ErrDuplicate,
		},
		"unique move": {
			unique: true,
			setup:  [][2]Object{{nil, obj("a", alice)}},
			prev:   obj("a", alice),
			save:   obj("a", bob),
			want:   map[string][]string{"alice": nil, "bob": {"a"}},
		},
		"primary key change": {
			prev:    obj("a", alice),
			save:    obj("b", alice),
			wantErr: errors.ErrCannotBeModified,
		},
		"nothing to do": {
			wantErr: errors.ErrHuman,
		},
		"delete of a missing reference": {
			prev:    obj("a", alice),
			wantErr: errors.ErrNotFound,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			idx := NewMultiKeyIndex("cnts_owner", asMultiKeyIndexer(ownerIndex), tc.unique, counterKey)
			for _, op := range tc.setup {
				require.NoError(t, idx.Update(db, op[0], op[1]))
			}

			err := idx.Update(db, tc.prev, tc.save)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			for owner, want := range tc.want {
				keys, err := idx.Keys(db, []byte(owner))
				require.NoError(t, err)
				var got []string
				for _, k := range keys {
					got = append(got, string(k))
				}
				assert.Equal(t, want, got, owner)
			}
		})
	}
}

func TestIndexQuery(t *testing.T) {
	db := store.MemStore()
	idx := NewMultiKeyIndex("cnts_owner", asMultiKeyIndexer(ownerIndex), false, counterKey)
	for pk, owner := range map[string]string{"a": "al", "b": "alice", "c": "bob"} {
		require.NoError(t, idx.Update(db, nil, NewObject([]byte(pk), &Counter{Count: 1, Owner: []byte(owner)})))
		require.NoError(t, db.Set(counterKey([]byte(pk)), []byte(owner)))
	}

	models, err := idx.Query(db, bazaar.KeyQueryMod, []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []bazaar.Model{bazaar.Pair([]byte("cnts:b"), []byte("alice"))}, models)

	models, err = idx.Query(db, bazaar.PrefixQueryMod, []byte("al"))
	require.NoError(t, err)
	assert.Len(t, models, 2)

	models, err = idx.Query(db, bazaar.KeyQueryMod, []byte("carol"))
	require.NoError(t, err)
	assert.Empty(t, models)

	_, err = idx.Query(db, "range", nil)
	assert.True(t, errors.ErrInvalidInput.Is(err))

	like, err := idx.Like(db, NewObject(nil, &Counter{Owner: []byte("bob")}))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("c")}, like)
}
