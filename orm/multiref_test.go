package orm

import (
	"bytes"
	"sort"
	"testing"

	"github.com/iov-one/bazaar/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiRef(t *testing.T) {
	cases := map[string]struct {
		add      []string
		remove   []string
		wantErr  *errors.Error
		wantRefs []string
	}{
		"listings added out of order": {
			add:      []string{"seller-c", "seller-a", "seller-b"},
			wantRefs: []string{"seller-a", "seller-b", "seller-c"},
		},
		"duplicate listing": {
			add:      []string{"item-1", "item-2", "item-1"},
			wantErr:  errors.ErrDuplicate,
			wantRefs: []string{"item-1", "item-2"},
		},
		"remove the middle": {
			add:      []string{"a", "b", "c"},
			remove:   []string{"b"},
			wantRefs: []string{"a", "c"},
		},
		"remove a missing ref": {
			add:      []string{"a", "c"},
			remove:   []string{"b"},
			wantErr:  errors.ErrNotFound,
			wantRefs: []string{"a", "c"},
		},
		"remove twice": {
			add:      []string{"a"},
			remove:   []string{"a", "a"},
			wantErr:  errors.ErrNotFound,
			wantRefs: []string{},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var (
				m    MultiRef
				errs []error
			)
			for _, r := range tc.add {
				if err := m.Add([]byte(r)); err != nil {
					errs = append(errs, err)
				}
			}
			for _, r := range tc.remove {
				if err := m.Remove([]byte(r)); err != nil {
					errs = append(errs, err)
				}
			}
			if tc.wantErr == nil {
				assert.Empty(t, errs)
			} else {
				require.Len(t, errs, 1)
				assert.True(t, tc.wantErr.Is(errs[0]), "got %+v", errs[0])
			}

			assert.Equal(t, len(tc.wantRefs), m.Size())
			for _, r := range tc.wantRefs {
				assert.True(t, m.Has([]byte(r)), r)
			}
			assert.True(t, sort.SliceIsSorted(m.Refs, func(i, j int) bool {
				return bytes.Compare(m.Refs[i], m.Refs[j]) < 0
			}))
		})
	}
}

func TestMultiRefEncoding(t *testing.T) {
	m, err := NewMultiRef([]byte("seven"), []byte("one"), []byte("three"))
	require.NoError(t, err)

	raw, err := m.Marshal()
	require.NoError(t, err)

	var got MultiRef
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, [][]byte{[]byte("one"), []byte("seven"), []byte("three")}, got.Refs)
	assert.NoError(t, got.Validate())

	clone := got.Copy().(*MultiRef)
	require.NoError(t, clone.Remove([]byte("one")))
	assert.Equal(t, 3, got.Size())

	var empty MultiRef
	assert.True(t, errors.ErrEmpty.Is(empty.Validate()))
	assert.Equal(t, 0, (*MultiRef)(nil).Size())
}

func TestNewMultiRefRejectsDuplicates(t *testing.T) {
	_, err := NewMultiRef([]byte("a"), []byte("a"))
	assert.True(t, errors.ErrDuplicate.Is(err))
}
