package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	cases := map[string]struct {
		bucket string
		name   string
		calls  int
	}{
		"first item":     {bucket: "items", name: "id", calls: 1},
		"many items":     {bucket: "items", name: "id", calls: 22},
		"past one byte":  {bucket: "listings", name: "id", calls: 300},
		"other sequence": {bucket: "items", name: "other", calls: 11},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			s := NewSequence(tc.bucket, tc.name)

			var prev []byte
			for i := 1; i <= tc.calls; i++ {
				raw, err := s.NextVal(db)
				require.NoError(t, err)
				n, err := DecodeSequence(raw)
				require.NoError(t, err)
				assert.Equal(t, uint64(i), n)
				assert.Equal(t, 1, bytes.Compare(raw, prev))
				prev = raw
			}

			latest, err := s.Latest(db)
			require.NoError(t, err)
			assert.Equal(t, uint64(tc.calls), latest)
		})
	}
}

func TestSequencesAreIndependent(t *testing.T) {
	db := store.MemStore()
	items := NewSequence("items", "id")
	listings := NewSequence("listings", "id")

	for i := 0; i < 3; i++ {
		_, err := items.Next(db)
		require.NoError(t, err)
	}
	n, err := listings.Next(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestSequenceOverflow(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("items", "id")
	require.NoError(t, db.Set(s.key, EncodeSequence(^uint64(0))))

	_, err := s.Next(db)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestDecodeSequence(t *testing.T) {
	cases := map[string]struct {
		raw     []byte
		want    uint64
		wantErr *errors.Error
	}{
		"nil":       {raw: nil, want: 0},
		"large":     {raw: EncodeSequence(1 << 40), want: 1 << 40},
		"too short": {raw: []byte{1, 2}, wantErr: errors.ErrInvalidInput},
		"empty":     {raw: []byte{}, wantErr: errors.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeSequence(tc.raw)
			require.True(t, tc.wantErr.Is(err), "got %+v", err)
			assert.Equal(t, tc.want, got)
		})
	}
}
