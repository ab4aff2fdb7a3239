package nft

import (
	"strings"
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/bazaartest"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMint(t *testing.T) {
	db := store.MemStore()
	reg := NewRegistry()
	alice := bazaartest.NewCondition().Address()

	last, err := reg.LastID(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), last)

	for want := uint64(1); want <= 3; want++ {
		id, err := reg.Mint(db, "ipfs://item", alice)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	last, err = reg.LastID(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)

	item, err := reg.Get(db, 2)
	require.NoError(t, err)
	assert.Equal(t, alice, item.Holder)
	assert.Equal(t, "ipfs://item", item.Locator)
}

func TestMintInvalid(t *testing.T) {
	alice := bazaartest.NewCondition().Address()

	cases := map[string]struct {
		locator string
		to      bazaar.Address
		wantErr *errors.Error
	}{
		"empty locator": {
			locator: "",
			to:      alice,
			wantErr: errors.ErrEmpty,
		},
		"locator too long": {
			locator: strings.Repeat("x", MaxLocatorLength+1),
			to:      alice,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid holder": {
			locator: "ipfs://item",
			to:      bazaar.Address("short"),
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			reg := NewRegistry()

			_, err := reg.Mint(db, tc.locator, tc.to)
			require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)

			// A failed mint must not leave anything behind.
			_, err = reg.Get(db, 1)
			assert.True(t, ErrUnknownItem.Is(err))
		})
	}
}

func TestTransfer(t *testing.T) {
	alice := bazaartest.NewCondition().Address()
	bert := bazaartest.NewCondition().Address()

	cases := map[string]struct {
		id         uint64
		from, to   bazaar.Address
		wantErr    *errors.Error
		wantHolder bazaar.Address
	}{
		"holder moves the item": {
			id:         1,
			from:       alice,
			to:         bert,
			wantHolder: bert,
		},
		"holder moves the item to itself": {
			id:         1,
			from:       alice,
			to:         alice,
			wantHolder: alice,
		},
		"not the holder": {
			id:         1,
			from:       bert,
			to:         bert,
			wantErr:    ErrNotHolder,
			wantHolder: alice,
		},
		"unknown item": {
			id:         2,
			from:       alice,
			to:         bert,
			wantErr:    ErrUnknownItem,
			wantHolder: alice,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			reg := NewRegistry()
			id, err := reg.Mint(db, "ipfs://item", alice)
			require.NoError(t, err)

			err = reg.Transfer(db, tc.id, tc.from, tc.to)
			require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)

			holder, err := reg.HolderOf(db, id)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHolder, holder)
		})
	}
}

func TestHeldBy(t *testing.T) {
	db := store.MemStore()
	reg := NewRegistry()
	alice := bazaartest.NewCondition().Address()
	bert := bazaartest.NewCondition().Address()
	carl := bazaartest.NewCondition().Address()

	for _, to := range []bazaar.Address{alice, bert, alice, alice} {
		_, err := reg.Mint(db, "ipfs://item", to)
		require.NoError(t, err)
	}
	require.NoError(t, reg.Transfer(db, 3, alice, bert))

	cases := map[string]struct {
		holder  bazaar.Address
		wantIDs []uint64
	}{
		"alice": {holder: alice, wantIDs: []uint64{1, 4}},
		"bert":  {holder: bert, wantIDs: []uint64{2, 3}},
		"carl":  {holder: carl, wantIDs: []uint64{}},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ids, err := reg.HeldBy(db, tc.holder)
			require.NoError(t, err)
			assert.Equal(t, tc.wantIDs, ids)

			n, err := reg.CountHeldBy(db, tc.holder)
			require.NoError(t, err)
			assert.Equal(t, uint64(len(tc.wantIDs)), n)
		})
	}

	_, err := reg.HeldBy(db, nil)
	assert.True(t, errors.ErrInvalidInput.Is(err))
}

func TestQueryItems(t *testing.T) {
	db := store.MemStore()
	reg := NewRegistry()
	alice := bazaartest.NewCondition().Address()
	_, err := reg.Mint(db, "ipfs://a", alice)
	require.NoError(t, err)

	qr := bazaar.NewQueryRouter()
	RegisterQuery(qr)

	h := qr.Handler("/items")
	require.NotNil(t, h)
	models, err := h.Query(db, bazaar.KeyQueryMod, ItemKey(1))
	require.NoError(t, err)
	require.Len(t, models, 1)

	var item Item
	require.NoError(t, item.Unmarshal(models[0].Value))
	assert.Equal(t, "ipfs://a", item.Locator)

	h = qr.Handler("/items/holder")
	require.NotNil(t, h)
	models, err = h.Query(db, bazaar.KeyQueryMod, alice)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}
