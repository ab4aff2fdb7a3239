package cash

import (
	"math"
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/bazaartest"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	addr := bazaartest.NewCondition().Address()

	balance, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	require.NoError(t, ctrl.Issue(db, addr, 500))
	require.NoError(t, ctrl.Issue(db, addr, 100))
	balance, err = ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), balance)

	err = ctrl.Issue(db, addr, math.MaxUint64)
	assert.True(t, errors.ErrOverflow.Is(err))

	err = ctrl.Issue(db, bazaar.Address("short"), 1)
	assert.True(t, errors.ErrInvalidInput.Is(err))
}

func TestTransfer(t *testing.T) {
	alice := bazaartest.NewCondition().Address()
	bert := bazaartest.NewCondition().Address()

	cases := map[string]struct {
		src, dest bazaar.Address
		amount    uint64
		wantErr   *errors.Error
		wantAlice uint64
		wantBert  uint64
	}{
		"move part of the funds": {
			src:       alice,
			dest:      bert,
			amount:    30,
			wantAlice: 70,
			wantBert:  30,
		},
		"move all funds": {
			src:       alice,
			dest:      bert,
			amount:    100,
			wantAlice: 0,
			wantBert:  100,
		},
		"zero amount is a no-op": {
			src:       alice,
			dest:      bert,
			amount:    0,
			wantAlice: 100,
			wantBert:  0,
		},
		"send to self": {
			src:       alice,
			dest:      alice,
			amount:    40,
			wantAlice: 100,
			wantBert:  0,
		},
		"insufficient funds": {
			src:       alice,
			dest:      bert,
			amount:    101,
			wantErr:   ErrInsufficientFunds,
			wantAlice: 100,
			wantBert:  0,
		},
		"empty account cannot send": {
			src:       bert,
			dest:      alice,
			amount:    1,
			wantErr:   ErrInsufficientFunds,
			wantAlice: 100,
			wantBert:  0,
		},
		"invalid destination": {
			src:       alice,
			dest:      bazaar.Address("x"),
			amount:    1,
			wantErr:   errors.ErrInvalidInput,
			wantAlice: 100,
			wantBert:  0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController()
			require.NoError(t, ctrl.Issue(db, alice, 100))

			err := ctrl.Transfer(db, tc.src, tc.dest, tc.amount)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
			} else {
				assert.NoError(t, err)
			}

			assertBalance(t, db, ctrl, alice, tc.wantAlice)
			assertBalance(t, db, ctrl, bert, tc.wantBert)
		})
	}
}

func TestTransferFrom(t *testing.T) {
	owner := bazaartest.NewCondition().Address()
	spender := bazaartest.NewCondition().Address()
	dest := bazaartest.NewCondition().Address()

	cases := map[string]struct {
		approve       uint64
		amount        uint64
		wantErr       *errors.Error
		wantAllowance uint64
		wantDest      uint64
	}{
		"within allowance": {
			approve:       50,
			amount:        20,
			wantAllowance: 30,
			wantDest:      20,
		},
		"whole allowance": {
			approve:       50,
			amount:        50,
			wantAllowance: 0,
			wantDest:      50,
		},
		"above allowance": {
			approve:       50,
			amount:        51,
			wantErr:       ErrAllowance,
			wantAllowance: 50,
		},
		"not approved": {
			amount:  1,
			wantErr: ErrAllowance,
		},
		"allowance above balance": {
			approve:       500,
			amount:        200,
			wantErr:       ErrInsufficientFunds,
			wantAllowance: 500,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController()
			require.NoError(t, ctrl.Issue(db, owner, 100))
			require.NoError(t, ctrl.Approve(db, owner, spender, tc.approve))

			err := ctrl.TransferFrom(db, spender, owner, dest, tc.amount)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
			} else {
				assert.NoError(t, err)
			}

			allowance, err := ctrl.Allowance(db, owner, spender)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAllowance, allowance)
			assertBalance(t, db, ctrl, dest, tc.wantDest)
			assertBalance(t, db, ctrl, owner, 100-tc.wantDest)
		})
	}
}

func TestApproveRevoke(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	owner := bazaartest.NewCondition().Address()
	spender := bazaartest.NewCondition().Address()

	// Revoking a missing approval is fine.
	require.NoError(t, ctrl.Approve(db, owner, spender, 0))

	require.NoError(t, ctrl.Approve(db, owner, spender, 10))
	require.NoError(t, ctrl.Approve(db, owner, spender, 25))
	allowance, err := ctrl.Allowance(db, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), allowance)

	// Approvals are directional.
	allowance, err = ctrl.Allowance(db, spender, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), allowance)

	require.NoError(t, ctrl.Approve(db, owner, spender, 0))
	allowance, err = ctrl.Allowance(db, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), allowance)
}

func assertBalance(t testing.TB, db bazaar.ReadOnlyKVStore, ctrl Controller, addr bazaar.Address, want uint64) {
	t.Helper()
	got, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, want, got, "balance of %s", addr)
}
