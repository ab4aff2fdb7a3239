package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/bazaartest"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const decoratorChain = "deco-rate"

func TestDecorator(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	signer := key.PublicKey().Condition()

	sign := func(tx *StdTx, nonce int64) *StdSignature {
		sig, err := SignTx(key, tx, decoratorChain, nonce)
		require.NoError(t, err)
		return sig
	}

	cases := map[string]struct {
		nonces      []int64
		wantErr     *errors.Error
		wantSigners []bazaar.Condition
	}{
		"signed with the first nonce": {
			nonces:      []int64{0},
			wantSigners: []bazaar.Condition{signer},
		},
		"unsigned": {
			wantErr: errors.ErrUnauthorized,
		},
		"nonce from the future": {
			nonces:  []int64{3},
			wantErr: ErrInvalidSequence,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := bazaar.WithChainID(context.Background(), decoratorChain)
			tx := NewStdTx([]byte("list item 1"))
			for _, n := range tc.nonces {
				tx.Signatures = append(tx.Signatures, sign(tx, n))
			}

			dec := NewDecorator()
			checker := new(SigCheckHandler)
			_, err := dec.Check(ctx, store.MemStore().CacheWrap(), tx, checker)
			require.True(t, tc.wantErr.Is(err), "check: %+v", err)

			deliverer := new(SigCheckHandler)
			_, err = dec.Deliver(ctx, store.MemStore(), tx, deliverer)
			require.True(t, tc.wantErr.Is(err), "deliver: %+v", err)

			if tc.wantErr == nil {
				assert.Equal(t, tc.wantSigners, checker.Signers)
				assert.Equal(t, tc.wantSigners, deliverer.Signers)
			}
		})
	}
}

func TestDecoratorRejectsReplay(t *testing.T) {
	db := store.MemStore()
	ctx := bazaar.WithChainID(context.Background(), decoratorChain)
	key := crypto.GenPrivKeyEd25519()

	tx := NewStdTx([]byte("buy item 1"))
	sig, err := SignTx(key, tx, decoratorChain, 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sig}

	_, err = NewDecorator().Deliver(ctx, db, tx, new(SigCheckHandler))
	require.NoError(t, err)

	_, err = NewDecorator().Deliver(ctx, db, tx, new(SigCheckHandler))
	assert.True(t, ErrInvalidSequence.Is(err))

	next, err := NextNonce(db, key.PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}

func TestDecoratorUnsignedRequest(t *testing.T) {
	kv := store.MemStore()
	ctx := bazaar.WithChainID(context.Background(), decoratorChain)
	tx := &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "test/unsigned"}}
	handler := new(SigCheckHandler)

	_, err := NewDecorator().Deliver(ctx, kv, tx, handler)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Empty(t, handler.Signers)

	_, err = NewDecorator().Check(ctx, kv.CacheWrap(), tx, handler)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestAuthenticate(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	cond := key.PublicKey().Condition()
	other := crypto.GenPrivKeyEd25519().PublicKey()

	ctx := withSigners(context.Background(), []bazaar.Condition{cond})
	auth := Authenticate{}
	assert.Equal(t, []bazaar.Condition{cond}, auth.GetConditions(ctx))
	assert.True(t, auth.HasAddress(ctx, key.PublicKey().Address()))
	assert.False(t, auth.HasAddress(ctx, other.Address()))
	assert.Empty(t, auth.GetConditions(context.Background()))
}
