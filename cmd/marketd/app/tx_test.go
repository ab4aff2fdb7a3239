package marketd

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/bazaar/app"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTx(t *testing.T) {
	router := Router(Authenticator(), nil, nil)

	cases := map[string]struct {
		raw     string
		wantErr *errors.Error
		wantMsg interface{}
	}{
		"create token": {
			raw:     `{"path": "market/create_token", "msg": {"locator": "ipfs://x", "price": 12}}`,
			wantMsg: &market.CreateTokenMsg{Locator: "ipfs://x", Price: 12},
		},
		"execute sale": {
			raw:     `{"path": "market/execute_sale", "msg": {"item_id": 3, "amount": 50}}`,
			wantMsg: &market.ExecuteSaleMsg{ItemID: 3, Amount: 50},
		},
		"unknown path": {
			raw:     `{"path": "market/steal", "msg": {}}`,
			wantErr: app.ErrNoSuchPath,
		},
		"missing message": {
			raw:     `{"path": "market/pay_tax"}`,
			wantErr: errors.ErrEmpty,
		},
		"malformed message": {
			raw:     `{"path": "market/pay_tax", "msg": {"item_id": "one"}}`,
			wantErr: errors.ErrInvalidMsg,
		},
		"not json": {
			raw:     `path=market/pay_tax`,
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			tx, err := DecodeTx(router, []byte(tc.raw))
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %s", err)
				return
			}
			require.NoError(t, err)
			msg, err := tx.GetMsg()
			require.NoError(t, err)
			assert.Equal(t, tc.wantMsg, msg)
		})
	}
}

func TestTxSignBytes(t *testing.T) {
	tx, err := NewTx(&market.CancelSaleMsg{ItemID: 4})
	require.NoError(t, err)

	bz, err := tx.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, "market/cancel_sale\x00"+`{"item_id":4}`, string(bz))

	signer := crypto.GenPrivKeyEd25519()
	require.NoError(t, tx.Sign(signer, testChainID, 7))
	require.Len(t, tx.GetSignatures(), 1)
	assert.Equal(t, int64(7), tx.GetSignatures()[0].Sequence)

	// The signature survives the JSON round trip.
	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	decoded, err := DecodeTx(Router(Authenticator(), nil, nil), raw)
	require.NoError(t, err)
	require.Len(t, decoded.GetSignatures(), 1)
	assert.Equal(t, tx.GetSignatures()[0].Signature, decoded.GetSignatures()[0].Signature)
}
