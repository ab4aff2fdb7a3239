package marketd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/orm"
	"github.com/iov-one/bazaar/x/cash"
	"github.com/iov-one/bazaar/x/market"
	"github.com/iov-one/bazaar/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "bazaar-test"

type testNode struct {
	*Node
	t *testing.T
}

func newTestNode(t *testing.T, admin bazaar.Address, fee uint32, accounts ...cash.GenesisAccount) *testNode {
	t.Helper()
	kv, err := CommitKVStore("", 0)
	require.NoError(t, err)
	node, err := Application("marketd", kv, log.NewNopLogger())
	require.NoError(t, err)

	gen, err := GenInitOptions(GenesisOptions{
		ChainID:       testChainID,
		Admin:         admin,
		FeePercentage: fee,
		Accounts:      accounts,
	})
	require.NoError(t, err)
	_, err = node.Ledger.InitGenesis(gen, Initializer())
	require.NoError(t, err)
	return &testNode{Node: node, t: t}
}

// signed returns the JSON encoded request signed with the next nonce of the
// signer.
func (n *testNode) signed(signer *crypto.PrivateKey, msg bazaar.Msg) []byte {
	n.t.Helper()
	tx, err := NewTx(msg)
	require.NoError(n.t, err)

	var nonce int64
	err = n.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		nonce, err = sigs.NextNonce(db, signer.PublicKey().Address())
		return err
	})
	require.NoError(n.t, err)
	require.NoError(n.t, tx.Sign(signer, testChainID, nonce))

	raw, err := json.Marshal(tx)
	require.NoError(n.t, err)
	return raw
}

func (n *testNode) deliver(raw []byte) (*bazaar.DeliverResult, error) {
	tx, err := DecodeTx(n.Router, raw)
	if err != nil {
		return nil, err
	}
	return n.Ledger.Deliver(context.Background(), tx)
}

func (n *testNode) balance(addr bazaar.Address) uint64 {
	var amount uint64
	err := n.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		amount, err = n.Cash.Balance(db, addr)
		return err
	})
	require.NoError(n.t, err)
	return amount
}

func TestMarketplaceFlow(t *testing.T) {
	admin := crypto.GenPrivKeyEd25519()
	seller := crypto.GenPrivKeyEd25519()
	buyer := crypto.GenPrivKeyEd25519()

	n := newTestNode(t, admin.PublicKey().Address(), 3,
		cash.GenesisAccount{Address: buyer.PublicKey().Address(), Balance: 1000},
	)

	res, err := n.deliver(n.signed(seller, &market.CreateTokenMsg{Locator: "ipfs://item", Price: 100}))
	require.NoError(t, err)
	id, err := orm.DecodeSequence(res.Data)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, market.EventTokenCreated, res.Events[0].Kind)

	// Without an allowance for the escrow the sale cannot be paid.
	_, err = n.deliver(n.signed(buyer, &market.ExecuteSaleMsg{ItemID: id, Amount: 100}))
	require.Error(t, err)

	_, err = n.deliver(n.signed(buyer, &cash.ApproveMsg{Spender: market.EscrowAddress(), Amount: 100}))
	require.NoError(t, err)
	res, err = n.deliver(n.signed(buyer, &market.ExecuteSaleMsg{ItemID: id, Amount: 100}))
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, market.EventSaleExecuted, res.Events[0].Kind)

	assert.Equal(t, uint64(900), n.balance(buyer.PublicKey().Address()))
	assert.Equal(t, uint64(97), n.balance(seller.PublicKey().Address()))
	assert.Equal(t, uint64(3), n.balance(admin.PublicKey().Address()))

	err = n.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		holder, err := n.Market.OwnerOf(db, id)
		require.NoError(t, err)
		assert.Equal(t, buyer.PublicKey().Address(), holder)

		uri, err := n.Market.TokenURI(db, id)
		require.NoError(t, err)
		assert.Equal(t, "ipfs://item", uri)
		return nil
	})
	require.NoError(t, err)
}

func TestReplayedRequestIsRejected(t *testing.T) {
	admin := crypto.GenPrivKeyEd25519()
	seller := crypto.GenPrivKeyEd25519()
	n := newTestNode(t, admin.PublicKey().Address(), 0)

	raw := n.signed(seller, &market.CreateTokenMsg{Locator: "ipfs://a", Price: 5})
	_, err := n.deliver(raw)
	require.NoError(t, err)

	_, err = n.deliver(raw)
	require.Error(t, err)
	assert.True(t, sigs.ErrInvalidSequence.Is(err))
}

func TestFailedRequestKeepsNonce(t *testing.T) {
	admin := crypto.GenPrivKeyEd25519()
	seller := crypto.GenPrivKeyEd25519()
	n := newTestNode(t, admin.PublicKey().Address(), 0)

	// Only the administrator may change the fee.
	_, err := n.deliver(n.signed(seller, &market.SetFeePercentageMsg{FeePercentage: 10}))
	require.Error(t, err)

	err = n.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		nonce, err := sigs.NextNonce(db, seller.PublicKey().Address())
		require.NoError(t, err)
		assert.Equal(t, int64(0), nonce)
		return nil
	})
	require.NoError(t, err)
}

func TestUnsignedRequest(t *testing.T) {
	admin := crypto.GenPrivKeyEd25519()
	n := newTestNode(t, admin.PublicKey().Address(), 0)

	tx, err := NewTx(&market.CreateTokenMsg{Locator: "ipfs://a", Price: 5})
	require.NoError(t, err)
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	_, err = n.deliver(raw)
	require.Error(t, err)
}
