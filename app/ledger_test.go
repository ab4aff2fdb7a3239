package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/bazaartest"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store/iavl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyInitializer writes every option as a raw key/value pair.
type keyInitializer struct{}

func (keyInitializer) FromGenesis(opts bazaar.Options, kv bazaar.KVStore) error {
	for k, v := range opts {
		if err := kv.Set([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// rawQuery serves single keys from the store.
type rawQuery struct{}

func (rawQuery) Query(db bazaar.ReadOnlyKVStore, mod string, data []byte) ([]bazaar.Model, error) {
	val, err := db.Get(data)
	if err != nil || val == nil {
		return nil, err
	}
	return []bazaar.Model{bazaar.Pair(data, val)}, nil
}

func newTestLedger(t testing.TB, h bazaar.Handler) *Ledger {
	t.Helper()
	qr := bazaar.NewQueryRouter()
	qr.Register("/raw", rawQuery{})
	l, err := NewLedger("test", iavl.NewMemCommitStore(), h, qr)
	require.NoError(t, err)
	return l
}

func testGenesis() *Genesis {
	return &Genesis{
		ChainID:  "ledger-test",
		AppState: bazaar.Options{"init": json.RawMessage(`"yes"`)},
	}
}

func TestLedgerRequiresGenesis(t *testing.T) {
	l := newTestLedger(t, &bazaartest.Handler{})
	tx := &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "test/op"}}

	_, err := l.Deliver(context.Background(), tx)
	assert.True(t, errors.ErrInvalidState.Is(err))

	id, err := l.InitGenesis(testGenesis(), keyInitializer{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.Equal(t, "ledger-test", l.ChainID())

	version, models, err := l.Query("/raw", []byte("init"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.Len(t, models, 1)
	assert.Equal(t, []byte(`"yes"`), models[0].Value)

	_, err = l.InitGenesis(testGenesis(), keyInitializer{})
	assert.True(t, errors.ErrInvalidState.Is(err))
}

func TestLedgerCommitAndRollback(t *testing.T) {
	handler := &bazaartest.Handler{
		WriteKey:   []byte("written"),
		WriteValue: []byte("value"),
		DeliverResult: bazaar.DeliverResult{
			Events: []bazaar.Event{{Kind: "test-event", ItemID: 7}},
		},
	}
	l := newTestLedger(t, handler)
	_, err := l.InitGenesis(testGenesis(), keyInitializer{})
	require.NoError(t, err)

	var published []int64
	l.Subscribe(EventSinkFunc(func(version int64, events []bazaar.Event) {
		published = append(published, version)
		assert.Equal(t, uint64(7), events[0].ItemID)
	}))

	tx := &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "test/op"}}
	ctx := context.Background()

	// check never persists
	_, err = l.Check(ctx, tx)
	require.NoError(t, err)
	_, models, err := l.Query("/raw", []byte("written"))
	require.NoError(t, err)
	assert.Empty(t, models)

	// a failing delivery is discarded as a whole
	handler.DeliverErr = errors.ErrInsufficientAmount
	_, err = l.Deliver(ctx, tx)
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
	_, models, err = l.Query("/raw", []byte("written"))
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.Empty(t, published)

	handler.DeliverErr = nil
	res, err := l.Deliver(ctx, tx)
	require.NoError(t, err)
	assert.Len(t, res.Events, 1)

	version, models, err := l.Query("/raw", []byte("written"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	require.Len(t, models, 1)
	assert.Equal(t, []byte("value"), models[0].Value)
	assert.Equal(t, []int64{2}, published)

	name, id, err := l.Info()
	require.NoError(t, err)
	assert.Equal(t, "test", name)
	assert.Equal(t, int64(2), id.Version)
}

func TestLedgerContext(t *testing.T) {
	now := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	var seen bazaar.Context
	h := handlerFunc(func(ctx bazaar.Context, db bazaar.KVStore) error {
		seen = ctx
		return nil
	})
	l := newTestLedger(t, h).WithClock(func() time.Time { return now })
	_, err := l.InitGenesis(testGenesis(), keyInitializer{})
	require.NoError(t, err)

	_, err = l.Deliver(context.Background(), &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "test/op"}})
	require.NoError(t, err)

	height, ok := bazaar.GetHeight(seen)
	assert.True(t, ok)
	assert.Equal(t, int64(2), height)
	blockTime, ok := bazaar.BlockTime(seen)
	assert.True(t, ok)
	assert.Equal(t, now, blockTime)
	assert.Equal(t, "ledger-test", bazaar.GetChainID(seen))
}

func TestLedgerRecoversPanic(t *testing.T) {
	h := handlerFunc(func(bazaar.Context, bazaar.KVStore) error {
		panic("boom")
	})
	l := newTestLedger(t, h)
	_, err := l.InitGenesis(testGenesis(), keyInitializer{})
	require.NoError(t, err)

	_, err = l.Deliver(context.Background(), &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "test/op"}})
	assert.True(t, errors.ErrPanic.Is(err))
	_, id, err := l.Info()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
}

func TestLedgerUnknownQuery(t *testing.T) {
	l := newTestLedger(t, &bazaartest.Handler{})
	_, _, err := l.Query("/nothing?prefix", nil)
	assert.True(t, ErrNoSuchPath.Is(err))
}

func TestLedgerQueryPaths(t *testing.T) {
	l := newTestLedger(t, &bazaartest.Handler{})
	assert.Equal(t, []string{"/raw"}, l.QueryPaths())
}

// handlerFunc runs the same function on check and deliver.
type handlerFunc func(bazaar.Context, bazaar.KVStore) error

func (fn handlerFunc) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	return &bazaar.CheckResult{}, fn(ctx, db)
}

func (fn handlerFunc) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	return &bazaar.DeliverResult{}, fn(ctx, db)
}
