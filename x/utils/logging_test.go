package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/bazaartest"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	ctx := bazaar.WithLogger(context.Background(), log.NewTMLogger(&logs))
	tx := &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "test/logged"}}

	h := &bazaartest.Handler{DeliverErr: errors.ErrUnauthorized}
	_, err := NewLogging().Deliver(ctx, store.MemStore(), tx, h)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Contains(t, logs.String(), "test/logged")
	assert.Contains(t, logs.String(), "unauthorized")

	logs.Reset()
	h = &bazaartest.Handler{CheckResult: bazaar.CheckResult{Log: "all good"}}
	res, err := NewLogging().Check(ctx, store.MemStore(), tx, h)
	require.NoError(t, err)
	assert.Equal(t, "all good", res.Log)
	assert.Contains(t, logs.String(), "all good")
}

func TestLoggingDeliverDetails(t *testing.T) {
	var logs bytes.Buffer
	ctx := bazaar.WithLogger(context.Background(), log.NewTMLogger(&logs))
	ctx = bazaar.WithHeight(ctx, 7)
	tx := &bazaartest.Tx{Msg: &bazaartest.Msg{RoutePath: "market/create_token"}}

	h := &bazaartest.Handler{DeliverResult: bazaar.DeliverResult{
		Log:    "minted",
		Events: []bazaar.Event{{Kind: "token-created", ItemID: 1}},
	}}
	_, err := NewLogging().Deliver(ctx, store.MemStore(), tx, h)
	require.NoError(t, err)
	out := logs.String()
	assert.Contains(t, out, "minted")
	assert.Contains(t, out, "events=1")
	assert.Contains(t, out, "version=7")

	logs.Reset()
	h = &bazaartest.Handler{DeliverErr: errors.ErrNotFound}
	_, err = NewLogging().Deliver(ctx, store.MemStore(), tx, h)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Contains(t, logs.String(), "code=3")
}
