package bazaar

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLoggerContext(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(bg))

	var out bytes.Buffer
	logger := log.NewTMLogger(&out)
	ctx := WithLogger(bg, logger)
	assert.Equal(t, logger, GetLogger(ctx))

	GetLogger(WithLogInfo(ctx, "item", 7)).Info("listed")
	assert.Contains(t, out.String(), "item=7")
	assert.Equal(t, logger, GetLogger(ctx))
}

func TestHeight(t *testing.T) {
	ctx := context.Background()
	_, ok := GetHeight(ctx)
	assert.False(t, ok)

	ctx = WithHeight(ctx, 7)
	h, ok := GetHeight(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), h)
	assert.Panics(t, func() { WithHeight(ctx, 9) })

	ctx = WithLogInfo(ctx, "k", "v")
	h, _ = GetHeight(ctx)
	assert.Equal(t, int64(7), h)
}

func TestBlockTime(t *testing.T) {
	ctx := context.Background()
	_, ok := BlockTime(ctx)
	assert.False(t, ok)

	now := time.Now().UTC()
	ctx = WithBlockTime(ctx, now)
	got, ok := BlockTime(ctx)
	assert.True(t, ok)
	assert.Equal(t, now, got)
	assert.Panics(t, func() { WithBlockTime(ctx, now) })
}

func TestChainID(t *testing.T) {
	assert.Equal(t, "", GetChainID(context.Background()))
	ctx := WithChainID(context.Background(), "my-chain")
	assert.Equal(t, "my-chain", GetChainID(ctx))
	assert.Panics(t, func() { WithChainID(ctx, "my-chain") })

	cases := map[string]bool{
		"":                       false,
		"short":                  false,
		"my-chain":               true,
		"bazaar_test-01":         true,
		"with space":             false,
		"a-very-long-chain-id-1": false,
	}
	for chainID, valid := range cases {
		assert.Equal(t, valid, IsValidChainID(chainID), chainID)
		if !valid {
			assert.Panics(t, func() { WithChainID(context.Background(), chainID) }, chainID)
		}
	}
}
