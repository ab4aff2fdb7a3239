package app

import (
	"context"
	"testing"

	"github.com/iov-one/bazaar/bazaartest"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	r := NewRouter()

	good := &bazaartest.Msg{RoutePath: "test/good"}
	bad := &bazaartest.Msg{RoutePath: "test/bad"}
	missing := &bazaartest.Msg{RoutePath: "test/missing"}

	counter := &bazaartest.Handler{}
	r.Handle(good, counter)
	r.Handle(bad, &bazaartest.Handler{
		CheckErr:   errors.ErrInvalidState,
		DeliverErr: errors.ErrInvalidState,
	})

	// make sure invalid registrations panic
	assert.Panics(t, func() { r.Handle(good, counter) })
	assert.Panics(t, func() { r.Handle(&bazaartest.Msg{RoutePath: "l:7"}, counter) })

	ctx := context.Background()
	db := store.MemStore()

	_, err := r.Check(ctx, db, &bazaartest.Tx{Msg: good})
	assert.NoError(t, err)
	_, err = r.Deliver(ctx, db, &bazaartest.Tx{Msg: good})
	assert.NoError(t, err)
	assert.Equal(t, 2, counter.CallCount())

	_, err = r.Deliver(ctx, db, &bazaartest.Tx{Msg: bad})
	assert.True(t, errors.ErrInvalidState.Is(err))
	assert.False(t, ErrNoSuchPath.Is(err))

	_, err = r.Deliver(ctx, db, &bazaartest.Tx{Msg: missing})
	assert.True(t, ErrNoSuchPath.Is(err))
	_, err = r.Check(ctx, db, &bazaartest.Tx{Msg: missing})
	assert.True(t, ErrNoSuchPath.Is(err))

	_, err = r.Deliver(ctx, db, &bazaartest.Tx{})
	assert.True(t, errors.ErrInvalidMsg.Is(err))

	assert.Equal(t, 2, counter.CallCount())
	assert.Equal(t, []string{"test/bad", "test/good"}, r.Paths())
}

func TestRouterDecodeMsg(t *testing.T) {
	r := NewRouter()
	r.Handle(&bazaartest.Msg{RoutePath: "test/decode"}, &bazaartest.Handler{})

	msg, err := r.DecodeMsg("test/decode", []byte("payload"))
	require.NoError(t, err)
	decoded, ok := msg.(*bazaartest.Msg)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), decoded.Serialized)

	_, err = r.DecodeMsg("test/unknown", []byte("payload"))
	assert.True(t, ErrNoSuchPath.Is(err))
}
