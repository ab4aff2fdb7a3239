package utils

import (
	"fmt"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Recovery turns a panic raised anywhere below it into an ErrPanic
// error. The panic and its stack are logged, the caller only sees a
// redacted error.
type Recovery struct{}

var _ bazaar.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Checker) (_ *bazaar.CheckResult, err error) {
	defer recoverInto(ctx, tx, &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Deliverer) (_ *bazaar.DeliverResult, err error) {
	defer recoverInto(ctx, tx, &err)
	return next.Deliver(ctx, db, tx)
}

// recoverInto must be deferred directly, otherwise recover returns nil.
func recoverInto(ctx bazaar.Context, tx bazaar.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	bazaar.GetLogger(ctx).Error("recovered from panic",
		"path", pathOf(tx),
		"panic", r,
		"trace", fmt.Sprintf("%+v", *err))
}

// pathOf is GetPath that tolerates a missing request.
func pathOf(tx bazaar.Tx) string {
	if tx == nil {
		return ""
	}
	return bazaar.GetPath(tx)
}
