package app

import (
	"reflect"

	"github.com/iov-one/bazaar"
)

// Decorators is an ordered stack of decorators waiting for the handler it
// will wrap. The first decorator sees a request first.
type Decorators struct {
	stack []bazaar.Decorator
}

// ChainDecorators starts a stack. The marketplace daemon uses
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//		utils.NewSavepoint().OnDeliver(),
//	).WithHandler(router)
//
// Nil decorators are skipped, so optional layers can be passed as is.
func ChainDecorators(ds ...bazaar.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new stack with ds appended. The receiver is not
// modified.
func (d Decorators) Chain(ds ...bazaar.Decorator) Decorators {
	stack := make([]bazaar.Decorator, 0, len(d.stack)+len(ds))
	stack = append(stack, d.stack...)
	for _, dec := range ds {
		if !isNil(dec) {
			stack = append(stack, dec)
		}
	}
	return Decorators{stack: stack}
}

func isNil(d bazaar.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h bazaar.Handler) bazaar.Handler {
	for i := len(d.stack) - 1; i >= 0; i-- {
		h = layer{dec: d.stack[i], next: h}
	}
	return h
}

// layer runs one decorator around the rest of the stack.
type layer struct {
	dec  bazaar.Decorator
	next bazaar.Handler
}

var _ bazaar.Handler = layer{}

func (l layer) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	return l.dec.Check(ctx, db, tx, l.next)
}

func (l layer) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	return l.dec.Deliver(ctx, db, tx, l.next)
}
