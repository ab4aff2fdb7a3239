package utils

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Savepoint runs the rest of the stack inside a cache of the store. The
// cache is written back only if the call succeeds, so a failed request
// leaves no partial writes behind. Each phase must be enabled explicitly.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ bazaar.Decorator = Savepoint{}

// NewSavepoint returns a disabled savepoint. Enable it with OnCheck or
// OnDeliver.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck enables the savepoint for Check.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver enables the savepoint for Deliver.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Checker) (*bazaar.CheckResult, error) {
	var res *bazaar.CheckResult
	err := withSavepoint(s.onCheck, db, func(kv bazaar.KVStore) (err error) {
		res, err = next.Check(ctx, kv, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Deliverer) (*bazaar.DeliverResult, error) {
	var res *bazaar.DeliverResult
	err := withSavepoint(s.onDeliver, db, func(kv bazaar.KVStore) (err error) {
		res, err = next.Deliver(ctx, kv, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withSavepoint calls fn on a cache of db and keeps its writes only if fn
// succeeds. A store that cannot be cached is passed through unchanged.
func withSavepoint(enabled bool, db bazaar.KVStore, fn func(bazaar.KVStore) error) error {
	cacheable, ok := db.(bazaar.CacheableKVStore)
	if !enabled || !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
