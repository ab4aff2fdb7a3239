/*
Package app drives the extensions: it routes requests to their handlers,
runs every operation in its own transaction and commits the result as a new
version of the persistent store.
*/
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger is the transactional boundary of all state changes.
//
// Operations are serialized: each one runs against a fresh cache wrap of the
// last committed state and is either committed as a new version or discarded
// as a whole. Events are published only after the commit succeeded.
type Ledger struct {
	// mu serializes deliveries. Reads and checks share it.
	mu sync.RWMutex

	// name is returned from Info
	name string

	store   *CommitStore
	handler bazaar.Handler
	queries bazaar.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in InitGenesis
	chainID string

	logger log.Logger
	sinks  []EventSink
	now    func() time.Time
}

// NewLedger loads the latest state of given store. The handler processes all
// requests and the query router serves all reads.
func NewLedger(name string, kv bazaar.CommitKVStore, h bazaar.Handler, qr bazaar.QueryRouter) (*Ledger, error) {
	store, err := NewCommitStore(kv)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(store.Begin())
	if err != nil {
		return nil, err
	}
	return &Ledger{
		name:    name,
		store:   store,
		handler: h,
		queries: qr,
		chainID: chainID,
		logger:  log.NewNopLogger(),
		now:     time.Now,
	}, nil
}

// WithLogger sets the logger on the Ledger and returns it,
// to make it easy to chain in initialization
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger
	return l
}

// WithClock replaces the source of the operation time.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Subscribe registers a sink for the events of all future commits.
func (l *Ledger) Subscribe(s EventSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

// ChainID returns the identifier set by the genesis, or an empty string if
// the ledger was not initialized yet.
func (l *Ledger) ChainID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chainID
}

// Info returns the name and the last committed version.
func (l *Ledger) Info() (string, bazaar.CommitID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, err := l.store.CommitInfo()
	return l.name, id, err
}

// InitGenesis stores the chain id and lets the initializer load the
// extensions state. It can be called only once in the lifetime of a store.
func (l *Ledger) InitGenesis(gen *Genesis, init bazaar.Initializer) (bazaar.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return bazaar.CommitID{}, errors.Wrapf(errors.ErrInvalidState, "genesis previously loaded for chain %s", l.chainID)
	}
	if err := gen.Validate(); err != nil {
		return bazaar.CommitID{}, errors.Wrap(err, "genesis")
	}

	wrap := l.store.Begin()
	if err := saveChainID(wrap, gen.ChainID); err != nil {
		wrap.Discard()
		return bazaar.CommitID{}, err
	}
	if err := init.FromGenesis(gen.AppState, wrap); err != nil {
		wrap.Discard()
		return bazaar.CommitID{}, errors.Wrap(err, "initialize from genesis")
	}
	id, err := l.store.Commit(wrap)
	if err != nil {
		return bazaar.CommitID{}, err
	}
	l.chainID = gen.ChainID
	l.logger.Info("Genesis loaded", "chain", l.chainID, "version", id.Version)
	return id, nil
}

// Deliver executes the request and commits its result. If the handler fails
// no state change is persisted.
func (l *Ledger) Deliver(ctx context.Context, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, err := l.context(ctx, "deliver", tx)
	if err != nil {
		return nil, err
	}

	wrap := l.store.Begin()
	res, err := deliver(ctx, l.handler, wrap, tx)
	if err != nil {
		wrap.Discard()
		return nil, err
	}
	id, err := l.store.Commit(wrap)
	if err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	l.logger.Debug("Commit synced",
		"version", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash),
		"path", bazaar.GetPath(tx))

	for _, s := range l.sinks {
		s.Publish(id.Version, res.Events)
	}
	return res, nil
}

// Check runs the request against the current state without persisting any
// change.
func (l *Ledger) Check(ctx context.Context, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx, err := l.context(ctx, "check", tx)
	if err != nil {
		return nil, err
	}
	wrap := l.store.Begin()
	defer wrap.Discard()
	return check(ctx, l.handler, wrap, tx)
}

/*
Query gets data from the committed state.

Path may be "/<bucket>" or "/<bucket>/<index>". It may be followed by
"?prefix" to make a prefix query. The version the result was read at is
returned together with the models.
*/
func (l *Ledger) Query(path string, data []byte) (int64, []bazaar.Model, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	path, mod := bazaar.ParseQueryPath(path)
	qh := l.queries.Handler(path)
	if qh == nil {
		return 0, nil, errors.Wrapf(ErrNoSuchPath, "query %s", path)
	}
	id, err := l.store.CommitInfo()
	if err != nil {
		return 0, nil, err
	}
	db := l.store.Begin()
	defer db.Discard()
	models, err := qh.Query(db, mod, data)
	if err != nil {
		return 0, nil, err
	}
	return id.Version, models, nil
}

// QueryPaths lists every path Query accepts.
func (l *Ledger) QueryPaths() []string {
	return l.queries.Paths()
}

// View calls fn with a read only view of the committed state.
func (l *Ledger) View(fn func(db bazaar.ReadOnlyKVStore, version int64) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, err := l.store.CommitInfo()
	if err != nil {
		return err
	}
	db := l.store.Begin()
	defer db.Discard()
	return fn(db, id.Version)
}

// context returns the context of the next operation. Must be called with
// the lock held.
func (l *Ledger) context(ctx context.Context, call string, tx bazaar.Tx) (context.Context, error) {
	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "genesis not loaded")
	}
	id, err := l.store.CommitInfo()
	if err != nil {
		return nil, err
	}
	ctx = bazaar.WithLogger(ctx, l.logger)
	ctx = bazaar.WithChainID(ctx, l.chainID)
	ctx = bazaar.WithHeight(ctx, id.Version+1)
	ctx = bazaar.WithBlockTime(ctx, l.now().UTC())
	ctx = bazaar.WithLogInfo(ctx, "call", call, "path", bazaar.GetPath(tx))
	return ctx, nil
}

// deliver calls the handler, capturing any panics
func deliver(ctx bazaar.Context, h bazaar.Handler, db bazaar.KVStore, tx bazaar.Tx) (res *bazaar.DeliverResult, err error) {
	defer errors.Recover(&err)
	res, err = h.Deliver(ctx, db, tx)
	if err == nil && res == nil {
		res = &bazaar.DeliverResult{}
	}
	return res, err
}

// check calls the handler, capturing any panics
func check(ctx bazaar.Context, h bazaar.Handler, db bazaar.KVStore, tx bazaar.Tx) (res *bazaar.CheckResult, err error) {
	defer errors.Recover(&err)
	res, err = h.Check(ctx, db, tx)
	if err == nil && res == nil {
		res = &bazaar.CheckResult{}
	}
	return res, err
}
