package utils

import (
	"time"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging writes one entry per request with its path, outcome and
// duration. Failures are logged as errors. Successful Checks are only
// logged at debug level.
type Logging struct{}

var _ bazaar.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Checker) (*bazaar.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	logger := requestLogger(ctx, tx, start, err)
	switch {
	case err != nil:
		logger.Error("check failed")
	default:
		logger.Debug(res.Log)
	}
	return res, err
}

func (Logging) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Deliverer) (*bazaar.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	logger := requestLogger(ctx, tx, start, err)
	switch {
	case err != nil:
		logger.Error("deliver failed")
	default:
		logger.With("events", len(res.Events)).Info(res.Log)
	}
	return res, err
}

func requestLogger(ctx bazaar.Context, tx bazaar.Tx, start time.Time, err error) log.Logger {
	logger := bazaar.GetLogger(ctx).With(
		"path", pathOf(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
	if height, ok := bazaar.GetHeight(ctx); ok {
		logger = logger.With("version", height)
	}
	if err != nil {
		code, _ := errors.CodeInfo(err, false)
		logger = logger.With("code", code, "err", err)
	}
	return logger
}
