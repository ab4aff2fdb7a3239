package app

import (
	"github.com/iov-one/bazaar"
	"github.com/tendermint/tendermint/libs/log"
)

// EventSink receives the events of every committed operation, in commit
// order. Publish is called while the ledger lock is held and must not call
// back into the ledger.
type EventSink interface {
	Publish(version int64, events []bazaar.Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(version int64, events []bazaar.Event)

func (fn EventSinkFunc) Publish(version int64, events []bazaar.Event) {
	fn(version, events)
}

// LogSink writes every event to the logger.
type LogSink struct {
	logger log.Logger
}

var _ EventSink = LogSink{}

// NewLogSink returns a sink that logs events at info level.
func NewLogSink(logger log.Logger) LogSink {
	return LogSink{logger: logger.With("module", "events")}
}

func (s LogSink) Publish(version int64, events []bazaar.Event) {
	for _, e := range events {
		s.logger.Info(string(e.Kind),
			"version", version,
			"item", e.ItemID,
			"from", e.From,
			"to", e.To,
			"amount", e.Amount,
			"fee", e.Fee)
	}
}
