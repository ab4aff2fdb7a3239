package bazaartest

import "github.com/iov-one/bazaar"

// Handler is a mock implementation of the bazaar.Handler interface. It
// returns configured results and counts calls.
//
// When WriteKey is set, both methods write WriteKey/WriteValue into the
// store before returning, which lets tests observe rollback behaviour.
type Handler struct {
	calls

	CheckResult bazaar.CheckResult
	CheckErr    error

	DeliverResult bazaar.DeliverResult
	DeliverErr    error

	WriteKey   []byte
	WriteValue []byte
}

var _ bazaar.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	h.check++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	h.deliver++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) write(db bazaar.KVStore) error {
	if h.WriteKey == nil {
		return nil
	}
	return db.Set(h.WriteKey, h.WriteValue)
}

// calls counts the invocations of a mock.
type calls struct {
	check   int
	deliver int
}

func (c *calls) CheckCallCount() int   { return c.check }
func (c *calls) DeliverCallCount() int { return c.deliver }
func (c *calls) CallCount() int        { return c.check + c.deliver }
