package sigs

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/bazaartest"
)

// StdTx is a signed request carrying a mocked message.
type StdTx struct {
	bazaar.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	msg := &bazaartest.Msg{RoutePath: "test/sigs", Serialized: payload}
	return &StdTx{Tx: &bazaartest.Tx{Msg: msg}}
}

func (tx StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx StdTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []bazaar.Condition
}

var _ bazaar.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &bazaar.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &bazaar.DeliverResult{}, nil
}
