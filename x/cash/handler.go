package cash

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x"
)

const (
	// EventTransfer is emitted when funds move between accounts.
	EventTransfer bazaar.EventKind = "cash-transfer"
	// EventApproval is emitted when an allowance is changed.
	EventApproval bazaar.EventKind = "cash-approval"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r bazaar.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
	r.Handle(&ApproveMsg{}, NewApproveHandler(auth, control))
}

// RegisterQuery will register the wallets as "/balances" and allowances as
// "/allowances".
func RegisterQuery(qr bazaar.QueryRouter) {
	NewWalletBucket().Register("balances", qr)
	NewAllowanceBucket().Register("allowances", qr)
}

// SendHandler will handle sending funds
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ bazaar.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and authorized
func (h SendHandler) Check(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

// Deliver moves the funds from source to destination if
// all preconditions are met
func (h SendHandler) Deliver(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Transfer(store, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Events: []bazaar.Event{
			{Kind: EventTransfer, From: msg.Source, To: msg.Destination, Amount: msg.Amount},
		},
	}, nil
}

func (h SendHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := x.RequireSigner(ctx, h.auth, msg.Source, "account owner"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ApproveHandler sets the allowance of a spender over the signer's funds.
type ApproveHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ bazaar.Handler = ApproveHandler{}

// NewApproveHandler creates a handler for ApproveMsg
func NewApproveHandler(auth x.Authenticator, control Controller) ApproveHandler {
	return ApproveHandler{
		auth:    auth,
		control: control,
	}
}

func (h ApproveHandler) Check(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h ApproveHandler) Deliver(ctx bazaar.Context, store bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	owner, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Approve(store, owner, msg.Spender, msg.Amount); err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Events: []bazaar.Event{
			{Kind: EventApproval, From: owner, To: msg.Spender, Amount: msg.Amount},
		},
	}, nil
}

func (h ApproveHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *ApproveMsg, error) {
	var msg ApproveMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return owner, &msg, nil
}
