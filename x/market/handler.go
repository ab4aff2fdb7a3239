package market

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/gconf"
	"github.com/iov-one/bazaar/orm"
	"github.com/iov-one/bazaar/x"
)

const (
	EventTokenCreated  bazaar.EventKind = "token-created"
	EventSaleExecuted  bazaar.EventKind = "sale-executed"
	EventResaleListed  bazaar.EventKind = "resale-listed"
	EventSaleCancelled bazaar.EventKind = "sale-cancelled"
	EventTaxPaid       bazaar.EventKind = "tax-paid"
	EventFeeUpdated    bazaar.EventKind = "fee-updated"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r bazaar.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(&CreateTokenMsg{}, &createTokenHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ExecuteSaleMsg{}, &executeSaleHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ReSaleMsg{}, &reSaleHandler{auth: auth, ctrl: ctrl})
	r.Handle(&PayTaxMsg{}, &payTaxHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CancelSaleMsg{}, &cancelSaleHandler{auth: auth, ctrl: ctrl})
	r.Handle(&SetFeePercentageMsg{}, &setFeeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(optKey, &Configuration{}, auth, nil).WithFixedOwner())
}

// RegisterQuery will register listings as "/listings" and tax accruals as
// "/taxes".
func RegisterQuery(qr bazaar.QueryRouter) {
	NewListingBucket().Register("listings", qr)
	NewTaxBucket().Register("taxes", qr)
}

type createTokenHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ bazaar.Handler = (*createTokenHandler)(nil)

func (h *createTokenHandler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h *createTokenHandler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	seller, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.ctrl.CreateToken(db, seller, msg.Locator, msg.Price)
	if err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Data: orm.EncodeSequence(id),
		Events: []bazaar.Event{
			{Kind: EventTokenCreated, ItemID: id, From: seller, To: EscrowAddress(), Amount: msg.Price},
		},
	}, nil
}

func (h *createTokenHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *CreateTokenMsg, error) {
	var msg CreateTokenMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return addr, &msg, nil
}

type executeSaleHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ bazaar.Handler = (*executeSaleHandler)(nil)

func (h *executeSaleHandler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h *executeSaleHandler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	buyer, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	sale, err := h.ctrl.ExecuteSale(db, buyer, msg.ItemID, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Events: []bazaar.Event{
			{Kind: EventSaleExecuted, ItemID: sale.ItemID, From: sale.Seller, To: sale.Buyer, Amount: sale.Price, Fee: sale.Fee},
		},
	}, nil
}

func (h *executeSaleHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *ExecuteSaleMsg, error) {
	var msg ExecuteSaleMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return addr, &msg, nil
}

type reSaleHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ bazaar.Handler = (*reSaleHandler)(nil)

func (h *reSaleHandler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h *reSaleHandler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	seller, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	tax, err := h.ctrl.ReSale(db, seller, msg.ItemID, msg.Price)
	if err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Events: []bazaar.Event{
			{Kind: EventResaleListed, ItemID: msg.ItemID, From: seller, To: EscrowAddress(), Amount: msg.Price, Fee: tax},
		},
	}, nil
}

func (h *reSaleHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *ReSaleMsg, error) {
	var msg ReSaleMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return addr, &msg, nil
}

type payTaxHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ bazaar.Handler = (*payTaxHandler)(nil)

func (h *payTaxHandler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h *payTaxHandler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	addr, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	paid, err := h.ctrl.PayTaxToOwner(db, addr, msg.ItemID)
	if err != nil {
		return nil, err
	}
	conf, err := h.ctrl.Configuration(db)
	if err != nil {
		return nil, err
	}
	events := make([]bazaar.Event, 0, len(paid))
	for _, a := range paid {
		events = append(events, bazaar.Event{
			Kind:   EventTaxPaid,
			ItemID: a.ItemID,
			From:   a.Debtor,
			To:     conf.Owner,
			Amount: a.Amount,
		})
	}
	return &bazaar.DeliverResult{Events: events}, nil
}

func (h *payTaxHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *PayTaxMsg, error) {
	var msg PayTaxMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return addr, &msg, nil
}

type cancelSaleHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ bazaar.Handler = (*cancelSaleHandler)(nil)

func (h *cancelSaleHandler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h *cancelSaleHandler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	seller, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	prev, err := h.ctrl.CancelSale(db, seller, msg.ItemID)
	if err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Events: []bazaar.Event{
			{Kind: EventSaleCancelled, ItemID: msg.ItemID, From: seller, Amount: prev.Price},
		},
	}, nil
}

func (h *cancelSaleHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *CancelSaleMsg, error) {
	var msg CancelSaleMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return addr, &msg, nil
}

type setFeeHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ bazaar.Handler = (*setFeeHandler)(nil)

func (h *setFeeHandler) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &bazaar.CheckResult{}, nil
}

func (h *setFeeHandler) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx) (*bazaar.DeliverResult, error) {
	owner, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.SetFeePercentage(db, owner, msg.FeePercentage); err != nil {
		return nil, err
	}
	return &bazaar.DeliverResult{
		Events: []bazaar.Event{
			{Kind: EventFeeUpdated, From: owner, Amount: uint64(msg.FeePercentage)},
		},
	}, nil
}

func (h *setFeeHandler) validate(ctx bazaar.Context, tx bazaar.Tx) (bazaar.Address, *SetFeePercentageMsg, error) {
	var msg SetFeePercentageMsg
	if err := bazaar.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return addr, &msg, nil
}
