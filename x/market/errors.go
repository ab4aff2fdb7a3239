package market

import "github.com/iov-one/bazaar/errors"

var (
	ErrBuyerIsSeller  = errors.Register(1001, "buyer cannot be seller")
	ErrInvalidRequest = errors.Register(1002, "invalid request")
	ErrUnknownItem    = errors.Register(1003, "unknown item")
	ErrNoAccruedTax   = errors.Register(1004, "no accrued tax")
	ErrNotListed      = errors.Register(1005, "item not listed")
	ErrInvalidFee     = errors.Register(1006, "invalid fee percentage")
)
