package cash

import "github.com/iov-one/bazaar/errors"

var (
	// ErrInsufficientFunds is returned when an account balance is lower
	// than the requested amount.
	ErrInsufficientFunds = errors.Register(1201, "insufficient funds")

	// ErrAllowance is returned when a spender moves more than it was
	// approved to.
	ErrAllowance = errors.Register(1202, "allowance exceeded")
)
