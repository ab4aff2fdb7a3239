package nft

import "github.com/iov-one/bazaar/errors"

var (
	// ErrUnknownItem is returned when an item was never minted.
	ErrUnknownItem = errors.Register(1101, "unknown item")

	// ErrNotHolder is returned when an item is moved by an account that
	// does not hold it.
	ErrNotHolder = errors.Register(1102, "not the item holder")
)
