package sigs

import (
	"github.com/iov-one/bazaar/errors"
)

var (
	// ErrInvalidSequence is returned when the nonce of a signature does not
	// match the one stored for its signer.
	ErrInvalidSequence = errors.Register(1301, "invalid sequence number")
)
