package app

import (
	"github.com/iov-one/bazaar/errors"
)

var (
	// ErrNoSuchPath is returned when a message or a query path is not
	// registered.
	ErrNoSuchPath = errors.Register(20, "path not registered")
)
