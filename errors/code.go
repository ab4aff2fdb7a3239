package errors

import (
	"errors"
	"fmt"
)

const (
	// SuccessCode is returned for a nil error to signal that the
	// processing was successful.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed under
	// an internal error code and a generic message instead of detailed
	// error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// CodeInfo returns the code and log message that should be presented to a
// client for the given error. Any error that does not provide Code
// information is categorized as error with code 1.
// When not running in a debug mode all messages of errors that do not provide
// Code information are replaced with generic "internal error".
func CodeInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}

	// Only non-internal errors information can be exposed. Any error that
	// does not explicitly expose its state by providing a code must be
	// silenced.
	if code := errCode(err); code != internalCode {
		if debug {
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCode, internalLog
}

// FromCode returns an error built from the code and log received from a
// remote node. Known codes wrap the registered error, so that Is works on
// both ends of a connection.
func FromCode(code uint32, log string) error {
	if code == SuccessCode {
		return nil
	}
	if e, ok := usedCodes[code]; ok && e != nil {
		return &remoteError{root: e, log: log}
	}
	return &remoteError{root: &Error{code: code, desc: internalLog}, log: log}
}

// remoteError keeps the log of the remote node as its message.
type remoteError struct {
	root *Error
	log  string
}

func (e *remoteError) Error() string {
	if e.log == "" {
		return e.root.desc
	}
	return e.log
}

func (e *remoteError) Cause() error {
	return e.root
}

type coder interface {
	Code() uint32
}

// errCode test if given error contains a code and returns the value of it if
// available. This function is testing for the causer interface as well and
// unwraps the error.
func errCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// Redact replace all errors that do not initialize with a registered error
// with a generic internal error instance. This function is supposed to hide
// implementation details errors and leave only those that the ledger
// originates.
//
// This is a no-operation function when running in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) {
		return errors.New(internalLog)
	}
	if errCode(err) == internalCode {
		return errors.New(internalLog)
	}
	return err
}
