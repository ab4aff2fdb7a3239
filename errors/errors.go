package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by every extension. Extensions register their own
// codes, from 1000 up, with Register.
var (
	ErrUnauthorized       = Register(2, "unauthorized")
	ErrNotFound           = Register(3, "not found")
	ErrInvalidMsg         = Register(4, "invalid message")
	ErrDuplicate          = Register(6, "duplicate")
	ErrCannotBeModified   = Register(8, "cannot be modified")
	ErrEmpty              = Register(9, "value is empty")
	ErrInvalidState       = Register(10, "invalid state")
	ErrInvalidType        = Register(11, "invalid type")
	ErrInsufficientAmount = Register(12, "insufficient amount")
	ErrInvalidAmount      = Register(13, "invalid amount")
	ErrInvalidInput       = Register(14, "invalid input")
	ErrOverflow           = Register(16, "an operation cannot be completed due to value overflow")

	// ErrHuman marks a code path that is unreachable unless the code
	// itself is wrong.
	ErrHuman = Register(7, "coding error")

	// ErrDatabase is returned when the store fails or holds data that
	// cannot be decoded.
	ErrDatabase = Register(17, "database")

	// ErrIteratorDone is the end of iteration sentinel, not a failure.
	ErrIteratorDone = Register(18, "iterator done")

	// ErrNetwork is returned when a remote node is unreachable or answers
	// with a malformed response.
	ErrNetwork = Register(19, "network")

	// ErrPanic wraps a recovered panic. Its message is redacted before it
	// reaches a client.
	ErrPanic = Register(111222, "panic")
)

// usedCodes guards code uniqueness. Code 1 is reserved for errors that
// were never registered.
var usedCodes = map[uint32]*Error{1: nil}

// Register declares a root error. Call it from package level variables
// only: reusing a code panics.
func Register(code uint32, description string) *Error {
	if prev, ok := usedCodes[code]; ok {
		if prev == nil {
			panic(fmt.Sprintf("error code %d is reserved", code))
		}
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Error is a root error. Errors returned at runtime wrap one of them, so
// callers test the kind with Is and clients receive the code.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

func (e Error) Code() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is reports whether err, or anything it wraps, is e. For grouped errors
// one matching member is enough. A nil receiver matches nil errors only.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		if g, ok := err.(unpacker); ok {
			for _, member := range g.Unpack() {
				if e.Is(member) {
					return true
				}
			}
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap adds description to err. The innermost wrap records a stack trace
// and a nil err stays nil, so "return errors.Wrap(err, ...)" is safe at the
// end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{msg: description, parent: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format adds the stack trace for %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	fmt.Fprint(s, e.Error())
	if verb != 'v' || !s.Flag('+') {
		return
	}
	if st := stackTrace(e); st != nil {
		fmt.Fprint(s, "\n")
		st.Format(s, verb)
	}
}

// Recover turns a panic into an ErrPanic stored in err. It must be
// deferred.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

// stackTracer is implemented by errors created with github.com/pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the outermost stack trace found in the chain.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return nil
}

// isNilErr also treats a typed nil pointer as nil.
func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
