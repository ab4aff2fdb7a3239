package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field name to err, for example "Price" or "Listing.Seller".
// Nested attributes use dot notation and list elements their index, as in
// "Accounts.2.Address". It returns nil if err is nil.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds the error of one field to a group of errors. Either
// argument may be nil.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.field
}

type fielder interface {
	Field() string
}

// FieldErrors returns the errors attached to fieldName. Only the outermost
// match of every branch of the error tree is returned.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	walkFields(err, func(f fielder, e error) bool {
		if f.Field() != fieldName {
			return true
		}
		found = append(found, e)
		return false
	})
	return found
}

// Fields returns the names of all fields reported by err, outermost first
// and without duplicates.
func Fields(err error) []string {
	var names []string
	seen := make(map[string]bool)
	walkFields(err, func(f fielder, _ error) bool {
		if !seen[f.Field()] {
			seen[f.Field()] = true
			names = append(names, f.Field())
		}
		return true
	})
	return names
}

// walkFields calls visit for every field error found in the tree of err.
// Returning false stops the descent below that field error.
func walkFields(err error, visit func(fielder, error) bool) {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && !visit(f, err) {
			return
		}
		if u, ok := err.(unpacker); ok {
			for _, child := range u.Unpack() {
				walkFields(child, visit)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
