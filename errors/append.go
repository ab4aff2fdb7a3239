package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors are provided (or all are nil), nil is returned. If exactly one
// non nil error is provided, it is returned as it is.
//
// Returned error is compatible with Is method: it is of a type of any of the
// grouped errors.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		// Flatten nested groups so that Unpack returns leaves only.
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
			continue
		}
		res = append(res, err)
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiErr []error

func (m multiErr) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Unpack returns all grouped errors.
func (m multiErr) Unpack() []error {
	return m
}

// Code returns the code of the first grouped error, following the fail fast
// approach.
func (m multiErr) Code() uint32 {
	return errCode(m[0])
}

// unpacker is implemented by an error that groups together many errors.
type unpacker interface {
	Unpack() []error
}
