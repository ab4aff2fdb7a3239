/*
Package errors implements the error handling used across the ledger.

Every error returned to a client should wrap one of the root errors declared
with Register. Root errors carry a numeric code that allows clients to
distinguish the failure kind and act accordingly. Extensions declare their own
root errors in their package using Register(code, description).

Use ErrXyz.New/Newf or Wrap/Wrapf at the point of creation to attach a stack
trace. Only the first wrap records it.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
	%s is just the error message
	%+v is the message followed by the stack trace of the creation point
*/
package errors
