package sigs

import (
	"context"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/x"
)

type signersKey struct{}

// withSigners is only called by the Decorator once every signature of the
// request verified.
func withSigners(ctx bazaar.Context, signers []bazaar.Condition) bazaar.Context {
	return context.WithValue(ctx, signersKey{}, signers)
}

// Authenticate reports the keys that signed the current request.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

func (Authenticate) GetConditions(ctx bazaar.Context) []bazaar.Condition {
	signers, _ := ctx.Value(signersKey{}).([]bazaar.Condition)
	return signers
}

func (a Authenticate) HasAddress(ctx bazaar.Context, addr bazaar.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
