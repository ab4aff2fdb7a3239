package x

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Authenticator tells handlers who signed the current request. Handlers
// receive it in their constructor, so the way a caller proves its identity
// can change without touching them.
type Authenticator interface {
	// GetConditions returns the conditions fulfilled by the request, the
	// main signer first.
	GetConditions(bazaar.Context) []bazaar.Condition
	HasAddress(bazaar.Context, bazaar.Address) bool
}

// MultiAuth accepts a signer known to any of its authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth{}

func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

func (m MultiAuth) GetConditions(ctx bazaar.Context) []bazaar.Condition {
	var conds []bazaar.Condition
	for _, a := range m {
		conds = append(conds, a.GetConditions(ctx)...)
	}
	return conds
}

func (m MultiAuth) HasAddress(ctx bazaar.Context, addr bazaar.Address) bool {
	for _, a := range m {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition of the request or nil.
func MainSigner(ctx bazaar.Context, auth Authenticator) bazaar.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// AnySigner returns the address of the main signer, or nil if the request
// is not signed.
func AnySigner(ctx bazaar.Context, auth Authenticator) bazaar.Address {
	return MainSigner(ctx, auth).Address()
}

// Caller is AnySigner for operations that must be signed. It fails with
// ErrUnauthorized on an unsigned request.
func Caller(ctx bazaar.Context, auth Authenticator) (bazaar.Address, error) {
	addr := AnySigner(ctx, auth)
	if addr == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	return addr, nil
}

// RequireSigner fails with ErrUnauthorized unless addr signed the request.
// role names the party in the error, for example "seller" or "owner".
func RequireSigner(ctx bazaar.Context, auth Authenticator, addr bazaar.Address, role string) error {
	if addr == nil || !auth.HasAddress(ctx, addr) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s signature missing", role)
	}
	return nil
}
