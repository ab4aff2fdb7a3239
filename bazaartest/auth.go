package bazaartest

import (
	"context"

	"github.com/iov-one/bazaar"
)

// Auth is a mock x.Authenticator that reports a fixed set of signers:
// Signers followed by Signer, when set.
type Auth struct {
	Signer  bazaar.Condition
	Signers []bazaar.Condition
}

func (a *Auth) GetConditions(bazaar.Context) []bazaar.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]bazaar.Condition, 0, len(a.Signers)+1)
	return append(append(conds, a.Signers...), a.Signer)
}

func (a *Auth) HasAddress(ctx bazaar.Context, addr bazaar.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

// CtxAuth is a mock x.Authenticator reading the signers from the context.
// Authenticators with different keys do not see each other's signers.
type CtxAuth struct {
	Key string
}

type ctxAuthKey string

// SetConditions returns a context signed by conds.
func (a *CtxAuth) SetConditions(ctx bazaar.Context, conds ...bazaar.Condition) bazaar.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx bazaar.Context) []bazaar.Condition {
	conds, _ := ctx.Value(ctxAuthKey(a.Key)).([]bazaar.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx bazaar.Context, addr bazaar.Address) bool {
	return signedBy(a.GetConditions(ctx), addr)
}

func signedBy(conds []bazaar.Condition, addr bazaar.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
