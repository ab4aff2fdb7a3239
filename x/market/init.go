package market

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/gconf"
)

// optKey is both the configuration package name and the genesis "conf"
// entry.
const optKey = "market"

// Initializer loads the marketplace configuration from the genesis "conf"
// section:
//
//   "conf": {"market": {"owner": "<hex address>", "fee_percentage": 3}}
//
type Initializer struct{}

var _ bazaar.Initializer = Initializer{}

func (Initializer) FromGenesis(opts bazaar.Options, db bazaar.KVStore) error {
	return gconf.Initializer{optKey: &Configuration{}}.FromGenesis(opts, db)
}
