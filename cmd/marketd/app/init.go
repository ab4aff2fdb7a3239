package marketd

import (
	"encoding/json"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/app"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/cash"
	"github.com/iov-one/bazaar/x/market"
)

// GenesisOptions describe the initial state of a new ledger.
type GenesisOptions struct {
	ChainID       string
	Admin         bazaar.Address
	FeePercentage uint32
	Accounts      []cash.GenesisAccount
}

// GenInitOptions builds the genesis of a new ledger.
func GenInitOptions(opts GenesisOptions) (*app.Genesis, error) {
	conf := market.Configuration{
		Owner:         opts.Admin,
		FeePercentage: opts.FeePercentage,
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "market configuration")
	}

	accounts := opts.Accounts
	if accounts == nil {
		accounts = []cash.GenesisAccount{}
	}
	rawAccounts, err := json.Marshal(accounts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	rawConf, err := json.Marshal(map[string]interface{}{"market": conf})
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	gen := &app.Genesis{
		ChainID: opts.ChainID,
		AppState: bazaar.Options{
			"cash": rawAccounts,
			"conf": rawConf,
		},
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return gen, nil
}
