/*
Package marketd links together all the various components
to construct the marketplace ledger.
*/
package marketd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/app"
	"github.com/iov-one/bazaar/store/iavl"
	"github.com/iov-one/bazaar/x"
	"github.com/iov-one/bazaar/x/cash"
	"github.com/iov-one/bazaar/x/market"
	"github.com/iov-one/bazaar/x/nft"
	"github.com/iov-one/bazaar/x/sigs"
	"github.com/iov-one/bazaar/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	)
}

// Node groups the ledger with the controllers used to read its state.
type Node struct {
	Ledger *app.Ledger
	Router *app.Router
	Market market.Controller
	Cash   cash.Controller
}

// Router returns a router dispatching to the cash and market handlers.
func Router(authFn x.Authenticator, cashCtrl cash.Controller, marketCtrl market.Controller) *app.Router {
	r := app.NewRouter()
	cash.RegisterRoutes(r, authFn, cashCtrl)
	market.RegisterRoutes(r, authFn, marketCtrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/balances", "/allowances", "/items", "/listings",
// "/taxes" and "/auth"
func QueryRouter() bazaar.QueryRouter {
	r := bazaar.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		nft.RegisterQuery,
		market.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Initializer loads every extension state from the genesis.
func Initializer() bazaar.Initializer {
	return bazaar.ChainInitializers{
		cash.Initializer{},
		market.Initializer{},
	}
}

// Application constructs a ledger over given store with the full handler
// stack.
func Application(name string, kv bazaar.CommitKVStore, logger log.Logger) (*Node, error) {
	cashCtrl := cash.NewController()
	marketCtrl := market.NewController(cashCtrl, nft.NewRegistry())
	router := Router(Authenticator(), cashCtrl, marketCtrl)

	ledger, err := app.NewLedger(name, kv, Chain().WithHandler(router), QueryRouter())
	if err != nil {
		return nil, err
	}
	return &Node{
		Ledger: ledger.WithLogger(logger),
		Router: router,
		Market: marketCtrl,
		Cash:   cashCtrl,
	}, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string, history int64) (bazaar.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name).WithHistory(history), nil
}
