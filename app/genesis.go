package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Genesis is the initial state of a ledger instance.
type Genesis struct {
	ChainID  string         `json:"chain_id"`
	AppState bazaar.Options `json:"app_state"`
}

// Validate returns an error if the genesis cannot be used to initialize a
// ledger.
func (g *Genesis) Validate() error {
	if !bazaar.IsValidChainID(g.ChainID) {
		return errors.Field("ChainID", errors.ErrInvalidInput, "invalid chain id %q", g.ChainID)
	}
	if len(g.AppState) == 0 {
		return errors.Field("AppState", errors.ErrEmpty, "app_state not set in genesis")
	}
	return nil
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "loading genesis file: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unmarshaling genesis file: %s", err)
	}
	return &gen, nil
}

// SaveGenesis writes given genesis as indented JSON.
func SaveGenesis(filePath string, gen *Genesis) error {
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := ioutil.WriteFile(filePath, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "write genesis: %s", err)
	}
	return nil
}
