package client

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/x/market"
)

// CommitResult is returned for a delivered request.
type CommitResult struct {
	Data   []byte         `json:"data,omitempty"`
	Log    string         `json:"log,omitempty"`
	Events []bazaar.Event `json:"events,omitempty"`
}

// Status is the current status of the node we connect to.
type Status struct {
	Name    string `json:"name"`
	ChainID string `json:"chain_id"`
	Version int64  `json:"version"`
	Hash    string `json:"hash"`
	Build   string `json:"build"`
	Items   uint64 `json:"items"`
}

// Item is a registered item together with its listing.
type Item struct {
	ID      uint64          `json:"id"`
	Locator string          `json:"locator"`
	Holder  bazaar.Address  `json:"holder"`
	Listing *market.Listing `json:"listing"`
}

// Balance counts the items held and the funds of an account.
type Balance struct {
	Items uint64 `json:"items"`
	Funds uint64 `json:"funds"`
}

type nonceResult struct {
	Nonce int64 `json:"nonce"`
}

type errorResult struct {
	Code uint32 `json:"code"`
	Log  string `json:"log"`
}
