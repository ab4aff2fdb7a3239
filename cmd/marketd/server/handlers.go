package server

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/iov-one/bazaar"
	marketd "github.com/iov-one/bazaar/cmd/marketd/app"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/market"
	"github.com/iov-one/bazaar/x/sigs"
	"github.com/patrickmn/go-cache"
)

type txResponse struct {
	Data   []byte         `json:"data,omitempty"`
	Log    string         `json:"log,omitempty"`
	Events []bazaar.Event `json:"events,omitempty"`
}

func (s *Server) readTx(w http.ResponseWriter, r *http.Request) (*marketd.Tx, error) {
	raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "read body: %s", err)
	}
	return marketd.DecodeTx(s.node.Router, raw)
}

func (s *Server) deliverTx(w http.ResponseWriter, r *http.Request) {
	tx, err := s.readTx(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.node.Ledger.Deliver(r.Context(), tx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Data: res.Data, Log: res.Log, Events: res.Events})
}

func (s *Server) checkTx(w http.ResponseWriter, r *http.Request) {
	tx, err := s.readTx(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.node.Ledger.Check(r.Context(), tx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Data: res.Data, Log: res.Log})
}

type infoResponse struct {
	Name    string `json:"name"`
	ChainID string `json:"chain_id"`
	Version int64  `json:"version"`
	Hash    string `json:"hash"`
	Build   string `json:"build"`
	// Items is the number of items minted so far.
	Items uint64 `json:"items"`
	// Queries lists the paths accepted by /query.
	Queries []string `json:"queries"`
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	name, id, err := s.node.Ledger.Info()
	if err != nil {
		s.writeError(w, err)
		return
	}
	var minted uint64
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		minted, err = s.node.Market.MintedCount(db)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Name:    name,
		ChainID: s.node.Ledger.ChainID(),
		Version: id.Version,
		Hash:    hex.EncodeToString(id.Hash),
		Build:   bazaar.Version(),
		Items:   minted,
		Queries: s.node.Ledger.QueryPaths(),
	})
}

func (s *Server) config(w http.ResponseWriter, r *http.Request) {
	var conf *market.Configuration
	err := s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		conf, err = s.node.Market.Configuration(db)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

type itemResponse struct {
	ID      uint64          `json:"id"`
	Locator string          `json:"locator"`
	Holder  bazaar.Address  `json:"holder"`
	Listing *market.Listing `json:"listing"`
}

func (s *Server) item(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res := itemResponse{ID: id}
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		if res.Locator, err = s.node.Market.TokenURI(db, id); err != nil {
			return err
		}
		if res.Holder, err = s.node.Market.OwnerOf(db, id); err != nil {
			return err
		}
		res.Listing, err = s.node.Market.Listing(db, id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// listings returns all items listed for sale.
func (s *Server) listings(w http.ResponseWriter, r *http.Request) {
	var res []*market.Listing
	err := s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		it, err := s.node.Market.AllNFTs(db)
		if err != nil {
			return err
		}
		res, err = market.CollectListings(it)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(res))
}

type listingResponse struct {
	*market.Listing
	ListPrice uint64 `json:"list_price"`
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var res listingResponse
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		if res.Listing, err = s.node.Market.Listing(db, id); err != nil {
			return err
		}
		res.ListPrice, err = s.node.Market.ListPrice(db, id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) taxes(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var res []*market.TaxAccrual
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		res, err = s.node.Market.AccruedTax(db, id)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if res == nil {
		res = []*market.TaxAccrual{}
	}
	writeJSON(w, http.StatusOK, res)
}

// accountItems returns all items listed by or held by the account.
func (s *Server) accountItems(w http.ResponseWriter, r *http.Request) {
	addr, err := address(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var res []*market.Listing
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		it, err := s.node.Market.MyNFTs(db, addr)
		if err != nil {
			return err
		}
		res, err = market.CollectListings(it)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(res))
}

type balanceResponse struct {
	Items uint64 `json:"items"`
	Funds uint64 `json:"funds"`
}

func (s *Server) accountBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := address(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var res balanceResponse
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		if res.Items, err = s.node.Market.BalanceOf(db, addr); err != nil {
			return err
		}
		res.Funds, err = s.node.Cash.Balance(db, addr)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type nonceResponse struct {
	Nonce int64 `json:"nonce"`
}

func (s *Server) accountNonce(w http.ResponseWriter, r *http.Request) {
	addr, err := address(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var res nonceResponse
	err = s.node.Ledger.View(func(db bazaar.ReadOnlyKVStore, _ int64) error {
		var err error
		res.Nonce, err = sigs.NextNonce(db, addr)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type queryModel struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

type queryResponse struct {
	Version int64        `json:"version"`
	Models  []queryModel `json:"models"`
}

// query gives raw access to the registered buckets. The data parameter is
// hex encoded and "prefix" turns it into a prefix scan.
func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	path := "/" + mux.Vars(r)["path"]
	if _, ok := r.URL.Query()["prefix"]; ok {
		path += "?" + bazaar.PrefixQueryMod
	}
	data, err := hex.DecodeString(r.URL.Query().Get("data"))
	if err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInvalidInput, "data: %s", err))
		return
	}

	if s.cache != nil {
		_, id, err := s.node.Ledger.Info()
		if err != nil {
			s.writeError(w, err)
			return
		}
		if res, ok := s.cache.Get(cacheKey(id.Version, path, data)); ok {
			writeJSON(w, http.StatusOK, res)
			return
		}
	}

	version, models, err := s.node.Ledger.Query(path, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res := queryResponse{Version: version, Models: make([]queryModel, len(models))}
	for i, m := range models {
		res.Models[i] = queryModel{Key: hex.EncodeToString(m.Key), Value: m.Value}
	}
	if s.cache != nil {
		s.cache.Set(cacheKey(version, path, data), res, cache.DefaultExpiration)
	}
	writeJSON(w, http.StatusOK, res)
}

func cacheKey(version int64, path string, data []byte) string {
	return fmt.Sprintf("%d|%s|%x", version, path, data)
}

func itemID(r *http.Request) (uint64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "item id %q", raw)
	}
	return id, nil
}

func address(r *http.Request) (bazaar.Address, error) {
	addr, err := bazaar.ParseAddress(mux.Vars(r)["addr"])
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "address")
	}
	return addr, nil
}

func nonNil(l []*market.Listing) []*market.Listing {
	if l == nil {
		return []*market.Listing{}
	}
	return l
}
