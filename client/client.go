/*
Package client provides access to a marketd node over its HTTP API.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/iov-one/bazaar"
	marketd "github.com/iov-one/bazaar/cmd/marketd/app"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/market"
)

// Client is wrapping the HTTP API of a node to provide simple access to the
// marketplace state.
//
// Basic accessors are declared here. SignAndSubmit builds on them to create
// and submit a signed request in one call.
type Client struct {
	remote string
	http   *http.Client
}

// NewClient returns a client for the node listening at given base URL.
func NewClient(remote string) *Client {
	return &Client{
		remote: strings.TrimSuffix(remote, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the HTTP client used for all calls.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Status returns the chain identifier and the last committed version.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.get(ctx, "/info", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// NextNonce returns the nonce the signer must use for its next request.
func (c *Client) NextNonce(ctx context.Context, addr bazaar.Address) (int64, error) {
	var res nonceResult
	if err := c.get(ctx, "/accounts/"+addr.String()+"/nonce", &res); err != nil {
		return 0, err
	}
	return res.Nonce, nil
}

// SubmitTx delivers a signed request and returns its result once it was
// committed.
func (c *Client) SubmitTx(ctx context.Context, tx *marketd.Tx) (*CommitResult, error) {
	var res CommitResult
	if err := c.post(ctx, "/tx", tx, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckTx validates a signed request without committing it.
func (c *Client) CheckTx(ctx context.Context, tx *marketd.Tx) error {
	return c.post(ctx, "/check", tx, &CommitResult{})
}

// SignAndSubmit signs given message with the next nonce of the signer and
// submits it.
func (c *Client) SignAndSubmit(ctx context.Context, signer crypto.Signer, msg bazaar.Msg) (*CommitResult, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := c.NextNonce(ctx, signer.PublicKey().Address())
	if err != nil {
		return nil, err
	}
	tx, err := marketd.NewTx(msg)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(signer, status.ChainID, nonce); err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	return c.SubmitTx(ctx, tx)
}

// Configuration returns the marketplace owner and fee.
func (c *Client) Configuration(ctx context.Context) (*market.Configuration, error) {
	var conf market.Configuration
	if err := c.get(ctx, "/config", &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Item returns the item with given identifier.
func (c *Client) Item(ctx context.Context, id uint64) (*Item, error) {
	var item Item
	if err := c.get(ctx, fmt.Sprintf("/items/%d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Listings returns all items currently listed for sale.
func (c *Client) Listings(ctx context.Context) ([]*market.Listing, error) {
	var res []*market.Listing
	if err := c.get(ctx, "/listings", &res); err != nil {
		return nil, err
	}
	return res, nil
}

// AccountItems returns all items listed or held by given account.
func (c *Client) AccountItems(ctx context.Context, addr bazaar.Address) ([]*market.Listing, error) {
	var res []*market.Listing
	if err := c.get(ctx, "/accounts/"+addr.String()+"/items", &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Balance returns the item count and funds of given account.
func (c *Client) Balance(ctx context.Context, addr bazaar.Address) (*Balance, error) {
	var b Balance
	if err := c.get(ctx, "/accounts/"+addr.String()+"/balance", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.remote+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return c.do(req, dest)
}

func (c *Client) post(ctx context.Context, path string, payload, dest interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.remote+path, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "%s %s: %s", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "read response: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResult
		if err := json.Unmarshal(body, &e); err != nil || e.Code == 0 {
			return errors.Wrapf(errors.ErrNetwork, "%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
		}
		return errors.FromCode(e.Code, e.Log)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrapf(errors.ErrNetwork, "decode response: %s", err)
	}
	return nil
}
