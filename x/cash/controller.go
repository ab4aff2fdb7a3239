package cash

import (
	"math"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
)

// Controller is the functionality needed by cash.Handler and by other
// extensions that move funds.
type Controller interface {
	// Balance returns the funds held by given account. Unknown accounts
	// hold nothing.
	Balance(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (uint64, error)

	// Transfer moves amount from the source account to the destination.
	// It fails with ErrInsufficientFunds if the source balance is too low.
	Transfer(db bazaar.KVStore, src, dest bazaar.Address, amount uint64) error

	// TransferFrom moves amount from the source account to the
	// destination on behalf of the spender. The spender allowance is
	// decreased by the moved amount.
	TransferFrom(db bazaar.KVStore, spender, src, dest bazaar.Address, amount uint64) error

	// Approve sets the amount the spender may move out of the owner's
	// account. Zero revokes the approval.
	Approve(db bazaar.KVStore, owner, spender bazaar.Address, amount uint64) error

	// Allowance returns the amount the spender may still move out of the
	// owner's account.
	Allowance(db bazaar.ReadOnlyKVStore, owner, spender bazaar.Address) (uint64, error)

	// Issue creates new funds in the destination account.
	Issue(db bazaar.KVStore, dest bazaar.Address, amount uint64) error
}

// BaseController is a simple implementation of the Controller. All funds
// are kept in wallets and allowances buckets.
type BaseController struct {
	wallets    orm.ModelBucket
	allowances orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the default buckets.
func NewController() BaseController {
	return BaseController{
		wallets:    NewWalletBucket(),
		allowances: NewAllowanceBucket(),
	}
}

func (c BaseController) Balance(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (uint64, error) {
	if err := addr.Validate(); err != nil {
		return 0, errors.Wrap(err, "address")
	}
	w, err := c.wallet(db, addr)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

func (c BaseController) Transfer(db bazaar.KVStore, src, dest bazaar.Address, amount uint64) error {
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}

	sender, err := c.wallet(db, src)
	if err != nil {
		return err
	}
	if sender.Balance < amount {
		return errors.Wrapf(ErrInsufficientFunds, "balance %d, required %d", sender.Balance, amount)
	}
	if amount == 0 || src.Equals(dest) {
		return nil
	}

	recipient, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	sender.Balance -= amount
	recipient.Balance += amount

	if _, err := c.wallets.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	if _, err := c.wallets.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "save recipient")
	}
	return nil
}

func (c BaseController) TransferFrom(db bazaar.KVStore, spender, src, dest bazaar.Address, amount uint64) error {
	key, err := allowanceKey(src, spender)
	if err != nil {
		return err
	}
	var allowed Allowance
	switch err := c.allowances.One(db, key, &allowed); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(ErrAllowance, "%s did not approve %s", src, spender)
	default:
		return errors.Wrap(err, "load allowance")
	}
	if allowed.Amount < amount {
		return errors.Wrapf(ErrAllowance, "allowed %d, required %d", allowed.Amount, amount)
	}

	if err := c.Transfer(db, src, dest, amount); err != nil {
		return err
	}

	allowed.Amount -= amount
	if allowed.Amount == 0 {
		return c.allowances.Delete(db, key)
	}
	if _, err := c.allowances.Put(db, key, &allowed); err != nil {
		return errors.Wrap(err, "save allowance")
	}
	return nil
}

func (c BaseController) Approve(db bazaar.KVStore, owner, spender bazaar.Address, amount uint64) error {
	key, err := allowanceKey(owner, spender)
	if err != nil {
		return err
	}
	if amount == 0 {
		if err := c.allowances.Delete(db, key); err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return nil
	}
	if _, err := c.allowances.Put(db, key, &Allowance{Amount: amount}); err != nil {
		return errors.Wrap(err, "save allowance")
	}
	return nil
}

func (c BaseController) Allowance(db bazaar.ReadOnlyKVStore, owner, spender bazaar.Address) (uint64, error) {
	key, err := allowanceKey(owner, spender)
	if err != nil {
		return 0, err
	}
	var allowed Allowance
	switch err := c.allowances.One(db, key, &allowed); {
	case err == nil:
		return allowed.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (c BaseController) Issue(db bazaar.KVStore, dest bazaar.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.wallet(db, dest)
	if err != nil {
		return err
	}
	if w.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	w.Balance += amount
	_, err = c.wallets.Put(db, dest, w)
	return err
}

// wallet returns the wallet of given account or an empty one if the
// account is not known yet.
func (c BaseController) wallet(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.wallets.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, errors.Wrap(err, "load wallet")
	}
}
