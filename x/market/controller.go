package market

import (
	"math/bits"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/gconf"
	"github.com/iov-one/bazaar/orm"
	"github.com/iov-one/bazaar/x/nft"
)

// EscrowCondition is the condition owning every listed item. Its address
// is also the spender that moves funds out of buyer and debtor accounts.
var EscrowCondition = bazaar.NewCondition("market", "escrow", []byte("items"))

// EscrowAddress returns the address holding listed items.
func EscrowAddress() bazaar.Address {
	return EscrowCondition.Address()
}

// BalanceLedger moves fungible funds between accounts. Any returned error
// aborts the marketplace operation that called it.
type BalanceLedger interface {
	Balance(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (uint64, error)
	Transfer(db bazaar.KVStore, src, dest bazaar.Address, amount uint64) error
	TransferFrom(db bazaar.KVStore, spender, src, dest bazaar.Address, amount uint64) error
}

// Sale describes a successfully executed sale.
type Sale struct {
	ItemID uint64
	Seller bazaar.Address
	Buyer  bazaar.Address
	Price  uint64
	// Fee is the part of the price paid to the marketplace owner.
	Fee uint64
}

// Controller executes all marketplace state transitions. Each mutating
// method is atomic: on error the database is left unchanged.
type Controller interface {
	SetFeePercentage(db bazaar.KVStore, caller bazaar.Address, pct uint32) error
	CreateToken(db bazaar.KVStore, caller bazaar.Address, locator string, price uint64) (uint64, error)
	ExecuteSale(db bazaar.KVStore, caller bazaar.Address, id, amount uint64) (*Sale, error)
	// ReSale lists the item again and returns the tax accrued by the
	// caller for doing so.
	ReSale(db bazaar.KVStore, caller bazaar.Address, id, price uint64) (uint64, error)
	// PayTaxToOwner returns the accruals that were paid.
	PayTaxToOwner(db bazaar.KVStore, caller bazaar.Address, id uint64) ([]*TaxAccrual, error)
	// CancelSale returns the listing as it was before the cancellation.
	CancelSale(db bazaar.KVStore, caller bazaar.Address, id uint64) (*Listing, error)

	Configuration(db bazaar.ReadOnlyKVStore) (*Configuration, error)
	FeePercentage(db bazaar.ReadOnlyKVStore) (uint32, error)
	Listing(db bazaar.ReadOnlyKVStore, id uint64) (*Listing, error)
	ListPrice(db bazaar.ReadOnlyKVStore, id uint64) (uint64, error)
	TokenURI(db bazaar.ReadOnlyKVStore, id uint64) (string, error)
	OwnerOf(db bazaar.ReadOnlyKVStore, id uint64) (bazaar.Address, error)
	BalanceOf(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (uint64, error)
	// MintedCount returns how many items were ever created.
	MintedCount(db bazaar.ReadOnlyKVStore) (uint64, error)
	AccruedTax(db bazaar.ReadOnlyKVStore, id uint64) ([]*TaxAccrual, error)
	AllNFTs(db bazaar.ReadOnlyKVStore) (ListingIterator, error)
	MyNFTs(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (ListingIterator, error)
}

// BaseController is the Controller implementation backed by the item
// registry, the listing store and an injected balance ledger.
type BaseController struct {
	ledger   BalanceLedger
	registry nft.Registry
	listings ListingStore
	taxes    orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller moving funds with given ledger and
// keeping items in given registry.
func NewController(ledger BalanceLedger, registry nft.Registry) BaseController {
	return BaseController{
		ledger:   ledger,
		registry: registry,
		listings: NewListingStore(),
		taxes:    NewTaxBucket(),
	}
}

func (c BaseController) SetFeePercentage(db bazaar.KVStore, caller bazaar.Address, pct uint32) error {
	if err := ValidateFeePercentage(pct); err != nil {
		return err
	}
	return atomically(db, func(db bazaar.KVStore) error {
		conf, err := c.Configuration(db)
		if err != nil {
			return err
		}
		if !conf.Owner.Equals(caller) {
			return errors.Wrap(errors.ErrUnauthorized, "only the owner can set the fee")
		}
		conf.FeePercentage = pct
		return gconf.Save(db, optKey, conf)
	})
}

func (c BaseController) CreateToken(db bazaar.KVStore, caller bazaar.Address, locator string, price uint64) (uint64, error) {
	if price == 0 {
		return 0, errors.Wrap(errors.ErrInsufficientAmount, "price must be greater than zero")
	}
	if err := caller.Validate(); err != nil {
		return 0, errors.Wrap(err, "caller")
	}
	var id uint64
	err := atomically(db, func(db bazaar.KVStore) error {
		var err error
		id, err = c.registry.Mint(db, locator, EscrowAddress())
		if err != nil {
			return err
		}
		return c.listings.Put(db, id, &Listing{Seller: caller, Price: price, Listed: true})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (c BaseController) ExecuteSale(db bazaar.KVStore, caller bazaar.Address, id, amount uint64) (*Sale, error) {
	var sale *Sale
	err := atomically(db, func(db bazaar.KVStore) error {
		l, err := c.listings.Get(db, id)
		if err != nil {
			return err
		}
		if l.Seller.Equals(caller) {
			return errors.Wrapf(ErrBuyerIsSeller, "id %d", id)
		}
		if !l.Listed {
			return errors.Wrapf(ErrNotListed, "id %d", id)
		}
		if amount < l.Price {
			return errors.Wrapf(errors.ErrInsufficientAmount, "price is %d, got %d", l.Price, amount)
		}
		conf, err := c.Configuration(db)
		if err != nil {
			return err
		}

		fee := percentOf(l.Price, conf.FeePercentage)
		if err := c.pull(db, caller, l.Seller, l.Price-fee); err != nil {
			return errors.Wrap(err, "pay seller")
		}
		if err := c.pull(db, caller, conf.Owner, fee); err != nil {
			return errors.Wrap(err, "pay fee")
		}
		if err := c.registry.Transfer(db, id, EscrowAddress(), caller); err != nil {
			return errors.Wrap(err, "hand over item")
		}

		sale = &Sale{ItemID: id, Seller: l.Seller, Buyer: caller, Price: l.Price, Fee: fee}
		l.Seller = caller
		l.Listed = false
		return c.listings.Put(db, id, l)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (c BaseController) ReSale(db bazaar.KVStore, caller bazaar.Address, id, price uint64) (uint64, error) {
	var tax uint64
	err := atomically(db, func(db bazaar.KVStore) error {
		holder, err := c.OwnerOf(db, id)
		if err != nil {
			return err
		}
		l, err := c.listings.Get(db, id)
		if err != nil {
			return err
		}
		escrow := EscrowAddress()
		switch {
		case holder.Equals(caller):
		case holder.Equals(escrow) && !l.Listed && l.Seller.Equals(caller):
			// Cancelled sale, the item never left the escrow.
		default:
			return errors.Wrapf(ErrInvalidRequest, "%s cannot resell item %d", caller, id)
		}
		if price == 0 {
			return errors.Wrap(errors.ErrInsufficientAmount, "price must be greater than zero")
		}
		if !holder.Equals(escrow) {
			if err := c.registry.Transfer(db, id, caller, escrow); err != nil {
				return errors.Wrap(err, "escrow item")
			}
		}

		l.Seller = caller
		l.Price = price
		l.Listed = true
		if err := c.listings.Put(db, id, l); err != nil {
			return err
		}

		conf, err := c.Configuration(db)
		if err != nil {
			return err
		}
		tax = percentOf(price, conf.FeePercentage)
		return c.accrue(db, id, caller, tax)
	})
	if err != nil {
		return 0, err
	}
	return tax, nil
}

func (c BaseController) accrue(db bazaar.KVStore, id uint64, debtor bazaar.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	key := taxKey(id, debtor)
	acc := TaxAccrual{ItemID: id, Debtor: debtor}
	if err := c.taxes.One(db, key, &acc); err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "load tax")
	}
	sum, carry := bits.Add64(acc.Amount, amount, 0)
	if carry != 0 {
		return errors.Wrap(errors.ErrOverflow, "accrued tax")
	}
	acc.Amount = sum
	if _, err := c.taxes.Put(db, key, &acc); err != nil {
		return errors.Wrap(err, "save tax")
	}
	return nil
}

func (c BaseController) PayTaxToOwner(db bazaar.KVStore, caller bazaar.Address, id uint64) ([]*TaxAccrual, error) {
	var paid []*TaxAccrual
	err := atomically(db, func(db bazaar.KVStore) error {
		if _, err := c.listings.Get(db, id); err != nil {
			return err
		}
		conf, err := c.Configuration(db)
		if err != nil {
			return err
		}
		accruals, err := c.AccruedTax(db, id)
		if err != nil {
			return err
		}
		if !conf.Owner.Equals(caller) {
			// Debtors can only pay their own dues.
			var own []*TaxAccrual
			for _, a := range accruals {
				if a.Debtor.Equals(caller) {
					own = append(own, a)
				}
			}
			accruals = own
		}
		if len(accruals) == 0 {
			return errors.Wrapf(ErrNoAccruedTax, "id %d", id)
		}

		for _, a := range accruals {
			if err := c.pull(db, a.Debtor, conf.Owner, a.Amount); err != nil {
				return errors.Wrapf(err, "collect tax from %s", a.Debtor)
			}
			if err := c.taxes.Delete(db, taxKey(id, a.Debtor)); err != nil {
				return errors.Wrap(err, "clear tax")
			}
		}
		paid = accruals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (c BaseController) CancelSale(db bazaar.KVStore, caller bazaar.Address, id uint64) (*Listing, error) {
	var res *Listing
	err := atomically(db, func(db bazaar.KVStore) error {
		l, err := c.listings.Get(db, id)
		if err != nil {
			return err
		}
		if !l.Seller.Equals(caller) {
			return errors.Wrapf(ErrInvalidRequest, "%s is not the seller of item %d", caller, id)
		}
		if !l.Listed {
			return errors.Wrapf(ErrNotListed, "id %d", id)
		}
		prev := *l
		res = &prev
		l.Listed = false
		l.Price = 0
		return c.listings.Put(db, id, l)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// pull moves funds out of the source account on behalf of the escrow.
func (c BaseController) pull(db bazaar.KVStore, src, dest bazaar.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return c.ledger.TransferFrom(db, EscrowAddress(), src, dest, amount)
}

func (c BaseController) Configuration(db bazaar.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, optKey, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

func (c BaseController) FeePercentage(db bazaar.ReadOnlyKVStore) (uint32, error) {
	conf, err := c.Configuration(db)
	if err != nil {
		return 0, err
	}
	return conf.FeePercentage, nil
}

func (c BaseController) Listing(db bazaar.ReadOnlyKVStore, id uint64) (*Listing, error) {
	return c.listings.Get(db, id)
}

func (c BaseController) ListPrice(db bazaar.ReadOnlyKVStore, id uint64) (uint64, error) {
	l, err := c.listings.Get(db, id)
	if err != nil {
		return 0, err
	}
	return l.Price, nil
}

func (c BaseController) TokenURI(db bazaar.ReadOnlyKVStore, id uint64) (string, error) {
	item, err := c.registry.Get(db, id)
	if err != nil {
		return "", unknownItem(err, id)
	}
	return item.Locator, nil
}

func (c BaseController) OwnerOf(db bazaar.ReadOnlyKVStore, id uint64) (bazaar.Address, error) {
	holder, err := c.registry.HolderOf(db, id)
	if err != nil {
		return nil, unknownItem(err, id)
	}
	return holder, nil
}

func (c BaseController) BalanceOf(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (uint64, error) {
	return c.registry.CountHeldBy(db, addr)
}

// MintedCount relies on identifiers being allocated sequentially from one.
func (c BaseController) MintedCount(db bazaar.ReadOnlyKVStore) (uint64, error) {
	return c.registry.LastID(db)
}

// AccruedTax returns all unpaid accruals of given item, ordered by debtor.
func (c BaseController) AccruedTax(db bazaar.ReadOnlyKVStore, id uint64) ([]*TaxAccrual, error) {
	it, err := c.taxes.PrefixScan(db, nft.ItemKey(id), false)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []*TaxAccrual
	for {
		var a TaxAccrual
		switch _, err := it.LoadNext(&a); {
		case err == nil:
			res = append(res, &a)
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}

func (c BaseController) AllNFTs(db bazaar.ReadOnlyKVStore) (ListingIterator, error) {
	return c.listings.AllListed(db)
}

func (c BaseController) MyNFTs(db bazaar.ReadOnlyKVStore, addr bazaar.Address) (ListingIterator, error) {
	return c.listings.ListedOrOwnedBy(db, c.registry, addr)
}

// unknownItem translates the registry error so that callers of the
// marketplace match a single error kind for missing items.
func unknownItem(err error, id uint64) error {
	if nft.ErrUnknownItem.Is(err) {
		return errors.Wrapf(ErrUnknownItem, "id %d", id)
	}
	return err
}

// percentOf returns floor(amount * pct / 100). pct must not exceed
// MaxFeePercentage.
func percentOf(amount uint64, pct uint32) uint64 {
	hi, lo := bits.Mul64(amount, uint64(pct))
	q, _ := bits.Div64(hi, lo, 100)
	return q
}

// atomically runs fn against a cache of db when possible and writes the
// cache only if fn succeeds.
func atomically(db bazaar.KVStore, fn func(bazaar.KVStore) error) error {
	cstore, ok := db.(bazaar.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
