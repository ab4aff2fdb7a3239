package market

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
	"github.com/iov-one/bazaar/x/nft"
)

// ListingStore keeps the sale offers of all items minted through the
// marketplace.
type ListingStore struct {
	bucket orm.ModelBucket
}

// NewListingStore returns a store operating on the default listings bucket.
func NewListingStore() ListingStore {
	return ListingStore{bucket: NewListingBucket()}
}

// Put inserts or replaces the listing of the item with given identifier.
func (s ListingStore) Put(db bazaar.KVStore, id uint64, l *Listing) error {
	l.ItemID = id
	if _, err := s.bucket.Put(db, nft.ItemKey(id), l); err != nil {
		return errors.Wrap(err, "cannot save listing")
	}
	return nil
}

// Get returns the listing of the item with given identifier.
func (s ListingStore) Get(db bazaar.ReadOnlyKVStore, id uint64) (*Listing, error) {
	var l Listing
	switch err := s.bucket.One(db, nft.ItemKey(id), &l); {
	case err == nil:
		return &l, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrUnknownItem, "id %d", id)
	default:
		return nil, err
	}
}

// BySeller returns all listings with given seller, in ascending item order.
func (s ListingStore) BySeller(db bazaar.ReadOnlyKVStore, seller bazaar.Address) ([]*Listing, error) {
	var res []*Listing
	if _, err := s.bucket.ByIndex(db, SellerIndexName, seller, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// AllListed returns an iterator over every listing that is currently
// listed, in ascending item order. Each call starts a new pass.
func (s ListingStore) AllListed(db bazaar.ReadOnlyKVStore) (ListingIterator, error) {
	return s.filter(db, func(l *Listing) (bool, error) {
		return l.Listed, nil
	})
}

// ListedOrOwnedBy returns an iterator over every listing of an item that
// is either held by the account or whose recorded seller is the account.
// The holder is looked up when the listing is reached, not when the
// iterator is created.
func (s ListingStore) ListedOrOwnedBy(db bazaar.ReadOnlyKVStore, registry nft.Registry, account bazaar.Address) (ListingIterator, error) {
	if err := account.Validate(); err != nil {
		return nil, errors.Wrap(err, "account")
	}
	return s.filter(db, func(l *Listing) (bool, error) {
		if l.Seller.Equals(account) {
			return true, nil
		}
		holder, err := registry.HolderOf(db, l.ItemID)
		if err != nil {
			return false, errors.Wrapf(err, "holder of %d", l.ItemID)
		}
		return holder.Equals(account), nil
	})
}

func (s ListingStore) filter(db bazaar.ReadOnlyKVStore, accept func(*Listing) (bool, error)) (ListingIterator, error) {
	it, err := s.bucket.PrefixScan(db, nil, false)
	if err != nil {
		return nil, err
	}
	return &filterIterator{it: it, accept: accept}, nil
}

// ListingIterator is a lazy sequence of listings.
type ListingIterator interface {
	// Next returns the next listing. ErrIteratorDone is returned when
	// there is no more data.
	Next() (*Listing, error)

	// Release releases the iterator.
	Release()
}

type filterIterator struct {
	it     orm.ModelIterator
	accept func(*Listing) (bool, error)
}

func (f *filterIterator) Next() (*Listing, error) {
	for {
		var l Listing
		if _, err := f.it.LoadNext(&l); err != nil {
			return nil, err
		}
		switch ok, err := f.accept(&l); {
		case err != nil:
			return nil, err
		case ok:
			return &l, nil
		}
	}
}

func (f *filterIterator) Release() {
	f.it.Release()
}

// CollectListings drains the iterator and releases it.
func CollectListings(it ListingIterator) ([]*Listing, error) {
	defer it.Release()
	var res []*Listing
	for {
		switch l, err := it.Next(); {
		case err == nil:
			res = append(res, l)
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}
