package nft

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
)

// Registry keeps track of minted items and their holders.
type Registry interface {
	// Mint creates a new item held by given account and returns its
	// identifier.
	Mint(db bazaar.KVStore, locator string, to bazaar.Address) (uint64, error)

	// Transfer changes the holder of an item. It fails with ErrNotHolder
	// if the item is not held by from.
	Transfer(db bazaar.KVStore, id uint64, from, to bazaar.Address) error

	// HolderOf returns the account currently holding the item.
	HolderOf(db bazaar.ReadOnlyKVStore, id uint64) (bazaar.Address, error)

	// Get returns the item with given identifier.
	Get(db bazaar.ReadOnlyKVStore, id uint64) (*Item, error)

	// CountHeldBy returns the number of items held by given account.
	CountHeldBy(db bazaar.ReadOnlyKVStore, holder bazaar.Address) (uint64, error)

	// HeldBy returns identifiers of all items held by given account in
	// ascending order.
	HeldBy(db bazaar.ReadOnlyKVStore, holder bazaar.Address) ([]uint64, error)

	// LastID returns the most recently allocated identifier or zero if no
	// item was minted yet.
	LastID(db bazaar.ReadOnlyKVStore) (uint64, error)
}

// BaseRegistry stores items in a model bucket with a holder index.
type BaseRegistry struct {
	items orm.ModelBucket
	ids   orm.Sequence
}

var _ Registry = BaseRegistry{}

// NewRegistry returns a registry operating on the default items bucket.
func NewRegistry() BaseRegistry {
	return BaseRegistry{
		items: NewItemBucket(),
		ids:   orm.NewSequence("items", orm.SeqID),
	}
}

func (r BaseRegistry) Mint(db bazaar.KVStore, locator string, to bazaar.Address) (uint64, error) {
	item := Item{Holder: to, Locator: locator}
	// An empty key makes the bucket allocate the next identifier.
	key, err := r.items.Put(db, nil, &item)
	if err != nil {
		return 0, errors.Wrap(err, "cannot mint")
	}
	id, err := orm.DecodeSequence(key)
	if err != nil {
		return 0, errors.Wrap(err, "item key")
	}
	return id, nil
}

func (r BaseRegistry) Transfer(db bazaar.KVStore, id uint64, from, to bazaar.Address) error {
	item, err := r.Get(db, id)
	if err != nil {
		return err
	}
	if !item.Holder.Equals(from) {
		return errors.Wrapf(ErrNotHolder, "item %d is held by %s", id, item.Holder)
	}
	item.Holder = to
	if _, err := r.items.Put(db, ItemKey(id), item); err != nil {
		return errors.Wrap(err, "cannot transfer")
	}
	return nil
}

func (r BaseRegistry) HolderOf(db bazaar.ReadOnlyKVStore, id uint64) (bazaar.Address, error) {
	item, err := r.Get(db, id)
	if err != nil {
		return nil, err
	}
	return item.Holder, nil
}

func (r BaseRegistry) Get(db bazaar.ReadOnlyKVStore, id uint64) (*Item, error) {
	var item Item
	switch err := r.items.One(db, ItemKey(id), &item); {
	case err == nil:
		return &item, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrUnknownItem, "id %d", id)
	default:
		return nil, err
	}
}

func (r BaseRegistry) CountHeldBy(db bazaar.ReadOnlyKVStore, holder bazaar.Address) (uint64, error) {
	ids, err := r.HeldBy(db, holder)
	if err != nil {
		return 0, err
	}
	return uint64(len(ids)), nil
}

func (r BaseRegistry) HeldBy(db bazaar.ReadOnlyKVStore, holder bazaar.Address) ([]uint64, error) {
	if err := holder.Validate(); err != nil {
		return nil, errors.Wrap(err, "holder")
	}
	var items []Item
	keys, err := r.items.ByIndex(db, HolderIndexName, holder, &items)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(keys))
	for _, k := range keys {
		id, err := orm.DecodeSequence(k)
		if err != nil {
			return nil, errors.Wrap(err, "item key")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r BaseRegistry) LastID(db bazaar.ReadOnlyKVStore) (uint64, error) {
	return r.ids.Latest(db)
}

// RegisterQuery will register the items bucket as "/items" and the holder
// index as "/items/holder".
func RegisterQuery(qr bazaar.QueryRouter) {
	NewItemBucket().Register("items", qr)
}
