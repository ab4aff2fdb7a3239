package nft

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
)

// MaxLocatorLength is the longest locator an item can be minted with.
const MaxLocatorLength = 512

// Item is a single non fungible item.
type Item struct {
	// Holder is the account currently holding the item.
	Holder bazaar.Address `protobuf:"bytes,1,opt,name=holder,proto3" json:"holder"`
	// Locator points to the off-ledger metadata of the item.
	Locator string `protobuf:"bytes,2,opt,name=locator,proto3" json:"locator"`
}

var _ orm.Model = (*Item)(nil)

type itemCodec Item

func (m *itemCodec) Reset()         { *m = itemCodec{} }
func (m *itemCodec) String() string { return proto.CompactTextString(m) }
func (*itemCodec) ProtoMessage()    {}

func (i *Item) Marshal() ([]byte, error) {
	return proto.Marshal((*itemCodec)(i))
}

func (i *Item) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*itemCodec)(i))
}

func (i *Item) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Holder", i.Holder.Validate())
	errs = errors.AppendField(errs, "Locator", ValidateLocator(i.Locator))
	return errs
}

func (i *Item) Copy() orm.Model {
	return &Item{
		Holder:  append(bazaar.Address(nil), i.Holder...),
		Locator: i.Locator,
	}
}

// ValidateLocator returns an error if given locator cannot be used to mint an
// item.
func ValidateLocator(locator string) error {
	switch n := len(locator); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "locator")
	case n > MaxLocatorLength:
		return errors.Wrapf(errors.ErrInvalidInput, "locator longer than %d", MaxLocatorLength)
	}
	return nil
}

// HolderIndexName is the index to query items by holder
const HolderIndexName = "holder"

func holderIndex(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(orm.ErrInvalidIndex, "nil")
	}
	i, ok := obj.Value().(*Item)
	if !ok {
		return nil, errors.Wrapf(orm.ErrInvalidIndex, "unsupported type %T", obj.Value())
	}
	return i.Holder, nil
}

// NewItemBucket returns a bucket storing items keyed by their big-endian
// encoded identifier.
func NewItemBucket() orm.ModelBucket {
	return orm.NewModelBucket("items", &Item{},
		orm.WithIndex(HolderIndexName, holderIndex, false))
}

// ItemKey returns the primary key of the item with given identifier.
func ItemKey(id uint64) []byte {
	return orm.EncodeSequence(id)
}
