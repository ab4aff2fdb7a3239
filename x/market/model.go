package market

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
)

// MaxFeePercentage is the highest fee percentage the marketplace can charge.
const MaxFeePercentage = 100

// Listing is the sale offer attached to an item.
type Listing struct {
	ItemID uint64 `protobuf:"varint,1,opt,name=item_id,json=itemId,proto3" json:"item_id"`
	// Seller is the account that listed the item most recently or, after a
	// sale, the buyer.
	Seller bazaar.Address `protobuf:"bytes,2,opt,name=seller,proto3" json:"seller"`
	// Price is zero when the sale was cancelled.
	Price  uint64 `protobuf:"varint,3,opt,name=price,proto3" json:"price"`
	Listed bool   `protobuf:"varint,4,opt,name=listed,proto3" json:"listed"`
}

var _ orm.Model = (*Listing)(nil)

type listingCodec Listing

func (m *listingCodec) Reset()         { *m = listingCodec{} }
func (m *listingCodec) String() string { return proto.CompactTextString(m) }
func (*listingCodec) ProtoMessage()    {}

func (l *Listing) Marshal() ([]byte, error) {
	return proto.Marshal((*listingCodec)(l))
}

func (l *Listing) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*listingCodec)(l))
}

func (l *Listing) Validate() error {
	var errs error
	if l.ItemID == 0 {
		errs = errors.AppendField(errs, "ItemID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Seller", l.Seller.Validate())
	if l.Listed && l.Price == 0 {
		errs = errors.AppendField(errs, "Price", errors.Wrap(errors.ErrInsufficientAmount, "listed for free"))
	}
	return errs
}

func (l *Listing) Copy() orm.Model {
	cpy := *l
	cpy.Seller = append(bazaar.Address(nil), l.Seller...)
	return &cpy
}

// TaxAccrual is the amount a debtor owes to the marketplace owner for
// listing an item again.
type TaxAccrual struct {
	ItemID uint64         `protobuf:"varint,1,opt,name=item_id,json=itemId,proto3" json:"item_id"`
	Debtor bazaar.Address `protobuf:"bytes,2,opt,name=debtor,proto3" json:"debtor"`
	Amount uint64         `protobuf:"varint,3,opt,name=amount,proto3" json:"amount"`
}

var _ orm.Model = (*TaxAccrual)(nil)

type taxAccrualCodec TaxAccrual

func (m *taxAccrualCodec) Reset()         { *m = taxAccrualCodec{} }
func (m *taxAccrualCodec) String() string { return proto.CompactTextString(m) }
func (*taxAccrualCodec) ProtoMessage()    {}

func (t *TaxAccrual) Marshal() ([]byte, error) {
	return proto.Marshal((*taxAccrualCodec)(t))
}

func (t *TaxAccrual) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*taxAccrualCodec)(t))
}

func (t *TaxAccrual) Validate() error {
	var errs error
	if t.ItemID == 0 {
		errs = errors.AppendField(errs, "ItemID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Debtor", t.Debtor.Validate())
	if t.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrInvalidAmount)
	}
	return errs
}

func (t *TaxAccrual) Copy() orm.Model {
	cpy := *t
	cpy.Debtor = append(bazaar.Address(nil), t.Debtor...)
	return &cpy
}

// Configuration is stored under the "market" package configuration key.
type Configuration struct {
	// Owner is the marketplace administrator. It collects fees and taxes
	// and is the only account allowed to change the configuration.
	Owner bazaar.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
	// FeePercentage is the part of each sale and resale price charged by
	// the marketplace.
	FeePercentage uint32 `protobuf:"varint,2,opt,name=fee_percentage,json=feePercentage,proto3" json:"fee_percentage"`
}

type configurationCodec Configuration

func (m *configurationCodec) Reset()         { *m = configurationCodec{} }
func (m *configurationCodec) String() string { return proto.CompactTextString(m) }
func (*configurationCodec) ProtoMessage()    {}

func (c *Configuration) Marshal() ([]byte, error) {
	return proto.Marshal((*configurationCodec)(c))
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*configurationCodec)(c))
}

func (c *Configuration) GetOwner() bazaar.Address {
	if c == nil {
		return nil
	}
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "FeePercentage", ValidateFeePercentage(c.FeePercentage))
	return errs
}

// ValidateFeePercentage returns an error if given percentage is out of the
// accepted range.
func ValidateFeePercentage(pct uint32) error {
	if pct > MaxFeePercentage {
		return errors.Wrapf(ErrInvalidFee, "%d is greater than %d", pct, MaxFeePercentage)
	}
	return nil
}

// SellerIndexName is the index to query listings by seller
const SellerIndexName = "seller"

func sellerIndex(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(orm.ErrInvalidIndex, "nil")
	}
	l, ok := obj.Value().(*Listing)
	if !ok {
		return nil, errors.Wrapf(orm.ErrInvalidIndex, "unsupported type %T", obj.Value())
	}
	return l.Seller, nil
}

// NewListingBucket returns a bucket storing listings keyed by the big-endian
// encoded item identifier.
func NewListingBucket() orm.ModelBucket {
	return orm.NewModelBucket("listings", &Listing{},
		orm.WithIndex(SellerIndexName, sellerIndex, false))
}

// NewTaxBucket returns a bucket storing tax accruals keyed by the item
// identifier followed by the debtor address.
func NewTaxBucket() orm.ModelBucket {
	return orm.NewModelBucket("taxes", &TaxAccrual{})
}

func taxKey(id uint64, debtor bazaar.Address) []byte {
	return append(orm.EncodeSequence(id), debtor...)
}
