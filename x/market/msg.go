package market

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/nft"
)

var (
	_ bazaar.Msg = (*CreateTokenMsg)(nil)
	_ bazaar.Msg = (*ExecuteSaleMsg)(nil)
	_ bazaar.Msg = (*ReSaleMsg)(nil)
	_ bazaar.Msg = (*PayTaxMsg)(nil)
	_ bazaar.Msg = (*CancelSaleMsg)(nil)
	_ bazaar.Msg = (*SetFeePercentageMsg)(nil)
	_ bazaar.Msg = (*UpdateConfigurationMsg)(nil)
)

// CreateTokenMsg mints a new item into the escrow and lists it for sale on
// behalf of the signer.
type CreateTokenMsg struct {
	Locator string `protobuf:"bytes,1,opt,name=locator,proto3" json:"locator"`
	Price   uint64 `protobuf:"varint,2,opt,name=price,proto3" json:"price"`
}

type createTokenMsgCodec CreateTokenMsg

func (m *createTokenMsgCodec) Reset()         { *m = createTokenMsgCodec{} }
func (m *createTokenMsgCodec) String() string { return proto.CompactTextString(m) }
func (*createTokenMsgCodec) ProtoMessage()    {}

func (m *CreateTokenMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*createTokenMsgCodec)(m))
}

func (m *CreateTokenMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*createTokenMsgCodec)(m))
}

func (CreateTokenMsg) Path() string {
	return "market/create_token"
}

// Validate does not check the price, because a zero price is a business
// rule failure reported by the controller.
func (m *CreateTokenMsg) Validate() error {
	return errors.Field("Locator", nft.ValidateLocator(m.Locator), "invalid locator")
}

// ExecuteSaleMsg buys a listed item. Amount is the most the signer is
// willing to pay, only the listing price is charged.
type ExecuteSaleMsg struct {
	ItemID uint64 `protobuf:"varint,1,opt,name=item_id,json=itemId,proto3" json:"item_id"`
	Amount uint64 `protobuf:"varint,2,opt,name=amount,proto3" json:"amount"`
}

type executeSaleMsgCodec ExecuteSaleMsg

func (m *executeSaleMsgCodec) Reset()         { *m = executeSaleMsgCodec{} }
func (m *executeSaleMsgCodec) String() string { return proto.CompactTextString(m) }
func (*executeSaleMsgCodec) ProtoMessage()    {}

func (m *ExecuteSaleMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*executeSaleMsgCodec)(m))
}

func (m *ExecuteSaleMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*executeSaleMsgCodec)(m))
}

func (ExecuteSaleMsg) Path() string {
	return "market/execute_sale"
}

func (m *ExecuteSaleMsg) Validate() error {
	return validateItemID(m.ItemID)
}

// ReSaleMsg lists an item held by the signer again.
type ReSaleMsg struct {
	ItemID uint64 `protobuf:"varint,1,opt,name=item_id,json=itemId,proto3" json:"item_id"`
	Price  uint64 `protobuf:"varint,2,opt,name=price,proto3" json:"price"`
}

type reSaleMsgCodec ReSaleMsg

func (m *reSaleMsgCodec) Reset()         { *m = reSaleMsgCodec{} }
func (m *reSaleMsgCodec) String() string { return proto.CompactTextString(m) }
func (*reSaleMsgCodec) ProtoMessage()    {}

func (m *ReSaleMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*reSaleMsgCodec)(m))
}

func (m *ReSaleMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*reSaleMsgCodec)(m))
}

func (ReSaleMsg) Path() string {
	return "market/resale"
}

func (m *ReSaleMsg) Validate() error {
	return validateItemID(m.ItemID)
}

// PayTaxMsg pays the tax accrued on an item. Signed by a debtor it pays
// the debtor's own accrual. Signed by the marketplace owner it collects
// every accrual of the item.
type PayTaxMsg struct {
	ItemID uint64 `protobuf:"varint,1,opt,name=item_id,json=itemId,proto3" json:"item_id"`
}

type payTaxMsgCodec PayTaxMsg

func (m *payTaxMsgCodec) Reset()         { *m = payTaxMsgCodec{} }
func (m *payTaxMsgCodec) String() string { return proto.CompactTextString(m) }
func (*payTaxMsgCodec) ProtoMessage()    {}

func (m *PayTaxMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*payTaxMsgCodec)(m))
}

func (m *PayTaxMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*payTaxMsgCodec)(m))
}

func (PayTaxMsg) Path() string {
	return "market/pay_tax"
}

func (m *PayTaxMsg) Validate() error {
	return validateItemID(m.ItemID)
}

// CancelSaleMsg withdraws the sale offer of an item. The item stays in the
// escrow.
type CancelSaleMsg struct {
	ItemID uint64 `protobuf:"varint,1,opt,name=item_id,json=itemId,proto3" json:"item_id"`
}

type cancelSaleMsgCodec CancelSaleMsg

func (m *cancelSaleMsgCodec) Reset()         { *m = cancelSaleMsgCodec{} }
func (m *cancelSaleMsgCodec) String() string { return proto.CompactTextString(m) }
func (*cancelSaleMsgCodec) ProtoMessage()    {}

func (m *CancelSaleMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*cancelSaleMsgCodec)(m))
}

func (m *CancelSaleMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*cancelSaleMsgCodec)(m))
}

func (CancelSaleMsg) Path() string {
	return "market/cancel_sale"
}

func (m *CancelSaleMsg) Validate() error {
	return validateItemID(m.ItemID)
}

// SetFeePercentageMsg changes the fee percentage. It must be signed by the
// marketplace owner. Unlike a configuration patch it can set the fee to
// zero.
type SetFeePercentageMsg struct {
	FeePercentage uint32 `protobuf:"varint,1,opt,name=fee_percentage,json=feePercentage,proto3" json:"fee_percentage"`
}

type setFeePercentageMsgCodec SetFeePercentageMsg

func (m *setFeePercentageMsgCodec) Reset()         { *m = setFeePercentageMsgCodec{} }
func (m *setFeePercentageMsgCodec) String() string { return proto.CompactTextString(m) }
func (*setFeePercentageMsgCodec) ProtoMessage()    {}

func (m *SetFeePercentageMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*setFeePercentageMsgCodec)(m))
}

func (m *SetFeePercentageMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*setFeePercentageMsgCodec)(m))
}

func (SetFeePercentageMsg) Path() string {
	return "market/set_fee"
}

func (m *SetFeePercentageMsg) Validate() error {
	return ValidateFeePercentage(m.FeePercentage)
}

// UpdateConfigurationMsg patches the marketplace configuration. Zero value
// fields of the patch are ignored.
type UpdateConfigurationMsg struct {
	Patch *Configuration `protobuf:"bytes,1,opt,name=patch,proto3" json:"patch"`
}

type updateConfigurationMsgCodec UpdateConfigurationMsg

func (m *updateConfigurationMsgCodec) Reset()         { *m = updateConfigurationMsgCodec{} }
func (m *updateConfigurationMsgCodec) String() string { return proto.CompactTextString(m) }
func (*updateConfigurationMsgCodec) ProtoMessage()    {}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*updateConfigurationMsgCodec)(m))
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*updateConfigurationMsgCodec)(m))
}

func (UpdateConfigurationMsg) Path() string {
	return "market/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return m.Patch.Validate()
}

func validateItemID(id uint64) error {
	if id == 0 {
		return errors.Field("ItemID", errors.ErrEmpty, "item id is required")
	}
	return nil
}
