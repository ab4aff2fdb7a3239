package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
)

// Wallet holds the balance of a single account. Wallets are keyed by the
// account address.
type Wallet struct {
	Balance uint64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

type walletCodec Wallet

func (m *walletCodec) Reset()         { *m = walletCodec{} }
func (m *walletCodec) String() string { return proto.CompactTextString(m) }
func (*walletCodec) ProtoMessage()    {}

func (w *Wallet) Marshal() ([]byte, error) {
	return proto.Marshal((*walletCodec)(w))
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*walletCodec)(w))
}

func (w *Wallet) Validate() error {
	return nil
}

func (w *Wallet) Copy() orm.Model {
	cpy := *w
	return &cpy
}

// Allowance is the amount a spender may still move out of the owner's
// account. Allowances are keyed by owner address followed by spender
// address.
type Allowance struct {
	Amount uint64 `protobuf:"varint,1,opt,name=amount,proto3" json:"amount"`
}

var _ orm.Model = (*Allowance)(nil)

type allowanceCodec Allowance

func (m *allowanceCodec) Reset()         { *m = allowanceCodec{} }
func (m *allowanceCodec) String() string { return proto.CompactTextString(m) }
func (*allowanceCodec) ProtoMessage()    {}

func (a *Allowance) Marshal() ([]byte, error) {
	return proto.Marshal((*allowanceCodec)(a))
}

func (a *Allowance) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*allowanceCodec)(a))
}

func (a *Allowance) Validate() error {
	return nil
}

func (a *Allowance) Copy() orm.Model {
	cpy := *a
	return &cpy
}

// NewWalletBucket returns a bucket storing account balances.
func NewWalletBucket() orm.ModelBucket {
	return orm.NewModelBucket("cash", &Wallet{})
}

// NewAllowanceBucket returns a bucket storing spending approvals.
func NewAllowanceBucket() orm.ModelBucket {
	return orm.NewModelBucket("allowance", &Allowance{})
}

// allowanceKey returns the primary key of the allowance granted by the owner
// to the spender.
func allowanceKey(owner, spender bazaar.Address) ([]byte, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if err := spender.Validate(); err != nil {
		return nil, errors.Wrap(err, "spender")
	}
	key := make([]byte, 0, len(owner)+len(spender))
	key = append(key, owner...)
	return append(key, spender...), nil
}
