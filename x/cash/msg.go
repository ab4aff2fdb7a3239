package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

const maxMemoSize int = 128

// SendMsg moves funds between two accounts. It must be signed by the source
// account owner.
type SendMsg struct {
	Source      bazaar.Address `protobuf:"bytes,1,opt,name=source,proto3" json:"source"`
	Destination bazaar.Address `protobuf:"bytes,2,opt,name=destination,proto3" json:"destination"`
	Amount      uint64         `protobuf:"varint,3,opt,name=amount,proto3" json:"amount"`
	Memo        string         `protobuf:"bytes,4,opt,name=memo,proto3" json:"memo,omitempty"`
}

var _ bazaar.Msg = (*SendMsg)(nil)

type sendMsgCodec SendMsg

func (m *sendMsgCodec) Reset()         { *m = sendMsgCodec{} }
func (m *sendMsgCodec) String() string { return proto.CompactTextString(m) }
func (*sendMsgCodec) ProtoMessage()    {}

func (m *SendMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*sendMsgCodec)(m))
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*sendMsgCodec)(m))
}

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrInvalidAmount)
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrap(errors.ErrInvalidInput, "too long"))
	}
	return errs
}

// ApproveMsg allows the spender to move up to the given amount out of the
// signer's account. Approving zero revokes a previous approval.
type ApproveMsg struct {
	Spender bazaar.Address `protobuf:"bytes,1,opt,name=spender,proto3" json:"spender"`
	Amount  uint64         `protobuf:"varint,2,opt,name=amount,proto3" json:"amount"`
}

var _ bazaar.Msg = (*ApproveMsg)(nil)

type approveMsgCodec ApproveMsg

func (m *approveMsgCodec) Reset()         { *m = approveMsgCodec{} }
func (m *approveMsgCodec) String() string { return proto.CompactTextString(m) }
func (*approveMsgCodec) ProtoMessage()    {}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	return proto.Marshal((*approveMsgCodec)(m))
}

func (m *ApproveMsg) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*approveMsgCodec)(m))
}

// Path returns the routing path for this message
func (ApproveMsg) Path() string {
	return "cash/approve"
}

func (m *ApproveMsg) Validate() error {
	return errors.Field("Spender", m.Spender.Validate(), "invalid spender")
}
