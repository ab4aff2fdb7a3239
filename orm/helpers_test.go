package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar/errors"
)

// Counter is a minimal model used in tests.
type Counter struct {
	Count uint64 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
	Owner []byte `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
}

var _ Model = (*Counter)(nil)

type counterCodec Counter

func (m *counterCodec) Reset()         { *m = counterCodec{} }
func (m *counterCodec) String() string { return proto.CompactTextString(m) }
func (*counterCodec) ProtoMessage()    {}

func (c *Counter) Marshal() ([]byte, error) {
	return proto.Marshal((*counterCodec)(c))
}

func (c *Counter) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*counterCodec)(c))
}

func (c *Counter) Copy() Model {
	cpy := *c
	return &cpy
}

func (c *Counter) Validate() error {
	if c.Count == 0 {
		return errors.Wrap(errors.ErrEmpty, "count")
	}
	return nil
}

func countIndex(obj Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	c, ok := obj.Value().(*Counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", obj.Value())
	}
	return EncodeSequence(c.Count), nil
}

func ownerIndex(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*Counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", obj.Value())
	}
	return c.Owner, nil
}
