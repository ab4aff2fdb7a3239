package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData is the replay protection state of a single signer.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence"`
}

var _ orm.Model = (*UserData)(nil)

type userDataCodec UserData

func (m *userDataCodec) Reset()         { *m = userDataCodec{} }
func (m *userDataCodec) String() string { return proto.CompactTextString(m) }
func (*userDataCodec) ProtoMessage()    {}

func (u *UserData) Marshal() ([]byte, error) {
	return proto.Marshal((*userDataCodec)(u))
}

func (u *UserData) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*userDataCodec)(u))
}

func (u *UserData) Validate() error {
	if seq := u.Sequence; seq < 0 {
		return errors.Field("Sequence", ErrInvalidSequence, "negative")
	} else if seq > 0 && u.Pubkey == nil {
		return errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey")
	}
	if u.Pubkey != nil {
		return errors.Field("Pubkey", u.Pubkey.Validate(), "invalid public key")
	}
	return nil
}

// Copy makes a new UserData with the same key and sequence
func (u *UserData) Copy() orm.Model {
	return &UserData{
		Sequence: u.Sequence,
		Pubkey:   u.Pubkey,
	}
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}

	next := u.Sequence + 1

	// Clients cannot represent integers above Number.MAX_SAFE_INTEGER
	// (2^53 - 1).
	const maxSequenceValue = (1 << 53) - 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket extends orm.ModelBucket with GetOrCreate
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// GetOrCreate loads the state of given key owner. A signer seen for the first
// time starts with a zero sequence.
func (b Bucket) GetOrCreate(db bazaar.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pubkey.Address(), &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}
