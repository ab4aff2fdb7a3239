package orm

import (
	"encoding/binary"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Sequence is a persisted counter used to allocate primary keys. Values
// start at 1 and are stored as 8 bytes big endian, so key order follows
// numeric order.
type Sequence struct {
	key []byte
}

// NewSequence returns the counter stored under "_s.<bucket>:<name>".
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns the new value encoded.
func (s Sequence) NextVal(db bazaar.KVStore) ([]byte, error) {
	n, err := s.Next(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(n), nil
}

// Next advances the counter and returns the new value.
func (s Sequence) Next(db bazaar.KVStore) (uint64, error) {
	n, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	if n == ^uint64(0) {
		return 0, errors.Wrap(errors.ErrOverflow, "sequence")
	}
	n++
	if err := db.Set(s.key, EncodeSequence(n)); err != nil {
		return 0, err
	}
	return n, nil
}

// Latest returns the last allocated value, zero when nothing was
// allocated yet.
func (s Sequence) Latest(db bazaar.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, err
	}
	return DecodeSequence(raw)
}

// DecodeSequence reads a value written by EncodeSequence. Nil is zero.
func DecodeSequence(raw []byte) (uint64, error) {
	switch len(raw) {
	case 0:
		if raw == nil {
			return 0, nil
		}
	case 8:
		return binary.BigEndian.Uint64(raw), nil
	}
	return 0, errors.Wrapf(errors.ErrInvalidInput, "sequence must be 8 bytes, got %d", len(raw))
}

func EncodeSequence(n uint64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], n)
	return raw[:]
}
