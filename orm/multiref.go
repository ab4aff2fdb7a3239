package orm

import (
	"bytes"
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar/errors"
)

// MultiRef is the value of a non unique index entry: the ordered set of
// primary keys indexed under one value.
type MultiRef struct {
	Refs [][]byte `protobuf:"bytes,1,rep,name=refs,proto3" json:"refs,omitempty"`
}

var _ Model = (*MultiRef)(nil)

type multiRefCodec MultiRef

func (m *multiRefCodec) Reset()         { *m = multiRefCodec{} }
func (m *multiRefCodec) String() string { return proto.CompactTextString(m) }
func (*multiRefCodec) ProtoMessage()    {}

func (m *MultiRef) Marshal() ([]byte, error) {
	return proto.Marshal((*multiRefCodec)(m))
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*multiRefCodec)(m))
}

// NewMultiRef builds a set from refs. Duplicates are an error.
func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	var m MultiRef
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// Size is nil safe.
func (m *MultiRef) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Refs)
}

// Has reports whether ref is in the set.
func (m *MultiRef) Has(ref []byte) bool {
	_, ok := m.search(ref)
	return ok
}

// Add inserts ref keeping the set ordered.
func (m *MultiRef) Add(ref []byte) error {
	i, ok := m.search(ref)
	if ok {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

func (m *MultiRef) Remove(ref []byte) error {
	i, ok := m.search(ref)
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// search returns the position of ref, or where it would be inserted.
func (m *MultiRef) search(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(n int) bool {
		return bytes.Compare(m.Refs[n], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

func (m *MultiRef) Copy() Model {
	return &MultiRef{Refs: append([][]byte(nil), m.Refs...)}
}

// Validate rejects an empty set. Empty index entries are deleted instead.
func (m *MultiRef) Validate() error {
	if m.Size() == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}
