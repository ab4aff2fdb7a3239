package orm

import (
	"reflect"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Model is an entity that a bucket can persist: a listing, an item, a
// wallet. Copy must return a deep copy.
type Model interface {
	bazaar.Persistent
	Validate() error
	Copy() Model
}

// Object is a model together with the key it is stored under, relative to
// the bucket prefix.
type Object interface {
	Key() []byte
	SetKey([]byte)
	Value() Model
	Validate() error
	// Clone returns an empty object of the same model type, ready to be
	// decoded into.
	Clone() Object
}

type record struct {
	key   []byte
	value Model
}

var _ Object = (*record)(nil)

// NewObject binds a model to its key. The key may be nil when the bucket
// assigns one.
func NewObject(key []byte, value Model) Object {
	return &record{key: key, value: value}
}

func (r *record) Key() []byte       { return r.key }
func (r *record) SetKey(key []byte) { r.key = key }
func (r *record) Value() Model      { return r.value }

func (r *record) Validate() error {
	switch {
	case len(r.key) == 0:
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	case r.value == nil:
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return errors.Field("Value", r.value.Validate(), "invalid value")
}

func (r *record) Clone() Object {
	empty := reflect.New(reflect.TypeOf(r.value).Elem()).Interface().(Model)
	var key []byte
	if len(r.key) > 0 {
		key = append(key, r.key...)
	}
	return &record{key: key, value: empty}
}
