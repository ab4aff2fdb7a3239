package orm

import (
	"bytes"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Index maintains a secondary index over the entities of a bucket, for
// example listings by seller or items by holder.
type Index interface {
	bazaar.QueryHandler

	Name() string

	// Update moves the references of an entity from the values prev was
	// indexed under to the values of save. A nil prev is an insert and a
	// nil save is a delete. Both must share the same primary key.
	Update(db bazaar.KVStore, prev Object, save Object) error

	// Keys returns the primary keys of all entities indexed under value.
	Keys(db bazaar.ReadOnlyKVStore, value []byte) ([][]byte, error)

	// Like returns the primary keys of all entities indexed under the
	// same values as pattern.
	Like(db bazaar.ReadOnlyKVStore, pattern Object) ([][]byte, error)
}

// Indexer calculates the secondary index key for a given object. A nil key
// leaves the object out of the index.
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer calculates all secondary index keys of an object.
type MultiKeyIndexer func(Object) ([][]byte, error)

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		key, err := indexer(obj)
		if err != nil || key == nil {
			return nil, err
		}
		return [][]byte{key}, nil
	}
}

// refIndex stores, for every index value, the primary key of the entity
// (unique) or a MultiRef set of primary keys.
type refIndex struct {
	name    string
	prefix  []byte
	unique  bool
	indexer MultiKeyIndexer
	dbKey   func(pk []byte) []byte
}

var _ Index = refIndex{}

// NewMultiKeyIndex returns an index stored under "_i.<name>:". dbKey turns a
// primary key into the key of the entity in the store.
func NewMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool, dbKey func([]byte) []byte) Index {
	return refIndex{
		name:    name,
		prefix:  []byte("_i." + name + ":"),
		unique:  unique,
		indexer: indexer,
		dbKey:   dbKey,
	}
}

func (i refIndex) Name() string {
	return i.name
}

func (i refIndex) key(value []byte) []byte {
	out := make([]byte, 0, len(i.prefix)+len(value))
	return append(append(out, i.prefix...), value...)
}

func (i refIndex) values(obj Object) ([][]byte, error) {
	if obj == nil {
		return nil, nil
	}
	return i.indexer(obj)
}

func (i refIndex) Update(db bazaar.KVStore, prev Object, save Object) error {
	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	}
	if prev != nil && save != nil && !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrCannotBeModified, "cannot modify the primary key of an object")
	}
	pk := save
	if pk == nil {
		pk = prev
	}

	before, err := i.values(prev)
	if err != nil {
		return err
	}
	after, err := i.values(save)
	if err != nil {
		return err
	}
	added := subtract(after, before)
	if i.unique {
		for _, v := range added {
			taken, err := db.Has(i.key(v))
			if err != nil {
				return err
			}
			if taken {
				return errors.Wrap(errors.ErrDuplicate, i.name)
			}
		}
	}
	for _, v := range subtract(before, after) {
		if err := i.unlink(db, v, pk.Key()); err != nil {
			return err
		}
	}
	for _, v := range added {
		if err := i.link(db, v, pk.Key()); err != nil {
			return err
		}
	}
	return nil
}

// subtract returns the elements of a that are not in b.
func subtract(a, b [][]byte) [][]byte {
	var out [][]byte
	for _, x := range a {
		if !contains(b, x) {
			out = append(out, x)
		}
	}
	return out
}

func contains(set [][]byte, x []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, x) {
			return true
		}
	}
	return false
}

// refs decodes the references stored under one index value.
func (i refIndex) refs(raw []byte) (*MultiRef, error) {
	if i.unique {
		if raw == nil {
			return &MultiRef{}, nil
		}
		return &MultiRef{Refs: [][]byte{raw}}, nil
	}
	var set MultiRef
	if err := set.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "index %s: %s", i.name, err)
	}
	return &set, nil
}

func (i refIndex) link(db bazaar.KVStore, value, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	key := i.key(value)
	if i.unique {
		return db.Set(key, pk)
	}
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	set, err := i.refs(raw)
	if err != nil {
		return err
	}
	if err := set.Add(pk); err != nil {
		return err
	}
	bz, err := set.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, bz)
}

func (i refIndex) unlink(db bazaar.KVStore, value, pk []byte) error {
	if len(value) == 0 {
		return nil
	}
	key := i.key(value)
	raw, err := db.Get(key)
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "index %s has no entry", i.name)
	}
	set, err := i.refs(raw)
	if err != nil {
		return err
	}
	if err := set.Remove(pk); err != nil {
		return err
	}
	if set.Size() == 0 {
		return db.Delete(key)
	}
	bz, err := set.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, bz)
}

func (i refIndex) Keys(db bazaar.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.key(value))
	if err != nil || raw == nil {
		return nil, err
	}
	set, err := i.refs(raw)
	if err != nil {
		return nil, err
	}
	return set.Refs, nil
}

func (i refIndex) Like(db bazaar.ReadOnlyKVStore, pattern Object) ([][]byte, error) {
	values, err := i.values(pattern)
	if err != nil {
		return nil, err
	}
	var pks [][]byte
	for _, v := range values {
		found, err := i.Keys(db, v)
		if err != nil {
			return nil, err
		}
		for _, pk := range found {
			if !contains(pks, pk) {
				pks = append(pks, pk)
			}
		}
	}
	return pks, nil
}

// keysWithPrefix returns the primary keys of all entities whose index value
// starts with prefix.
func (i refIndex) keysWithPrefix(db bazaar.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	it, err := db.Iterator(prefixRange(i.key(prefix)))
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var pks [][]byte
	for {
		_, raw, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return pks, nil
		}
		if err != nil {
			return nil, err
		}
		set, err := i.refs(raw)
		if err != nil {
			return nil, err
		}
		pks = append(pks, set.Refs...)
	}
}

func (i refIndex) Query(db bazaar.ReadOnlyKVStore, mod string, data []byte) ([]bazaar.Model, error) {
	var (
		pks [][]byte
		err error
	)
	switch mod {
	case bazaar.KeyQueryMod:
		pks, err = i.Keys(db, data)
	case bazaar.PrefixQueryMod:
		pks, err = i.keysWithPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown query modifier %q", mod)
	}
	if err != nil || len(pks) == 0 {
		return nil, err
	}
	res := make([]bazaar.Model, len(pks))
	for n, pk := range pks {
		key := i.dbKey(pk)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[n] = bazaar.Pair(key, value)
	}
	return res, nil
}

// prefixRange returns the iterator bounds covering every key that starts
// with prefix. An all 0xFF prefix has no upper bound.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := append([]byte(nil), prefix...)
	for n := len(end) - 1; n >= 0; n-- {
		end[n]++
		if end[n] != 0 {
			return prefix, end[:n+1]
		}
	}
	return prefix, nil
}
