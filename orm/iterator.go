package orm

import (
	"bytes"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// ModelIterator allows to iterate over models stored in a bucket.
// CONTRACT: No writes may happen within a domain while an iterator exists over it.
type ModelIterator interface {
	// LoadNext moves the iterator to the next sequential key in the database and
	// loads the current value into the passed destination. The primary key
	// of the loaded entity is returned.
	// ErrIteratorDone is returned when there is no more data.
	LoadNext(dest Model) ([]byte, error)

	// Release releases the Iterator.
	Release()
}

type modelIterator struct {
	// this is the raw KVStoreIterator
	iterator bazaar.Iterator
	// this is the bucketPrefix to strip from each key
	bucketPrefix []byte
}

var _ ModelIterator = (*modelIterator)(nil)

func (i *modelIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := i.iterator.Next()
	if err != nil {
		return nil, err
	}

	// since we use raw kvstore here, not Bucket, we must remove the bucket prefix manually
	if !bytes.HasPrefix(key, i.bucketPrefix) {
		return nil, errors.Wrapf(errors.ErrDatabase, "key with unexpected prefix: %X", key)
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "unmarshaling into %T: %s", dest, err)
	}
	return key[len(i.bucketPrefix):], nil
}

func (i *modelIterator) Release() {
	i.iterator.Release()
}
