package app

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// CommitStore handles loading from a CommitKVStore, handing out a fresh
// cache wrap for every operation and returning useful state info.
type CommitStore struct {
	committed bazaar.CommitKVStore
}

// NewCommitStore loads the latest version of given store.
func NewCommitStore(store bazaar.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{committed: store}, nil
}

// CommitInfo returns the current version and hash
func (cs *CommitStore) CommitInfo() (bazaar.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Begin returns a scratch pad over the last committed state. Changes are
// dropped unless passed to Commit.
func (cs *CommitStore) Begin() bazaar.KVCacheWrap {
	return cs.committed.CacheWrap()
}

// Commit flushes given cache wrap to the underlying store and persists a new
// version.
func (cs *CommitStore) Commit(wrap bazaar.KVCacheWrap) (bazaar.CommitID, error) {
	if err := wrap.Write(); err != nil {
		return bazaar.CommitID{}, errors.Wrap(err, "write cache")
	}
	return cs.committed.Commit()
}

// _bz: is a prefix for ledger internal data
const chainIDKey = "_bz:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv bazaar.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv bazaar.KVStore, chainID string) error {
	if !bazaar.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
