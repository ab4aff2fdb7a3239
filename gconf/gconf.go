package gconf

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Configuration is the singleton settings object of one extension, such
// as the marketplace owner and fee percentage.
type Configuration interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
	Validate() error
}

// Key returns the store key of the configuration of pkg.
func Key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates conf and stores it as the configuration of pkg.
func Save(db bazaar.KVStore, pkg string, conf Configuration) error {
	if err := conf.Validate(); err != nil {
		return errors.Wrapf(err, "%s configuration", pkg)
	}
	raw, err := conf.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	return db.Set(Key(pkg), raw)
}

// Load reads the configuration of pkg into dst. It fails with ErrNotFound
// when pkg was never configured.
func Load(db bazaar.ReadOnlyKVStore, pkg string, dst Configuration) error {
	raw, err := db.Get(Key(pkg))
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "%s configuration: %s", pkg, err)
	}
	return nil
}
