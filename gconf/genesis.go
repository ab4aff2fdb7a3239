package gconf

import (
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
)

// Initializer loads the configurations of the registered packages from the
// genesis "conf" section. Each entry maps a package name to an empty
// configuration of that package.
//
//	{"conf": {"market": {"owner": "...", "fee_percentage": 3}}}
type Initializer map[string]Configuration

var _ bazaar.Initializer = Initializer(nil)

// FromGenesis fails if any registered package has no configuration.
func (ini Initializer) FromGenesis(opts bazaar.Options, db bazaar.KVStore) error {
	var section bazaar.Options
	if err := opts.ReadOptions("conf", &section); err != nil {
		return errors.Wrap(err, "read conf")
	}
	for pkg, conf := range ini {
		if section[pkg] == nil {
			return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
		}
		if err := section.ReadOptions(pkg, conf); err != nil {
			return errors.Wrapf(err, "read configuration for %s", pkg)
		}
		if err := Save(db, pkg, conf); err != nil {
			return err
		}
	}
	return nil
}
