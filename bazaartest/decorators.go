package bazaartest

import "github.com/iov-one/bazaar"

// Decorator is a mock bazaar.Decorator. It fails with CheckErr or
// DeliverErr when set and calls the next handler otherwise. Every call is
// counted and the path of every request is recorded in Paths, whether it
// fails or not.
type Decorator struct {
	calls

	CheckErr   error
	DeliverErr error

	Paths []string
}

var _ bazaar.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Checker) (*bazaar.CheckResult, error) {
	d.check++
	d.record(tx)
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx bazaar.Context, db bazaar.KVStore, tx bazaar.Tx, next bazaar.Deliverer) (*bazaar.DeliverResult, error) {
	d.deliver++
	d.record(tx)
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) record(tx bazaar.Tx) {
	if tx != nil {
		d.Paths = append(d.Paths, bazaar.GetPath(tx))
	}
}
