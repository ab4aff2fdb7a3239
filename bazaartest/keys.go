package bazaartest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/bazaar"
)

var condSeq uint64

// NewCondition returns a new, unique condition. Conditions are generated
// from a process wide counter so tests are deterministic.
func NewCondition() bazaar.Condition {
	n := atomic.AddUint64(&condSeq, 1)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, n)
	return bazaar.NewCondition("test", "seq", raw)
}
