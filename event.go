package bazaar

import "fmt"

// EventKind names a state transition observable by external indexers.
type EventKind string

// Event is emitted by handlers on successful state transitions. It is part
// of the DeliverResult and only published once the whole operation has been
// committed.
type Event struct {
	Kind   EventKind `json:"kind"`
	ItemID uint64    `json:"item_id,omitempty"`
	// From is the party that gives up the item or pays (seller, buyer, debtor).
	From Address `json:"from,omitempty"`
	// To is the party that receives the item or the payment.
	To     Address `json:"to,omitempty"`
	Amount uint64  `json:"amount,omitempty"`
	// Fee is the part of Amount collected by the marketplace owner.
	Fee uint64 `json:"fee,omitempty"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s item=%d from=%s to=%s amount=%d fee=%d",
		e.Kind, e.ItemID, e.From, e.To, e.Amount, e.Fee)
}
