/*
Package crypto holds the keys used to sign requests sent to the ledger.

Only ed25519 keys are supported. A public key is represented on the ledger
by a condition "sigs/ed25519/<key bytes>" and its address.
*/
package crypto

import (
	"github.com/iov-one/bazaar"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// Address returns the address of the condition fulfilled by a valid
// signature of this key.
func (p *PublicKey) Address() bazaar.Address {
	return p.Condition().Address()
}
