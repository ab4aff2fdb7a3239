package crypto

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"golang.org/x/crypto/ed25519"
)

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519"`
}

type publicKeyCodec PublicKey

func (m *publicKeyCodec) Reset()         { *m = publicKeyCodec{} }
func (m *publicKeyCodec) String() string { return proto.CompactTextString(m) }
func (*publicKeyCodec) ProtoMessage()    {}

func (p *PublicKey) Marshal() ([]byte, error) {
	return proto.Marshal((*publicKeyCodec)(p))
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*publicKeyCodec)(p))
}

// Validate returns an error if this is not a well formed ed25519 key.
func (p *PublicKey) Validate() error {
	if p == nil || len(p.Ed25519) == 0 {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInvalidInput, "public key must be %d bytes", ed25519.PublicKeySize)
	}
	return nil
}

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if p.Validate() != nil || sig == nil || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition encodes the public key into a bazaar condition
func (p *PublicKey) Condition() bazaar.Condition {
	return bazaar.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519"`
}

type signatureCodec Signature

func (m *signatureCodec) Reset()         { *m = signatureCodec{} }
func (m *signatureCodec) String() string { return proto.CompactTextString(m) }
func (*signatureCodec) ProtoMessage()    {}

func (s *Signature) Marshal() ([]byte, error) {
	return proto.Marshal((*signatureCodec)(s))
}

func (s *Signature) Unmarshal(raw []byte) error {
	return proto.Unmarshal(raw, (*signatureCodec)(s))
}

// PrivateKey is an ed25519 private key. It is never sent to the ledger.
type PrivateKey struct {
	Ed25519 []byte `json:"ed25519"`
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "private key must be %d bytes", ed25519.PrivateKeySize)
	}
	bz := ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	privateKey := ed25519.PrivateKey(p.Ed25519)
	pub := privateKey.Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	priv := ed25519.NewKeyFromSeed(seed)
	return &PrivateKey{Ed25519: priv}
}
