package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/errors"
)

// digestVersion tags the layout of the signed digest.
var digestVersion = []byte("bzr\x01")

/*
Digest returns what a signer signs for payload:

	sha512("bzr\x01" | len(chainID) | chainID | nonce | payload)

The chain id length is a single byte and the nonce a big endian uint64.
Binding the chain id and nonce stops a signed request from being replayed
on another ledger or a second time on the same one.
*/
func Digest(payload []byte, chainID string, nonce int64) ([]byte, error) {
	if nonce < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !bazaar.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}

	h := sha512.New()
	h.Write(digestVersion)
	h.Write([]byte{byte(len(chainID))})
	h.Write([]byte(chainID))
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(nonce))
	h.Write(seq[:])
	h.Write(payload)
	return h.Sum(nil), nil
}

// SignTx signs tx for the given chain with the next nonce of signer.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, nonce int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := Digest(payload, chainID, nonce)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  nonce,
	}, nil
}

// Verify checks every signature of tx and advances the nonce of each
// signer. It returns the signers in the order of the signatures. A tx
// without signatures yields no signers and no error.
func Verify(db bazaar.KVStore, tx SignedTx, chainID string) ([]bazaar.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]bazaar.Condition, 0, len(sigs))
	for i, sig := range sigs {
		signer, err := verify(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

func verify(db bazaar.KVStore, sig *StdSignature, payload []byte, chainID string) (bazaar.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	users := NewBucket()
	user, err := users.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	digest, err := Digest(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if _, err := users.Put(db, user.Pubkey.Address(), user); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}
