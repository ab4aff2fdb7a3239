package marketd

import (
	"encoding/json"

	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/crypto"
	"github.com/iov-one/bazaar/errors"
	"github.com/iov-one/bazaar/x/sigs"
)

// Tx is a signed request as received by the HTTP API. The message is kept
// in its JSON form so that the signature covers the exact bytes sent.
type Tx struct {
	Path       string               `json:"path"`
	Msg        json.RawMessage      `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures,omitempty"`

	msg bazaar.Msg
}

// make sure tx fulfills all interfaces
var _ bazaar.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// MsgFactory creates empty messages by path.
type MsgFactory interface {
	NewMsg(path string) (bazaar.Msg, error)
}

// NewTx wraps given message into an unsigned request.
func NewTx(msg bazaar.Msg) (*Tx, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, err.Error())
	}
	return &Tx{Path: msg.Path(), Msg: raw, msg: msg}, nil
}

// DecodeTx parses a JSON encoded request and loads its message.
func DecodeTx(msgs MsgFactory, raw []byte) (*Tx, error) {
	var tx Tx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot decode request: %s", err)
	}
	msg, err := msgs.NewMsg(tx.Path)
	if err != nil {
		return nil, err
	}
	if len(tx.Msg) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "msg")
	}
	if err := json.Unmarshal(tx.Msg, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "cannot decode %s: %s", tx.Path, err)
	}
	tx.msg = msg
	return &tx, nil
}

// GetMsg returns the decoded message.
func (tx *Tx) GetMsg() (bazaar.Msg, error) {
	if tx.msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "message not decoded")
	}
	return tx.msg, nil
}

// GetSignBytes returns the bytes to sign: the path, a zero byte and the
// message as sent.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	bz := make([]byte, 0, len(tx.Path)+1+len(tx.Msg))
	bz = append(bz, tx.Path...)
	bz = append(bz, 0)
	bz = append(bz, tx.Msg...)
	return bz, nil
}

// GetSignatures returns all signatures of this request.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// Sign appends a signature created with the signer's next nonce.
func (tx *Tx) Sign(signer crypto.Signer, chainID string, nonce int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
