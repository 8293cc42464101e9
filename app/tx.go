package app

import (
	"encoding/json"

	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/x/sigs"
)

// Msg is a request executed by the host.
type Msg interface {
	Path() string
}

// SignBytes returns the payload that signers of given message sign. It is
// the message path followed by a new line and the JSON form of the message.
func SignBytes(msg Msg) ([]byte, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot serialize %T: %s", msg, err)
	}
	payload := make([]byte, 0, len(msg.Path())+1+len(raw))
	payload = append(payload, msg.Path()...)
	payload = append(payload, '\n')
	return append(payload, raw...), nil
}

// SignMsg signs the message for given chain using the next sequence of the
// key.
func SignMsg(key crypto.PrivateKey, msg Msg, chainID string, seq int64) (*sigs.StdSignature, error) {
	payload, err := SignBytes(msg)
	if err != nil {
		return nil, err
	}
	return sigs.Sign(key, payload, chainID, seq)
}
