package sigs

import (
	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/orm"
)

// maxSequenceValue is limited by the client. The greatest supported integer
// in javascript is 2^53-1.
const maxSequenceValue = 1<<53 - 1

// UserData keeps the public key of a signer and the sequence number its next
// signature must use.
type UserData struct {
	Pubkey   crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// Validate requires a public key and a sequence within the supported range.
func (u *UserData) Validate() error {
	if len(u.Pubkey) == 0 {
		return errors.Wrap(errors.ErrModel, "missing public key")
	}
	if u.Sequence < 0 || u.Sequence > maxSequenceValue {
		return errors.Wrapf(ErrInvalidSequence, "out of range: %d", u.Sequence)
	}
	return nil
}

// Marshal encodes the user in the wire format of sigs.UserData.
func (u *UserData) Marshal() ([]byte, error) {
	e := orm.NewEncoder()
	e.Bytes(1, u.Pubkey)
	e.Int64(2, u.Sequence)
	return e.Marshal()
}

// Unmarshal decodes data created by Marshal.
func (u *UserData) Unmarshal(raw []byte) error {
	fields, err := orm.DecodeFields(raw)
	if err != nil {
		return err
	}
	*u = UserData{}
	for _, f := range fields {
		switch f.Num {
		case 1:
			u.Pubkey = crypto.PublicKey(f.Bytes)
		case 2:
			u.Sequence = int64(f.Varint)
		}
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	if u.Sequence == maxSequenceValue {
		return errors.Wrap(ErrInvalidSequence, "sequence exhausted")
	}
	u.Sequence++
	return nil
}

// NewBucket returns the bucket of signers keyed by their address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("sigs", &UserData{})
}

// GetOrCreate loads the signer of given public key. A signer seen for the
// first time starts with sequence zero.
func GetOrCreate(db htlc.ReadOnlyKVStore, b orm.ModelBucket, pub crypto.PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pub.Address(), &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pub}, nil
	default:
		return nil, err
	}
}
