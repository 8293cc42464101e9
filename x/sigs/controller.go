package sigs

import (
	"crypto/sha512"
	"encoding/binary"
	"regexp"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/errors"
)

// SignCodeV1 is the current way to prefix the bytes we use to build
// a signature
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

var isChainID = regexp.MustCompile(`^[a-zA-Z0-9_.-]{4,128}$`).MatchString

// IsValidChainID returns true if given chain id can be part of sign bytes.
func IsValidChainID(chainID string) bool {
	return isChainID(chainID)
}

// StdSignature is a signature of a request payload.
type StdSignature struct {
	Pubkey    crypto.PublicKey
	Signature []byte
	Sequence  int64
}

// Validate ensures the signature is complete.
func (s *StdSignature) Validate() error {
	if len(s.Pubkey) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	return nil
}

// VerifySignatures checks all the signatures of the payload, which must have
// at least one. The sequence of every signer is incremented in db.
//
// returns list of signer conditions, or error if any signature is invalid
func VerifySignatures(db htlc.KVStore, payload []byte, chainID string, sigs []*StdSignature) ([]htlc.Condition, error) {
	if len(sigs) == 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	signers := make([]htlc.Condition, 0, len(sigs))
	for _, sig := range sigs {
		signer, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, err
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// VerifySignature checks one signature against the payload, check chain
// and updates state in the store
func VerifySignature(db htlc.KVStore, sig *StdSignature, payload []byte, chainID string) (htlc.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	bucket := NewBucket()
	user, err := GetOrCreate(db, bucket, sig.Pubkey)
	if err != nil {
		return nil, err
	}

	toSign, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(toSign, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}

	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Put(db, user.Pubkey.Address(), user); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}

// NextSequence returns the sequence the next signature of given key must use.
func NextSequence(db htlc.ReadOnlyKVStore, pub crypto.PublicKey) (int64, error) {
	user, err := GetOrCreate(db, NewBucket(), pub)
	if err != nil {
		return 0, err
	}
	return user.Sequence, nil
}

/*
BuildSignBytes combines all info on the request before signing

version | len(chainID) | chainID      | nonce             | payload
4bytes  | uint8        | ascii string | int64 (bigendian) | serialized request

This is then prehashed with sha512 before fed into
the public key signing/verification step
*/
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !isChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	output := make([]byte, 0, 4+1+len(chainID)+8+len(payload))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, []byte(chainID)...)
	output = append(output, nonce...)
	output = append(output, payload...)

	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// Sign creates a signature for the given payload
func Sign(key crypto.PrivateKey, payload []byte, chainID string, seq int64) (*StdSignature, error) {
	signBytes, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(signBytes)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    key.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}
