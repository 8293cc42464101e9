/*
Package crypto provides ed25519 keys used to prove authority over a
principal. A public key is turned into a Condition, and the Condition into the
Address that escrows refer to.

Keys are printed using the Stellar strkey format: public keys as account IDs
("G..."), private keys as seeds ("S...").
*/
package crypto

import (
	"bytes"
	"crypto/rand"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/stellar/go/strkey"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PublicKey is an ed25519 public key.
type PublicKey []byte

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Condition encodes the public key into a condition
func (p PublicKey) Condition() htlc.Condition {
	return htlc.NewCondition(ExtensionName, "ed25519", p)
}

// Address returns the address controlled by this key.
func (p PublicKey) Address() htlc.Address {
	return p.Condition().Address()
}

// Equals returns true if both keys are the same.
func (p PublicKey) Equals(o PublicKey) bool {
	return bytes.Equal(p, o)
}

// String returns the Stellar account ID representation of this key.
func (p PublicKey) String() string {
	s, err := strkey.Encode(strkey.VersionByteAccountID, p)
	if err != nil {
		return "(invalid key)"
	}
	return s
}

// ParsePublicKey decodes a Stellar account ID ("G...") into a public key.
func ParsePublicKey(s string) (PublicKey, error) {
	raw, err := strkey.Decode(strkey.VersionByteAccountID, s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "public key: %s", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Wrap(errors.ErrInput, "public key size")
	}
	return PublicKey(raw), nil
}

// PrivateKey is an ed25519 private key.
type PrivateKey []byte

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return PrivateKey(priv)
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

// Sign returns a matching signature for this private key
func (p PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrState, "invalid private key")
	}
	return ed25519.Sign(ed25519.PrivateKey(p), message), nil
}

// PublicKey returns the corresponding PublicKey
func (p PrivateKey) PublicKey() PublicKey {
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}

// String returns the Stellar seed representation of this key.
func (p PrivateKey) String() string {
	s, err := strkey.Encode(strkey.VersionByteSeed, ed25519.PrivateKey(p).Seed())
	if err != nil {
		return "(invalid key)"
	}
	return s
}

// ParsePrivateKey decodes a Stellar seed ("S...") into a private key.
func ParsePrivateKey(s string) (PrivateKey, error) {
	seed, err := strkey.Decode(strkey.VersionByteSeed, s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "private key: %s", err)
	}
	return PrivKeyEd25519FromSeed(seed)
}
