package htlctest

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/crypto"
)

// NewKey returns a random ed25519 private key.
func NewKey() crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a random key.
func NewCondition() htlc.Condition {
	return NewKey().PublicKey().Condition()
}

// RandomSecret returns a random 32 byte preimage together with its
// sha256 hashlock.
func RandomSecret(t testing.TB) (secret, hashlock []byte) {
	t.Helper()
	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("cannot read random secret: %s", err)
	}
	h := sha256.Sum256(secret)
	return secret, h[:]
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation.
func ParseAddress(t testing.TB, encodedAddress string) htlc.Address {
	t.Helper()

	addr, err := htlc.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
