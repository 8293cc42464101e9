package aswap

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"golang.org/x/crypto/sha3"
)

const (
	// IDSize is the length of an escrow identifier.
	IDSize = 32
	// HashlockSize is the length of a hashlock, a sha256 digest.
	HashlockSize = sha256.Size
)

// DeriveID returns the identifier of an escrow. It is the keccak256 hash of
//
//	sha256(sender) | sha256(receiver) | amount | hashlock | deadline | createdAt
//
// where the amount is 16 bytes and both timestamps 8 bytes, big-endian.
func DeriveID(sender, receiver htlc.Address, amount coin.Amount, hashlock []byte, deadline, createdAt htlc.UnixTime) []byte {
	s := sha256.Sum256(sender)
	r := sha256.Sum256(receiver)

	h := sha3.NewLegacyKeccak256()
	h.Write(s[:])
	h.Write(r[:])
	h.Write(amount.Bytes())
	h.Write(hashlock)

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(deadline))
	h.Write(ts[:])
	binary.BigEndian.PutUint64(ts[:], uint64(createdAt))
	h.Write(ts[:])
	return h.Sum(nil)
}

// HashSecret returns the hashlock that given secret unlocks.
func HashSecret(secret []byte) []byte {
	hash := sha256.Sum256(secret)
	return hash[:]
}

// EscrowAddress returns the custody address holding the funds of an escrow.
func EscrowAddress(id []byte) htlc.Address {
	return htlc.NewCondition("htlc", "escrow", id).Address()
}
