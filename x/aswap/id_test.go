package aswap

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/coin"
	"github.com/stretchr/testify/assert"
)

func TestDeriveIDVector(t *testing.T) {
	hashlock := sha256.Sum256([]byte("secret"))
	assert.Equal(t,
		"2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b",
		hex.EncodeToString(hashlock[:]))

	id := DeriveID(
		htlc.Address(bytes.Repeat([]byte{0x01}, 20)),
		htlc.Address(bytes.Repeat([]byte{0x02}, 20)),
		coin.NewAmount(1000000000),
		hashlock[:],
		1554374140,
		1554370540,
	)
	assert.Len(t, id, IDSize)
	assert.Equal(t,
		"63c9318ff7a95c07f1f65c5b6bf50a5c195e1da1915b8bcf02f9c88d5c559f19",
		hex.EncodeToString(id))
}

func TestDeriveIDSensitivity(t *testing.T) {
	var (
		sender   = htlc.Address(bytes.Repeat([]byte{0x01}, 20))
		receiver = htlc.Address(bytes.Repeat([]byte{0x02}, 20))
		amount   = coin.NewAmount(1000000000)
		hashlock = HashSecret([]byte("secret"))
	)
	const (
		deadline  htlc.UnixTime = 1554374140
		createdAt htlc.UnixTime = 1554370540
	)
	base := DeriveID(sender, receiver, amount, hashlock, deadline, createdAt)

	cases := map[string][]byte{
		"sender":     DeriveID(receiver, receiver, amount, hashlock, deadline, createdAt),
		"receiver":   DeriveID(sender, sender, amount, hashlock, deadline, createdAt),
		"swapped":    DeriveID(receiver, sender, amount, hashlock, deadline, createdAt),
		"amount":     DeriveID(sender, receiver, coin.NewAmount(1000000001), hashlock, deadline, createdAt),
		"hashlock":   DeriveID(sender, receiver, amount, HashSecret([]byte("other")), deadline, createdAt),
		"deadline":   DeriveID(sender, receiver, amount, hashlock, deadline+1, createdAt),
		"created at": DeriveID(sender, receiver, amount, hashlock, deadline, createdAt+1),
	}
	for testName, id := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.NotEqual(t, base, id)
		})
	}

	assert.Equal(t, base, DeriveID(sender, receiver, amount, hashlock, deadline, createdAt))
}

func TestEscrowAddress(t *testing.T) {
	a := EscrowAddress(bytes.Repeat([]byte{1}, IDSize))
	b := EscrowAddress(bytes.Repeat([]byte{2}, IDSize))
	assert.NoError(t, a.Validate())
	assert.False(t, a.Equals(b))
	assert.True(t, a.Equals(EscrowAddress(bytes.Repeat([]byte{1}, IDSize))))
}
