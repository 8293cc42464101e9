package crypto

import (
	"bytes"
	"testing"

	"github.com/iov-one/htlc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()

	msg := []byte("withdraw escrow")
	sig, err := priv.Sign(msg)
	require.NoError(t, err)

	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("refund escrow"), sig))

	other := GenPrivKeyEd25519().PublicKey()
	assert.False(t, other.Verify(msg, sig))
	assert.False(t, PublicKey([]byte{1, 2, 3}).Verify(msg, sig))
}

func TestDeterministicKeys(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a, err := PrivKeyEd25519FromSeed(seed)
	require.NoError(t, err)
	b, err := PrivKeyEd25519FromSeed(seed)
	require.NoError(t, err)
	assert.True(t, a.PublicKey().Equals(b.PublicKey()))
	assert.Equal(t, a.PublicKey().Address(), b.PublicKey().Address())

	_, err = PrivKeyEd25519FromSeed([]byte("short"))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestStrkeyEncoding(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()

	encPub := pub.String()
	assert.Equal(t, byte('G'), encPub[0])
	gotPub, err := ParsePublicKey(encPub)
	require.NoError(t, err)
	assert.True(t, pub.Equals(gotPub))

	encPriv := priv.String()
	assert.Equal(t, byte('S'), encPriv[0])
	gotPriv, err := ParsePrivateKey(encPriv)
	require.NoError(t, err)
	assert.Equal(t, priv, gotPriv)

	_, err = ParsePublicKey(encPriv)
	assert.True(t, errors.ErrInput.Is(err))
	_, err = ParsePrivateKey("not a key")
	assert.True(t, errors.ErrInput.Is(err))
}

func TestCondition(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	cond := pub.Condition()
	require.NoError(t, cond.Validate())

	ext, typ, data, err := cond.Parse()
	require.NoError(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, []byte(pub), data)
	assert.Equal(t, cond.Address(), pub.Address())
}
