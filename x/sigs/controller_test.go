package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/htlc/crypto"
	"github.com/iov-one/htlc/errors"
	"github.com/iov-one/htlc/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainID = "test-htlc"

func TestVerifySignatures(t *testing.T) {
	alice := crypto.GenPrivKeyEd25519()
	bob := crypto.GenPrivKeyEd25519()
	payload := []byte(`{"op":"refund"}`)

	mustSign := func(key crypto.PrivateKey, data []byte, seq int64) *StdSignature {
		sig, err := Sign(key, data, chainID, seq)
		require.NoError(t, err)
		return sig
	}

	cases := map[string]struct {
		sigs    func() []*StdSignature
		wantErr *errors.Error
		signers int
	}{
		"single signer": {
			sigs:    func() []*StdSignature { return []*StdSignature{mustSign(alice, payload, 0)} },
			signers: 1,
		},
		"two signers": {
			sigs: func() []*StdSignature {
				return []*StdSignature{mustSign(alice, payload, 0), mustSign(bob, payload, 0)}
			},
			signers: 2,
		},
		"no signature": {
			sigs:    func() []*StdSignature { return nil },
			wantErr: errors.ErrUnauthorized,
		},
		"signature of other payload": {
			sigs:    func() []*StdSignature { return []*StdSignature{mustSign(alice, []byte("other"), 0)} },
			wantErr: errors.ErrUnauthorized,
		},
		"wrong sequence": {
			sigs:    func() []*StdSignature { return []*StdSignature{mustSign(alice, payload, 3)} },
			wantErr: ErrInvalidSequence,
		},
		"missing public key": {
			sigs: func() []*StdSignature {
				s := mustSign(alice, payload, 0)
				s.Pubkey = nil
				return []*StdSignature{s}
			},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			signers, err := VerifySignatures(db, payload, chainID, tc.sigs())
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
			assert.Len(t, signers, tc.signers)
		})
	}
}

func TestReplayProtection(t *testing.T) {
	db := store.MemStore()
	key := crypto.GenPrivKeyEd25519()
	payload := []byte("withdraw")

	seq, err := NextSequence(db, key.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	sig, err := Sign(key, payload, chainID, seq)
	require.NoError(t, err)
	cond, err := VerifySignature(db, sig, payload, chainID)
	require.NoError(t, err)
	assert.True(t, cond.Equals(key.PublicKey().Condition()))

	// the same signature cannot be used twice
	_, err = VerifySignature(db, sig, payload, chainID)
	assert.True(t, ErrInvalidSequence.Is(err))

	seq, err = NextSequence(db, key.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestBuildSignBytes(t *testing.T) {
	a, err := BuildSignBytes([]byte("x"), chainID, 1)
	require.NoError(t, err)
	b, err := BuildSignBytes([]byte("x"), chainID, 2)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	_, err = BuildSignBytes([]byte("x"), "no", 1)
	assert.True(t, errors.ErrInput.Is(err))
	_, err = BuildSignBytes([]byte("x"), chainID, -1)
	assert.True(t, ErrInvalidSequence.Is(err))
}

func TestAuthenticate(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	ctx := context.Background()
	var auth Authenticate
	assert.Empty(t, auth.GetConditions(ctx))
	assert.False(t, auth.HasAddress(ctx, key.PublicKey().Address()))

	db := store.MemStore()
	sig, err := Sign(key, []byte("p"), chainID, 0)
	require.NoError(t, err)
	signers, err := VerifySignatures(db, []byte("p"), chainID, []*StdSignature{sig})
	require.NoError(t, err)

	ctx = WithSigners(ctx, signers)
	assert.True(t, auth.HasAddress(ctx, key.PublicKey().Address()))
	assert.Len(t, auth.GetConditions(ctx), 1)
}

func TestUserDataCodec(t *testing.T) {
	u := UserData{Pubkey: crypto.GenPrivKeyEd25519().PublicKey(), Sequence: 42}
	raw, err := u.Marshal()
	require.NoError(t, err)
	var got UserData
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, u, got)

	assert.True(t, errors.ErrModel.Is((&UserData{}).Validate()))
}
