package sigs

import (
	"context"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// WithSigners returns a context carrying given verified signers. Only
// conditions returned by VerifySignatures should be passed.
func WithSigners(ctx context.Context, signers []htlc.Condition) context.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate implements x.Authenticator by reading the signers placed in
// the context.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty
func (a Authenticate) GetConditions(ctx context.Context) []htlc.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]htlc.Condition)
	return val
}

// HasAddress returns true if any signer of the current Context controls
// given address.
func (a Authenticate) HasAddress(ctx context.Context, addr htlc.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
