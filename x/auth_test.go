package x_test

import (
	"context"
	"testing"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/htlctest"
	"github.com/iov-one/htlc/x"
	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	a := htlctest.NewCondition()
	b := htlctest.NewCondition()
	c := htlctest.NewCondition()

	ctxAuth := &htlctest.CtxAuth{Key: "auth"}
	ctx := ctxAuth.SetConditions(context.Background(), a, b)
	static := &htlctest.Auth{Signers: []htlc.Condition{b, c}}

	cases := map[string]struct {
		auth    x.Authenticator
		wantAll []htlc.Address
		notAddr htlc.Address
	}{
		"context only": {
			auth:    ctxAuth,
			wantAll: []htlc.Address{a.Address(), b.Address()},
			notAddr: c.Address(),
		},
		"chained without duplicates": {
			auth:    x.ChainAuth(ctxAuth, static),
			wantAll: []htlc.Address{a.Address(), b.Address(), c.Address()},
			notAddr: htlctest.NewCondition().Address(),
		},
		"empty chain": {
			auth:    x.ChainAuth(),
			notAddr: a.Address(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantAll, nilIfEmpty(x.GetAddresses(ctx, tc.auth)))
			for _, addr := range tc.wantAll {
				assert.True(t, tc.auth.HasAddress(ctx, addr))
			}
			assert.False(t, tc.auth.HasAddress(ctx, tc.notAddr))
		})
	}
}

func nilIfEmpty(a []htlc.Address) []htlc.Address {
	if len(a) == 0 {
		return nil
	}
	return a
}
