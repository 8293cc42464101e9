package htlc

import (
	"context"

	"github.com/iov-one/htlc/errors"
)

// Clock provides the current time of a call. Implementations must be
// monotonic non-decreasing across calls within a single ledger history.
type Clock interface {
	Now(ctx context.Context) (UnixTime, error)
}

// BlockClock reads the time that the host stored in the context of the call
// using WithBlockTime.
type BlockClock struct{}

var _ Clock = BlockClock{}

// Now returns the block time of the call. It fails when the host did not
// provide one, as processing without a trusted time is never correct.
func (BlockClock) Now(ctx context.Context) (UnixTime, error) {
	t, ok := BlockTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrState, "block time not present in context")
	}
	return AsUnixTime(t), nil
}

// ClockFunc allows to use a function as a Clock.
type ClockFunc func(context.Context) (UnixTime, error)

var _ Clock = ClockFunc(nil)

func (fn ClockFunc) Now(ctx context.Context) (UnixTime, error) {
	return fn(ctx)
}
