package htlc

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int

const (
	contextKeyBlockTime contextKey = iota
	contextKeyHeight
	contextKeyLogger
)

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

// WithBlockTime sets the time of the call being processed. The host sets it
// once per call so that every check within a single operation observes the
// same "now".
func WithBlockTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyBlockTime, t)
}

// BlockTime returns the time set by the host for this call.
func BlockTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(contextKeyBlockTime).(time.Time)
	return t, ok
}

// WithHeight sets the sequence number of the call being processed. The
// height increments with every committed call.
func WithHeight(ctx context.Context, height int64) context.Context {
	return context.WithValue(ctx, contextKeyHeight, height)
}

// GetHeight returns the height set by the host, if any.
func GetHeight(ctx context.Context) (int64, bool) {
	h, ok := ctx.Value(contextKeyHeight).(int64)
	return h, ok
}

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or
// DefaultLogger if none was set
func GetLogger(ctx context.Context) log.Logger {
	val, ok := ctx.Value(contextKeyLogger).(log.Logger)
	if !ok || val == nil {
		return DefaultLogger
	}
	return val
}
