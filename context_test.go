package htlc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/iov-one/htlc/errors"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	// try logger with default
	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	// test height - uninitialized
	val, ok := GetHeight(ctx)
	assert.Equal(t, int64(0), val)
	assert.False(t, ok)
	ctx = WithHeight(ctx, 7)
	val, ok = GetHeight(ctx)
	assert.Equal(t, int64(7), val)
	assert.True(t, ok)

	// changing the info, should modify the logger, but not the height
	ctx2 := WithLogInfo(ctx, "foo", "bar")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(ctx2))
	val, _ = GetHeight(ctx2)
	assert.Equal(t, int64(7), val)
}

func TestBlockClock(t *testing.T) {
	ctx := context.Background()

	_, err := BlockClock{}.Now(ctx)
	if !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %+v", err)
	}

	now := time.Unix(1554370540, 0)
	got, err := BlockClock{}.Now(WithBlockTime(ctx, now))
	assert.NoError(t, err)
	assert.Equal(t, UnixTime(1554370540), got)
}

func TestClockFunc(t *testing.T) {
	c := ClockFunc(func(context.Context) (UnixTime, error) { return 42, nil })
	got, err := c.Now(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, UnixTime(42), got)
}
