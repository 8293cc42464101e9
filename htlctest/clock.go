package htlctest

import (
	"context"
	"sync"

	"github.com/iov-one/htlc"
)

// Clock is a manually driven htlc.Clock. The zero value reports the epoch.
type Clock struct {
	mu  sync.Mutex
	now htlc.UnixTime
}

var _ htlc.Clock = (*Clock)(nil)

// NewClock returns a clock set to given time.
func NewClock(now htlc.UnixTime) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now(context.Context) (htlc.UnixTime, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now, nil
}

// Set moves the clock to given time. Tests may move it backwards.
func (c *Clock) Set(now htlc.UnixTime) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Advance moves the clock forward by given number of seconds.
func (c *Clock) Advance(seconds uint64) {
	c.mu.Lock()
	c.now += htlc.UnixTime(seconds)
	c.mu.Unlock()
}
