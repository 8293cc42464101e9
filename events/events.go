/*
Package events delivers notifications about escrow transitions to
observers.

Publishing is fire-and-forget for the publisher: a failing sink is logged
and never changes the outcome of the operation that emitted the event.
*/
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/iov-one/htlc"
	"github.com/iov-one/htlc/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Event is a notification published after a state transition.
type Event interface {
	// Topic identifies the kind of event, for example "htlc/created".
	Topic() string
	// KeyVals returns the attributes of the event as alternating keys and
	// values, in the format accepted by log.Logger.
	KeyVals() []interface{}
}

// Sink receives published events.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Publish hands the event to the sink. Errors and panics of the sink are
// logged using the context logger and otherwise ignored.
func Publish(ctx context.Context, sink Sink, e Event) {
	if sink == nil {
		return
	}
	if err := safePublish(ctx, sink, e); err != nil {
		htlc.GetLogger(ctx).Error("cannot publish event", "topic", e.Topic(), "err", err)
	}
}

func safePublish(ctx context.Context, sink Sink, e Event) (err error) {
	defer errors.Recover(&err)
	return sink.Publish(ctx, e)
}

// LogSink writes every event to a logger at info level.
type LogSink struct {
	Logger log.Logger
}

var _ Sink = LogSink{}

func (s LogSink) Publish(ctx context.Context, e Event) error {
	logger := s.Logger
	if logger == nil {
		logger = htlc.GetLogger(ctx)
	}
	logger.Info("event", append([]interface{}{"topic", e.Topic()}, e.KeyVals()...)...)
	return nil
}

// Recorder keeps all published events in memory. It is safe for concurrent
// use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Sink = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of all recorded events in publishing order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Event, len(r.events))
	copy(res, r.events)
	return res
}

// Topics returns the topics of all recorded events in publishing order.
func (r *Recorder) Topics() []string {
	evs := r.Events()
	res := make([]string, len(evs))
	for i, e := range evs {
		res[i] = e.Topic()
	}
	return res
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Multi publishes every event to all sinks. Each sink is isolated from the
// others: a failure or panic of one does not prevent delivery to the rest.
type Multi []Sink

var _ Sink = Multi(nil)

func (m Multi) Publish(ctx context.Context, e Event) error {
	var failed []string
	for i, s := range m {
		if err := safePublish(ctx, s, e); err != nil {
			failed = append(failed, fmt.Sprintf("sink %d: %s", i, err))
		}
	}
	if len(failed) > 0 {
		return errors.Wrapf(errors.ErrState, "%d sinks failed: %v", len(failed), failed)
	}
	return nil
}
