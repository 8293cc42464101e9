package events

import (
	"context"

	"github.com/iov-one/htlc/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts published events by topic.
type MetricsSink struct {
	published *prometheus.CounterVec
}

var _ Sink = (*MetricsSink)(nil)

// NewMetricsSink creates the counter and registers it with given registerer.
func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "htlc",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Total escrow events published by topic.",
	}, []string{"topic"})
	if err := reg.Register(published); err != nil {
		return nil, errors.Wrapf(errors.ErrState, "register metrics: %s", err)
	}
	return &MetricsSink{published: published}, nil
}

func (s *MetricsSink) Publish(ctx context.Context, e Event) error {
	s.published.WithLabelValues(e.Topic()).Inc()
	return nil
}

// Counter exposes the underlying counter, mostly for tests.
func (s *MetricsSink) Counter() *prometheus.CounterVec {
	return s.published
}
