package lode

import (
	"context"

	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

// InstrumentedSink wraps a policy.Sink and records write metrics.
// Each WritePairs call increments lode_write_success or lode_write_failure.
type InstrumentedSink struct {
	inner     policy.Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps a sink with metrics instrumentation.
func NewInstrumentedSink(inner policy.Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

// WritePairs delegates to the inner sink and records success or failure.
func (s *InstrumentedSink) WritePairs(ctx context.Context, pairs []*types.ReadPair) error {
	err := s.inner.WritePairs(ctx, pairs)
	if err != nil {
		s.collector.IncLodeWriteFailure()
	} else {
		s.collector.IncLodeWriteSuccess()
	}
	return err
}

// Close delegates to the inner sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

var _ policy.Sink = (*InstrumentedSink)(nil)
