package policy

import (
	"context"

	"github.com/justapithecus/readsim/types"
)

// StrictPolicy implements synchronous, unbuffered persistence.
//
//   - No buffering: each pair is written immediately
//   - Backpressure: caller blocks on sink latency
//   - Sink errors fail the run
type StrictPolicy struct {
	sink  Sink
	stats *statsRecorder
}

// NewStrictPolicy creates a new strict policy writing to the given sink.
func NewStrictPolicy(sink Sink) *StrictPolicy {
	return &StrictPolicy{sink: sink, stats: newStatsRecorder()}
}

// IngestPair writes the pair immediately to the sink.
func (p *StrictPolicy) IngestPair(ctx context.Context, pair *types.ReadPair) error {
	p.stats.incTotalPairs()

	if err := p.sink.WritePairs(ctx, []*types.ReadPair{pair}); err != nil {
		p.stats.incErrors()
		return err
	}

	p.stats.incPersisted(1, int64(pair.Bases()))
	return nil
}

// Flush is a no-op for strict policy (nothing is buffered).
func (p *StrictPolicy) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close closes the underlying sink.
func (p *StrictPolicy) Close() error {
	return p.sink.Close()
}

// Stats returns policy statistics.
func (p *StrictPolicy) Stats() Stats {
	return p.stats.snapshot()
}

var _ Policy = (*StrictPolicy)(nil)
