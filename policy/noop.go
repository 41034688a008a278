package policy

import (
	"context"
	"sync"

	"github.com/justapithecus/readsim/types"
)

// NoopPolicy counts pairs without writing them anywhere.
// Used to measure generation throughput and in tests.
type NoopPolicy struct {
	mu    sync.Mutex
	stats Stats
}

// NewNoopPolicy creates a new no-op policy.
func NewNoopPolicy() *NoopPolicy {
	return &NoopPolicy{}
}

// IngestPair counts the pair as persisted.
func (p *NoopPolicy) IngestPair(_ context.Context, pair *types.ReadPair) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.TotalPairs++
	p.stats.PairsPersisted++
	p.stats.BasesPersisted += int64(pair.Bases())
	return nil
}

// Flush is a no-op.
func (p *NoopPolicy) Flush(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.FlushCount++
	return nil
}

// Close is a no-op.
func (p *NoopPolicy) Close() error {
	return nil
}

// Stats returns the policy statistics.
func (p *NoopPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats
}

var _ Policy = (*NoopPolicy)(nil)
