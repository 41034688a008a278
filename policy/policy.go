// Package policy controls how generated read pairs reach their sinks.
package policy

import (
	"context"
	"sync"

	"github.com/justapithecus/readsim/types"
)

// Policy defines the output policy interface.
// Policies control buffering and flush timing. No policy drops reads:
// anything that cannot be persisted fails the run.
type Policy interface {
	// IngestPair accepts one generated pair.
	// Returns error on sink failure (terminates run).
	IngestPair(ctx context.Context, pair *types.ReadPair) error

	// Flush writes any buffered pairs.
	// Called after each genome and at run end.
	Flush(ctx context.Context) error

	// Close flushes and releases sink resources.
	Close() error

	// Stats returns an atomic snapshot of policy metrics.
	Stats() Stats
}

// Stats represents policy observability metrics.
type Stats struct {
	// TotalPairs is the total number of pairs received.
	TotalPairs int64
	// PairsPersisted is the number of pairs written to the sink.
	PairsPersisted int64
	// BasesPersisted is the number of bases (both mates) written.
	BasesPersisted int64
	// BufferPairs is the current number of buffered pairs.
	BufferPairs int64
	// BufferSize is the current buffer size in bytes (estimated).
	BufferSize int64
	// FlushCount is the number of flush operations.
	FlushCount int64
	// Errors is the count of sink errors encountered.
	Errors int64
}

// estimatePairSize returns an estimated in-memory size for a pair: sequence
// and quality bytes for both mates plus ids and fixed overhead.
func estimatePairSize(pair *types.ReadPair) int64 {
	const overhead = 160
	return int64(overhead +
		2*pair.Bases() +
		len(pair.Forward.ID) + len(pair.Reverse.ID))
}

func countBases(pairs []*types.ReadPair) int64 {
	var n int64
	for _, p := range pairs {
		n += int64(p.Bases())
	}
	return n
}

// statsRecorder is an internal helper for thread-safe stats management.
//
// Lock discipline:
//   - StrictPolicy uses the locking methods (incTotalPairs, snapshot, etc.)
//   - BufferedPolicy and StreamingPolicy use the Locked methods only while
//     holding their own mu, keeping buffer state and counters consistent.
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{}
}

func (r *statsRecorder) incTotalPairs() {
	r.mu.Lock()
	r.stats.TotalPairs++
	r.mu.Unlock()
}

func (r *statsRecorder) incPersisted(pairs, bases int64) {
	r.mu.Lock()
	r.stats.PairsPersisted += pairs
	r.stats.BasesPersisted += bases
	r.mu.Unlock()
}

func (r *statsRecorder) incErrors() {
	r.mu.Lock()
	r.stats.Errors++
	r.mu.Unlock()
}

func (r *statsRecorder) incFlush() {
	r.mu.Lock()
	r.stats.FlushCount++
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// --- Locked methods ---
// Caller must hold the owning policy's mu.

func (r *statsRecorder) incTotalPairsLocked() {
	r.stats.TotalPairs++
}

func (r *statsRecorder) incPersistedLocked(pairs, bases int64) {
	r.stats.PairsPersisted += pairs
	r.stats.BasesPersisted += bases
}

func (r *statsRecorder) incErrorsLocked() {
	r.stats.Errors++
}

func (r *statsRecorder) incFlushLocked() {
	r.stats.FlushCount++
}

func (r *statsRecorder) setBufferLocked(pairs int, bytes int64) {
	r.stats.BufferPairs = int64(pairs)
	r.stats.BufferSize = bytes
}

// snapshotLocked returns an atomic snapshot of stats with current buffer
// state. Caller must hold the owning policy's mu.
func (r *statsRecorder) snapshotLocked(pairs int, bytes int64) Stats {
	s := r.stats
	s.BufferPairs = int64(pairs)
	s.BufferSize = bytes
	return s
}
