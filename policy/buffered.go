package policy

import (
	"context"
	"errors"
	"sync"

	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/types"
)

// BufferedConfig configures a BufferedPolicy.
type BufferedConfig struct {
	// MaxBufferPairs is the maximum number of pairs to buffer.
	// Zero means no limit (use MaxBufferBytes instead).
	MaxBufferPairs int

	// MaxBufferBytes is the maximum buffer size in bytes (estimated).
	// Zero means no limit (use MaxBufferPairs instead).
	// At least one limit must be set.
	MaxBufferBytes int64

	// Logger is an optional logger for policy observability.
	// If nil, no logging is emitted.
	Logger *log.Logger
}

// DefaultBufferedConfig returns sensible defaults for buffered policy.
func DefaultBufferedConfig() BufferedConfig {
	return BufferedConfig{
		MaxBufferPairs: 10000,
		MaxBufferBytes: 64 * 1024 * 1024, // 64 MB
	}
}

// ErrInvalidConfig is returned when BufferedConfig is invalid.
var ErrInvalidConfig = errors.New("invalid config: at least one of MaxBufferPairs or MaxBufferBytes must be set")

// BufferedPolicy implements bounded buffering with batch writes.
//
//   - Bounded buffer with explicit limits
//   - A full buffer is flushed before the next pair is accepted; reads
//     are never dropped
//   - On flush failure the buffer is kept intact (at-least-once)
type BufferedPolicy struct {
	sink   Sink
	config BufferedConfig
	logger *log.Logger

	mu          sync.Mutex // guards buffer state and stats
	buffer      []*types.ReadPair
	bufferBytes int64
	stats       *statsRecorder

	// flushMu serializes flushes.
	flushMu sync.Mutex
}

// NewBufferedPolicy creates a new buffered policy.
// Returns error if config is invalid.
func NewBufferedPolicy(sink Sink, config BufferedConfig) (*BufferedPolicy, error) {
	if config.MaxBufferPairs <= 0 && config.MaxBufferBytes <= 0 {
		return nil, ErrInvalidConfig
	}

	return &BufferedPolicy{
		sink:   sink,
		config: config,
		logger: config.Logger,
		buffer: make([]*types.ReadPair, 0, min(max(config.MaxBufferPairs, 100), 10000)),
		stats:  newStatsRecorder(),
	}, nil
}

// IngestPair buffers the pair, flushing first if the buffer is full.
// A pair larger than MaxBufferBytes is still accepted into an empty buffer.
func (p *BufferedPolicy) IngestPair(ctx context.Context, pair *types.ReadPair) error {
	size := estimatePairSize(pair)

	p.mu.Lock()
	p.stats.incTotalPairsLocked()
	full := len(p.buffer) > 0 && !p.hasRoom(size)
	p.mu.Unlock()

	if full {
		if err := p.flush(ctx, "buffer_full"); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.buffer = append(p.buffer, pair)
	p.bufferBytes += size
	p.stats.setBufferLocked(len(p.buffer), p.bufferBytes)
	p.mu.Unlock()
	return nil
}

// hasRoom reports whether a pair of the given size fits. Caller must hold mu.
func (p *BufferedPolicy) hasRoom(size int64) bool {
	if p.config.MaxBufferPairs > 0 && len(p.buffer) >= p.config.MaxBufferPairs {
		return false
	}
	if p.config.MaxBufferBytes > 0 && p.bufferBytes+size > p.config.MaxBufferBytes {
		return false
	}
	return true
}

// Flush writes all buffered pairs to the sink.
func (p *BufferedPolicy) Flush(ctx context.Context) error {
	return p.flush(ctx, "explicit")
}

func (p *BufferedPolicy) flush(ctx context.Context, reason string) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	p.mu.Lock()
	p.stats.incFlushLocked()
	pairs := p.buffer
	p.mu.Unlock()

	if len(pairs) == 0 {
		return nil
	}

	if err := p.sink.WritePairs(ctx, pairs); err != nil {
		p.mu.Lock()
		p.stats.incErrorsLocked()
		p.mu.Unlock()
		p.logFlushFailure(reason, len(pairs), err)
		// Keep the buffer intact; prefer duplicates over loss.
		return err
	}

	p.mu.Lock()
	p.stats.incPersistedLocked(int64(len(pairs)), countBases(pairs))
	p.buffer = p.buffer[len(pairs):]
	p.recalculateBufferBytes()
	p.mu.Unlock()
	return nil
}

// recalculateBufferBytes recalculates bufferBytes. Caller must hold mu.
func (p *BufferedPolicy) recalculateBufferBytes() {
	var total int64
	for _, pair := range p.buffer {
		total += estimatePairSize(pair)
	}
	p.bufferBytes = total
	p.stats.setBufferLocked(len(p.buffer), p.bufferBytes)
}

// Close flushes remaining pairs and closes the sink.
// A flush failure is returned after the sink is closed.
func (p *BufferedPolicy) Close() error {
	flushErr := p.Flush(context.Background())
	closeErr := p.sink.Close()
	return errors.Join(flushErr, closeErr)
}

// Stats returns an atomic snapshot of policy statistics.
func (p *BufferedPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats.snapshotLocked(len(p.buffer), p.bufferBytes)
}

func (p *BufferedPolicy) logFlushFailure(reason string, pairs int, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error("flush failed", map[string]any{
		"reason": reason,
		"pairs":  pairs,
		"error":  err.Error(),
		"policy": "buffered",
	})
}

var _ Policy = (*BufferedPolicy)(nil)
