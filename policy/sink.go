package policy

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/justapithecus/readsim/iox"
	"github.com/justapithecus/readsim/types"
)

// Sink abstracts persistence for policies.
// Implementations may write FASTQ files, a dataset, or stub for testing.
//
// Writes are batch-oriented to support both strict (batch of 1) and
// buffered policies.
type Sink interface {
	// WritePairs persists a batch of pairs.
	// Must preserve ordering within the batch.
	WritePairs(ctx context.Context, pairs []*types.ReadPair) error

	// Close releases any resources held by the sink.
	Close() error
}

// MultiSink writes every batch to each sink in order.
// The first failing sink aborts the batch.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks. Nil sinks are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Len returns the number of wrapped sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }

// WritePairs writes the batch to each sink in order.
func (m *MultiSink) WritePairs(ctx context.Context, pairs []*types.ReadPair) error {
	for i, s := range m.sinks {
		if err := s.WritePairs(ctx, pairs); err != nil {
			return fmt.Errorf("sink %d: %w", i, err)
		}
	}
	return nil
}

// Close closes every sink and returns the joined errors.
func (m *MultiSink) Close() error {
	closers := make([]io.Closer, len(m.sinks))
	for i, s := range m.sinks {
		closers[i] = s
	}
	return iox.CloseAll(closers...)
}

// StubSink is a test sink that accepts writes without persisting.
type StubSink struct {
	mu sync.Mutex

	// PairsWritten is the total count of pairs written.
	PairsWritten int64
	// Batches is the number of WritePairs calls.
	Batches int64
	// Closed indicates whether Close was called.
	Closed bool

	// WrittenPairs stores all written pairs for inspection.
	WrittenPairs []*types.ReadPair
	// BatchSizes records the size of each batch in write order.
	BatchSizes []int

	// ErrorOnWrite, if non-nil, is returned by WritePairs.
	ErrorOnWrite error
	// ErrorOnClose, if non-nil, is returned by Close.
	ErrorOnClose error
}

// NewStubSink creates a new stub sink for testing.
func NewStubSink() *StubSink {
	return &StubSink{}
}

// WritePairs records the pairs without persisting.
func (s *StubSink) WritePairs(_ context.Context, pairs []*types.ReadPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrorOnWrite != nil {
		return s.ErrorOnWrite
	}

	s.Batches++
	s.PairsWritten += int64(len(pairs))
	s.WrittenPairs = append(s.WrittenPairs, pairs...)
	s.BatchSizes = append(s.BatchSizes, len(pairs))
	return nil
}

// SetError changes ErrorOnWrite under the sink lock.
func (s *StubSink) SetError(err error) {
	s.mu.Lock()
	s.ErrorOnWrite = err
	s.mu.Unlock()
}

// Close marks the sink as closed.
func (s *StubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Closed = true
	return s.ErrorOnClose
}

// Stats returns a snapshot of sink statistics.
func (s *StubSink) Stats() StubSinkStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StubSinkStats{
		PairsWritten: s.PairsWritten,
		Batches:      s.Batches,
		Closed:       s.Closed,
	}
}

// StubSinkStats is a snapshot of StubSink statistics.
type StubSinkStats struct {
	PairsWritten int64
	Batches      int64
	Closed       bool
}
