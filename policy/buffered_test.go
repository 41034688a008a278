package policy_test

import (
	"errors"
	"testing"

	"github.com/justapithecus/readsim/policy"
)

func mustNewBufferedPolicy(t *testing.T, sink policy.Sink, config policy.BufferedConfig) *policy.BufferedPolicy {
	t.Helper()
	pol, err := policy.NewBufferedPolicy(sink, config)
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}
	return pol
}

func TestBufferedPolicy_InvalidConfig(t *testing.T) {
	_, err := policy.NewBufferedPolicy(policy.NewStubSink(), policy.BufferedConfig{})
	if !errors.Is(err, policy.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBufferedPolicy_BuffersUntilFlush(t *testing.T) {
	sink := policy.NewStubSink()
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferPairs: 10})

	for i := range 3 {
		if err := pol.IngestPair(t.Context(), makePair(i, 50)); err != nil {
			t.Fatal(err)
		}
	}
	if sink.Stats().PairsWritten != 0 {
		t.Errorf("expected no writes before flush, got %d", sink.Stats().PairsWritten)
	}
	if stats := pol.Stats(); stats.BufferPairs != 3 || stats.BufferSize == 0 {
		t.Errorf("expected 3 buffered pairs, got %+v", stats)
	}

	if err := pol.Flush(t.Context()); err != nil {
		t.Fatal(err)
	}
	if sink.Stats().PairsWritten != 3 || sink.Stats().Batches != 1 {
		t.Errorf("expected one batch of 3, got %+v", sink.Stats())
	}
	if stats := pol.Stats(); stats.BufferPairs != 0 || stats.BufferSize != 0 || stats.PairsPersisted != 3 {
		t.Errorf("unexpected stats after flush: %+v", stats)
	}
}

func TestBufferedPolicy_FullBufferFlushesNeverDrops(t *testing.T) {
	sink := policy.NewStubSink()
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferPairs: 4})

	for i := range 10 {
		if err := pol.IngestPair(t.Context(), makePair(i, 20)); err != nil {
			t.Fatal(err)
		}
	}
	if err := pol.Close(); err != nil {
		t.Fatal(err)
	}

	if got := sink.BatchSizes; len(got) != 3 || got[0] != 4 || got[1] != 4 || got[2] != 2 {
		t.Errorf("batch sizes = %v, want [4 4 2]", got)
	}
	for i, p := range sink.WrittenPairs {
		if p.Index != i {
			t.Fatalf("pair %d has index %d", i, p.Index)
		}
	}
	if stats := pol.Stats(); stats.TotalPairs != 10 || stats.PairsPersisted != 10 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestBufferedPolicy_ByteLimit(t *testing.T) {
	sink := policy.NewStubSink()
	// Each 100-base pair is estimated well above 400 bytes.
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferBytes: 1000})

	for i := range 5 {
		if err := pol.IngestPair(t.Context(), makePair(i, 100)); err != nil {
			t.Fatal(err)
		}
	}
	if sink.Stats().PairsWritten == 0 {
		t.Error("expected byte limit to force a flush")
	}
	if pol.Stats().BufferSize > 1000 {
		t.Errorf("buffer size %d exceeds limit", pol.Stats().BufferSize)
	}
}

func TestBufferedPolicy_OversizedPairAccepted(t *testing.T) {
	sink := policy.NewStubSink()
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferBytes: 10})

	if err := pol.IngestPair(t.Context(), makePair(0, 1000)); err != nil {
		t.Fatalf("oversized pair into empty buffer should be accepted: %v", err)
	}
	if err := pol.Flush(t.Context()); err != nil {
		t.Fatal(err)
	}
	if sink.Stats().PairsWritten != 1 {
		t.Errorf("expected 1 pair written, got %d", sink.Stats().PairsWritten)
	}
}

func TestBufferedPolicy_FlushFailureKeepsBuffer(t *testing.T) {
	sink := policy.NewStubSink()
	sink.SetError(errors.New("throttled"))
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferPairs: 100})

	for i := range 3 {
		_ = pol.IngestPair(t.Context(), makePair(i, 10))
	}
	if err := pol.Flush(t.Context()); err == nil {
		t.Fatal("expected flush error")
	}
	if stats := pol.Stats(); stats.BufferPairs != 3 || stats.Errors != 1 {
		t.Errorf("expected buffer kept after failure, got %+v", stats)
	}

	sink.SetError(nil)
	if err := pol.Flush(t.Context()); err != nil {
		t.Fatalf("retry flush failed: %v", err)
	}
	if sink.Stats().PairsWritten != 3 {
		t.Errorf("expected 3 pairs after retry, got %d", sink.Stats().PairsWritten)
	}
}

func TestBufferedPolicy_FullBufferFlushErrorFailsIngest(t *testing.T) {
	sink := policy.NewStubSink()
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferPairs: 2})
	_ = pol.IngestPair(t.Context(), makePair(0, 10))
	_ = pol.IngestPair(t.Context(), makePair(1, 10))

	sink.SetError(errors.New("denied"))
	if err := pol.IngestPair(t.Context(), makePair(2, 10)); err == nil {
		t.Error("expected ingest to fail when the forced flush fails")
	}
}

func TestBufferedPolicy_CloseReportsFlushError(t *testing.T) {
	sink := policy.NewStubSink()
	pol := mustNewBufferedPolicy(t, sink, policy.BufferedConfig{MaxBufferPairs: 10})
	_ = pol.IngestPair(t.Context(), makePair(0, 10))

	boom := errors.New("boom")
	sink.SetError(boom)
	if err := pol.Close(); !errors.Is(err, boom) {
		t.Errorf("Close() error = %v, want boom", err)
	}
	if !sink.Stats().Closed {
		t.Error("expected sink closed even after flush failure")
	}
}
