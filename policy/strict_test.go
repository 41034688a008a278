package policy_test

import (
	"errors"
	"testing"

	"github.com/justapithecus/readsim/policy"
)

func TestStrictPolicy_ImmediateWrite(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	if err := pol.IngestPair(t.Context(), makePair(0, 100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sinkStats := sink.Stats()
	if sinkStats.PairsWritten != 1 {
		t.Errorf("expected 1 pair written immediately, got %d", sinkStats.PairsWritten)
	}
	if sinkStats.Batches != 1 {
		t.Errorf("expected 1 batch, got %d", sinkStats.Batches)
	}

	stats := pol.Stats()
	if stats.TotalPairs != 1 || stats.PairsPersisted != 1 {
		t.Errorf("expected TotalPairs=1 PairsPersisted=1, got %+v", stats)
	}
	if stats.BasesPersisted != 200 {
		t.Errorf("expected BasesPersisted=200, got %d", stats.BasesPersisted)
	}
}

func TestStrictPolicy_PreservesOrder(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	for i := range 5 {
		if err := pol.IngestPair(t.Context(), makePair(i, 10)); err != nil {
			t.Fatal(err)
		}
	}
	for i, p := range sink.WrittenPairs {
		if p.Index != i {
			t.Errorf("pair %d has index %d", i, p.Index)
		}
	}
}

func TestStrictPolicy_SinkError(t *testing.T) {
	sink := policy.NewStubSink()
	sink.ErrorOnWrite = errors.New("disk full")
	pol := policy.NewStrictPolicy(sink)

	err := pol.IngestPair(t.Context(), makePair(0, 10))
	if err == nil {
		t.Fatal("expected error from sink")
	}

	stats := pol.Stats()
	if stats.Errors != 1 {
		t.Errorf("expected Errors=1, got %d", stats.Errors)
	}
	if stats.PairsPersisted != 0 {
		t.Errorf("expected PairsPersisted=0, got %d", stats.PairsPersisted)
	}
}

func TestStrictPolicy_FlushAndClose(t *testing.T) {
	sink := policy.NewStubSink()
	pol := policy.NewStrictPolicy(sink)

	if err := pol.Flush(t.Context()); err != nil {
		t.Fatal(err)
	}
	if pol.Stats().FlushCount != 1 {
		t.Errorf("expected FlushCount=1, got %d", pol.Stats().FlushCount)
	}
	if err := pol.Close(); err != nil {
		t.Fatal(err)
	}
	if !sink.Stats().Closed {
		t.Error("expected sink to be closed")
	}
}
