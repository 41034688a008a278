package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("strict", "basic", "fs", "run-001")

	c.IncRunStarted()
	c.IncRunCompleted()
	c.IncRunFailed()
	c.IncRunFailed()
	c.IncGenomeSimulated()
	c.IncGenomeSimulated()
	c.IncGenomeSkipped()
	c.AddPairs("g1", 10, 2500)
	c.AddPairs("g2", 5, 1250)
	c.AddPairs("g1", 1, 250)
	c.AddErrors(7, 1, 2)
	c.AddErrors(3, 0, 0)
	c.IncLodeWriteSuccess()
	c.IncLodeWriteSuccess()
	c.IncLodeWriteFailure()

	s := c.Snapshot()

	checks := []struct {
		name      string
		got, want int64
	}{
		{"RunsStarted", s.RunsStarted, 1},
		{"RunsCompleted", s.RunsCompleted, 1},
		{"RunsFailed", s.RunsFailed, 2},
		{"GenomesSimulated", s.GenomesSimulated, 2},
		{"GenomesSkipped", s.GenomesSkipped, 1},
		{"PairsGenerated", s.PairsGenerated, 16},
		{"BasesGenerated", s.BasesGenerated, 4000},
		{"Substitutions", s.Substitutions, 10},
		{"Insertions", s.Insertions, 1},
		{"Deletions", s.Deletions, 2},
		{"PairsByGenome[g1]", s.PairsByGenome["g1"], 11},
		{"PairsByGenome[g2]", s.PairsByGenome["g2"], 5},
		{"LodeWriteSuccess", s.LodeWriteSuccess, 2},
		{"LodeWriteFailure", s.LodeWriteFailure, 1},
	}
	for _, ck := range checks {
		if ck.got != ck.want {
			t.Errorf("%s = %d, want %d", ck.name, ck.got, ck.want)
		}
	}
}

func TestCollector_Dimensions(t *testing.T) {
	c := NewCollector("buffered", "cdf", "s3", "run-42")
	s := c.Snapshot()

	if s.Policy != "buffered" {
		t.Errorf("Policy = %q, want %q", s.Policy, "buffered")
	}
	if s.Model != "cdf" {
		t.Errorf("Model = %q, want %q", s.Model, "cdf")
	}
	if s.StorageBackend != "s3" {
		t.Errorf("StorageBackend = %q, want %q", s.StorageBackend, "s3")
	}
	if s.RunID != "run-42" {
		t.Errorf("RunID = %q, want %q", s.RunID, "run-42")
	}
}

func TestCollector_AbsorbPolicyStats(t *testing.T) {
	c := NewCollector("strict", "basic", "", "run-001")
	c.AbsorbPolicyStats(PolicyStats{TotalPairs: 100, PairsPersisted: 98, BasesPersisted: 49000, FlushCount: 4, Errors: 1}, nil)

	s := c.Snapshot()
	if s.PairsReceived != 100 || s.PairsPersisted != 98 || s.BasesPersisted != 49000 {
		t.Errorf("unexpected pair counters: %+v", s)
	}
	if s.Flushes != 4 || s.PolicyErrors != 1 {
		t.Errorf("Flushes/PolicyErrors = %d/%d, want 4/1", s.Flushes, s.PolicyErrors)
	}
	if s.FlushTriggers != nil {
		t.Errorf("FlushTriggers should be nil when nil passed, got %v", s.FlushTriggers)
	}
}

func TestCollector_AbsorbPolicyStats_FlushTriggersIsolated(t *testing.T) {
	c := NewCollector("streaming", "basic", "", "run-001")

	triggers := map[string]int64{"count": 3, "interval": 7, "termination": 1}
	c.AbsorbPolicyStats(PolicyStats{TotalPairs: 10, PairsPersisted: 10}, triggers)

	triggers["count"] = 999
	s := c.Snapshot()
	if s.FlushTriggers["count"] != 3 {
		t.Errorf("FlushTriggers[count] = %d, want 3 (should be isolated)", s.FlushTriggers["count"])
	}

	s.FlushTriggers["interval"] = 0
	if c.Snapshot().FlushTriggers["interval"] != 7 {
		t.Error("collector should be isolated from snapshot mutation")
	}
}

func TestCollector_SnapshotImmutability(t *testing.T) {
	c := NewCollector("strict", "basic", "fs", "run-001")
	c.IncRunStarted()
	c.AddPairs("g", 1, 10)

	s1 := c.Snapshot()

	c.IncRunCompleted()
	c.AddPairs("g", 2, 20)
	s1.PairsByGenome["injected"] = 1

	if s1.RunsCompleted != 0 {
		t.Errorf("s1.RunsCompleted = %d, want 0 (snapshot should be frozen)", s1.RunsCompleted)
	}
	if s1.PairsByGenome["g"] != 1 {
		t.Errorf("s1.PairsByGenome[g] = %d, want 1", s1.PairsByGenome["g"])
	}

	s2 := c.Snapshot()
	if s2.PairsByGenome["g"] != 3 {
		t.Errorf("s2.PairsByGenome[g] = %d, want 3", s2.PairsByGenome["g"])
	}
	if _, ok := s2.PairsByGenome["injected"]; ok {
		t.Error("collector should not see keys added to a snapshot")
	}
}

func TestCollector_NilReceiverSafety(t *testing.T) {
	var c *Collector

	c.IncRunStarted()
	c.IncRunCompleted()
	c.IncRunFailed()
	c.IncGenomeSimulated()
	c.IncGenomeSkipped()
	c.AddPairs("g", 1, 1)
	c.AddErrors(1, 1, 1)
	c.IncLodeWriteSuccess()
	c.IncLodeWriteFailure()
	c.AbsorbPolicyStats(PolicyStats{TotalPairs: 1}, map[string]int64{"count": 1})

	s := c.Snapshot()
	if s.RunsStarted != 0 || s.PairsByGenome != nil {
		t.Errorf("nil collector snapshot should be zero, got %+v", s)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	c := NewCollector("strict", "basic", "fs", "run-001")
	const goroutines = 10
	const iterations = 1000

	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range iterations {
				c.AddPairs("g", 1, 2)
				c.AddErrors(1, 0, 0)
				c.IncLodeWriteSuccess()
			}
		})
	}
	wg.Wait()

	s := c.Snapshot()
	want := int64(goroutines * iterations)
	if s.PairsGenerated != want || s.PairsByGenome["g"] != want {
		t.Errorf("PairsGenerated = %d, want %d", s.PairsGenerated, want)
	}
	if s.Substitutions != want {
		t.Errorf("Substitutions = %d, want %d", s.Substitutions, want)
	}
	if s.LodeWriteSuccess != want {
		t.Errorf("LodeWriteSuccess = %d, want %d", s.LodeWriteSuccess, want)
	}
}
