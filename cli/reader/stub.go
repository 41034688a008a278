package reader

import (
	"context"

	"github.com/justapithecus/readsim/errmodel"
)

// StubReader serves real model summaries and fixed metrics, for tests and
// for commands run without a dataset.
type StubReader struct {
	// Metrics is returned by StatsRun. Nil makes StatsRun return Err.
	Metrics *MetricsSnapshot
	// Err is returned by StatsRun when Metrics is nil.
	Err error
	// Reads is returned by TruthReads, filtered by genome.
	Reads []TruthRead
}

// NewStubReader creates a stub reader with a small fixed snapshot.
func NewStubReader() *StubReader {
	return &StubReader{
		Metrics: &MetricsSnapshot{
			Ts:               "2026-01-01T00:00:00Z",
			RunsStarted:      1,
			RunsCompleted:    1,
			GenomesSimulated: 2,
			PairsGenerated:   500,
			BasesGenerated:   125000,
			PairsByGenome:    map[string]int64{"genome_A": 200, "genome_B": 300},
			PairsReceived:    500,
			PairsPersisted:   500,
			BasesPersisted:   125000,
			Flushes:          2,
			Policy:           "strict",
			Model:            "basic",
			StorageBackend:   "fs",
			RunID:            "stub-run-001",
		},
		Reads: []TruthRead{
			{ReadID: "genome_A_0/1", Mate: 1, RefID: "genome_A", Start: 10, End: 135, Strand: "+", FragmentStart: 10, FragmentLength: 400},
			{ReadID: "genome_A_0/2", Mate: 2, RefID: "genome_A", Start: 285, End: 410, Strand: "-", FragmentStart: 10, FragmentLength: 400, Substitutions: 1},
		},
	}
}

var _ Reader = (*StubReader)(nil)

// InspectModel implements Reader.
func (r *StubReader) InspectModel(kind string, opts errmodel.Options) (*ModelView, error) {
	return inspectModel(kind, opts)
}

// StatsRun implements Reader.
func (r *StubReader) StatsRun(_ context.Context, runID, _ string) (*MetricsSnapshot, error) {
	if r.Metrics == nil {
		return nil, r.Err
	}
	snap := *r.Metrics
	if runID != "" {
		snap.RunID = runID
	}
	return &snap, nil
}

// TruthReads implements Reader.
func (r *StubReader) TruthReads(_ context.Context, _, genome string, limit int) ([]TruthRead, error) {
	var out []TruthRead
	for _, tr := range r.Reads {
		if genome != "" && tr.RefID != genome {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, tr)
	}
	return out, nil
}
