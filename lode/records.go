package lode

import (
	"time"

	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/types"
)

// RecordKind discriminator values. record_kind is also the last Hive
// partition key.
const (
	RecordKindRead    = "read"
	RecordKindMetrics = "metrics"
)

// MetricsGenome is the genome partition value for run-level records.
const MetricsGenome = "_run"

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"genome", "day", "run_id", "record_kind"}

// ReadRecord is the storage format for one simulated read.
type ReadRecord struct {
	RecordKind string `json:"record_kind"`

	ReadID    string `json:"read_id"`
	PairIndex int    `json:"pair_index"`
	Mate      int    `json:"mate"`
	Seq       string `json:"seq"`
	Qual      string `json:"qual"` // Phred+33

	// Ground truth
	RefID          string `json:"ref_id"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	Strand         string `json:"strand"`
	Orientation    string `json:"orientation"`
	FragmentStart  int    `json:"fragment_start"`
	FragmentLength int    `json:"fragment_length"`
	Substitutions  int    `json:"substitutions"`
	Insertions     int    `json:"insertions"`
	Deletions      int    `json:"deletions"`
	Seed           int64  `json:"seed"`

	// Partition keys
	Genome string `json:"genome"`
	Day    string `json:"day"`
	RunID  string `json:"run_id"`
}

// toReadRecordMap converts one mate to a map for Lode storage.
// Lode HiveLayout requires records as map[string]any.
func toReadRecordMap(pair *types.ReadPair, mate int, cfg Config) map[string]any {
	r := &pair.Forward
	if mate == 2 {
		r = &pair.Reverse
	}
	return map[string]any{
		"record_kind":     RecordKindRead,
		"read_id":         r.ID,
		"pair_index":      pair.Index,
		"mate":            mate,
		"seq":             string(r.Seq),
		"qual":            encodeQual(r.Qual),
		"ref_id":          r.Origin.RefID,
		"start":           r.Origin.Start,
		"end":             r.Origin.End,
		"strand":          r.Origin.Strand.String(),
		"orientation":     r.Origin.Orientation.String(),
		"fragment_start":  pair.Fragment.Start,
		"fragment_length": pair.Fragment.Length,
		"substitutions":   r.Errors.Substitutions,
		"insertions":      r.Errors.Insertions,
		"deletions":       r.Errors.Deletions,
		"seed":            cfg.Seed,
		"genome":          r.Origin.RefID, // partition key
		"day":             cfg.Day,
		"run_id":          cfg.RunID,
	}
}

// toMetricsRecordMap converts a metrics snapshot to a map for Lode storage.
func toMetricsRecordMap(snap metrics.Snapshot, completedAt time.Time, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind":              RecordKindMetrics,
		"ts":                       completedAt.UTC().Format(time.RFC3339),
		"runs_started_total":       snap.RunsStarted,
		"runs_completed_total":     snap.RunsCompleted,
		"runs_failed_total":        snap.RunsFailed,
		"genomes_simulated_total":  snap.GenomesSimulated,
		"genomes_skipped_total":    snap.GenomesSkipped,
		"pairs_generated_total":    snap.PairsGenerated,
		"bases_generated_total":    snap.BasesGenerated,
		"substitutions_total":      snap.Substitutions,
		"insertions_total":         snap.Insertions,
		"deletions_total":          snap.Deletions,
		"pairs_received_total":     snap.PairsReceived,
		"pairs_persisted_total":    snap.PairsPersisted,
		"bases_persisted_total":    snap.BasesPersisted,
		"flushes_total":            snap.Flushes,
		"policy_errors_total":      snap.PolicyErrors,
		"lode_write_success_total": snap.LodeWriteSuccess,
		"lode_write_failure_total": snap.LodeWriteFailure,
		"pairs_by_genome":          snap.PairsByGenome,
		"policy":                   snap.Policy,
		"model":                    snap.Model,
		"storage_backend":          snap.StorageBackend,
		"genome":                   MetricsGenome, // partition key
		"day":                      cfg.Day,
		"run_id":                   cfg.RunID,
	}
	if snap.FlushTriggers != nil {
		m["flush_triggers"] = snap.FlushTriggers
	}
	if m["policy"] == "" {
		m["policy"] = cfg.Policy
	}
	return m
}

func encodeQual(qual []byte) string {
	b := make([]byte, len(qual))
	for i, q := range qual {
		b[i] = min(q, 93) + 33
	}
	return string(b)
}
