// Package reader provides the read-side data access layer for the readsim
// CLI.
//
// Read-only commands (model inspect, stats) go through this package so
// they never touch runtime internals.
package reader

// ModelView is the payload of model inspect.
type ModelView struct {
	Name               string    `json:"name" yaml:"name"`
	ReadLength         int       `json:"read_length" yaml:"read_length"`
	InsertMean         float64   `json:"insert_mean" yaml:"insert_mean"`
	InsertSD           float64   `json:"insert_sd" yaml:"insert_sd"`
	MeanQualityForward float64   `json:"mean_quality_forward" yaml:"mean_quality_forward"`
	MeanQualityReverse float64   `json:"mean_quality_reverse" yaml:"mean_quality_reverse"`
	ExpectedSubsFwd    float64   `json:"expected_substitutions_forward" yaml:"expected_substitutions_forward"`
	ExpectedSubsRev    float64   `json:"expected_substitutions_reverse" yaml:"expected_substitutions_reverse"`
	QualityForward     []float32 `json:"quality_forward" yaml:"quality_forward"`
	QualityReverse     []float32 `json:"quality_reverse" yaml:"quality_reverse"`
}

// MetricsSnapshot is a run's persisted metrics record.
type MetricsSnapshot struct {
	Ts string `json:"ts" yaml:"ts"`

	// Run lifecycle
	RunsStarted   int64 `json:"runs_started" yaml:"runs_started"`
	RunsCompleted int64 `json:"runs_completed" yaml:"runs_completed"`
	RunsFailed    int64 `json:"runs_failed" yaml:"runs_failed"`

	// Generation
	GenomesSimulated int64            `json:"genomes_simulated" yaml:"genomes_simulated"`
	GenomesSkipped   int64            `json:"genomes_skipped" yaml:"genomes_skipped"`
	PairsGenerated   int64            `json:"pairs_generated" yaml:"pairs_generated"`
	BasesGenerated   int64            `json:"bases_generated" yaml:"bases_generated"`
	Substitutions    int64            `json:"substitutions" yaml:"substitutions"`
	Insertions       int64            `json:"insertions" yaml:"insertions"`
	Deletions        int64            `json:"deletions" yaml:"deletions"`
	PairsByGenome    map[string]int64 `json:"pairs_by_genome,omitempty" yaml:"pairs_by_genome,omitempty"`

	// Policy
	PairsReceived  int64            `json:"pairs_received" yaml:"pairs_received"`
	PairsPersisted int64            `json:"pairs_persisted" yaml:"pairs_persisted"`
	BasesPersisted int64            `json:"bases_persisted" yaml:"bases_persisted"`
	Flushes        int64            `json:"flushes" yaml:"flushes"`
	PolicyErrors   int64            `json:"policy_errors" yaml:"policy_errors"`
	FlushTriggers  map[string]int64 `json:"flush_triggers,omitempty" yaml:"flush_triggers,omitempty"`

	// Lode / Storage
	LodeWriteSuccess int64 `json:"lode_write_success" yaml:"lode_write_success"`
	LodeWriteFailure int64 `json:"lode_write_failure" yaml:"lode_write_failure"`

	// Dimensions
	Policy         string `json:"policy" yaml:"policy"`
	Model          string `json:"model" yaml:"model"`
	StorageBackend string `json:"storage_backend" yaml:"storage_backend"`
	RunID          string `json:"run_id" yaml:"run_id"`
}

// TruthRead is the ground truth of one simulated read.
type TruthRead struct {
	ReadID         string `json:"read_id" yaml:"read_id"`
	Mate           int64  `json:"mate" yaml:"mate"`
	RefID          string `json:"ref_id" yaml:"ref_id"`
	Start          int64  `json:"start" yaml:"start"`
	End            int64  `json:"end" yaml:"end"`
	Strand         string `json:"strand" yaml:"strand"`
	FragmentStart  int64  `json:"fragment_start" yaml:"fragment_start"`
	FragmentLength int64  `json:"fragment_length" yaml:"fragment_length"`
	Substitutions  int64  `json:"substitutions" yaml:"substitutions"`
	Insertions     int64  `json:"insertions" yaml:"insertions"`
	Deletions      int64  `json:"deletions" yaml:"deletions"`
}
