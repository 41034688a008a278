// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single simulation run. It is a
// leaf package with no internal dependencies. Output policy metrics are
// absorbed from policy.Stats at run completion rather than recorded live,
// avoiding double-counting.
package metrics

import (
	"maps"
	"sync"
)

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Run lifecycle
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64

	// Genomes
	GenomesSimulated int64
	GenomesSkipped   int64

	// Generation
	PairsGenerated int64
	BasesGenerated int64
	Substitutions  int64
	Insertions     int64
	Deletions      int64
	PairsByGenome  map[string]int64

	// Output (absorbed from policy.Stats at run completion)
	PairsReceived  int64
	PairsPersisted int64
	BasesPersisted int64
	Flushes        int64
	PolicyErrors   int64
	FlushTriggers  map[string]int64

	// Lode / Storage
	LodeWriteSuccess int64
	LodeWriteFailure int64

	// Dimensions (informational, set at construction)
	Policy         string
	Model          string
	StorageBackend string
	RunID          string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	runsStarted   int64
	runsCompleted int64
	runsFailed    int64

	genomesSimulated int64
	genomesSkipped   int64

	pairsGenerated int64
	basesGenerated int64
	substitutions  int64
	insertions     int64
	deletions      int64
	pairsByGenome  map[string]int64

	// Set once via AbsorbPolicyStats
	pairsReceived  int64
	pairsPersisted int64
	basesPersisted int64
	flushes        int64
	policyErrors   int64
	flushTriggers  map[string]int64

	lodeWriteSuccess int64
	lodeWriteFailure int64

	policy         string
	model          string
	storageBackend string
	runID          string
}

// NewCollector creates a Collector with dimension labels.
// storageBackend is empty when no dataset is configured.
func NewCollector(policy, model, storageBackend, runID string) *Collector {
	return &Collector{
		pairsByGenome:  make(map[string]int64),
		policy:         policy,
		model:          model,
		storageBackend: storageBackend,
		runID:          runID,
	}
}

// --- Run lifecycle ---

// IncRunStarted records a run start.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsStarted++
	c.mu.Unlock()
}

// IncRunCompleted records a successful run completion.
func (c *Collector) IncRunCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsCompleted++
	c.mu.Unlock()
}

// IncRunFailed records a run that ended with a non-success outcome.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsFailed++
	c.mu.Unlock()
}

// --- Genomes ---

// IncGenomeSimulated records a genome whose reads were all committed.
func (c *Collector) IncGenomeSimulated() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.genomesSimulated++
	c.mu.Unlock()
}

// IncGenomeSkipped records a genome that produced no reads.
func (c *Collector) IncGenomeSkipped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.genomesSkipped++
	c.mu.Unlock()
}

// --- Generation ---

// AddPairs records generated pairs and bases for a genome.
func (c *Collector) AddPairs(genome string, pairs, bases int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pairsGenerated += pairs
	c.basesGenerated += bases
	c.pairsByGenome[genome] += pairs
	c.mu.Unlock()
}

// AddErrors records injected sequencing errors.
func (c *Collector) AddErrors(substitutions, insertions, deletions int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.substitutions += substitutions
	c.insertions += insertions
	c.deletions += deletions
	c.mu.Unlock()
}

// --- Lode / Storage ---
// Lode counters are per-call, not per-record. A single WritePairs call with
// N pairs counts as 1 success.

// IncLodeWriteSuccess records a successful Lode write operation (per-call).
func (c *Collector) IncLodeWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lodeWriteSuccess++
	c.mu.Unlock()
}

// IncLodeWriteFailure records a failed Lode write operation (per-call).
func (c *Collector) IncLodeWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lodeWriteFailure++
	c.mu.Unlock()
}

// --- Output (absorbed from policy.Stats) ---

// PolicyStats mirrors the policy counters the collector absorbs.
// Declared here so metrics stays free of a dependency on policy.
type PolicyStats struct {
	TotalPairs     int64
	PairsPersisted int64
	BasesPersisted int64
	FlushCount     int64
	Errors         int64
}

// AbsorbPolicyStats copies output counters into the collector. Called once
// after the policy is closed. flushTriggers may be nil for policies that do
// not track trigger reasons.
func (c *Collector) AbsorbPolicyStats(s PolicyStats, flushTriggers map[string]int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pairsReceived = s.TotalPairs
	c.pairsPersisted = s.PairsPersisted
	c.basesPersisted = s.BasesPersisted
	c.flushes = s.FlushCount
	c.policyErrors = s.Errors
	if flushTriggers != nil {
		c.flushTriggers = maps.Clone(flushTriggers)
	}
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RunsStarted:   c.runsStarted,
		RunsCompleted: c.runsCompleted,
		RunsFailed:    c.runsFailed,

		GenomesSimulated: c.genomesSimulated,
		GenomesSkipped:   c.genomesSkipped,

		PairsGenerated: c.pairsGenerated,
		BasesGenerated: c.basesGenerated,
		Substitutions:  c.substitutions,
		Insertions:     c.insertions,
		Deletions:      c.deletions,
		PairsByGenome:  maps.Clone(c.pairsByGenome),

		PairsReceived:  c.pairsReceived,
		PairsPersisted: c.pairsPersisted,
		BasesPersisted: c.basesPersisted,
		Flushes:        c.flushes,
		PolicyErrors:   c.policyErrors,
		FlushTriggers:  maps.Clone(c.flushTriggers),

		LodeWriteSuccess: c.lodeWriteSuccess,
		LodeWriteFailure: c.lodeWriteFailure,

		Policy:         c.policy,
		Model:          c.model,
		StorageBackend: c.storageBackend,
		RunID:          c.runID,
	}
}
