// Package runtime orchestrates a simulation run: it loads genomes and
// abundances, builds the error model, generates every genome through a
// worker pool and commits the pairs to the output policy in genome order.
package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justapithecus/readsim/adapter"
	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/lode"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

// postRunTimeout bounds each best-effort step after generation ends.
const postRunTimeout = 30 * time.Second

// AbundanceFilename is the sidecar file holding the run's abundances.
const AbundanceFilename = "abundance.tsv"

// MetricsWriter persists the run-level metrics snapshot.
type MetricsWriter interface {
	WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error
}

// Config configures a single run.
type Config struct {
	// RunMeta is the run identity, lineage and root seed.
	RunMeta *types.RunMeta
	// GenomePath is the FASTA file of references.
	GenomePath string
	// AbundancePath is the abundance file. Empty generates abundances
	// from Distribution.
	AbundancePath string
	// Distribution names the generated abundance distribution.
	Distribution string
	// TotalReads is the number of reads (both mates) to simulate.
	TotalReads int
	// Coverage, when positive, simulates each genome to a fixed depth
	// instead of sharing out TotalReads.
	Coverage float64
	// Model is the error model kind.
	Model string
	// ModelOptions configures the error model.
	ModelOptions errmodel.Options
	// Parallel is the number of genomes generated concurrently.
	Parallel int
	// StrictLength fails the run on a genome shorter than the read
	// length instead of skipping it.
	StrictLength bool
	// Policy receives every pair. Execute closes it.
	Policy policy.Policy
	// Collector records run metrics. Nil disables metrics.
	Collector *metrics.Collector
	// Adapter, if set, is notified when the run ends.
	Adapter adapter.Adapter
	// MetricsWriter, if set, persists the final metrics snapshot.
	MetricsWriter MetricsWriter
	// FileWriter, if set, receives the abundance table sidecar.
	FileWriter lode.FileWriter
	// Day is the run's partition day.
	Day string
	// StoragePath is the dataset location reported in the event.
	StoragePath string
	// Outputs are the FASTQ paths reported in the event.
	Outputs []string
	// Logger overrides the run logger.
	Logger *log.Logger
}

// RunResult represents the result of a run.
type RunResult struct {
	// RunMeta is the run identity and lineage.
	RunMeta *types.RunMeta
	// Outcome is the run outcome.
	Outcome *types.RunOutcome
	// Duration is the total run duration.
	Duration time.Duration
	// Model is the name of the error model used.
	Model string
	// Plan is the per-genome schedule, nil if inputs failed to load.
	Plan *Plan
	// Skipped lists genomes that produced no pairs because the reference
	// was shorter than the read or the first fragment.
	Skipped []string
	// Truncated lists genomes that stopped early at a fragment longer than
	// the reference. Their pairs up to that point are kept.
	Truncated []string
	// PolicyStats is the policy statistics.
	PolicyStats policy.Stats
	// FlushTriggers counts flushes by trigger, for policies that track them.
	FlushTriggers map[string]int64
}

// RunOrchestrator orchestrates a single run.
type RunOrchestrator struct {
	config    *Config
	logger    *log.Logger
	model     errmodel.Model
	startTime time.Time
}

// NewOrchestrator creates a run orchestrator.
// Returns error if run metadata is invalid or no policy is set.
func NewOrchestrator(config *Config) (*RunOrchestrator, error) {
	if config.RunMeta == nil {
		return nil, errors.New("run metadata must be set")
	}
	if err := config.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if config.Policy == nil {
		return nil, errors.New("policy must be set")
	}
	if config.TotalReads < 0 {
		return nil, fmt.Errorf("total reads must be >= 0, got %d", config.TotalReads)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.RunMeta)
	}

	return &RunOrchestrator{
		config: config,
		logger: logger,
	}, nil
}

// Execute runs the simulation end-to-end. The result is always non-nil
// and carries the outcome; the error is the classified failure (a
// *RunError) or nil on success.
//
// Execution flow:
//  1. Load genomes and abundances
//  2. Build the error model
//  3. Plan pairs per genome
//  4. Generate and commit every genome
//  5. Close the policy
//  6. Publish completion and persist metrics (best effort)
func (r *RunOrchestrator) Execute(ctx context.Context) (*RunResult, error) {
	r.startTime = time.Now()
	cfg := r.config
	cfg.Collector.IncRunStarted()

	r.logger.Info("starting run", map[string]any{
		"genomes":   cfg.GenomePath,
		"abundance": cfg.AbundancePath,
		"model":     cfg.Model,
		"parallel":  max(cfg.Parallel, 1),
	})

	result := &RunResult{RunMeta: cfg.RunMeta, Model: cfg.Model}
	in, runErr := r.prepare(ctx, result)
	if runErr == nil {
		runErr = r.generate(ctx, in, result)
	}

	// Close flushes whatever is still buffered on every termination path.
	if closeErr := cfg.Policy.Close(); closeErr != nil {
		r.logger.Warn("policy close failed", map[string]any{
			"error": closeErr.Error(),
		})
		if runErr == nil {
			runErr = policyError("", closeErr)
		}
	}

	r.finish(result, runErr)
	r.postRun(ctx, result, in)
	if runErr != nil {
		var re *RunError
		if !errors.As(runErr, &re) {
			runErr = &RunError{Kind: Classify(runErr), Err: runErr}
		}
		return result, runErr
	}
	return result, nil
}

// prepare loads inputs, builds the model and fills in result.Plan.
func (r *RunOrchestrator) prepare(ctx context.Context, result *RunResult) (*Inputs, error) {
	cfg := r.config
	in, err := LoadInputs(ctx, InputConfig{
		GenomePath:    cfg.GenomePath,
		AbundancePath: cfg.AbundancePath,
		Distribution:  cfg.Distribution,
		Seed:          cfg.RunMeta.Seed,
	}, r.logger)
	if err != nil {
		return nil, err
	}

	model, err := errmodel.New(cfg.Model, cfg.ModelOptions)
	if err != nil {
		return in, modelError(err)
	}
	result.Model = model.Name()

	result.Plan = BuildPlan(in, PlanConfig{
		TotalReads: cfg.TotalReads,
		Coverage:   cfg.Coverage,
		ReadLength: model.ReadLength(),
	})
	for _, e := range result.Plan.Entries {
		r.logger.Debug("planned genome", map[string]any{
			"genome":    e.Genome,
			"length":    e.Length,
			"abundance": e.Abundance,
			"pairs":     e.Pairs,
			"coverage":  e.Coverage,
		})
	}
	r.model = model
	return in, nil
}

// generate runs the worker pool over the plan.
func (r *RunOrchestrator) generate(ctx context.Context, in *Inputs, result *RunResult) error {
	cfg := r.config
	p := &pool{
		parallel:     cfg.Parallel,
		seed:         cfg.RunMeta.Seed,
		model:        r.model,
		policy:       cfg.Policy,
		collector:    cfg.Collector,
		logger:       r.logger,
		strictLength: cfg.StrictLength,
	}
	err := p.run(ctx, newJobs(in, result.Plan))
	result.Skipped = p.skipped
	result.Truncated = p.truncated
	return err
}

// finish fills in the outcome and absorbs policy stats into metrics.
func (r *RunOrchestrator) finish(result *RunResult, runErr error) {
	cfg := r.config
	result.Outcome = outcomeFor(runErr)
	result.Duration = time.Since(r.startTime)
	result.PolicyStats = cfg.Policy.Stats()
	result.FlushTriggers = flushTriggers(cfg.Policy)

	stats := result.PolicyStats
	cfg.Collector.AbsorbPolicyStats(metrics.PolicyStats{
		TotalPairs:     stats.TotalPairs,
		PairsPersisted: stats.PairsPersisted,
		BasesPersisted: stats.BasesPersisted,
		FlushCount:     stats.FlushCount,
		Errors:         stats.Errors,
	}, result.FlushTriggers)

	if result.Outcome.Status == types.OutcomeSuccess {
		cfg.Collector.IncRunCompleted()
		r.logger.Info("run completed", map[string]any{
			"outcome":   result.Outcome.Status,
			"pairs":     stats.PairsPersisted,
			"skipped":   len(result.Skipped),
			"truncated": len(result.Truncated),
			"duration":  result.Duration.String(),
		})
		return
	}

	cfg.Collector.IncRunFailed()
	r.logger.Error("run failed", map[string]any{
		"outcome":  result.Outcome.Status,
		"genome":   result.Outcome.Genome,
		"error":    result.Outcome.Message,
		"duration": result.Duration.String(),
	})
}

// postRun writes the abundance sidecar, publishes the completion event and
// persists metrics. Each step is best effort and logged on failure.
func (r *RunOrchestrator) postRun(ctx context.Context, result *RunResult, in *Inputs) {
	cfg := r.config
	ctx = context.WithoutCancel(ctx)

	if cfg.FileWriter != nil && in != nil {
		var buf bytes.Buffer
		if err := in.Abundance.Write(&buf); err == nil {
			r.bestEffort(ctx, "abundance sidecar write", func(ctx context.Context) error {
				return cfg.FileWriter.PutFile(ctx, AbundanceFilename, "text/tab-separated-values", buf.Bytes())
			})
		}
	}

	if cfg.Adapter != nil {
		event := r.completionEvent(result)
		r.bestEffort(ctx, "adapter publish", func(ctx context.Context) error {
			return cfg.Adapter.Publish(ctx, event)
		})
	}

	if cfg.MetricsWriter != nil {
		snap := cfg.Collector.Snapshot()
		r.bestEffort(ctx, "metrics write", func(ctx context.Context) error {
			return cfg.MetricsWriter.WriteMetrics(ctx, snap, time.Now())
		})
	}
}

func (r *RunOrchestrator) bestEffort(ctx context.Context, step string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, postRunTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		r.logger.Warn(step+" failed (best effort)", map[string]any{
			"error": err.Error(),
		})
	}
}

func (r *RunOrchestrator) completionEvent(result *RunResult) *adapter.RunCompletedEvent {
	cfg := r.config
	meta := result.RunMeta
	event := &adapter.RunCompletedEvent{
		EventType:     adapter.EventTypeRunCompleted,
		SchemaVersion: adapter.SchemaVersion,
		Version:       types.Version,
		RunID:         meta.RunID,
		Attempt:       meta.Attempt,
		Seed:          meta.Seed,
		Day:           cfg.Day,
		Outcome:       string(result.Outcome.Status),
		Model:         result.Model,
		Pairs:         result.PolicyStats.PairsPersisted,
		Bases:         result.PolicyStats.BasesPersisted,
		Outputs:       cfg.Outputs,
		StoragePath:   cfg.StoragePath,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DurationMs:    result.Duration.Milliseconds(),
	}
	if meta.ParentRunID != nil {
		event.ParentRunID = *meta.ParentRunID
	}
	if result.Plan != nil {
		event.Genomes = len(result.Plan.Entries) - len(result.Skipped)
	}
	return event
}

// flushTriggers returns per-trigger flush counts for policies that track
// them, nil otherwise.
func flushTriggers(p policy.Policy) map[string]int64 {
	tracker, ok := p.(interface {
		FlushTriggerStats() map[policy.FlushTrigger]int64
	})
	if !ok {
		return nil
	}
	out := make(map[string]int64)
	for trigger, n := range tracker.FlushTriggerStats() {
		out[string(trigger)] = n
	}
	return out
}
