//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// RunMeta contains run identity and lineage metadata.
type RunMeta struct {
	// RunID is the canonical run identifier. Must be globally unique.
	RunID string
	// Seed is the root seed every per-genome random stream derives from.
	Seed int64
	// ParentRunID links re-runs to their predecessor. Nil for initial runs.
	ParentRunID *string
	// Attempt is the attempt number. Starts at 1 for initial runs.
	Attempt int
}

// Validate validates lineage rules:
//   - attempt >= 1
//   - attempt == 1 => parent_run_id must be nil (initial run)
//   - attempt > 1 => parent_run_id must be present (re-run)
func (r *RunMeta) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}

	if r.Attempt < 1 {
		return fmt.Errorf("attempt must be >= 1, got %d", r.Attempt)
	}

	if r.Attempt == 1 && r.ParentRunID != nil {
		return errors.New("initial run (attempt=1) must not have parent_run_id")
	}

	if r.Attempt > 1 && r.ParentRunID == nil {
		return fmt.Errorf("re-run (attempt=%d) must have parent_run_id", r.Attempt)
	}

	return nil
}

// OutcomeStatus represents the final status of a run.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates every requested genome was simulated or skipped.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeInputError indicates genomes or abundances could not be loaded.
	OutcomeInputError OutcomeStatus = "input_error"
	// OutcomeModelError indicates the error model could not be built.
	OutcomeModelError OutcomeStatus = "model_error"
	// OutcomeGenerationError indicates read generation failed for a genome.
	OutcomeGenerationError OutcomeStatus = "generation_error"
	// OutcomePolicyFailure indicates the output policy or a sink failed.
	OutcomePolicyFailure OutcomeStatus = "policy_failure"
)

// RunOutcome represents the final outcome of a run.
type RunOutcome struct {
	// Status is the outcome classification.
	Status OutcomeStatus
	// Message is a human-readable description.
	Message string
	// Genome is the genome being processed when the run failed, if any.
	Genome string
}
