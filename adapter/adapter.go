// Package adapter defines the notification boundary for finished runs.
//
// Adapters tell downstream systems (pipelines, evaluation jobs) that a
// simulated dataset is ready. The orchestrator owns adapter lifecycle; users
// provide configuration only.
package adapter

import (
	"context"
	"fmt"
	"time"
)

// EventTypeRunCompleted is the only event type published today.
const EventTypeRunCompleted = "run_completed"

// SchemaVersion is the RunCompletedEvent payload version.
const SchemaVersion = 1

// DefaultBackoff is the delay before the first retry. Each further retry
// doubles it.
const DefaultBackoff = 500 * time.Millisecond

// RunCompletedEvent is the payload published when a run finishes.
type RunCompletedEvent struct {
	EventType     string   `json:"event_type"` // always "run_completed"
	SchemaVersion int      `json:"schema_version"`
	Version       string   `json:"version"`
	RunID         string   `json:"run_id"`
	ParentRunID   string   `json:"parent_run_id,omitempty"`
	Attempt       int      `json:"attempt"`
	Seed          int64    `json:"seed"`
	Day           string   `json:"day"`
	Outcome       string   `json:"outcome"` // success, input_error, etc.
	Model         string   `json:"model"`
	Genomes       int      `json:"genomes"`
	Pairs         int64    `json:"pairs"`
	Bases         int64    `json:"bases"`
	Outputs       []string `json:"outputs,omitempty"` // FASTQ paths
	StoragePath   string   `json:"storage_path,omitempty"`
	Timestamp     string   `json:"timestamp"` // RFC 3339
	DurationMs    int64    `json:"duration_ms"`
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Retry calls fn up to 1+retries times with exponential backoff starting at
// base. It stops early when ctx is done or when permanent reports the error
// as non-retriable. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, base time.Duration, permanent func(error) bool, fn func(context.Context) error) error {
	if base <= 0 {
		base = DefaultBackoff
	}
	attempts := 1 + retries

	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		// Backoff before retries, not before the first attempt
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
