package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/types"
)

// RunReport is the structured JSON report written by --report.
type RunReport struct {
	RunID      string              `json:"run_id"`
	Attempt    int                 `json:"attempt"`
	Seed       int64               `json:"seed"`
	Outcome    types.OutcomeStatus `json:"outcome"`
	Message    string              `json:"message"`
	Genome     string              `json:"genome,omitempty"`
	ExitCode   int                 `json:"exit_code"`
	DurationMs int64               `json:"duration_ms"`
	Model      string              `json:"model"`

	Plan      *Plan             `json:"plan,omitempty"`
	Skipped   []string          `json:"skipped,omitempty"`
	Truncated []string          `json:"truncated,omitempty"`
	Policy    *ReportPolicy     `json:"policy"`
	Metrics   *metrics.Snapshot `json:"metrics"`
}

// ReportPolicy holds policy stats in the report.
type ReportPolicy struct {
	Name           string           `json:"name"`
	PairsReceived  int64            `json:"pairs_received"`
	PairsPersisted int64            `json:"pairs_persisted"`
	BasesPersisted int64            `json:"bases_persisted"`
	Flushes        int64            `json:"flushes"`
	Errors         int64            `json:"errors"`
	FlushTriggers  map[string]int64 `json:"flush_triggers,omitempty"`
}

// BuildRunReport composes a RunReport from a RunResult and metrics snapshot.
// The exitCode is the process exit code that will be returned to the caller.
func BuildRunReport(result *RunResult, snap metrics.Snapshot, policyName string, exitCode int) *RunReport {
	stats := result.PolicyStats
	return &RunReport{
		RunID:      result.RunMeta.RunID,
		Attempt:    result.RunMeta.Attempt,
		Seed:       result.RunMeta.Seed,
		Outcome:    result.Outcome.Status,
		Message:    result.Outcome.Message,
		Genome:     result.Outcome.Genome,
		ExitCode:   exitCode,
		DurationMs: result.Duration.Milliseconds(),
		Model:      result.Model,
		Plan:       result.Plan,
		Skipped:    result.Skipped,
		Truncated:  result.Truncated,
		Policy: &ReportPolicy{
			Name:           policyName,
			PairsReceived:  stats.TotalPairs,
			PairsPersisted: stats.PairsPersisted,
			BasesPersisted: stats.BasesPersisted,
			Flushes:        stats.FlushCount,
			Errors:         stats.Errors,
			FlushTriggers:  result.FlushTriggers,
		},
		Metrics: &snap,
	}
}

// WriteRunReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		if err := writeRunReportTo(report, os.Stderr); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	if err := writeRunReportTo(report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return f.Close()
}

func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
