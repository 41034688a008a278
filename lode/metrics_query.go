package lode

import (
	"context"
	"errors"
	"fmt"

	"github.com/justapithecus/lode/lode"
)

// ErrNoMetricsFound is returned when no metrics records exist in the dataset.
var ErrNoMetricsFound = errors.New("no metrics records found")

// QueryLatestMetrics finds and reads the most recent metrics record.
// Filters by runID and day if non-empty.
// Returns the raw record map or ErrNoMetricsFound if none exist.
func QueryLatestMetrics(ctx context.Context, ds lode.Dataset, runID, day string) (map[string]any, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, Wrap(OpRead, fmt.Sprintf("%s/snapshots", ds.ID()), err)
	}

	// Snapshots are ordered by creation time; walk latest first.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]

		if !isKindSnapshot(snap, RecordKindMetrics) ||
			!snapshotMatchesFilter(snap, "run_id", runID) ||
			!snapshotMatchesFilter(snap, "day", day) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, Wrap(OpRead, fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID), err)
		}

		// Manifest path filtering is a coarse pre-filter; record fields
		// are authoritative.
		for _, item := range data {
			record, ok := item.(map[string]any)
			if !ok || record["record_kind"] != RecordKindMetrics {
				continue
			}
			if runID != "" && toString(record["run_id"]) != runID {
				continue
			}
			if day != "" && toString(record["day"]) != day {
				continue
			}
			return record, nil
		}
	}

	return nil, ErrNoMetricsFound
}

// QueryReads returns the read records of a run, optionally limited to one
// genome, in write order. Duplicate read ids (from retried batches) are
// reported once.
func QueryReads(ctx context.Context, ds lode.Dataset, runID, genome string) ([]map[string]any, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, Wrap(OpRead, fmt.Sprintf("%s/snapshots", ds.ID()), err)
	}

	seen := make(map[string]struct{})
	var out []map[string]any
	for _, snap := range snapshots {
		if !isKindSnapshot(snap, RecordKindRead) ||
			!snapshotMatchesFilter(snap, "run_id", runID) ||
			!snapshotMatchesFilter(snap, "genome", genome) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, Wrap(OpRead, fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID), err)
		}
		for _, item := range data {
			record, ok := item.(map[string]any)
			if !ok || record["record_kind"] != RecordKindRead {
				continue
			}
			if runID != "" && toString(record["run_id"]) != runID {
				continue
			}
			if genome != "" && toString(record["genome"]) != genome {
				continue
			}
			key := toString(record["run_id"]) + "\x00" + toString(record["read_id"])
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, record)
		}
	}
	return out, nil
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
