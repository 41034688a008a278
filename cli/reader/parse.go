package reader

import "errors"

// ParseMetricsRecord converts a Lode record (map[string]any) to a MetricsSnapshot.
// Handles both int64 (direct writes) and float64 (JSON round-trips) for numeric fields.
func ParseMetricsRecord(record map[string]any) (*MetricsSnapshot, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}

	snap := &MetricsSnapshot{
		Ts: toString(record["ts"]),

		RunsStarted:   toInt64(record["runs_started_total"]),
		RunsCompleted: toInt64(record["runs_completed_total"]),
		RunsFailed:    toInt64(record["runs_failed_total"]),

		GenomesSimulated: toInt64(record["genomes_simulated_total"]),
		GenomesSkipped:   toInt64(record["genomes_skipped_total"]),
		PairsGenerated:   toInt64(record["pairs_generated_total"]),
		BasesGenerated:   toInt64(record["bases_generated_total"]),
		Substitutions:    toInt64(record["substitutions_total"]),
		Insertions:       toInt64(record["insertions_total"]),
		Deletions:        toInt64(record["deletions_total"]),
		PairsByGenome:    toCountMap(record["pairs_by_genome"]),

		PairsReceived:  toInt64(record["pairs_received_total"]),
		PairsPersisted: toInt64(record["pairs_persisted_total"]),
		BasesPersisted: toInt64(record["bases_persisted_total"]),
		Flushes:        toInt64(record["flushes_total"]),
		PolicyErrors:   toInt64(record["policy_errors_total"]),
		FlushTriggers:  toCountMap(record["flush_triggers"]),

		LodeWriteSuccess: toInt64(record["lode_write_success_total"]),
		LodeWriteFailure: toInt64(record["lode_write_failure_total"]),

		Policy:         toString(record["policy"]),
		Model:          toString(record["model"]),
		StorageBackend: toString(record["storage_backend"]),
		RunID:          toString(record["run_id"]),
	}

	// The write path always populates these; missing values mean a
	// malformed record.
	if snap.Ts == "" {
		return nil, errors.New("metrics record missing required field: ts")
	}
	if snap.RunID == "" {
		return nil, errors.New("metrics record missing required field: run_id")
	}
	if snap.Policy == "" {
		return nil, errors.New("metrics record missing required field: policy")
	}

	return snap, nil
}

// toInt64 converts a value to int64, handling float64 from JSON and int64 from direct writes.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// toCountMap converts a per-key counter from Lode record format.
// Handles both map[string]int64 (direct) and map[string]any (JSON round-trip).
func toCountMap(v any) map[string]int64 {
	switch m := v.(type) {
	case map[string]int64:
		return m
	case map[string]any:
		result := make(map[string]int64, len(m))
		for k, val := range m {
			result[k] = toInt64(val)
		}
		return result
	default:
		return nil
	}
}

// ParseReadRecord extracts the ground truth from a Lode read record.
func ParseReadRecord(record map[string]any) (*TruthRead, error) {
	id := toString(record["read_id"])
	if id == "" {
		return nil, errors.New("read record missing read_id")
	}
	return &TruthRead{
		ReadID:         id,
		Mate:           toInt64(record["mate"]),
		RefID:          toString(record["ref_id"]),
		Start:          toInt64(record["start"]),
		End:            toInt64(record["end"]),
		Strand:         toString(record["strand"]),
		FragmentStart:  toInt64(record["fragment_start"]),
		FragmentLength: toInt64(record["fragment_length"]),
		Substitutions:  toInt64(record["substitutions"]),
		Insertions:     toInt64(record["insertions"]),
		Deletions:      toInt64(record["deletions"]),
	}, nil
}
