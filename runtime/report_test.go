package runtime

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

func testResult() *RunResult {
	return &RunResult{
		RunMeta:  testRunMeta(),
		Outcome:  &types.RunOutcome{Status: types.OutcomeSuccess, Message: "run completed successfully"},
		Duration: 1500 * time.Millisecond,
		Model:    "basic",
		Plan: &Plan{
			Entries:    []PlanEntry{{Genome: "gA", Length: 2000, Abundance: 1, Pairs: 100, Coverage: 12.5}},
			TotalPairs: 100,
			ReadLength: 125,
		},
		PolicyStats: policy.Stats{TotalPairs: 100, PairsPersisted: 100, BasesPersisted: 25000, FlushCount: 4},
		FlushTriggers: map[string]int64{
			"count": 3,
		},
	}
}

func TestBuildRunReport(t *testing.T) {
	snap := metrics.Snapshot{RunsCompleted: 1, PairsGenerated: 100}
	report := BuildRunReport(testResult(), snap, "streaming", 0)

	if report.RunID != "run-001" || report.Seed != 42 || report.Attempt != 1 {
		t.Errorf("identity = %s/%d/%d", report.RunID, report.Seed, report.Attempt)
	}
	if report.DurationMs != 1500 {
		t.Errorf("duration_ms = %d, want 1500", report.DurationMs)
	}
	if report.Policy.Name != "streaming" || report.Policy.PairsPersisted != 100 || report.Policy.Flushes != 4 {
		t.Errorf("policy = %+v", report.Policy)
	}
	if report.Policy.FlushTriggers["count"] != 3 {
		t.Errorf("flush triggers = %v", report.Policy.FlushTriggers)
	}
	if report.Metrics.PairsGenerated != 100 {
		t.Errorf("metrics pairs generated = %d, want 100", report.Metrics.PairsGenerated)
	}
}

func TestWriteRunReport(t *testing.T) {
	report := BuildRunReport(testResult(), metrics.Snapshot{}, "strict", 0)

	var buf bytes.Buffer
	if err := writeRunReportTo(report, &buf); err != nil {
		t.Fatalf("writeRunReportTo failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	for _, key := range []string{"run_id", "outcome", "exit_code", "plan", "policy", "metrics"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
	if decoded["outcome"] != "success" {
		t.Errorf("outcome = %v, want success", decoded["outcome"])
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteRunReport(report, path); err != nil {
		t.Fatalf("WriteRunReport failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Error("file report differs from writer report")
	}

	if err := WriteRunReport(report, ""); err == nil {
		t.Error("expected error for empty path")
	}
}
