package runtime

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

type testGenome struct {
	id     string
	length int
}

// writeGenomes writes a FASTA file of pseudo-random sequences.
func writeGenomes(t *testing.T, genomes ...testGenome) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	var b strings.Builder
	for _, g := range genomes {
		fmt.Fprintf(&b, ">%s test genome\n", g.id)
		for i := range g.length {
			b.WriteByte("ACGT"[rng.IntN(4)])
			if i%70 == 69 {
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "genomes.fasta")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write genomes: %v", err)
	}
	return path
}

func writeAbundance(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abundance.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write abundance: %v", err)
	}
	return path
}

func testRunMeta() *types.RunMeta {
	return &types.RunMeta{RunID: "run-001", Seed: 42, Attempt: 1}
}

// testConfig returns a run over genomes with a strict policy on sink.
func testConfig(genomePath, abundancePath string, sink *policy.StubSink) *Config {
	return &Config{
		RunMeta:       testRunMeta(),
		GenomePath:    genomePath,
		AbundancePath: abundancePath,
		TotalReads:    200,
		Model:         "basic",
		Parallel:      1,
		Policy:        policy.NewStrictPolicy(sink),
		Collector:     metrics.NewCollector("strict", "basic", "", "run-001"),
		Logger:        log.NewNop(),
	}
}

func mustExecute(t *testing.T, cfg *Config) (*RunResult, error) {
	t.Helper()
	orch, err := NewOrchestrator(cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	return orch.Execute(t.Context())
}
