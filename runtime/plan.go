package runtime

import (
	"github.com/justapithecus/readsim/abundance"
)

// PlanEntry is the work scheduled for one genome.
type PlanEntry struct {
	Genome    string  `json:"genome" yaml:"genome"`
	Length    int     `json:"length" yaml:"length"`
	Abundance float64 `json:"abundance" yaml:"abundance"`
	Pairs     int     `json:"pairs" yaml:"pairs"`
	Coverage  float64 `json:"coverage" yaml:"coverage"`
}

// Plan is the per-genome schedule of a run, in genome order.
type Plan struct {
	Entries    []PlanEntry `json:"entries" yaml:"entries"`
	TotalPairs int         `json:"total_pairs" yaml:"total_pairs"`
	ReadLength int         `json:"read_length" yaml:"read_length"`
}

// PlanConfig sizes a run.
type PlanConfig struct {
	// TotalReads is the read count (both mates) shared out by abundance.
	TotalReads int
	// Coverage, when positive, replaces TotalReads with a fixed depth for
	// every genome of non-zero abundance.
	Coverage float64
	// ReadLength is the model's read length.
	ReadLength int
}

// BuildPlan computes pair counts and expected coverage per genome.
// Genomes without abundance are left out.
func BuildPlan(in *Inputs, cfg PlanConfig) *Plan {
	plan := &Plan{ReadLength: cfg.ReadLength}
	for _, g := range in.Genomes {
		ab, ok := in.Abundance[g.ID]
		if !ok {
			continue
		}

		entry := PlanEntry{Genome: g.ID, Length: g.Len(), Abundance: ab}
		switch {
		case cfg.Coverage > 0 && ab > 0:
			entry.Pairs = abundance.PairsForCoverage(cfg.Coverage, g.Len(), cfg.ReadLength)
			entry.Coverage = cfg.Coverage
		case cfg.Coverage <= 0:
			entry.Pairs = abundance.PairsForAbundance(cfg.TotalReads, ab)
			entry.Coverage = abundance.ToCoverage(cfg.TotalReads, ab, cfg.ReadLength, g.Len())
		}

		plan.Entries = append(plan.Entries, entry)
		plan.TotalPairs += entry.Pairs
	}
	return plan
}
