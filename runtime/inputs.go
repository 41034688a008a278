package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/justapithecus/readsim/abundance"
	"github.com/justapithecus/readsim/fasta"
	"github.com/justapithecus/readsim/generator"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/types"
)

// abundanceStreamKey keys the random stream used for generated abundances.
const abundanceStreamKey = "abundance"

// InputConfig locates the genomes and abundances of a run.
type InputConfig struct {
	// GenomePath is the FASTA file of references ("-" for stdin).
	GenomePath string
	// AbundancePath is the abundance file. Empty means generate one.
	AbundancePath string
	// Distribution names the generated distribution (default uniform).
	Distribution string
	// Seed drives the generated distribution.
	Seed int64
}

// Inputs are the loaded genomes with their normalized abundances.
type Inputs struct {
	// Genomes in file order.
	Genomes []*types.Reference
	// Abundance is normalized to sum to 1 over the simulated genomes.
	Abundance abundance.Table
	// Generated is true when Abundance was drawn rather than read.
	Generated bool
}

// LoadInputs reads genomes and abundances. Genomes absent from the
// abundance table are not simulated; table entries without a genome are
// logged and dropped.
func LoadInputs(ctx context.Context, cfg InputConfig, logger *log.Logger) (*Inputs, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.GenomePath == "" {
		return nil, inputError(errors.New("genome path must not be empty"))
	}

	genomes, err := fasta.ReadAll(ctx, cfg.GenomePath)
	if err != nil {
		return nil, inputError(fmt.Errorf("load genomes: %w", err))
	}
	if len(genomes) == 0 {
		return nil, inputError(fmt.Errorf("no genomes in %s", cfg.GenomePath))
	}

	ids := make(map[string]bool, len(genomes))
	for _, g := range genomes {
		if ids[g.ID] {
			return nil, inputError(fmt.Errorf("duplicate genome id %q in %s", g.ID, cfg.GenomePath))
		}
		ids[g.ID] = true
	}

	in := &Inputs{Genomes: genomes}
	var table abundance.Table
	if cfg.AbundancePath != "" {
		table, err = abundance.ParseFile(cfg.AbundancePath, logger)
		if err != nil {
			return nil, inputError(err)
		}
	} else {
		dist := cfg.Distribution
		if dist == "" {
			dist = abundance.DistUniform
		}
		sorted := genomeIDs(genomes)
		slices.Sort(sorted)
		table, err = abundance.Generate(dist, sorted, generator.NewRand(cfg.Seed, abundanceStreamKey))
		if err != nil {
			return nil, inputError(err)
		}
		in.Generated = true
		logger.Info("generated abundances", map[string]any{
			"distribution": dist,
			"genomes":      len(sorted),
		})
	}

	matched := make(abundance.Table, len(table))
	for _, e := range table.Sorted() {
		if !ids[e.ID] {
			logger.Warn("abundance entry has no genome", map[string]any{
				"genome": e.ID,
			})
			continue
		}
		if e.Abundance < 0 {
			return nil, inputError(fmt.Errorf("negative abundance %g for genome %q", e.Abundance, e.ID))
		}
		matched[e.ID] = e.Abundance
	}

	in.Abundance, err = matched.Normalize()
	if err != nil {
		return nil, inputError(fmt.Errorf("abundance: %w", err))
	}
	return in, nil
}

func genomeIDs(genomes []*types.Reference) []string {
	ids := make([]string, len(genomes))
	for i, g := range genomes {
		ids[i] = g.ID
	}
	return ids
}
