package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/config"
	"github.com/justapithecus/readsim/cli/render"
	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/runtime"
)

// PlanCommand returns the plan command.
// Plan prints the per-genome schedule generate would run, without
// generating anything. Generated abundances match generate only when the
// same --seed is given.
func PlanCommand() *cli.Command {
	flags := append([]cli.Flag{ConfigFlag}, ReadOnlyFlags()...)
	flags = append(flags, inputFlags()...)
	flags = append(flags, modelFlags()...)
	return &cli.Command{
		Name:   "plan",
		Usage:  "Show pairs and expected coverage per genome",
		Flags:  flags,
		Action: planAction,
	}
}

func planAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for plan command", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	seed, _ := resolveSeed(c, cfg)
	inputs := resolveInputs(c, cfg, seed)
	if inputs.GenomePath == "" {
		return cli.Exit("--genomes is required (or set genomes: in the config file)", 1)
	}

	kind, opts := resolveModel(c, cfg)
	model, err := errmodel.New(kind, opts)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeFor(runtime.Classify(err)))
	}

	in, err := runtime.LoadInputs(c.Context, inputs, log.NewNop())
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeFor(runtime.Classify(err)))
	}

	plan := runtime.BuildPlan(in, runtime.PlanConfig{
		TotalReads: resolveInt(c, "n-reads", configVal(cfg, func(c *config.Config) int { return c.Reads })),
		Coverage:   resolveFloat64(c, "coverage", configVal(cfg, func(c *config.Config) float64 { return c.Coverage })),
		ReadLength: model.ReadLength(),
	})
	if len(plan.Entries) == 0 {
		return cli.Exit(fmt.Sprintf("no genome in %s has an abundance", inputs.GenomePath), runtime.ExitCodeInputError)
	}

	if r.Format() == render.FormatTable {
		return r.Render(plan.Entries)
	}
	return r.Render(plan)
}
