package cmd

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/reader"
	"github.com/justapithecus/readsim/cli/render"
)

// TruthCommand returns the truth command.
// Truth lists the ground-truth origin of simulated reads from the dataset.
func TruthCommand() *cli.Command {
	flags := append([]cli.Flag{ConfigFlag}, ReadOnlyFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:     "run-id",
			Usage:    "Run ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "genome",
			Usage: "Only reads drawn from this genome",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum reads to show (0 for all)",
			Value: 100,
		},
	)
	return &cli.Command{
		Name:   "truth",
		Usage:  "Show ground-truth coordinates of simulated reads",
		Flags:  append(flags, storageFlags()...),
		Action: truthAction,
	}
}

func truthAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for truth command", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	storage := resolveStorage(c, cfg)
	if err := storage.validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, cancel := context.WithTimeout(c.Context, statsTimeout)
	defer cancel()

	ds, err := openReadDataset(ctx, storage)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	reads, err := reader.NewLodeReader(ds).TruthReads(ctx, c.String("run-id"), c.String("genome"), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(reads) == 0 {
		return cli.Exit("no reads found (check --run-id, --genome and --storage-path)", 1)
	}
	return r.Render(reads)
}
