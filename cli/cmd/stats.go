package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/reader"
	"github.com/justapithecus/readsim/cli/render"
	"github.com/justapithecus/readsim/cli/tui"
	"github.com/justapithecus/readsim/lode"
)

// statsTimeout bounds a dataset query.
const statsTimeout = 30 * time.Second

// StatsCommand returns the stats command.
// Stats reads the persisted metrics record of a run from the dataset.
func StatsCommand() *cli.Command {
	flags := append([]cli.Flag{ConfigFlag}, TUIReadOnlyFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Run ID (default: most recent run)",
		},
		&cli.StringFlag{
			Name:  "day",
			Usage: "Partition day YYYY-MM-DD (default: any)",
		},
	)
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show persisted metrics of a run",
		Flags:  append(flags, storageFlags()...),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
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

	snap, err := reader.NewLodeReader(ds).StatsRun(ctx, c.String("run-id"), c.String("day"))
	if err != nil {
		if errors.Is(err, lode.ErrNoMetricsFound) {
			return cli.Exit("no metrics found (check --run-id, --day and --storage-path)", 1)
		}
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsRun, snap)
	}
	return r.Render(snap)
}
