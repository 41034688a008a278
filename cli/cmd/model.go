package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/reader"
	"github.com/justapithecus/readsim/cli/render"
	"github.com/justapithecus/readsim/cli/tui"
	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/profile"
	"github.com/justapithecus/readsim/runtime"
)

// ModelCommand returns the model command with subcommands.
func ModelCommand() *cli.Command {
	return &cli.Command{
		Name:  "model",
		Usage: "Inspect or export error models",
		Subcommands: []*cli.Command{
			modelInspectCommand(),
			modelExportCommand(),
		},
	}
}

func modelInspectCommand() *cli.Command {
	flags := append([]cli.Flag{ConfigFlag}, TUIReadOnlyFlags()...)
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a model's quality profile and insert size",
		ArgsUsage: "[kind]",
		Flags:     append(flags, modelFlags()...),
		Action:    modelInspectAction,
	}
}

func modelInspectAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	kind, opts, err := modelFromArgs(c)
	if err != nil {
		return err
	}

	view, err := reader.NewLodeReader(nil).InspectModel(kind, opts)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeFor(runtime.Classify(err)))
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectProfile, view)
	}
	return r.Render(view)
}

func modelExportCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output file (default: <name>" + profile.Extension + ")",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Profile name recorded in the artifact (default: model kind)",
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "Gzip the artifact",
		},
	}
	return &cli.Command{
		Name:      "export",
		Usage:     "Write an analytic model as a profile artifact for the cdf model",
		ArgsUsage: "[kind]",
		Flags:     append(flags, modelFlags()...),
		Action:    modelExportAction,
	}
}

func modelExportAction(c *cli.Context) error {
	kind, opts, err := modelFromArgs(c)
	if err != nil {
		return err
	}

	m, err := errmodel.New(kind, opts)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeModelError)
	}

	p, err := errmodel.Export(m, c.String("name"))
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeModelError)
	}

	path := c.String("out")
	if path == "" {
		path = p.Header.Name + profile.Extension
	}
	if err := profile.Write(path, p, c.Bool("compress")); err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}

	fmt.Fprintf(c.App.Writer, "wrote %s (model=%s, read_length=%d)\n", path, m.Name(), m.ReadLength())
	return nil
}

// modelFromArgs resolves the model kind from the first argument, falling
// back to --model and the config file.
func modelFromArgs(c *cli.Context) (string, errmodel.Options, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return "", errmodel.Options{}, err
	}
	kind, opts := resolveModel(c, cfg)
	if c.NArg() > 0 {
		if c.IsSet("model") && c.String("model") != c.Args().First() {
			return "", opts, cli.Exit("model kind given both as argument and --model", 1)
		}
		kind = c.Args().First()
	}
	return kind, opts, nil
}
