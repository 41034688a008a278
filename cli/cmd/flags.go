// Package cmd provides CLI commands for the readsim binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for select read-only commands (model inspect, stats).
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (model inspect, stats only)",
	}

	// ConfigFlag points at a readsim.yaml file. Without it, ./readsim.yaml
	// is used when present.
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to readsim.yaml config file (default: ./readsim.yaml if present)",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error messages
// instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		TUIFlag,
	}
}

// TUIReadOnlyFlags returns flags for commands that support TUI mode.
// This is an alias for ReadOnlyFlags, kept for documentation clarity.
func TUIReadOnlyFlags() []cli.Flag {
	return ReadOnlyFlags()
}

// modelFlags configure the error model. Shared by generate, plan and model.
func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Error model: basic, perfect or cdf",
			Value:   "basic",
		},
		&cli.IntFlag{
			Name:  "read-length",
			Usage: "Read length (basic and perfect models)",
		},
		&cli.Float64Flag{
			Name:  "insert-mean",
			Usage: "Mean outer insert size",
		},
		&cli.Float64Flag{
			Name:  "insert-sd",
			Usage: "Insert size standard deviation",
		},
		&cli.Float64Flag{
			Name:  "insertion-rate",
			Usage: "Per-base insertion rate (basic model)",
		},
		&cli.Float64Flag{
			Name:  "deletion-rate",
			Usage: "Per-base deletion rate (basic model)",
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Profile artifact for the cdf model: path or name",
		},
		&cli.StringSliceFlag{
			Name:  "profile-dir",
			Usage: "Directory searched for named profiles (repeatable)",
		},
	}
}

// inputFlags select genomes and abundances. Shared by generate and plan.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "genomes",
			Aliases: []string{"g"},
			Usage:   "FASTA file of reference genomes (gzip allowed)",
		},
		&cli.StringFlag{
			Name:    "abundance",
			Aliases: []string{"a"},
			Usage:   "Abundance file: genome_id<TAB>abundance per line",
		},
		&cli.StringFlag{
			Name:  "distribution",
			Usage: "Generated abundance distribution when no file is given: uniform or lognormal",
			Value: "uniform",
		},
		&cli.IntFlag{
			Name:    "n-reads",
			Aliases: []string{"n"},
			Usage:   "Total number of reads (both mates)",
			Value:   1000000,
		},
		&cli.Float64Flag{
			Name:  "coverage",
			Usage: "Simulate every genome to this depth instead of sharing --n-reads",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Root random seed (random when unset)",
		},
	}
}

// storageFlags select the Lode ground-truth dataset. Shared by generate
// and stats.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "storage-backend",
			Usage: "Dataset storage backend: fs or s3",
			Value: "fs",
		},
		&cli.StringFlag{
			Name:  "storage-path",
			Usage: "Dataset location (fs: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "storage-dataset",
			Usage: "Dataset ID",
		},
		&cli.StringFlag{
			Name:  "storage-region",
			Usage: "AWS region for the s3 backend (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "storage-endpoint",
			Usage: "Custom S3 endpoint for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "storage-s3-path-style",
			Usage: "Force path-style S3 addressing",
		},
	}
}
