package cmd

import (
	"context"
	"errors"
	"fmt"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/config"
	"github.com/justapithecus/readsim/lode"
)

// storageChoice holds the resolved dataset location.
type storageChoice struct {
	backend   string // "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	dataset   string
	region    string
	endpoint  string
	pathStyle bool
}

func resolveStorage(c *cli.Context, cfg *config.Config) storageChoice {
	s := configVal(cfg, func(c *config.Config) config.StorageConfig { return c.Storage })
	return storageChoice{
		backend:   resolveString(c, "storage-backend", s.Backend),
		path:      resolveString(c, "storage-path", s.Path),
		dataset:   resolveString(c, "storage-dataset", s.Dataset),
		region:    resolveString(c, "storage-region", s.Region),
		endpoint:  resolveString(c, "storage-endpoint", s.Endpoint),
		pathStyle: resolveBool(c, "storage-s3-path-style", s.S3PathStyle),
	}
}

// enabled reports whether a dataset location was given.
func (s storageChoice) enabled() bool {
	return s.path != ""
}

func (s storageChoice) validate() error {
	switch s.backend {
	case "fs", "":
	case "s3":
		if s.path == "" {
			return errors.New("--storage-path is required for the s3 backend (bucket/prefix)")
		}
	default:
		return fmt.Errorf("invalid --storage-backend: %q (must be fs or s3)", s.backend)
	}
	if s.backend != "s3" && (s.endpoint != "" || s.pathStyle) {
		return errors.New("--storage-endpoint and --storage-s3-path-style require --storage-backend s3")
	}
	return nil
}

// backendName is the metrics dimension for the backend, empty when no
// dataset is configured.
func (s storageChoice) backendName() string {
	if !s.enabled() {
		return ""
	}
	if s.backend == "" {
		return "fs"
	}
	return s.backend
}

func (s storageChoice) s3Config() lode.S3Config {
	bucket, prefix := lode.ParseS3Path(s.path)
	return lode.S3Config{
		Bucket:       bucket,
		Prefix:       prefix,
		Region:       s.region,
		Endpoint:     s.endpoint,
		UsePathStyle: s.pathStyle,
	}
}

// buildLodeClient opens the write side of the dataset.
func buildLodeClient(ctx context.Context, s storageChoice, cfg lode.Config) (*lode.LodeClient, error) {
	if cfg.Dataset == "" {
		cfg.Dataset = s.dataset
	}
	switch s.backend {
	case "fs", "":
		return lode.NewLodeClient(cfg, s.path)
	case "s3":
		return lode.NewLodeS3Client(ctx, cfg, s.s3Config())
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", s.backend)
	}
}

// openReadDataset opens the read side of the dataset.
func openReadDataset(ctx context.Context, s storageChoice) (lodelibrary.Dataset, error) {
	if !s.enabled() {
		return nil, errors.New("--storage-path is required")
	}
	switch s.backend {
	case "fs", "":
		return lode.NewReadDatasetFS(s.dataset, s.path)
	case "s3":
		return lode.NewReadDatasetS3(ctx, s.dataset, s.s3Config())
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", s.backend)
	}
}
