package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/config"
	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/runtime"
)

// Precedence for every setting: explicit flag, then config file, then the
// flag default.

// loadConfig reads --config, or ./readsim.yaml when present.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadDefault(c.String("config"))
}

// configVal reads a field from cfg, or the zero value for a nil config.
func configVal[T any](cfg *config.Config, get func(*config.Config) T) T {
	var zero T
	if cfg == nil {
		return zero
	}
	return get(cfg)
}

func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) || cfgVal == "" {
		return c.String(name)
	}
	return cfgVal
}

func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Int(name)
	}
	return cfgVal
}

func resolveInt64(c *cli.Context, name string, cfgVal int64) int64 {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Int64(name)
	}
	return cfgVal
}

func resolveFloat64(c *cli.Context, name string, cfgVal float64) float64 {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Float64(name)
	}
	return cfgVal
}

func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return c.Bool(name) || cfgVal
}

func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Duration(name)
	}
	return cfgVal
}

func resolveStrings(c *cli.Context, name string, cfgVal []string) []string {
	if c.IsSet(name) || len(cfgVal) == 0 {
		return c.StringSlice(name)
	}
	return cfgVal
}

// resolveModel returns the model kind and options.
func resolveModel(c *cli.Context, cfg *config.Config) (string, errmodel.Options) {
	m := configVal(cfg, func(c *config.Config) config.ModelConfig { return c.Model })
	kind := resolveString(c, "model", m.Kind)
	return kind, errmodel.Options{
		ReadLength:    resolveInt(c, "read-length", m.ReadLength),
		InsertMean:    resolveFloat64(c, "insert-mean", m.InsertMean),
		InsertSD:      resolveFloat64(c, "insert-sd", m.InsertSD),
		InsertionRate: resolveFloat64(c, "insertion-rate", m.InsertionRate),
		DeletionRate:  resolveFloat64(c, "deletion-rate", m.DeletionRate),
		Profile:       resolveString(c, "profile", m.Profile),
		ProfileDirs:   resolveStrings(c, "profile-dir", m.ProfileDirs),
	}
}

// resolveInputs returns the genome and abundance selection. seed is the
// already resolved root seed.
func resolveInputs(c *cli.Context, cfg *config.Config, seed int64) runtime.InputConfig {
	return runtime.InputConfig{
		GenomePath:    resolveString(c, "genomes", configVal(cfg, func(c *config.Config) string { return c.Genomes })),
		AbundancePath: resolveString(c, "abundance", configVal(cfg, func(c *config.Config) string { return c.Abundance })),
		Distribution:  resolveString(c, "distribution", configVal(cfg, func(c *config.Config) string { return c.Distribution })),
		Seed:          seed,
	}
}

// resolveSeed returns the root seed and whether one was given.
func resolveSeed(c *cli.Context, cfg *config.Config) (int64, bool) {
	if c.IsSet("seed") {
		return c.Int64("seed"), true
	}
	if s := configVal(cfg, func(c *config.Config) *int64 { return c.Seed }); s != nil {
		return *s, true
	}
	return 0, false
}
