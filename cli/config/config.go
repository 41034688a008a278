package config

import (
	"fmt"
	"time"
)

// Config represents a readsim.yaml configuration file.
// All values are optional and act as defaults for readsim flags.
// CLI flags always override config values.
type Config struct {
	Genomes      string        `yaml:"genomes"`
	Abundance    string        `yaml:"abundance"`
	Distribution string        `yaml:"distribution"`
	Reads        int           `yaml:"n_reads"`
	Coverage     float64       `yaml:"coverage"`
	Seed         *int64        `yaml:"seed,omitempty"`
	Output       string        `yaml:"output"`
	Compress     bool          `yaml:"compress"`
	Parallel     int           `yaml:"parallel"`
	StrictLength bool          `yaml:"strict_length"`
	LogLevel     string        `yaml:"log_level"`
	Model        ModelConfig   `yaml:"model"`
	Storage      StorageConfig `yaml:"storage"`
	Policy       PolicyConfig  `yaml:"policy"`
	Adapter      AdapterConfig `yaml:"adapter"`
}

// ModelConfig holds error model defaults from the config file.
type ModelConfig struct {
	Kind          string   `yaml:"kind"`
	ReadLength    int      `yaml:"read_length"`
	InsertMean    float64  `yaml:"insert_mean"`
	InsertSD      float64  `yaml:"insert_sd"`
	InsertionRate float64  `yaml:"insertion_rate"`
	DeletionRate  float64  `yaml:"deletion_rate"`
	Profile       string   `yaml:"profile"`
	ProfileDirs   []string `yaml:"profile_dirs"`
}

// StorageConfig holds ground-truth dataset defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// PolicyConfig holds policy defaults from the config file.
type PolicyConfig struct {
	Name          string   `yaml:"name"`
	BufferPairs   int      `yaml:"buffer_pairs"`
	BufferBytes   int64    `yaml:"buffer_bytes"`
	FlushCount    int      `yaml:"flush_count"`
	FlushInterval Duration `yaml:"flush_interval"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
	Backoff Duration          `yaml:"backoff,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
