// Package chxcfg loads the YAML configuration the example CLI under
// cmd/chx-example reads: connection settings, the Inserter's commit
// thresholds, and default compression.
package chxcfg

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/mrhb33/chx"
)

// ServerConfig is the connection endpoint and credentials.
type ServerConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// InsertConfig tunes the periodic-commit Inserter the example CLI runs.
type InsertConfig struct {
	Table       string `yaml:"table"`
	MaxRows     int    `yaml:"max_rows"`
	MaxBytes    int    `yaml:"max_bytes"`
	PeriodMs    int    `yaml:"period_ms"`
	JitterBias  float64 `yaml:"jitter_bias"`
}

// CompressionConfig picks the wire compression mode by name.
type CompressionConfig struct {
	Mode  string `yaml:"mode"` // "none", "lz4", "lz4hc"
	Level int    `yaml:"level"`
}

// Config is the example CLI's full configuration tree.
type Config struct {
	Environment string            `yaml:"environment"`
	Server      ServerConfig      `yaml:"server"`
	Insert      InsertConfig      `yaml:"insert"`
	Compression CompressionConfig `yaml:"compression"`
}

// Load reads and parses a YAML config file at path. Missing optional
// fields fall back to the defaults below.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: "dev",
		Insert: InsertConfig{
			MaxRows:    100_000,
			MaxBytes:   8 << 20,
			PeriodMs:   1000,
			JitterBias: 0.1,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveCompression resolves the configured compression mode into a
// chx.Compression value.
func (c *Config) ResolveCompression() chx.Compression {
	switch c.Compression.Mode {
	case "lz4":
		return chx.LZ4
	case "lz4hc":
		return chx.LZ4HC(c.Compression.Level)
	default:
		return chx.NoCompression
	}
}
