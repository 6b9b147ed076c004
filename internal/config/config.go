// Package config holds the fcstool configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/fcs/builder"
	"github.com/arloliu/fcs/format"
	"github.com/arloliu/fcs/section"
)

// Config represents the fcstool configuration.
type Config struct {
	Logging Logging `yaml:"logging"`
	Build   Build   `yaml:"build"`
	Archive Archive `yaml:"archive"`
}

// Logging contains logging configuration.
type Logging struct {
	Level string `yaml:"level"`
}

// Build contains the defaults used when writing FCS files.
type Build struct {
	ForceNarrow bool   `yaml:"force_narrow"`
	Delimiter   string `yaml:"delimiter"` // single character; empty keeps the template delimiter
	Version     string `yaml:"version"`   // FCS2.0, FCS3.0 or FCS3.1; empty keeps the template version
	Overwrite   bool   `yaml:"overwrite"`
}

// Archive contains archive export configuration.
type Archive struct {
	Compression string `yaml:"compression"` // none, zstd, s2 or lz4
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: Logging{Level: "info"},
		Archive: Archive{Compression: "zstd"},
	}
}

// LoadConfig loads configuration from path. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filepath.Base(path), err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns ~/.config/fcstool/config.yaml, or a file in the
// working directory when the home directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./fcstool.yaml"
	}

	return filepath.Join(home, ".config", "fcstool", "config.yaml")
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Validate checks every field that is parsed later.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := c.BuildOptions(); err != nil {
		return err
	}
	if _, err := c.Compression(); err != nil {
		return err
	}

	return nil
}

// LogLevel parses logging.level.
func (c *Config) LogLevel() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}

	return lvl, nil
}

// BuildOptions converts the build section into builder options.
func (c *Config) BuildOptions() ([]builder.Option, error) {
	var opts []builder.Option

	if c.Build.ForceNarrow {
		opts = append(opts, builder.WithForceNarrow())
	}

	switch len(c.Build.Delimiter) {
	case 0:
	case 1:
		if err := section.ValidateDelimiter(c.Build.Delimiter[0]); err != nil {
			return nil, fmt.Errorf("build.delimiter: %w", err)
		}
		opts = append(opts, builder.WithDelimiter(c.Build.Delimiter[0]))
	default:
		return nil, fmt.Errorf("build.delimiter: %q is not a single character", c.Build.Delimiter)
	}

	if c.Build.Version != "" {
		v, ok := format.ParseVersion(c.Build.Version)
		if !ok {
			return nil, fmt.Errorf("build.version: unknown version %q", c.Build.Version)
		}
		opts = append(opts, builder.WithVersion(v))
	}

	return opts, nil
}

// WriteOptions converts the build section into write options.
func (c *Config) WriteOptions() []builder.WriteOption {
	if c.Build.Overwrite {
		return []builder.WriteOption{builder.WithOverwrite()}
	}

	return nil
}

// Compression parses archive.compression.
func (c *Config) Compression() (format.CompressionType, error) {
	ct, err := format.ParseCompression(c.Archive.Compression)
	if err != nil {
		return 0, fmt.Errorf("archive.compression: %w", err)
	}

	return ct, nil
}
