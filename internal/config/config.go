// Package config holds the settings of the maxlines command, loaded from a
// YAML file and overridden by flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rusq/maxlines/internal/input"
)

// Output formats.
const (
	FormatNDJSON = "ndjson"
	FormatText   = "text"
)

// Defaults.
const (
	DefaultMaxLines    = 1000
	DefaultBufferSize  = 64 * 1024
	DefaultMaxErrors   = 10
	DefaultConcurrency = 1
	DefaultLogLevel    = "info"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the maxlines command configuration.
type Config struct {
	MaxLines     int    `yaml:"max_lines"`
	BufferSize   int    `yaml:"buffer_size"`
	MaxErrors    int    `yaml:"max_errors"`
	Concurrency  int    `yaml:"concurrency"`
	Format       string `yaml:"format"`
	Compression  string `yaml:"compression"`
	Encoding     string `yaml:"encoding"`
	ValidateUTF8 bool   `yaml:"validate_utf8"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MaxLines:    DefaultMaxLines,
		BufferSize:  DefaultBufferSize,
		MaxErrors:   DefaultMaxErrors,
		Concurrency: DefaultConcurrency,
		Format:      FormatNDJSON,
		Compression: input.CompressionAuto,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads the configuration file at path on top of the defaults.  An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := cfg.decode(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the values.
func (c *Config) Validate() error {
	switch {
	case c.MaxLines < 1:
		return fmt.Errorf("%w: max_lines must be at least 1, got %d", ErrInvalidConfig, c.MaxLines)
	case c.BufferSize < 0:
		return fmt.Errorf("%w: buffer_size must not be negative, got %d", ErrInvalidConfig, c.BufferSize)
	case c.MaxErrors < 0:
		return fmt.Errorf("%w: max_errors must not be negative, got %d", ErrInvalidConfig, c.MaxErrors)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	switch c.Format {
	case FormatNDJSON, FormatText:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	switch c.Compression {
	case "", input.CompressionAuto, input.CompressionNone, input.CompressionZstd, input.CompressionGzip:
	default:
		return fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, c.Compression)
	}
	return nil
}

// InputOptions returns the options for opening inputs.
func (c *Config) InputOptions() input.Options {
	return input.Options{Compression: c.Compression, Encoding: c.Encoding}
}
