// Package config provides configuration management for the njkast CLI.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/njkast/internal/workspace"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// Config holds all CLI configuration options.
type Config struct {
	Extensions   []string   `koanf:"extensions"`
	Exclude      []string   `koanf:"exclude"`
	Workers      int        `koanf:"workers"`
	IndexPath    string     `koanf:"index_path"`
	OutputFormat string     `koanf:"output"`
	Verbose      bool       `koanf:"verbose"`
	LogLevel     string     `koanf:"log_level"`
	Tags         token.Tags `koanf:"tags"`

	// ProjectRoot is the directory holding the config file, or the
	// working directory when none was found.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultIndexPath = ".njkast/index.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "warn"
)

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"njkast.yaml", "njkast.yml"}

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "json", "yaml", "markdown"}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Extensions:   workspace.DefaultExtensions,
		Exclude:      workspace.DefaultExclude,
		IndexPath:    DefaultIndexPath,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Tags:         token.DefaultTags(),
		ProjectRoot:  ".",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if err := c.Tags.Validate(); err != nil {
		return fmt.Errorf("invalid tags: %w", err)
	}
	return nil
}

// Level returns the configured log level. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// WorkspaceOptions converts the discovery settings for internal/workspace.
// The caller supplies the parser and logger.
func (c *Config) WorkspaceOptions() workspace.Options {
	return workspace.Options{
		Extensions: c.Extensions,
		Exclude:    c.Exclude,
		Workers:    c.Workers,
	}
}
