package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/njkast/internal/index"
	"github.com/leapstack-labs/njkast/internal/workspace"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "NJKAST_"

// Layer is one configuration source read by LoadConfig.
type Layer struct {
	Name   string
	Source string
}

// Layers returns the configuration sources in load order. A later layer
// overrides the keys it sets in earlier ones.
func Layers() []Layer {
	return []Layer{
		{Name: "defaults", Source: "built-in values"},
		{Name: "file", Source: fmt.Sprintf("%s in the working directory or up to %d parents, or --config",
			strings.Join(ConfigFileNames, " or "), maxUpwardSearchLevels)},
		{Name: "env", Source: EnvPrefix + "* environment variables"},
		{Name: "flags", Source: "command-line flags that were set explicitly"},
	}
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configFileIn returns the config file in dir, or "" if there is none.
func configFileIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if f := configFileIn(dir); f != "" {
			return f
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, in-memory or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == index.MemoryPath || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

func defaults() map[string]any {
	tags := token.DefaultTags()
	return map[string]any{
		"extensions":          workspace.DefaultExtensions,
		"exclude":             workspace.DefaultExclude,
		"workers":             0,
		"index_path":          DefaultIndexPath,
		"output":              DefaultOutput,
		"verbose":             false,
		"log_level":           DefaultLogLevel,
		"tags.block_start":    tags.BlockStart,
		"tags.block_end":      tags.BlockEnd,
		"tags.variable_start": tags.VariableStart,
		"tags.variable_end":   tags.VariableEnd,
		"tags.comment_start":  tags.CommentStart,
		"tags.comment_end":    tags.CommentEnd,
	}
}

// EnvVar returns the environment variable that sets key, so tags.block_start
// is NJKAST_TAGS_BLOCK_START.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FlagKey returns the config key a flag sets, or "" for flags that are not
// configuration.
func FlagKey(name string) string {
	switch name {
	case "config":
		return ""
	case "index":
		return "index_path"
	}
	return strings.ReplaceAll(name, "-", "_")
}

// envKey maps NJKAST_TAGS_BLOCK_START to tags.block_start and
// NJKAST_INDEX_PATH to index_path.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "tags_"); ok {
		return "tags." + rest
	}
	return key
}

// envValue splits comma-separated lists.
func envValue(key, value string) any {
	switch key {
	case "extensions", "exclude":
		var items []string
		for item := range strings.SplitSeq(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	return value
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFileUsed = ""

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// An index path given as a flag is relative to the working directory.
	var flagIndexPath string
	if flags != nil && flags.Changed("index") {
		if v, _ := flags.GetString("index"); v != "" && v != index.MemoryPath {
			flagIndexPath, _ = filepath.Abs(v)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (NJKAST_ prefix)
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = envKey(key)
		return key, envValue(key, value)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			key := FlagKey(f.Name)
			if !f.Changed || key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve paths against the project root
	cfg.ProjectRoot = projectRoot
	if flagIndexPath != "" {
		cfg.IndexPath = flagIndexPath
	} else {
		cfg.IndexPath = resolvePathRelativeTo(cfg.IndexPath, projectRoot)
	}
	cfg.Tags = cfg.Tags.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
