// Package commands implements the njkast subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/config"
	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/internal/index"
	"github.com/leapstack-labs/njkast/internal/workspace"
	"github.com/leapstack-labs/njkast/pkg/parser"
)

// ExitAnnotation is the cobra annotation listing, one per line, the
// conditions other than bad usage under which a command exits with status 1.
const ExitAnnotation = "njkast.exit"

func exitWhen(conditions ...string) map[string]string {
	return map[string]string{ExitAnnotation: strings.Join(conditions, "\n")}
}

// ExitConditions returns the exit conditions declared by cmd.
func ExitConditions(cmd *cobra.Command) []string {
	v := cmd.Annotations[ExitAnnotation]
	if v == "" {
		return nil
	}
	return strings.Split(v, "\n")
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Parser   *parser.Parser
	Renderer *output.Renderer
}

// NewCommandContext collects the configuration, logger, parser and renderer
// for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Parser:   parser.New(parser.WithLogger(logger), parser.WithTags(cfg.Tags)),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// WorkspaceOptions returns discovery options wired to the context's parser
// and logger.
func (c *CommandContext) WorkspaceOptions() workspace.Options {
	opts := c.Cfg.WorkspaceOptions()
	opts.Parser = c.Parser
	opts.Logger = c.Logger
	return opts
}

// OpenIndex opens and migrates the configured index database.
// The caller must close the returned store.
func (c *CommandContext) OpenIndex() (*index.Store, error) {
	path := c.Cfg.IndexPath
	if path != index.MemoryPath {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", err)
			}
		}
	}

	store, err := index.Open(path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// getConfig returns the current configuration or the defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// readSource reads a template from path, or from in when path is "-".
func readSource(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// resolveRoot returns the directory argument, or the project root.
func resolveRoot(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.ProjectRoot
}
