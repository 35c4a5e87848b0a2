package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/index"
	"github.com/leapstack-labs/njkast/internal/workspace"
)

// IndexOutput is the structured output of the index command.
type IndexOutput struct {
	ScanID    string `json:"scan_id"`
	Root      string `json:"root"`
	IndexPath string `json:"index_path"`
	Templates int    `json:"templates"`
	Errors    int    `json:"errors"`
	Removed   int64  `json:"removed"`
	Duration  string `json:"duration"`
}

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Record template imports and includes in the index",
		Long: `Parse every template under dir (default: the project root) and store its
imports and includes in the SQLite index, replacing what an earlier run
recorded. Templates that fail to parse are recorded with their error.
Templates indexed earlier but no longer found under dir are removed.

The index is queried with "njkast deps".`,
		Example: `  # Index the project into .njkast/index.db
  njkast index

  # Index into a different database
  njkast index site/ --index /tmp/site.db`,
		Annotations: exitWhen(
			"the directory cannot be walked",
			"the index cannot be opened or written",
		),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args)
		},
	}

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	c := NewCommandContext(cmd)
	ctx := cmd.Context()
	root := resolveRoot(c.Cfg, args)

	store, err := c.OpenIndex()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	start := time.Now()
	results, err := workspace.Scan(ctx, root, c.WorkspaceOptions())
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}

	scan, err := store.BeginScan(ctx, root)
	if err != nil {
		return err
	}

	var failed int
	for _, res := range results {
		if err := record(cmd, store, scan.ID, res); err != nil {
			return err
		}
		if res.Err != nil {
			failed++
			c.Logger.Warn("template failed to parse", "path", res.Path, "error", res.Err)
		}
	}

	removed, err := store.PruneScan(ctx, scan.ID)
	if err != nil {
		return err
	}
	c.Logger.Debug("pruned templates", "scan", scan.ID, "removed", removed)

	if err := store.CompleteScan(ctx, scan.ID, len(results), failed); err != nil {
		return err
	}

	out := IndexOutput{
		ScanID:    scan.ID,
		Root:      root,
		IndexPath: store.Path(),
		Templates: len(results),
		Errors:    failed,
		Removed:   removed,
		Duration:  time.Since(start).Round(time.Millisecond).String(),
	}
	if ok, err := c.Renderer.Structured(out); ok {
		return err
	}

	r := c.Renderer
	r.Success(fmt.Sprintf("Indexed %d templates in %s", out.Templates, out.Duration))
	if removed > 0 {
		r.Muted(fmt.Sprintf("Removed %d template(s) no longer found", removed))
	}
	if failed > 0 {
		r.Warning(fmt.Sprintf("%d template(s) failed to parse", failed))
	}
	r.Muted(fmt.Sprintf("Index saved to %s", out.IndexPath))
	return nil
}

func record(cmd *cobra.Command, store *index.Store, scanID string, res workspace.Result) error {
	if res.Err != nil {
		return store.RecordFailure(cmd.Context(), scanID, res.Path, res.Err)
	}
	return store.RecordTemplate(cmd.Context(), scanID, res.Path, res.Root)
}
