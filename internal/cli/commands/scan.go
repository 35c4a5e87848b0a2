package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/internal/workspace"
)

// ScanOutput is the structured output of the scan command.
type ScanOutput struct {
	Root      string         `json:"root"`
	Templates []TemplateInfo `json:"templates"`
	Summary   ScanSummary    `json:"summary"`
}

// TemplateInfo describes one scanned template.
type TemplateInfo struct {
	Path     string `json:"path"`
	Imports  int    `json:"imports"`
	Includes int    `json:"includes"`
	Comments int    `json:"comments"`
	Error    string `json:"error,omitempty"`
}

// ScanSummary totals a scan.
type ScanSummary struct {
	Templates int    `json:"templates"`
	Imports   int    `json:"imports"`
	Includes  int    `json:"includes"`
	Errors    int    `json:"errors"`
	Duration  string `json:"duration"`
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Parse every template under a directory",
		Long: `Discover templates under dir (default: the project root) and parse them
concurrently. Prints per-template directive counts and exits non-zero when
any template fails to parse.`,
		Example: `  # Scan the project
  njkast scan

  # Scan a directory with 4 workers, as JSON
  njkast scan site/ --workers 4 -o json`,
		Annotations: exitWhen(
			"any template fails to parse",
			"the directory cannot be walked",
		),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args)
		},
	}

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	c := NewCommandContext(cmd)
	root := resolveRoot(c.Cfg, args)

	start := time.Now()
	results, err := workspace.Scan(cmd.Context(), root, c.WorkspaceOptions())
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}

	out := summarize(root, results, time.Since(start))
	if ok, err := c.Renderer.Structured(out); ok {
		if err != nil {
			return err
		}
	} else {
		renderScan(c.Renderer, out)
	}

	if out.Summary.Errors > 0 {
		return fmt.Errorf("%d template(s) failed to parse", out.Summary.Errors)
	}
	return nil
}

func summarize(root string, results []workspace.Result, elapsed time.Duration) ScanOutput {
	out := ScanOutput{
		Root:      root,
		Templates: make([]TemplateInfo, 0, len(results)),
	}
	for _, res := range results {
		stats := res.Stats()
		info := TemplateInfo{
			Path:     res.Path,
			Imports:  stats.Imports,
			Includes: stats.Includes,
			Comments: stats.Comments,
		}
		if res.Err != nil {
			info.Error = res.Err.Error()
			out.Summary.Errors++
		}
		out.Templates = append(out.Templates, info)
		out.Summary.Imports += stats.Imports
		out.Summary.Includes += stats.Includes
	}
	out.Summary.Templates = len(results)
	out.Summary.Duration = elapsed.Round(time.Millisecond).String()
	return out
}

func renderScan(r *output.Renderer, out ScanOutput) {
	r.Header(1, fmt.Sprintf("Templates (%d total)", out.Summary.Templates))

	rows := make([][]any, 0, len(out.Templates))
	for _, t := range out.Templates {
		rows = append(rows, []any{t.Path, t.Imports, t.Includes, t.Comments, t.Error})
	}
	r.Table([]string{"Path", "Imports", "Includes", "Comments", "Error"}, rows)

	summary := fmt.Sprintf("%d templates, %d imports, %d includes in %s",
		out.Summary.Templates, out.Summary.Imports, out.Summary.Includes, out.Summary.Duration)
	if out.Summary.Errors > 0 {
		r.Error(fmt.Sprintf("%s, %d failed", summary, out.Summary.Errors))
		return
	}
	r.Success(summary)
}
