package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/internal/dag"
)

// GraphOutput is the structured output of the graph command.
type GraphOutput struct {
	Templates  int        `json:"templates"`
	References int        `json:"references"`
	Levels     [][]string `json:"levels,omitempty"`
	Missing    []string   `json:"missing,omitempty"`
	Cycle      []string   `json:"cycle,omitempty"`
	Changed    string     `json:"changed,omitempty"`
	Affected   []string   `json:"affected,omitempty"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	var affected string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the template dependency graph",
		Long: `Build the dependency graph from the index and print templates grouped by
level: a template only imports or includes templates from earlier levels.
Referenced templates that were never indexed are listed as missing.

Exits non-zero when templates import or include each other in a cycle.
Dynamic includes are left out of the graph.`,
		Example: `  # Show render levels
  njkast graph

  # Which templates need re-rendering when the forms macros change?
  njkast graph --affected macros/forms.njk`,
		Annotations: exitWhen(
			"indexed templates import or include each other in a cycle",
			"the index cannot be opened or queried",
		),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd, filepath.ToSlash(affected))
		},
	}

	cmd.Flags().StringVar(&affected, "affected", "", "List templates affected by a change to this template")

	return cmd
}

func runGraph(cmd *cobra.Command, changed string) error {
	c := NewCommandContext(cmd)
	ctx := cmd.Context()

	store, err := c.OpenIndex()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	templates, err := store.Templates(ctx)
	if err != nil {
		return err
	}
	refs, err := store.References(ctx)
	if err != nil {
		return err
	}
	g := dag.Build(templates, refs)
	c.Logger.Debug("built dependency graph", "graph", g.String())

	out := GraphOutput{
		Templates:  g.NodeCount(),
		References: g.EdgeCount(),
		Missing:    g.Missing(),
	}
	var cycleErr *dag.CycleError
	out.Levels, err = g.Levels()
	if errors.As(err, &cycleErr) {
		out.Cycle = cycleErr.Path
	}
	if changed != "" {
		out.Changed = changed
		out.Affected = g.Affected(changed)
	}

	if ok, rerr := c.Renderer.Structured(out); ok {
		if rerr != nil {
			return rerr
		}
	} else {
		renderGraph(c.Renderer, out)
	}
	return err
}

func renderGraph(r *output.Renderer, out GraphOutput) {
	if out.Changed != "" {
		r.Header(1, fmt.Sprintf("Affected by %s", out.Changed))
		if len(out.Affected) == 0 {
			r.Muted("Template is not in the index")
			return
		}
		rows := make([][]any, 0, len(out.Affected))
		for _, path := range out.Affected {
			rows = append(rows, []any{path})
		}
		r.Table([]string{"Template"}, rows)
		return
	}

	r.Header(1, fmt.Sprintf("Dependency graph (%d templates, %d references)", out.Templates, out.References))
	if len(out.Cycle) > 0 {
		r.Error("cycle: " + strings.Join(out.Cycle, " -> "))
		return
	}

	rows := make([][]any, 0, len(out.Levels))
	for i, level := range out.Levels {
		rows = append(rows, []any{i, strings.Join(level, ", ")})
	}
	r.Table([]string{"Level", "Templates"}, rows)

	if len(out.Missing) > 0 {
		r.Warning(fmt.Sprintf("%d referenced template(s) not indexed: %s", len(out.Missing), strings.Join(out.Missing, ", ")))
	}
}
