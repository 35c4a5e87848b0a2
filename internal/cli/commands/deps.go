package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/internal/index"
)

// DepsOutput is the structured output of the deps command.
type DepsOutput struct {
	Template   string            `json:"template"`
	Imports    []index.Import    `json:"imports,omitempty"`
	Includes   []index.Include   `json:"includes,omitempty"`
	Dependents []index.Dependent `json:"dependents,omitempty"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "deps <template>",
		Short: "Show what a template imports and includes",
		Long: `Query the index for the imports and includes of a template, or with
--reverse for the templates that import or include it.

Template paths are relative to the indexed directory. Run "njkast index"
first.`,
		Example: `  # What does the page pull in?
  njkast deps pages/home.njk

  # Who uses the forms macros?
  njkast deps macros/forms.njk --reverse`,
		Annotations: exitWhen(
			"the index cannot be opened or queried",
		),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, filepath.ToSlash(args[0]), reverse)
		},
	}

	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "List templates that reference this one")

	return cmd
}

func runDeps(cmd *cobra.Command, template string, reverse bool) error {
	c := NewCommandContext(cmd)
	ctx := cmd.Context()

	store, err := c.OpenIndex()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := DepsOutput{Template: template}
	if reverse {
		if out.Dependents, err = store.Dependents(ctx, template); err != nil {
			return err
		}
	} else {
		if out.Imports, err = store.Imports(ctx, template); err != nil {
			return err
		}
		if out.Includes, err = store.Includes(ctx, template); err != nil {
			return err
		}
	}

	if ok, err := c.Renderer.Structured(out); ok {
		return err
	}
	if reverse {
		renderDependents(c.Renderer, out)
	} else {
		renderDependencies(c.Renderer, out)
	}
	return nil
}

func renderDependencies(r *output.Renderer, out DepsOutput) {
	r.Header(1, fmt.Sprintf("Dependencies of %s", out.Template))
	if len(out.Imports) == 0 && len(out.Includes) == 0 {
		r.Muted("No imports or includes recorded")
		return
	}

	rows := make([][]any, 0, len(out.Imports)+len(out.Includes))
	for _, imp := range out.Imports {
		rows = append(rows, []any{fmt.Sprintf("%d:%d", imp.Line, imp.Column), "import", imp.Target, importDetail(imp)})
	}
	for _, inc := range out.Includes {
		rows = append(rows, []any{fmt.Sprintf("%d:%d", inc.Line, inc.Column), "include", inc.Target, includeDetail(inc)})
	}
	r.Table([]string{"Pos", "Kind", "Target", "Detail"}, rows)
}

func renderDependents(r *output.Renderer, out DepsOutput) {
	r.Header(1, fmt.Sprintf("Dependents of %s", out.Template))
	if len(out.Dependents) == 0 {
		r.Muted("No templates reference it")
		return
	}

	rows := make([][]any, 0, len(out.Dependents))
	for _, d := range out.Dependents {
		rows = append(rows, []any{d.Template, d.Kind, fmt.Sprintf("%d:%d", d.Line, d.Column)})
	}
	r.Table([]string{"Template", "Kind", "Pos"}, rows)
}

func importDetail(imp index.Import) string {
	var parts []string
	if imp.Alias != "" {
		parts = append(parts, "as "+imp.Alias)
	}
	if len(imp.Names) > 0 {
		names := make([]string, 0, len(imp.Names))
		for _, n := range imp.Names {
			if n.Alias != "" {
				names = append(names, n.Name+" as "+n.Alias)
			} else {
				names = append(names, n.Name)
			}
		}
		parts = append(parts, "names: "+strings.Join(names, ", "))
	}
	if imp.WithContext {
		parts = append(parts, "with context")
	}
	return strings.Join(parts, "; ")
}

func includeDetail(inc index.Include) string {
	var parts []string
	if inc.Variable != "" {
		parts = append(parts, inc.Variable+" + literal")
	}
	if inc.IgnoreMissing {
		parts = append(parts, "ignore missing")
	}
	return strings.Join(parts, "; ")
}
