package commands

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/internal/workspace"
	"github.com/leapstack-labs/njkast/pkg/ast"
)

// ParsedTemplate is the structured output of one parsed template.
type ParsedTemplate struct {
	Path  string    `json:"path"`
	Root  *ast.Root `json:"root,omitempty"`
	Error string    `json:"error,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse templates and print their syntax trees",
		Long: `Parse Nunjucks templates and print the syntax tree of each.

With no file, or with "-", the template is read from stdin.

Output adapts to environment:
  - Terminal: Styled tree
  - Piped/Scripted: Markdown list (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # Print the tree of a template
  njkast parse pages/home.njk

  # Emit the unist tree as JSON
  njkast parse pages/home.njk -o json

  # Parse from stdin
  echo '{% include "footer.html" %}' | njkast parse

  # Re-print the tree whenever the file is saved
  njkast parse pages/home.njk --watch`,
		Annotations: exitWhen(
			"a template fails to parse",
			"a template file cannot be read",
			"--watch is not given exactly one file",
		),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return runParseWatch(cmd, args)
			}
			return runParse(cmd, args)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-parse the file whenever it changes")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	c := NewCommandContext(cmd)
	if len(args) == 0 {
		args = []string{"-"}
	}

	results := make([]ParsedTemplate, 0, len(args))
	var failed int
	for _, path := range args {
		src, err := readSource(path, cmd.InOrStdin())
		if err != nil {
			return err
		}

		result := ParsedTemplate{Path: displayName(path)}
		root, err := c.Parser.ParseString(src)
		if err != nil {
			result.Error = err.Error()
			failed++
		} else {
			result.Root = root
		}
		results = append(results, result)
	}

	if err := renderParsed(c.Renderer, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d template(s) failed to parse", failed, len(results))
	}
	return nil
}

// renderParsed prints results. A single structured result is emitted as
// the bare tree.
func renderParsed(r *output.Renderer, results []ParsedTemplate) error {
	var doc any = results
	if len(results) == 1 && results[0].Root != nil {
		doc = results[0].Root
	}
	if ok, err := r.Structured(doc); ok {
		return err
	}

	for i, res := range results {
		if len(results) > 1 {
			if i > 0 {
				r.Println("")
			}
			r.Header(2, res.Path)
		}
		if res.Error != "" {
			r.Error(fmt.Sprintf("%s: %s", res.Path, res.Error))
			continue
		}
		r.Tree(res.Root)
	}
	return nil
}

func runParseWatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || args[0] == "-" {
		return errors.New("--watch needs exactly one template file")
	}
	c := NewCommandContext(cmd)
	path := args[0]

	// Print the current tree first.
	if err := runParse(cmd, args); err != nil {
		c.Renderer.Warning(err.Error())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	opts := c.WorkspaceOptions()
	opts.Extensions = []string{strings.ToLower(filepath.Ext(name))}

	c.Renderer.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path))
	return workspace.Watch(ctx, dir, opts, func(res workspace.Result) {
		if res.Path != name {
			return
		}
		result := ParsedTemplate{Path: path, Root: res.Root}
		if res.Err != nil {
			result.Error = res.Err.Error()
		}
		if err := renderParsed(c.Renderer, []ParsedTemplate{result}); err != nil {
			c.Logger.Error("failed to render tree", "path", path, "error", err)
		}
	})
}

func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}
