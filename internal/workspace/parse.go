package workspace

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/parser"
)

// Result is the outcome of parsing one template.
type Result struct {
	Path     string // slash-separated, relative to the workspace root
	Root     *ast.Root
	Err      error
	Duration time.Duration
}

// Stats counts the directives of a parsed template.
type Stats struct {
	Imports  int
	Includes int
	Comments int
}

// Stats returns directive counts, all zero when the parse failed.
func (r Result) Stats() Stats {
	var s Stats
	if r.Root == nil {
		return s
	}
	for _, child := range r.Root.Children {
		switch child.(type) {
		case *ast.ImportNode:
			s.Imports++
		case *ast.IncludeTemplateNode:
			s.Includes++
		case *ast.CommentNode:
			s.Comments++
		}
	}
	return s
}

// ParseFile reads and parses the template at rel under root.
func ParseFile(root, rel string, p *parser.Parser) Result {
	start := time.Now()
	res := Result{Path: rel}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		res.Err = fmt.Errorf("failed to read template: %w", err)
		return res
	}

	res.Root, res.Err = p.ParseString(string(data))
	res.Duration = time.Since(start)
	return res
}

// ParseAll parses paths under root with up to opts.Workers concurrent
// parses. Results are sorted by path. Per-file failures are reported in
// Result.Err; the returned error is only set when ctx is cancelled.
func ParseAll(ctx context.Context, root string, paths []string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ParseFile(root, rel, opts.Parser)
			if results[i].Err != nil {
				opts.Logger.Debug("template failed to parse", "path", rel, "error", results[i].Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b Result) int { return cmp.Compare(a.Path, b.Path) })
	return results, nil
}

// Scan discovers and parses every template under root.
func Scan(ctx context.Context, root string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()
	paths, err := Discover(root, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("discovered templates", "root", root, "count", len(paths))
	return ParseAll(ctx, root, paths, opts)
}
