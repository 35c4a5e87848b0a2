// Package workspace finds template files under a directory and parses them
// concurrently.
package workspace

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/leapstack-labs/njkast/pkg/parser"
)

// Default discovery settings.
var (
	DefaultExtensions = []string{".njk", ".html", ".nunjucks"}
	DefaultExclude    = []string{"node_modules", ".git"}
)

// Options configures discovery and parsing.
type Options struct {
	Extensions []string       // file extensions to include, with leading dot
	Exclude    []string       // directory name patterns to skip (filepath.Match)
	Workers    int            // concurrent parses; <= 0 uses GOMAXPROCS
	Parser     *parser.Parser // nil uses parser.New()
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Exclude == nil {
		o.Exclude = DefaultExclude
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Parser == nil {
		o.Parser = parser.New()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// matchesExtension reports whether name has one of the template extensions.
func (o Options) matchesExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(o.Extensions, ext)
}

// excluded reports whether a directory name matches an exclude pattern.
func (o Options) excluded(name string) bool {
	for _, pattern := range o.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Discover returns the template files under root as slash-separated paths
// relative to root, sorted.
func Discover(root string, opts Options) ([]string, error) {
	opts = opts.withDefaults()

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && opts.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !opts.matchesExtension(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover templates in %s: %w", root, err)
	}

	slices.Sort(paths)
	return paths, nil
}
