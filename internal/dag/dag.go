// Package dag provides the template dependency graph.
// Edges run from a template to every template that imports or includes it,
// so render order, import cycles and the templates affected by an edit can
// be read off the graph.
package dag

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/njkast/internal/index"
)

// Graph is a directed graph of template paths.
type Graph struct {
	nodes   map[string]bool     // path -> indexed
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // dependent -> dependencies
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// Build creates the graph of the indexed templates. Dynamic includes are
// skipped since only part of their target is known, and optional includes
// of unindexed templates are dropped.
func Build(templates []string, refs []index.Reference) *Graph {
	g := NewGraph()
	for _, path := range templates {
		g.AddTemplate(path)
	}
	for _, ref := range refs {
		if ref.Dynamic || (ref.Optional && !g.nodes[ref.Target]) {
			continue
		}
		g.AddReference(ref.Target, ref.Template)
	}
	return g
}

// AddTemplate adds an indexed template.
func (g *Graph) AddTemplate(path string) {
	g.addNode(path)
	g.nodes[path] = true
}

func (g *Graph) addNode(path string) {
	if _, exists := g.nodes[path]; exists {
		return
	}
	g.nodes[path] = false
	g.edges[path] = []string{}
	g.parents[path] = []string{}
}

// AddReference records that dependent imports or includes dependency.
// Unknown paths are added as unindexed nodes. A template referencing itself
// is kept as an edge and reported as a cycle.
func (g *Graph) AddReference(dependency, dependent string) {
	g.addNode(dependency)
	g.addNode(dependent)

	if !slices.Contains(g.edges[dependency], dependent) {
		g.edges[dependency] = append(g.edges[dependency], dependent)
	}
	if !slices.Contains(g.parents[dependent], dependency) {
		g.parents[dependent] = append(g.parents[dependent], dependency)
	}
}

// Dependencies returns the templates path references directly.
func (g *Graph) Dependencies(path string) []string {
	return g.parents[path]
}

// Dependents returns the templates that reference path directly.
func (g *Graph) Dependents(path string) []string {
	return g.edges[path]
}

// Templates returns every node, sorted.
func (g *Graph) Templates() []string {
	paths := make([]string, 0, len(g.nodes))
	for path := range g.nodes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Missing returns the referenced paths that were never indexed, sorted.
func (g *Graph) Missing() []string {
	var missing []string
	for path, indexed := range g.nodes {
		if !indexed {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	return missing
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, dependents := range g.edges {
		count += len(dependents)
	}
	return count
}

// CycleError reports a reference cycle. Path starts and ends with the same
// template.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "reference cycle: " + strings.Join(e.Path, " -> ")
}

// FindCycle returns the first cycle found, visiting templates in sorted
// order, or nil when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	from := make(map[string]string)

	var cycle []string

	var dfs func(path string) bool
	dfs = func(path string) bool {
		visited[path] = true
		onStack[path] = true

		for _, next := range g.edges[path] {
			if !visited[next] {
				from[next] = path
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for curr := path; curr != next; curr = from[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		onStack[path] = false
		return false
	}

	for _, path := range g.Templates() {
		if !visited[path] && dfs(path) {
			return cycle
		}
	}
	return nil
}

// Levels groups templates so that every template's dependencies sit in an
// earlier level. Level 0 holds templates that reference nothing.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	assigned := make(map[string]int)

	var levelOf func(path string) int
	levelOf = func(path string) int {
		if level, ok := assigned[path]; ok {
			return level
		}
		level := 0
		for _, dep := range g.parents[path] {
			level = max(level, levelOf(dep)+1)
		}
		assigned[path] = level
		return level
	}

	var levels [][]string
	for _, path := range g.Templates() {
		level := levelOf(path)
		for len(levels) <= level {
			levels = append(levels, []string{})
		}
		levels[level] = append(levels[level], path)
	}
	return levels, nil
}

// Affected returns the changed templates and everything that transitively
// imports or includes them, sorted. Unknown paths are ignored.
func (g *Graph) Affected(changed ...string) []string {
	affected := make(map[string]bool)

	var mark func(path string)
	mark = func(path string) {
		if affected[path] {
			return
		}
		affected[path] = true
		for _, dependent := range g.edges[path] {
			mark(dependent)
		}
	}

	for _, path := range changed {
		if _, exists := g.nodes[path]; exists {
			mark(path)
		}
	}
	return sortedKeys(affected)
}

// Upstream returns every template path transitively depends on, sorted.
func (g *Graph) Upstream(path string) []string {
	upstream := make(map[string]bool)

	var mark func(p string)
	mark = func(p string) {
		for _, dep := range g.parents[p] {
			if !upstream[dep] {
				upstream[dep] = true
				mark(dep)
			}
		}
	}
	mark(path)

	delete(upstream, path)
	return sortedKeys(upstream)
}

// Roots returns templates that reference nothing.
func (g *Graph) Roots() []string {
	var roots []string
	for _, path := range g.Templates() {
		if len(g.parents[path]) == 0 {
			roots = append(roots, path)
		}
	}
	return roots
}

// Leaves returns templates nothing references, typically pages.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, path := range g.Templates() {
		if len(g.edges[path]) == 0 {
			leaves = append(leaves, path)
		}
	}
	return leaves
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate returns a *CycleError when the graph has a cycle.
func (g *Graph) Validate() error {
	if cycle := g.FindCycle(); cycle != nil {
		return &CycleError{Path: cycle}
	}
	return nil
}

// String summarizes the graph size.
func (g *Graph) String() string {
	return fmt.Sprintf("%d templates, %d references", g.NodeCount(), g.EdgeCount())
}
