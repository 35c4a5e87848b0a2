package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/njkast/internal/testutil"
	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/parser"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// writeTree creates files under a temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pages/home.njk":               `{% include "partials/header.html" %}`,
		"partials/header.html":         `{# header #}`,
		"macros/forms.NUNJUCKS":        ``,
		"README.md":                    `# docs`,
		"node_modules/pkg/index.njk":   ``,
		".git/hooks/pre-commit.html":   ``,
		"vendor/cache/skip.njk":        ``,
		"components/button/button.njk": ``,
	})

	paths, err := Discover(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"components/button/button.njk",
		"macros/forms.NUNJUCKS",
		"pages/home.njk",
		"partials/header.html",
		"vendor/cache/skip.njk",
	}, paths)

	paths, err = Discover(root, Options{
		Extensions: []string{".njk"},
		Exclude:    []string{"node_modules", ".*", "vend*"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"components/button/button.njk", "pages/home.njk"}, paths)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
}

func TestParseAll(t *testing.T) {
	files := map[string]string{
		"b.njk": `{% from "forms.njk" import field %}{% include "x.html" %}`,
		"a.njk": `{# only a comment #}`,
		"c.njk": `{% import "forms.njk" %}`,
		"d.njk": `{% include "y.html" %}{% include "z.html" %}`,
	}
	root := writeTree(t, files)

	results, err := ParseAll(context.Background(), root, []string{"d.njk", "c.njk", "b.njk", "a.njk", "gone.njk"}, Options{
		Workers: 2,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"a.njk", "b.njk", "c.njk", "d.njk", "gone.njk"}, paths, "results are sorted by path")

	assert.NoError(t, results[0].Err)
	assert.Equal(t, Stats{Comments: 1}, results[0].Stats())
	assert.Equal(t, Stats{Imports: 1, Includes: 1}, results[1].Stats())

	var aliasErr *parser.MissingAliasError
	assert.ErrorAs(t, results[2].Err, &aliasErr)
	assert.Nil(t, results[2].Root)
	assert.Equal(t, Stats{}, results[2].Stats())

	assert.Equal(t, Stats{Includes: 2}, results[3].Stats())
	assert.ErrorIs(t, results[4].Err, os.ErrNotExist)
}

func TestParseAll_Cancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.njk": ``})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseAll(ctx, root, []string{"a.njk"}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_CustomParser(t *testing.T) {
	root := writeTree(t, map[string]string{
		"page.njk": `<% include "a.html" %>`,
	})

	results, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Root.Children, "default tags treat <% as text")

	p := parser.New(parser.WithTags(token.Tags{BlockStart: "<%", BlockEnd: "%>"}))
	results, err = Scan(context.Background(), root, Options{Parser: p})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Stats{Includes: 1}, results[0].Stats())
}

func TestWatch(t *testing.T) {
	root := writeTree(t, map[string]string{"page.njk": `{# v1 #}`})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Result, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, Options{Logger: testutil.NewTestLogger(t)}, func(r Result) {
			changes <- r
		})
	}()

	path := filepath.Join(root, "page.njk")
	content := []byte(`{% include "v2.html" %}`)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()

	// Rewrite until the watcher is running and reports the change.
	var got Result
wait:
	for {
		select {
		case got = <-changes:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, content, 0o600))
		case <-deadline:
			t.Fatal("timed out waiting for change notification")
		}
	}

	assert.Equal(t, "page.njk", got.Path)
	require.NoError(t, got.Err)
	require.Len(t, got.Root.Children, 1)
	include, ok := got.Root.Children[0].(*ast.IncludeTemplateNode)
	require.True(t, ok)
	assert.Equal(t, "v2.html", include.Static().Value)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
