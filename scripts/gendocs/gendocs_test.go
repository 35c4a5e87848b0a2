package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedent(t *testing.T) {
	got := dedent("  # Scan\n  njkast scan\n\n    nested\n")
	assert.Equal(t, "# Scan\nnjkast scan\n\n  nested", got)
}

func TestConfigFieldEnvVar(t *testing.T) {
	assert.Equal(t, "NJKAST_INDEX_PATH", ConfigField{Name: "index_path"}.EnvVar())
	assert.Equal(t, "NJKAST_TAGS_BLOCK_START", ConfigField{Name: "tags.block_start"}.EnvVar())
}

func TestMarkdownWriter(t *testing.T) {
	w := NewMarkdownWriter()
	w.Header(2, "Options")
	w.Table([]string{"Option", "Description"}, [][]string{{InlineCode("--all"), "a|b"}})
	w.CodeBlock("bash", "njkast scan\n")

	out := string(w.Bytes())
	assert.True(t, strings.HasPrefix(out, "## Options\n\n"))
	assert.Contains(t, out, "| `--all` | a\\|b |")
	assert.Contains(t, out, "```bash\nnjkast scan\n```")
}

func TestGenerateDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(filepath.Join(dir, "cli")))
	require.NoError(t, generateConfigDocs(filepath.Join(dir, "reference")))

	for _, name := range []string{"README", "parse", "tokens", "scan", "index", "deps", "graph", "repl", "version"} {
		_, err := os.Stat(filepath.Join(dir, "cli", name+".md"))
		assert.NoError(t, err, "missing %s.md", name)
	}

	_, err := os.Stat(filepath.Join(dir, "cli", "completion.md"))
	assert.True(t, os.IsNotExist(err))

	page, err := os.ReadFile(filepath.Join(dir, "cli", "parse.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "njkast parse [file...]")
	assert.Contains(t, string(page), "`--watch`")
	assert.Contains(t, string(page), "## Exit Codes\n\nExits 1 when:\n\n- a template fails to parse\n")

	page, err = os.ReadFile(filepath.Join(dir, "cli", "version.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Exits 0 unless the usage is wrong.")

	overview, err := os.ReadFile(filepath.Join(dir, "cli", "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(overview), "| `--index` | `NJKAST_INDEX_PATH` |")
	assert.Contains(t, string(overview), "| `-o`, `--output` | `NJKAST_OUTPUT` |")
	assert.Contains(t, string(overview), "| `--config` |  |")
	assert.Contains(t, string(overview), "1. defaults: built-in values\n2. file: njkast.yaml or njkast.yml")
	assert.Contains(t, string(overview), "4. flags: command-line flags")
	assert.Contains(t, string(overview), "| `NJKAST_TAGS_BLOCK_START` | `tags.block_start` |")
	assert.Contains(t, string(overview), "| `graph` | indexed templates import or include each other in a cycle |")
	assert.NotContains(t, string(overview), "| `index` | any template fails to parse |")

	ref, err := os.ReadFile(filepath.Join(dir, "reference", "configuration.md"))
	require.NoError(t, err)
	assert.Contains(t, string(ref), "| `index_path` | string | `.njkast/index.db` |")
}
