package main

import (
	"cmp"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/njkast/internal/cli"
	"github.com/leapstack-labs/njkast/internal/cli/commands"
	"github.com/leapstack-labs/njkast/internal/cli/config"
)

// generateCLIDocs writes README.md plus one page per njkast command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := documented(root)

	pages := map[string][]byte{"README.md": overviewPage(root, cmds)}
	for _, cmd := range cmds {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}
	for name, page := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), page, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documented returns the commands that get a page, leaving out help and
// completion.
func documented(root *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range root.Commands() {
		if !cmd.IsAvailableCommand() || cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// overviewPage is README.md: the command list, global flags, the
// configuration layers and the exit status of every command.
func overviewPage(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", root.Short)
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)

	var rows [][]string
	for _, cmd := range cmds {
		link := fmt.Sprintf("[%s](%s.md)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Header(2, "Commands")
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Configuration")
	writeLayers(w)

	w.Header(2, "Exit Codes")
	w.Paragraph("Every command exits 0 on success and 1 on bad usage. The conditions below also exit 1; the error is printed to stderr.")
	rows = nil
	for _, cmd := range cmds {
		for _, cond := range commands.ExitConditions(cmd) {
			rows = append(rows, []string{InlineCode(cmd.Name()), cond})
		}
	}
	w.Table([]string{"Command", "Exits 1 when"}, rows)

	return w.Bytes()
}

// writeLayers documents the order LoadConfig reads its sources in and the
// environment variable for each key.
func writeLayers(w *MarkdownWriter) {
	var layers []string
	for i, l := range config.Layers() {
		layers = append(layers, fmt.Sprintf("%d. %s: %s", i+1, l.Name, l.Source))
	}
	w.Paragraph("Settings are read in this order, each layer overriding the ones before it:\n\n" + strings.Join(layers, "\n"))

	var rows [][]string
	for _, f := range configSchema() {
		rows = append(rows, []string{InlineCode(f.EnvVar()), InlineCode(f.Name)})
	}
	w.Paragraph(fmt.Sprintf("List keys take comma-separated values in the environment, as in %s.",
		InlineCode(config.EnvVar("extensions")+"=.njk,.html")))
	w.Table([]string{"Variable", "Key"}, rows)
}

// commandPage renders one command: usage, flags, exit status and examples.
func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	w.Paragraph(cmp.Or(cmd.Long, cmd.Short))

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		w.Paragraph("See [the overview](README.md#global-options).")
	}

	w.Header(2, "Exit Codes")
	if conds := commands.ExitConditions(cmd); len(conds) > 0 {
		w.Paragraph("Exits 1 when:")
		w.BulletList(conds)
	} else {
		w.Paragraph("Exits 0 unless the usage is wrong.")
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

// writeFlagsTable lists flags with the environment variable that sets the
// same config key.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	keys := make(map[string]bool)
	for _, f := range configSchema() {
		keys[f.Name] = true
	}

	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option = InlineCode("-"+f.Shorthand) + ", " + option
		}
		env := ""
		if key := config.FlagKey(f.Name); keys[key] {
			env = InlineCode(config.EnvVar(key))
		}
		rows = append(rows, []string{option, env, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Environment", "Description"}, rows)
}

// dedent strips the two-space indent cobra examples are written with.
func dedent(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "  ")
	}
	return strings.Join(lines, "\n")
}
