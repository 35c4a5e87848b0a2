package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/internal/index"
	"github.com/leapstack-labs/njkast/pkg/lexer"
)

const replPrompt = "njk> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse template snippets interactively",
		Long: `Start an interactive session. Each line is parsed as a template and its
tree is printed.

Commands:
  .tokens <template>  Print the tokens of a snippet
  .json <template>    Print the tree as JSON
  .help               Show this help
  .quit               Exit`,
		Annotations: exitWhen(
			"the terminal cannot be set up for line editing",
		),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}

	return cmd
}

func runREPL(cmd *cobra.Command) error {
	c := NewCommandContext(cmd)

	// History lives next to the index.
	var historyFile string
	if c.Cfg.IndexPath != index.MemoryPath {
		historyFile = filepath.Join(filepath.Dir(c.Cfg.IndexPath), "repl_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "njkast REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	// Trees are always drawn as text in the session.
	session := &replSession{
		ctx: c,
		r:   output.NewRendererWithTTY(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.Renderer.IsTTY(), output.ModeText),
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if session.eval(line) {
			return nil
		}
	}
}

type replSession struct {
	ctx *CommandContext
	r   *output.Renderer
}

// eval runs one input line and reports whether the session should end.
func (s *replSession) eval(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, ".") {
		s.printTree(line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.r.Writer())
	case ".tokens":
		s.printTokens(arg)
	case ".json":
		s.printJSON(arg)
	default:
		s.r.Error(fmt.Sprintf("unknown command %s (try .help)", command))
	}
	return false
}

func (s *replSession) printTree(src string) {
	root, err := s.ctx.Parser.ParseString(src)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	s.r.Tree(root)
}

func (s *replSession) printJSON(src string) {
	root, err := s.ctx.Parser.ParseString(src)
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	if err := s.r.JSON(root); err != nil {
		s.r.Error(err.Error())
	}
}

func (s *replSession) printTokens(src string) {
	toks, err := lexer.New(src, lexer.WithTags(s.ctx.Cfg.Tags)).Tokenize()
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	for _, info := range tokenInfos(toks, true) {
		s.r.Printf("%d:%d\t%-12s %q\n", info.Line, info.Column, info.Kind, info.Value)
	}
}

func printREPLHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Commands:
  .tokens <template>  Print the tokens of a snippet
  .json <template>    Print the tree as JSON
  .help               Show this help
  .quit               Exit

Any other input is parsed and its tree printed.`)
}
