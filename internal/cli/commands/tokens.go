package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/njkast/internal/cli/output"
	"github.com/leapstack-labs/njkast/pkg/lexer"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// TokenInfo is the structured output of one token. Line and column are
// 1-based.
type TokenInfo struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Raw    string `json:"raw,omitempty"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a template",
		Long: `Tokenize a template with the configured delimiters and print every token
with its 1-based position. Whitespace tokens are hidden unless --all is set.

Use "-" to read from stdin.`,
		Example: `  # Show the tokens of a template
  njkast tokens pages/home.njk

  # Include whitespace tokens, as JSON
  njkast tokens pages/home.njk --all -o json`,
		Annotations: exitWhen(
			"the file cannot be read",
			"the source cannot be tokenized",
		),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args[0], all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include whitespace tokens")

	return cmd
}

func runTokens(cmd *cobra.Command, path string, all bool) error {
	c := NewCommandContext(cmd)

	src, err := readSource(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	toks, err := lexer.New(src, lexer.WithTags(c.Cfg.Tags)).Tokenize()
	if err != nil {
		return fmt.Errorf("%s: %w", displayName(path), err)
	}

	infos := tokenInfos(toks, all)
	if ok, err := c.Renderer.Structured(infos); ok {
		return err
	}
	renderTokens(c.Renderer, displayName(path), infos)
	return nil
}

func tokenInfos(toks []token.Token, all bool) []TokenInfo {
	infos := make([]TokenInfo, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind == token.EOF || (!all && tok.Kind == token.Whitespace) {
			continue
		}
		info := TokenInfo{
			Line:   tok.Line + 1,
			Column: tok.Col + 1,
			Kind:   tok.Kind.String(),
			Value:  tok.Value,
		}
		if tok.Raw != tok.Value {
			info.Raw = tok.Raw
		}
		infos = append(infos, info)
	}
	return infos
}

func renderTokens(r *output.Renderer, name string, infos []TokenInfo) {
	r.Header(1, fmt.Sprintf("Tokens of %s (%d)", name, len(infos)))

	rows := make([][]any, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []any{
			fmt.Sprintf("%d:%d", info.Line, info.Column),
			info.Kind,
			strconv.Quote(info.Value),
		})
	}
	r.Table([]string{"Pos", "Kind", "Value"}, rows)
}
