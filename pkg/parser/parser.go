// Package parser builds a unist-style syntax tree from Nunjucks template
// tokens.
//
// # Usage
//
//	root, err := parser.ParseString(`{% from "forms.njk" import field as f %}`)
//	if err != nil {
//	    // handle error
//	}
//
// The parser reads any token.Source; ParseString lexes the input with
// pkg/lexer first.
//
// # Coverage
//
// Comments and the from, import and include directives produce nodes.
// The set, if and macro directives are recognized and produce nothing;
// other keywords are ignored. Directive bodies are not nested: every block
// header is read in source order at the top level. Callers can install
// builders for further keywords with WithDirective.
package parser

import (
	"log/slog"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/lexer"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// Directive is an opened block tag and its keyword.
type Directive struct {
	Open    token.Token // block-start token
	Keyword token.Token // first symbol inside the tag
}

// Name returns the directive keyword, or "" before one was read.
func (d Directive) Name() string {
	return d.Keyword.Value
}

// Position spans the directive from its opening token through end.
func (d Directive) Position(end token.Token) *ast.Position {
	return ast.Span(PositionOf(d.Open), PositionOf(end))
}

// BuilderFunc parses the tokens of a directive after its keyword, through
// the closing delimiter. A nil node adds nothing to the tree.
type BuilderFunc func(c *Cursor, d Directive) (ast.Node, error)

// Unimplemented consumes a directive without producing a node. It is
// registered for keywords that are recognized but not modeled.
func Unimplemented(c *Cursor, d Directive) (ast.Node, error) {
	_, err := c.Skip(d)
	return nil, err
}

func defaultBuilders() map[string]BuilderFunc {
	return map[string]BuilderFunc{
		"from":    buildFromImport,
		"import":  buildDirectImport,
		"include": buildInclude,
		"set":     Unimplemented,
		"if":      Unimplemented,
		"macro":   Unimplemented,
	}
}

// Parser holds parse configuration. It is safe for concurrent use; every
// Parse call keeps its own state.
type Parser struct {
	logger   *slog.Logger
	tags     token.Tags
	builders map[string]BuilderFunc
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for diagnostics about skipped directives.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTags sets the template delimiters. Empty fields keep defaults.
func WithTags(tags token.Tags) Option {
	return func(p *Parser) {
		p.tags = tags.WithDefaults()
	}
}

// WithDirective installs a builder for keyword, replacing any existing one.
// A nil builder removes the keyword so it is ignored like unknown ones.
func WithDirective(keyword string, fn BuilderFunc) Option {
	return func(p *Parser) {
		if fn == nil {
			delete(p.builders, keyword)
			return
		}
		p.builders[keyword] = fn
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		logger:   slog.New(slog.DiscardHandler),
		tags:     token.DefaultTags(),
		builders: defaultBuilders(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tags returns the delimiters the parser was configured with.
func (p *Parser) Tags() token.Tags {
	return p.tags
}

// ParseString lexes and parses input with a parser built from opts.
func ParseString(input string, opts ...Option) (*ast.Root, error) {
	return New(opts...).ParseString(input)
}

// ParseString lexes input with the parser's delimiters and parses it.
func (p *Parser) ParseString(input string) (*ast.Root, error) {
	return p.Parse(lexer.New(input, lexer.WithTags(p.tags)))
}

// Parse consumes src and returns the document tree. Lexer errors from src
// are returned unchanged. The first parse error aborts the parse.
func (p *Parser) Parse(src token.Source) (*ast.Root, error) {
	c := NewCursor(src)
	children := []ast.Node{}

	for {
		tok, err := c.Next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case token.EOF:
			return ast.NewRoot(children, c.Span()), nil

		case token.Comment:
			children = append(children, buildComment(tok, p.tags))

		case token.BlockStart:
			node, err := p.parseDirective(c, tok)
			if err != nil {
				return nil, err
			}
			if node != nil {
				children = append(children, node)
			}
		}
	}
}

// parseDirective finds the keyword of an opened tag and dispatches it.
func (p *Parser) parseDirective(c *Cursor, open token.Token) (ast.Node, error) {
	for {
		tok, err := c.Next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case token.EOF:
			return nil, NewUnexpectedEndOfInputError(pointOf(tok), "")
		case token.BlockEnd:
			p.logger.Debug("skipping empty tag", "line", open.Line, "column", open.Col)
			return nil, nil
		case token.Symbol:
			return p.dispatch(c, Directive{Open: open, Keyword: tok})
		}
	}
}

func (p *Parser) dispatch(c *Cursor, d Directive) (ast.Node, error) {
	build, ok := p.builders[d.Name()]
	if !ok {
		p.logger.Debug("ignoring unknown directive",
			"keyword", d.Name(), "line", d.Keyword.Line, "column", d.Keyword.Col)
		_, err := c.Skip(d)
		return nil, err
	}

	node, err := build(c, d)
	if err != nil {
		return nil, err
	}
	if node == nil {
		p.logger.Debug("directive produced no node",
			"keyword", d.Name(), "line", d.Keyword.Line, "column", d.Keyword.Col)
	}
	return node, nil
}
