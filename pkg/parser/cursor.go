package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// Cursor is a forward-only reader over a token source. Tokens returned by
// the cursor carry 1-based Line and Col.
type Cursor struct {
	src   token.Source
	first token.Token
	last  token.Token
	count int
}

// NewCursor wraps src.
func NewCursor(src token.Source) *Cursor {
	return &Cursor{src: src}
}

// Next returns the following token renormalized to 1-based coordinates.
func (c *Cursor) Next() (token.Token, error) {
	tok, err := c.src.Next()
	if err != nil {
		return token.Token{}, err
	}
	tok.Line++
	tok.Col++

	if tok.Kind != token.EOF {
		if c.count == 0 {
			c.first = tok
		}
		c.last = tok
		c.count++
	}
	return tok, nil
}

// Scan calls fn for every significant token up to the directive's closing
// delimiter and returns the block-end token. Reaching the end of the stream
// first fails with UnexpectedEndOfInputError.
func (c *Cursor) Scan(d Directive, fn func(tok token.Token) error) (token.Token, error) {
	for {
		tok, err := c.Next()
		if err != nil {
			return tok, err
		}

		switch {
		case tok.Kind == token.BlockEnd:
			return tok, nil
		case tok.Kind == token.EOF:
			return tok, NewUnexpectedEndOfInputError(pointOf(tok), d.Name())
		case !tok.IsSignificant():
			continue
		}

		if fn != nil {
			if err := fn(tok); err != nil {
				return tok, err
			}
		}
	}
}

// Skip consumes the rest of the directive.
func (c *Cursor) Skip(d Directive) (token.Token, error) {
	return c.Scan(d, nil)
}

// Span returns the position covering every token read so far, or nil if
// none was read.
func (c *Cursor) Span() *ast.Position {
	if c.count == 0 {
		return nil
	}
	return ast.Span(PositionOf(c.first), PositionOf(c.last))
}

// templateLiteral advances to the first string token of the directive.
func (c *Cursor) templateLiteral(d Directive) (token.Token, error) {
	for {
		tok, err := c.Next()
		if err != nil {
			return tok, err
		}
		switch tok.Kind {
		case token.String:
			return tok, nil
		case token.BlockEnd:
			return tok, NewMissingTemplateError(pointOf(d.Open), d.Name())
		case token.EOF:
			return tok, NewUnexpectedEndOfInputError(pointOf(tok), d.Name())
		}
	}
}

// PositionOf returns the span of a cursor token. The end is derived from
// the matched source text and follows line breaks inside it.
func PositionOf(tok token.Token) *ast.Position {
	start := ast.Point{Line: tok.Line, Column: tok.Col}
	return &ast.Position{Start: start, End: advance(start, tok.Text())}
}

// advance returns the point reached after reading s from p.
func advance(p ast.Point, s string) ast.Point {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return ast.Point{
			Line:   p.Line + strings.Count(s, "\n"),
			Column: utf8.RuneCountInString(s[i+1:]) + 1,
		}
	}
	return ast.Point{Line: p.Line, Column: p.Column + utf8.RuneCountInString(s)}
}
