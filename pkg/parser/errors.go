package parser

import (
	"fmt"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// Error is the base interface for all parser errors.
type Error interface {
	error
	Position() ast.Point
}

// baseError provides common error functionality.
type baseError struct {
	pos ast.Point
	msg string
}

func (e *baseError) Position() ast.Point { return e.pos }
func (e *baseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

func pointOf(tok token.Token) ast.Point {
	return ast.Point{Line: tok.Line, Column: tok.Col}
}

// ParseError represents malformed directive syntax.
type ParseError struct {
	baseError
}

// NewParseErrorf creates a new parser error with formatting.
func NewParseErrorf(pos ast.Point, format string, args ...any) *ParseError {
	return &ParseError{baseError: baseError{pos: pos, msg: fmt.Sprintf(format, args...)}}
}

// MissingAliasError is returned for a direct import without "as <name>".
type MissingAliasError struct {
	baseError
	Template string // path of the import missing its alias
}

// NewMissingAliasError creates a missing alias error.
func NewMissingAliasError(pos ast.Point, template string) *MissingAliasError {
	return &MissingAliasError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("missing alias for import %q", template)},
		Template:  template,
	}
}

// MissingTemplateError is returned when a directive closes before its
// template path literal.
type MissingTemplateError struct {
	baseError
	Directive string
}

// NewMissingTemplateError creates a missing template error.
func NewMissingTemplateError(pos ast.Point, directive string) *MissingTemplateError {
	return &MissingTemplateError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("missing template path in '%s' directive", directive)},
		Directive: directive,
	}
}

// UnexpectedEndOfInputError is returned when the token stream ends inside
// a directive.
type UnexpectedEndOfInputError struct {
	baseError
	Directive string // keyword of the open directive, empty before the keyword
}

// NewUnexpectedEndOfInputError creates an end of input error.
func NewUnexpectedEndOfInputError(pos ast.Point, directive string) *UnexpectedEndOfInputError {
	msg := "unexpected end of input in tag"
	if directive != "" {
		msg = fmt.Sprintf("unexpected end of input in '%s' directive", directive)
	}
	return &UnexpectedEndOfInputError{
		baseError: baseError{pos: pos, msg: msg},
		Directive: directive,
	}
}
