package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// buildComment turns a whole comment token into a CommentNode.
//
// A trim marker is a "-" directly inside a delimiter and followed (or, at
// the end, preceded) by whitespace: {#- note -#}. The node spans the inner
// text without delimiters, markers or padding.
func buildComment(tok token.Token, tags token.Tags) *ast.CommentNode {
	text := tok.Text()

	offset := 0
	body := text
	if strings.HasPrefix(body, tags.CommentStart) {
		body = body[len(tags.CommentStart):]
		offset = len(tags.CommentStart)
	}
	body = strings.TrimSuffix(body, tags.CommentEnd)

	trimLeft := hasLeftMarker(body)
	if trimLeft {
		body = body[1:]
		offset++
	}
	trimRight := hasRightMarker(body)
	if trimRight {
		body = body[:len(body)-1]
	}

	trimmed := strings.TrimLeftFunc(body, unicode.IsSpace)
	offset += len(body) - len(trimmed)
	value := strings.TrimRightFunc(trimmed, unicode.IsSpace)

	start := advance(ast.Point{Line: tok.Line, Column: tok.Col}, text[:offset])
	pos := &ast.Position{Start: start, End: advance(start, value)}

	return ast.NewComment(value, trimLeft, trimRight, pos)
}

func hasLeftMarker(body string) bool {
	if !strings.HasPrefix(body, "-") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(body[1:])
	return unicode.IsSpace(r)
}

func hasRightMarker(body string) bool {
	if !strings.HasSuffix(body, "-") {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(body[:len(body)-1])
	return unicode.IsSpace(r)
}
