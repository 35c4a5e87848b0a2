package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/token"
)

func TestPositionOf(t *testing.T) {
	tests := []struct {
		name string
		tok  token.Token
		want *ast.Position
	}{
		{
			name: "single line",
			tok:  token.Token{Kind: token.Symbol, Value: "include", Line: 1, Col: 4},
			want: pos(1, 4, 1, 11),
		},
		{
			name: "raw text wins over value",
			tok:  token.Token{Kind: token.String, Value: "a.njk", Raw: `"a.njk"`, Line: 1, Col: 9},
			want: pos(1, 9, 1, 16),
		},
		{
			name: "multi-line ends on last line",
			tok:  token.Token{Kind: token.Data, Value: "ab\ncd", Line: 3, Col: 5},
			want: pos(3, 5, 4, 3),
		},
		{
			name: "trailing newline",
			tok:  token.Token{Kind: token.Data, Value: "x\n", Line: 1, Col: 1},
			want: pos(1, 1, 2, 1),
		},
		{
			name: "columns count runes",
			tok:  token.Token{Kind: token.Data, Value: "héllo", Line: 1, Col: 1},
			want: pos(1, 1, 1, 6),
		},
		{
			name: "empty",
			tok:  token.Token{Kind: token.EOF, Line: 2, Col: 7},
			want: pos(2, 7, 2, 7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositionOf(tt.tok))
		})
	}
}

func TestParse_MultiLineCommentPosition(t *testing.T) {
	node := parseOne[*ast.CommentNode](t, "{# line one\nline two #}")

	assert.Equal(t, "line one\nline two", node.Value)
	assert.Equal(t, pos(1, 4, 2, 9), node.Pos(), "end column is measured on the last line")
}

func TestCursor_Renormalizes(t *testing.T) {
	c := NewCursor(token.FromSlice([]token.Token{
		{Kind: token.Data, Value: "a", Line: 0, Col: 0},
		{Kind: token.Data, Value: "b", Line: 4, Col: 2},
	}))
	assert.Nil(t, c.Span(), "nothing read yet")

	tok, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, tok.Line)
	assert.Equal(t, 1, tok.Col)

	tok, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, 5, tok.Line)
	assert.Equal(t, 3, tok.Col)

	tok, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, tok.Kind)

	assert.Equal(t, pos(1, 1, 5, 4), c.Span(), "EOF does not extend the span")
}

func TestCursor_Scan(t *testing.T) {
	src := token.FromSlice([]token.Token{
		{Kind: token.Whitespace, Value: " "},
		{Kind: token.Symbol, Value: "a"},
		{Kind: token.Comma, Value: ","},
		{Kind: token.Whitespace, Value: " "},
		{Kind: token.BlockEnd, Value: "%}"},
		{Kind: token.Data, Value: "after"},
	})
	c := NewCursor(src)

	var seen []string
	end, err := c.Scan(Directive{}, func(tok token.Token) error {
		seen = append(seen, tok.Value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, token.BlockEnd, end.Kind)
	assert.Equal(t, []string{"a", ","}, seen, "whitespace is not significant")

	next, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "after", next.Value, "scan stops right after the block end")
}
