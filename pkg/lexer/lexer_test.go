package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/njkast/pkg/token"
)

var _ token.Source = (*Lexer)(nil)

type want struct {
	kind  token.Kind
	value string
	line  int
	col   int
}

func assertTokens(t *testing.T, expected []want, tokens []token.Token) {
	t.Helper()
	require.Len(t, tokens, len(expected), "wrong number of tokens: %v", tokens)
	for i, exp := range expected {
		assert.Equal(t, exp.kind, tokens[i].Kind, "token[%d] kind", i)
		assert.Equal(t, exp.value, tokens[i].Value, "token[%d] value", i)
		assert.Equal(t, exp.line, tokens[i].Line, "token[%d] line", i)
		assert.Equal(t, exp.col, tokens[i].Col, "token[%d] col", i)
	}
}

func TestLexer_PlainText(t *testing.T) {
	tokens, err := New("hello world").Tokenize()
	require.NoError(t, err, "unexpected error")

	assertTokens(t, []want{
		{token.Data, "hello world", 0, 0},
		{token.EOF, "", 0, 11},
	}, tokens)
}

func TestLexer_EmptyInput(t *testing.T) {
	tokens, err := New("").Tokenize()
	require.NoError(t, err)
	assertTokens(t, []want{{token.EOF, "", 0, 0}}, tokens)
}

func TestLexer_ImportTag(t *testing.T) {
	tokens, err := New(`{% import "a.njk" as a %}`).Tokenize()
	require.NoError(t, err, "unexpected error")

	assertTokens(t, []want{
		{token.BlockStart, "{%", 0, 0},
		{token.Whitespace, " ", 0, 2},
		{token.Symbol, "import", 0, 3},
		{token.Whitespace, " ", 0, 9},
		{token.String, "a.njk", 0, 10},
		{token.Whitespace, " ", 0, 17},
		{token.Symbol, "as", 0, 18},
		{token.Whitespace, " ", 0, 20},
		{token.Symbol, "a", 0, 21},
		{token.Whitespace, " ", 0, 22},
		{token.BlockEnd, "%}", 0, 23},
		{token.EOF, "", 0, 25},
	}, tokens)

	assert.Equal(t, `"a.njk"`, tokens[4].Raw, "string raw text keeps quotes")
}

func TestLexer_TrimMarkers(t *testing.T) {
	tokens, err := New(`{%- include "x" -%}`).Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 8)
	assert.Equal(t, "{%-", tokens[0].Value)
	assert.Equal(t, token.BlockStart, tokens[0].Kind)
	assert.Equal(t, "-%}", tokens[6].Value)
	assert.Equal(t, token.BlockEnd, tokens[6].Kind)
}

func TestLexer_Variable(t *testing.T) {
	tokens, err := New("Hi {{ name }}!").Tokenize()
	require.NoError(t, err)

	assertTokens(t, []want{
		{token.Data, "Hi ", 0, 0},
		{token.VariableStart, "{{", 0, 3},
		{token.Whitespace, " ", 0, 5},
		{token.Symbol, "name", 0, 6},
		{token.Whitespace, " ", 0, 10},
		{token.VariableEnd, "}}", 0, 11},
		{token.Data, "!", 0, 13},
		{token.EOF, "", 0, 14},
	}, tokens)
}

func TestLexer_Comments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []want
	}{
		{
			name:  "inline",
			input: "a{# note #}b",
			expected: []want{
				{token.Data, "a", 0, 0},
				{token.Comment, "{# note #}", 0, 1},
				{token.Data, "b", 0, 11},
				{token.EOF, "", 0, 12},
			},
		},
		{
			name:  "multi-line",
			input: "{#\nx\n#}",
			expected: []want{
				{token.Comment, "{#\nx\n#}", 0, 0},
				{token.EOF, "", 2, 2},
			},
		},
		{
			name:  "tags inside comment are text",
			input: "{# {% include 'a' %} #}",
			expected: []want{
				{token.Comment, "{# {% include 'a' %} #}", 0, 0},
				{token.EOF, "", 0, 23},
			},
		},
		{
			name:  "trim markers",
			input: "{#- x -#}",
			expected: []want{
				{token.Comment, "{#- x -#}", 0, 0},
				{token.EOF, "", 0, 9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := New(tt.input).Tokenize()
			require.NoError(t, err)
			assertTokens(t, tt.expected, tokens)
		})
	}
}

func TestLexer_Literals(t *testing.T) {
	tokens, err := New(`{{ 12 3.5 true none null foo }}`).Tokenize()
	require.NoError(t, err)

	var got []token.Token
	for _, tok := range tokens {
		if tok.IsSignificant() {
			got = append(got, tok)
		}
	}

	expected := []struct {
		kind  token.Kind
		value string
	}{
		{token.VariableStart, "{{"},
		{token.Int, "12"},
		{token.Float, "3.5"},
		{token.Boolean, "true"},
		{token.None, "none"},
		{token.None, "null"},
		{token.Symbol, "foo"},
		{token.VariableEnd, "}}"},
	}
	require.Len(t, got, len(expected))
	for i, exp := range expected {
		assert.Equal(t, exp.kind, got[i].Kind, "token[%d] kind", i)
		assert.Equal(t, exp.value, got[i].Value, "token[%d] value", i)
	}
}

func TestLexer_Operators(t *testing.T) {
	tokens, err := New(`{{ a == b // c ** d !== e | f ~ (g, [h]: {}) }}`).Tokenize()
	require.NoError(t, err)

	var kinds []token.Kind
	var values []string
	for _, tok := range tokens {
		if tok.IsSignificant() {
			kinds = append(kinds, tok.Kind)
			values = append(values, tok.Value)
		}
	}

	assert.Equal(t, []string{
		"{{", "a", "==", "b", "//", "c", "**", "d", "!==", "e", "|", "f", "~",
		"(", "g", ",", "[", "h", "]", ":", "{", "}", ")", "}}",
	}, values)
	assert.Equal(t, token.Operator, kinds[2])
	assert.Equal(t, token.Pipe, kinds[10])
	assert.Equal(t, token.Tilde, kinds[12])
	assert.Equal(t, token.LeftParen, kinds[13])
	assert.Equal(t, token.Comma, kinds[15])
	assert.Equal(t, token.LeftBracket, kinds[16])
	assert.Equal(t, token.RightBracket, kinds[18])
	assert.Equal(t, token.Colon, kinds[19])
	assert.Equal(t, token.LeftCurly, kinds[20])
	assert.Equal(t, token.RightCurly, kinds[21])
	assert.Equal(t, token.RightParen, kinds[22])
}

func TestLexer_Strings(t *testing.T) {
	tokens, err := New(`{{ "a\nb" 'it\'s' }}`).Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 8)
	assert.Equal(t, token.String, tokens[2].Kind)
	assert.Equal(t, "a\nb", tokens[2].Value)
	assert.Equal(t, `"a\nb"`, tokens[2].Raw)
	assert.Equal(t, "it's", tokens[4].Value)
	assert.Equal(t, `'it\'s'`, tokens[4].Raw)
}

func TestLexer_Regex(t *testing.T) {
	tokens, err := New(`{{ r/ab+c/gi }}`).Tokenize()
	require.NoError(t, err)

	require.Len(t, tokens, 6)
	assert.Equal(t, token.Regex, tokens[2].Kind)
	assert.Equal(t, "/ab+c/gi", tokens[2].Value)
	assert.Equal(t, "r/ab+c/gi", tokens[2].Raw)
}

func TestLexer_CustomTags(t *testing.T) {
	l := New("<% include 'a' %> <# c #>", WithTags(token.Tags{
		BlockStart:   "<%",
		BlockEnd:     "%>",
		CommentStart: "<#",
		CommentEnd:   "#>",
	}))
	tokens, err := l.Tokenize()
	require.NoError(t, err)

	assertTokens(t, []want{
		{token.BlockStart, "<%", 0, 0},
		{token.Whitespace, " ", 0, 2},
		{token.Symbol, "include", 0, 3},
		{token.Whitespace, " ", 0, 10},
		{token.String, "a", 0, 11},
		{token.Whitespace, " ", 0, 14},
		{token.BlockEnd, "%>", 0, 15},
		{token.Data, " ", 0, 17},
		{token.Comment, "<# c #>", 0, 18},
		{token.EOF, "", 0, 25},
	}, tokens)
}

func TestLexer_ColumnsCountRunes(t *testing.T) {
	tokens, err := New("é{{ x }}").Tokenize()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(tokens), 2)
	assert.Equal(t, "é", tokens[0].Value)
	assert.Equal(t, 1, tokens[1].Col, "multi-byte runes advance one column")
}

func TestLexer_Lines(t *testing.T) {
	tokens, err := New("a\n{% b %}\n").Tokenize()
	require.NoError(t, err)

	assertTokens(t, []want{
		{token.Data, "a\n", 0, 0},
		{token.BlockStart, "{%", 1, 0},
		{token.Whitespace, " ", 1, 2},
		{token.Symbol, "b", 1, 3},
		{token.Whitespace, " ", 1, 4},
		{token.BlockEnd, "%}", 1, 5},
		{token.Data, "\n", 1, 7},
		{token.EOF, "", 2, 0},
	}, tokens)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		col   int
		msg   string
	}{
		{"stray comment end", "a #} b", 0, 2, "unexpected end of comment"},
		{"unterminated comment", "x\n{# open", 1, 0, "expected end of comment, got end of file"},
		{"unterminated string", `{{ "abc`, 0, 3, "unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			_, err := l.Tokenize()
			require.Error(t, err)

			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.line, lexErr.Line)
			assert.Equal(t, tt.col, lexErr.Col)
			assert.Contains(t, lexErr.Error(), tt.msg)

			// Errors are sticky.
			_, again := l.Next()
			assert.Equal(t, err, again)
		})
	}
}
