package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{BlockStart, "block-start"},
		{BlockEnd, "block-end"},
		{Symbol, "symbol"},
		{LeftCurly, "left-curly"},
		{EOF, "eof"},
		{Kind(999), "kind(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("variable-end")
	require.True(t, ok)
	assert.Equal(t, VariableEnd, k)

	_, ok = ParseKind("not-a-kind")
	assert.False(t, ok)
}

func TestToken_Text(t *testing.T) {
	str := Token{Kind: String, Value: "a.njk", Raw: `"a.njk"`}
	assert.Equal(t, `"a.njk"`, str.Text())

	sym := Token{Kind: Symbol, Value: "import"}
	assert.Equal(t, "import", sym.Text())
}

func TestToken_Predicates(t *testing.T) {
	assert.False(t, Token{Kind: Whitespace, Value: " "}.IsSignificant())
	assert.False(t, Token{Kind: EOF}.IsSignificant())
	assert.True(t, Token{Kind: Operator, Value: "+"}.IsSignificant())

	assert.True(t, Token{Kind: Symbol, Value: "as"}.IsSymbol("as"))
	assert.False(t, Token{Kind: String, Value: "as"}.IsSymbol("as"))
}

func TestSliceSource(t *testing.T) {
	src := FromSlice([]Token{
		{Kind: BlockStart, Value: "{%"},
		{Kind: Symbol, Value: "include", Line: 0, Col: 3},
	})

	tok, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, BlockStart, tok.Kind)

	tok, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, "include", tok.Value)

	// Exhausted streams keep returning EOF.
	for i := 0; i < 3; i++ {
		tok, err = src.Next()
		require.NoError(t, err)
		assert.Equal(t, EOF, tok.Kind)
		assert.Equal(t, 3, tok.Col, "EOF should sit at the last token")
	}
}

func TestCollect(t *testing.T) {
	tokens := []Token{
		{Kind: Data, Value: "hello"},
		{Kind: EOF},
	}
	got, err := Collect(FromSlice(tokens))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Value)
}

func TestTags(t *testing.T) {
	tags := Tags{BlockStart: "<%", BlockEnd: "%>"}.WithDefaults()
	assert.Equal(t, "<%", tags.BlockStart)
	assert.Equal(t, "{{", tags.VariableStart)
	assert.Equal(t, "#}", tags.CommentEnd)
	require.NoError(t, tags.Validate())

	clash := DefaultTags()
	clash.CommentStart = clash.BlockStart
	assert.Error(t, clash.Validate())

	empty := DefaultTags()
	empty.BlockEnd = ""
	assert.Error(t, empty.Validate())
}
