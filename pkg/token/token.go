// Package token defines the lexical tokens exchanged between the template
// scanner and the parser.
//
// Token kinds mirror the Nunjucks lexer so that any scanner producing the
// same stream can drive the parser.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

// Kind constants. EOF is the end-of-stream sentinel and never carries text.
const (
	EOF Kind = iota
	String
	Whitespace
	Data
	BlockStart
	BlockEnd
	VariableStart
	VariableEnd
	Comment
	LeftParen
	RightParen
	LeftBracket
	RightBracket
	LeftCurly
	RightCurly
	Operator
	Comma
	Colon
	Tilde
	Pipe
	Int
	Float
	Boolean
	None
	Symbol
	Special
	Regex
)

var kindNames = map[Kind]string{
	EOF:           "eof",
	String:        "string",
	Whitespace:    "whitespace",
	Data:          "data",
	BlockStart:    "block-start",
	BlockEnd:      "block-end",
	VariableStart: "variable-start",
	VariableEnd:   "variable-end",
	Comment:       "comment",
	LeftParen:     "left-paren",
	RightParen:    "right-paren",
	LeftBracket:   "left-bracket",
	RightBracket:  "right-bracket",
	LeftCurly:     "left-curly",
	RightCurly:    "right-curly",
	Operator:      "operator",
	Comma:         "comma",
	Colon:         "colon",
	Tilde:         "tilde",
	Pipe:          "pipe",
	Int:           "int",
	Float:         "float",
	Boolean:       "boolean",
	None:          "none",
	Symbol:        "symbol",
	Special:       "special",
	Regex:         "regex",
}

// String returns the Nunjucks name of the kind, e.g. "block-start".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind returns the kind with the given Nunjucks name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return EOF, false
}

// Token is a classified lexical unit.
//
// Line and Col are 0-based, the convention of the Nunjucks scanner.
// Consumers that build trees renormalize them before use.
type Token struct {
	Kind  Kind
	Value string // semantic text; strings are unquoted and unescaped
	Raw   string // exact source text matched, empty when same as Value
	Line  int
	Col   int
}

// Text returns the source text the token was matched from.
func (t Token) Text() string {
	if t.Raw != "" {
		return t.Raw
	}
	return t.Value
}

// IsSignificant reports whether the token carries grammar, i.e. it is
// neither whitespace nor the end-of-stream marker.
func (t Token) IsSignificant() bool {
	return t.Kind != Whitespace && t.Kind != EOF
}

// IsSymbol reports whether the token is the symbol with the given name.
func (t Token) IsSymbol(name string) bool {
	return t.Kind == Symbol && t.Value == name
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("%d:%d eof", t.Line, t.Col)
	}
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Col, t.Kind, t.Value)
}
