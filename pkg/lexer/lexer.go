// Package lexer scans Nunjucks template source into tokens.
//
// The scanner follows the Nunjucks lexer: outside of tags it produces data
// and whole-comment tokens; inside {% %} and {{ }} it produces strings,
// symbols, numbers, operators and punctuation. Positions are 0-based.
package lexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/njkast/pkg/token"
)

const (
	whitespaceChars = " \n\t\r\u00a0"
	delimChars      = "()[]{}%*-+~/#,:|.<>=!"
	regexFlags      = "gimy"
)

var (
	complexOps = map[string]bool{
		"==": true, "===": true, "!=": true, "!==": true,
		"<=": true, ">=": true, "//": true, "**": true,
	}
	intPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)
)

// Lexer tokenizes a template string. It implements token.Source.
type Lexer struct {
	input  string
	tags   token.Tags
	pos    int // byte offset of the current rune
	line   int // current line (0-based)
	col    int // current column in runes (0-based)
	inCode bool
	err    error

	lastLine int // line at start of current token
	lastCol  int // column at start of current token
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithTags overrides the template delimiters. Empty fields keep defaults.
func WithTags(tags token.Tags) Option {
	return func(l *Lexer) {
		l.tags = tags.WithDefaults()
	}
}

// New creates a lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input: input,
		tags:  token.DefaultTags(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize converts the whole input into a slice of tokens ending with EOF.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// Next returns the next token. After the input is exhausted it returns EOF
// tokens; after an error it keeps returning that error.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	l.markStart()
	if l.finished() {
		return l.emit(token.EOF, ""), nil
	}

	var (
		tok token.Token
		err error
	)
	if l.inCode {
		tok, err = l.scanCode()
	} else {
		tok, err = l.scanOutside()
	}
	if err != nil {
		l.err = err
		return token.Token{}, err
	}
	return tok, nil
}

// scanOutside scans data, comments and opening delimiters.
func (l *Lexer) scanOutside() (token.Token, error) {
	if s, ok := l.extractAny(l.tags.BlockStart+"-", l.tags.BlockStart); ok {
		l.inCode = true
		return l.emit(token.BlockStart, s), nil
	}
	if s, ok := l.extractAny(l.tags.VariableStart+"-", l.tags.VariableStart); ok {
		l.inCode = true
		return l.emit(token.VariableStart, s), nil
	}

	start := l.pos
	inComment := false
	if l.matchString(l.tags.CommentStart) {
		inComment = true
		l.skip(l.tags.CommentStart)
	}

	beginChars := firstChars(l.tags.BlockStart, l.tags.VariableStart, l.tags.CommentStart, l.tags.CommentEnd)
	for {
		if !l.extractUntil(beginChars) {
			break
		}
		if !inComment && (l.matchString(l.tags.BlockStart) ||
			l.matchString(l.tags.VariableStart) ||
			l.matchString(l.tags.CommentStart)) {
			break
		}
		if l.matchString(l.tags.CommentEnd) {
			if !inComment {
				return token.Token{}, l.errorf("unexpected end of comment")
			}
			l.skip(l.tags.CommentEnd)
			return l.emit(token.Comment, l.input[start:l.pos]), nil
		}
		l.advance()
	}

	if inComment {
		return token.Token{}, l.startErrorf("expected end of comment, got end of file")
	}
	return l.emit(token.Data, l.input[start:l.pos]), nil
}

// scanCode scans one token inside a block or variable tag.
func (l *Lexer) scanCode() (token.Token, error) {
	start := l.pos
	cur := l.peek()

	switch {
	case cur == '"' || cur == '\'':
		val, err := l.readString(cur)
		if err != nil {
			return token.Token{}, err
		}
		return l.emitRaw(token.String, val, l.input[start:l.pos]), nil

	case strings.ContainsRune(whitespaceChars, cur):
		for !l.finished() && strings.ContainsRune(whitespaceChars, l.peek()) {
			l.advance()
		}
		return l.emit(token.Whitespace, l.input[start:l.pos]), nil
	}

	if s, ok := l.extractAny("-"+l.tags.BlockEnd, l.tags.BlockEnd); ok {
		l.inCode = false
		return l.emit(token.BlockEnd, s), nil
	}
	if s, ok := l.extractAny("-"+l.tags.VariableEnd, l.tags.VariableEnd); ok {
		l.inCode = false
		return l.emit(token.VariableEnd, s), nil
	}

	if cur == 'r' && l.peekAt(1) == '/' {
		return l.readRegex(), nil
	}

	if strings.ContainsRune(delimChars, cur) {
		return l.readDelimiter(), nil
	}

	for !l.finished() && !strings.ContainsRune(whitespaceChars+delimChars, l.peek()) {
		l.advance()
	}
	word := l.input[start:l.pos]

	switch {
	case word == "":
		return token.Token{}, l.startErrorf("unexpected value while parsing: %q", string(cur))
	case intPattern.MatchString(word):
		if l.peek() == '.' {
			l.advance()
			for !l.finished() && isDigit(l.peek()) {
				l.advance()
			}
			return l.emit(token.Float, l.input[start:l.pos]), nil
		}
		return l.emit(token.Int, word), nil
	case word == "true" || word == "false":
		return l.emit(token.Boolean, word), nil
	case word == "none" || word == "null":
		return l.emit(token.None, word), nil
	default:
		return l.emit(token.Symbol, word), nil
	}
}

// readString reads a quoted string and returns its unescaped value.
func (l *Lexer) readString(quote rune) (string, error) {
	l.advance()
	var b strings.Builder
	for !l.finished() && l.peek() != quote {
		cur := l.peek()
		if cur != '\\' {
			b.WriteRune(cur)
			l.advance()
			continue
		}
		l.advance()
		if l.finished() {
			break
		}
		switch esc := l.peek(); esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(esc)
		}
		l.advance()
	}
	if l.finished() {
		return "", l.startErrorf("unterminated string")
	}
	l.advance()
	return b.String(), nil
}

// readRegex reads an r/body/flags literal. Value holds "/body/flags".
func (l *Lexer) readRegex() token.Token {
	start := l.pos
	l.advance() // r
	l.advance() // /
	prev := '/'
	for !l.finished() {
		cur := l.peek()
		l.advance()
		if cur == '/' && prev != '\\' {
			break
		}
		prev = cur
	}
	for !l.finished() && strings.ContainsRune(regexFlags, l.peek()) {
		l.advance()
	}
	raw := l.input[start:l.pos]
	return l.emitRaw(token.Regex, raw[1:], raw)
}

// readDelimiter reads punctuation and operators, preferring complex ops.
func (l *Lexer) readDelimiter() token.Token {
	start := l.pos
	l.advance()
	if !l.finished() && complexOps[l.input[start:l.pos]+string(l.peek())] {
		l.advance()
		if !l.finished() && complexOps[l.input[start:l.pos]+string(l.peek())] {
			l.advance()
		}
	}

	val := l.input[start:l.pos]
	var kind token.Kind
	switch val {
	case "(":
		kind = token.LeftParen
	case ")":
		kind = token.RightParen
	case "[":
		kind = token.LeftBracket
	case "]":
		kind = token.RightBracket
	case "{":
		kind = token.LeftCurly
	case "}":
		kind = token.RightCurly
	case ",":
		kind = token.Comma
	case ":":
		kind = token.Colon
	case "~":
		kind = token.Tilde
	case "|":
		kind = token.Pipe
	default:
		kind = token.Operator
	}
	return l.emit(kind, val)
}

// Helper methods

func (l *Lexer) finished() bool {
	return l.pos >= len(l.input)
}

// peek returns the current rune without advancing.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n runes ahead of the current one.
func (l *Lexer) peekAt(n int) rune {
	p := l.pos
	for i := 0; ; i++ {
		if p >= len(l.input) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(l.input[p:])
		if i == n {
			return r
		}
		p += size
	}
}

// advance moves to the next rune, updating position tracking.
func (l *Lexer) advance() {
	if l.finished() {
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// matchString checks if the input at current position matches s.
func (l *Lexer) matchString(s string) bool {
	return s != "" && strings.HasPrefix(l.input[l.pos:], s)
}

// skip advances past s, which must be a prefix of the remaining input.
func (l *Lexer) skip(s string) {
	for range s {
		l.advance()
	}
}

// extractAny consumes the first candidate that prefixes the input.
func (l *Lexer) extractAny(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if l.matchString(c) {
			l.skip(c)
			return c, true
		}
	}
	return "", false
}

// extractUntil advances up to the next rune contained in chars. It reports
// false when called with the input already exhausted.
func (l *Lexer) extractUntil(chars string) bool {
	if l.finished() {
		return false
	}
	for !l.finished() && !strings.ContainsRune(chars, l.peek()) {
		l.advance()
	}
	return true
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.lastLine = l.line
	l.lastCol = l.col
}

func (l *Lexer) emit(kind token.Kind, value string) token.Token {
	return token.Token{Kind: kind, Value: value, Line: l.lastLine, Col: l.lastCol}
}

func (l *Lexer) emitRaw(kind token.Kind, value, raw string) token.Token {
	tok := l.emit(kind, value)
	if raw != value {
		tok.Raw = raw
	}
	return tok
}

func firstChars(delims ...string) string {
	var b strings.Builder
	for _, d := range delims {
		if r, _ := utf8.DecodeRuneInString(d); r != utf8.RuneError {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
