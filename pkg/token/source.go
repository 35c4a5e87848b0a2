package token

// Source is a pull-based, forward-only token stream.
//
// Next returns the following token. Once the stream is exhausted it returns
// a token of kind EOF, and keeps doing so on every later call. A Source is
// single-use: consuming it is destructive and cannot be rewound, so
// concurrent parses must each own their own Source.
type Source interface {
	Next() (Token, error)
}

// SliceSource replays a fixed sequence of tokens.
type SliceSource struct {
	tokens []Token
	pos    int
}

// FromSlice returns a Source yielding tokens in order, then EOF.
// A trailing EOF token in the slice is honored but not required.
func FromSlice(tokens []Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

// Next implements Source.
func (s *SliceSource) Next() (Token, error) {
	if s.pos >= len(s.tokens) {
		return s.eof(), nil
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

func (s *SliceSource) eof() Token {
	if len(s.tokens) == 0 {
		return Token{Kind: EOF}
	}
	last := s.tokens[len(s.tokens)-1]
	if last.Kind == EOF {
		return last
	}
	return Token{Kind: EOF, Line: last.Line, Col: last.Col}
}

// Collect drains src into a slice, excluding the EOF marker.
func Collect(src Source) ([]Token, error) {
	var tokens []Token
	for {
		tok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}
