package lexer

import "fmt"

// LexError reports input the scanner could not tokenize.
// Line and Col are 0-based like token positions.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line+1, e.Col+1, e.Msg)
}

// errorf reports an error at the current scan position.
func (l *Lexer) errorf(format string, args ...any) *LexError {
	return &LexError{Line: l.line, Col: l.col, Msg: fmt.Sprintf(format, args...)}
}

// startErrorf reports an error at the start of the current token.
func (l *Lexer) startErrorf(format string, args ...any) *LexError {
	return &LexError{Line: l.lastLine, Col: l.lastCol, Msg: fmt.Sprintf(format, args...)}
}
