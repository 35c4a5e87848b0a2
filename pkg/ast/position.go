package ast

import "fmt"

// Point is a place in the source. Line and Column are 1-based; columns
// count runes.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether p comes strictly before q.
func (p Point) Before(q Point) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Position is the source span of a node. End is exclusive.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

func (p *Position) String() string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%s-%s", p.Start, p.End)
}

// Span returns the smallest position covering both a and b.
// A nil argument is ignored; Span(nil, nil) is nil.
func Span(a, b *Position) *Position {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		cp := *b
		return &cp
	case b == nil:
		cp := *a
		return &cp
	}

	out := *a
	if b.Start.Before(out.Start) {
		out.Start = b.Start
	}
	if out.End.Before(b.End) {
		out.End = b.End
	}
	return &out
}
