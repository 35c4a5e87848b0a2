package token

import (
	"errors"
	"fmt"
)

// Tags holds the delimiters that open and close template constructs.
type Tags struct {
	BlockStart    string `koanf:"block_start"`
	BlockEnd      string `koanf:"block_end"`
	VariableStart string `koanf:"variable_start"`
	VariableEnd   string `koanf:"variable_end"`
	CommentStart  string `koanf:"comment_start"`
	CommentEnd    string `koanf:"comment_end"`
}

// DefaultTags returns the standard Nunjucks delimiters.
func DefaultTags() Tags {
	return Tags{
		BlockStart:    "{%",
		BlockEnd:      "%}",
		VariableStart: "{{",
		VariableEnd:   "}}",
		CommentStart:  "{#",
		CommentEnd:    "#}",
	}
}

// WithDefaults returns a copy of t with empty delimiters replaced by the
// standard ones.
func (t Tags) WithDefaults() Tags {
	d := DefaultTags()
	if t.BlockStart == "" {
		t.BlockStart = d.BlockStart
	}
	if t.BlockEnd == "" {
		t.BlockEnd = d.BlockEnd
	}
	if t.VariableStart == "" {
		t.VariableStart = d.VariableStart
	}
	if t.VariableEnd == "" {
		t.VariableEnd = d.VariableEnd
	}
	if t.CommentStart == "" {
		t.CommentStart = d.CommentStart
	}
	if t.CommentEnd == "" {
		t.CommentEnd = d.CommentEnd
	}
	return t
}

// Validate checks that the delimiters can be told apart by a scanner.
func (t Tags) Validate() error {
	starts := map[string]string{
		"block_start":    t.BlockStart,
		"variable_start": t.VariableStart,
		"comment_start":  t.CommentStart,
	}
	seen := make(map[string]string, len(starts))
	for name, v := range starts {
		if v == "" {
			return fmt.Errorf("tag %s is empty", name)
		}
		if other, ok := seen[v]; ok {
			return fmt.Errorf("tags %s and %s share delimiter %q", name, other, v)
		}
		seen[v] = name
	}
	if t.BlockEnd == "" || t.VariableEnd == "" || t.CommentEnd == "" {
		return errors.New("closing tags must not be empty")
	}
	return nil
}
