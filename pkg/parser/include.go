package parser

import (
	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// Include directive.
//
// Grammar:
//
//	include → "include" (string | symbol "+" string | string "+" symbol) ["ignore" "missing"]
//
// The last string is the literal and the last other symbol the variable
// part of a composed path. Left is always the variable and Right the
// literal, whatever their order in the source: "partials/" + variant gives
// Left variant and Right "partials/". Left + Right is not the concatenation
// the template performs; compare the fragment positions to recover it.

// buildInclude parses the rest of an include directive.
func buildInclude(c *Cursor, d Directive) (ast.Node, error) {
	missing := ignoreMissing()
	var literal, left *token.Token

	end, err := c.Scan(d, func(tok token.Token) error {
		if missing.feed(tok) {
			return nil
		}
		switch tok.Kind {
		case token.String:
			literal = &tok
		case token.Symbol:
			left = &tok
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if literal == nil {
		return nil, NewMissingTemplateError(pointOf(d.Open), d.Name())
	}

	var value ast.IncludeSource
	if left != nil {
		value = ast.NewIncludeExpression(
			ast.NewIncludeLeft(left.Value, PositionOf(*left)),
			ast.NewIncludeRight(literal.Value, PositionOf(*literal)),
		)
	} else {
		value = ast.NewIncludeValue(literal.Value, PositionOf(*literal))
	}
	return ast.NewInclude(missing.value, value, d.Position(end)), nil
}
