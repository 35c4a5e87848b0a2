package parser

import (
	"github.com/leapstack-labs/njkast/pkg/ast"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// Import directives.
//
// Grammar:
//
//	from_import   → "from" string "import" name_list [context]
//	name_list     → name ["as" symbol] ("," name ["as" symbol])*
//	direct_import → "import" string "as" symbol [context]
//	context       → ("with" | "without") "context"
//
// Only string and symbol tokens carry meaning; punctuation is skipped.

// buildFromImport parses the rest of a from-import directive.
func buildFromImport(c *Cursor, d Directive) (ast.Node, error) {
	lit, err := c.templateLiteral(d)
	if err != nil {
		return nil, err
	}
	template := ast.NewImportTemplate(lit.Value, PositionOf(lit))

	names := ast.NewImportNames()
	context := withContext()
	var alias aliasPhrase

	end, err := c.Scan(d, func(tok token.Token) error {
		if context.feed(tok) {
			alias.reset()
			return nil
		}

		switch {
		case tok.IsSymbol("import"):
			alias.reset()
		case tok.IsSymbol("as"):
			if len(names.Children) == 0 {
				return NewParseErrorf(pointOf(tok), "'as' must follow an imported name")
			}
			alias.arm()
		case tok.Kind == token.Symbol:
			if alias.take() {
				names.AliasLast(ast.NewImportAliasValue(tok.Value, PositionOf(tok)))
			} else {
				names.Append(ast.NewImportNameValue(tok.Value, PositionOf(tok)))
			}
		default:
			alias.reset()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ast.NewImport(template, context.value, names, d.Position(end)), nil
}

// buildDirectImport parses the rest of a direct import directive.
func buildDirectImport(c *Cursor, d Directive) (ast.Node, error) {
	lit, err := c.templateLiteral(d)
	if err != nil {
		return nil, err
	}
	template := ast.NewImportTemplate(lit.Value, PositionOf(lit))

	context := withContext()
	var (
		alias  aliasPhrase
		target *ast.ImportTargetNode
	)

	end, err := c.Scan(d, func(tok token.Token) error {
		if context.feed(tok) {
			alias.reset()
			return nil
		}

		switch {
		case tok.IsSymbol("as"):
			alias.arm()
		case tok.Kind == token.Symbol:
			if alias.take() {
				target = ast.NewImportTarget(tok.Value, PositionOf(tok))
			}
		default:
			alias.reset()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if target == nil {
		return nil, NewMissingAliasError(pointOf(d.Open), lit.Value)
	}
	return ast.NewImport(template, context.value, target, d.Position(end)), nil
}
