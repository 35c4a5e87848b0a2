package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"

	"github.com/leapstack-labs/njkast/pkg/ast"
)

// Tree prints a syntax tree as a nested list, one node per item.
func (r *Renderer) Tree(root ast.Node) {
	l := list.NewWriter()
	appendNode(l, root, r.styles)

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(l.RenderMarkdown())
		return
	}
	l.SetStyle(list.StyleConnectedLight)
	r.Println(l.Render())
}

func appendNode(l list.Writer, n ast.Node, s *Styles) {
	l.AppendItem(Label(n, s))

	children := ast.Children(n)
	if len(children) == 0 {
		return
	}
	l.Indent()
	for _, child := range children {
		appendNode(l, child, s)
	}
	l.UnIndent()
}

// Label describes a node on one line: type, payload and position.
func Label(n ast.Node, s *Styles) string {
	parts := []string{s.NodeType.Render(string(n.Type()))}
	if detail := nodeDetail(n); detail != "" {
		parts = append(parts, detail)
	}
	if pos := n.Pos(); pos != nil {
		parts = append(parts, s.Muted.Render(pos.String()))
	}
	return strings.Join(parts, " ")
}

func nodeDetail(n ast.Node) string {
	switch n := n.(type) {
	case *ast.CommentNode:
		return strings.TrimSpace(fmt.Sprintf("%q %s", n.Value, flags(map[string]bool{"trimLeft": n.TrimLeft, "trimRight": n.TrimRight})))
	case *ast.ImportNode:
		return flags(map[string]bool{"withContext": n.WithContext})
	case *ast.IncludeTemplateNode:
		return flags(map[string]bool{"ignoreMissing": n.IgnoreMissing})
	case *ast.ImportTemplate:
		return fmt.Sprintf("%q", n.Value)
	case *ast.ImportTargetNode:
		return n.Value
	case *ast.ImportNameValueNode:
		return n.Value
	case *ast.ImportAliasKeyNode:
		return n.Value
	case *ast.ImportAliasValueNode:
		return n.Value
	case *ast.IncludeTemplateValueNode:
		return fmt.Sprintf("%q", n.Value)
	case *ast.IncludeTemplateLeftNode:
		return n.Value
	case *ast.IncludeTemplateRightNode:
		return fmt.Sprintf("%q", n.Value)
	}
	return ""
}

// flags renders the set flags as "[a b]", sorted by name.
func flags(set map[string]bool) string {
	var on []string
	for _, name := range []string{"ignoreMissing", "trimLeft", "trimRight", "withContext"} {
		if set[name] {
			on = append(on, name)
		}
	}
	if len(on) == 0 {
		return ""
	}
	return "[" + strings.Join(on, " ") + "]"
}
