package ast

// Walk traverses a tree depth-first and calls fn for each node.
// If fn returns false, the children of that node are skipped.
func Walk(node Node, fn func(node Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}

// Children returns the direct children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node, ok bool) {
		if ok {
			out = append(out, n)
		}
	}

	switch n := node.(type) {
	case *Root:
		if n == nil {
			return nil
		}
		out = append(out, n.Children...)

	case *ImportNode:
		if n == nil {
			return nil
		}
		add(n.Template, n.Template != nil)
		add(n.Binding, n.Binding != nil)

	case *ImportNamesNode:
		if n == nil {
			return nil
		}
		for _, name := range n.Children {
			out = append(out, name)
		}

	case *ImportNameAliasNode:
		if n == nil {
			return nil
		}
		add(n.Key, n.Key != nil)
		add(n.Value, n.Value != nil)

	case *IncludeTemplateNode:
		if n == nil {
			return nil
		}
		add(n.Value, n.Value != nil)

	case *IncludeTemplateExpressionNode:
		if n == nil {
			return nil
		}
		add(n.Left, n.Left != nil)
		add(n.Right, n.Right != nil)
	}
	return out
}

// Collect returns every node of type T in the tree, in walk order.
func Collect[T Node](root Node) []T {
	var out []T
	Walk(root, func(n Node) bool {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}
