// Package ast defines the syntax tree produced by the template parser.
//
// The tree follows the unist convention: every node carries a type tag and
// an optional 1-based source position. Nodes are built once by the parser
// and treated as read-only afterwards.
package ast

// NodeType is the stable type tag of a node.
type NodeType string

// Node type tags.
const (
	TypeRoot                      NodeType = "Root"
	TypeComment                   NodeType = "CommentNode"
	TypeImport                    NodeType = "ImportNode"
	TypeImportTemplate            NodeType = "ImportTemplate"
	TypeImportNames               NodeType = "ImportNamesNode"
	TypeImportNameValue           NodeType = "ImportNameValueNode"
	TypeImportNameAlias           NodeType = "ImportNameAliasNode"
	TypeImportAliasKey            NodeType = "ImportAliasKeyNode"
	TypeImportAliasValue          NodeType = "ImportAliasValueNode"
	TypeImportTarget              NodeType = "ImportTargetNode"
	TypeIncludeTemplate           NodeType = "IncludeTemplateNode"
	TypeIncludeTemplateValue      NodeType = "IncludeTemplateValueNode"
	TypeIncludeTemplateExpression NodeType = "IncludeTemplateExpressionNode"
	TypeIncludeTemplateLeft       NodeType = "IncludeTemplateLeftNode"
	TypeIncludeTemplateRight      NodeType = "IncludeTemplateRightNode"
)

// Node is the interface for all tree nodes.
type Node interface {
	Type() NodeType
	Pos() *Position
	node() // marker method to restrict implementation
}

// nodeBase provides common position handling for all nodes.
type nodeBase struct {
	Position *Position `json:"position,omitempty"`
}

func (n *nodeBase) Pos() *Position { return n.Position }
func (n *nodeBase) node()          {}

// Root is the whole parsed document.
type Root struct {
	Children []Node `json:"children"`
	nodeBase
}

// NewRoot creates a root over children in source order.
func NewRoot(children []Node, pos *Position) *Root {
	if children == nil {
		children = []Node{}
	}
	return &Root{Children: children, nodeBase: nodeBase{pos}}
}

func (n *Root) Type() NodeType { return TypeRoot }

// CommentNode is a {# ... #} comment.
type CommentNode struct {
	Value     string `json:"value"`
	TrimLeft  bool   `json:"trimLeft"`
	TrimRight bool   `json:"trimRight"`
	nodeBase
}

// NewComment creates a comment node.
func NewComment(value string, trimLeft, trimRight bool, pos *Position) *CommentNode {
	return &CommentNode{Value: value, TrimLeft: trimLeft, TrimRight: trimRight, nodeBase: nodeBase{pos}}
}

func (n *CommentNode) Type() NodeType { return TypeComment }

// Import nodes

// ImportBinding is what an import binds: a list of names for the from
// form or a single target for the direct form.
//
// Implemented by *ImportNamesNode and *ImportTargetNode.
type ImportBinding interface {
	Node
	importBinding()
}

// ImportNode is an import directive in either form.
type ImportNode struct {
	Template    *ImportTemplate `json:"template"`
	WithContext bool            `json:"withContext"`
	Binding     ImportBinding   `json:"-"`
	nodeBase
}

// NewImport creates an import node. binding selects the form.
func NewImport(template *ImportTemplate, withContext bool, binding ImportBinding, pos *Position) *ImportNode {
	return &ImportNode{
		Template:    template,
		WithContext: withContext,
		Binding:     binding,
		nodeBase:    nodeBase{pos},
	}
}

func (n *ImportNode) Type() NodeType { return TypeImport }

// Names returns the imported names of a from-import, or nil.
func (n *ImportNode) Names() *ImportNamesNode {
	names, _ := n.Binding.(*ImportNamesNode)
	return names
}

// Target returns the namespace alias of a direct import, or nil.
func (n *ImportNode) Target() *ImportTargetNode {
	target, _ := n.Binding.(*ImportTargetNode)
	return target
}

// ImportTemplate is the template path literal of an import.
type ImportTemplate struct {
	Value string `json:"value"`
	nodeBase
}

// NewImportTemplate creates a template path node.
func NewImportTemplate(value string, pos *Position) *ImportTemplate {
	return &ImportTemplate{Value: value, nodeBase: nodeBase{pos}}
}

func (n *ImportTemplate) Type() NodeType { return TypeImportTemplate }

// ImportTargetNode is the alias a direct import binds the template to.
type ImportTargetNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewImportTarget creates a direct import target.
func NewImportTarget(value string, pos *Position) *ImportTargetNode {
	return &ImportTargetNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *ImportTargetNode) Type() NodeType { return TypeImportTarget }
func (n *ImportTargetNode) importBinding() {}

// ImportName is one entry of a from-import list.
//
// Implemented by *ImportNameValueNode and *ImportNameAliasNode.
type ImportName interface {
	Node
	// Imported is the name exported by the imported template.
	Imported() string
	// Local is the name bound in the importing template.
	Local() string
	importName()
}

// ImportNamesNode is the ordered name list of a from-import.
// Duplicates are kept.
type ImportNamesNode struct {
	Children []ImportName `json:"children"`
	nodeBase
}

// NewImportNames creates an empty name list.
func NewImportNames() *ImportNamesNode {
	return &ImportNamesNode{Children: []ImportName{}}
}

func (n *ImportNamesNode) Type() NodeType { return TypeImportNames }
func (n *ImportNamesNode) importBinding() {}

// Append adds a plain name to the end of the list.
func (n *ImportNamesNode) Append(name *ImportNameValueNode) {
	n.Children = append(n.Children, name)
	n.updatePosition()
}

// AliasLast replaces the tail entry with an alias entry bound to value.
// The tail keeps its imported name; aliasing an alias rebinds it. It
// reports false, leaving the list untouched, when the list is empty.
func (n *ImportNamesNode) AliasLast(value *ImportAliasValueNode) bool {
	if len(n.Children) == 0 {
		return false
	}
	last := len(n.Children) - 1

	var key *ImportAliasKeyNode
	switch tail := n.Children[last].(type) {
	case *ImportNameValueNode:
		key = NewImportAliasKey(tail.Value, tail.Position)
	case *ImportNameAliasNode:
		key = tail.Key
	}

	n.Children[last] = NewImportNameAlias(key, value)
	n.updatePosition()
	return true
}

func (n *ImportNamesNode) updatePosition() {
	if len(n.Children) == 0 {
		n.Position = nil
		return
	}
	n.Position = Span(n.Children[0].Pos(), n.Children[len(n.Children)-1].Pos())
}

// ImportNameValueNode is a plain imported name.
type ImportNameValueNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewImportNameValue creates a plain name entry.
func NewImportNameValue(value string, pos *Position) *ImportNameValueNode {
	return &ImportNameValueNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *ImportNameValueNode) Type() NodeType   { return TypeImportNameValue }
func (n *ImportNameValueNode) Imported() string { return n.Value }
func (n *ImportNameValueNode) Local() string    { return n.Value }
func (n *ImportNameValueNode) importName()      {}

// ImportNameAliasNode is an imported name bound under another name
// ("key as value").
type ImportNameAliasNode struct {
	Key   *ImportAliasKeyNode   `json:"key"`
	Value *ImportAliasValueNode `json:"value"`
	nodeBase
}

// NewImportNameAlias creates an alias entry spanning key and value.
func NewImportNameAlias(key *ImportAliasKeyNode, value *ImportAliasValueNode) *ImportNameAliasNode {
	return &ImportNameAliasNode{
		Key:      key,
		Value:    value,
		nodeBase: nodeBase{Span(key.Position, value.Position)},
	}
}

func (n *ImportNameAliasNode) Type() NodeType   { return TypeImportNameAlias }
func (n *ImportNameAliasNode) Imported() string { return n.Key.Value }
func (n *ImportNameAliasNode) Local() string    { return n.Value.Value }
func (n *ImportNameAliasNode) importName()      {}

// ImportAliasKeyNode is the imported side of an alias.
type ImportAliasKeyNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewImportAliasKey creates an alias key.
func NewImportAliasKey(value string, pos *Position) *ImportAliasKeyNode {
	return &ImportAliasKeyNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *ImportAliasKeyNode) Type() NodeType { return TypeImportAliasKey }

// ImportAliasValueNode is the local side of an alias.
type ImportAliasValueNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewImportAliasValue creates an alias value.
func NewImportAliasValue(value string, pos *Position) *ImportAliasValueNode {
	return &ImportAliasValueNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *ImportAliasValueNode) Type() NodeType { return TypeImportAliasValue }

// Include nodes

// IncludeSource is the template path of an include.
//
// Implemented by *IncludeTemplateValueNode and *IncludeTemplateExpressionNode.
type IncludeSource interface {
	Node
	// Literal returns the string literal part of the path.
	Literal() string
	includeSource()
}

// IncludeTemplateNode is an include directive.
type IncludeTemplateNode struct {
	IgnoreMissing bool          `json:"ignoreMissing"`
	Value         IncludeSource `json:"value"`
	nodeBase
}

// NewInclude creates an include node.
func NewInclude(ignoreMissing bool, value IncludeSource, pos *Position) *IncludeTemplateNode {
	return &IncludeTemplateNode{IgnoreMissing: ignoreMissing, Value: value, nodeBase: nodeBase{pos}}
}

func (n *IncludeTemplateNode) Type() NodeType { return TypeIncludeTemplate }

// Static returns the literal path of a static include, or nil.
func (n *IncludeTemplateNode) Static() *IncludeTemplateValueNode {
	v, _ := n.Value.(*IncludeTemplateValueNode)
	return v
}

// Expression returns the composed path of a dynamic include, or nil.
func (n *IncludeTemplateNode) Expression() *IncludeTemplateExpressionNode {
	e, _ := n.Value.(*IncludeTemplateExpressionNode)
	return e
}

// IncludeTemplateValueNode is a static include path.
type IncludeTemplateValueNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewIncludeValue creates a static include path.
func NewIncludeValue(value string, pos *Position) *IncludeTemplateValueNode {
	return &IncludeTemplateValueNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *IncludeTemplateValueNode) Type() NodeType  { return TypeIncludeTemplateValue }
func (n *IncludeTemplateValueNode) Literal() string { return n.Value }
func (n *IncludeTemplateValueNode) includeSource()  {}

// IncludeTemplateExpressionNode is a path composed of a variable (Left) and
// a string literal (Right). The fields do not follow source order.
type IncludeTemplateExpressionNode struct {
	Left  *IncludeTemplateLeftNode  `json:"left"`
	Right *IncludeTemplateRightNode `json:"right"`
	nodeBase
}

// NewIncludeExpression creates a composed path spanning both fragments.
func NewIncludeExpression(left *IncludeTemplateLeftNode, right *IncludeTemplateRightNode) *IncludeTemplateExpressionNode {
	return &IncludeTemplateExpressionNode{
		Left:     left,
		Right:    right,
		nodeBase: nodeBase{Span(left.Position, right.Position)},
	}
}

func (n *IncludeTemplateExpressionNode) Type() NodeType  { return TypeIncludeTemplateExpression }
func (n *IncludeTemplateExpressionNode) Literal() string { return n.Right.Value }
func (n *IncludeTemplateExpressionNode) includeSource()  {}

// IncludeTemplateLeftNode is the variable part of a composed path.
type IncludeTemplateLeftNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewIncludeLeft creates the variable fragment.
func NewIncludeLeft(value string, pos *Position) *IncludeTemplateLeftNode {
	return &IncludeTemplateLeftNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *IncludeTemplateLeftNode) Type() NodeType { return TypeIncludeTemplateLeft }

// IncludeTemplateRightNode is the literal part of a composed path.
type IncludeTemplateRightNode struct {
	Value string `json:"value"`
	nodeBase
}

// NewIncludeRight creates the literal fragment.
func NewIncludeRight(value string, pos *Position) *IncludeTemplateRightNode {
	return &IncludeTemplateRightNode{Value: value, nodeBase: nodeBase{pos}}
}

func (n *IncludeTemplateRightNode) Type() NodeType { return TypeIncludeTemplateRight }
