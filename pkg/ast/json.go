package ast

import "encoding/json"

// Every node marshals to its unist shape: the type tag followed by the
// node's fields. The local alias types drop the MarshalJSON method so the
// embedded value encodes field by field.

type typeTag struct {
	Type NodeType `json:"type"`
}

// MarshalJSON implements json.Marshaler.
func (n *Root) MarshalJSON() ([]byte, error) {
	type alias Root
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *CommentNode) MarshalJSON() ([]byte, error) {
	type alias CommentNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler. The binding is emitted as
// "names" for the from form and "target" for the direct form.
func (n *ImportNode) MarshalJSON() ([]byte, error) {
	type alias ImportNode
	return json.Marshal(struct {
		typeTag
		*alias
		Names  *ImportNamesNode  `json:"names,omitempty"`
		Target *ImportTargetNode `json:"target,omitempty"`
	}{
		typeTag: typeTag{n.Type()},
		alias:   (*alias)(n),
		Names:   n.Names(),
		Target:  n.Target(),
	})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportTemplate) MarshalJSON() ([]byte, error) {
	type alias ImportTemplate
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportTargetNode) MarshalJSON() ([]byte, error) {
	type alias ImportTargetNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportNamesNode) MarshalJSON() ([]byte, error) {
	type alias ImportNamesNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportNameValueNode) MarshalJSON() ([]byte, error) {
	type alias ImportNameValueNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportNameAliasNode) MarshalJSON() ([]byte, error) {
	type alias ImportNameAliasNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportAliasKeyNode) MarshalJSON() ([]byte, error) {
	type alias ImportAliasKeyNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *ImportAliasValueNode) MarshalJSON() ([]byte, error) {
	type alias ImportAliasValueNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *IncludeTemplateNode) MarshalJSON() ([]byte, error) {
	type alias IncludeTemplateNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *IncludeTemplateValueNode) MarshalJSON() ([]byte, error) {
	type alias IncludeTemplateValueNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *IncludeTemplateExpressionNode) MarshalJSON() ([]byte, error) {
	type alias IncludeTemplateExpressionNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *IncludeTemplateLeftNode) MarshalJSON() ([]byte, error) {
	type alias IncludeTemplateLeftNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}

// MarshalJSON implements json.Marshaler.
func (n *IncludeTemplateRightNode) MarshalJSON() ([]byte, error) {
	type alias IncludeTemplateRightNode
	return json.Marshal(struct {
		typeTag
		*alias
	}{typeTag{n.Type()}, (*alias)(n)})
}
