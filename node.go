package loom

// Node is a member of the markup tree the engine operates on.
// The set of implementations is closed: Text, Comment, Element and
// NodeList. Nodes are plain mutable structs; the engine mutates them
// in place during recomposition.
type Node interface {
	node()
}

// Text is a leaf node holding character data.
type Text struct {
	Value string
}

// Comment is a leaf node holding the body of a comment, without the
// surrounding markers.
type Comment struct {
	Value string
}

// Attr is a single element attribute. Attribute order on an element is
// meaningful and preserved.
type Attr struct {
	Name  string
	Value string
}

// Element is a named node with ordered attributes and ordered children.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// NodeList is an anonymous grouping of sibling nodes. It carries no
// markup of its own and exists only as a parse-level container; Normalize
// flattens every NodeList below the root away before decomposition.
type NodeList struct {
	Children []Node
}

func (*Text) node()     {}
func (*Comment) node()  {}
func (*Element) node()  {}
func (*NodeList) node() {}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr overwrites the named attribute in place, or appends it when the
// element does not carry it yet.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.Attrs {
		if a.Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// childrenOf returns the child list of n. Leaves have none.
func childrenOf(n Node) []Node {
	switch v := n.(type) {
	case *Element:
		return v.Children
	case *NodeList:
		return v.Children
	}
	return nil
}

// setChildren replaces the child list of n. Leaves are left untouched.
func setChildren(n Node, children []Node) {
	switch v := n.(type) {
	case *Element:
		v.Children = children
	case *NodeList:
		v.Children = children
	}
}

// allTextChildren reports whether every child of e is a Text node.
// True for childless elements.
func allTextChildren(e *Element) bool {
	for _, c := range e.Children {
		if _, ok := c.(*Text); !ok {
			return false
		}
	}
	return true
}

// innerText concatenates the values of e's direct Text children.
func innerText(e *Element) string {
	var out string
	for _, c := range e.Children {
		if t, ok := c.(*Text); ok {
			out += t.Value
		}
	}
	return out
}
