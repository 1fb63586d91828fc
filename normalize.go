package loom

// Normalize flattens NodeList wrappers out of the tree so that every
// remaining child list contains only Text, Comment and Element nodes.
// A NodeList child is replaced by its own (recursively flattened)
// children, in place, preserving sibling order. Relative order of all
// non-list nodes is never changed.
//
// The root itself keeps its type: a NodeList root survives as the
// container of the flattened children. Normalize is idempotent and
// returns its argument for chaining.
func Normalize(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *Element:
		v.Children = flattenChildren(v.Children)
	case *NodeList:
		v.Children = flattenChildren(v.Children)
	}
	return n
}

func flattenChildren(children []Node) []Node {
	flat := make([]Node, 0, len(children))
	for _, c := range children {
		if list, ok := c.(*NodeList); ok {
			flat = append(flat, flattenChildren(list.Children)...)
			continue
		}
		if el, ok := c.(*Element); ok {
			el.Children = flattenChildren(el.Children)
		}
		flat = append(flat, c)
	}
	return flat
}
