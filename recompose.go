package loom

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
)

// Recompose parses each translated string and splices the result back
// into the live tree, one resource bundle entry at a time.
//
// Preconditions are checked before any mutation: a Context that has
// already recomposed returns ContextReusedError, and a translations
// slice whose length differs from the bundle returns CountMismatchError.
// Once past the checks the Context is burned, even if every item fails.
//
// Item failures are isolated: a bad translation leaves its original
// nodes untouched and never aborts the batch. Every failure is appended
// to errs when a sink is supplied; the last failure is also returned
// after the full batch has been attempted. All successful splices stay
// committed regardless of the returned error.
func (c *Context) Recompose(translations []string, errs *ItemErrors) error {
	if c.dirty {
		return &ContextReusedError{Session: c.id}
	}
	if len(translations) != len(c.bundle) {
		return &CountMismatchError{Expected: len(c.bundle), Got: len(translations)}
	}
	c.dirty = true

	var last *ItemError
	for i, s := range translations {
		if err := c.recomposeItem(i, s); err != nil {
			item := &ItemError{
				Index:   i,
				Session: c.id,
				Err:     err,
				Stack:   debug.Stack(),
			}
			if errs != nil {
				*errs = append(*errs, item)
			}
			last = item
		}
	}
	if last != nil {
		return last
	}
	return nil
}

func (c *Context) recomposeItem(i int, s string) error {
	ci := c.bundleToCollation[i]
	col := c.collations[ci]

	frag, err := parseFragment(s)
	if err != nil {
		return err
	}

	consumed := make(map[int]bool)
	replacement := make([]Node, 0, len(frag.Children))
	for _, fn := range frag.Children {
		switch v := fn.(type) {
		case *Text:
			replacement = append(replacement, &Text{Value: v.Value})
		case *Comment:
			replacement = append(replacement, &Comment{Value: v.Value})
		case *Element:
			name, idx, ok := splitIndexedTag(v.Tag)
			if !ok {
				return &TagFormatError{Tag: v.Tag}
			}
			orig, ok := c.index.Element(ci, idx)
			if !ok {
				return &UnexpectedTagError{Tag: fmt.Sprintf("%s#%d", name, idx)}
			}
			c.mergeElement(orig, v)
			consumed[idx] = true
			replacement = append(replacement, orig)
		}
	}

	if missing := c.missingTags(ci, consumed); len(missing) > 0 {
		return &MissingTagsError{Tags: missing}
	}

	c.splice(col, replacement)
	return nil
}

// mergeElement carries a fragment element's translated content onto the
// original node it was matched with. Attribute updates may only touch
// attributes the original already carries and the policy exposes;
// translators can edit values but never add attributes. Child content
// is copied back only for elements whose serialized form expanded it
// into the bundle: opaque placeholders and non-inline decomposable
// placeholders keep their original children.
func (c *Context) mergeElement(orig, frag *Element) {
	tag := strings.ToLower(orig.Tag)

	for _, fa := range frag.Attrs {
		if _, ok := orig.Attr(fa.Name); !ok {
			continue
		}
		if !c.cfg.attrAllowed(fa.Name, tag) {
			continue
		}
		orig.SetAttr(fa.Name, fa.Value)
	}

	if c.cfg.isOpaque(tag) {
		return
	}
	if c.cfg.isOpaqueDecomposable(tag) && !(c.cfg.isInline(tag) && allTextChildren(orig)) {
		return
	}

	children := make([]Node, 0, len(frag.Children))
	for _, fc := range frag.Children {
		switch v := fc.(type) {
		case *Text:
			children = append(children, &Text{Value: v.Value})
		case *Comment:
			children = append(children, &Comment{Value: v.Value})
		}
	}
	orig.Children = children
}

// missingTags returns the indexed tags of collation ci that the
// translation never referenced, ascending by index.
func (c *Context) missingTags(ci int, consumed map[int]bool) []string {
	rev := c.index.reverse[ci]
	var idxs []int
	for idx := range rev {
		if !consumed[idx] {
			idxs = append(idxs, idx)
		}
	}
	if len(idxs) == 0 {
		return nil
	}
	sort.Ints(idxs)
	tags := make([]string, len(idxs))
	for i, idx := range idxs {
		tags[i] = fmt.Sprintf("%s#%d", strings.ToLower(rev[idx].Tag), idx)
	}
	return tags
}

// splice swaps the translated node run into the parent's child list in
// place of the original span. The new list is built whole and assigned
// as a unit. Descendants of replaced nodes are excluded from the
// preserved prefix and suffix so nodes the translation moved are not
// duplicated. When the original span is gone (the parent was itself
// rewritten by an enclosing unit), the replacement becomes the whole
// child list.
func (c *Context) splice(col *Collation, replacement []Node) {
	parent := col.parent
	if parent == nil {
		// The collation was the document root.
		c.root = &NodeList{Children: replacement}
		return
	}

	old := childrenOf(parent)
	member := make(map[Node]bool, len(col.nodes))
	for _, n := range col.nodes {
		member[n] = true
	}

	first, lastIdx := -1, -1
	for i, n := range old {
		if member[n] {
			if first < 0 {
				first = i
			}
			lastIdx = i
		}
	}

	if first < 0 {
		setChildren(parent, replacement)
		return
	}

	drop := make(map[Node]bool)
	for _, n := range col.nodes {
		markDescendants(n, drop)
	}

	next := make([]Node, 0, first+len(replacement)+len(old)-lastIdx-1)
	for _, n := range old[:first] {
		if !drop[n] {
			next = append(next, n)
		}
	}
	next = append(next, replacement...)
	for _, n := range old[lastIdx+1:] {
		if !drop[n] {
			next = append(next, n)
		}
	}
	setChildren(parent, next)
}

// markDescendants records every node below n, not n itself.
func markDescendants(n Node, set map[Node]bool) {
	for _, child := range childrenOf(n) {
		set[child] = true
		markDescendants(child, set)
	}
}
