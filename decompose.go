package loom

import (
	"strings"

	"github.com/google/uuid"
)

// DirectivePrefix marks comments that are part of the translatable
// content. A comment whose trimmed body starts with this prefix rides
// along in the resource bundle; every other comment is dropped.
const DirectivePrefix = "I18N:"

// Collation is one contiguous run of sibling nodes that together form a
// single translation unit: text, inline elements and placeholder
// elements that must be translated as one string.
type Collation struct {
	parent Node
	nodes  []Node
}

// Nodes returns the member nodes in document order. The slice is owned
// by the Collation; treat it as read-only.
func (c *Collation) Nodes() []Node { return c.nodes }

// Parent returns the node whose child list contains the member run, or
// nil when the run is the document root itself.
func (c *Collation) Parent() Node { return c.parent }

// CollationIndex assigns 1-based indices to the Element members of each
// collation, independently per collation. Text and Comment members are
// never indexed.
type CollationIndex struct {
	forward map[*Element]int
	reverse []map[int]*Element
}

// IndexOf returns the 1-based index of el within its collation.
func (ix *CollationIndex) IndexOf(el *Element) (int, bool) {
	n, ok := ix.forward[el]
	return n, ok
}

// Element resolves an index back to the original member of the given
// collation.
func (ix *CollationIndex) Element(collation, index int) (*Element, bool) {
	if collation < 0 || collation >= len(ix.reverse) {
		return nil, false
	}
	el, ok := ix.reverse[collation][index]
	return el, ok
}

// Context is the single-use product of Decompose: the live tree, the
// collations found in it, their index, and the serialized resource
// bundle. Recompose burns the Context; decompose again for another
// attempt. A Context is not safe for concurrent use, but distinct
// Contexts are fully independent.
type Context struct {
	id         string
	cfg        *Config
	root       Node
	collations []*Collation
	index      *CollationIndex

	bundle            []string
	bundleToCollation []int
	dirty             bool
}

// ID returns the session identifier stamped on diagnostics produced by
// this Context.
func (c *Context) ID() string { return c.id }

// Config returns the policy the Context was decomposed under.
func (c *Context) Config() *Config { return c.cfg }

// Root returns the live tree. After Recompose this is the recomposed
// document; use it rather than the Node originally passed to Decompose,
// which may have been replaced when the root itself was a translation
// unit.
func (c *Context) Root() Node { return c.root }

// Bundle returns the serialized resource bundle, one string per
// translation unit with content, in document order.
func (c *Context) Bundle() []string {
	out := make([]string, len(c.bundle))
	copy(out, c.bundle)
	return out
}

// Collations returns every collation found by the walk, including
// contentless ones that contribute no bundle entry.
func (c *Context) Collations() []*Collation { return c.collations }

// Index returns the collation index.
func (c *Context) Index() *CollationIndex { return c.index }

// CollationAt resolves a bundle position to the collation it was
// serialized from.
func (c *Context) CollationAt(bundleIndex int) (*Collation, bool) {
	if bundleIndex < 0 || bundleIndex >= len(c.bundleToCollation) {
		return nil, false
	}
	return c.collations[c.bundleToCollation[bundleIndex]], true
}

// IsDirty reports whether Recompose has already been called.
func (c *Context) IsDirty() bool { return c.dirty }

// Decompose normalizes the tree, splits it into collations under the
// given policy and serializes each collation with content into the
// resource bundle. The tree is retained live inside the Context;
// Recompose mutates it in place. A nil config selects DefaultConfig.
//
// Decompose never fails on a well-formed tree: it is a pure read
// traversal. The returned Context is ready for exactly one Recompose.
func Decompose(tree Node, cfg *Config) *Context {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if tree == nil {
		tree = &NodeList{}
	}
	tree = Normalize(tree)

	w := &walker{cfg: cfg}
	if el, ok := tree.(*Element); ok {
		w.walkElement(el, nil)
	} else {
		w.walk(tree, nil)
	}

	ctx := &Context{
		id:         uuid.NewString(),
		cfg:        cfg,
		root:       tree,
		collations: w.collations,
		index:      buildIndex(w.collations),
	}

	for i, col := range ctx.collations {
		s, has := serializeCollation(col, cfg, ctx.index)
		if !has {
			continue // contentless: indexable but absent from the bundle
		}
		ctx.bundle = append(ctx.bundle, s)
		ctx.bundleToCollation = append(ctx.bundleToCollation, i)
	}

	return ctx
}

// walker performs the classification walk. The current collation stays
// open until a composite boundary closes it; it is created lazily on
// first append so boundary-only regions produce no empty collations.
type walker struct {
	cfg        *Config
	collations []*Collation
	cur        *Collation
}

func (w *walker) boundary() { w.cur = nil }

func (w *walker) append(parent, n Node) {
	if w.cur == nil {
		w.cur = &Collation{parent: parent}
		w.collations = append(w.collations, w.cur)
	}
	w.cur.nodes = append(w.cur.nodes, n)
}

func (w *walker) walk(n Node, parent Node) {
	switch v := n.(type) {
	case *NodeList:
		// Should not survive normalization, but tolerated: transparent.
		for _, child := range v.Children {
			w.walk(child, v)
		}
	case *Comment:
		if strings.HasPrefix(strings.TrimSpace(v.Value), DirectivePrefix) {
			w.append(parent, v)
		}
	case *Text:
		w.append(parent, v)
	case *Element:
		w.walkElement(v, parent)
	}
}

func (w *walker) walkElement(el *Element, parent Node) {
	tag := strings.ToLower(el.Tag)
	switch {
	case w.cfg.isInline(tag) && allTextChildren(el):
		w.append(parent, el)

	case w.cfg.isInline(tag):
		// Inline with structured content is not atomic: it splits the
		// flow exactly like a composite.
		w.boundary()
		for _, child := range el.Children {
			w.walk(child, el)
		}
		w.boundary()

	case w.cfg.isOpaque(tag):
		// Carried whole; descendants are never visited.
		w.append(parent, el)

	case w.cfg.isOpaqueDecomposable(tag):
		// The placeholder joins the surrounding flow while its contents
		// become independent translation units. The outer run stays
		// open across the nested scope.
		w.append(parent, el)
		saved := w.cur
		w.cur = nil
		for _, child := range el.Children {
			w.walk(child, el)
		}
		w.cur = saved

	default:
		w.boundary()
		for _, child := range el.Children {
			w.walk(child, el)
		}
		w.boundary()
	}
}

func buildIndex(collations []*Collation) *CollationIndex {
	ix := &CollationIndex{
		forward: make(map[*Element]int),
		reverse: make([]map[int]*Element, len(collations)),
	}
	for ci, col := range collations {
		rev := make(map[int]*Element)
		next := 1
		for _, n := range col.nodes {
			if el, ok := n.(*Element); ok {
				ix.forward[el] = next
				rev[next] = el
				next++
			}
		}
		ix.reverse[ci] = rev
	}
	return ix
}
