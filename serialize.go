package loom

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// serializeCollation renders a collation into its resource bundle form:
// entity-escaped text interleaved with indexed placeholder tags. The
// whole string is trimmed once at the ends; interior whitespace is
// significant and preserved.
//
// has reports whether the collation carries translatable content. A
// collation of nothing but unexpanded placeholders and blank text is
// contentless and contributes no bundle entry.
func serializeCollation(col *Collation, cfg *Config, ix *CollationIndex) (s string, has bool) {
	var sb strings.Builder
	for _, n := range col.nodes {
		part, ok := renderNode(n, cfg, ix)
		sb.WriteString(part)
		has = has || ok
	}
	return strings.TrimSpace(sb.String()), has
}

func renderNode(n Node, cfg *Config, ix *CollationIndex) (string, bool) {
	switch v := n.(type) {
	case *Text:
		return html.EscapeString(v.Value), strings.TrimSpace(v.Value) != ""
	case *Comment:
		return "<!--" + v.Value + "-->", strings.TrimSpace(v.Value) != ""
	case *Element:
		return renderElement(v, cfg, ix)
	case *NodeList:
		var sb strings.Builder
		has := false
		for _, child := range v.Children {
			part, ok := renderNode(child, cfg, ix)
			sb.WriteString(part)
			has = has || ok
		}
		return sb.String(), has
	}
	return "", false
}

func renderElement(el *Element, cfg *Config, ix *CollationIndex) (string, bool) {
	tag := strings.ToLower(el.Tag)
	name := indexedName(el, tag, ix)
	attrs := renderAttrs(el, tag, cfg)

	switch {
	case cfg.isOpaque(tag):
		// Placeholder only; contents never cross the translator boundary.
		return "<" + name + attrs + " />", false

	case cfg.isOpaqueDecomposable(tag):
		if cfg.isInline(tag) && allTextChildren(el) {
			text := innerText(el)
			blank := strings.TrimSpace(text) == ""
			if len(el.Children) == 0 || (blank && !cfg.countEmptyDecomposable) {
				return "<" + name + attrs + " />", cfg.countEmptyDecomposable && len(el.Children) == 0
			}
			return "<" + name + attrs + ">" + html.EscapeString(text) + "</" + name + ">",
				!blank || cfg.countEmptyDecomposable
		}
		// Content is carried by the nested translation units instead.
		return "<" + name + attrs + " />", cfg.countEmptyDecomposable && len(el.Children) == 0

	default:
		if len(el.Children) == 0 {
			return "<" + name + attrs + " />", false
		}
		var sb strings.Builder
		has := false
		for _, child := range el.Children {
			part, ok := renderNode(child, cfg, ix)
			sb.WriteString(part)
			has = has || ok
		}
		return "<" + name + attrs + ">" + sb.String() + "</" + name + ">", has
	}
}

// indexedName renders the placeholder tag name, "b#1". Members of a
// collation are always indexed; unindexed elements (reachable only
// through tolerated non-normalized structures) keep their plain name.
func indexedName(el *Element, tag string, ix *CollationIndex) string {
	if n, ok := ix.IndexOf(el); ok {
		return fmt.Sprintf("%s#%d", tag, n)
	}
	return tag
}

func renderAttrs(el *Element, tag string, cfg *Config) string {
	var kept []Attr
	for _, a := range el.Attrs {
		if cfg.attrAllowed(a.Name, tag) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	if cfg.sortAttributes {
		sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	}
	var sb strings.Builder
	for _, a := range kept {
		sb.WriteString(" ")
		sb.WriteString(strings.ToLower(a.Name))
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Value))
		sb.WriteString(`"`)
	}
	return sb.String()
}
