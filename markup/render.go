package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ZaguanLabs/loom"
)

// Render serializes a loom tree back to HTML. A NodeList renders as a
// sequence of sibling roots; any other node renders alone.
func Render(w io.Writer, tree loom.Node) error {
	for _, n := range convertBack(tree) {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders a tree into a string.
func RenderString(tree loom.Node) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, tree); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func convertBack(n loom.Node) []*html.Node {
	switch v := n.(type) {
	case *loom.Text:
		return []*html.Node{{Type: html.TextNode, Data: v.Value}}

	case *loom.Comment:
		return []*html.Node{{Type: html.CommentNode, Data: v.Value}}

	case *loom.Element:
		el := &html.Node{
			Type:     html.ElementNode,
			Data:     v.Tag,
			DataAtom: atom.Lookup([]byte(v.Tag)),
		}
		for _, a := range v.Attrs {
			el.Attr = append(el.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
		for _, c := range v.Children {
			for _, child := range convertBack(c) {
				el.AppendChild(child)
			}
		}
		return []*html.Node{el}

	case *loom.NodeList:
		var roots []*html.Node
		for _, c := range v.Children {
			roots = append(roots, convertBack(c)...)
		}
		return roots
	}

	return nil
}
