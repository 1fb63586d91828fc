package markup

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ZaguanLabs/loom"
)

// Parse reads a full HTML document into a loom tree. Misnested or
// unclosed markup is repaired, and the usual html/head/body scaffolding
// is synthesized when missing. The document node becomes a NodeList;
// doctypes carry no translatable content and are dropped.
func Parse(r io.Reader) (loom.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return convert(doc), nil
}

// ParseString parses a document held in memory.
func ParseString(s string) (loom.Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses a snippet in body context, without document
// scaffolding. The result holds the fragment's top-level nodes.
func ParseFragment(s string) (*loom.NodeList, error) {
	bodyCtx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), bodyCtx)
	if err != nil {
		return nil, err
	}

	list := &loom.NodeList{}
	for _, n := range nodes {
		if converted := convert(n); converted != nil {
			list.Children = append(list.Children, converted)
		}
	}
	return list, nil
}

func convert(n *html.Node) loom.Node {
	switch n.Type {
	case html.TextNode:
		return &loom.Text{Value: n.Data}

	case html.CommentNode:
		return &loom.Comment{Value: n.Data}

	case html.ElementNode:
		el := &loom.Element{Tag: n.Data}
		for _, a := range n.Attr {
			el.Attrs = append(el.Attrs, loom.Attr{Name: a.Key, Value: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convert(c); converted != nil {
				el.Children = append(el.Children, converted)
			}
		}
		return el

	case html.DocumentNode:
		list := &loom.NodeList{}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convert(c); converted != nil {
				list.Children = append(list.Children, converted)
			}
		}
		return list
	}

	// Doctype and raw nodes have no place in the translation model.
	return nil
}
