// Package markup adapts HTML documents to the engine's node model. It
// is the tolerant side of the parser boundary: real-world documents go
// through x/net/html, which repairs misnested markup the way browsers
// do, while translated strings are parsed strictly by the engine itself.
package markup

import "github.com/ZaguanLabs/loom"

// Codec implements loom.DocumentCodec for HTML documents.
type Codec struct{}

// NewCodec returns the HTML codec.
func NewCodec() *Codec {
	return &Codec{}
}

// ContentType identifies this codec to the translator.
func (*Codec) ContentType() string {
	return "html"
}

// Parse reads a full HTML document into a loom tree.
func (*Codec) Parse(text string) (loom.Node, error) {
	return ParseString(text)
}

// Render serializes a loom tree back to HTML markup.
func (*Codec) Render(tree loom.Node) (string, error) {
	return RenderString(tree)
}

// Verify Codec implements DocumentCodec
var _ loom.DocumentCodec = (*Codec)(nil)
