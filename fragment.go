package loom

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// The bundle form marks placeholder indices with '#', which is not a
// name character in the strict grammar. Before parsing, the delimiter
// inside tag names is translated to '.'; splitIndexedTag reverses it
// when indices are extracted. The translation is length-preserving, so
// error offsets remain valid against the original string.
var placeholderDelim = regexp.MustCompile(`(</?)([^<>\s/]+)#(\d+)`)

// Translated strings are parsed under a synthetic root so that sibling
// runs form a single well-formed document.
const fragmentWrapper = "loom-fragment"

// parseFragment parses one translated resource bundle string into a
// flat fragment tree. Parsing is strict: the input must be well-formed
// after delimiter translation, with HTML entity names honored.
func parseFragment(s string) (*NodeList, error) {
	encoded := placeholderDelim.ReplaceAllString(s, "$1$2.$3")
	wrapped := "<" + fragmentWrapper + ">" + encoded + "</" + fragmentWrapper + ">"

	d := xml.NewDecoder(strings.NewReader(wrapped))
	d.Entity = xml.HTMLEntity

	root := &NodeList{}
	var stack []*Element
	appendNode := func(n Node) {
		if len(stack) == 0 {
			root.Children = append(root.Children, n)
		} else {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
		}
	}

	depth := 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fragmentParseError(s, err, d.InputOffset())
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				continue // synthetic wrapper
			}
			el := &Element{Tag: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			appendNode(el)
			stack = append(stack, el)
		case xml.EndElement:
			depth--
			if depth == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			appendNode(&Text{Value: string(t)})
		case xml.Comment:
			appendNode(&Comment{Value: string(t)})
		}
	}
	return root, nil
}

// splitIndexedTag extracts the original tag name and 1-based index from
// a fragment element name in translated form ("b.1" for bundle "b#1").
// A name containing internal dots splits at the last dot, so tags like
// "v1.2#3" survive the round trip.
func splitIndexedTag(tag string) (name string, index int, ok bool) {
	m := indexedTag.FindStringSubmatch(tag)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

var indexedTag = regexp.MustCompile(`^(.+)\.([0-9]+)$`)

// excerptWidth is the size of the context window included in parse
// diagnostics, centered on the failing column.
const excerptWidth = 40

func fragmentParseError(s string, err error, offset int64) *ParseError {
	pos := int(offset) - len("<"+fragmentWrapper+">")
	if pos < 0 {
		pos = 0
	}
	if pos > len(s) {
		pos = len(s)
	}

	line, col := 1, 1
	for _, b := range []byte(s[:pos]) {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	// The wrapper adds no newlines, so the strict parser's own line
	// number is valid against the original string; prefer it.
	var syn *xml.SyntaxError
	if errors.As(err, &syn) && syn.Line > 0 {
		line = syn.Line
	}

	return &ParseError{Line: line, Column: col, Excerpt: excerpt(s, pos), Cause: err}
}

// excerpt returns a window of the failing line centered on pos.
func excerpt(s string, pos int) string {
	start := strings.LastIndexByte(s[:pos], '\n') + 1
	end := strings.IndexByte(s[pos:], '\n')
	if end < 0 {
		end = len(s)
	} else {
		end += pos
	}
	line := s[start:end]
	col := pos - start

	lo := col - excerptWidth/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + excerptWidth
	if hi > len(line) {
		hi = len(line)
		lo = hi - excerptWidth
		if lo < 0 {
			lo = 0
		}
	}
	return line[lo:hi]
}
