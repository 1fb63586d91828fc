package loom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize_FlattensLists(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Text{Value: "a"},
		&NodeList{Children: []Node{
			&Text{Value: "b"},
			&NodeList{Children: []Node{&Text{Value: "c"}}},
		}},
		&Text{Value: "d"},
	}}

	Normalize(tree)

	want := &Element{Tag: "p", Children: []Node{
		&Text{Value: "a"},
		&Text{Value: "b"},
		&Text{Value: "c"},
		&Text{Value: "d"},
	}}

	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_DescendsIntoElements(t *testing.T) {
	tree := &Element{Tag: "div", Children: []Node{
		&Element{Tag: "p", Children: []Node{
			&NodeList{Children: []Node{&Text{Value: "inner"}}},
		}},
	}}

	Normalize(tree)

	p := tree.Children[0].(*Element)
	if len(p.Children) != 1 {
		t.Fatalf("expected 1 child after flattening, got %d", len(p.Children))
	}
	if txt, ok := p.Children[0].(*Text); !ok || txt.Value != "inner" {
		t.Errorf("expected flattened text child, got %#v", p.Children[0])
	}
}

func TestNormalize_RootListSurvives(t *testing.T) {
	tree := &NodeList{Children: []Node{
		&NodeList{Children: []Node{&Text{Value: "x"}}},
		&Text{Value: "y"},
	}}

	got := Normalize(tree)

	root, ok := got.(*NodeList)
	if !ok {
		t.Fatalf("root should stay a NodeList, got %T", got)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 flattened children, got %d", len(root.Children))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&NodeList{Children: []Node{&Text{Value: "a"}}},
		&Element{Tag: "b", Children: []Node{&Text{Value: "c"}}},
	}}

	once := Normalize(tree)
	twice := Normalize(once)

	want := &Element{Tag: "p", Children: []Node{
		&Text{Value: "a"},
		&Element{Tag: "b", Children: []Node{&Text{Value: "c"}}},
	}}

	if diff := cmp.Diff(want, twice); diff != "" {
		t.Errorf("second Normalize changed the tree (-want +got):\n%s", diff)
	}
}

func TestNormalize_Nil(t *testing.T) {
	if got := Normalize(nil); got != nil {
		t.Errorf("Normalize(nil) = %v, want nil", got)
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	tree := &NodeList{Children: []Node{
		&Text{Value: "1"},
		&NodeList{Children: []Node{
			&Element{Tag: "b", Children: []Node{&Text{Value: "2"}}},
			&Comment{Value: "3"},
		}},
		&Text{Value: "4"},
	}}

	Normalize(tree)

	if len(tree.Children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(tree.Children))
	}
	if _, ok := tree.Children[1].(*Element); !ok {
		t.Errorf("child 1 should be the element, got %T", tree.Children[1])
	}
	if _, ok := tree.Children[2].(*Comment); !ok {
		t.Errorf("child 2 should be the comment, got %T", tree.Children[2])
	}
}
