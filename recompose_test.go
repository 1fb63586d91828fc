package loom

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecompose_Identity(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Hello "},
		&Element{Tag: "b", Children: []Node{&Text{Value: "world"}}},
	}}

	ctx := Decompose(tree, nil)
	if err := ctx.Recompose(ctx.Bundle(), nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Hello "},
		&Element{Tag: "b", Children: []Node{&Text{Value: "world"}}},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_Translated(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Hello "},
		&Element{Tag: "b", Children: []Node{&Text{Value: "world"}}},
	}}

	ctx := Decompose(tree, nil)
	if err := ctx.Recompose([]string{"Hola <b#1>mundo</b#1>"}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Hola "},
		&Element{Tag: "b", Children: []Node{&Text{Value: "mundo"}}},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_ReorderedPlaceholders(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Text{Value: "The "},
		&Element{Tag: "b", Children: []Node{&Text{Value: "blue"}}},
		&Text{Value: " skies"},
	}}

	ctx := Decompose(tree, nil)
	if err := ctx.Recompose([]string{"<b#1>azules</b#1> los cielos"}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &Element{Tag: "p", Children: []Node{
		&Element{Tag: "b", Children: []Node{&Text{Value: "azules"}}},
		&Text{Value: " los cielos"},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_SingleUse(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{&Text{Value: "Hello"}}}
	ctx := Decompose(tree, nil)

	if err := ctx.Recompose([]string{"Hola"}, nil); err != nil {
		t.Fatalf("first Recompose failed: %v", err)
	}
	if !ctx.IsDirty() {
		t.Error("context should be dirty after Recompose")
	}

	// The reuse error wins regardless of arguments: even a slice of the
	// wrong length reports reuse, not a count mismatch.
	err := ctx.Recompose(nil, nil)
	var reused *ContextReusedError
	if !errors.As(err, &reused) {
		t.Fatalf("expected *ContextReusedError, got %T: %v", err, err)
	}
	if reused.Session != ctx.ID() {
		t.Errorf("Session = %q, want %q", reused.Session, ctx.ID())
	}
}

func TestRecompose_CountMismatchKeepsContextUsable(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{&Text{Value: "Hello"}}}
	ctx := Decompose(tree, nil)

	err := ctx.Recompose([]string{"Hola", "extra"}, nil)
	var cm *CountMismatchError
	if !errors.As(err, &cm) {
		t.Fatalf("expected *CountMismatchError, got %T: %v", err, err)
	}
	if cm.Expected != 1 || cm.Got != 2 {
		t.Errorf("CountMismatchError = %+v", cm)
	}
	if ctx.IsDirty() {
		t.Error("a rejected batch must not burn the context")
	}

	// A correctly sized batch still goes through
	if err := ctx.Recompose([]string{"Hola"}, nil); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestRecompose_BadTranslations(t *testing.T) {
	tests := []struct {
		name        string
		tree        Node
		translation string
		wantErr     string
		check       func(t *testing.T, err error)
	}{
		{
			name: "tag without index",
			tree: &Element{Tag: "p", Children: []Node{
				&Element{Tag: "b", Children: []Node{&Text{Value: "x"}}},
			}},
			translation: "<b>x</b>",
			wantErr:     "cannot extract index from tag: <b>.",
			check: func(t *testing.T, err error) {
				var tfe *TagFormatError
				if !errors.As(err, &tfe) || tfe.Tag != "b" {
					t.Errorf("expected TagFormatError for b, got %v", err)
				}
			},
		},
		{
			name: "index not in unit",
			tree: &Element{Tag: "p", Children: []Node{
				&Element{Tag: "b", Children: []Node{&Text{Value: "x"}}},
			}},
			translation: "<b#2>x</b#2>",
			wantErr:     "Unexpected tag: <b#2>.",
			check: func(t *testing.T, err error) {
				var ute *UnexpectedTagError
				if !errors.As(err, &ute) || ute.Tag != "b#2" {
					t.Errorf("expected UnexpectedTagError for b#2, got %v", err)
				}
			},
		},
		{
			name: "placeholders dropped",
			tree: &Element{Tag: "p", Children: []Node{
				&Text{Value: "x "},
				&Element{Tag: "a", Children: []Node{&Text{Value: "1"}}},
				&Text{Value: " y "},
				&Element{Tag: "a", Children: []Node{&Text{Value: "2"}}},
			}},
			translation: "just text",
			wantErr:     "Expected to find the following tags: <a#1>, <a#2>.",
			check: func(t *testing.T, err error) {
				var mte *MissingTagsError
				if !errors.As(err, &mte) {
					t.Fatalf("expected MissingTagsError, got %v", err)
				}
				if len(mte.Tags) != 2 || mte.Tags[0] != "a#1" || mte.Tags[1] != "a#2" {
					t.Errorf("Tags = %v", mte.Tags)
				}
			},
		},
		{
			name:        "malformed markup",
			tree:        &Element{Tag: "p", Children: []Node{&Text{Value: "x"}}},
			translation: "Hola <b",
			wantErr:     "cannot parse translation",
			check: func(t *testing.T, err error) {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("expected ParseError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Decompose(tt.tree, nil)
			err := ctx.Recompose([]string{tt.translation}, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var item *ItemError
			if !errors.As(err, &item) {
				t.Fatalf("expected *ItemError, got %T: %v", err, err)
			}
			if item.Index != 0 {
				t.Errorf("Index = %d, want 0", item.Index)
			}
			if item.Session != ctx.ID() {
				t.Errorf("Session = %q, want %q", item.Session, ctx.ID())
			}
			if len(item.Stack) == 0 {
				t.Error("Stack should be captured")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error() = %q, want substring %q", err.Error(), tt.wantErr)
			}
			tt.check(t, err)
		})
	}
}

func TestRecompose_ItemIsolation(t *testing.T) {
	tree := &Element{Tag: "div", Children: []Node{
		&Element{Tag: "p", Children: []Node{&Text{Value: "One"}}},
		&Element{Tag: "p", Children: []Node{&Text{Value: "Two"}}},
	}}

	ctx := Decompose(tree, nil)
	var sink ItemErrors
	err := ctx.Recompose([]string{"<b#1>bad</b#1>", "Dos"}, &sink)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if len(sink) != 1 {
		t.Fatalf("sink length = %d, want 1", len(sink))
	}
	if sink[0].Index != 0 {
		t.Errorf("sink[0].Index = %d, want 0", sink[0].Index)
	}
	if !strings.Contains(err.Error(), "resource bundle item 0:") {
		t.Errorf("Error() = %q", err.Error())
	}

	// The bad unit keeps its original nodes; the good one is committed.
	want := &Element{Tag: "div", Children: []Node{
		&Element{Tag: "p", Children: []Node{&Text{Value: "One"}}},
		&Element{Tag: "p", Children: []Node{&Text{Value: "Dos"}}},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_ReturnsLastFailure(t *testing.T) {
	tree := &Element{Tag: "div", Children: []Node{
		&Element{Tag: "p", Children: []Node{
			&Element{Tag: "b", Children: []Node{&Text{Value: "x"}}},
		}},
		&Element{Tag: "p", Children: []Node{
			&Element{Tag: "i", Children: []Node{&Text{Value: "y"}}},
		}},
	}}

	ctx := Decompose(tree, nil)
	var sink ItemErrors
	err := ctx.Recompose([]string{"<b>x</b>", "<i>y</i>"}, &sink)

	var item *ItemError
	if !errors.As(err, &item) {
		t.Fatalf("expected *ItemError, got %v", err)
	}
	if item.Index != 1 {
		t.Errorf("returned Index = %d, want 1 (the last failure)", item.Index)
	}
	if got := sink.Indexes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Indexes() = %v, want [0 1]", got)
	}
}

func TestRecompose_OpaqueContentPreserved(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Run "},
		&Element{Tag: "script", Children: []Node{&Text{Value: "x()"}}},
		&Text{Value: " now"},
	}}

	ctx := Decompose(tree, nil)
	if err := ctx.Recompose([]string{"Ejecuta <script#1 /> ahora"}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Ejecuta "},
		&Element{Tag: "script", Children: []Node{&Text{Value: "x()"}}},
		&Text{Value: " ahora"},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_AttributeEligibility(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Element{Tag: "a", Attrs: []Attr{
			{Name: "href", Value: "/x"},
			{Name: "title", Value: "Link"},
		}, Children: []Node{&Text{Value: "Click"}}},
	}}

	ctx := Decompose(tree, nil)
	translation := `<a#1 title="Hola" href="/evil" onclick="x()">Hola</a#1>`
	if err := ctx.Recompose([]string{translation}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	// title is translatable; href is carried but not exposed; onclick
	// was never on the original and cannot be introduced.
	want := &Element{Tag: "p", Children: []Node{
		&Element{Tag: "a", Attrs: []Attr{
			{Name: "href", Value: "/x"},
			{Name: "title", Value: "Hola"},
		}, Children: []Node{&Text{Value: "Hola"}}},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_NestedUnits(t *testing.T) {
	cfg := mustConfig(t, ConfigSpec{
		InlineTags:             []string{"b"},
		OpaqueDecomposableTags: []string{"details"},
	})
	tree := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Start "},
		&Element{Tag: "details", Children: []Node{
			&Element{Tag: "p", Children: []Node{&Text{Value: "Inner"}}},
		}},
		&Text{Value: " end"},
	}}

	ctx := Decompose(tree, cfg)
	if err := ctx.Recompose([]string{"Vea <details#1 /> aqui", "Interior"}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &Element{Tag: "p", Children: []Node{
		&Text{Value: "Vea "},
		&Element{Tag: "details", Children: []Node{
			&Element{Tag: "p", Children: []Node{&Text{Value: "Interior"}}},
		}},
		&Text{Value: " aqui"},
	}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_RootTextUnit(t *testing.T) {
	ctx := Decompose(&Text{Value: "Hello"}, nil)
	if err := ctx.Recompose([]string{"Hola"}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &NodeList{Children: []Node{&Text{Value: "Hola"}}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("root mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_DirectiveComments(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{
		&Comment{Value: " I18N: formal "},
		&Text{Value: "Hello"},
	}}

	// A translation that drops the directive leaves no comment behind
	ctx := Decompose(tree, nil)
	if err := ctx.Recompose([]string{"Hola"}, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}
	want := &Element{Tag: "p", Children: []Node{&Text{Value: "Hola"}}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	// One that echoes it keeps the comment node
	tree2 := &Element{Tag: "p", Children: []Node{
		&Comment{Value: " I18N: formal "},
		&Text{Value: "Hello"},
	}}
	ctx2 := Decompose(tree2, nil)
	if err := ctx2.Recompose(ctx2.Bundle(), nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}
	want2 := &Element{Tag: "p", Children: []Node{
		&Comment{Value: " I18N: formal "},
		&Text{Value: "Hello"},
	}}
	if diff := cmp.Diff(Node(want2), ctx2.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecompose_TrimmedPaddingNotRestored(t *testing.T) {
	tree := &Element{Tag: "p", Children: []Node{&Text{Value: "  Hello  "}}}
	ctx := Decompose(tree, nil)

	bundle := ctx.Bundle()
	if bundle[0] != "Hello" {
		t.Fatalf("bundle = %q, want trimmed form", bundle[0])
	}
	if err := ctx.Recompose(bundle, nil); err != nil {
		t.Fatalf("Recompose failed: %v", err)
	}

	want := &Element{Tag: "p", Children: []Node{&Text{Value: "Hello"}}}
	if diff := cmp.Diff(Node(want), ctx.Root()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}
