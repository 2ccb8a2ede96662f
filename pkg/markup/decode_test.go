package markup

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/slate/internal/errors"
)

var ignorePos = cmpopts.IgnoreTypes(Pos{})

func TestDecodeNode(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Node
	}{
		{
			name: "text scalar",
			src:  `hello`,
			want: &Text{Value: "hello"},
		},
		{
			name: "braced scalar is an expression",
			src:  `"{ user.name }"`,
			want: &Expr{Source: "user.name"},
		},
		{
			name: "number scalar is an expression",
			src:  `42`,
			want: &Expr{Source: "42"},
		},
		{
			name: "sequence is a fragment",
			src:  "- a\n- \"{ b }\"\n",
			want: &Fragment{Children: []Node{&Text{Value: "a"}, &Expr{Source: "b"}}},
		},
		{
			name: "element with ordered attributes",
			src: `
el: input
attrs:
  type: text
  disabled: true
  required: ~
  value: "{ v }"
  class:active: "{ on }"
  ...: rest
`,
			want: &Element{
				Tag: "input",
				Attrs: []Attr{
					&Attribute{Name: "type", Value: String("text")},
					&Attribute{Name: "disabled", Value: Code("true")},
					&Attribute{Name: "required"},
					&Attribute{Name: "value", Value: Code("v")},
					&Attribute{Namespace: "class", Name: "active", Value: Code("on")},
					&Spread{Source: "rest"},
				},
			},
		},
		{
			name: "component with children",
			src: `
component: Card
attrs: {title: Hi}
children:
  - el: p
    children: body
`,
			want: &Component{
				Ref:   "Card",
				Attrs: []Attr{&Attribute{Name: "title", Value: String("Hi")}},
				Children: []Node{
					&Element{Tag: "p", Children: []Node{&Text{Value: "body"}}},
				},
			},
		},
		{
			name: "directive with markup-valued attribute",
			src: `
directive: error-boundary
attrs:
  fallback:
    el: b
    children: ["{ error.message }"]
children: ["{ risky() }"]
`,
			want: &Directive{
				Name: "error-boundary",
				Attrs: []Attr{
					&Attribute{Name: "fallback", Value: &Markup{Node: &Element{
						Tag:      "b",
						Children: []Node{&Expr{Source: "error.message"}},
					}}},
				},
				Children: []Node{&Expr{Source: "risky()"}},
			},
		},
		{
			name: "explicit text keeps braces",
			src:  `text: "{not code}"`,
			want: &Text{Value: "{not code}"},
		},
		{
			name: "explicit expr",
			src:  `expr: a + 1`,
			want: &Expr{Source: "a + 1"},
		},
		{
			name: "children-only mapping is a fragment",
			src:  "children: [x, y]",
			want: &Fragment{Children: []Node{&Text{Value: "x"}, &Text{Value: "y"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeNode([]byte(tt.src))
			if err != nil {
				t.Fatalf("DecodeNode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("DecodeNode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeNodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"two kinds", "el: div\ncomponent: Card"},
		{"unknown key", "el: div\nstyle: x"},
		{"attrs on text", "text: hi\nattrs: {a: b}"},
		{"empty expression", `"{ }"`},
		{"bad namespace", "el: div\nattrs: {\":x\": y}"},
		{"no kind", "attrs: {a: b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNode([]byte(tt.src))
			if err == nil {
				t.Fatal("DecodeNode() succeeded, want error")
			}
			if !errors.HasCode(err, errors.CodeDecode) {
				t.Errorf("error = %v, want code %s", err, errors.CodeDecode)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home.yaml")
	src := `
components:
  Title:
    params: [text]
    render:
      el: h1
      children: ["{ text }"]
page:
  el: main
  children:
    - component: Title
      attrs: {text: Welcome}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if doc.Name != "home" || doc.File != path {
		t.Errorf("Name, File = %q, %q", doc.Name, doc.File)
	}
	if diff := cmp.Diff([]string{"Title"}, doc.ComponentNames()); diff != "" {
		t.Errorf("ComponentNames() (-want +got):\n%s", diff)
	}

	def := doc.Components["Title"]
	if diff := cmp.Diff([]string{"text"}, def.Params); diff != "" {
		t.Errorf("Params (-want +got):\n%s", diff)
	}
	if def.Pos.Line != 4 {
		t.Errorf("definition line = %d, want 4", def.Pos.Line)
	}
	if _, ok := doc.Page.(*Element); !ok {
		t.Errorf("Page = %T, want *Element", doc.Page)
	}
}

func TestDecodeErrorLocation(t *testing.T) {
	src := "page:\n  el: div\n  bogus: 1\n"
	_, err := Decode([]byte(src), "x", "x.yaml")
	if err == nil {
		t.Fatal("Decode() succeeded, want error")
	}
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Location == nil {
		t.Fatalf("error %v carries no location", err)
	}
	if se.Location.Line != 3 {
		t.Errorf("Location.Line = %d, want 3", se.Location.Line)
	}
}
