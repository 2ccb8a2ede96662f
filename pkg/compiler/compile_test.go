package compiler

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/markup"
)

func compileYAML(t *testing.T, src string) Unit {
	t.Helper()
	n, err := markup.DecodeNode([]byte(src))
	if err != nil {
		t.Fatalf("DecodeNode() error = %v", err)
	}
	unit, err := New().Compile(n)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return unit
}

func TestCompileStatic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "element with literal attribute and text",
			src:  "el: h1\nattrs: {title: x}\nchildren: Hi",
			want: `<h1 title="x">Hi</h1>`,
		},
		{
			name: "literal children fold",
			src:  `{el: p, children: [a, "{ 1 + 2 }", "{ 'x' + 'y' }", "{ nil }", "{ true && false }"]}`,
			want: `<p>a3xy</p>`,
		},
		{
			name: "text is escaped",
			src:  `{el: p, children: ["a < b & c"]}`,
			want: `<p>a &lt; b &amp; c</p>`,
		},
		{
			name: "nested elements",
			src:  "el: ul\nchildren:\n  - {el: li, children: one}\n  - {el: li, children: two}",
			want: `<ul><li>one</li><li>two</li></ul>`,
		},
		{
			name: "boolean attributes",
			src:  "el: input\nattrs:\n  disabled: true\n  checked: false\n  required: ~\n  rows: \"{ 0 }\"\n  data-x: ~",
			want: `<input disabled checked required data-x/>`,
		},
		{
			name: "class and style fold",
			src: `
el: div
attrs:
  class: a b
  "class:on": true
  "class:off": false
  "class:bare": ~
  style: "color: red"
  "style:margin": "0"
`,
			want: `<div class="a b on bare" style="color: red;margin:0;"></div>`,
		},
		{
			name: "empty class is omitted",
			src:  "el: div\nattrs: {\"class:x\": false}",
			want: `<div></div>`,
		},
		{
			name: "set:html is raw",
			src:  "el: div\nattrs: {\"set:html\": \"<b>x</b>\"}\nchildren: ignored",
			want: `<div><b>x</b></div>`,
		},
		{
			name: "void element",
			src:  "el: br\nchildren: x",
			want: `<br/>`,
		},
		{
			name: "fragment merges text",
			src:  `[a, b, "{ 1 }"]`,
			want: `ab1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := compileYAML(t, tt.src)
			s, ok := unit.(*Static)
			if !ok {
				t.Fatalf("Compile() = %T, want *Static", unit)
			}
			if s.HTML != tt.want {
				t.Errorf("HTML = %q, want %q", s.HTML, tt.want)
			}
		})
	}
}

func TestCompileAwaitedChild(t *testing.T) {
	unit := compileYAML(t, `{el: div, children: ["{ await(asyncGetTitle()) }"]}`)

	el, ok := unit.(*Element)
	if !ok {
		t.Fatalf("Compile() = %T, want *Element", unit)
	}
	if len(el.Bindings) != 1 {
		t.Fatalf("len(Bindings) = %d, want 1", len(el.Bindings))
	}
	if el.Bindings[0].Name != "_v0" || el.Bindings[0].Expr.Source != "await(asyncGetTitle())" {
		t.Errorf("Bindings[0] = %+v", el.Bindings[0])
	}
	if len(el.Template.Slots) != 1 {
		t.Fatalf("len(Slots) = %d, want 1", len(el.Template.Slots))
	}

	want := []Segment{Text("<div>"), SlotRef(0), Text("</div>")}
	if diff := cmp.Diff(want, el.Template.Segments); diff != "" {
		t.Errorf("Segments mismatch (-want +got):\n%s", diff)
	}

	slot, ok := el.Template.Slots[0].(*ChildSlot)
	if !ok {
		t.Fatalf("Slots[0] = %T, want *ChildSlot", el.Template.Slots[0])
	}
	ref, ok := slot.Unit.(*ExprUnit)
	if !ok || ref.Expr.Source != "_v0" || ref.Async {
		t.Errorf("slot unit = %+v, want synchronous reference to _v0", slot.Unit)
	}
}

func TestCompileDynamicAttributes(t *testing.T) {
	unit := compileYAML(t, `
el: input
attrs:
  type: text
  value: "{ v }"
  checked: "{ c }"
  class: "{ cls }"
`)
	el, ok := unit.(*Element)
	if !ok {
		t.Fatalf("Compile() = %T, want *Element", unit)
	}

	want := []Segment{Text(`<input type="text"`), SlotRef(0), SlotRef(1), SlotRef(2), Text("/>")}
	if diff := cmp.Diff(want, el.Template.Segments); diff != "" {
		t.Errorf("Segments mismatch (-want +got):\n%s", diff)
	}

	value := el.Template.Slots[0].(*AttrSlot)
	if value.Name != "value" || value.Kind != attr.Booleanish {
		t.Errorf("Slots[0] = %+v", value)
	}
	checked := el.Template.Slots[1].(*AttrSlot)
	if checked.Name != "checked" || checked.Kind != attr.Boolean {
		t.Errorf("Slots[1] = %+v", checked)
	}
	if _, ok := el.Template.Slots[2].(*ClassSlot); !ok {
		t.Errorf("Slots[2] = %T, want *ClassSlot", el.Template.Slots[2])
	}
	if len(el.Bindings) != 0 {
		t.Errorf("Bindings = %v, want none", el.Bindings)
	}
}

func TestCompileMixedChildren(t *testing.T) {
	unit := compileYAML(t, `{el: p, children: ["Hello, ", "{ name }", "!"]}`)
	el := unit.(*Element)

	want := []Segment{Text("<p>Hello, "), SlotRef(0), Text("!</p>")}
	if diff := cmp.Diff(want, el.Template.Segments); diff != "" {
		t.Errorf("Segments mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileComponent(t *testing.T) {
	unit := compileYAML(t, `
component: Card
attrs:
  title: Hi
  count: "{ await(load()) }"
  ...: rest
children: [body]
`)
	call, ok := unit.(*Call)
	if !ok {
		t.Fatalf("Compile() = %T, want *Call", unit)
	}
	if call.Ref != "Card" || len(call.Props) != 3 {
		t.Fatalf("Call = %+v", call)
	}
	if call.Props[0].Value.Const != "Hi" {
		t.Errorf("title = %+v", call.Props[0].Value)
	}
	if e := call.Props[1].Value.Expr; e == nil || e.Source != "_v0" {
		t.Errorf("count = %+v, want reference to _v0", call.Props[1].Value)
	}
	if !call.Props[2].Spread {
		t.Errorf("Props[2] is not a spread")
	}
	if len(call.Bindings) != 1 {
		t.Errorf("len(Bindings) = %d, want 1", len(call.Bindings))
	}
	if s, ok := call.Children.(*Static); !ok || s.HTML != "body" {
		t.Errorf("Children = %+v", call.Children)
	}
}

func TestCompileFragmentAsync(t *testing.T) {
	unit := compileYAML(t, `[a, "{ await(x) }", b]`)
	f, ok := unit.(*Fragment)
	if !ok {
		t.Fatalf("Compile() = %T, want *Fragment", unit)
	}
	if len(f.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(f.Children))
	}
	if e, ok := f.Children[1].(*ExprUnit); !ok || !e.Async {
		t.Errorf("Children[1] = %+v, want async expression", f.Children[1])
	}
}

func TestCompileExprStatic(t *testing.T) {
	tests := []struct {
		src     string
		static  bool
		literal bool
	}{
		{"title", true, false},
		{"a ? b : 'x'", true, false},
		{"1 + 2", true, true},
		{"createID()", false, false},
		{"user.name", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := compileExpr(tt.src)
			if err != nil {
				t.Fatalf("compileExpr() error = %v", err)
			}
			if e.Static != tt.static || e.Literal != tt.literal {
				t.Errorf("compileExpr(%q) static = %v, literal = %v; want %v, %v", tt.src, e.Static, e.Literal, tt.static, tt.literal)
			}
		})
	}
}

func TestCompileSpreadBareAttribute(t *testing.T) {
	unit := compileYAML(t, "el: div\nattrs: {...: rest, data-x: ~, id: a}")
	el, ok := unit.(*SpreadElement)
	if !ok {
		t.Fatalf("Compile() = %T, want *SpreadElement", unit)
	}
	if !el.Props[1].Bare || el.Props[2].Bare {
		t.Errorf("Props = %+v, want only data-x bare", el.Props)
	}
}

func TestCompileSpread(t *testing.T) {
	unit := compileYAML(t, "el: a\nattrs: {href: /x, ...: rest}\nchildren: go")
	el, ok := unit.(*SpreadElement)
	if !ok {
		t.Fatalf("Compile() = %T, want *SpreadElement", unit)
	}
	if el.Tag != "a" || len(el.Props) != 2 || !el.Props[1].Spread {
		t.Errorf("SpreadElement = %+v", el)
	}
	if s, ok := el.Children.(*Static); !ok || s.HTML != "go" {
		t.Errorf("Children = %+v", el.Children)
	}
}

func TestCompileDirectives(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"head", "directive: head\nattrs: {type: pre}\nchildren: [{el: title, children: X}]", "head"},
		{"body", "directive: body\nchildren: x", "body"},
		{"comment", "directive: comment\nattrs: {value: hi}", "comment"},
		{"fragment", "directive: fragment\nattrs: {\"set:html\": \"<b>\"}", "fragment"},
		{"error boundary", "directive: error-boundary\nattrs: {fallback: {el: b, children: oops}}\nchildren: [\"{ risky() }\"]", "error-boundary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := compileYAML(t, tt.src)
			b, ok := unit.(*Builtin)
			if !ok {
				t.Fatalf("Compile() = %T, want *Builtin", unit)
			}
			if b.Name != tt.want {
				t.Errorf("Name = %q, want %q", b.Name, tt.want)
			}
		})
	}

	t.Run("dynamic", func(t *testing.T) {
		unit := compileYAML(t, "directive: dynamic\nattrs: {component: \"{ which }\", title: x}")
		d, ok := unit.(*Dynamic)
		if !ok {
			t.Fatalf("Compile() = %T, want *Dynamic", unit)
		}
		if d.Component.Expr == nil || d.Component.Expr.Source != "which" {
			t.Errorf("Component = %+v", d.Component)
		}
		if len(d.Props) != 1 || d.Props[0].Name != "title" {
			t.Errorf("Props = %+v", d.Props)
		}
	})
}

func TestCompileInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"unknown directive", "directive: portal", errors.CodeInvalidMarkup},
		{"boundary without fallback", "directive: error-boundary\nchildren: x", errors.CodeInvalidMarkup},
		{"bad injection type", "directive: head\nattrs: {type: middle}", errors.CodeInvalidMarkup},
		{"dynamic without component", "directive: dynamic", errors.CodeInvalidMarkup},
		{"comment without value", "directive: comment", errors.CodeInvalidMarkup},
		{"spread on directive", "directive: body\nattrs: {...: x}", errors.CodeInvalidMarkup},
		{"unknown set attribute", "el: div\nattrs: {\"set:text\": x}", errors.CodeInvalidMarkup},
		{"markup attribute value", "el: div\nattrs: {title: {el: b}}", errors.CodeInvalidMarkup},
		{"bad expression", `{el: p, children: ["{ 1 + }"]}`, errors.CodeExprCompile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := markup.DecodeNode([]byte(tt.src))
			if err != nil {
				t.Fatalf("DecodeNode() error = %v", err)
			}
			_, err = New().Compile(n)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Compile() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestCompileDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	src := `components:
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
	doc, err := markup.DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := New().CompileDocument(doc)
	if err != nil {
		t.Fatalf("CompileDocument() error = %v", err)
	}
	def, ok := p.Components["Title"]
	if !ok {
		t.Fatal("component Title missing")
	}
	if def.Document != "site" || len(def.Params) != 1 {
		t.Errorf("ComponentDef = %+v", def)
	}
	if _, ok := p.Pages["site"].(*Element); !ok {
		t.Errorf("Pages[site] = %T, want *Element", p.Pages["site"])
	}
}

func TestCompileDocumentErrorLocation(t *testing.T) {
	src := "page:\n  el: div\n  children:\n    - \"{ 1 + }\"\n"
	doc, err := markup.Decode([]byte(src), "bad", "bad.yaml")
	if err != nil {
		t.Fatal(err)
	}
	_, err = New().CompileDocument(doc)
	var se *errors.Error
	if !stderrors.As(err, &se) || se.Location == nil {
		t.Fatalf("error %v carries no location", err)
	}
	if se.Location.File != "bad.yaml" || se.Location.Line != 4 {
		t.Errorf("Location = %v, want bad.yaml:4", se.Location)
	}
}

func TestProgramMerge(t *testing.T) {
	a := NewProgram()
	a.Components["Card"] = &ComponentDef{Name: "Card", Document: "a"}
	b := NewProgram()
	b.Components["Card"] = &ComponentDef{Name: "Card", Document: "b"}
	b.Components["Nav"] = &ComponentDef{Name: "Nav", Document: "b"}

	if err := a.Merge(b); !errors.HasCode(err, errors.CodeInvalidMarkup) {
		t.Errorf("Merge() error = %v, want duplicate component error", err)
	}

	c := NewProgram()
	c.Components["Nav"] = &ComponentDef{Name: "Nav", Document: "c"}
	if err := a.Merge(c); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Card", "Nav"}, a.ComponentNames()); diff != "" {
		t.Errorf("ComponentNames() (-want +got):\n%s", diff)
	}
}

func TestTemplateBuilder(t *testing.T) {
	base := templateBuilder{}.text("<a>")
	merged := base.text("b")
	slotted := base.slot(&ChildSlot{Unit: &Static{}})

	if diff := cmp.Diff([]Segment{Text("<a>")}, base.segs); diff != "" {
		t.Errorf("base modified (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Segment{Text("<a>b")}, merged.segs); diff != "" {
		t.Errorf("merged (-want +got):\n%s", diff)
	}
	tmpl, err := slotted.text("</a>").build()
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	want := []Segment{Text("<a>"), SlotRef(0), Text("</a>")}
	if diff := cmp.Diff(want, tmpl.Segments); diff != "" {
		t.Errorf("Segments (-want +got):\n%s", diff)
	}

	bad := []*Template{
		{Segments: []Segment{Text("a"), Text("b")}},
		{Segments: []Segment{SlotRef(1)}, Slots: []Slot{&ChildSlot{}, &ChildSlot{}}},
		{Segments: []Segment{SlotRef(0)}, Slots: []Slot{&ChildSlot{}, &ChildSlot{}}},
	}
	for i, tmpl := range bad {
		if err := tmpl.validate(); err == nil {
			t.Errorf("bad[%d].validate() succeeded", i)
		}
	}
}

func TestSlotRender(t *testing.T) {
	cs := &ClassSlot{Items: []ClassItem{{}, {Name: "on"}, {Name: "off"}}}
	if got := cs.Render([]any{[]any{"a", map[string]any{"b": true}}, 1, 0}); got != ` class="a b on"` {
		t.Errorf("ClassSlot.Render() = %q", got)
	}
	ss := &StyleSlot{Items: []StyleItem{{}, {Property: "color"}, {Property: "gap"}}}
	if got := ss.Render([]any{"margin:0", "red", nil}); got != ` style="margin:0;color:red;"` {
		t.Errorf("StyleSlot.Render() = %q", got)
	}
	as := &AttrSlot{Name: "hidden", Kind: attr.Boolean}
	if got := as.Render(nil); got != "" {
		t.Errorf("AttrSlot.Render(nil) = %q", got)
	}
	if got := as.Render(false); got != " hidden" {
		t.Errorf("AttrSlot.Render(false) = %q", got)
	}
	if got := as.Render(true); got != " hidden" {
		t.Errorf("AttrSlot.Render(true) = %q", got)
	}
}
