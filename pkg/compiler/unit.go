package compiler

import (
	"sort"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/markup"
)

// Unit is one node of the compiled call graph.
type Unit interface {
	unit()
}

// Static is fully folded output.
type Static struct {
	HTML string
}

// Element is an intrinsic element rendered from a template.
type Element struct {
	Tag      string
	Template *Template
	Bindings []Binding
	Pos      markup.Pos
}

// SpreadElement is an element whose attributes are assembled at render time
// because it carries a spread.
type SpreadElement struct {
	Tag      string
	Props    []Prop
	Children Unit
	Bindings []Binding
	Pos      markup.Pos
}

// Call activates a named component.
type Call struct {
	Ref      string
	Props    []Prop
	Children Unit
	Bindings []Binding
	Pos      markup.Pos
}

// Dynamic activates the component its Component operand evaluates to.
type Dynamic struct {
	Component Operand
	Props     []Prop
	Children  Unit
	Bindings  []Binding
	Pos       markup.Pos
}

// Builtin is a directive handled by the renderer.
type Builtin struct {
	Name     string
	Props    []Prop
	Children Unit
	Bindings []Binding
	Pos      markup.Pos
}

// Fragment is an ordered sequence of units.
type Fragment struct {
	Children []Unit
}

// ExprUnit renders the value of one expression. Async units run on their
// own goroutine.
type ExprUnit struct {
	Expr  *Expr
	Async bool
}

func (*Static) unit()        {}
func (*Element) unit()       {}
func (*SpreadElement) unit() {}
func (*Call) unit()          {}
func (*Dynamic) unit()       {}
func (*Builtin) unit()       {}
func (*Fragment) unit()      {}
func (*ExprUnit) unit()      {}

// Slot is a dynamic position of a Template.
type Slot interface {
	slot()
}

// AttrSlot renders one attribute. Output includes the leading space.
type AttrSlot struct {
	Name string
	Kind attr.Kind
	Expr *Expr
}

// ClassSlot renders the merged class attribute.
type ClassSlot struct {
	Items []ClassItem
}

// ClassItem is one class source. A named item (`class:name`) contributes
// Name when Value is truthy; an unnamed item is a class list value.
type ClassItem struct {
	Name  string
	Value Operand
}

// StyleSlot renders the merged style attribute.
type StyleSlot struct {
	Items []StyleItem
}

// StyleItem is one style source. A named item (`style:prop`) declares
// Property; an unnamed item is a style string or map.
type StyleItem struct {
	Property string
	Value    Operand
}

// ChildSlot renders child content. Raw content is not escaped.
type ChildSlot struct {
	Unit Unit
	Raw  bool
}

func (*AttrSlot) slot()  {}
func (*ClassSlot) slot() {}
func (*StyleSlot) slot() {}
func (*ChildSlot) slot() {}

// Operand is a value known at compile time (Const), computed by an
// expression (Expr) or rendered from markup (Unit). Exactly one form is set;
// a zero Operand is the constant nil.
type Operand struct {
	Const any
	Expr  *Expr
	Unit  Unit
}

// IsConst reports whether o needs no evaluation.
func (o Operand) IsConst() bool {
	return o.Expr == nil && o.Unit == nil
}

// Prop is a component or directive property. Spread props merge the map
// their Value evaluates to.
type Prop struct {
	Name   string
	Spread bool
	// Bare marks an attribute written without a value.
	Bare  bool
	Value Operand
}

// Binding is a hoisted awaited expression evaluated before its unit.
type Binding struct {
	Name string
	Expr *Expr
}

// ComponentDef is a compiled markup component.
type ComponentDef struct {
	Name     string
	Params   []string
	Body     Unit
	Document string
}

// Program is the compiled form of one or more documents.
type Program struct {
	Components map[string]*ComponentDef
	Pages      map[string]Unit
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{
		Components: make(map[string]*ComponentDef),
		Pages:      make(map[string]Unit),
	}
}

// Merge adds every component and page of other to p. A component defined by
// two different documents is an error.
func (p *Program) Merge(other *Program) error {
	for name, def := range other.Components {
		if prev, ok := p.Components[name]; ok && prev.Document != def.Document {
			return errors.New(errors.CodeInvalidMarkup).
				WithDetailf("component %q defined in both %q and %q", name, prev.Document, def.Document)
		}
	}
	for name, def := range other.Components {
		p.Components[name] = def
	}
	for name, u := range other.Pages {
		p.Pages[name] = u
	}
	return nil
}

// ComponentNames returns the component names in sorted order.
func (p *Program) ComponentNames() []string {
	names := make([]string, 0, len(p.Components))
	for name := range p.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
