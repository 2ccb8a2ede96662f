package compiler

import (
	stderrors "errors"
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/markup"
)

// Compiler turns markup trees into units. A Compiler is safe for concurrent
// use; binding names are unique across everything it compiles.
type Compiler struct {
	table  attr.Table
	logger *slog.Logger
	seq    atomic.Int64
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithAttrTable replaces the attribute classification table.
func WithAttrTable(t attr.Table) Option {
	return func(c *Compiler) {
		c.table = t
	}
}

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{table: attr.DefaultTable}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "compiler")
	return c
}

// Compile compiles one markup tree.
func (c *Compiler) Compile(n markup.Node) (Unit, error) {
	u := &unitCompiler{Compiler: c}
	return u.node(n)
}

// CompileDocument compiles every component of doc and its page. Errors carry
// the location of the offending node in doc.File.
func (c *Compiler) CompileDocument(doc *markup.Document) (*Program, error) {
	u := &unitCompiler{Compiler: c, file: doc.File}
	p := NewProgram()

	for _, name := range doc.ComponentNames() {
		def := doc.Components[name]
		body, err := u.node(def.Root)
		if err != nil {
			return nil, err
		}
		p.Components[name] = &ComponentDef{
			Name:     name,
			Params:   def.Params,
			Body:     body,
			Document: doc.Name,
		}
	}

	if doc.Page != nil {
		page, err := u.node(doc.Page)
		if err != nil {
			return nil, err
		}
		p.Pages[doc.Name] = page
	}

	c.logger.Debug("document compiled",
		"document", doc.Name,
		"components", len(p.Components),
		"page", doc.Page != nil)
	return p, nil
}

// unitCompiler carries the per-document state of a compilation.
type unitCompiler struct {
	*Compiler
	file string
}

// at attaches pos to err unless it already has a location.
func (u *unitCompiler) at(err error, pos markup.Pos) error {
	var se *errors.Error
	if stderrors.As(err, &se) && se.Location == nil && pos.Line > 0 {
		se.WithLocation(u.file, pos.Line, pos.Column)
	}
	return err
}

func (u *unitCompiler) invalid(pos markup.Pos, format string, args ...any) error {
	return u.at(errors.New(errors.CodeInvalidMarkup).WithDetailf(format, args...), pos)
}

func (u *unitCompiler) expr(src string, pos markup.Pos) (*Expr, error) {
	e, err := compileExpr(src)
	if err != nil {
		return nil, u.at(err, pos)
	}
	return e, nil
}

// node compiles n outside of any element template. Awaited expressions
// become async units.
func (u *unitCompiler) node(n markup.Node) (Unit, error) {
	switch n := n.(type) {
	case *markup.Text:
		return &Static{HTML: attr.Escape(n.Value)}, nil
	case *markup.Expr:
		e, err := u.expr(n.Source, n.Pos)
		if err != nil {
			return nil, err
		}
		if e.Literal {
			return &Static{HTML: attr.Escape(SerializeLiteral(e.Value))}, nil
		}
		return &ExprUnit{Expr: e, Async: e.Awaited}, nil
	case *markup.Fragment:
		return u.children(n.Children)
	case *markup.Element:
		return u.element(n)
	case *markup.Component:
		return u.component(n)
	case *markup.Directive:
		return u.directive(n)
	case nil:
		return &Static{}, nil
	}
	return nil, u.invalid(n.Position(), "unsupported node %T", n)
}

func (u *unitCompiler) children(nodes []markup.Node) (Unit, error) {
	units := make([]Unit, 0, len(nodes))
	for _, n := range nodes {
		unit, err := u.node(n)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return join(units), nil
}

// optionalChildren is children, or nil when there are none.
func (u *unitCompiler) optionalChildren(nodes []markup.Node) (Unit, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	return u.children(nodes)
}

// join flattens nested fragments and merges adjacent static units.
func join(units []Unit) Unit {
	var out []Unit
	for _, unit := range flatten(units) {
		if s, ok := unit.(*Static); ok {
			if s.HTML == "" {
				continue
			}
			if n := len(out); n > 0 {
				if prev, ok := out[n-1].(*Static); ok {
					out[n-1] = &Static{HTML: prev.HTML + s.HTML}
					continue
				}
			}
		}
		out = append(out, unit)
	}
	switch len(out) {
	case 0:
		return &Static{}
	case 1:
		return out[0]
	}
	return &Fragment{Children: out}
}

func flatten(units []Unit) []Unit {
	var out []Unit
	for _, unit := range units {
		if f, ok := unit.(*Fragment); ok {
			out = append(out, flatten(f.Children)...)
			continue
		}
		out = append(out, unit)
	}
	return out
}

func (u *unitCompiler) component(n *markup.Component) (Unit, error) {
	h := newHoister(u.Compiler)
	props, err := u.props(h, n.Attrs)
	if err != nil {
		return nil, err
	}
	children, err := u.optionalChildren(n.Children)
	if err != nil {
		return nil, err
	}
	return &Call{
		Ref:      n.Ref,
		Props:    props,
		Children: children,
		Bindings: h.bindings,
		Pos:      n.Pos,
	}, nil
}

// props compiles component or directive attributes. An attribute without a
// value is true.
func (u *unitCompiler) props(h *hoister, attrs []markup.Attr) ([]Prop, error) {
	props := make([]Prop, 0, len(attrs))
	for _, a := range attrs {
		switch a := a.(type) {
		case *markup.Spread:
			e, err := u.expr(a.Source, a.Pos)
			if err != nil {
				return nil, err
			}
			op, err := h.operand(e)
			if err != nil {
				return nil, err
			}
			props = append(props, Prop{Spread: true, Value: op})
		case *markup.Attribute:
			op, err := u.operand(h, a)
			if err != nil {
				return nil, err
			}
			props = append(props, Prop{Name: a.QualifiedName(), Value: op})
		}
	}
	return props, nil
}

func (u *unitCompiler) operand(h *hoister, a *markup.Attribute) (Operand, error) {
	switch v := a.Value.(type) {
	case nil:
		return Operand{Const: true}, nil
	case markup.String:
		return Operand{Const: string(v)}, nil
	case markup.Code:
		e, err := u.expr(string(v), a.Pos)
		if err != nil {
			return Operand{}, err
		}
		return h.operand(e)
	case *markup.Markup:
		unit, err := u.node(v.Node)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Unit: unit}, nil
	}
	return Operand{}, u.invalid(a.Pos, "unsupported value for %q", a.QualifiedName())
}

func (u *unitCompiler) directive(n *markup.Directive) (Unit, error) {
	h := newHoister(u.Compiler)
	props, err := u.props(h, n.Attrs)
	if err != nil {
		return nil, err
	}
	children, err := u.optionalChildren(n.Children)
	if err != nil {
		return nil, err
	}

	if n.Name == markup.DirectiveDynamic {
		d := &Dynamic{Children: children, Pos: n.Pos}
		found := false
		for _, p := range props {
			if !p.Spread && p.Name == "component" {
				d.Component, found = p.Value, true
				continue
			}
			d.Props = append(d.Props, p)
		}
		if !found {
			return nil, u.invalid(n.Pos, "dynamic needs a component attribute")
		}
		d.Bindings = h.bindings
		return d, nil
	}

	for _, p := range props {
		if p.Spread {
			return nil, u.invalid(n.Pos, "%s does not take spread attributes", n.Name)
		}
	}

	switch n.Name {
	case markup.DirectiveHead, markup.DirectiveBody:
		if p, ok := findProp(props, "type"); ok && p.Value.IsConst() {
			if t, _ := p.Value.Const.(string); t != "pre" && t != "post" {
				return nil, u.invalid(n.Pos, "%s type must be pre or post, got %v", n.Name, p.Value.Const)
			}
		}
	case markup.DirectiveErrorBoundary:
		if _, ok := findProp(props, "fallback"); !ok {
			return nil, u.invalid(n.Pos, "error-boundary needs a fallback attribute")
		}
	case markup.DirectiveComment:
		if _, ok := findProp(props, "value"); !ok {
			return nil, u.invalid(n.Pos, "comment needs a value attribute")
		}
	case markup.DirectiveFragment:
	default:
		return nil, u.invalid(n.Pos, "unknown directive %q", n.Name)
	}

	return &Builtin{
		Name:     n.Name,
		Props:    props,
		Children: children,
		Bindings: h.bindings,
		Pos:      n.Pos,
	}, nil
}

func findProp(props []Prop, name string) (Prop, bool) {
	for _, p := range props {
		if !p.Spread && p.Name == name {
			return p, true
		}
	}
	return Prop{}, false
}
