package compiler

import (
	"strings"

	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/markup"
)

const contentAttr = "set:html"

func isClass(a *markup.Attribute) bool {
	return (a.Namespace == "" && a.Name == "class") || a.Namespace == "class"
}

func isStyle(a *markup.Attribute) bool {
	return (a.Namespace == "" && a.Name == "style") || a.Namespace == "style"
}

// element compiles an intrinsic element into a template. Awaited attribute
// values and awaited expression children are hoisted into the element's
// bindings.
func (u *unitCompiler) element(n *markup.Element) (Unit, error) {
	for _, a := range n.Attrs {
		if _, ok := a.(*markup.Spread); ok {
			return u.spreadElement(n)
		}
	}

	h := newHoister(u.Compiler)
	var (
		static  strings.Builder
		dynamic []Slot
		classes []ClassItem
		styles  []StyleItem
		content *markup.Attribute
	)

	static.WriteString("<" + n.Tag)
	for _, a := range n.Attrs {
		a := a.(*markup.Attribute)
		switch {
		case isClass(a):
			item, ok, err := u.classItem(h, a)
			if err != nil {
				return nil, err
			}
			if ok {
				classes = append(classes, item)
			}
		case isStyle(a):
			item, ok, err := u.styleItem(h, a)
			if err != nil {
				return nil, err
			}
			if ok {
				styles = append(styles, item)
			}
		case a.Namespace == "set":
			if a.Name != "html" {
				return nil, u.invalid(a.Pos, "unknown attribute %q", a.QualifiedName())
			}
			content = a
		default:
			s, slot, err := u.attribute(h, a)
			if err != nil {
				return nil, err
			}
			if slot != nil {
				dynamic = append(dynamic, slot)
			} else if s != "" {
				static.WriteString(" " + s)
			}
		}
	}

	b := templateBuilder{}.text(static.String())
	for _, s := range dynamic {
		b = b.slot(s)
	}
	if len(classes) > 0 {
		cs := &ClassSlot{Items: classes}
		if values, ok := constValues(classes, func(i ClassItem) Operand { return i.Value }); ok {
			b = b.text(cs.Render(values))
		} else {
			b = b.slot(cs)
		}
	}
	if len(styles) > 0 {
		ss := &StyleSlot{Items: styles}
		if values, ok := constValues(styles, func(i StyleItem) Operand { return i.Value }); ok {
			b = b.text(ss.Render(values))
		} else {
			b = b.slot(ss)
		}
	}

	if attr.IsVoid(n.Tag) {
		b = b.text("/>")
	} else {
		b = b.text(">")
		var err error
		if content != nil {
			b, err = u.content(h, b, content)
		} else {
			b, err = u.elementChildren(h, b, n.Children)
		}
		if err != nil {
			return nil, err
		}
		b = b.text("</" + n.Tag + ">")
	}

	t, err := b.build()
	if err != nil {
		return nil, u.invalid(n.Pos, "%v", err)
	}
	if html, ok := t.Static(); ok && len(h.bindings) == 0 {
		return &Static{HTML: html}, nil
	}
	return &Element{Tag: n.Tag, Template: t, Bindings: h.bindings, Pos: n.Pos}, nil
}

// attribute compiles a plain attribute to static text or a slot.
func (u *unitCompiler) attribute(h *hoister, a *markup.Attribute) (string, Slot, error) {
	name := a.QualifiedName()
	kind := u.table.Classify(name)
	switch v := a.Value.(type) {
	case nil:
		if kind == attr.Generic {
			return name, nil, nil
		}
		return attr.Serialize(name, true, kind), nil, nil
	case markup.String:
		return attr.Serialize(name, string(v), kind), nil, nil
	case markup.Code:
		e, err := u.expr(string(v), a.Pos)
		if err != nil {
			return "", nil, err
		}
		if e.Literal {
			return attr.Serialize(name, e.Value, kind), nil, nil
		}
		if e, err = h.take(e); err != nil {
			return "", nil, err
		}
		return "", &AttrSlot{Name: name, Kind: kind, Expr: e}, nil
	}
	return "", nil, u.invalid(a.Pos, "attribute %q cannot take a markup value", name)
}

// attrOperand compiles a class or style value. ok is false when the item
// contributes nothing.
func (u *unitCompiler) attrOperand(h *hoister, a *markup.Attribute) (Operand, bool, error) {
	switch v := a.Value.(type) {
	case nil:
		return Operand{Const: true}, a.Namespace == "class", nil
	case markup.String:
		return Operand{Const: string(v)}, true, nil
	case markup.Code:
		e, err := u.expr(string(v), a.Pos)
		if err != nil {
			return Operand{}, false, err
		}
		op, err := h.operand(e)
		return op, true, err
	}
	return Operand{}, false, u.invalid(a.Pos, "attribute %q cannot take a markup value", a.QualifiedName())
}

func (u *unitCompiler) classItem(h *hoister, a *markup.Attribute) (ClassItem, bool, error) {
	op, ok, err := u.attrOperand(h, a)
	if err != nil || !ok {
		return ClassItem{}, false, err
	}
	item := ClassItem{Value: op}
	if a.Namespace == "class" {
		item.Name = a.Name
	}
	return item, true, nil
}

func (u *unitCompiler) styleItem(h *hoister, a *markup.Attribute) (StyleItem, bool, error) {
	op, ok, err := u.attrOperand(h, a)
	if err != nil || !ok {
		return StyleItem{}, false, err
	}
	item := StyleItem{Value: op}
	if a.Namespace == "style" {
		item.Property = a.Name
	}
	return item, true, nil
}

func constValues[T any](items []T, operand func(T) Operand) ([]any, bool) {
	values := make([]any, len(items))
	for i, item := range items {
		op := operand(item)
		if !op.IsConst() {
			return nil, false
		}
		values[i] = op.Const
	}
	return values, true
}

// content compiles set:html. Literal content is written unescaped.
func (u *unitCompiler) content(h *hoister, b templateBuilder, a *markup.Attribute) (templateBuilder, error) {
	switch v := a.Value.(type) {
	case nil:
		return b, nil
	case markup.String:
		return b.text(string(v)), nil
	case markup.Code:
		e, err := u.expr(string(v), a.Pos)
		if err != nil {
			return b, err
		}
		if e.Literal {
			return b.text(SerializeLiteral(e.Value)), nil
		}
		if e, err = h.take(e); err != nil {
			return b, err
		}
		return b.slot(&ChildSlot{Unit: &ExprUnit{Expr: e}, Raw: true}), nil
	}
	return b, u.invalid(a.Pos, "%s takes an expression", contentAttr)
}

// elementChildren writes children into the element template. Static
// children fold into the surrounding text; every other child takes one slot.
func (u *unitCompiler) elementChildren(h *hoister, b templateBuilder, nodes []markup.Node) (templateBuilder, error) {
	units := make([]Unit, 0, len(nodes))
	for _, n := range nodes {
		unit, err := u.elementChild(h, n)
		if err != nil {
			return b, err
		}
		units = append(units, unit)
	}

	switch joined := join(units).(type) {
	case *Static:
		return b.text(joined.HTML), nil
	case *Fragment:
		for _, unit := range joined.Children {
			if s, ok := unit.(*Static); ok {
				b = b.text(s.HTML)
				continue
			}
			b = b.slot(&ChildSlot{Unit: unit})
		}
		return b, nil
	default:
		return b.slot(&ChildSlot{Unit: joined}), nil
	}
}

func (u *unitCompiler) elementChild(h *hoister, n markup.Node) (Unit, error) {
	x, ok := n.(*markup.Expr)
	if !ok {
		return u.node(n)
	}
	e, err := u.expr(x.Source, x.Pos)
	if err != nil {
		return nil, err
	}
	if e.Literal {
		return &Static{HTML: attr.Escape(SerializeLiteral(e.Value))}, nil
	}
	if e, err = h.take(e); err != nil {
		return nil, err
	}
	return &ExprUnit{Expr: e}, nil
}

// spreadElement compiles an element with spread attributes. Attribute
// assembly happens at render time.
func (u *unitCompiler) spreadElement(n *markup.Element) (Unit, error) {
	h := newHoister(u.Compiler)
	props := make([]Prop, 0, len(n.Attrs))
	for _, a := range n.Attrs {
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
			if a.Namespace == "set" && a.Name != "html" {
				return nil, u.invalid(a.Pos, "unknown attribute %q", a.QualifiedName())
			}
			if _, ok := a.Value.(*markup.Markup); ok {
				return nil, u.invalid(a.Pos, "attribute %q cannot take a markup value", a.QualifiedName())
			}
			op, err := u.operand(h, a)
			if err != nil {
				return nil, err
			}
			props = append(props, Prop{Name: a.QualifiedName(), Bare: a.Value == nil, Value: op})
		}
	}

	el := &SpreadElement{Tag: n.Tag, Props: props, Pos: n.Pos}
	if !attr.IsVoid(n.Tag) {
		children, err := u.optionalChildren(n.Children)
		if err != nil {
			return nil, err
		}
		el.Children = children
	}
	el.Bindings = h.bindings
	return el, nil
}

// Render serializes the attribute with its evaluated value, including the
// leading space, or returns "" when the attribute is absent.
func (s *AttrSlot) Render(value any) string {
	out := attr.Serialize(s.Name, value, s.Kind)
	if out == "" {
		return ""
	}
	return " " + out
}

// Render serializes the class attribute from the item values, given in item
// order. An empty class list renders nothing.
func (s *ClassSlot) Render(values []any) string {
	list := make([]any, 0, len(values))
	for i, item := range s.Items {
		if item.Name != "" {
			if attr.Truthy(values[i]) {
				list = append(list, item.Name)
			}
			continue
		}
		list = append(list, values[i])
	}
	classes := attr.ClassList(list...)
	if classes == "" {
		return ""
	}
	return ` class="` + classes + `"`
}

// Render serializes the style attribute from the item values, given in item
// order. An empty style renders nothing.
func (s *StyleSlot) Render(values []any) string {
	list := make([]any, 0, len(values))
	for i, item := range s.Items {
		if item.Property != "" {
			if values[i] != nil {
				list = append(list, map[string]any{item.Property: values[i]})
			}
			continue
		}
		list = append(list, values[i])
	}
	style := attr.Style(list...)
	if style == "" {
		return ""
	}
	return ` style="` + style + `"`
}
