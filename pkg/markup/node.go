package markup

// Pos is a position in a template document. The zero Pos means unknown.
type Pos struct {
	Line   int
	Column int
}

// Node is a markup tree node. The set of implementations is closed: Text,
// Element, Component, Fragment, Expr and Directive.
type Node interface {
	Position() Pos
	markupNode()
}

// Text is literal character data. It is escaped on output.
type Text struct {
	Value string
	Pos   Pos
}

// Element is an intrinsic HTML element.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
	Pos      Pos
}

// Component is a reference to a user component by name.
type Component struct {
	Ref      string
	Attrs    []Attr
	Children []Node
	Pos      Pos
}

// Fragment groups children without a wrapping element.
type Fragment struct {
	Children []Node
	Pos      Pos
}

// Expr is an embedded expression whose value is rendered in place.
type Expr struct {
	Source string
	Pos    Pos
}

// Directive names.
const (
	DirectiveHead          = "head"
	DirectiveBody          = "body"
	DirectiveErrorBoundary = "error-boundary"
	DirectiveFragment      = "fragment"
	DirectiveComment       = "comment"
	DirectiveDynamic       = "dynamic"
)

// Directive is a built-in construct handled by the renderer itself.
type Directive struct {
	Name     string
	Attrs    []Attr
	Children []Node
	Pos      Pos
}

func (n *Text) Position() Pos      { return n.Pos }
func (n *Element) Position() Pos   { return n.Pos }
func (n *Component) Position() Pos { return n.Pos }
func (n *Fragment) Position() Pos  { return n.Pos }
func (n *Expr) Position() Pos      { return n.Pos }
func (n *Directive) Position() Pos { return n.Pos }

func (*Text) markupNode()      {}
func (*Element) markupNode()   {}
func (*Component) markupNode() {}
func (*Fragment) markupNode()  {}
func (*Expr) markupNode()      {}
func (*Directive) markupNode() {}

// Attr is an element or component attribute: Attribute or Spread.
type Attr interface {
	Position() Pos
	markupAttr()
}

// Attribute is a named attribute. Namespace is set for `class:name`,
// `style:name` and `set:html`. A nil Value means the attribute is present
// without a value.
type Attribute struct {
	Namespace string
	Name      string
	Value     Value
	Pos       Pos
}

// QualifiedName returns "namespace:name" or the bare name.
func (a *Attribute) QualifiedName() string {
	if a.Namespace == "" {
		return a.Name
	}
	return a.Namespace + ":" + a.Name
}

// Spread merges the properties of an expression's map value.
type Spread struct {
	Source string
	Pos    Pos
}

func (a *Attribute) Position() Pos { return a.Pos }
func (a *Spread) Position() Pos    { return a.Pos }

func (*Attribute) markupAttr() {}
func (*Spread) markupAttr()    {}

// Value is an attribute value: String, Code or Markup.
type Value interface {
	markupValue()
}

// String is a quoted literal value.
type String string

// Code is an expression source.
type Code string

// Markup is a markup tree used as a value, such as an error-boundary
// fallback.
type Markup struct {
	Node Node
}

func (String) markupValue()  {}
func (Code) markupValue()    {}
func (*Markup) markupValue() {}
