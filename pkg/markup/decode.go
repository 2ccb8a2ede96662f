package markup

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/slate/internal/errors"
)

// Decode parses a YAML template document.
//
//	components:
//	  Card:
//	    params: [title]
//	    render:
//	      el: div
//	      attrs: {class: card}
//	      children:
//	        - el: h2
//	          children: ["{ title }"]
//	page:
//	  component: Card
//	  attrs: {title: Hello}
//
// A scalar wrapped in braces is an expression, any other string scalar is
// text. Non-string scalars (numbers, booleans) are expressions.
func Decode(data []byte, name, file string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.New(errors.CodeDecode).WithDetail(file).Wrap(err)
	}

	d := &decoder{file: file}
	doc := &Document{
		Name:       name,
		File:       file,
		Components: make(map[string]*Definition),
	}
	if len(root.Content) == 0 {
		return doc, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, d.errorf(top, "document must be a mapping")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "components":
			if err := d.components(value, doc); err != nil {
				return nil, err
			}
		case "page":
			n, err := d.node(value)
			if err != nil {
				return nil, err
			}
			doc.Page = n
		default:
			return nil, d.errorf(key, "unknown document key %q", key.Value)
		}
	}

	return doc, nil
}

// DecodeNode parses a single markup node from YAML.
func DecodeNode(data []byte) (Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.New(errors.CodeDecode).Wrap(err)
	}
	if len(root.Content) == 0 {
		return &Fragment{}, nil
	}
	d := &decoder{}
	return d.node(root.Content[0])
}

type decoder struct {
	file string
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return errors.New(errors.CodeDecode).
		WithDetailf(format, args...).
		WithLocation(d.file, n.Line, n.Column)
}

func pos(n *yaml.Node) Pos {
	return Pos{Line: n.Line, Column: n.Column}
}

func (d *decoder) components(n *yaml.Node, doc *Document) error {
	if n.Kind != yaml.MappingNode {
		return d.errorf(n, "components must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if _, dup := doc.Components[key.Value]; dup {
			return d.errorf(key, "component %q defined twice", key.Value)
		}
		def, err := d.definition(key.Value, value)
		if err != nil {
			return err
		}
		doc.Components[key.Value] = def
	}
	return nil
}

func (d *decoder) definition(name string, n *yaml.Node) (*Definition, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "component %q must be a mapping", name)
	}
	def := &Definition{Name: name, Pos: pos(n)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "params":
			if err := value.Decode(&def.Params); err != nil {
				return nil, d.errorf(value, "params of %q: %v", name, err)
			}
		case "render":
			root, err := d.node(value)
			if err != nil {
				return nil, err
			}
			def.Root = root
		default:
			return nil, d.errorf(key, "unknown component key %q", key.Value)
		}
	}
	if def.Root == nil {
		return nil, d.errorf(n, "component %q has no render tree", name)
	}
	return def, nil
}

func (d *decoder) node(n *yaml.Node) (Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return d.node(n.Alias)
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.SequenceNode:
		children, err := d.children(n)
		if err != nil {
			return nil, err
		}
		return &Fragment{Children: children, Pos: pos(n)}, nil
	case yaml.MappingNode:
		return d.mapping(n)
	}
	return nil, d.errorf(n, "unexpected YAML node")
}

func (d *decoder) scalar(n *yaml.Node) (Node, error) {
	if n.Tag != "!!str" {
		if n.Tag == "!!null" {
			return &Expr{Source: "nil", Pos: pos(n)}, nil
		}
		return &Expr{Source: n.Value, Pos: pos(n)}, nil
	}
	if src, ok := braced(n.Value); ok {
		if src == "" {
			return nil, d.errorf(n, "empty expression")
		}
		return &Expr{Source: src, Pos: pos(n)}, nil
	}
	return &Text{Value: n.Value, Pos: pos(n)}, nil
}

func braced(s string) (string, bool) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

func (d *decoder) children(n *yaml.Node) ([]Node, error) {
	if n.Kind != yaml.SequenceNode {
		child, err := d.node(n)
		if err != nil {
			return nil, err
		}
		return []Node{child}, nil
	}
	out := make([]Node, 0, len(n.Content))
	for _, c := range n.Content {
		child, err := d.node(c)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// kindKeys are the mapping keys that select a node type.
var kindKeys = []string{"el", "component", "directive", "expr", "text", "fragment"}

func (d *decoder) mapping(n *yaml.Node) (Node, error) {
	var (
		kind, head            string
		headNode              *yaml.Node
		attrs                 []Attr
		children              []Node
		attrsSet, childrenSet bool
	)

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "el", "component", "directive", "expr", "text", "fragment":
			if kind != "" {
				return nil, d.errorf(key, "node has both %q and %q", kind, key.Value)
			}
			kind = key.Value
			headNode = value
			if key.Value != "fragment" {
				if value.Kind != yaml.ScalarNode {
					return nil, d.errorf(value, "%q must be a scalar", key.Value)
				}
				head = value.Value
			}
		case "attrs":
			a, err := d.attrs(value)
			if err != nil {
				return nil, err
			}
			attrs, attrsSet = a, true
		case "children":
			c, err := d.children(value)
			if err != nil {
				return nil, err
			}
			children, childrenSet = c, true
		default:
			return nil, d.errorf(key, "unknown node key %q (want one of %s)", key.Value, strings.Join(kindKeys, ", "))
		}
	}

	p := pos(n)
	switch kind {
	case "el":
		return &Element{Tag: head, Attrs: attrs, Children: children, Pos: p}, nil
	case "component":
		return &Component{Ref: head, Attrs: attrs, Children: children, Pos: p}, nil
	case "directive":
		return &Directive{Name: head, Attrs: attrs, Children: children, Pos: p}, nil
	}

	if attrsSet || childrenSet {
		if kind == "" && !attrsSet {
			return &Fragment{Children: children, Pos: p}, nil
		}
		return nil, d.errorf(n, "%s nodes take no attrs or children", describeKind(kind))
	}

	switch kind {
	case "expr":
		src := strings.TrimSpace(head)
		if b, ok := braced(src); ok {
			src = b
		}
		if src == "" {
			return nil, d.errorf(headNode, "empty expression")
		}
		return &Expr{Source: src, Pos: p}, nil
	case "text":
		return &Text{Value: head, Pos: p}, nil
	case "fragment":
		c, err := d.children(headNode)
		if err != nil {
			return nil, err
		}
		return &Fragment{Children: c, Pos: p}, nil
	}
	return nil, d.errorf(n, "node needs one of %s", strings.Join(kindKeys, ", "))
}

func describeKind(kind string) string {
	if kind == "" {
		return "untyped"
	}
	return fmt.Sprintf("%q", kind)
}

func (d *decoder) attrs(n *yaml.Node) ([]Attr, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "attrs must be a mapping")
	}
	out := make([]Attr, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if strings.HasPrefix(key.Value, "...") {
			if value.Kind != yaml.ScalarNode || value.Value == "" {
				return nil, d.errorf(value, "spread %q needs an expression", key.Value)
			}
			src := value.Value
			if b, ok := braced(src); ok {
				src = b
			}
			out = append(out, &Spread{Source: src, Pos: pos(key)})
			continue
		}

		a := &Attribute{Name: key.Value, Pos: pos(key)}
		if ns, name, ok := strings.Cut(key.Value, ":"); ok {
			if ns == "" || name == "" {
				return nil, d.errorf(key, "malformed attribute name %q", key.Value)
			}
			a.Namespace, a.Name = ns, name
		}

		v, err := d.value(value)
		if err != nil {
			return nil, err
		}
		a.Value = v
		out = append(out, a)
	}
	return out, nil
}

func (d *decoder) value(n *yaml.Node) (Value, error) {
	if n.Kind == yaml.AliasNode {
		return d.value(n.Alias)
	}
	if n.Kind != yaml.ScalarNode {
		node, err := d.node(n)
		if err != nil {
			return nil, err
		}
		return &Markup{Node: node}, nil
	}
	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!str":
		if src, ok := braced(n.Value); ok {
			if src == "" {
				return nil, d.errorf(n, "empty expression")
			}
			return Code(src), nil
		}
		return String(n.Value), nil
	}
	return Code(n.Value), nil
}
