package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/slate/pkg/compiler"
	"github.com/vango-dev/slate/pkg/markup"
)

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile FILE",
		Short: "Print the compiled form of a template document",
		Long: `Compile a template document and print its units: template segments,
slots and hoisted bindings. Expressions that need no call or member
access are marked static.

Examples:
  slate compile templates/index.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := compileFile(args[0])
			if err != nil {
				return err
			}
			return dumpProgram(cmd.OutOrStdout(), program)
		},
	}
}

func compileFile(path string) (*compiler.Program, error) {
	doc, err := markup.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return compiler.New().CompileDocument(doc)
}

type programDump struct {
	Components map[string]componentDump `yaml:"components,omitempty"`
	Pages      map[string]*unitDump     `yaml:"pages,omitempty"`
}

type componentDump struct {
	Params []string  `yaml:"params,omitempty"`
	Body   *unitDump `yaml:"body"`
}

type unitDump struct {
	Kind     string      `yaml:"kind"`
	Tag      string      `yaml:"tag,omitempty"`
	Ref      string      `yaml:"ref,omitempty"`
	HTML     string      `yaml:"html,omitempty"`
	Expr     string      `yaml:"expr,omitempty"`
	Async    bool        `yaml:"async,omitempty"`
	Static   bool        `yaml:"static,omitempty"`
	Bindings []string    `yaml:"bindings,omitempty"`
	Segments []string    `yaml:"segments,omitempty"`
	Slots    []slotDump  `yaml:"slots,omitempty"`
	Props    []string    `yaml:"props,omitempty"`
	Children []*unitDump `yaml:"children,omitempty"`
}

type slotDump struct {
	Kind     string    `yaml:"kind"`
	Name     string    `yaml:"name,omitempty"`
	AttrKind string    `yaml:"attrKind,omitempty"`
	Expr     string    `yaml:"expr,omitempty"`
	Static   bool      `yaml:"static,omitempty"`
	Items    []string  `yaml:"items,omitempty"`
	Raw      bool      `yaml:"raw,omitempty"`
	Unit     *unitDump `yaml:"unit,omitempty"`
}

func dumpProgram(w io.Writer, p *compiler.Program) error {
	out := programDump{
		Components: make(map[string]componentDump, len(p.Components)),
		Pages:      make(map[string]*unitDump, len(p.Pages)),
	}
	for name, def := range p.Components {
		out.Components[name] = componentDump{Params: def.Params, Body: dumpUnit(def.Body)}
	}
	for name, u := range p.Pages {
		out.Pages[name] = dumpUnit(u)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func dumpUnit(u compiler.Unit) *unitDump {
	switch u := u.(type) {
	case nil:
		return nil
	case *compiler.Static:
		return &unitDump{Kind: "static", HTML: u.HTML}
	case *compiler.ExprUnit:
		return &unitDump{Kind: "expr", Expr: u.Expr.Source, Async: u.Async, Static: u.Expr.Static}
	case *compiler.Fragment:
		d := &unitDump{Kind: "fragment"}
		for _, c := range u.Children {
			d.Children = append(d.Children, dumpUnit(c))
		}
		return d
	case *compiler.Element:
		d := &unitDump{Kind: "element", Tag: u.Tag, Bindings: dumpBindings(u.Bindings)}
		for _, s := range u.Template.Segments {
			switch s := s.(type) {
			case compiler.Text:
				d.Segments = append(d.Segments, strconv.Quote(string(s)))
			case compiler.SlotRef:
				d.Segments = append(d.Segments, "$"+strconv.Itoa(int(s)))
			}
		}
		for _, s := range u.Template.Slots {
			d.Slots = append(d.Slots, dumpSlot(s))
		}
		return d
	case *compiler.SpreadElement:
		return &unitDump{Kind: "spread", Tag: u.Tag, Bindings: dumpBindings(u.Bindings),
			Props: dumpProps(u.Props), Children: children(u.Children)}
	case *compiler.Call:
		return &unitDump{Kind: "call", Ref: u.Ref, Bindings: dumpBindings(u.Bindings),
			Props: dumpProps(u.Props), Children: children(u.Children)}
	case *compiler.Dynamic:
		return &unitDump{Kind: "dynamic", Ref: operand(u.Component), Bindings: dumpBindings(u.Bindings),
			Props: dumpProps(u.Props), Children: children(u.Children)}
	case *compiler.Builtin:
		return &unitDump{Kind: "builtin", Ref: u.Name, Bindings: dumpBindings(u.Bindings),
			Props: dumpProps(u.Props), Children: children(u.Children)}
	}
	return &unitDump{Kind: fmt.Sprintf("%T", u)}
}

func children(u compiler.Unit) []*unitDump {
	if u == nil {
		return nil
	}
	return []*unitDump{dumpUnit(u)}
}

func dumpSlot(s compiler.Slot) slotDump {
	switch s := s.(type) {
	case *compiler.AttrSlot:
		return slotDump{Kind: "attr", Name: s.Name, AttrKind: s.Kind.String(), Expr: s.Expr.Source, Static: s.Expr.Static}
	case *compiler.ClassSlot:
		d := slotDump{Kind: "class"}
		for _, it := range s.Items {
			d.Items = append(d.Items, item(it.Name, it.Value))
		}
		return d
	case *compiler.StyleSlot:
		d := slotDump{Kind: "style"}
		for _, it := range s.Items {
			d.Items = append(d.Items, item(it.Property, it.Value))
		}
		return d
	case *compiler.ChildSlot:
		return slotDump{Kind: "child", Raw: s.Raw, Unit: dumpUnit(s.Unit)}
	}
	return slotDump{Kind: fmt.Sprintf("%T", s)}
}

func item(name string, o compiler.Operand) string {
	if name == "" {
		return operand(o)
	}
	return name + ": " + operand(o)
}

func dumpBindings(bs []compiler.Binding) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name + " = " + b.Expr.Source
	}
	return out
}

func dumpProps(props []compiler.Prop) []string {
	out := make([]string, len(props))
	for i, p := range props {
		if p.Spread {
			out[i] = "..." + operand(p.Value)
			continue
		}
		out[i] = p.Name + ": " + operand(p.Value)
	}
	return out
}

func operand(o compiler.Operand) string {
	switch {
	case o.Expr != nil:
		return "{" + o.Expr.Source + "}"
	case o.Unit != nil:
		return "<markup>"
	}
	if s, ok := o.Const.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(o.Const)
}
