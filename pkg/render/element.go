package render

import (
	"context"
	"strings"

	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/compiler"
)

// spreadElement assembles an element whose attributes are only known at
// render time. A later attribute overrides an earlier one of the same name
// but keeps its first position.
func (s scope) spreadElement(ctx context.Context, o *Owner, el *compiler.SpreadElement) (any, error) {
	list, err := s.propList(ctx, o, el.Props)
	if err != nil {
		return nil, err
	}

	var (
		b       strings.Builder
		classes []any
		style   any
		styles  = map[string]any{}
		content any
		hasHTML bool
	)
	b.WriteString("<" + el.Tag)
	for _, e := range list.entries {
		name := e.name
		switch {
		case name == "class":
			classes = append(classes, e.value)
		case strings.HasPrefix(name, "class:"):
			if attr.Truthy(e.value) {
				classes = append(classes, strings.TrimPrefix(name, "class:"))
			}
		case name == "style":
			style = e.value
		case strings.HasPrefix(name, "style:"):
			if e.value != nil {
				styles[strings.TrimPrefix(name, "style:")] = e.value
			}
		case name == "set:html":
			content, hasHTML = e.value, true
		case name == "children":
		default:
			kind := s.r.table.Classify(name)
			if e.bare && kind == attr.Generic {
				b.WriteString(" " + name)
				continue
			}
			if out := attr.Serialize(name, e.value, kind); out != "" {
				b.WriteString(" " + out)
			}
		}
	}
	if cl := attr.ClassList(classes...); cl != "" {
		b.WriteString(` class="` + cl + `"`)
	}
	if st := attr.Style(style, styles); st != "" {
		b.WriteString(` style="` + st + `"`)
	}

	if attr.IsVoid(el.Tag) {
		b.WriteString("/>")
		return Raw(b.String()), nil
	}
	b.WriteString(">")

	var inner any
	switch {
	case hasHTML:
		inner = unescaped{content}
	case el.Children != nil:
		inner = s.unit(el.Children)
	default:
		inner, _ = list.get("children")
	}
	return Sequence{Raw(b.String()), inner, Raw("</" + el.Tag + ">")}, nil
}
