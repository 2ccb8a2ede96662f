package render

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/expr-lang/expr"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/compiler"
)

// scope is the lexical environment units execute in.
type scope struct {
	r    *Renderer
	vars map[string]any
}

func (r *Renderer) scope(vars map[string]any) scope {
	return scope{r: r, vars: vars}
}

// with returns a scope extended by extra. s is not modified.
func (s scope) with(extra map[string]any) scope {
	vars := make(map[string]any, len(s.vars)+len(extra))
	maps.Copy(vars, s.vars)
	maps.Copy(vars, extra)
	return scope{r: s.r, vars: vars}
}

// env builds the expression environment: globals, then scope variables,
// then the owner-bound functions.
func (s scope) env(ctx context.Context, o *Owner) map[string]any {
	s.r.mu.RLock()
	env := make(map[string]any, len(s.r.globals)+len(s.vars)+4)
	maps.Copy(env, s.r.globals)
	s.r.mu.RUnlock()
	maps.Copy(env, s.vars)

	env["createID"] = func() (string, error) {
		return o.CreateID()
	}
	env["getContext"] = func(name string) (any, error) {
		k, ok := s.r.context(name)
		if !ok {
			return nil, fmt.Errorf("unknown context %q", name)
		}
		return getNamed(o, k), nil
	}
	env["setContext"] = func(name string, v any) (any, error) {
		k, ok := s.r.context(name)
		if !ok {
			return nil, fmt.Errorf("unknown context %q", name)
		}
		return nil, setNamed(o, k, v)
	}
	env["await"] = func(v any) (any, error) {
		if f, ok := v.(*Future); ok {
			return f.Await(ctx)
		}
		return v, nil
	}
	return env
}

func (s scope) eval(ctx context.Context, o *Owner, e *compiler.Expr) (any, error) {
	if e.Literal {
		return e.Value, nil
	}
	v, err := expr.Run(e.Program, s.env(ctx, o))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.New(errors.CodeExprEval).WithDetail(e.Source).Wrap(err)
	}
	return v, nil
}

func (s scope) operand(ctx context.Context, o *Owner, op compiler.Operand) (any, error) {
	switch {
	case op.Expr != nil:
		return s.eval(ctx, o, op.Expr)
	case op.Unit != nil:
		return s.unit(op.Unit), nil
	}
	return op.Const, nil
}

// bind evaluates hoisted bindings in declaration order. Each binding sees
// the ones before it.
func (s scope) bind(ctx context.Context, o *Owner, bindings []compiler.Binding) (scope, error) {
	cur := s
	for _, b := range bindings {
		v, err := cur.eval(ctx, o, b.Expr)
		if err != nil {
			return scope{}, err
		}
		cur = cur.with(map[string]any{b.Name: v})
	}
	return cur, nil
}

// deferred wraps build in a Thunk. A unit with bindings runs as one Future
// that evaluates the bindings and then builds the value; without bindings
// the Thunk builds synchronously.
func (s scope) deferred(bindings []compiler.Binding, build func(ctx context.Context, o *Owner, s scope) (any, error)) Thunk {
	if len(bindings) == 0 {
		return func(ctx context.Context, o *Owner) (any, error) {
			return build(ctx, o, s)
		}
	}
	return func(ctx context.Context, o *Owner) (any, error) {
		return Go(ctx, func(ctx context.Context) (any, error) {
			bound, err := s.bind(ctx, o, bindings)
			if err != nil {
				return nil, err
			}
			return build(ctx, o, bound)
		}), nil
	}
}

// unit returns the value that renders u in s.
func (s scope) unit(u compiler.Unit) Value {
	switch u := u.(type) {
	case nil:
		return Empty{}
	case *compiler.Static:
		return Raw(u.HTML)
	case *compiler.ExprUnit:
		if u.Async {
			return Thunk(func(ctx context.Context, o *Owner) (any, error) {
				return Go(ctx, func(ctx context.Context) (any, error) {
					return s.eval(ctx, o, u.Expr)
				}), nil
			})
		}
		return Thunk(func(ctx context.Context, o *Owner) (any, error) {
			return s.eval(ctx, o, u.Expr)
		})
	case *compiler.Fragment:
		seq := make(Sequence, len(u.Children))
		for i, c := range u.Children {
			seq[i] = s.unit(c)
		}
		return seq
	case *compiler.Element:
		return s.deferred(u.Bindings, func(ctx context.Context, o *Owner, s scope) (any, error) {
			return s.template(ctx, o, u.Template)
		})
	case *compiler.SpreadElement:
		return s.deferred(u.Bindings, func(ctx context.Context, o *Owner, s scope) (any, error) {
			return s.spreadElement(ctx, o, u)
		})
	case *compiler.Call:
		return s.deferred(u.Bindings, func(ctx context.Context, o *Owner, s scope) (any, error) {
			c, ok := s.r.component(u.Ref)
			if !ok {
				return nil, errors.New(errors.CodeUnknownComponent).WithDetail(u.Ref)
			}
			props, err := s.props(ctx, o, u.Props, u.Children)
			if err != nil {
				return nil, err
			}
			return s.r.activate(ctx, o, u.Ref, c, props)
		})
	case *compiler.Dynamic:
		return s.deferred(u.Bindings, func(ctx context.Context, o *Owner, s scope) (any, error) {
			return s.dynamic(ctx, o, u)
		})
	case *compiler.Builtin:
		return s.deferred(u.Bindings, func(ctx context.Context, o *Owner, s scope) (any, error) {
			return s.builtin(ctx, o, u)
		})
	}
	return Thunk(func(context.Context, *Owner) (any, error) {
		return nil, errors.New(errors.CodeUnresolvable).WithDetailf("unit %T", u)
	})
}

// template assembles the element output: text segments verbatim and slots
// in order.
func (s scope) template(ctx context.Context, o *Owner, t *compiler.Template) (any, error) {
	seq := make(Sequence, 0, len(t.Segments))
	for _, seg := range t.Segments {
		switch seg := seg.(type) {
		case compiler.Text:
			seq = append(seq, Raw(seg))
		case compiler.SlotRef:
			v, err := s.slot(ctx, o, t.Slots[seg])
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
	}
	return seq, nil
}

func (s scope) slot(ctx context.Context, o *Owner, slot compiler.Slot) (any, error) {
	switch slot := slot.(type) {
	case *compiler.AttrSlot:
		v, err := s.eval(ctx, o, slot.Expr)
		if err != nil {
			return nil, err
		}
		return Raw(slot.Render(v)), nil
	case *compiler.ClassSlot:
		values := make([]any, len(slot.Items))
		for i, item := range slot.Items {
			v, err := s.operand(ctx, o, item.Value)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return Raw(slot.Render(values)), nil
	case *compiler.StyleSlot:
		values := make([]any, len(slot.Items))
		for i, item := range slot.Items {
			v, err := s.operand(ctx, o, item.Value)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return Raw(slot.Render(values)), nil
	case *compiler.ChildSlot:
		v := s.unit(slot.Unit)
		if slot.Raw {
			return unescaped{v}, nil
		}
		return v, nil
	}
	return nil, errors.New(errors.CodeUnresolvable).WithDetailf("slot %T", slot)
}

// props evaluates component props in order. Spreads merge maps; later props
// override earlier ones. Children, when present, become the "children" prop.
func (s scope) props(ctx context.Context, o *Owner, props []compiler.Prop, children compiler.Unit) (Props, error) {
	list, err := s.propList(ctx, o, props)
	if err != nil {
		return nil, err
	}
	out := make(Props, len(list.entries)+1)
	for _, e := range list.entries {
		out[e.name] = e.value
	}
	if children != nil {
		out["children"] = s.unit(children)
	}
	return out, nil
}

type propEntry struct {
	name  string
	value any
	bare  bool
}

// propList is an insertion-ordered property set. Setting an existing name
// replaces its value in place.
type propList struct {
	entries []propEntry
	index   map[string]int
}

func (l *propList) set(name string, v any) {
	l.put(propEntry{name: name, value: v})
}

func (l *propList) put(e propEntry) {
	if i, ok := l.index[e.name]; ok {
		l.entries[i].value = e.value
		l.entries[i].bare = e.bare
		return
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}
	l.index[e.name] = len(l.entries)
	l.entries = append(l.entries, e)
}

func (l *propList) get(name string) (any, bool) {
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.entries[i].value, true
}

func (s scope) propList(ctx context.Context, o *Owner, props []compiler.Prop) (*propList, error) {
	list := &propList{}
	for _, p := range props {
		v, err := s.operand(ctx, o, p.Value)
		if err != nil {
			return nil, err
		}
		if !p.Spread {
			list.put(propEntry{name: p.Name, value: v, bare: p.Bare})
			continue
		}
		if err := spreadInto(list, v); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// spreadInto merges a spread value. Map keys are added in sorted order.
func spreadInto(list *propList, v any) error {
	switch m := v.(type) {
	case nil:
		return nil
	case Props:
		return spreadInto(list, map[string]any(m))
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			list.set(k, m[k])
		}
		return nil
	case map[string]string:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			list.set(k, m[k])
		}
		return nil
	}
	return errors.New(errors.CodeExprEval).WithDetailf("cannot spread %T", v)
}

// dynamic activates the component the Component operand names or holds.
// A nil component renders nothing.
func (s scope) dynamic(ctx context.Context, o *Owner, d *compiler.Dynamic) (any, error) {
	target, err := s.operand(ctx, o, d.Component)
	if err != nil {
		return nil, err
	}

	var (
		name string
		c    Component
	)
	switch t := target.(type) {
	case nil:
		return Empty{}, nil
	case string:
		if t == "" {
			return Empty{}, nil
		}
		found, ok := s.r.component(t)
		if !ok {
			return nil, errors.New(errors.CodeUnknownComponent).WithDetail(t)
		}
		name, c = t, found
	case Component:
		name, c = "dynamic", t
	case func(context.Context, *Owner, Props) (any, error):
		name, c = "dynamic", t
	default:
		return nil, errors.New(errors.CodeUnknownComponent).WithDetailf("%T is not a component", target)
	}

	props, err := s.props(ctx, o, d.Props, d.Children)
	if err != nil {
		return nil, err
	}
	return s.r.activate(ctx, o, name, c, props)
}
