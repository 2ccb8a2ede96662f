package render

import (
	"context"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/compiler"
	"github.com/vango-dev/slate/pkg/markup"
)

func (s scope) builtin(ctx context.Context, o *Owner, b *compiler.Builtin) (any, error) {
	switch b.Name {
	case markup.DirectiveHead:
		return s.injectContent(ctx, o, RegionHead, b)
	case markup.DirectiveBody:
		return s.injectContent(ctx, o, RegionBody, b)
	case markup.DirectiveErrorBoundary:
		return s.errorBoundary(ctx, o, b)
	case markup.DirectiveFragment:
		return s.content(ctx, o, b)
	case markup.DirectiveComment:
		p, _ := findProp(b.Props, "value")
		v, err := s.operand(ctx, o, p.Value)
		if err != nil {
			return nil, err
		}
		return Raw("<!--" + attr.EscapeComment(attr.Stringify(v)) + "-->"), nil
	}
	return nil, errors.New(errors.CodeInvalidMarkup).WithDetailf("unknown directive %q", b.Name)
}

func findProp(props []compiler.Prop, name string) (compiler.Prop, bool) {
	for _, p := range props {
		if !p.Spread && p.Name == name {
			return p, true
		}
	}
	return compiler.Prop{}, false
}

// content is the set:html value of b, unescaped, or else its children.
func (s scope) content(ctx context.Context, o *Owner, b *compiler.Builtin) (any, error) {
	if p, ok := findProp(b.Props, "set:html"); ok {
		v, err := s.operand(ctx, o, p.Value)
		if err != nil {
			return nil, err
		}
		return unescaped{v}, nil
	}
	return s.unit(b.Children), nil
}

// injectContent defers the content of a head or body directive. The
// directive itself renders nothing.
func (s scope) injectContent(ctx context.Context, o *Owner, region Region, b *compiler.Builtin) (any, error) {
	placement := Post
	if p, ok := findProp(b.Props, "type"); ok {
		v, err := s.operand(ctx, o, p.Value)
		if err != nil {
			return nil, err
		}
		switch v {
		case nil, string(Post):
		case string(Pre):
			placement = Pre
		default:
			return nil, errors.New(errors.CodeInvalidMarkup).
				WithDetailf("%s type must be pre or post, got %v", b.Name, v)
		}
	}

	v, err := s.content(ctx, o, b)
	if err != nil {
		return nil, err
	}
	o.Root().Inject(region, placement, owned{o: o, v: v})
	return Empty{}, nil
}

// errorBoundary renders the children of b, or its fallback when they fail.
// The fallback is evaluated only on failure and its own errors propagate.
// Cancellation is never caught. Head and body injections made by the
// children before the failure stay in the document.
func (s scope) errorBoundary(ctx context.Context, o *Owner, b *compiler.Builtin) (any, error) {
	html, f, err := resolve(ctx, o, s.unit(b.Children), true)
	if f == nil {
		if err != nil {
			return s.fallback(ctx, o, b, err)
		}
		return Raw(html), nil
	}
	return Go(ctx, func(ctx context.Context) (any, error) {
		v, err := f.Await(ctx)
		if err != nil {
			return s.fallback(ctx, o, b, err)
		}
		return Raw(v.(string)), nil
	}), nil
}

func (s scope) fallback(ctx context.Context, o *Owner, b *compiler.Builtin, cause error) (any, error) {
	if ctx.Err() != nil {
		return nil, cause
	}
	name := errors.Code(cause)
	if name == "" {
		name = "Error"
	}
	s.r.logger.Debug("error boundary caught", "error", cause, "code", name)

	p, _ := findProp(b.Props, "fallback")
	scoped := s.with(map[string]any{
		"error": map[string]any{"name": name, "message": cause.Error()},
	})
	v, err := scoped.operand(ctx, o, p.Value)
	if err != nil {
		return nil, err
	}
	if fn, ok := v.(func(error) any); ok {
		return fn(cause), nil
	}
	return v, nil
}
