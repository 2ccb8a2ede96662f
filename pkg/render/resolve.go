package render

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
)

// resolve reduces v to HTML with o as the active owner. Synchronous parts
// run on the calling goroutine; once a Future is met the remaining work
// continues on its own goroutine and resolve returns a Future of the final
// string instead.
func resolve(ctx context.Context, o *Owner, v any, escape bool) (string, *Future, error) {
	val, err := Normalize(v)
	if err != nil {
		return "", nil, err
	}

	switch x := val.(type) {
	case Empty:
		return "", nil, nil
	case Literal:
		if escape {
			return attr.Escape(string(x)), nil, nil
		}
		return string(x), nil, nil
	case Raw:
		return string(x), nil, nil
	case Thunk:
		out, err := x(ctx, o)
		if err != nil {
			return "", nil, err
		}
		return resolve(ctx, o, out, escape)
	case unescaped:
		return resolve(ctx, o, x.v, false)
	case owned:
		return resolve(ctx, x.o, x.v, escape)
	case Sequence:
		return resolveSequence(ctx, o, x, escape)
	case *Future:
		return "", Go(ctx, func(ctx context.Context) (any, error) {
			awaited, err := x.Await(ctx)
			if err != nil {
				return nil, err
			}
			return resolveWait(ctx, o, awaited, escape)
		}), nil
	}
	return "", nil, errors.New(errors.CodeUnresolvable).WithDetailf("%T", val)
}

// resolveSequence resolves every element in order. Pending elements are
// joined once all have been started; parts are concatenated in index order
// whatever order they complete in.
func resolveSequence(ctx context.Context, o *Owner, seq Sequence, escape bool) (string, *Future, error) {
	switch len(seq) {
	case 0:
		return "", nil, nil
	case 1:
		return resolve(ctx, o, seq[0], escape)
	}

	type part struct {
		i int
		f *Future
	}
	parts := make([]string, len(seq))
	var pending []part
	for i, v := range seq {
		s, f, err := resolve(ctx, o, v, escape)
		if err != nil {
			return "", nil, err
		}
		if f != nil {
			pending = append(pending, part{i, f})
			continue
		}
		parts[i] = s
	}
	if len(pending) == 0 {
		return strings.Join(parts, ""), nil, nil
	}

	return "", Go(ctx, func(ctx context.Context) (any, error) {
		g, gctx := errgroup.WithContext(ctx)
		for _, p := range pending {
			g.Go(func() error {
				v, err := p.f.Await(gctx)
				if err != nil {
					return err
				}
				parts[p.i] = v.(string)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return strings.Join(parts, ""), nil
	}), nil
}

// resolveWait resolves v and blocks until any pending part completes.
func resolveWait(ctx context.Context, o *Owner, v any, escape bool) (string, error) {
	s, f, err := resolve(ctx, o, v, escape)
	if err != nil || f == nil {
		return s, err
	}
	out, err := f.Await(ctx)
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
