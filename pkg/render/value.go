package render

import (
	"bytes"
	"context"
	"fmt"
	"reflect"

	g "maragu.dev/gomponents"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
)

// Value is a normalised render value: Empty, Literal, Raw, Thunk, Sequence
// or *Future.
type Value interface {
	renderValue()
}

// Empty renders nothing.
type Empty struct{}

// Literal is text, escaped on output unless escaping is suppressed.
type Literal string

// Raw is already-rendered HTML, written as is.
type Raw string

// Thunk is a deferred value computed with the owner active where it is
// resolved.
type Thunk func(ctx context.Context, o *Owner) (any, error)

// Sequence renders its elements in order.
type Sequence []any

func (Empty) renderValue()    {}
func (Literal) renderValue()  {}
func (Raw) renderValue()      {}
func (Thunk) renderValue()    {}
func (Sequence) renderValue() {}
func (*Future) renderValue()  {}

// unescaped resolves its value without escaping text.
type unescaped struct {
	v any
}

// owned resolves its value under a different owner. Component activations
// return their result wrapped in owned so it resolves in the component's own
// scope.
type owned struct {
	o *Owner
	v any
}

func (unescaped) renderValue() {}
func (owned) renderValue()     {}

// Normalize maps a host value to a Value.
func Normalize(v any) (Value, error) {
	switch x := v.(type) {
	case nil, bool:
		return Empty{}, nil
	case Value:
		return x, nil
	case string:
		return Literal(x), nil
	case []any:
		return Sequence(x), nil
	case func(context.Context, *Owner) (any, error):
		return Thunk(x), nil
	case g.Node:
		var b bytes.Buffer
		if err := x.Render(&b); err != nil {
			return nil, fmt.Errorf("render gomponents node: %w", err)
		}
		return Raw(b.String()), nil
	case fmt.Stringer:
		return Literal(x.String()), nil
	}

	if _, ok := attr.Number(v); ok {
		return Literal(attr.Stringify(v)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		seq := make(Sequence, rv.Len())
		for i := range seq {
			seq[i] = rv.Index(i).Interface()
		}
		return seq, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Empty{}, nil
		}
	}
	return nil, errors.New(errors.CodeUnresolvable).WithDetailf("%T", v)
}

// IsUnresolvable reports whether err was raised for a value of a shape the
// renderer does not know.
func IsUnresolvable(err error) bool {
	return errors.HasCode(err, errors.CodeUnresolvable)
}
