package render

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

var contextSeq atomic.Uint64

// ContextKey identifies a context value of type T. Keys compare by identity.
type ContextKey[T any] struct {
	id  uint64
	def T
}

// NewContext creates a key whose lookups fall back to def.
func NewContext[T any](def T) *ContextKey[T] {
	return &ContextKey[T]{id: contextSeq.Add(1), def: def}
}

// Default returns the fallback value of k.
func (k *ContextKey[T]) Default() T {
	return k.def
}

// SetContext binds v to k in o. It does nothing when o is nil.
func SetContext[T any](o *Owner, k *ContextKey[T], v T) {
	o.set(k.id, v)
}

// GetContext returns the value bound to k nearest to o, or the default of k.
func GetContext[T any](o *Owner, k *ContextKey[T]) T {
	if v, ok := o.lookup(k.id); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	return k.def
}

// Key is a context key of any value type. It lets expressions read and write
// contexts registered by name.
type Key interface {
	keyID() uint64
	defaultValue() any
	accepts(v any) error
}

func (k *ContextKey[T]) keyID() uint64     { return k.id }
func (k *ContextKey[T]) defaultValue() any { return k.def }

func (k *ContextKey[T]) accepts(v any) error {
	if _, ok := v.(T); !ok && v != nil {
		return fmt.Errorf("context value %T is not a %v", v, reflect.TypeFor[T]())
	}
	return nil
}

func getNamed(o *Owner, k Key) any {
	if v, ok := o.lookup(k.keyID()); ok {
		return v
	}
	return k.defaultValue()
}

func setNamed(o *Owner, k Key, v any) error {
	if err := k.accepts(v); err != nil {
		return err
	}
	o.set(k.keyID(), v)
	return nil
}
