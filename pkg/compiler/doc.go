// Package compiler turns markup trees into units of static text and dynamic
// slots.
//
// Every expression is classified once: guaranteed-literal expressions fold
// into the surrounding text, awaited expressions inside an element are
// hoisted into named bindings evaluated before the element is built, and
// everything else becomes a slot evaluated per render.
//
//	c := compiler.New()
//	unit, err := c.Compile(node)
//
// Compiled units are immutable and may be rendered concurrently.
package compiler
