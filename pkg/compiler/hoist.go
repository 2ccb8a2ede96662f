package compiler

import "fmt"

// hoister collects the awaited expressions of one unit into bindings. The
// unit refers to each binding by name, so its own construction never
// suspends.
type hoister struct {
	c        *Compiler
	bindings []Binding
}

func newHoister(c *Compiler) *hoister {
	return &hoister{c: c}
}

// take returns e unchanged unless it is awaited, in which case e becomes a
// binding and the returned expression reads it.
func (h *hoister) take(e *Expr) (*Expr, error) {
	if !e.Awaited {
		return e, nil
	}
	name := fmt.Sprintf("_v%d", h.c.seq.Add(1)-1)
	h.bindings = append(h.bindings, Binding{Name: name, Expr: e})
	return compileExpr(name)
}

// operand takes e and wraps the result as an Operand.
func (h *hoister) operand(e *Expr) (Operand, error) {
	if e.Literal {
		return Operand{Const: e.Value}, nil
	}
	e, err := h.take(e)
	if err != nil {
		return Operand{}, err
	}
	return Operand{Expr: e}, nil
}
