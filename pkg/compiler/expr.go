package compiler

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/vango-dev/slate/internal/errors"
)

// Expr is a compiled embedded expression.
type Expr struct {
	Source string

	// Program is nil for literal expressions.
	Program *vm.Program

	// Static is set when the expression needs no call or member access.
	Static bool

	// Awaited is set when evaluation suspends on await(...).
	Awaited bool

	// Literal is set when the expression folded at compile time; Value then
	// holds the result.
	Literal bool
	Value   any
}

// compileExpr parses and classifies src. Guaranteed-literal expressions that
// fold are not compiled to a program.
func compileExpr(src string) (*Expr, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, errors.New(errors.CodeExprCompile).WithDetail(src).Wrap(err)
	}

	e := &Expr{Source: src}
	if e.Awaited, err = IsAwaited(tree.Node); err != nil {
		return nil, err
	}
	if e.Static, err = IsStatic(tree.Node); err != nil {
		return nil, err
	}
	literal, err := IsGuaranteedLiteral(tree.Node)
	if err != nil {
		return nil, err
	}
	if literal {
		if v, ferr := Fold(tree.Node); ferr == nil {
			e.Literal, e.Value = true, v
			return e, nil
		}
	}

	e.Program, err = expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, errors.New(errors.CodeExprCompile).WithDetail(src).Wrap(err)
	}
	return e, nil
}

// literalExpr wraps a constant that never reaches the expression VM.
func literalExpr(src string, v any) *Expr {
	return &Expr{Source: src, Static: true, Literal: true, Value: v}
}
