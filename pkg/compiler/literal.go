package compiler

import (
	"math"
	"strings"

	"github.com/expr-lang/expr/ast"

	"github.com/vango-dev/slate/pkg/attr"
)

// Fold evaluates a guaranteed-literal node at compile time. Logical and
// conditional nodes short-circuit, so `false && x` folds while `true && x`
// does not. Any operand that is not a constant, or an operation whose result
// is not certain, makes Fold fail; the expression is then evaluated at
// render time instead.
func Fold(n ast.Node) (any, error) {
	switch n := n.(type) {
	case *ast.NilNode:
		return nil, nil
	case *ast.IntegerNode:
		return n.Value, nil
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.BoolNode:
		return n.Value, nil
	case *ast.StringNode:
		return n.Value, nil
	case *ast.ConstantNode:
		return n.Value, nil

	case *ast.UnaryNode:
		v, err := Fold(n.Node)
		if err != nil {
			return nil, err
		}
		return foldUnary(n.Operator, v)

	case *ast.BinaryNode:
		if logicalOperators[n.Operator] {
			return foldLogical(n)
		}
		left, err := Fold(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Fold(n.Right)
		if err != nil {
			return nil, err
		}
		return foldBinary(n.Operator, left, right)

	case *ast.ConditionalNode:
		cond, err := Fold(n.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(bool)
		if !ok {
			return nil, classificationError("condition is not a boolean constant")
		}
		if b {
			return Fold(n.Exp1)
		}
		return Fold(n.Exp2)
	}
	return nil, classificationError("%T is not a constant", n)
}

func foldLogical(n *ast.BinaryNode) (any, error) {
	left, err := Fold(n.Left)
	if err != nil {
		return nil, err
	}
	if n.Operator == "??" {
		if left != nil {
			return left, nil
		}
		return Fold(n.Right)
	}

	b, ok := left.(bool)
	if !ok {
		return nil, classificationError("operand of %q is not a boolean constant", n.Operator)
	}
	switch n.Operator {
	case "&&", "and":
		if !b {
			return false, nil
		}
	default:
		if b {
			return true, nil
		}
	}

	right, err := Fold(n.Right)
	if err != nil {
		return nil, err
	}
	if _, ok := right.(bool); !ok {
		return nil, classificationError("operand of %q is not a boolean constant", n.Operator)
	}
	return right, nil
}

func foldUnary(op string, v any) (any, error) {
	switch op {
	case "!", "not":
		if b, ok := v.(bool); ok {
			return !b, nil
		}
	case "-":
		switch x := v.(type) {
		case int:
			return -x, nil
		case float64:
			return -x, nil
		}
	case "+":
		switch v.(type) {
		case int, float64:
			return v, nil
		}
	}
	return nil, classificationError("cannot fold %s%v", op, v)
}

func foldBinary(op string, left, right any) (any, error) {
	li, lInt := left.(int)
	ri, rInt := right.(int)
	lf, lNum := toFloat(left)
	rf, rNum := toFloat(right)
	ls, lStr := left.(string)
	rs, rStr := right.(string)

	switch op {
	case "+":
		switch {
		case lInt && rInt:
			return li + ri, nil
		case lNum && rNum:
			return lf + rf, nil
		case lStr && rStr:
			return ls + rs, nil
		}
	case "-":
		switch {
		case lInt && rInt:
			return li - ri, nil
		case lNum && rNum:
			return lf - rf, nil
		}
	case "*":
		switch {
		case lInt && rInt:
			return li * ri, nil
		case lNum && rNum:
			return lf * rf, nil
		}
	case "/":
		if lNum && rNum && rf != 0 {
			return lf / rf, nil
		}
	case "%":
		if lInt && rInt && ri != 0 {
			return li % ri, nil
		}
	case "**", "^":
		if lNum && rNum {
			return math.Pow(lf, rf), nil
		}
	case "==", "!=":
		eq, ok := constEqual(left, right)
		if ok {
			return eq == (op == "=="), nil
		}
	case "<", ">", "<=", ">=":
		switch {
		case lNum && rNum:
			return compare(op, lf, rf), nil
		case lStr && rStr:
			return compare(op, strings.Compare(ls, rs), 0), nil
		}
	case "contains":
		if lStr && rStr {
			return strings.Contains(ls, rs), nil
		}
	case "startsWith":
		if lStr && rStr {
			return strings.HasPrefix(ls, rs), nil
		}
	case "endsWith":
		if lStr && rStr {
			return strings.HasSuffix(ls, rs), nil
		}
	}
	return nil, classificationError("cannot fold %v %s %v", left, op, right)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func constEqual(a, b any) (bool, bool) {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf, true
		}
	}
	switch a.(type) {
	case nil, bool, string:
	default:
		return false, false
	}
	switch b.(type) {
	case nil, bool, string, int, float64:
	default:
		return false, false
	}
	return a == b, true
}

func compare[T int | float64](op string, a, b T) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	}
	return a >= b
}

// SerializeLiteral renders a folded constant as child text. nil and booleans
// render nothing.
func SerializeLiteral(v any) string {
	switch v.(type) {
	case nil, bool:
		return ""
	}
	return attr.Stringify(v)
}
