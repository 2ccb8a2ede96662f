package compiler

import (
	"fmt"

	"github.com/expr-lang/expr/ast"

	"github.com/vango-dev/slate/internal/errors"
)

// awaitFunc is the name of the suspension function in expressions.
const awaitFunc = "await"

var unaryOperators = map[string]bool{
	"!": true, "not": true, "-": true, "+": true,
}

// logicalOperators short-circuit: their result may be decided by one side.
var logicalOperators = map[string]bool{
	"&&": true, "and": true, "||": true, "or": true, "??": true,
}

var binaryOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "^": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"in": true, "matches": true, "contains": true, "startsWith": true, "endsWith": true,
	"..": true,
}

func classificationError(format string, args ...any) error {
	return errors.New(errors.CodeClassification).WithDetail(fmt.Sprintf(format, args...))
}

func unsupported(n ast.Node) error {
	return classificationError("unsupported expression node %T", n)
}

func checkBinary(op string) error {
	if !binaryOperators[op] && !logicalOperators[op] {
		return classificationError("unsupported operator %q", op)
	}
	return nil
}

func checkUnary(op string) error {
	if !unaryOperators[op] {
		return classificationError("unsupported unary operator %q", op)
	}
	return nil
}

// IsGuaranteedLiteral reports whether n always evaluates to a primitive
// constant. Operators need all operands literal, except short-circuiting
// logical and conditional nodes where one literal side suffices.
func IsGuaranteedLiteral(n ast.Node) (bool, error) {
	switch n := n.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode:
		return true, nil

	case *ast.UnaryNode:
		if err := checkUnary(n.Operator); err != nil {
			return false, err
		}
		return IsGuaranteedLiteral(n.Node)

	case *ast.BinaryNode:
		if err := checkBinary(n.Operator); err != nil {
			return false, err
		}
		left, err := IsGuaranteedLiteral(n.Left)
		if err != nil {
			return false, err
		}
		right, err := IsGuaranteedLiteral(n.Right)
		if err != nil {
			return false, err
		}
		if logicalOperators[n.Operator] {
			return left || right, nil
		}
		return left && right, nil

	case *ast.ConditionalNode:
		a, err := IsGuaranteedLiteral(n.Exp1)
		if err != nil {
			return false, err
		}
		b, err := IsGuaranteedLiteral(n.Exp2)
		if err != nil {
			return false, err
		}
		return a || b, nil

	case *ast.IdentifierNode, *ast.MemberNode, *ast.CallNode, *ast.BuiltinNode,
		*ast.ClosureNode, *ast.PointerNode, *ast.SliceNode, *ast.ChainNode,
		*ast.ArrayNode, *ast.MapNode, *ast.PairNode, *ast.VariableDeclaratorNode:
		return false, nil
	}
	return false, unsupported(n)
}

// IsStatic reports whether n can be evaluated as soon as its scope exists:
// literals, variable references, closures, and compositions of those. Calls
// and member access are not static.
func IsStatic(n ast.Node) (bool, error) {
	switch n := n.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode, *ast.IdentifierNode,
		*ast.PointerNode, *ast.ClosureNode:
		return true, nil

	case *ast.UnaryNode:
		if err := checkUnary(n.Operator); err != nil {
			return false, err
		}
		return IsStatic(n.Node)

	case *ast.BinaryNode:
		if err := checkBinary(n.Operator); err != nil {
			return false, err
		}
		left, err := IsStatic(n.Left)
		if err != nil {
			return false, err
		}
		right, err := IsStatic(n.Right)
		if err != nil {
			return false, err
		}
		if logicalOperators[n.Operator] {
			return left || right, nil
		}
		return left && right, nil

	case *ast.ConditionalNode:
		a, err := IsStatic(n.Exp1)
		if err != nil {
			return false, err
		}
		b, err := IsStatic(n.Exp2)
		if err != nil {
			return false, err
		}
		return a || b, nil

	case *ast.ArrayNode:
		return allStatic(n.Nodes)

	case *ast.MapNode:
		return allStatic(n.Pairs)

	case *ast.PairNode:
		return allStatic([]ast.Node{n.Key, n.Value})

	case *ast.MemberNode, *ast.CallNode, *ast.BuiltinNode, *ast.SliceNode,
		*ast.ChainNode, *ast.VariableDeclaratorNode:
		return false, nil
	}
	return false, unsupported(n)
}

func allStatic(nodes []ast.Node) (bool, error) {
	for _, c := range nodes {
		ok, err := IsStatic(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// IsAwaited reports whether evaluating n suspends on await(...). Closure
// bodies are not inspected.
func IsAwaited(n ast.Node) (bool, error) {
	if n == nil {
		return false, nil
	}
	switch n := n.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode, *ast.IdentifierNode,
		*ast.PointerNode, *ast.ClosureNode:
		return false, nil

	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok && id.Value == awaitFunc {
			return true, nil
		}
		return anyAwaited(append([]ast.Node{n.Callee}, n.Arguments...))

	case *ast.UnaryNode:
		return IsAwaited(n.Node)

	case *ast.BinaryNode:
		return anyAwaited([]ast.Node{n.Left, n.Right})

	case *ast.ConditionalNode:
		return anyAwaited([]ast.Node{n.Cond, n.Exp1, n.Exp2})

	case *ast.ArrayNode:
		return anyAwaited(n.Nodes)

	case *ast.MapNode:
		return anyAwaited(n.Pairs)

	case *ast.PairNode:
		return anyAwaited([]ast.Node{n.Key, n.Value})

	case *ast.MemberNode:
		return anyAwaited([]ast.Node{n.Node, n.Property})

	case *ast.SliceNode:
		return anyAwaited([]ast.Node{n.Node, n.From, n.To})

	case *ast.ChainNode:
		return IsAwaited(n.Node)

	case *ast.BuiltinNode:
		return anyAwaited(n.Arguments)

	case *ast.VariableDeclaratorNode:
		return anyAwaited([]ast.Node{n.Value, n.Expr})
	}
	return false, unsupported(n)
}

func anyAwaited(nodes []ast.Node) (bool, error) {
	for _, c := range nodes {
		ok, err := IsAwaited(c)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// IsClassificationError reports whether err was raised because an
// expression has a shape the compiler cannot analyse.
func IsClassificationError(err error) bool {
	return errors.HasCode(err, errors.CodeClassification)
}
