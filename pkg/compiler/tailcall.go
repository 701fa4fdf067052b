package compiler

import "github.com/sandrolain/jsonata/pkg/types"

// tailCallOptimize wraps function calls in tail position of a lambda body
// into thunks. The evaluator returns a thunk instead of calling it, and
// the caller's trampoline runs it, so recursion in tail position does not
// grow the Go stack.
func tailCallOptimize(expr *types.ASTNode) *types.ASTNode {
	switch expr.Type {
	case types.NodeFunction:
		if expr.Predicate != nil {
			return expr
		}
		thunk := types.NewASTNode(types.NodeLambda, expr.Position)
		thunk.Thunk = true
		thunk.Body = expr
		return thunk
	case types.NodeCondition:
		expr.Then = tailCallOptimize(expr.Then)
		if expr.Else != nil {
			expr.Else = tailCallOptimize(expr.Else)
		}
	case types.NodeBlock:
		if n := len(expr.Expressions); n > 0 {
			expr.Expressions[n-1] = tailCallOptimize(expr.Expressions[n-1])
		}
	}
	return expr
}
