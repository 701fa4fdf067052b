// Package compiler turns JSONata source into an immutable compiled expression.
//
// Compilation runs the parser and then a resolution pass over the raw tree:
//   - location paths are flattened into step lists
//   - predicates, focus (@) and index (#) bindings and group-by clauses are
//     attached to the steps they apply to
//   - every parent operator (%) is resolved to the step whose input it names
//   - calls in tail position of a lambda body are marked for the evaluator's
//     trampoline
//
// The resolved tree is shared read-only by every evaluation of the expression.
package compiler

import (
	"github.com/sandrolain/jsonata/pkg/parser"
	"github.com/sandrolain/jsonata/pkg/types"
)

// Compile parses and resolves a JSONata expression.
func Compile(query string) (*types.Expression, error) {
	raw, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	ast, err := Resolve(raw)
	if err != nil {
		return nil, err
	}
	return types.NewExpression(ast, query), nil
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
func MustCompile(query string) *types.Expression {
	expr, err := Compile(query)
	if err != nil {
		panic("compiler: Compile(" + query + "): " + err.Error())
	}
	return expr
}

// Resolve converts a raw syntax tree into the resolved form.
func Resolve(raw *parser.Node) (*types.ASTNode, error) {
	r := &resolver{seeking: make(map[*types.ASTNode][]*types.Slot)}
	ast, err := r.resolve(raw)
	if err != nil {
		return nil, err
	}
	if _, unresolved := r.seeking[ast]; unresolved || ast.Type == types.NodeParent {
		// an ancestor was requested above the root of the input
		return nil, types.NewError(types.ErrUnresolvedAncestor, "", ast.Position).WithToken(string(ast.Type))
	}
	return ast, nil
}
