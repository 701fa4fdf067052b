// Package types defines the core types shared by the JSONata packages.
//
// This package contains type definitions for:
//   - Expression: compiled JSONata expressions
//   - ASTNode: the resolved syntax tree evaluated by the evaluator
//   - Signature: parsed function type signatures
//   - Null, Sequence and OrderedObject: the runtime value model
//   - Error: structured errors with stable codes
package types

// Expression represents a compiled JSONata expression.
//
// An Expression is immutable once compiled. It can be evaluated any number
// of times, concurrently, by passing it to [evaluator.Evaluator.Eval].
type Expression struct {
	ast    *ASTNode
	source string
}

// NewExpression creates a new Expression from a resolved tree.
func NewExpression(ast *ASTNode, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// AST returns the resolved syntax tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original source code of the expression.
func (e *Expression) Source() string {
	return e.source
}

// Format returns the canonical source form of the expression.
func (e *Expression) Format() string {
	return Format(e.ast)
}

// String returns the original source of the expression.
func (e *Expression) String() string {
	return e.source
}
