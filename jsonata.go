// Package jsonata is a Go implementation of the JSONata query and
// transformation language for JSON data.
//
// An expression is compiled once into an immutable tree and can then be
// evaluated any number of times, from any number of goroutines, against
// different documents.
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := jsonata.Eval("Account.Order.Product.Price", data)
//
//	// Compile once, evaluate many times
//	expr, err := jsonata.Compile("$sum(Order.Product.(Price * Quantity))")
//	ev := evaluator.New()
//	total1, _ := ev.Eval(ctx, expr, data1)
//	total2, _ := ev.Eval(ctx, expr, data2)
//
//	// With options
//	result, err := jsonata.Eval("items[price > 100]", data,
//	    jsonata.WithTimeout(5*time.Second),
//	    jsonata.WithMaxDepth(500),
//	)
//
// # Values
//
// Input documents are the values produced by encoding/json
// (map[string]interface{}, []interface{}, float64, string, bool, nil);
// other numeric types, typed slices and maps are converted on entry.
// Results use the same model, with *types.OrderedObject for objects
// built by the expression and types.NullValue for JSON null. A nil
// result means the expression produced no value.
//
// # More Information
//
//   - Parser: github.com/sandrolain/jsonata/pkg/parser
//   - Compiler: github.com/sandrolain/jsonata/pkg/compiler
//   - Evaluator: github.com/sandrolain/jsonata/pkg/evaluator
//   - Functions: github.com/sandrolain/jsonata/pkg/functions
//   - Types: github.com/sandrolain/jsonata/pkg/types
package jsonata

import (
	"context"
	"fmt"

	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/types"
)

// Version returns the current version of the module.
func Version() string {
	return "v0.2.0-dev"
}

// Option configures an evaluation.
type Option = evaluator.EvalOption

// Evaluation options, re-exported from the evaluator package.
var (
	WithTimeout          = evaluator.WithTimeout
	WithMaxDepth         = evaluator.WithMaxDepth
	WithDebug            = evaluator.WithDebug
	WithLogger           = evaluator.WithLogger
	WithCaching          = evaluator.WithCaching
	WithCacheSize        = evaluator.WithCacheSize
	WithCache            = evaluator.WithCache
	WithCustomFunction   = evaluator.WithCustomFunction
	WithAdvancedFunction = evaluator.WithAdvancedFunction
	WithFunctions        = evaluator.WithFunctions
	WithBindings         = evaluator.WithBindings
)

// Compile compiles a JSONata expression for repeated evaluation.
//
// The compiled expression can be evaluated multiple times against different
// data. It is safe for concurrent use.
//
// Example:
//
//	expr, err := jsonata.Compile("items[price > 100]")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, _ := evaluator.New().Eval(ctx, expr, data)
func Compile(query string) (*types.Expression, error) {
	return compiler.Compile(query)
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(query string) *types.Expression {
	expr, err := Compile(query)
	if err != nil {
		panic(fmt.Sprintf("jsonata: Compile(%q): %v", query, err))
	}
	return expr
}

// Eval is a convenience function that compiles and evaluates an expression
// in a single call.
//
// For repeated evaluations of the same expression, use Compile instead.
func Eval(query string, data interface{}, opts ...Option) (interface{}, error) {
	return EvalWithBindings(context.Background(), query, data, nil, opts...)
}

// EvalWithContext evaluates an expression with a custom context.
func EvalWithContext(ctx context.Context, query string, data interface{}, opts ...Option) (interface{}, error) {
	return EvalWithBindings(ctx, query, data, nil, opts...)
}

// EvalWithBindings evaluates an expression with additional variable
// bindings. Binding names are given without the leading $.
func EvalWithBindings(ctx context.Context, query string, data interface{}, bindings map[string]interface{}, opts ...Option) (interface{}, error) {
	ev := evaluator.New(opts...)
	expr, err := ev.Compile(query)
	if err != nil {
		return nil, err
	}
	return ev.EvalWithBindings(ctx, expr, data, bindings)
}

// RegisterFunction makes a function available to every evaluation in the
// process under $name. It fails if the signature is invalid.
//
// Example:
//
//	err := jsonata.RegisterFunction("double", "<n:n>", func(ctx context.Context, call *evaluator.Call, args []interface{}) (interface{}, error) {
//	    return args[0].(float64) * 2, nil
//	})
func RegisterFunction(name, signature string, impl evaluator.FunctionImpl) error {
	return evaluator.RegisterFunction(name, signature, impl)
}
