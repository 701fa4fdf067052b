// Package extfunc provides higher-order utilities. They are advanced
// functions: they call back into the evaluator to apply their function
// arguments.
package extfunc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// AllAdvanced returns every functional utility definition.
func AllAdvanced() []functions.AdvancedCustomFunctionDef {
	return []functions.AdvancedCustomFunctionDef{
		Pipe(),
		Memoize(),
	}
}

// AllEntries returns AllAdvanced as function entries for
// jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	all := AllAdvanced()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// Pipe defines $pipe(value, fn1, fn2, ...), threading value through the
// functions from left to right:
//
//	$pipe("  hello  ", $trim, $uppercase)  =>  "HELLO"
func Pipe() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name: "pipe",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			if len(args) == 0 {
				return nil, nil
			}
			value := args[0]
			for i, fn := range args[1:] {
				result, err := caller.Call(ctx, fn, value)
				if err != nil {
					return nil, fmt.Errorf("$pipe: step %d: %w", i+1, err)
				}
				value = result
			}
			return value, nil
		},
	}
}

// Memoize defines $memoize(fn). It returns a function that applies fn
// and remembers the result for each distinct list of arguments. Bind the
// result to a variable to share the remembered results between calls:
//
//	($slow := $memoize(function($n){ ... }); [$slow(1), $slow(1)])
//
// Calls with arguments that have no JSON form, such as functions, are
// not remembered.
func Memoize() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "memoize",
		Signature: "<f:f>",
		Fn: func(_ context.Context, _ functions.Caller, args ...interface{}) (interface{}, error) {
			m := &memo{fn: args[0], results: make(map[string]interface{})}
			return evaluator.NewNative("memoized", "", m.call)
		},
	}
}

type memo struct {
	fn interface{}

	mu      sync.Mutex
	results map[string]interface{}
}

func (m *memo) call(ctx context.Context, call *evaluator.Call, args []interface{}) (interface{}, error) {
	key, err := cacheKey(args)
	if err != nil {
		return call.Call(ctx, m.fn, args...)
	}
	m.mu.Lock()
	v, ok := m.results[key]
	m.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err = call.Call(ctx, m.fn, args...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.results[key] = v
	m.mu.Unlock()
	return v, nil
}

func cacheKey(args []interface{}) (string, error) {
	for _, arg := range args {
		if _, ok := arg.(evaluator.Function); ok {
			return "", fmt.Errorf("function argument")
		}
	}
	b, err := json.Marshal(types.Plain(args))
	return string(b), err
}
