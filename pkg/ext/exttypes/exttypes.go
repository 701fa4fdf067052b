// Package exttypes provides type predicates and defaulting helpers.
package exttypes

import (
	"context"

	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns every type function definition.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		predicate("isString", func(v interface{}) bool { _, ok := v.(string); return ok }),
		predicate("isNumber", func(v interface{}) bool { _, ok := v.(float64); return ok }),
		predicate("isBoolean", func(v interface{}) bool { _, ok := v.(bool); return ok }),
		predicate("isArray", func(v interface{}) bool { _, ok := v.([]interface{}); return ok }),
		predicate("isObject", isObject),
		predicate("isNull", func(v interface{}) bool { _, ok := v.(types.Null); return ok }),
		predicate("isFunction", func(v interface{}) bool { _, ok := v.(evaluator.Function); return ok }),
		predicate("isUndefined", func(v interface{}) bool { return v == nil }),
		predicate("isEmpty", isEmpty),
		Default(),
		Identity(),
	}
}

// AllEntries returns All as function entries for jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

func predicate(name string, test func(interface{}) bool) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      name,
		Signature: "<x:b>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			return test(args[0]), nil
		},
	}
}

func isObject(v interface{}) bool {
	switch v.(type) {
	case *types.OrderedObject, map[string]interface{}:
		return true
	}
	return false
}

// isEmpty holds for undefined, null, the empty string, the empty array
// and the empty object.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil, types.Null:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case *types.OrderedObject:
		return t.Len() == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

// Default defines $default(value, fallback), which returns fallback when
// value is undefined or null.
func Default() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "default",
		Signature: "<x-x:x>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			switch args[0].(type) {
			case nil, types.Null:
				return args[1], nil
			}
			return args[0], nil
		},
	}
}

// Identity defines $identity(value).
func Identity() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "identity",
		Signature: "<x:x>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			return args[0], nil
		},
	}
}
