package evaluator

import (
	"context"

	"github.com/sandrolain/jsonata/pkg/types"
)

// fnKeys returns the keys of an object, or the distinct keys of an array
// of objects in order of first appearance.
func fnKeys(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	result := emptySequence()
	if items, ok := arrayItems(args[0]); ok {
		seen := make(map[string]bool)
		for _, item := range items {
			for _, k := range objectKeys(item) {
				if !seen[k] {
					seen[k] = true
					result.Append(k)
				}
			}
		}
		return result, nil
	}
	for _, k := range objectKeys(args[0]) {
		result.Append(k)
	}
	return result, nil
}

func fnLookup(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	key, _ := args[1].(string)
	return lookup(args[0], key), nil
}

// fnSpread splits an object into an array of single-field objects.
func fnSpread(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return spread(args[0]), nil
}

func spread(v interface{}) interface{} {
	if items, ok := arrayItems(v); ok {
		var result interface{} = emptySequence()
		for _, item := range items {
			result = appendValues(result, spread(item))
		}
		return result
	}
	if !isObject(v) {
		return v
	}
	result := emptySequence()
	for _, k := range objectKeys(v) {
		val, _ := objectGet(v, k)
		obj := types.NewOrderedObject()
		obj.Set(k, val)
		result.Append(obj)
	}
	return result
}

// fnMerge merges an array of objects into one; later fields win.
func fnMerge(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	result := types.NewOrderedObject()
	for _, item := range items {
		for _, k := range objectKeys(item) {
			v, _ := objectGet(item, k)
			result.Set(k, v)
		}
	}
	return result, nil
}

func fnType(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	switch args[0].(type) {
	case nil:
		return nil, nil
	case types.Null:
		return "null", nil
	case float64:
		return "number", nil
	case string:
		return "string", nil
	case bool:
		return "boolean", nil
	case Function:
		return "function", nil
	case []interface{}, *types.Sequence:
		return "array", nil
	}
	return "object", nil
}

func fnClone(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return cloneValue(args[0]), nil
}
