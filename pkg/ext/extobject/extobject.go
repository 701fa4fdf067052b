// Package extobject provides object functions beyond the standard
// library. Results keep the key order of their input.
package extobject

import (
	"context"
	"fmt"

	"github.com/sandrolain/jsonata/pkg/ext/extutil"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns the object functions that take no function argument.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		Values(),
		Pairs(),
		FromPairs(),
		Pick(),
		Omit(),
		DeepMerge(),
		Invert(),
		Size(),
		Rename(),
	}
}

// AllAdvanced returns the object functions that apply a function argument.
func AllAdvanced() []functions.AdvancedCustomFunctionDef {
	return []functions.AdvancedCustomFunctionDef{
		MapValues(),
		MapKeys(),
	}
}

// AllEntries returns All and AllAdvanced as function entries for
// jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	var out []functions.FunctionEntry
	for _, f := range All() {
		out = append(out, f)
	}
	for _, f := range AllAdvanced() {
		out = append(out, f)
	}
	return out
}

func object(name string, v interface{}) (*types.OrderedObject, error) {
	obj, ok := extutil.Object(v)
	if !ok {
		return nil, types.NewError(types.ErrArgumentMismatch,
			fmt.Sprintf("argument 1 of $%s must be an object", name), -1).WithValue(v)
	}
	return obj, nil
}

// Values defines $values(object), the values in key order.
func Values() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "values",
		Signature: "<o-:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			obj, err := object("values", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]interface{}, 0, obj.Len())
			for _, k := range obj.Keys {
				out = append(out, obj.Values[k])
			}
			return extutil.Array(out), nil
		},
	}
}

// Pairs defines $pairs(object), the [key, value] pairs in key order.
func Pairs() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "pairs",
		Signature: "<o-:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			obj, err := object("pairs", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]interface{}, 0, obj.Len())
			for _, k := range obj.Keys {
				out = append(out, []interface{}{k, obj.Values[k]})
			}
			return extutil.Array(out), nil
		},
	}
}

// FromPairs defines $fromPairs(array), the inverse of $pairs. Later pairs
// win over earlier ones with the same key.
func FromPairs() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "fromPairs",
		Signature: "<a:o>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			out := types.NewOrderedObject()
			for i, item := range extutil.Items(args[0]) {
				pair, ok := item.([]interface{})
				if !ok || len(pair) != 2 {
					return nil, fmt.Errorf("$fromPairs: item %d is not a [key, value] pair", i)
				}
				out.Set(extutil.Label(pair[0]), pair[1])
			}
			return out, nil
		},
	}
}

// Pick defines $pick(object, keys), the object restricted to keys.
func Pick() functions.CustomFunctionDef {
	return filterKeys("pick", true)
}

// Omit defines $omit(object, keys), the object without keys.
func Omit() functions.CustomFunctionDef {
	return filterKeys("omit", false)
}

func filterKeys(name string, keep bool) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      name,
		Signature: "<o-a<s>:o>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			obj, err := object(name, args[0])
			if err != nil {
				return nil, err
			}
			listed := make(map[string]bool)
			for _, k := range extutil.Items(args[1]) {
				s, _ := k.(string)
				listed[s] = true
			}
			out := types.NewOrderedObject()
			for _, k := range obj.Keys {
				if listed[k] == keep {
					out.Set(k, obj.Values[k])
				}
			}
			return out, nil
		},
	}
}

// DeepMerge defines $deepMerge(objects). Unlike $merge, nested objects
// present in several inputs are merged too; any other value is replaced
// by the later one.
func DeepMerge() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "deepMerge",
		Signature: "<a<o>:o>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			out := types.NewOrderedObject()
			for _, item := range extutil.Items(args[0]) {
				obj, err := object("deepMerge", item)
				if err != nil {
					return nil, err
				}
				mergeInto(out, obj)
			}
			return out, nil
		},
	}
}

func mergeInto(dst, src *types.OrderedObject) {
	for _, k := range src.Keys {
		v := src.Values[k]
		if next, ok := extutil.Object(v); ok {
			if cur, ok := dst.Get(k); ok {
				if prev, ok := extutil.Object(cur); ok {
					merged := prev.Clone()
					mergeInto(merged, next)
					dst.Set(k, merged)
					continue
				}
			}
			copied := types.NewOrderedObject()
			mergeInto(copied, next)
			v = copied
		}
		dst.Set(k, v)
	}
}

// Invert defines $invert(object), swapping keys and values. Values that
// are not strings become their JSON text.
func Invert() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "invert",
		Signature: "<o-:o>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			obj, err := object("invert", args[0])
			if err != nil {
				return nil, err
			}
			out := types.NewOrderedObject()
			for _, k := range obj.Keys {
				out.Set(extutil.Label(obj.Values[k]), k)
			}
			return out, nil
		},
	}
}

// Size defines $size(object), the number of keys.
func Size() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "size",
		Signature: "<o-:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			obj, err := object("size", args[0])
			if err != nil {
				return nil, err
			}
			return float64(obj.Len()), nil
		},
	}
}

// Rename defines $rename(object, names), where names maps old keys to new
// ones. Renamed keys keep their position.
func Rename() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "rename",
		Signature: "<o-o:o>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			obj, err := object("rename", args[0])
			if err != nil {
				return nil, err
			}
			names, err := object("rename", args[1])
			if err != nil {
				return nil, err
			}
			out := types.NewOrderedObject()
			for _, k := range obj.Keys {
				key := k
				if to, ok := names.Get(k); ok {
					if s, ok := to.(string); ok {
						key = s
					}
				}
				out.Set(key, obj.Values[k])
			}
			return out, nil
		},
	}
}

// MapValues defines $mapValues(object, fn), applying fn to every value.
// Keys whose new value is undefined are dropped.
func MapValues() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "mapValues",
		Signature: "<o-f:o>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			obj, err := object("mapValues", args[0])
			if err != nil {
				return nil, err
			}
			out := types.NewOrderedObject()
			for _, k := range obj.Keys {
				v, err := caller.Call(ctx, args[1], obj.Values[k])
				if err != nil {
					return nil, fmt.Errorf("$mapValues: %w", err)
				}
				if v = types.Plain(v); v != nil {
					out.Set(k, v)
				}
			}
			return out, nil
		},
	}
}

// MapKeys defines $mapKeys(object, fn), renaming every key to fn(key).
func MapKeys() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "mapKeys",
		Signature: "<o-f:o>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			obj, err := object("mapKeys", args[0])
			if err != nil {
				return nil, err
			}
			out := types.NewOrderedObject()
			for _, k := range obj.Keys {
				key, err := caller.Call(ctx, args[1], k)
				if err != nil {
					return nil, fmt.Errorf("$mapKeys: %w", err)
				}
				if key = types.Plain(key); key == nil {
					continue
				}
				out.Set(extutil.Label(key), obj.Values[k])
			}
			return out, nil
		},
	}
}
