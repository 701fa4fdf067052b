package evaluator

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"

	"github.com/sandrolain/jsonata/pkg/types"
)

// tuple is one binding of a tuple stream: the context item under "@"
// plus focus, index and ancestor variables.
type tuple map[string]interface{}

// newSequence returns a result sequence. Unlike a variadic constructor a
// single undefined item is kept, so paths evaluate their first step once
// even when the input is undefined.
func newSequence(item interface{}) *types.Sequence {
	return &types.Sequence{Items: []interface{}{item}}
}

func emptySequence() *types.Sequence {
	return &types.Sequence{}
}

// arrayItems returns the items of an array value.
func arrayItems(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case []interface{}:
		return a, true
	case *types.Sequence:
		return a.Items, true
	}
	return nil, false
}

func isArray(v interface{}) bool {
	_, ok := arrayItems(v)
	return ok
}

// isSequence reports whether v is a result sequence, as opposed to an
// array from the input or a constructed array.
func isSequence(v interface{}) bool {
	s, ok := v.(*types.Sequence)
	return ok && s.IsSequence()
}

// toItems returns the items of v, wrapping a non-array value.
func toItems(v interface{}) []interface{} {
	if items, ok := arrayItems(v); ok {
		return items
	}
	return []interface{}{v}
}

func isObject(v interface{}) bool {
	switch v.(type) {
	case *types.OrderedObject, map[string]interface{}:
		return true
	}
	return false
}

// objectKeys returns the keys of an object in iteration order. Host maps
// iterate in sorted key order.
func objectKeys(v interface{}) []string {
	switch o := v.(type) {
	case *types.OrderedObject:
		return o.Keys
	case map[string]interface{}:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return nil
}

func objectGet(v interface{}, key string) (interface{}, bool) {
	switch o := v.(type) {
	case *types.OrderedObject:
		return o.Get(key)
	case map[string]interface{}:
		val, ok := o[key]
		return val, ok
	}
	return nil, false
}

func objectLen(v interface{}) int {
	switch o := v.(type) {
	case *types.OrderedObject:
		return o.Len()
	case map[string]interface{}:
		return len(o)
	}
	return 0
}

func isNumber(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

func isInteger(v interface{}) bool {
	f, ok := v.(float64)
	return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
}

func isFunction(v interface{}) bool {
	_, ok := v.(Function)
	return ok
}

func isArrayOfStrings(v interface{}) bool {
	items, ok := arrayItems(v)
	if !ok {
		return false
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func isArrayOfNumbers(v interface{}) bool {
	items, ok := arrayItems(v)
	if !ok {
		return false
	}
	for _, item := range items {
		if !isNumber(item) {
			return false
		}
	}
	return true
}

// checkNumber reports whether v is a number, failing with D1001 when it
// is not finite.
func checkNumber(v interface{}) (bool, error) {
	f, ok := v.(float64)
	if !ok {
		return false, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false, types.NewError(types.ErrNumberTooLarge, "", -1).WithValue(f)
	}
	return true, nil
}

// typeSymbol maps a value to its signature type symbol.
func typeSymbol(v interface{}) byte {
	switch v.(type) {
	case nil:
		return 'm'
	case Function:
		return 'f'
	case string:
		return 's'
	case float64:
		return 'n'
	case bool:
		return 'b'
	case types.Null:
		return 'l'
	case []interface{}, *types.Sequence:
		return 'a'
	}
	return 'o'
}

// boolean casts a value to its effective boolean value. The result is nil
// for undefined.
func boolean(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	return truthy(v)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case types.Null:
		return false
	case Function:
		return false
	case []interface{}, *types.Sequence:
		items, _ := arrayItems(t)
		if len(items) == 1 {
			return truthy(items[0])
		}
		for _, item := range items {
			if truthy(item) {
				return true
			}
		}
		return false
	}
	return objectLen(v) > 0
}

// deepEqual compares two values structurally. Object key order is not
// significant; functions compare by identity.
func deepEqual(a, b interface{}) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case string, float64, bool, types.Null:
		return a == b
	case Function:
		f, ok := b.(Function)
		return ok && f == x
	}
	if la, ok := arrayItems(a); ok {
		lb, ok := arrayItems(b)
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !deepEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	if isObject(a) && isObject(b) {
		if objectLen(a) != objectLen(b) {
			return false
		}
		for _, key := range objectKeys(a) {
			bv, ok := objectGet(b, key)
			if !ok {
				return false
			}
			av, _ := objectGet(a, key)
			if !deepEqual(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// appendValues concatenates two values into an array, following the
// rules of $append: undefined operands are dropped and arrays are
// spliced in.
func appendValues(a, b interface{}) interface{} {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := append([]interface{}{}, toItems(a)...)
	return append(out, toItems(b)...)
}

// flatten appends the leaves of nested arrays to out.
func flatten(v interface{}, out []interface{}) []interface{} {
	if items, ok := arrayItems(v); ok {
		for _, item := range items {
			out = flatten(item, out)
		}
		return out
	}
	return append(out, v)
}

// normalize converts host values into the evaluator's value model:
// numbers become float64, json.Number is parsed, typed slices and maps are
// converted through reflection. Containers are copied only when one of
// their members changes, so host data is never modified.
func normalize(v interface{}) interface{} {
	out, _ := normalizeValue(v)
	return out
}

func normalizeValue(v interface{}) (interface{}, bool) {
	switch t := v.(type) {
	case nil, string, bool, float64, types.Null, Function, *types.Sequence:
		return v, false
	case *types.OrderedObject:
		var out *types.OrderedObject
		for _, k := range t.Keys {
			n, changed := normalizeValue(t.Values[k])
			if changed && out == nil {
				out = t.Clone()
			}
			if out != nil {
				out.Values[k] = n
			}
		}
		if out != nil {
			return out, true
		}
		return t, false
	case []interface{}:
		var out []interface{}
		for i, item := range t {
			n, changed := normalizeItem(item)
			if changed && out == nil {
				out = append([]interface{}(nil), t...)
			}
			if out != nil {
				out[i] = n
			}
		}
		if out != nil {
			return out, true
		}
		return t, false
	case map[string]interface{}:
		var out map[string]interface{}
		for k, item := range t {
			n, changed := normalizeItem(item)
			if changed && out == nil {
				out = make(map[string]interface{}, len(t))
				for k2, v2 := range t {
					out[k2] = v2
				}
			}
			if out != nil {
				out[k] = n
			}
		}
		if out != nil {
			return out, true
		}
		return t, false
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String(), true
		}
		return f, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, true
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i], _ = normalizeItem(rv.Index(i).Interface())
		}
		return out, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v, false
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()], _ = normalizeItem(iter.Value().Interface())
		}
		return out, true
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, true
		}
		return normalize(rv.Elem().Interface()), true
	}
	return v, false
}

// normalizeItem normalizes a member of a host array or map, where nil
// stands for JSON null as it does in the output of encoding/json.
func normalizeItem(v interface{}) (interface{}, bool) {
	if v == nil {
		return types.NullValue, true
	}
	return normalizeValue(v)
}

// cloneValue deep-copies arrays and objects. Objects become
// OrderedObjects so the copy can be updated in place.
func cloneValue(v interface{}) interface{} {
	if items, ok := arrayItems(v); ok {
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = cloneValue(item)
		}
		return out
	}
	if isObject(v) {
		obj := types.NewOrderedObject()
		for _, k := range objectKeys(v) {
			val, _ := objectGet(v, k)
			obj.Set(k, cloneValue(val))
		}
		return obj
	}
	return v
}
