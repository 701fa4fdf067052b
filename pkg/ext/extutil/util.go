// Package extutil holds the value helpers shared by the ext sub-packages.
package extutil

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sandrolain/jsonata/pkg/types"
)

// Items returns the items of an array argument. Undefined has no items
// and any other value is a singleton.
func Items(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	}
	return []interface{}{v}
}

// Array returns items, or undefined when there are none.
func Array(items []interface{}) interface{} {
	if len(items) == 0 {
		return nil
	}
	return items
}

// Object returns v as an ordered object. Host maps come without an
// order, so their keys are sorted.
func Object(v interface{}) (*types.OrderedObject, bool) {
	switch o := v.(type) {
	case *types.OrderedObject:
		return o, true
	case map[string]interface{}:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := types.NewOrderedObject()
		for _, k := range keys {
			out.Set(k, o[k])
		}
		return out, true
	}
	return nil, false
}

// IsObject reports whether v is an object of either representation.
func IsObject(v interface{}) bool {
	_, ok := Object(v)
	return ok
}

// Number returns v as a float64.
func Number(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// Key returns a string identifying v by value, for set operations and
// memo tables. Equal JSON values have equal keys.
func Key(v interface{}) string {
	b, err := json.Marshal(types.Plain(v))
	if err != nil {
		return fmt.Sprintf("%T:%p", v, v)
	}
	return string(b)
}

// Label returns the object key v names: strings stand for themselves and
// other values for their JSON text.
func Label(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Key(v)
}
