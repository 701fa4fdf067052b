package evaluator

import (
	"context"

	"github.com/sandrolain/jsonata/pkg/types"
)

type groupEntry struct {
	data interface{}
	pair int
}

// evalGroup evaluates an object constructor or group-by clause. Every item
// of input is evaluated against each key expression; items sharing a key
// are grouped and the value expression is evaluated once per group.
// Groups keep the order in which their keys first appeared.
func (ev *evaluation) evalGroup(ctx context.Context, pairs []types.Pair, pos int, input interface{}, env *Frame) (interface{}, error) {
	reduce := false
	var items []interface{}
	if seq, ok := input.(*types.Sequence); ok && seq.TupleStream {
		reduce = true
		items = seq.Items
	} else {
		items = toItems(input)
	}
	if len(items) == 0 {
		items = []interface{}{nil}
	}

	groups := make(map[string]*groupEntry)
	var keys []string

	for _, item := range items {
		focus, kenv := item, env
		if reduce {
			t, _ := item.(tuple)
			focus = t["@"]
			kenv = frameFromTuple(env, t)
		}
		for pi, pair := range pairs {
			k, err := ev.eval(ctx, pair.Key, focus, kenv)
			if err != nil {
				return nil, err
			}
			if k == nil {
				continue
			}
			key, ok := k.(string)
			if !ok {
				return nil, types.NewError(types.ErrGroupKeyNotString, "", pos).WithValue(k)
			}
			if g, ok := groups[key]; ok {
				if g.pair != pi {
					return nil, types.NewError(types.ErrGroupKeyClash, "", pos).WithToken(key)
				}
				g.data = appendValues(g.data, item)
				continue
			}
			groups[key] = &groupEntry{data: item, pair: pi}
			keys = append(keys, key)
		}
	}

	result := types.NewOrderedObject()
	for _, key := range keys {
		g := groups[key]
		focus, venv := g.data, env
		if reduce {
			t := reduceTuples(g.data)
			focus = t["@"]
			delete(t, "@")
			venv = frameFromTuple(env, t)
		}
		v, err := ev.eval(ctx, pairs[g.pair].Value, focus, venv)
		if err != nil {
			return nil, err
		}
		if v != nil {
			result.Set(key, v)
		}
	}
	return result, nil
}

// reduceTuples merges the tuples of one group: each variable becomes the
// sequence of its values across the group.
func reduceTuples(data interface{}) tuple {
	items, ok := data.([]interface{})
	if !ok {
		t := data.(tuple)
		out := make(tuple, len(t))
		for k, v := range t {
			out[k] = v
		}
		return out
	}
	first := items[0].(tuple)
	out := make(tuple, len(first))
	for k, v := range first {
		out[k] = v
	}
	for _, item := range items[1:] {
		for k, v := range item.(tuple) {
			out[k] = appendValues(out[k], v)
		}
	}
	return out
}
