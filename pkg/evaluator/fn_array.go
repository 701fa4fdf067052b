package evaluator

import (
	"context"
	"math/rand"
	"sort"

	"github.com/sandrolain/jsonata/pkg/types"
)

// fnZip convolves its array arguments into an array of tuples, as long
// as the shortest argument.
func fnZip(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	length := -1
	for _, arg := range args {
		items, _ := arrayItems(arg)
		if length < 0 || len(items) < length {
			length = len(items)
		}
	}
	result := []interface{}{}
	for i := 0; i < length; i++ {
		t := make([]interface{}, len(args))
		for j, arg := range args {
			items, _ := arrayItems(arg)
			t[j] = items[i]
		}
		result = append(result, t)
	}
	return result, nil
}

func fnAppend(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return appendValues(args[0], args[1]), nil
}

func fnReverse(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	if len(items) <= 1 {
		return args[0], nil
	}
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out, nil
}

func fnShuffle(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	out := append([]interface{}{}, items...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

func fnDistinct(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	items, ok := arrayItems(args[0])
	if !ok || len(items) <= 1 {
		return args[0], nil
	}
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		dup := false
		for _, seen := range out {
			if deepEqual(item, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, item)
		}
	}
	if isSequence(args[0]) {
		return &types.Sequence{Items: out}, nil
	}
	return out, nil
}

// fnSort sorts an array stably. The comparator returns true when its
// first argument belongs after the second; without one the array must
// hold only numbers or only strings.
func fnSort(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	if len(items) <= 1 {
		return args[0], nil
	}
	out := append([]interface{}{}, items...)

	fn, _ := argAt(args, 1).(Function)
	if fn == nil {
		switch {
		case isArrayOfNumbers(out):
			sort.SliceStable(out, func(i, j int) bool { return out[i].(float64) < out[j].(float64) })
		case isArrayOfStrings(out):
			sort.SliceStable(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
		default:
			return nil, types.NewError(types.ErrSortNeedsComparator, "", -1)
		}
		return out, nil
	}

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		swap, err := call.Apply(ctx, fn, out[j], out[i])
		if err != nil {
			sortErr = err
			return false
		}
		return truthy(swap)
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}
