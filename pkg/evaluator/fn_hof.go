package evaluator

import (
	"context"

	"github.com/sandrolain/jsonata/pkg/types"
)

func fnMap(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	fn := args[1].(Function)
	result := emptySequence()
	for i, item := range items {
		res, err := call.Apply(ctx, fn, hofArgs(fn, item, float64(i), args[0])...)
		if err != nil {
			return nil, err
		}
		if res != nil {
			result.Append(res)
		}
	}
	return result, nil
}

func fnFilter(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	fn := args[1].(Function)
	result := emptySequence()
	for i, item := range items {
		res, err := call.Apply(ctx, fn, hofArgs(fn, item, float64(i), args[0])...)
		if err != nil {
			return nil, err
		}
		if truthy(res) {
			result.Append(item)
		}
	}
	return result, nil
}

// fnSingle returns the one item satisfying the predicate, failing when
// none or more than one does.
func fnSingle(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	fn, _ := argAt(args, 1).(Function)
	var result interface{}
	found := false
	for i, item := range items {
		ok := true
		if fn != nil {
			res, err := call.Apply(ctx, fn, hofArgs(fn, item, float64(i), args[0])...)
			if err != nil {
				return nil, err
			}
			ok = truthy(res)
		}
		if !ok {
			continue
		}
		if found {
			return nil, types.NewError(types.ErrSingleMultipleMatch, "", -1)
		}
		result, found = item, true
	}
	if !found {
		return nil, types.NewError(types.ErrSingleNoMatch, "", -1)
	}
	return result, nil
}

// fnReduce folds the array from the left. Without an initial value the
// first item seeds the accumulator.
func fnReduce(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	fn := args[1].(Function)
	arity := fn.Arity()
	if arity < 2 {
		return nil, types.NewError(types.ErrReduceArity, "", -1).WithValue(fn)
	}

	init := argAt(args, 2)
	var result interface{}
	index := 0
	if init == nil && len(items) > 0 {
		result = items[0]
		index = 1
	} else {
		result = init
	}
	for ; index < len(items); index++ {
		fargs := []interface{}{result, items[index]}
		if arity >= 3 {
			fargs = append(fargs, float64(index))
		}
		if arity >= 4 {
			fargs = append(fargs, args[0])
		}
		var err error
		result, err = call.Apply(ctx, fn, fargs...)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// fnSift keeps the fields of an object for which the predicate, called
// with value, key and object, is truthy.
func fnSift(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	obj := args[0]
	if obj == nil {
		return nil, nil
	}
	fn, ok := argAt(args, 1).(Function)
	if !ok {
		return nil, types.NewError(types.ErrInvokeNonFunction, "", -1).WithValue(argAt(args, 1))
	}
	result := types.NewOrderedObject()
	for _, key := range objectKeys(obj) {
		v, _ := objectGet(obj, key)
		res, err := call.Apply(ctx, fn, hofArgs(fn, v, key, obj)...)
		if err != nil {
			return nil, err
		}
		if truthy(res) {
			result.Set(key, v)
		}
	}
	if result.Len() == 0 {
		return nil, nil
	}
	return result, nil
}

// fnEach maps every field of an object, called with value, key and
// object, to an array.
func fnEach(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	obj := args[0]
	if obj == nil {
		return nil, nil
	}
	fn := args[1].(Function)
	result := emptySequence()
	for _, key := range objectKeys(obj) {
		v, _ := objectGet(obj, key)
		res, err := call.Apply(ctx, fn, hofArgs(fn, v, key, obj)...)
		if err != nil {
			return nil, err
		}
		if res != nil {
			result.Append(res)
		}
	}
	return result, nil
}
