package evaluator

import (
	"context"
	"math"

	"github.com/sandrolain/jsonata/pkg/types"
)

// evalPath evaluates the steps of a path left to right, each step
// mapping over the sequence produced by the previous one.
//
// Once a step carries a focus, index or ancestor binding the path
// switches to a tuple stream: every item travels with the variables bound
// along the way.
func (ev *evaluation) evalPath(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	// a path starting with a variable is absolute and evaluates it once
	var inputSeq interface{}
	if isArray(input) && node.Steps[0].Type != types.NodeVariable {
		inputSeq = input
	} else {
		inputSeq = newSequence(input)
	}

	var result interface{}
	var tuples *types.Sequence
	tupleMode := false

	for i, step := range node.Steps {
		if step.Tuple {
			tupleMode = true
		}

		var err error
		switch {
		case i == 0 && step.ConsArray:
			// an array constructor is evaluated once, not per input item
			result, err = ev.eval(ctx, step, inputSeq, env)
		case tupleMode:
			tuples, err = ev.evalTupleStep(ctx, step, toItems(inputSeq), tuples, env)
		default:
			result, err = ev.evalStep(ctx, step, toItems(inputSeq), env, i == len(node.Steps)-1)
		}
		if err != nil {
			return nil, err
		}

		if !tupleMode {
			if items, ok := arrayItems(result); !ok || len(items) == 0 {
				break
			}
		}

		if step.Focus == "" {
			inputSeq = result
		}
	}

	if tupleMode {
		if node.Tuple {
			// the enclosing path still needs the ancestry bindings
			result = tuples
		} else {
			seq := emptySequence()
			if tuples != nil {
				for _, item := range tuples.Items {
					if v := item.(tuple)["@"]; v != nil {
						seq.Append(v)
					}
				}
			}
			result = seq
		}
	}

	if node.KeepSingletonArray {
		switch r := result.(type) {
		case *types.Sequence:
			if r.Cons && r.Array {
				r = newSequence(r)
				result = r
			}
			r.KeepSingleton = true
		case []interface{}:
			result = &types.Sequence{Items: r, Array: true, KeepSingleton: true}
		}
	}

	if node.Group != nil {
		src := result
		if tupleMode {
			src = tuples
		}
		return ev.evalGroup(ctx, node.Group.Pairs, node.Group.Position, src, env)
	}
	return result, nil
}

// evalStep evaluates one path step against every item of the input
// sequence and flattens the results into a new sequence.
func (ev *evaluation) evalStep(ctx context.Context, step *types.ASTNode, items []interface{}, env *Frame, last bool) (interface{}, error) {
	if step.Type == types.NodeSort {
		sorted, err := ev.evalSort(ctx, step, &types.Sequence{Items: items}, env)
		if err != nil {
			return nil, err
		}
		if step.Stages != nil {
			return ev.evalStages(ctx, step.Stages, sorted, env)
		}
		return sorted, nil
	}

	results := make([]interface{}, 0, len(items))
	for _, item := range items {
		res, err := ev.eval(ctx, step, item, env)
		if err != nil {
			return nil, err
		}
		for _, stage := range step.Stages {
			if stage.Type != types.StageFilter {
				continue
			}
			res, err = ev.evalFilter(ctx, stage.Expr, res, env)
			if err != nil {
				return nil, err
			}
		}
		if res != nil {
			results = append(results, res)
		}
	}

	// a single array value at the end of a path is returned as is
	if last && len(results) == 1 && isArray(results[0]) && !isSequence(results[0]) {
		return results[0], nil
	}

	out := emptySequence()
	for _, res := range results {
		if seq, ok := res.(*types.Sequence); ok && seq.Cons {
			out.Append(seq)
			continue
		}
		if arr, ok := arrayItems(res); ok {
			out.Append(arr...)
			continue
		}
		out.Append(res)
	}
	return out, nil
}

// evalTupleStep is evalStep for tuple streams. bindings is nil for the
// first tuple step; the input items then seed the stream.
func (ev *evaluation) evalTupleStep(ctx context.Context, step *types.ASTNode, items []interface{}, bindings *types.Sequence, env *Frame) (*types.Sequence, error) {
	if step.Type == types.NodeSort {
		var result *types.Sequence
		if bindings != nil {
			sorted, err := ev.evalSort(ctx, step, bindings, env)
			if err != nil {
				return nil, err
			}
			result = sorted
		} else {
			sorted, err := ev.evalSort(ctx, step, &types.Sequence{Items: items}, env)
			if err != nil {
				return nil, err
			}
			result = &types.Sequence{TupleStream: true}
			for i, item := range sorted.Items {
				t := tuple{"@": item}
				if step.Index != "" {
					t[step.Index] = float64(i)
				}
				result.Append(t)
			}
		}
		if step.Stages != nil {
			staged, err := ev.evalStages(ctx, step.Stages, result, env)
			if err != nil {
				return nil, err
			}
			return asTupleStream(staged), nil
		}
		return result, nil
	}

	if bindings == nil {
		bindings = &types.Sequence{TupleStream: true}
		for _, item := range items {
			bindings.Append(tuple{"@": item})
		}
	}

	result := &types.Sequence{TupleStream: true}
	for _, b := range bindings.Items {
		bt := b.(tuple)
		res, err := ev.eval(ctx, step, bt["@"], frameFromTuple(env, bt))
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}
		resTuples := false
		if seq, ok := res.(*types.Sequence); ok && seq.TupleStream {
			resTuples = true
		}
		for j, r := range toItems(res) {
			t := make(tuple, len(bt)+2)
			for k, v := range bt {
				t[k] = v
			}
			if resTuples {
				for k, v := range r.(tuple) {
					t[k] = v
				}
			} else {
				if step.Focus != "" {
					t[step.Focus] = r
					t["@"] = bt["@"]
				} else {
					t["@"] = r
				}
				if step.Index != "" {
					t[step.Index] = float64(j)
				}
				if step.Ancestor != nil {
					t[step.Ancestor.Label] = bt["@"]
				}
			}
			result.Append(t)
		}
	}

	if step.Stages != nil {
		staged, err := ev.evalStages(ctx, step.Stages, result, env)
		if err != nil {
			return nil, err
		}
		return asTupleStream(staged), nil
	}
	return result, nil
}

func asTupleStream(v interface{}) *types.Sequence {
	if seq, ok := v.(*types.Sequence); ok {
		seq.TupleStream = true
		return seq
	}
	return &types.Sequence{Items: toItems(v), TupleStream: true}
}

// evalStages runs the filter and index stages of a step in order.
func (ev *evaluation) evalStages(ctx context.Context, stages []types.Stage, input interface{}, env *Frame) (interface{}, error) {
	result := input
	for _, stage := range stages {
		switch stage.Type {
		case types.StageFilter:
			var err error
			result, err = ev.evalFilter(ctx, stage.Expr, result, env)
			if err != nil {
				return nil, err
			}
		case types.StageIndex:
			items, _ := arrayItems(result)
			for i, item := range items {
				if t, ok := item.(tuple); ok {
					t[stage.Variable] = float64(i)
				}
			}
		}
	}
	return result, nil
}

// evalFilter applies a predicate to a sequence. A numeric predicate
// selects by index, negative indexes counting from the end; any other
// predicate keeps the items for which it is truthy, or whose index it
// lists when it evaluates to an array of numbers.
func (ev *evaluation) evalFilter(ctx context.Context, pred *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	results := emptySequence()
	tupleStream := false
	if seq, ok := input.(*types.Sequence); ok && seq.TupleStream {
		results.TupleStream = true
		tupleStream = true
	}
	items, ok := arrayItems(input)
	if !ok {
		items = []interface{}{input}
	}

	if pred.Type == types.NodeNumber {
		index := int(math.Floor(pred.Number))
		if index < 0 {
			index += len(items)
		}
		if index >= 0 && index < len(items) {
			item := items[index]
			if item != nil {
				if isArray(item) {
					return item, nil
				}
				results.Append(item)
			}
		}
		return results, nil
	}

	for index, item := range items {
		focus := item
		fenv := env
		if tupleStream {
			t := item.(tuple)
			focus = t["@"]
			fenv = frameFromTuple(env, t)
		}
		res, err := ev.eval(ctx, pred, focus, fenv)
		if err != nil {
			return nil, err
		}
		num, err := checkNumber(res)
		if err != nil {
			return nil, annotate(err, pred.Position, "")
		}
		if num {
			res = []interface{}{res}
		}
		if isArrayOfNumbers(res) {
			nums, _ := arrayItems(res)
			for _, n := range nums {
				i := int(math.Floor(n.(float64)))
				if i < 0 {
					i += len(items)
				}
				if i == index {
					results.Append(item)
				}
			}
		} else if truthy(res) {
			results.Append(item)
		}
	}
	return results, nil
}

// lookup returns the value of key in an object, or the flattened values
// of key across an array of objects.
func lookup(input interface{}, key string) interface{} {
	if items, ok := arrayItems(input); ok {
		out := emptySequence()
		for _, item := range items {
			res := lookup(item, key)
			if res == nil {
				continue
			}
			if arr, ok := arrayItems(res); ok {
				out.Append(arr...)
			} else {
				out.Append(res)
			}
		}
		return out
	}
	v, _ := objectGet(input, key)
	return v
}

// wildcard returns the values of every field of an object, flattening
// array values.
func wildcard(input interface{}) interface{} {
	results := emptySequence()
	if seq, ok := input.(*types.Sequence); ok && seq.OuterWrapper && len(seq.Items) > 0 {
		input = seq.Items[0]
	}
	var values []interface{}
	if items, ok := arrayItems(input); ok {
		values = items
	} else if isObject(input) {
		for _, k := range objectKeys(input) {
			v, _ := objectGet(input, k)
			values = append(values, v)
		}
	}
	for _, v := range values {
		if v == nil {
			continue
		}
		if isArray(v) {
			results.Items = flatten(v, results.Items)
		} else {
			results.Append(v)
		}
	}
	return results
}

// descendants returns the input and every value nested below it.
func descendants(input interface{}) interface{} {
	if input == nil {
		return nil
	}
	results := emptySequence()
	recurseDescendants(input, results)
	if len(results.Items) == 1 {
		return results.Items[0]
	}
	return results
}

func recurseDescendants(v interface{}, results *types.Sequence) {
	if items, ok := arrayItems(v); ok {
		for _, item := range items {
			recurseDescendants(item, results)
		}
		return
	}
	results.Append(v)
	for _, k := range objectKeys(v) {
		child, _ := objectGet(v, k)
		recurseDescendants(child, results)
	}
}
