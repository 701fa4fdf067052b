// Package extarray provides array functions beyond the standard library:
// slicing, set operations, windows, and keyed aggregation through a
// function argument.
package extarray

import (
	"context"
	"fmt"
	"math"

	"github.com/sandrolain/jsonata/pkg/ext/extutil"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns the array functions that take no function argument.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		First(),
		Last(),
		Take(),
		Skip(),
		Slice(),
		Flatten(),
		Chunk(),
		Union(),
		Intersection(),
		Difference(),
		SymmetricDifference(),
		ZipLongest(),
		Window(),
	}
}

// AllAdvanced returns the array functions that apply a function argument.
func AllAdvanced() []functions.AdvancedCustomFunctionDef {
	return []functions.AdvancedCustomFunctionDef{
		GroupBy(),
		CountBy(),
		SumBy(),
		MinBy(),
		MaxBy(),
		Accumulate(),
	}
}

// AllEntries returns All and AllAdvanced as function entries for
// jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	simple := All()
	adv := AllAdvanced()
	out := make([]functions.FunctionEntry, 0, len(simple)+len(adv))
	for _, f := range simple {
		out = append(out, f)
	}
	for _, f := range adv {
		out = append(out, f)
	}
	return out
}

// First defines $first(array).
func First() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "first",
		Signature: "<a:x>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			items := extutil.Items(args[0])
			if len(items) == 0 {
				return nil, nil
			}
			return items[0], nil
		},
	}
}

// Last defines $last(array).
func Last() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "last",
		Signature: "<a:x>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			items := extutil.Items(args[0])
			if len(items) == 0 {
				return nil, nil
			}
			return items[len(items)-1], nil
		},
	}
}

// Take defines $take(array, n), the first n items.
func Take() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "take",
		Signature: "<a-n:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			items := extutil.Items(args[0])
			n := clampIndex(toInt(args[1]), len(items))
			return extutil.Array(items[:n]), nil
		},
	}
}

// Skip defines $skip(array, n), everything after the first n items.
func Skip() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "skip",
		Signature: "<a-n:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			items := extutil.Items(args[0])
			n := clampIndex(toInt(args[1]), len(items))
			return extutil.Array(items[n:]), nil
		},
	}
}

// Slice defines $slice(array, start[, end]). Negative positions count
// from the end; end is exclusive.
func Slice() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "slice",
		Signature: "<a-nn?:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			items := extutil.Items(args[0])
			start := position(toInt(args[1]), len(items))
			end := len(items)
			if args[2] != nil {
				end = position(toInt(args[2]), len(items))
			}
			if start >= end {
				return nil, nil
			}
			return extutil.Array(items[start:end]), nil
		},
	}
}

// Flatten defines $flatten(array[, depth]). Without a depth nested
// arrays are flattened completely.
func Flatten() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "flatten",
		Signature: "<a-n?:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			depth := -1
			if args[1] != nil {
				depth = toInt(args[1])
			}
			return extutil.Array(flatten(nil, extutil.Items(args[0]), depth)), nil
		},
	}
}

func flatten(out, items []interface{}, depth int) []interface{} {
	for _, item := range items {
		if inner, ok := item.([]interface{}); ok && depth != 0 {
			out = flatten(out, inner, depth-1)
			continue
		}
		out = append(out, item)
	}
	return out
}

// Chunk defines $chunk(array, size), splitting array into arrays of at
// most size items.
func Chunk() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "chunk",
		Signature: "<a-n:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			size := toInt(args[1])
			if size <= 0 {
				return nil, fmt.Errorf("$chunk: size must be a positive integer")
			}
			items := extutil.Items(args[0])
			var chunks []interface{}
			for i := 0; i < len(items); i += size {
				end := i + size
				if end > len(items) {
					end = len(items)
				}
				chunks = append(chunks, items[i:end])
			}
			return extutil.Array(chunks), nil
		},
	}
}

// Window defines $window(array, size[, step]): the runs of size
// consecutive items, starting every step items (default 1).
func Window() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "window",
		Signature: "<a-nn?:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			size, step := toInt(args[1]), 1
			if args[2] != nil {
				step = toInt(args[2])
			}
			if size <= 0 || step <= 0 {
				return nil, fmt.Errorf("$window: size and step must be positive")
			}
			items := extutil.Items(args[0])
			var out []interface{}
			for i := 0; i+size <= len(items); i += step {
				out = append(out, items[i:i+size])
			}
			return extutil.Array(out), nil
		},
	}
}

// Union defines $union(a, b): the distinct items of both arrays.
func Union() functions.CustomFunctionDef {
	return setOp("union", func(inA, inB bool) bool { return inA || inB })
}

// Intersection defines $intersection(a, b): the distinct items of a that
// are also in b.
func Intersection() functions.CustomFunctionDef {
	return setOp("intersection", func(inA, inB bool) bool { return inA && inB })
}

// Difference defines $difference(a, b): the distinct items of a that are
// not in b.
func Difference() functions.CustomFunctionDef {
	return setOp("difference", func(inA, inB bool) bool { return inA && !inB })
}

// SymmetricDifference defines $symmetricDifference(a, b): the distinct
// items in exactly one of the arrays.
func SymmetricDifference() functions.CustomFunctionDef {
	return setOp("symmetricDifference", func(inA, inB bool) bool { return inA != inB })
}

// setOp builds a set operation. Items compare by value and keep the
// order in which they first appear in a, then b.
func setOp(name string, keep func(inA, inB bool) bool) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      name,
		Signature: "<aa:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			a, b := extutil.Items(args[0]), extutil.Items(args[1])
			inA := keys(a)
			inB := keys(b)
			seen := make(map[string]bool)
			var out []interface{}
			for _, item := range append(append([]interface{}(nil), a...), b...) {
				k := extutil.Key(item)
				if seen[k] || !keep(inA[k], inB[k]) {
					continue
				}
				seen[k] = true
				out = append(out, item)
			}
			return extutil.Array(out), nil
		},
	}
}

func keys(items []interface{}) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[extutil.Key(item)] = true
	}
	return set
}

// ZipLongest defines $zipLongest(a, b[, fill]). Unlike $zip it runs to
// the end of the longer array, padding the shorter one with fill, or
// null when there is none.
func ZipLongest() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "zipLongest",
		Signature: "<aax?:a>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			a, b := extutil.Items(args[0]), extutil.Items(args[1])
			var fill interface{} = types.NullValue
			if args[2] != nil {
				fill = args[2]
			}
			n := len(a)
			if len(b) > n {
				n = len(b)
			}
			out := make([]interface{}, n)
			for i := range out {
				x, y := fill, fill
				if i < len(a) {
					x = a[i]
				}
				if i < len(b) {
					y = b[i]
				}
				out[i] = []interface{}{x, y}
			}
			return extutil.Array(out), nil
		},
	}
}

// GroupBy defines $groupBy(array, fn), an object from each key fn
// returns to the items it returned it for. Keys keep the order of their
// first item.
func GroupBy() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "groupBy",
		Signature: "<af:o>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			out := types.NewOrderedObject()
			err := eachKey(ctx, caller, "groupBy", args, func(key string, item interface{}) {
				group, _ := out.Get(key)
				items, _ := group.([]interface{})
				out.Set(key, append(items, item))
			})
			return out, err
		},
	}
}

// CountBy defines $countBy(array, fn), an object from each key fn
// returns to the number of items it returned it for.
func CountBy() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "countBy",
		Signature: "<af:o>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			out := types.NewOrderedObject()
			err := eachKey(ctx, caller, "countBy", args, func(key string, _ interface{}) {
				n, _ := out.Get(key)
				count, _ := n.(float64)
				out.Set(key, count+1)
			})
			return out, err
		},
	}
}

// eachKey calls fn on every item of args[0] and passes the result, as an
// object key, to add. Items for which fn is undefined are skipped.
func eachKey(ctx context.Context, caller functions.Caller, name string, args []interface{}, add func(string, interface{})) error {
	for _, item := range extutil.Items(args[0]) {
		key, err := caller.Call(ctx, args[1], item)
		if err != nil {
			return fmt.Errorf("$%s: %w", name, err)
		}
		key = types.Plain(key)
		if key == nil {
			continue
		}
		add(extutil.Label(key), item)
	}
	return nil
}

// SumBy defines $sumBy(array, fn), the sum of fn over the items.
func SumBy() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "sumBy",
		Signature: "<af:n>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			sum := 0.0
			err := eachNumber(ctx, caller, "sumBy", args, func(n float64, _ interface{}) {
				sum += n
			})
			return sum, err
		},
	}
}

// MinBy defines $minBy(array, fn), the first item for which fn is
// smallest.
func MinBy() functions.AdvancedCustomFunctionDef {
	return extremeBy("minBy", func(n, best float64) bool { return n < best })
}

// MaxBy defines $maxBy(array, fn), the first item for which fn is
// largest.
func MaxBy() functions.AdvancedCustomFunctionDef {
	return extremeBy("maxBy", func(n, best float64) bool { return n > best })
}

func extremeBy(name string, better func(n, best float64) bool) functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      name,
		Signature: "<af:x>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			var best interface{}
			bestN := math.NaN()
			err := eachNumber(ctx, caller, name, args, func(n float64, item interface{}) {
				if best == nil || better(n, bestN) {
					best, bestN = item, n
				}
			})
			return best, err
		},
	}
}

// eachNumber calls fn on every item of args[0]; fn must return a number.
func eachNumber(ctx context.Context, caller functions.Caller, name string, args []interface{}, add func(float64, interface{})) error {
	for _, item := range extutil.Items(args[0]) {
		v, err := caller.Call(ctx, args[1], item)
		if err != nil {
			return fmt.Errorf("$%s: %w", name, err)
		}
		n, ok := extutil.Number(types.Plain(v))
		if !ok {
			return types.NewError(types.ErrArgumentMismatch,
				fmt.Sprintf("the function passed to $%s must return a number", name), -1).WithValue(v)
		}
		add(n, item)
	}
	return nil
}

// Accumulate defines $accumulate(array, fn[, init]). It folds like
// $reduce but returns every intermediate value, starting with init, or
// with the first item when init is absent.
func Accumulate() functions.AdvancedCustomFunctionDef {
	return functions.AdvancedCustomFunctionDef{
		Name:      "accumulate",
		Signature: "<afx?:a>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			items := extutil.Items(args[0])
			acc := args[2]
			if acc == nil {
				if len(items) == 0 {
					return nil, nil
				}
				acc, items = items[0], items[1:]
			}
			out := []interface{}{acc}
			for _, item := range items {
				next, err := caller.Call(ctx, args[1], acc, item)
				if err != nil {
					return nil, fmt.Errorf("$accumulate: %w", err)
				}
				acc = types.Plain(next)
				out = append(out, acc)
			}
			return out, nil
		},
	}
}

func toInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

// clampIndex bounds n to [0, length].
func clampIndex(n, length int) int {
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}

// position resolves a possibly negative index against length.
func position(i, length int) int {
	if i < 0 {
		i += length
	}
	return clampIndex(i, length)
}
