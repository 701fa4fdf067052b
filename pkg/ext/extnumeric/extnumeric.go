// Package extnumeric provides mathematical and statistical functions.
//
// Means and variances are computed in decimal arithmetic on the shortest
// decimal form of each number, so $median([0.1, 0.2]) is 0.15 rather
// than the float64 sum's 0.15000000000000002.
package extnumeric

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cockroachdb/apd/v3"

	"github.com/sandrolain/jsonata/pkg/ext/extutil"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns every numeric function definition.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		Log(),
		Sign(),
		Trunc(),
		Clamp(),
		unary("sin", math.Sin),
		unary("cos", math.Cos),
		unary("tan", math.Tan),
		unary("asin", math.Asin),
		unary("acos", math.Acos),
		unary("atan", math.Atan),
		Atan2(),
		constant("pi", math.Pi),
		constant("e", math.E),
		Median(),
		Variance(),
		Stddev(),
		Percentile(),
		Mode(),
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

// finite rejects the NaN and infinite results that JSON cannot carry.
func finite(name string, f float64) (interface{}, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, types.NewError(types.ErrNumberTooLarge,
			fmt.Sprintf("$%s: result is not a finite number", name), -1)
	}
	return f, nil
}

func unary(name string, fn func(float64) float64) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      name,
		Signature: "<n-:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			n, ok := extutil.Number(args[0])
			if !ok {
				return nil, nil
			}
			return finite(name, fn(n))
		},
	}
}

func constant(name string, value float64) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      name,
		Signature: "<:n>",
		Fn: func(context.Context, ...interface{}) (interface{}, error) {
			return value, nil
		},
	}
}

// Log defines $log(n[, base]), the natural logarithm by default.
func Log() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "log",
		Signature: "<n-n?:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			n, ok := extutil.Number(args[0])
			if !ok {
				return nil, nil
			}
			if n <= 0 {
				return nil, fmt.Errorf("$log: argument must be positive")
			}
			if base, ok := extutil.Number(args[1]); ok {
				if base <= 0 || base == 1 {
					return nil, fmt.Errorf("$log: base must be positive and not 1")
				}
				return finite("log", math.Log(n)/math.Log(base))
			}
			return math.Log(n), nil
		},
	}
}

// Sign defines $sign(n): -1, 0 or 1.
func Sign() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "sign",
		Signature: "<n-:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			n, ok := extutil.Number(args[0])
			switch {
			case !ok:
				return nil, nil
			case n < 0:
				return -1.0, nil
			case n > 0:
				return 1.0, nil
			}
			return 0.0, nil
		},
	}
}

// Trunc defines $trunc(n), rounding toward zero.
func Trunc() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "trunc",
		Signature: "<n-:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			n, ok := extutil.Number(args[0])
			if !ok {
				return nil, nil
			}
			if t := math.Trunc(n); t != 0 {
				return t, nil
			}
			return 0.0, nil
		},
	}
}

// Clamp defines $clamp(n, min, max).
func Clamp() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "clamp",
		Signature: "<n-nn:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			n, ok := extutil.Number(args[0])
			if !ok {
				return nil, nil
			}
			lo, _ := extutil.Number(args[1])
			hi, _ := extutil.Number(args[2])
			if lo > hi {
				return nil, fmt.Errorf("$clamp: min %v is greater than max %v", lo, hi)
			}
			return math.Min(math.Max(n, lo), hi), nil
		},
	}
}

// Atan2 defines $atan2(y, x).
func Atan2() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "atan2",
		Signature: "<nn:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			y, ok1 := extutil.Number(args[0])
			x, ok2 := extutil.Number(args[1])
			if !ok1 || !ok2 {
				return nil, nil
			}
			return math.Atan2(y, x), nil
		},
	}
}

// Median defines $median(array).
func Median() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "median",
		Signature: "<a<n>:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			nums := sorted(args[0])
			if len(nums) == 0 {
				return nil, nil
			}
			mid := len(nums) / 2
			if len(nums)%2 == 1 {
				return nums[mid], nil
			}
			return mean(nums[mid-1 : mid+1])
		},
	}
}

// Variance defines $variance(array), the population variance.
func Variance() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "variance",
		Signature: "<a<n>:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			nums := numbers(args[0])
			if len(nums) == 0 {
				return nil, nil
			}
			return variance(nums, false)
		},
	}
}

// Stddev defines $stddev(array), the population standard deviation.
func Stddev() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "stddev",
		Signature: "<a<n>:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			nums := numbers(args[0])
			if len(nums) == 0 {
				return nil, nil
			}
			return variance(nums, true)
		},
	}
}

// Percentile defines $percentile(array, p) for p in [0, 100],
// interpolating linearly between the closest ranks.
func Percentile() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "percentile",
		Signature: "<a<n>n:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			p, _ := extutil.Number(args[1])
			if p < 0 || p > 100 {
				return nil, fmt.Errorf("$percentile: p must be between 0 and 100")
			}
			nums := sorted(args[0])
			if len(nums) == 0 {
				return nil, nil
			}
			rank := p / 100 * float64(len(nums)-1)
			lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
			frac := rank - float64(lo)
			return nums[lo] + (nums[hi]-nums[lo])*frac, nil
		},
	}
}

// Mode defines $mode(array): the most frequent number, or an array of
// them in order of appearance when several are equally frequent.
func Mode() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "mode",
		Signature: "<a<n>:x>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			nums := numbers(args[0])
			counts := make(map[float64]int, len(nums))
			top := 0
			for _, n := range nums {
				counts[n]++
				if counts[n] > top {
					top = counts[n]
				}
			}
			var modes []interface{}
			for _, n := range nums {
				if counts[n] == top {
					modes = append(modes, n)
					counts[n] = 0
				}
			}
			if len(modes) == 1 {
				return modes[0], nil
			}
			return extutil.Array(modes), nil
		},
	}
}

func numbers(v interface{}) []float64 {
	items := extutil.Items(v)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if n, ok := extutil.Number(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func sorted(v interface{}) []float64 {
	nums := numbers(v)
	sort.Float64s(nums)
	return nums
}

var statsContext = apd.BaseContext.WithPrecision(34)

func decimals(nums []float64) ([]apd.Decimal, error) {
	out := make([]apd.Decimal, len(nums))
	for i, n := range nums {
		if _, err := out[i].SetFloat64(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decimalMean(ds []apd.Decimal) (*apd.Decimal, error) {
	var sum, count, avg apd.Decimal
	for i := range ds {
		if _, err := statsContext.Add(&sum, &sum, &ds[i]); err != nil {
			return nil, err
		}
	}
	count.SetInt64(int64(len(ds)))
	if _, err := statsContext.Quo(&avg, &sum, &count); err != nil {
		return nil, err
	}
	return &avg, nil
}

func mean(nums []float64) (interface{}, error) {
	ds, err := decimals(nums)
	if err != nil {
		return nil, err
	}
	avg, err := decimalMean(ds)
	if err != nil {
		return nil, err
	}
	return avg.Float64()
}

// variance returns the population variance of nums, or its square root.
func variance(nums []float64, root bool) (interface{}, error) {
	ds, err := decimals(nums)
	if err != nil {
		return nil, err
	}
	avg, err := decimalMean(ds)
	if err != nil {
		return nil, err
	}
	var acc, diff, count apd.Decimal
	for i := range ds {
		if _, err := statsContext.Sub(&diff, &ds[i], avg); err != nil {
			return nil, err
		}
		if _, err := statsContext.Mul(&diff, &diff, &diff); err != nil {
			return nil, err
		}
		if _, err := statsContext.Add(&acc, &acc, &diff); err != nil {
			return nil, err
		}
	}
	count.SetInt64(int64(len(ds)))
	if _, err := statsContext.Quo(&acc, &acc, &count); err != nil {
		return nil, err
	}
	if root {
		if _, err := statsContext.Sqrt(&acc, &acc); err != nil {
			return nil, err
		}
	}
	return acc.Float64()
}
