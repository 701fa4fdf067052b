package evaluator

import (
	"context"
)

func numbers(v interface{}) []float64 {
	items, _ := arrayItems(v)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if f, ok := item.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

func fnSum(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	total := 0.0
	for _, n := range numbers(args[0]) {
		total += n
	}
	return total, nil
}

func fnCount(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return 0.0, nil
	}
	items, _ := arrayItems(args[0])
	return float64(len(items)), nil
}

func fnMax(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	nums := numbers(args[0])
	if len(nums) == 0 {
		return nil, nil
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return max, nil
}

func fnMin(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	nums := numbers(args[0])
	if len(nums) == 0 {
		return nil, nil
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return min, nil
}

func fnAverage(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	nums := numbers(args[0])
	if len(nums) == 0 {
		return nil, nil
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums)), nil
}
