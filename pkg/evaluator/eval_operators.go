package evaluator

import (
	"context"
	"math"

	"github.com/sandrolain/jsonata/pkg/types"
)

// maxRangeSize bounds the number of items a range operator may allocate.
const maxRangeSize = 1e7

func (ev *evaluation) evalBinary(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	lhs, err := ev.eval(ctx, node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	op := node.Value

	// and/or short-circuit: the right side is only evaluated when needed
	switch op {
	case "and":
		if !truthy(lhs) {
			return false, nil
		}
		rhs, err := ev.eval(ctx, node.RHS, input, env)
		if err != nil {
			return nil, err
		}
		return truthy(rhs), nil
	case "or":
		if truthy(lhs) {
			return true, nil
		}
		rhs, err := ev.eval(ctx, node.RHS, input, env)
		if err != nil {
			return nil, err
		}
		return truthy(rhs), nil
	}

	rhs, err := ev.eval(ctx, node.RHS, input, env)
	if err != nil {
		return nil, err
	}

	var result interface{}
	switch op {
	case "+", "-", "*", "/", "%":
		result, err = arithmetic(lhs, rhs, op)
	case "=":
		result = lhs != nil && rhs != nil && deepEqual(lhs, rhs)
	case "!=":
		result = lhs != nil && rhs != nil && !deepEqual(lhs, rhs)
	case "<", "<=", ">", ">=":
		result, err = compare(lhs, rhs, op)
	case "&":
		result, err = concat(lhs, rhs)
	case "..":
		result, err = rangeOf(lhs, rhs)
	case "in":
		result = includes(lhs, rhs)
	default:
		err = types.NewError(types.ErrUnknownOperator, "", node.Position).WithToken(op)
	}
	if err != nil {
		return nil, annotate(err, node.Position, op)
	}
	return result, nil
}

func (ev *evaluation) evalNegate(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	v, err := ev.eval(ctx, node.Expression, input, env)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	num, err := checkNumber(v)
	if err != nil {
		return nil, annotate(err, node.Position, "-")
	}
	if !num {
		return nil, types.NewError(types.ErrNegateNonNumber, "", node.Position).WithToken("-").WithValue(v)
	}
	return -v.(float64), nil
}

func arithmetic(lhs, rhs interface{}, op string) (interface{}, error) {
	lnum, err := checkNumber(lhs)
	if err != nil {
		return nil, err
	}
	if lhs != nil && !lnum {
		return nil, types.NewError(types.ErrLeftNotNumber, "", -1).WithValue(lhs)
	}
	rnum, err := checkNumber(rhs)
	if err != nil {
		return nil, err
	}
	if rhs != nil && !rnum {
		return nil, types.NewError(types.ErrRightNotNumber, "", -1).WithValue(rhs)
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}

	l, r := lhs.(float64), rhs.(float64)
	var result float64
	switch op {
	case "+":
		result = l + r
	case "-":
		result = l - r
	case "*":
		result = l * r
	case "/":
		result = l / r
	case "%":
		result = math.Mod(l, r)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return nil, types.NewError(types.ErrNumberTooLarge, "", -1).WithValue(result)
	}
	return result, nil
}

func compare(lhs, rhs interface{}, op string) (interface{}, error) {
	lok := lhs == nil || isComparable(lhs)
	rok := rhs == nil || isComparable(rhs)
	if !lok || !rok {
		bad := rhs
		if !lok {
			bad = lhs
		}
		return nil, types.NewError(types.ErrCompareType, "", -1).WithValue(bad)
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}

	switch l := lhs.(type) {
	case float64:
		r, ok := rhs.(float64)
		if !ok {
			return nil, types.NewError(types.ErrCompareMixedTypes, "", -1).WithValue(lhs)
		}
		switch op {
		case "<":
			return l < r, nil
		case "<=":
			return l <= r, nil
		case ">":
			return l > r, nil
		default:
			return l >= r, nil
		}
	case string:
		r, ok := rhs.(string)
		if !ok {
			return nil, types.NewError(types.ErrCompareMixedTypes, "", -1).WithValue(lhs)
		}
		switch op {
		case "<":
			return l < r, nil
		case "<=":
			return l <= r, nil
		case ">":
			return l > r, nil
		default:
			return l >= r, nil
		}
	}
	return nil, nil
}

func isComparable(v interface{}) bool {
	switch v.(type) {
	case string, float64:
		return true
	}
	return false
}

// concat joins the string forms of both operands; undefined counts as
// the empty string.
func concat(lhs, rhs interface{}) (interface{}, error) {
	var l, r string
	var err error
	if lhs != nil {
		if l, err = stringify(lhs, false); err != nil {
			return nil, err
		}
	}
	if rhs != nil {
		if r, err = stringify(rhs, false); err != nil {
			return nil, err
		}
	}
	return l + r, nil
}

func rangeOf(lhs, rhs interface{}) (interface{}, error) {
	if lhs != nil && !isInteger(lhs) {
		return nil, types.NewError(types.ErrRangeLeftInteger, "", -1).WithValue(lhs)
	}
	if rhs != nil && !isInteger(rhs) {
		return nil, types.NewError(types.ErrRangeRightInteger, "", -1).WithValue(rhs)
	}
	if lhs == nil || rhs == nil {
		return nil, nil
	}
	l, r := lhs.(float64), rhs.(float64)
	if l > r {
		return nil, nil
	}
	size := r - l + 1
	if size > maxRangeSize {
		return nil, types.NewError(types.ErrRangeTooLarge, "", -1).WithValue(size)
	}
	items := make([]interface{}, int(size))
	for i := range items {
		items[i] = l + float64(i)
	}
	return &types.Sequence{Items: items}, nil
}

func includes(lhs, rhs interface{}) bool {
	if lhs == nil || rhs == nil {
		return false
	}
	for _, item := range toItems(rhs) {
		if deepEqual(item, lhs) {
			return true
		}
	}
	return false
}
