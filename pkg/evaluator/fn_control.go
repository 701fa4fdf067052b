package evaluator

import (
	"context"

	"github.com/sandrolain/jsonata/pkg/types"
)

func fnBoolean(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return boolean(args[0]), nil
}

func fnNot(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	return !truthy(args[0]), nil
}

func fnExists(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return args[0] != nil, nil
}

func fnError(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	msg, _ := argAt(args, 0).(string)
	return nil, types.NewError(types.ErrUserError, msg, -1)
}

func fnAssert(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if ok, _ := args[0].(bool); ok {
		return nil, nil
	}
	msg, _ := argAt(args, 1).(string)
	return nil, types.NewError(types.ErrAssertionFailed, msg, -1)
}

// fnEval compiles and evaluates an expression at run time, against focus
// when given and otherwise against the context of the call.
func fnEval(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	src, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	input := call.Input
	if focus := argAt(args, 1); focus != nil {
		input = focus
		if items, ok := focus.([]interface{}); ok {
			input = &types.Sequence{Items: []interface{}{items}, OuterWrapper: true}
		}
	}

	expr, err := call.ev.e.Compile(src)
	if err != nil {
		return nil, types.NewError(types.ErrEvalCompile, "", -1).WithValue(src).WithCause(err)
	}
	result, err := call.ev.eval(ctx, expr.AST(), input, call.Env)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, types.NewError(types.ErrEvalRuntime, "", -1).WithValue(src).WithCause(err)
	}
	return result, nil
}
