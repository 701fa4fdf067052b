package evaluator

import (
	"context"
	"strconv"
	"sync"

	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/types"
)

var (
	chainOnce sync.Once
	chainAST  *types.ASTNode
)

// chain returns the lambda composing two functions for f ~> g.
func chain() *types.ASTNode {
	chainOnce.Do(func() {
		chainAST = compiler.MustCompile("function($f, $g) { function($x){ $g($f($x)) } }").AST()
	})
	return chainAST
}

func evalLambda(node *types.ASTNode, input interface{}, env *Frame) interface{} {
	if node.Thunk {
		return &tailCall{node: node.Body, input: input, env: env}
	}
	return &Lambda{
		Params: node.Params,
		Body:   node.Body,
		Sig:    node.Signature,
		input:  input,
		env:    env,
	}
}

func procedureName(node *types.ASTNode) string {
	if node.Type == types.NodePath && len(node.Steps) > 0 {
		return node.Steps[0].Value
	}
	return node.Value
}

// missingDollar reports whether an undefined procedure was written as a
// field name that is bound as a variable, such as sum(x) for $sum(x).
func missingDollar(proc interface{}, node *types.ASTNode, env *Frame) bool {
	if proc != nil || node.Type != types.NodePath || len(node.Steps) == 0 {
		return false
	}
	_, ok := env.Lookup(node.Steps[0].Value)
	return ok
}

// evalArgs evaluates call arguments. Function arguments are wrapped in a
// Closure over the calling frame.
func (ev *evaluation) evalArgs(ctx context.Context, nodes []*types.ASTNode, input interface{}, env *Frame, args []interface{}) ([]interface{}, error) {
	for _, node := range nodes {
		v, err := ev.eval(ctx, node, input, env)
		if err != nil {
			return nil, err
		}
		if f, ok := v.(Function); ok {
			if _, ok := f.(*Closure); !ok {
				v = &Closure{fn: f, env: env}
			}
		}
		args = append(args, v)
	}
	return args, nil
}

// evalFunction evaluates a function call. prefix holds the left side of
// a ~> application, passed as the first argument.
func (ev *evaluation) evalFunction(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame, prefix []interface{}) (interface{}, error) {
	proc, err := ev.eval(ctx, node.Procedure, input, env)
	if err != nil {
		return nil, err
	}
	name := procedureName(node.Procedure)
	if missingDollar(proc, node.Procedure, env) {
		return nil, types.NewError(types.ErrMissingDollar, "", node.Position).WithToken(name)
	}

	args := make([]interface{}, 0, len(prefix)+len(node.Arguments))
	args = append(args, prefix...)
	args, err = ev.evalArgs(ctx, node.Arguments, input, env, args)
	if err != nil {
		return nil, err
	}

	result, err := ev.apply(ctx, proc, args, input, env)
	if err != nil {
		return nil, annotate(err, node.Position, name)
	}
	return result, nil
}

// apply invokes proc and runs the trampoline: while the result is a
// pending tail call, its procedure and arguments are evaluated and applied
// in this same Go frame.
func (ev *evaluation) apply(ctx context.Context, proc interface{}, args []interface{}, input interface{}, env *Frame) (interface{}, error) {
	result, err := ev.applyInner(ctx, proc, args, input, env)
	bounces := 0
	for err == nil {
		tc, ok := result.(*tailCall)
		if !ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		bounces++
		name := procedureName(tc.node.Procedure)
		if ev.debug() {
			ev.e.logger.Debug("tail call", "proc", name, "bounces", bounces)
		}

		next, err := ev.eval(ctx, tc.node.Procedure, tc.input, tc.env)
		if err != nil {
			return nil, err
		}
		nextArgs, err := ev.evalArgs(ctx, tc.node.Arguments, tc.input, tc.env, nil)
		if err != nil {
			return nil, err
		}
		result, err = ev.applyInner(ctx, next, nextArgs, input, env)
		if err != nil {
			return nil, annotate(err, tc.node.Position, name)
		}
	}
	return result, err
}

func (ev *evaluation) applyInner(ctx context.Context, proc interface{}, args []interface{}, input interface{}, env *Frame) (interface{}, error) {
	fn, ok := proc.(Function)
	if !ok {
		return nil, types.NewError(types.ErrInvokeNonFunction, "", -1).WithValue(proc)
	}
	validated, err := validateArgs(fn.Signature(), args, input)
	if err != nil {
		return nil, err
	}

	switch f := fn.(type) {
	case *Lambda:
		return ev.applyLambda(ctx, f, validated)
	case *Native:
		return f.Impl(ctx, &Call{ev: ev, Input: input, Env: env}, validated)
	case *Closure:
		return ev.apply(ctx, f.fn, validated, nil, f.env)
	case *Matcher:
		str, ok := argAt(validated, 0).(string)
		if !ok {
			return nil, nil
		}
		return f.object(str, f.allMatches(str), 0), nil
	}
	return nil, types.NewError(types.ErrInvokeNonFunction, "", -1).WithValue(proc)
}

// applyLambda binds the arguments in a new frame enclosed by the lambda's
// defining frame and evaluates the body. Nesting deeper than MaxDepth
// fails with U1001; tail calls return before the next one starts and do
// not nest.
func (ev *evaluation) applyLambda(ctx context.Context, l *Lambda, args []interface{}) (interface{}, error) {
	if max := ev.e.opts.MaxDepth; max > 0 {
		ev.depth++
		defer func() { ev.depth-- }()
		if ev.depth > max {
			return nil, types.NewError(types.ErrDepthExceeded, "", -1)
		}
	}

	env := NewFrame(l.env)
	for i, p := range l.Params {
		env.Bind(p, argAt(args, i))
	}

	if l.native != nil {
		nargs := make([]interface{}, len(l.nativeParams))
		for i, p := range l.nativeParams {
			nargs[i], _ = env.Lookup(p)
		}
		for len(nargs) > 0 && nargs[len(nargs)-1] == nil {
			nargs = nargs[:len(nargs)-1]
		}
		return ev.apply(ctx, l.native, nargs, l.input, env)
	}
	return ev.eval(ctx, l.Body, l.input, env)
}

func (ev *evaluation) evalPartial(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	args := make([]interface{}, len(node.Arguments))
	for i, arg := range node.Arguments {
		if arg.Type == types.NodePlaceholder {
			args[i] = placeholder{}
			continue
		}
		v, err := ev.eval(ctx, arg, input, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	proc, err := ev.eval(ctx, node.Procedure, input, env)
	if err != nil {
		return nil, err
	}
	name := procedureName(node.Procedure)
	if missingDollar(proc, node.Procedure, env) {
		return nil, types.NewError(types.ErrPartialMissingFunc, "", node.Position).WithToken(name)
	}

	switch f := proc.(type) {
	case *Lambda:
		return partialLambda(f, args), nil
	case Function:
		return partialNative(f, args, env), nil
	}
	return nil, types.NewError(types.ErrPartialNonFunction, "", node.Position).WithToken(name)
}

// partialLambda binds the supplied arguments and returns a lambda over
// the placeholders. The partial function carries no signature.
func partialLambda(l *Lambda, args []interface{}) *Lambda {
	env := NewFrame(l.env)
	var unbound []string
	for i, p := range l.Params {
		a := argAt(args, i)
		if _, ok := a.(placeholder); ok {
			unbound = append(unbound, p)
			continue
		}
		env.Bind(p, a)
	}
	return &Lambda{
		Params: unbound,
		Body:   l.Body,
		input:  l.input,
		env:    env,

		native:       l.native,
		nativeParams: l.nativeParams,
	}
}

// partialNative wraps a function other than a lambda in a lambda whose
// parameters stand for its arguments, then partially applies that.
func partialNative(fn Function, args []interface{}, env *Frame) *Lambda {
	n := len(args)
	if sig := fn.Signature(); sig != nil && len(sig.Params) > n {
		n = len(sig.Params)
	}
	params := make([]string, n)
	for i := range params {
		params[i] = strconv.Itoa(i)
	}
	return partialLambda(&Lambda{Params: params, native: fn, nativeParams: params, env: env}, args)
}

// evalApply evaluates lhs ~> rhs. A call on the right receives lhs as its
// first argument; a function on both sides composes them.
func (ev *evaluation) evalApply(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	lhs, err := ev.eval(ctx, node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	if node.RHS.Type == types.NodeFunction {
		return ev.evalFunction(ctx, node.RHS, input, env, []interface{}{lhs})
	}

	rhs, err := ev.eval(ctx, node.RHS, input, env)
	if err != nil {
		return nil, err
	}
	fn, ok := rhs.(Function)
	if !ok {
		return nil, types.NewError(types.ErrApplyNonFunction, "", node.Position).WithToken("~>").WithValue(rhs)
	}

	if lf, ok := lhs.(Function); ok {
		composer, err := ev.eval(ctx, chain(), nil, env)
		if err != nil {
			return nil, err
		}
		return ev.apply(ctx, composer, []interface{}{lf, fn}, nil, env)
	}
	return ev.apply(ctx, fn, []interface{}{lhs}, nil, env)
}
