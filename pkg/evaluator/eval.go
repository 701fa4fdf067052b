package evaluator

import (
	"context"
	"errors"

	"github.com/sandrolain/jsonata/pkg/types"
)

// eval evaluates node against input in env.
//
// After the node itself, its predicates and group-by clause are applied.
// A result sequence is then unwrapped: an empty sequence is undefined and
// a singleton is its only item, unless the node asked to keep arrays.
func (ev *evaluation) eval(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if ev.debug() {
		ev.e.logger.Debug("evaluate", "type", node.Type, "position", node.Position)
	}

	var result interface{}
	var err error

	switch node.Type {
	case types.NodePath:
		result, err = ev.evalPath(ctx, node, input, env)
	case types.NodeBinary:
		result, err = ev.evalBinary(ctx, node, input, env)
	case types.NodeUnary:
		result, err = ev.evalNegate(ctx, node, input, env)
	case types.NodeName:
		result = lookup(input, node.Value)
	case types.NodeString:
		result = node.Value
	case types.NodeNumber:
		result = node.Number
	case types.NodeValue:
		result = node.Literal
	case types.NodeWildcard:
		result = wildcard(input)
	case types.NodeDescendant:
		result = descendants(input)
	case types.NodeParent:
		result, _ = env.Lookup(node.Slot.Label)
	case types.NodeCondition:
		result, err = ev.evalCondition(ctx, node, input, env)
	case types.NodeBlock:
		result, err = ev.evalBlock(ctx, node, input, env)
	case types.NodeBind:
		result, err = ev.evalBind(ctx, node, input, env)
	case types.NodeRegex:
		result = &Matcher{re: node.Regex, source: node.Value, position: node.Position}
	case types.NodeFunction:
		result, err = ev.evalFunction(ctx, node, input, env, nil)
	case types.NodeVariable:
		result = evalVariable(node, input, env)
	case types.NodeLambda:
		result = evalLambda(node, input, env)
	case types.NodePartial:
		result, err = ev.evalPartial(ctx, node, input, env)
	case types.NodeApply:
		result, err = ev.evalApply(ctx, node, input, env)
	case types.NodeTransform:
		result = evalTransform(node, env)
	case types.NodeArray:
		result, err = ev.evalArray(ctx, node, input, env)
	case types.NodeObject:
		result, err = ev.evalGroup(ctx, node.Pairs, node.Position, input, env)
	case types.NodeSort:
		result, err = ev.evalSort(ctx, node, &types.Sequence{Items: toItems(input)}, env)
	case types.NodePlaceholder:
		err = types.NewError(types.ErrSyntaxError, "placeholder outside of a partial application", node.Position).WithToken("?")
	default:
		err = types.NewError(types.ErrSyntaxError, "unknown node type", node.Position).WithToken(string(node.Type))
	}
	if err != nil {
		return nil, err
	}

	if len(node.Predicate) > 0 || (node.Group != nil && node.Type != types.NodePath) {
		if tc, ok := result.(*tailCall); ok {
			result, err = ev.evalFunction(ctx, tc.node, tc.input, tc.env, nil)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, stage := range node.Predicate {
		result, err = ev.evalFilter(ctx, stage.Expr, result, env)
		if err != nil {
			return nil, err
		}
	}

	if node.Type != types.NodePath && node.Group != nil {
		result, err = ev.evalGroup(ctx, node.Group.Pairs, node.Group.Position, result, env)
		if err != nil {
			return nil, err
		}
	}

	if seq, ok := result.(*types.Sequence); ok && seq.IsSequence() && !seq.TupleStream {
		if node.KeepArray {
			seq.KeepSingleton = true
		}
		switch len(seq.Items) {
		case 0:
			result = nil
		case 1:
			if !seq.KeepSingleton {
				result = seq.Items[0]
			}
		}
	}
	return result, nil
}

func evalVariable(node *types.ASTNode, input interface{}, env *Frame) interface{} {
	if node.Value == "" {
		if seq, ok := input.(*types.Sequence); ok && seq.OuterWrapper && len(seq.Items) > 0 {
			return seq.Items[0]
		}
		return input
	}
	v, _ := env.Lookup(node.Value)
	return v
}

func (ev *evaluation) evalCondition(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	cond, err := ev.eval(ctx, node.Condition, input, env)
	if err != nil {
		return nil, err
	}
	if truthy(cond) {
		return ev.eval(ctx, node.Then, input, env)
	}
	if node.Else != nil {
		return ev.eval(ctx, node.Else, input, env)
	}
	return nil, nil
}

// evalBlock evaluates each expression in a new frame, so bindings made
// inside the block do not leak out, and returns the last result.
func (ev *evaluation) evalBlock(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	frame := NewFrame(env)
	var result interface{}
	for _, expr := range node.Expressions {
		var err error
		result, err = ev.eval(ctx, expr, input, frame)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (ev *evaluation) evalBind(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	value, err := ev.eval(ctx, node.RHS, input, env)
	if err != nil {
		return nil, err
	}
	env.Bind(node.LHS.Value, value)
	return value, nil
}

// evalArray builds an array constructor. Items that are themselves array
// constructors are nested; any other array value is spliced in.
func (ev *evaluation) evalArray(ctx context.Context, node *types.ASTNode, input interface{}, env *Frame) (interface{}, error) {
	items := []interface{}{}
	for _, expr := range node.Expressions {
		v, err := ev.eval(ctx, expr, input, env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if expr.Type == types.NodeArray {
			items = append(items, v)
		} else {
			items = append(items, toItems(v)...)
		}
	}
	if node.ConsArray {
		return &types.Sequence{Items: items, Array: true, Cons: true}, nil
	}
	return items, nil
}

// annotate fills in the position and token of a structured error raised
// below an operator or call site.
func annotate(err error, position int, token string) error {
	var e *types.Error
	if errors.As(err, &e) {
		if e.Position < 0 {
			e.Position = position
		}
		if e.Token == "" {
			e.Token = token
		}
	}
	return err
}
