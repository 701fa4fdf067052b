package evaluator

import (
	"context"

	"github.com/sandrolain/jsonata/pkg/types"
)

var transformSignature = mustSignature("<(oa):o>")

func mustSignature(src string) *types.Signature {
	sig, err := types.ParseSignature(src)
	if err != nil {
		panic(err)
	}
	return sig
}

// evalTransform returns the function of a |pattern|update,delete|
// expression. Applied to a value, it clones the value with $clone and
// updates every object the pattern selects in the copy.
func evalTransform(node *types.ASTNode, env *Frame) interface{} {
	return &Native{
		Name: "transform",
		Sig:  transformSignature,
		Impl: func(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
			obj := argAt(args, 0)
			if obj == nil {
				return nil, nil
			}
			clone, _ := env.Lookup("clone")
			cloneFn, ok := clone.(Function)
			if !ok {
				return nil, types.NewError(types.ErrCloneNotFunction, "", node.Position).WithValue(clone)
			}
			ev := call.ev
			result, err := ev.apply(ctx, cloneFn, []interface{}{obj}, nil, env)
			if err != nil {
				return nil, err
			}
			matches, err := ev.eval(ctx, node.Pattern, result, env)
			if err != nil {
				return nil, err
			}
			if matches == nil {
				return result, nil
			}
			for _, match := range toItems(matches) {
				if err := ev.transformMatch(ctx, node, match, env); err != nil {
					return nil, err
				}
			}
			return result, nil
		},
	}
}

func (ev *evaluation) transformMatch(ctx context.Context, node *types.ASTNode, match interface{}, env *Frame) error {
	update, err := ev.eval(ctx, node.Update, match, env)
	if err != nil {
		return err
	}
	if update != nil {
		if !isObject(update) {
			return types.NewError(types.ErrUpdateNotObject, "", node.Update.Position).WithValue(update)
		}
		for _, k := range objectKeys(update) {
			v, _ := objectGet(update, k)
			setField(match, k, v)
		}
	}

	if node.Delete == nil {
		return nil
	}
	deletions, err := ev.eval(ctx, node.Delete, match, env)
	if err != nil {
		return err
	}
	if deletions == nil {
		return nil
	}
	names := toItems(deletions)
	if !isArrayOfStrings(names) {
		return types.NewError(types.ErrDeleteNotStrings, "", node.Delete.Position).WithValue(deletions)
	}
	for _, name := range names {
		deleteField(match, name.(string))
	}
	return nil
}

func setField(obj interface{}, key string, value interface{}) {
	switch o := obj.(type) {
	case *types.OrderedObject:
		o.Set(key, value)
	case map[string]interface{}:
		o[key] = value
	}
}

func deleteField(obj interface{}, key string) {
	switch o := obj.(type) {
	case *types.OrderedObject:
		o.Delete(key)
	case map[string]interface{}:
		delete(o, key)
	}
}
