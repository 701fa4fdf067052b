package evaluator

import (
	"context"
	"sort"

	"github.com/sandrolain/jsonata/pkg/types"
)

// evalSort orders input by the terms of an order-by clause. The sort is
// stable; items whose key is undefined sort last.
func (ev *evaluation) evalSort(ctx context.Context, node *types.ASTNode, input *types.Sequence, env *Frame) (*types.Sequence, error) {
	items := input.Items
	if len(items) <= 1 {
		return input, nil
	}

	keys := make([][]interface{}, len(items))
	for i, item := range items {
		focus, kenv := item, env
		if input.TupleStream {
			t := item.(tuple)
			focus = t["@"]
			kenv = frameFromTuple(env, t)
		}
		keys[i] = make([]interface{}, len(node.Terms))
		for j, term := range node.Terms {
			k, err := ev.eval(ctx, term.Expression, focus, kenv)
			if err != nil {
				return nil, err
			}
			keys[i][j] = k
		}
	}

	perm := make([]int, len(items))
	for i := range perm {
		perm[i] = i
	}
	var sortErr error
	sort.SliceStable(perm, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		c, err := compareKeys(node, keys[perm[b]], keys[perm[a]])
		if err != nil {
			sortErr = err
			return false
		}
		return c > 0
	})
	if sortErr != nil {
		return nil, sortErr
	}

	sorted := make([]interface{}, len(items))
	for i, p := range perm {
		sorted[i] = items[p]
	}
	return &types.Sequence{Items: sorted, TupleStream: input.TupleStream}, nil
}

// compareKeys compares the sort keys of two items term by term. A
// positive result places a after b. An undefined key places its item
// after a defined one, whatever the direction of the term.
func compareKeys(node *types.ASTNode, a, b []interface{}) (int, error) {
	for i, term := range node.Terms {
		ka, kb := a[i], b[i]
		switch {
		case ka == nil && kb == nil:
			continue
		case ka == nil:
			return 1, nil
		case kb == nil:
			return -1, nil
		}
		if !isComparable(ka) || !isComparable(kb) {
			bad := kb
			if !isComparable(ka) {
				bad = ka
			}
			return 0, types.NewError(types.ErrSortKeyType, "", node.Position).WithValue(bad)
		}
		if typeSymbol(ka) != typeSymbol(kb) {
			return 0, types.NewError(types.ErrSortMixedTypes, "", node.Position).WithValue(ka)
		}
		if ka == kb {
			continue
		}
		comp := 1
		switch x := ka.(type) {
		case float64:
			if x < kb.(float64) {
				comp = -1
			}
		case string:
			if x < kb.(string) {
				comp = -1
			}
		}
		if term.Descending {
			comp = -comp
		}
		return comp, nil
	}
	return 0, nil
}
