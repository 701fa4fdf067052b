package compiler

import (
	"github.com/sandrolain/jsonata/pkg/types"
)

// pushAncestry carries the unresolved slots of value up to result.
func (r *resolver) pushAncestry(result, value *types.ASTNode) {
	slots, ok := r.seeking[value]
	if !ok && value.Type != types.NodeParent {
		return
	}
	if value.Type == types.NodeParent {
		slots = append(slots, value.Slot)
	}
	r.seeking[result] = append(r.seeking[result], slots...)
}

// seekParent walks node looking for the step that binds slot. Each name or
// wildcard step consumes one level; a nested % adds one.
func (r *resolver) seekParent(node *types.ASTNode, slot *types.Slot) error {
	switch node.Type {
	case types.NodeName, types.NodeWildcard:
		slot.Level--
		if slot.Level == 0 {
			if node.Ancestor != nil {
				// the step already binds an ancestor; share its label
				slot.Label = node.Ancestor.Label
			}
			node.Ancestor = slot
			node.Tuple = true
		}
	case types.NodeParent:
		slot.Level++
	case types.NodeBlock:
		if len(node.Expressions) > 0 {
			node.Tuple = true
			return r.seekParent(node.Expressions[len(node.Expressions)-1], slot)
		}
	case types.NodePath:
		node.Tuple = true
		index := len(node.Steps) - 1
		if err := r.seekParent(node.Steps[index], slot); err != nil {
			return err
		}
		for index--; slot.Level > 0 && index >= 0; index-- {
			if err := r.seekParent(node.Steps[index], slot); err != nil {
				return err
			}
		}
	default:
		return types.NewError(types.ErrUnresolvedAncestor, "", node.Position).WithToken(string(node.Type))
	}
	return nil
}

// resolveAncestry binds the slots raised by the last step of path to the
// preceding steps. Slots that reach past the first step stay pending on
// the path itself.
func (r *resolver) resolveAncestry(path *types.ASTNode) error {
	last := path.LastStep()
	slots := append([]*types.Slot(nil), r.seeking[last]...)
	if last.Type == types.NodeParent {
		slots = append(slots, last.Slot)
	}
	for _, slot := range slots {
		index := len(path.Steps) - 2
		for slot.Level > 0 {
			if index < 0 {
				r.seeking[path] = append(r.seeking[path], slot)
				break
			}
			step := path.Steps[index]
			index--
			// a run of focus steps shares one input
			for index >= 0 && step.Focus != "" && path.Steps[index].Focus != "" {
				step = path.Steps[index]
				index--
			}
			if err := r.seekParent(step, slot); err != nil {
				return err
			}
		}
	}
	return nil
}
