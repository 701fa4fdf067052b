package compiler

import (
	"regexp"
	"strconv"

	"github.com/sandrolain/jsonata/pkg/parser"
	"github.com/sandrolain/jsonata/pkg/types"
)

// resolver holds the state of one resolution pass.
type resolver struct {
	labels int
	// seeking records, per resolved node, the ancestor slots raised inside
	// it that are not yet bound to a step. A key with no slots still marks
	// the node as having contained a parent reference.
	seeking map[*types.ASTNode][]*types.Slot
}

func (r *resolver) resolve(expr *parser.Node) (*types.ASTNode, error) {
	var result *types.ASTNode
	var err error

	switch expr.Kind {
	case parser.KindBinary:
		result, err = r.resolveBinary(expr)
	case parser.KindNegate:
		operand, err := r.resolve(expr.Expression)
		if err != nil {
			return nil, err
		}
		if operand.Type == types.NodeNumber {
			operand.Number = -operand.Number
			result = operand
		} else {
			result = types.NewASTNode(types.NodeUnary, expr.Position)
			result.Value = "-"
			result.Expression = operand
			r.pushAncestry(result, operand)
		}
	case parser.KindArray:
		result = types.NewASTNode(types.NodeArray, expr.Position)
		for _, item := range expr.Expressions {
			value, err := r.resolve(item)
			if err != nil {
				return nil, err
			}
			r.pushAncestry(result, value)
			result.Expressions = append(result.Expressions, value)
		}
	case parser.KindObject:
		result = types.NewASTNode(types.NodeObject, expr.Position)
		for _, pair := range expr.Pairs {
			key, err := r.resolve(pair.Key)
			if err != nil {
				return nil, err
			}
			r.pushAncestry(result, key)
			value, err := r.resolve(pair.Value)
			if err != nil {
				return nil, err
			}
			r.pushAncestry(result, value)
			result.Pairs = append(result.Pairs, types.Pair{Key: key, Value: value})
		}
	case parser.KindFunction, parser.KindPartial:
		typ := types.NodeFunction
		if expr.Kind == parser.KindPartial {
			typ = types.NodePartial
		}
		result = types.NewASTNode(typ, expr.Position)
		for _, arg := range expr.Arguments {
			a, err := r.resolve(arg)
			if err != nil {
				return nil, err
			}
			r.pushAncestry(result, a)
			result.Arguments = append(result.Arguments, a)
		}
		result.Procedure, err = r.resolve(expr.Procedure)
	case parser.KindLambda:
		result = types.NewASTNode(types.NodeLambda, expr.Position)
		for _, param := range expr.Arguments {
			result.Params = append(result.Params, param.Value)
		}
		result.Signature = expr.Signature
		body, err := r.resolve(expr.Body)
		if err != nil {
			return nil, err
		}
		result.Body = tailCallOptimize(body)
	case parser.KindCondition:
		result = types.NewASTNode(types.NodeCondition, expr.Position)
		result.Value = expr.Value
		if result.Condition, err = r.resolve(expr.Condition); err != nil {
			return nil, err
		}
		r.pushAncestry(result, result.Condition)
		if result.Then, err = r.resolve(expr.Then); err != nil {
			return nil, err
		}
		r.pushAncestry(result, result.Then)
		if expr.Else != nil {
			if result.Else, err = r.resolve(expr.Else); err != nil {
				return nil, err
			}
			r.pushAncestry(result, result.Else)
		}
	case parser.KindTransform:
		result = types.NewASTNode(types.NodeTransform, expr.Position)
		if result.Pattern, err = r.resolve(expr.Pattern); err != nil {
			return nil, err
		}
		if result.Update, err = r.resolve(expr.Update); err != nil {
			return nil, err
		}
		if expr.Delete != nil {
			result.Delete, err = r.resolve(expr.Delete)
		}
	case parser.KindBlock:
		result = types.NewASTNode(types.NodeBlock, expr.Position)
		for _, item := range expr.Expressions {
			part, err := r.resolve(item)
			if err != nil {
				return nil, err
			}
			r.pushAncestry(result, part)
			if part.ConsArray || (part.Type == types.NodePath && part.Steps[0].ConsArray) {
				result.ConsArray = true
			}
			result.Expressions = append(result.Expressions, part)
		}
	case parser.KindName:
		result = r.namePath(expr)
	case parser.KindParent:
		result = types.NewASTNode(types.NodeParent, expr.Position)
		result.Slot = &types.Slot{Label: "!" + strconv.Itoa(r.labels), Level: 1, Index: r.labels}
		r.labels++
	case parser.KindString:
		result = types.NewASTNode(types.NodeString, expr.Position)
		result.Value = expr.Value
	case parser.KindNumber:
		result = types.NewASTNode(types.NodeNumber, expr.Position)
		result.Number = expr.Number
	case parser.KindValue:
		result = types.NewASTNode(types.NodeValue, expr.Position)
		result.Literal = expr.Literal
	case parser.KindWildcard:
		result = types.NewASTNode(types.NodeWildcard, expr.Position)
	case parser.KindDescendant:
		result = types.NewASTNode(types.NodeDescendant, expr.Position)
	case parser.KindVariable:
		result = types.NewASTNode(types.NodeVariable, expr.Position)
		result.Value = expr.Value
	case parser.KindRegex:
		result = types.NewASTNode(types.NodeRegex, expr.Position)
		result.Value = expr.Value
		result.Flags = expr.Flags
		source := expr.Value
		if expr.Flags != "" {
			source = "(?" + expr.Flags + ")" + source
		}
		if result.Regex, err = regexp.Compile(source); err != nil {
			return nil, types.NewError(types.ErrSyntaxError, "invalid regular expression", expr.Position).WithCause(err)
		}
	case parser.KindOperator:
		switch expr.Value {
		case "and", "or", "in":
			// keyword used as a field name
			result = r.namePath(expr)
		case "?":
			result = types.NewASTNode(types.NodePlaceholder, expr.Position)
		default:
			return nil, types.NewError(types.ErrSyntaxError, "", expr.Position).WithToken(expr.Value)
		}
	default:
		return nil, types.NewError(types.ErrSyntaxError, "", expr.Position).WithToken(expr.Value)
	}
	if err != nil {
		return nil, err
	}

	if expr.KeepArray {
		result.KeepArray = true
	}
	return result, nil
}

// namePath wraps a field name into a single-step path.
func (r *resolver) namePath(expr *parser.Node) *types.ASTNode {
	step := types.NewASTNode(types.NodeName, expr.Position)
	step.Value = expr.Value
	step.KeepArray = expr.KeepArray
	path := types.NewASTNode(types.NodePath, expr.Position)
	path.Steps = []*types.ASTNode{step}
	path.KeepSingletonArray = expr.KeepArray
	return path
}

func (r *resolver) resolveBinary(expr *parser.Node) (*types.ASTNode, error) {
	switch expr.Value {
	case ".":
		return r.resolvePath(expr)
	case "[":
		return r.resolvePredicate(expr)
	case "{":
		return r.resolveGroup(expr)
	case "^":
		return r.resolveSort(expr)
	case ":=":
		result := types.NewASTNode(types.NodeBind, expr.Position)
		result.Value = expr.Value
		var err error
		if result.LHS, err = r.resolve(expr.LHS); err != nil {
			return nil, err
		}
		if result.RHS, err = r.resolve(expr.RHS); err != nil {
			return nil, err
		}
		r.pushAncestry(result, result.RHS)
		return result, nil
	case "@":
		return r.resolveFocus(expr)
	case "#":
		return r.resolveIndex(expr)
	case "~>":
		result := types.NewASTNode(types.NodeApply, expr.Position)
		result.Value = expr.Value
		var err error
		if result.LHS, err = r.resolve(expr.LHS); err != nil {
			return nil, err
		}
		if result.RHS, err = r.resolve(expr.RHS); err != nil {
			return nil, err
		}
		result.KeepArray = result.LHS.KeepArray || result.RHS.KeepArray
		return result, nil
	default:
		result := types.NewASTNode(types.NodeBinary, expr.Position)
		result.Value = expr.Value
		var err error
		if result.LHS, err = r.resolve(expr.LHS); err != nil {
			return nil, err
		}
		if result.RHS, err = r.resolve(expr.RHS); err != nil {
			return nil, err
		}
		r.pushAncestry(result, result.LHS)
		r.pushAncestry(result, result.RHS)
		return result, nil
	}
}

// resolvePath flattens a '.' chain into a single path of steps.
func (r *resolver) resolvePath(expr *parser.Node) (*types.ASTNode, error) {
	lstep, err := r.resolve(expr.LHS)
	if err != nil {
		return nil, err
	}
	result := lstep
	if lstep.Type != types.NodePath {
		result = types.NewASTNode(types.NodePath, lstep.Position)
		result.Steps = []*types.ASTNode{lstep}
	}
	if lstep.Type == types.NodeParent {
		r.seeking[result] = []*types.Slot{lstep.Slot}
	}

	rest, err := r.resolve(expr.RHS)
	if err != nil {
		return nil, err
	}
	if rest.Type == types.NodePath {
		result.Steps = append(result.Steps, rest.Steps...)
	} else {
		if rest.Predicate != nil {
			rest.Stages = rest.Predicate
			rest.Predicate = nil
		}
		result.Steps = append(result.Steps, rest)
	}

	for _, step := range result.Steps {
		switch step.Type {
		case types.NodeNumber:
			return nil, types.NewError(types.ErrLiteralStep, "", step.Position).WithValue(step.Number)
		case types.NodeValue:
			return nil, types.NewError(types.ErrLiteralStep, "", step.Position).WithValue(step.Literal)
		case types.NodeString:
			step.Type = types.NodeName
		}
		if step.KeepArray {
			result.KeepSingletonArray = true
		}
	}

	// array constructors at either end of a path are not flattened
	if first := result.Steps[0]; first.Type == types.NodeArray {
		first.ConsArray = true
	}
	if last := result.LastStep(); last.Type == types.NodeArray {
		last.ConsArray = true
	}

	if err := r.resolveAncestry(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *resolver) resolvePredicate(expr *parser.Node) (*types.ASTNode, error) {
	result, err := r.resolve(expr.LHS)
	if err != nil {
		return nil, err
	}
	step := result
	onPath := result.Type == types.NodePath
	if onPath {
		step = result.LastStep()
	}
	if step.Group != nil {
		return nil, types.NewError(types.ErrPredicateAfterGroup, "", expr.Position)
	}

	predicate, err := r.resolve(expr.RHS)
	if err != nil {
		return nil, err
	}
	if slots, ok := r.seeking[predicate]; ok {
		for _, slot := range slots {
			if slot.Level == 1 {
				if err := r.seekParent(step, slot); err != nil {
					return nil, err
				}
			} else {
				slot.Level--
			}
		}
		r.pushAncestry(step, predicate)
	}

	stage := types.Stage{Type: types.StageFilter, Expr: predicate, Position: expr.Position}
	if onPath {
		step.Stages = append(step.Stages, stage)
	} else {
		step.Predicate = append(step.Predicate, stage)
	}
	return result, nil
}

func (r *resolver) resolveGroup(expr *parser.Node) (*types.ASTNode, error) {
	result, err := r.resolve(expr.LHS)
	if err != nil {
		return nil, err
	}
	if result.Group != nil {
		return nil, types.NewError(types.ErrDoubleGroup, "", expr.Position)
	}
	group := &types.GroupBy{Position: expr.Position}
	for _, pair := range expr.Pairs {
		key, err := r.resolve(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := r.resolve(pair.Value)
		if err != nil {
			return nil, err
		}
		group.Pairs = append(group.Pairs, types.Pair{Key: key, Value: value})
	}
	result.Group = group
	return result, nil
}

func (r *resolver) resolveSort(expr *parser.Node) (*types.ASTNode, error) {
	result, err := r.resolve(expr.LHS)
	if err != nil {
		return nil, err
	}
	if result.Type != types.NodePath {
		path := types.NewASTNode(types.NodePath, result.Position)
		path.Steps = []*types.ASTNode{result}
		result = path
	}
	sortStep := types.NewASTNode(types.NodeSort, expr.Position)
	for _, term := range expr.Terms {
		e, err := r.resolve(term.Expression)
		if err != nil {
			return nil, err
		}
		r.pushAncestry(sortStep, e)
		sortStep.Terms = append(sortStep.Terms, types.SortTerm{Descending: term.Descending, Expression: e})
	}
	result.Steps = append(result.Steps, sortStep)
	if err := r.resolveAncestry(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *resolver) resolveFocus(expr *parser.Node) (*types.ASTNode, error) {
	result, err := r.resolve(expr.LHS)
	if err != nil {
		return nil, err
	}
	step := result.LastStep()
	if step.Stages != nil || step.Predicate != nil {
		return nil, types.NewError(types.ErrFocusAfterPredicate, "", expr.Position)
	}
	if step.Type == types.NodeSort {
		return nil, types.NewError(types.ErrFocusAfterSort, "", expr.Position)
	}
	if expr.KeepArray {
		step.KeepArray = true
	}
	step.Focus = expr.RHS.Value
	step.Tuple = true
	return result, nil
}

func (r *resolver) resolveIndex(expr *parser.Node) (*types.ASTNode, error) {
	result, err := r.resolve(expr.LHS)
	if err != nil {
		return nil, err
	}
	step := result
	if result.Type == types.NodePath {
		step = result.LastStep()
	} else {
		result = types.NewASTNode(types.NodePath, step.Position)
		result.Steps = []*types.ASTNode{step}
		if step.Predicate != nil {
			step.Stages = step.Predicate
			step.Predicate = nil
		}
	}
	if step.Stages == nil {
		step.Index = expr.RHS.Value
	} else {
		step.Stages = append(step.Stages, types.Stage{
			Type:     types.StageIndex,
			Variable: expr.RHS.Value,
			Position: expr.Position,
		})
	}
	step.Tuple = true
	return result, nil
}
