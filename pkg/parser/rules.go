package parser

import (
	"github.com/sandrolain/jsonata/pkg/types"
)

type (
	nudFunc func(p *Parser, t Token) (*Node, error)
	ledFunc func(p *Parser, t Token, left *Node) (*Node, error)
)

// rule is the parse rule for one token kind.
type rule struct {
	lbp int
	nud nudFunc
	led ledFunc
}

// Binding powers.
const (
	bpBind    = 10 // :=
	bpCond    = 20 // ?  and the range operator ..
	bpOr      = 25
	bpAnd     = 30
	bpCompare = 40 // = != < <= > >= in ~> ^ ?: ??
	bpAdd     = 50 // + - &
	bpMul     = 60 // * / %
	bpBrace   = 70 // { and the operand of unary minus
	bpDot     = 75
	bpBracket = 80 // [ ( @ #
)

// rules is the operator dispatch table, keyed by operator text or by one
// of the pseudo ids (end), (name), (literal), (regex).
var rules map[string]*rule

func init() {
	rules = map[string]*rule{
		"(end)":     {},
		"(name)":    {nud: nudTerminal},
		"(literal)": {nud: nudTerminal},
		"(regex)":   {nud: nudTerminal},
		":":         {},
		";":         {},
		",":         {},
		")":         {},
		"]":         {},
		"}":         {},
	}

	infix := func(op string, bp int) {
		rules[op] = &rule{lbp: bp, led: ledBinary(bp)}
	}
	for _, op := range []string{"=", "!=", "<", "<=", ">", ">=", "in", "~>"} {
		infix(op, bpCompare)
	}
	for _, op := range []string{"+", "-", "&"} {
		infix(op, bpAdd)
	}
	for _, op := range []string{"*", "/", "%"} {
		infix(op, bpMul)
	}
	infix(".", bpDot)
	infix("..", bpCond)
	infix("and", bpAnd)
	infix("or", bpOr)

	// keyword operators may also be used as field names
	for _, op := range []string{"and", "or", "in"} {
		rules[op].nud = nudTerminal
	}

	rules["-"].nud = nudNegate
	rules["*"].nud = nudSimple(KindWildcard)
	rules["**"] = &rule{nud: nudSimple(KindDescendant)}
	rules["%"].nud = nudSimple(KindParent)

	rules["("] = &rule{lbp: bpBracket, nud: nudBlock, led: ledCall}
	rules["["] = &rule{lbp: bpBracket, nud: nudArray, led: ledFilter}
	rules["{"] = &rule{lbp: bpBrace, nud: nudObject, led: ledGroup}
	rules["^"] = &rule{lbp: bpCompare, led: ledSort}
	rules[":="] = &rule{lbp: bpBind, led: ledBind}
	rules["@"] = &rule{lbp: bpBracket, led: ledVariableBinding}
	rules["#"] = &rule{lbp: bpBracket, led: ledVariableBinding}
	rules["?"] = &rule{lbp: bpCond, led: ledCondition}
	rules["?:"] = &rule{lbp: bpCompare, led: ledElvis}
	rules["??"] = &rule{lbp: bpCompare, led: ledCoalesce}
	rules["|"] = &rule{nud: nudTransform}
}

func nudTerminal(_ *Parser, t Token) (*Node, error) {
	switch t.Type {
	case TokenString:
		return newNode(KindString, t), nil
	case TokenNumber:
		return newNode(KindNumber, t), nil
	case TokenValue:
		return newNode(KindValue, t), nil
	case TokenRegex:
		return newNode(KindRegex, t), nil
	case TokenVariable:
		return newNode(KindVariable, t), nil
	case TokenOperator:
		return newNode(KindOperator, t), nil
	default:
		return newNode(KindName, t), nil
	}
}

func nudSimple(kind Kind) nudFunc {
	return func(_ *Parser, t Token) (*Node, error) {
		return newNode(kind, t), nil
	}
}

func nudNegate(p *Parser, t Token) (*Node, error) {
	operand, err := p.expression(bpBrace)
	if err != nil {
		return nil, err
	}
	n := newNode(KindNegate, t)
	n.Expression = operand
	return n, nil
}

func ledBinary(bp int) ledFunc {
	return func(p *Parser, t Token, left *Node) (*Node, error) {
		rhs, err := p.expression(bp)
		if err != nil {
			return nil, err
		}
		n := newNode(KindBinary, t)
		n.LHS = left
		n.RHS = rhs
		return n, nil
	}
}

// nudBlock parses a parenthesised block: (expr; expr; ...)
func nudBlock(p *Parser, t Token) (*Node, error) {
	n := newNode(KindBlock, t)
	for p.id != ")" {
		item, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		n.Expressions = append(n.Expressions, item)
		if p.id != ";" {
			break
		}
		if err := p.advance(";", false); err != nil {
			return nil, err
		}
	}
	if err := p.advance(")", true); err != nil {
		return nil, err
	}
	return n, nil
}

// ledCall parses a function invocation, a partial application or, when
// the callee is the name function (or λ), a lambda definition.
func ledCall(p *Parser, t Token, left *Node) (*Node, error) {
	n := newNode(KindFunction, t)
	n.Value = "("
	n.Procedure = left
	if p.id != ")" {
		for {
			if p.id == "?" {
				n.Kind = KindPartial
				n.Arguments = append(n.Arguments, newNode(KindOperator, p.token))
				if err := p.advance("?", false); err != nil {
					return nil, err
				}
			} else {
				arg, err := p.expression(0)
				if err != nil {
					return nil, err
				}
				n.Arguments = append(n.Arguments, arg)
			}
			if p.id != "," {
				break
			}
			if err := p.advance(",", false); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance(")", true); err != nil {
		return nil, err
	}

	if left.Kind != KindName || (left.Value != "function" && left.Value != "λ") {
		return n, nil
	}

	for i, arg := range n.Arguments {
		if arg.Kind != KindVariable {
			return nil, types.NewError(types.ErrLambdaParam, "", arg.Position).
				WithToken(arg.Value).WithValue(i + 1)
		}
	}
	n.Kind = KindLambda

	if p.id == "<" {
		sigPos := p.token.Position
		depth := 1
		sig := "<"
		for depth > 0 && p.id != "{" && p.id != "(end)" {
			if err := p.advance("", false); err != nil {
				return nil, err
			}
			switch p.id {
			case ">":
				depth--
			case "<":
				depth++
			}
			sig += p.token.Value
		}
		if err := p.advance(">", false); err != nil {
			return nil, err
		}
		signature, err := types.ParseSignature(sig)
		if err != nil {
			if serr, ok := err.(*types.Error); ok {
				serr.Position += sigPos
			}
			return nil, err
		}
		n.Signature = signature
	}

	if err := p.advance("{", false); err != nil {
		return nil, err
	}
	body, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n.Body = body
	if err := p.advance("}", true); err != nil {
		return nil, err
	}
	return n, nil
}

// nudArray parses an array constructor.
func nudArray(p *Parser, t Token) (*Node, error) {
	n := newNode(KindArray, t)
	if p.id != "]" {
		for {
			item, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			n.Expressions = append(n.Expressions, item)
			if p.id != "," {
				break
			}
			if err := p.advance(",", false); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance("]", true); err != nil {
		return nil, err
	}
	return n, nil
}

// ledFilter parses a predicate. An empty predicate marks the innermost
// step as keeping singleton arrays.
func ledFilter(p *Parser, t Token, left *Node) (*Node, error) {
	if p.id == "]" {
		step := left
		for step.Kind == KindBinary && step.Value == "[" {
			step = step.LHS
		}
		step.KeepArray = true
		if err := p.advance("]", true); err != nil {
			return nil, err
		}
		return left, nil
	}
	rhs, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n := newNode(KindBinary, t)
	n.LHS = left
	n.RHS = rhs
	if err := p.advance("]", true); err != nil {
		return nil, err
	}
	return n, nil
}

func parsePairs(p *Parser) ([]NodePair, error) {
	var pairs []NodePair
	if p.id != "}" {
		for {
			key, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			if err := p.advance(":", false); err != nil {
				return nil, err
			}
			value, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, NodePair{Key: key, Value: value})
			if p.id != "," {
				break
			}
			if err := p.advance(",", false); err != nil {
				return nil, err
			}
		}
	}
	if err := p.advance("}", true); err != nil {
		return nil, err
	}
	return pairs, nil
}

// nudObject parses an object constructor.
func nudObject(p *Parser, t Token) (*Node, error) {
	pairs, err := parsePairs(p)
	if err != nil {
		return nil, err
	}
	n := newNode(KindObject, t)
	n.Pairs = pairs
	return n, nil
}

// ledGroup parses a group-by clause: expr{key: value, ...}
func ledGroup(p *Parser, t Token, left *Node) (*Node, error) {
	pairs, err := parsePairs(p)
	if err != nil {
		return nil, err
	}
	n := newNode(KindBinary, t)
	n.LHS = left
	n.Pairs = pairs
	return n, nil
}

// ledSort parses an order-by clause: expr^(<a, >b)
func ledSort(p *Parser, t Token, left *Node) (*Node, error) {
	if err := p.advance("(", false); err != nil {
		return nil, err
	}
	n := newNode(KindBinary, t)
	n.LHS = left
	for {
		var term SortTerm
		switch p.id {
		case "<":
			if err := p.advance("<", false); err != nil {
				return nil, err
			}
		case ">":
			term.Descending = true
			if err := p.advance(">", false); err != nil {
				return nil, err
			}
		}
		expr, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		term.Expression = expr
		n.Terms = append(n.Terms, term)
		if p.id != "," {
			break
		}
		if err := p.advance(",", false); err != nil {
			return nil, err
		}
	}
	if err := p.advance(")", true); err != nil {
		return nil, err
	}
	return n, nil
}

// ledBind parses a variable assignment; := is right associative.
func ledBind(p *Parser, t Token, left *Node) (*Node, error) {
	if left.Kind != KindVariable {
		return nil, types.NewError(types.ErrBindTarget, "", left.Position).WithToken(left.Value)
	}
	rhs, err := p.expression(bpBind - 1)
	if err != nil {
		return nil, err
	}
	n := newNode(KindBinary, t)
	n.LHS = left
	n.RHS = rhs
	return n, nil
}

// ledVariableBinding parses the focus (@$v) and index (#$i) bindings.
func ledVariableBinding(p *Parser, t Token, left *Node) (*Node, error) {
	rhs, err := p.expression(bpBracket)
	if err != nil {
		return nil, err
	}
	if rhs.Kind != KindVariable {
		return nil, types.NewError(types.ErrBindingNotVariable, "", rhs.Position).WithToken(t.Value)
	}
	n := newNode(KindBinary, t)
	n.LHS = left
	n.RHS = rhs
	return n, nil
}

// ledCondition parses cond ? then : else
func ledCondition(p *Parser, t Token, left *Node) (*Node, error) {
	n := newNode(KindCondition, t)
	n.Condition = left
	then, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n.Then = then
	if p.id == ":" {
		if err := p.advance(":", false); err != nil {
			return nil, err
		}
		els, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		n.Else = els
	}
	return n, nil
}

// ledElvis parses a ?: b, which yields a when it is truthy.
func ledElvis(p *Parser, t Token, left *Node) (*Node, error) {
	els, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n := newNode(KindCondition, t)
	n.Condition = left
	n.Then = left
	n.Else = els
	return n, nil
}

// ledCoalesce parses a ?? b, which yields a when it exists.
func ledCoalesce(p *Parser, t Token, left *Node) (*Node, error) {
	els, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	exists := &Node{
		Kind:      KindFunction,
		Value:     "(",
		Position:  t.Position,
		Procedure: &Node{Kind: KindVariable, Value: "exists", Position: t.Position},
		Arguments: []*Node{left},
	}
	n := newNode(KindCondition, t)
	n.Condition = exists
	n.Then = left
	n.Else = els
	return n, nil
}

// nudTransform parses | pattern | update [, delete] |
func nudTransform(p *Parser, t Token) (*Node, error) {
	n := newNode(KindTransform, t)
	pattern, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n.Pattern = pattern
	if err := p.advance("|", false); err != nil {
		return nil, err
	}
	update, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	n.Update = update
	if p.id == "," {
		if err := p.advance(",", false); err != nil {
			return nil, err
		}
		del, err := p.expression(0)
		if err != nil {
			return nil, err
		}
		n.Delete = del
	}
	if err := p.advance("|", true); err != nil {
		return nil, err
	}
	return n, nil
}
