package parser

import "github.com/sandrolain/jsonata/pkg/types"

// Kind identifies the shape of a raw syntax node.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindValue
	KindRegex
	KindName
	KindVariable
	KindWildcard
	KindDescendant
	KindParent
	// KindOperator is a keyword operator (and, or, in) standing where an
	// operand is expected, or the ? placeholder of a partial application.
	KindOperator
	// KindBinary covers every infix form; Value holds the operator:
	// arithmetic, comparison, boolean, &, .., in, ".", "[", "{", "^",
	// ":=", "@", "#" and "~>".
	KindBinary
	KindNegate
	KindArray
	KindObject
	KindBlock
	KindFunction
	KindPartial
	KindLambda
	KindCondition
	KindTransform
)

var kindNames = [...]string{
	KindString:     "string",
	KindNumber:     "number",
	KindValue:      "value",
	KindRegex:      "regex",
	KindName:       "name",
	KindVariable:   "variable",
	KindWildcard:   "wildcard",
	KindDescendant: "descendant",
	KindParent:     "parent",
	KindOperator:   "operator",
	KindBinary:     "binary",
	KindNegate:     "negate",
	KindArray:      "array",
	KindObject:     "object",
	KindBlock:      "block",
	KindFunction:   "function",
	KindPartial:    "partial",
	KindLambda:     "lambda",
	KindCondition:  "condition",
	KindTransform:  "transform",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// NodePair is a key/value pair of an object constructor or group-by.
type NodePair struct {
	Key   *Node
	Value *Node
}

// SortTerm is one term of an order-by clause.
type SortTerm struct {
	Descending bool
	Expression *Node
}

// Node is a raw syntax node as produced by the parser, before path
// flattening and ancestor resolution.
type Node struct {
	Kind     Kind
	Value    string
	Number   float64
	Literal  interface{}
	Flags    string
	Position int

	LHS         *Node
	RHS         *Node
	Expression  *Node      // operand of negation
	Expressions []*Node    // array items, block items
	Pairs       []NodePair // object constructor, group-by
	Terms       []SortTerm // order-by

	Procedure *Node
	Arguments []*Node
	Signature *types.Signature
	Body      *Node

	Condition *Node
	Then      *Node
	Else      *Node

	Pattern *Node
	Update  *Node
	Delete  *Node

	// KeepArray is set by an empty predicate: a[]
	KeepArray bool
}

func newNode(kind Kind, t Token) *Node {
	return &Node{
		Kind:     kind,
		Value:    t.Value,
		Number:   t.Number,
		Literal:  t.Literal,
		Flags:    t.Flags,
		Position: t.Position,
	}
}
