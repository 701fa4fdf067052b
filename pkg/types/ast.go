package types

import "regexp"

// NodeType identifies the type of a resolved AST node.
type NodeType string

// Resolved node types. The set is closed: the evaluator dispatches on it
// exhaustively and the printer renders every one of them.
const (
	// Literals
	NodeString NodeType = "string"
	NodeNumber NodeType = "number"
	NodeValue  NodeType = "value" // true, false, null
	NodeRegex  NodeType = "regex"

	// Navigation
	NodePath       NodeType = "path"
	NodeName       NodeType = "name"
	NodeWildcard   NodeType = "wildcard"   // *
	NodeDescendant NodeType = "descendant" // **
	NodeParent     NodeType = "parent"     // %
	NodeSort       NodeType = "sort"       // ^(...) path step
	NodeVariable   NodeType = "variable"

	// Operators
	NodeBinary NodeType = "binary" // arithmetic, comparison, boolean, &, .., in
	NodeUnary  NodeType = "unary"  // numeric negation
	NodeApply  NodeType = "apply"  // ~>
	NodeBind   NodeType = "bind"   // :=

	// Constructors
	NodeArray  NodeType = "array"  // [...]
	NodeObject NodeType = "object" // {...}

	// Functions
	NodeFunction    NodeType = "function"
	NodePartial     NodeType = "partial"
	NodePlaceholder NodeType = "placeholder" // ? inside a partial application
	NodeLambda      NodeType = "lambda"

	// Control flow
	NodeCondition NodeType = "condition"
	NodeBlock     NodeType = "block"
	NodeTransform NodeType = "transform"
)

// StageType distinguishes the per-step pipeline stages.
type StageType uint8

const (
	StageFilter StageType = iota // [predicate]
	StageIndex                   // #$var bound after a predicate
)

// Stage is one entry of a step's predicate or stage list.
type Stage struct {
	Type     StageType
	Expr     *ASTNode // filter expression (StageFilter)
	Variable string   // index variable name (StageIndex)
	Position int
}

// Pair is a key/value expression pair of an object constructor or group-by.
type Pair struct {
	Key   *ASTNode
	Value *ASTNode
}

// GroupBy is the object-constructor clause attached to a step or path.
type GroupBy struct {
	Pairs    []Pair
	Position int
}

// SortTerm is one order-by term.
type SortTerm struct {
	Descending bool
	Expression *ASTNode
}

// Slot is an ancestor binding created for each % operator.
//
// Level counts the remaining steps to walk back; it reaches zero once the
// slot is attached to the step whose input it names. Label is the hidden
// variable name under which that step binds its input in tuple mode.
type Slot struct {
	Label string
	Level int
	Index int
}

// ASTNode is a node of the resolved tree produced by the compiler.
// Only the fields relevant to a node's Type are populated.
type ASTNode struct {
	Type     NodeType
	Position int

	// Value holds the operator for binary/unary/condition nodes, the name for
	// name and variable nodes and the text of string literals.
	Value   string
	Number  float64     // NodeNumber
	Literal interface{} // NodeValue: bool or Null
	Regex   *regexp.Regexp
	Flags   string // regex flags as written

	LHS         *ASTNode
	RHS         *ASTNode
	Expression  *ASTNode   // unary operand
	Expressions []*ASTNode // block items, array constructor items
	Pairs       []Pair     // object constructor

	// Paths
	Steps              []*ASTNode
	KeepSingletonArray bool

	// Functions and lambdas
	Procedure *ASTNode
	Arguments []*ASTNode
	Params    []string
	Signature *Signature
	Body      *ASTNode
	Thunk     bool // lambda wrapping a call in tail position

	// Conditions; Value is "?", "?:" or "??"
	Condition *ASTNode
	Then      *ASTNode
	Else      *ASTNode

	// Transform
	Pattern *ASTNode
	Update  *ASTNode
	Delete  *ASTNode

	// Sort step
	Terms []SortTerm

	// Step annotations
	Predicate []Stage
	Stages    []Stage
	Group     *GroupBy
	Focus     string
	Index     string
	Tuple     bool
	Ancestor  *Slot
	Slot      *Slot // NodeParent
	KeepArray bool
	ConsArray bool
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// String returns the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}

// LastStep returns the final step of a path node, or the node itself.
func (n *ASTNode) LastStep() *ASTNode {
	if n.Type == NodePath && len(n.Steps) > 0 {
		return n.Steps[len(n.Steps)-1]
	}
	return n
}
