package types

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Format renders a resolved tree as canonical JSONata source.
//
// Compiling the output yields a tree that formats to the same text, so
// Format(Compile(Format(Compile(s)))) == Format(Compile(s)).
func Format(n *ASTNode) string {
	var p printer
	p.node(n)
	return p.String()
}

type printer struct {
	strings.Builder
}

func (p *printer) node(n *ASTNode) {
	if n == nil {
		return
	}
	switch n.Type {
	case NodePath:
		for i, step := range n.Steps {
			if i > 0 && step.Type != NodeSort {
				p.WriteByte('.')
			}
			p.node(step)
		}
		if n.KeepSingletonArray && !anyKeepArray(n.Steps) {
			p.WriteString("[]")
		}
		p.group(n.Group)
		return
	case NodeString, NodeNumber, NodeValue, NodeRegex, NodeName, NodeWildcard,
		NodeDescendant, NodeParent, NodeVariable:
		p.atom(n)
	case NodeBinary:
		p.node(n.LHS)
		p.WriteString(" " + n.Value + " ")
		p.node(n.RHS)
	case NodeUnary:
		p.WriteByte('-')
		p.node(n.Expression)
	case NodeApply:
		p.node(n.LHS)
		p.WriteString(" ~> ")
		p.node(n.RHS)
	case NodeBind:
		p.node(n.LHS)
		p.WriteString(" := ")
		p.node(n.RHS)
	case NodeArray:
		p.WriteByte('[')
		p.list(n.Expressions, ", ")
		p.WriteByte(']')
	case NodeObject:
		p.pairs(n.Pairs)
	case NodeBlock:
		p.WriteByte('(')
		p.list(n.Expressions, "; ")
		p.WriteByte(')')
	case NodeFunction, NodePartial:
		p.node(n.Procedure)
		p.WriteByte('(')
		p.list(n.Arguments, ", ")
		p.WriteByte(')')
	case NodePlaceholder:
		p.WriteByte('?')
	case NodeLambda:
		if n.Thunk {
			p.node(n.Body)
			break
		}
		p.WriteString("function(")
		for i, param := range n.Params {
			if i > 0 {
				p.WriteString(", ")
			}
			p.WriteString("$" + param)
		}
		p.WriteByte(')')
		if n.Signature != nil {
			p.WriteString(n.Signature.Source)
		}
		p.WriteString("{")
		p.node(n.Body)
		p.WriteString("}")
	case NodeCondition:
		switch n.Value {
		case "??":
			p.node(n.Condition.Arguments[0])
			p.WriteString(" ?? ")
			p.node(n.Else)
		case "?:":
			p.node(n.Condition)
			p.WriteString(" ?: ")
			p.node(n.Else)
		default:
			p.node(n.Condition)
			p.WriteString(" ? ")
			p.node(n.Then)
			if n.Else != nil {
				p.WriteString(" : ")
				p.node(n.Else)
			}
		}
	case NodeTransform:
		p.WriteString("| ")
		p.node(n.Pattern)
		p.WriteString(" | ")
		p.node(n.Update)
		if n.Delete != nil {
			p.WriteString(", ")
			p.node(n.Delete)
		}
		p.WriteString(" |")
	case NodeSort:
		p.sort(n)
	}
	p.annotations(n)
}

func (p *printer) annotations(n *ASTNode) {
	if n.Focus != "" {
		p.WriteString("@$" + n.Focus)
	}
	if n.Index != "" {
		p.WriteString("#$" + n.Index)
	}
	if n.KeepArray && n.Type != NodeApply {
		p.WriteString("[]")
	}
	p.stages(n.Predicate)
	p.stages(n.Stages)
	if n.Type != NodePath {
		p.group(n.Group)
	}
}

func (p *printer) stages(stages []Stage) {
	for _, s := range stages {
		switch s.Type {
		case StageFilter:
			p.WriteByte('[')
			p.node(s.Expr)
			p.WriteByte(']')
		case StageIndex:
			p.WriteString("#$" + s.Variable)
		}
	}
}

func (p *printer) group(g *GroupBy) {
	if g != nil {
		p.pairs(g.Pairs)
	}
}

func (p *printer) pairs(pairs []Pair) {
	p.WriteByte('{')
	for i, pair := range pairs {
		if i > 0 {
			p.WriteString(", ")
		}
		p.node(pair.Key)
		p.WriteString(": ")
		p.node(pair.Value)
	}
	p.WriteByte('}')
}

func (p *printer) sort(n *ASTNode) {
	p.WriteString("^(")
	for i, term := range n.Terms {
		if i > 0 {
			p.WriteString(", ")
		}
		if term.Descending {
			p.WriteByte('>')
		}
		p.node(term.Expression)
	}
	p.WriteByte(')')
}

func (p *printer) list(nodes []*ASTNode, sep string) {
	for i, n := range nodes {
		if i > 0 {
			p.WriteString(sep)
		}
		p.node(n)
	}
}

func (p *printer) atom(n *ASTNode) {
	switch n.Type {
	case NodeString:
		p.WriteString(QuoteString(n.Value))
	case NodeNumber:
		p.WriteString(FormatNumber(n.Number))
	case NodeValue:
		switch v := n.Literal.(type) {
		case bool:
			p.WriteString(strconv.FormatBool(v))
		default:
			p.WriteString("null")
		}
	case NodeRegex:
		p.WriteString("/" + n.Value + "/" + n.Flags)
	case NodeName:
		p.WriteString(formatName(n.Value))
	case NodeWildcard:
		p.WriteByte('*')
	case NodeDescendant:
		p.WriteString("**")
	case NodeParent:
		p.WriteByte('%')
	case NodeVariable:
		p.WriteString("$" + n.Value)
	}
}

func anyKeepArray(steps []*ASTNode) bool {
	for _, s := range steps {
		if s.KeepArray {
			return true
		}
	}
	return false
}

// formatName quotes a field name with backticks unless it lexes as a plain name.
func formatName(name string) string {
	if isPlainName(name) {
		return name
	}
	return "`" + name + "`"
}

func isPlainName(name string) bool {
	if name == "" {
		return false
	}
	switch name {
	case "true", "false", "null", "and", "or", "in", "function", "λ":
		return false
	}
	first, _ := utf8.DecodeRuneInString(name)
	if first == '$' || first == '"' || first == '\'' || first == '`' || (first >= '0' && first <= '9') {
		return false
	}
	return !strings.ContainsAny(name, ".[]{}()=<>!,;:?+-*/%|^&~@#\"'` \t\n\r\v")
}

// QuoteString renders s as a double-quoted JSON string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte("0123456789abcdef"[r>>4])
				b.WriteByte("0123456789abcdef"[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
