package types

import (
	"regexp"
	"strings"
)

// SignatureParam is one parameter of a parsed signature.
type SignatureParam struct {
	// Type is the type symbol (s n b l o a f j x) or a parenthesised choice.
	Type string
	// Pattern is the regular expression fragment matching the argument's
	// type symbol, including any ? or + modifier.
	Pattern string
	// Context is set for parameters marked with -: a missing argument is
	// replaced by the evaluation context when the context matches.
	Context      bool
	ContextRegex *regexp.Regexp
	// Subtype is the <...> type parameter of an a or f parameter.
	Subtype string
}

// Signature is a parsed function type signature such as <s-nn?:s>.
//
// Each argument is mapped to a one-letter type symbol; the concatenated
// symbols are matched against Regex.
type Signature struct {
	Source string
	Params []SignatureParam
	Regex  *regexp.Regexp
}

// ParseSignature parses a signature string. Error positions are offsets
// within the signature.
func ParseSignature(signature string) (*Signature, error) {
	sig := &Signature{Source: signature}
	var param SignatureParam
	prev := -1

	next := func() {
		sig.Params = append(sig.Params, param)
		prev = len(sig.Params) - 1
		param = SignatureParam{}
	}

	for pos := 1; pos < len(signature); pos++ {
		symbol := signature[pos]
		if symbol == ':' {
			// the return type is not checked
			break
		}
		switch symbol {
		case 's', 'n', 'b', 'l', 'o':
			param.Pattern = "[" + string(symbol) + "m]"
			param.Type = string(symbol)
			next()
		case 'a':
			// any value is accepted and promoted to a singleton array
			param.Pattern = "[asnblfom]"
			param.Type = "a"
			next()
		case 'f':
			param.Pattern = "f"
			param.Type = "f"
			next()
		case 'j':
			param.Pattern = "[asnblom]"
			param.Type = "j"
			next()
		case 'x':
			param.Pattern = "[asnblfom]"
			param.Type = "x"
			next()
		case '-':
			if prev >= 0 {
				p := &sig.Params[prev]
				p.Context = true
				p.ContextRegex = regexp.MustCompile(p.Pattern)
				p.Pattern += "?"
			}
		case '?', '+':
			if prev >= 0 {
				sig.Params[prev].Pattern += string(symbol)
			}
		case '(':
			end := closingBracket(signature, pos, '(', ')')
			if end < 0 {
				return nil, NewError(ErrSyntaxError, "unbalanced ( in function signature", pos)
			}
			choice := signature[pos+1 : end]
			if strings.Contains(choice, "<") {
				return nil, NewError(ErrSignatureChoiceParam, "", pos).WithValue(choice)
			}
			param.Pattern = "[" + choice + "m]"
			param.Type = "(" + choice + ")"
			pos = end
			next()
		case '<':
			if prev >= 0 && (sig.Params[prev].Type == "a" || sig.Params[prev].Type == "f") {
				end := closingBracket(signature, pos, '<', '>')
				if end < 0 {
					return nil, NewError(ErrSyntaxError, "unbalanced < in function signature", pos)
				}
				sig.Params[prev].Subtype = signature[pos+1 : end]
				pos = end
			} else {
				typ := ""
				if prev >= 0 {
					typ = sig.Params[prev].Type
				}
				return nil, NewError(ErrSignatureSubtype, "", pos).WithValue(typ)
			}
		}
	}

	var b strings.Builder
	b.WriteByte('^')
	for _, p := range sig.Params {
		b.WriteString("(" + p.Pattern + ")")
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, NewError(ErrSyntaxError, "invalid function signature", 0).WithToken(signature).WithCause(err)
	}
	sig.Regex = re
	return sig, nil
}

// Arity returns the number of parameters that are not optional.
func (s *Signature) Arity() int {
	n := 0
	for _, p := range s.Params {
		if !strings.HasSuffix(p.Pattern, "?") || p.Context {
			n++
		}
	}
	return n
}

func closingBracket(s string, start int, open, close byte) int {
	depth := 1
	for pos := start + 1; pos < len(s); pos++ {
		switch s[pos] {
		case close:
			depth--
			if depth == 0 {
				return pos
			}
		case open:
			depth++
		}
	}
	return -1
}
