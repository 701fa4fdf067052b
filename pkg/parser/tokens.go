package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Literals
	TokenString   // "hello" or 'hello'
	TokenNumber   // 123, 3.14, 1e-10
	TokenValue    // true, false, null
	TokenName     // fieldName or `field name`
	TokenVariable // $var, $$, $
	TokenRegex    // /pattern/flags

	// TokenOperator covers punctuation and the keyword operators and, or, in.
	// The operator itself is held in Token.Value.
	TokenOperator
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(end)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenValue:
		return "(value)"
	case TokenName:
		return "(name)"
	case TokenVariable:
		return "(variable)"
	case TokenRegex:
		return "(regex)"
	case TokenOperator:
		return "(operator)"
	default:
		return "(unknown)"
	}
}

// Token is a lexical token.
type Token struct {
	Type TokenType
	// Value is the decoded string, the name, the variable name without $,
	// the regex pattern or the operator.
	Value    string
	Number   float64     // TokenNumber
	Literal  interface{} // TokenValue: bool or types.Null
	Flags    string      // TokenRegex
	Position int
}

// symbols1 lists the single-character operators. Any of them also ends a name.
var symbols1 = [...]bool{
	'.': true, '[': true, ']': true, '{': true, '}': true, '(': true, ')': true,
	',': true, '@': true, '#': true, ';': true, ':': true, '?': true, '+': true,
	'-': true, '*': true, '/': true, '%': true, '|': true, '=': true, '<': true,
	'>': true, '^': true, '&': true, '!': true, '~': true,
}

// symbols2 maps the first character of each two-character operator to the
// possible second characters.
var symbols2 = map[rune]string{
	'.': ".",
	':': "=",
	'!': "=",
	'>': "=",
	'<': "=",
	'*': "*",
	'~': ">",
	'?': ":?",
}

func isSymbol1(r rune) bool {
	return r >= 0 && int(r) < len(symbols1) && symbols1[r]
}

var keywordOperators = map[string]bool{
	"and": true,
	"or":  true,
	"in":  true,
}
