package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sandrolain/jsonata/pkg/types"
)

const eof = -1

// Lexer converts a JSONata expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
//
// The allowRegex parameter determines how forward slashes are interpreted.
// Forward slashes in JSONata can be either:
//   - The start of a regular expression (when allowRegex is true)
//   - The division operator (when allowRegex is false)
//
// The parser allows regexes only where an operand is expected.
func (l *Lexer) Next(allowRegex bool) (Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return Token{}, err
	}

	ch := l.nextRune()
	if ch == eof {
		return Token{Type: TokenEOF, Position: l.length}, nil
	}

	// Handle regex vs division operator
	if allowRegex && ch == '/' {
		l.ignore()
		return l.scanRegex()
	}

	// Two-character operators first (e.g., !=, <=, ..)
	if seconds, ok := symbols2[ch]; ok {
		for _, r := range seconds {
			if l.acceptRune(r) {
				return l.operator(), nil
			}
		}
	}

	if isSymbol1(ch) {
		return l.operator(), nil
	}

	// String literals (single or double quoted)
	if ch == '"' || ch == '\'' {
		l.ignore()
		return l.scanString(ch)
	}

	// Number literals
	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	// Escaped field names (backtick quoted)
	if ch == '`' {
		l.ignore()
		return l.scanEscapedName()
	}

	// Names, variables or keywords
	l.backup()
	return l.scanName(), nil
}

// scanRegex reads a regular expression from the current position.
// The opening delimiter has already been consumed.
// Format: /pattern/flags where flags can be i and m.
func (l *Lexer) scanRegex() (Token, error) {
	depth := 0
Loop:
	for {
		switch l.nextRune() {
		case '/':
			if depth == 0 {
				break Loop
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '\\':
			// Consume escaped character
			if l.nextRune() != eof {
				break
			}
			fallthrough
		case eof:
			return Token{}, types.NewError(types.ErrRegexNotClosed, "", l.current)
		}
	}

	l.backup()
	pattern := l.input[l.start:l.current]
	position := l.start - 1
	if pattern == "" {
		return Token{}, types.NewError(types.ErrEmptyRegex, "", l.current)
	}
	l.acceptRune('/')
	l.ignore()
	l.acceptAll(isRegexFlag)
	flags := l.input[l.start:l.current]
	l.ignore()

	// JavaScript-style flags become Go inline flags, e.g. /ab+/i is (?i)ab+
	source := pattern
	if flags != "" {
		source = "(?" + flags + ")" + pattern
	}
	if _, err := regexp.Compile(source); err != nil {
		return Token{}, types.NewError(types.ErrSyntaxError, "invalid regular expression", position).
			WithToken(pattern).WithCause(err)
	}
	return Token{Type: TokenRegex, Value: pattern, Flags: flags, Position: position}, nil
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed.
func (l *Lexer) scanString(quote rune) (Token, error) {
	position := l.start - 1
	var b strings.Builder
	for {
		ch := l.nextRune()
		switch ch {
		case eof:
			return Token{}, types.NewError(types.ErrStringNotClosed, "", l.current)
		case quote:
			l.ignore()
			return Token{Type: TokenString, Value: b.String(), Position: position}, nil
		case '\\':
			esc := l.nextRune()
			switch esc {
			case eof:
				return Token{}, types.NewError(types.ErrStringNotClosed, "", l.current)
			case '"', '\\', '/':
				b.WriteRune(esc)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				r, ok := l.scanUnicodeEscape()
				if !ok {
					return Token{}, types.NewError(types.ErrInvalidUnicode, "", l.current)
				}
				b.WriteRune(r)
			default:
				return Token{}, types.NewError(types.ErrUnsupportedEscape, "", l.current).WithToken(string(esc))
			}
		default:
			b.WriteRune(ch)
		}
	}
}

// scanUnicodeEscape decodes the four hex digits after \u, joining a
// surrogate pair when a second escape follows.
func (l *Lexer) scanUnicodeEscape() (rune, bool) {
	hex4 := func(at int) (rune, bool) {
		if at+4 > l.length {
			return 0, false
		}
		v, err := strconv.ParseUint(l.input[at:at+4], 16, 32)
		if err != nil {
			return 0, false
		}
		return rune(v), true
	}
	r, ok := hex4(l.current)
	if !ok {
		return 0, false
	}
	l.current += 4
	if utf16.IsSurrogate(r) && strings.HasPrefix(l.input[l.current:], `\u`) {
		if r2, ok := hex4(l.current + 2); ok {
			if joined := utf16.DecodeRune(r, r2); joined != utf8.RuneError {
				l.current += 6
				return joined, true
			}
		}
	}
	return r, true
}

// scanNumber reads a number literal from the current position.
// Format: (0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() (Token, error) {
	// JSON does not support leading zeroes.
	// The integer part is either a single zero, or
	// a non-zero digit followed by zero or more digits.
	if !l.acceptRune('0') {
		l.accept(isNonZeroDigit)
		l.acceptAll(isDigit)
	}

	// Decimal part; a dot without digits is left for the range operator (1..5)
	mark := l.current
	if l.acceptRune('.') && !l.acceptAll(isDigit) {
		l.current = mark
	}

	// Exponent part, only when digits follow
	mark = l.current
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			l.current = mark
		}
	}

	text := l.input[l.start:l.current]
	position := l.start
	l.ignore()
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(n, 0) {
		return Token{}, types.NewError(types.ErrNumberOutOfRange, "", position).WithToken(text)
	}
	return Token{Type: TokenNumber, Value: text, Number: n, Position: position}, nil
}

// scanEscapedName reads a backtick-quoted field name.
// The opening backtick has already been consumed.
func (l *Lexer) scanEscapedName() (Token, error) {
	end := strings.IndexByte(l.input[l.current:], '`')
	if end < 0 {
		l.current = l.length
		return Token{}, types.NewError(types.ErrNameNotClosed, "", l.length)
	}
	position := l.start - 1
	name := l.input[l.current : l.current+end]
	l.current += end + 1
	l.ignore()
	return Token{Type: TokenName, Value: name, Position: position}, nil
}

// scanName reads a name, variable, or keyword from the current position.
// Names run until whitespace or an operator character.
// Variables start with $ (e.g., $var, $$).
func (l *Lexer) scanName() Token {
	for {
		ch := l.nextRune()
		if ch == eof {
			break
		}
		if isWhitespace(ch) || isSymbol1(ch) {
			l.backup()
			break
		}
	}

	text := l.input[l.start:l.current]
	t := Token{Type: TokenName, Value: text, Position: l.start}
	l.ignore()

	switch {
	case strings.HasPrefix(text, "$"):
		t.Type = TokenVariable
		t.Value = text[1:]
	case keywordOperators[text]:
		t.Type = TokenOperator
	case text == "true":
		t.Type, t.Literal = TokenValue, true
	case text == "false":
		t.Type, t.Literal = TokenValue, false
	case text == "null":
		t.Type, t.Literal = TokenValue, types.NullValue
	}
	return t
}

// Helper methods

func (l *Lexer) operator() Token {
	t := Token{
		Type:     TokenOperator,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.ignore()
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() error {
	for {
		l.acceptAll(isWhitespace)
		l.ignore()

		if !strings.HasPrefix(l.input[l.current:], "/*") {
			return nil
		}
		commentStart := l.current
		end := strings.Index(l.input[l.current+2:], "*/")
		if end < 0 {
			l.current = l.length
			return types.NewError(types.ErrCommentNotClosed, "", commentStart)
		}
		l.current += 2 + end + 2
		l.ignore()
	}
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isRegexFlag(r rune) bool {
	return r == 'i' || r == 'm'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNonZeroDigit(r rune) bool {
	return r >= '1' && r <= '9'
}
