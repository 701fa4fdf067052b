package parser

import (
	"errors"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/jsonata/pkg/types"
)

func lexAll(input string, allowRegex bool) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		t, err := l.Next(allowRegex)
		if err != nil {
			return tokens, err
		}
		if t.Type == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, t)
	}
}

func errorCode(err error) types.ErrorCode {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestLexer(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		allowRegex bool
		want       []Token
	}{{
		name:  "path",
		input: "a.b",
		want: []Token{
			{Type: TokenName, Value: "a", Position: 0},
			{Type: TokenOperator, Value: ".", Position: 1},
			{Type: TokenName, Value: "b", Position: 2},
		},
	}, {
		name:  "whitespace",
		input: " \t\n\r\vabc",
		want: []Token{
			{Type: TokenName, Value: "abc", Position: 5},
		},
	}, {
		name:  "string escapes",
		input: `"hi\n\"x\""`,
		want: []Token{
			{Type: TokenString, Value: "hi\n\"x\"", Position: 0},
		},
	}, {
		name:  "single quoted",
		input: `'it' ""`,
		want: []Token{
			{Type: TokenString, Value: "it", Position: 0},
			{Type: TokenString, Value: "", Position: 5},
		},
	}, {
		name:  "unicode escape surrogate pair",
		input: `"\ud83d\ude00"`,
		want: []Token{
			{Type: TokenString, Value: "😀", Position: 0},
		},
	}, {
		name:  "variable and two char operator",
		input: "$x != 3.5e1",
		want: []Token{
			{Type: TokenVariable, Value: "x", Position: 0},
			{Type: TokenOperator, Value: "!=", Position: 3},
			{Type: TokenNumber, Value: "3.5e1", Number: 35, Position: 6},
		},
	}, {
		name:  "root and context variables",
		input: "$$ $",
		want: []Token{
			{Type: TokenVariable, Value: "$", Position: 0},
			{Type: TokenVariable, Value: "", Position: 3},
		},
	}, {
		name:  "range",
		input: "1..5",
		want: []Token{
			{Type: TokenNumber, Value: "1", Number: 1, Position: 0},
			{Type: TokenOperator, Value: "..", Position: 1},
			{Type: TokenNumber, Value: "5", Number: 5, Position: 3},
		},
	}, {
		name:  "exponent without digits",
		input: "2e",
		want: []Token{
			{Type: TokenNumber, Value: "2", Number: 2, Position: 0},
			{Type: TokenName, Value: "e", Position: 1},
		},
	}, {
		name:       "regex",
		input:      "/ab+/i",
		allowRegex: true,
		want: []Token{
			{Type: TokenRegex, Value: "ab+", Flags: "i", Position: 0},
		},
	}, {
		name:       "regex with slash in class",
		input:      `/a[/]b/`,
		allowRegex: true,
		want: []Token{
			{Type: TokenRegex, Value: "a[/]b", Position: 0},
		},
	}, {
		name:  "division",
		input: "a/b",
		want: []Token{
			{Type: TokenName, Value: "a", Position: 0},
			{Type: TokenOperator, Value: "/", Position: 1},
			{Type: TokenName, Value: "b", Position: 2},
		},
	}, {
		name:  "escaped name",
		input: "`first name`",
		want: []Token{
			{Type: TokenName, Value: "first name", Position: 0},
		},
	}, {
		name:  "keywords",
		input: "true null and",
		want: []Token{
			{Type: TokenValue, Value: "true", Literal: true, Position: 0},
			{Type: TokenValue, Value: "null", Literal: types.NullValue, Position: 5},
			{Type: TokenOperator, Value: "and", Position: 10},
		},
	}, {
		name:  "comment",
		input: "/* c */ x",
		want: []Token{
			{Type: TokenName, Value: "x", Position: 8},
		},
	}, {
		name:  "descendant and chain",
		input: "**~>?:",
		want: []Token{
			{Type: TokenOperator, Value: "**", Position: 0},
			{Type: TokenOperator, Value: "~>", Position: 2},
			{Type: TokenOperator, Value: "?:", Position: 4},
		},
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := lexAll(test.input, test.allowRegex)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.DeepEquals(got, test.want))
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input      string
		allowRegex bool
		want       types.ErrorCode
	}{
		{input: `"abc`, want: types.ErrStringNotClosed},
		{input: `"abc\`, want: types.ErrStringNotClosed},
		{input: `"\q"`, want: types.ErrUnsupportedEscape},
		{input: `"\u12"`, want: types.ErrInvalidUnicode},
		{input: "`abc", want: types.ErrNameNotClosed},
		{input: "/* x", want: types.ErrCommentNotClosed},
		{input: "1e400", want: types.ErrNumberOutOfRange},
		{input: "//", allowRegex: true, want: types.ErrEmptyRegex},
		{input: "/abc", allowRegex: true, want: types.ErrRegexNotClosed},
		{input: "/[/", allowRegex: true, want: types.ErrRegexNotClosed},
		{input: "/a(/", allowRegex: true, want: types.ErrRegexNotClosed},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := lexAll(test.input, test.allowRegex)
			qt.Assert(t, qt.IsNotNil(err))
			qt.Assert(t, qt.Equals(errorCode(err), test.want))
		})
	}
}
