package types

import "fmt"

// ErrorCode represents a JSONata error code.
type ErrorCode string

// Error codes. The codes are stable; hosts may match on them.
const (
	// S01xx: Lexer errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrNumberOutOfRange  ErrorCode = "S0102"
	ErrUnsupportedEscape ErrorCode = "S0103"
	ErrInvalidUnicode    ErrorCode = "S0104"
	ErrNameNotClosed     ErrorCode = "S0105"
	ErrCommentNotClosed  ErrorCode = "S0106"

	// S02xx: Parser errors
	ErrSyntaxError          ErrorCode = "S0201"
	ErrExpectedToken        ErrorCode = "S0202"
	ErrExpectedBeforeEnd    ErrorCode = "S0203"
	ErrUnknownOperator      ErrorCode = "S0204"
	ErrUnexpectedEnd        ErrorCode = "S0207"
	ErrLambdaParam          ErrorCode = "S0208"
	ErrPredicateAfterGroup  ErrorCode = "S0209"
	ErrDoubleGroup          ErrorCode = "S0210"
	ErrInvalidPrefix        ErrorCode = "S0211"
	ErrBindTarget           ErrorCode = "S0212"
	ErrLiteralStep          ErrorCode = "S0213"
	ErrBindingNotVariable   ErrorCode = "S0214"
	ErrFocusAfterPredicate  ErrorCode = "S0215"
	ErrFocusAfterSort       ErrorCode = "S0216"
	ErrUnresolvedAncestor   ErrorCode = "S0217"
	ErrEmptyRegex           ErrorCode = "S0301"
	ErrRegexNotClosed       ErrorCode = "S0302"
	ErrSignatureSubtype     ErrorCode = "S0401"
	ErrSignatureChoiceParam ErrorCode = "S0402"

	// T0xxx-T2xxx: Type errors
	ErrArgumentMismatch   ErrorCode = "T0410"
	ErrContextMismatch    ErrorCode = "T0411"
	ErrArrayItemType      ErrorCode = "T0412"
	ErrGroupKeyNotString  ErrorCode = "T1003"
	ErrMissingDollar      ErrorCode = "T1005"
	ErrInvokeNonFunction  ErrorCode = "T1006"
	ErrPartialMissingFunc ErrorCode = "T1007"
	ErrPartialNonFunction ErrorCode = "T1008"
	ErrLeftNotNumber      ErrorCode = "T2001"
	ErrRightNotNumber     ErrorCode = "T2002"
	ErrRangeLeftInteger   ErrorCode = "T2003"
	ErrRangeRightInteger  ErrorCode = "T2004"
	ErrApplyNonFunction   ErrorCode = "T2006"
	ErrSortMixedTypes     ErrorCode = "T2007"
	ErrSortKeyType        ErrorCode = "T2008"
	ErrCompareMixedTypes  ErrorCode = "T2009"
	ErrCompareType        ErrorCode = "T2010"
	ErrUpdateNotObject    ErrorCode = "T2011"
	ErrDeleteNotStrings   ErrorCode = "T2012"
	ErrCloneNotFunction   ErrorCode = "T2013"

	// D1xxx-D3xxx: Dynamic errors
	ErrNumberTooLarge       ErrorCode = "D1001"
	ErrNegateNonNumber      ErrorCode = "D1002"
	ErrRegexEmptyMatch      ErrorCode = "D1004"
	ErrGroupKeyClash        ErrorCode = "D1009"
	ErrRangeTooLarge        ErrorCode = "D2014"
	ErrSerializeNonFinite   ErrorCode = "D3001"
	ErrReplaceEmptyPattern  ErrorCode = "D3010"
	ErrReplaceNegativeLimit ErrorCode = "D3011"
	ErrReplacementNotString ErrorCode = "D3012"
	ErrSplitNegativeLimit   ErrorCode = "D3020"
	ErrMatchNegativeLimit   ErrorCode = "D3040"
	ErrNumberConversion     ErrorCode = "D3030"
	ErrReduceArity          ErrorCode = "D3050"
	ErrSqrtNegative         ErrorCode = "D3060"
	ErrPowerNotRepresented  ErrorCode = "D3061"
	ErrSortNeedsComparator  ErrorCode = "D3070"
	ErrFormatBaseRadix      ErrorCode = "D3100"
	ErrEvalCompile          ErrorCode = "D3120"
	ErrEvalRuntime          ErrorCode = "D3121"
	ErrInvalidTimestamp     ErrorCode = "D3110"
	ErrUserError            ErrorCode = "D3137"
	ErrSingleMultipleMatch  ErrorCode = "D3138"
	ErrSingleNoMatch        ErrorCode = "D3139"
	ErrURIMalformed         ErrorCode = "D3140"
	ErrAssertionFailed      ErrorCode = "D3141"

	// U1xxx: Runtime limits
	ErrDepthExceeded ErrorCode = "U1001"
)

var messages = map[ErrorCode]string{
	ErrStringNotClosed:      "string literal must be terminated by a matching quote",
	ErrNumberOutOfRange:     "number out of range",
	ErrUnsupportedEscape:    "unsupported escape sequence",
	ErrInvalidUnicode:       "the escape sequence \\u must be followed by 4 hex digits",
	ErrNameNotClosed:        "quoted property name must be terminated with a backquote (`)",
	ErrCommentNotClosed:     "comment has no closing tag",
	ErrSyntaxError:          "syntax error",
	ErrExpectedToken:        "expected token",
	ErrExpectedBeforeEnd:    "expected token before end of expression",
	ErrUnknownOperator:      "unknown operator",
	ErrUnexpectedEnd:        "unexpected end of expression",
	ErrLambdaParam:          "parameter of function definition must be a variable name (start with $)",
	ErrPredicateAfterGroup:  "a predicate cannot follow a grouping expression in a step",
	ErrDoubleGroup:          "each step can only have one grouping expression",
	ErrInvalidPrefix:        "the symbol cannot be used as a unary operator",
	ErrBindTarget:           "the left side of := must be a variable name (start with $)",
	ErrLiteralStep:          "the literal value cannot be used as a step within a path expression",
	ErrBindingNotVariable:   "the right side of a positional or context binding must be a variable name",
	ErrFocusAfterPredicate:  "a context variable binding must precede any predicates on a step",
	ErrFocusAfterSort:       "a context variable binding must precede the 'order-by' clause on a step",
	ErrUnresolvedAncestor:   "the ancestor operator cannot be used here",
	ErrEmptyRegex:           "empty regular expressions are not allowed",
	ErrRegexNotClosed:       "no terminating / in regular expression",
	ErrSignatureSubtype:     "type parameters can only be applied to functions and arrays",
	ErrSignatureChoiceParam: "choice groups containing parameterized types are not supported",
	ErrArgumentMismatch:     "argument does not match function signature",
	ErrContextMismatch:      "context value is not a compatible type with the function argument",
	ErrArrayItemType:        "argument must be an array of the expected type",
	ErrGroupKeyNotString:    "key in object structure must evaluate to a string",
	ErrMissingDollar:        "attempted to invoke a non-function; did you mean a variable with a leading $?",
	ErrInvokeNonFunction:    "attempted to invoke a non-function",
	ErrPartialMissingFunc:   "attempted to partially apply a non-function; did you mean a variable with a leading $?",
	ErrPartialNonFunction:   "attempted to partially apply a non-function",
	ErrLeftNotNumber:        "the left side of the arithmetic operator must evaluate to a number",
	ErrRightNotNumber:       "the right side of the arithmetic operator must evaluate to a number",
	ErrRangeLeftInteger:     "the left side of the range operator (..) must evaluate to an integer",
	ErrRangeRightInteger:    "the right side of the range operator (..) must evaluate to an integer",
	ErrApplyNonFunction:     "the right side of the function application operator ~> must be a function",
	ErrSortMixedTypes:       "cannot sort values of different types",
	ErrSortKeyType:          "the expressions within an order-by clause must evaluate to numeric or string values",
	ErrCompareMixedTypes:    "the values on either side of the operator must be of the same data type",
	ErrCompareType:          "the expressions either side of the operator must evaluate to numeric or string values",
	ErrUpdateNotObject:      "the insert/update clause of the transform expression must evaluate to an object",
	ErrDeleteNotStrings:     "the delete clause of the transform expression must evaluate to a string or array of strings",
	ErrCloneNotFunction:     "the $clone binding must be a function",
	ErrNumberTooLarge:       "number out of range",
	ErrNegateNonNumber:      "cannot negate a non-numeric value",
	ErrRegexEmptyMatch:      "regular expression matches zero length string",
	ErrGroupKeyClash:        "multiple key definitions evaluate to same key",
	ErrRangeTooLarge:        "the size of the sequence allocated by the range operator (..) must not exceed 1e7",
	ErrSerializeNonFinite:   "attempting to invoke string function on Infinity or NaN",
	ErrReplaceEmptyPattern:  "second argument of replace function cannot be an empty string",
	ErrReplaceNegativeLimit: "fourth argument of replace function must evaluate to a positive number",
	ErrReplacementNotString: "attempted to replace a matched string with a non-string value",
	ErrSplitNegativeLimit:   "third argument of split function must evaluate to a positive number",
	ErrMatchNegativeLimit:   "third argument of match function must evaluate to a positive number",
	ErrNumberConversion:     "unable to cast value to a number",
	ErrReduceArity:          "the second argument of reduce function must be a function with at least two arguments",
	ErrSqrtNegative:         "the sqrt function cannot be applied to a negative number",
	ErrPowerNotRepresented:  "the power function has resulted in a value that cannot be represented as a JSON number",
	ErrSortNeedsComparator:  "the single argument form of the sort function can only be applied to an array of strings or an array of numbers",
	ErrFormatBaseRadix:      "the radix of the formatBase function must be between 2 and 36",
	ErrEvalCompile:          "the expression passed to $eval cannot be compiled",
	ErrEvalRuntime:          "the expression passed to $eval failed to evaluate",
	ErrInvalidTimestamp:     "unable to parse timestamp",
	ErrUserError:            "$error() function evaluated",
	ErrSingleMultipleMatch:  "the $single() function expected exactly 1 matching result; instead it matched more",
	ErrSingleNoMatch:        "the $single() function expected exactly 1 matching result; instead it matched 0",
	ErrURIMalformed:         "malformed URL",
	ErrAssertionFailed:      "$assert() statement failed",
	ErrDepthExceeded:        "stack overflow: check for non-terminating recursive function; consider rewriting as tail-recursive",
}

// Message returns the default message for an error code.
func (c ErrorCode) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return string(c)
}

// Error represents a structured JSONata error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Value    interface{}
	Err      error
}

// NewError creates a new JSONata error.
// An empty message selects the default message of the code.
func NewError(code ErrorCode, message string, position int) *Error {
	if message == "" {
		message = code.Message()
	}
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Token != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Token)
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithValue records the offending value.
func (e *Error) WithValue(v interface{}) *Error {
	e.Value = v
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
