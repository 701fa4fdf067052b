package evaluator

import (
	"context"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func fnString(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	pretty, _ := argAt(args, 1).(bool)
	return stringify(args[0], pretty)
}

// runeSlice returns the characters of s from start up to end, with the
// index rules of a JavaScript slice: negative positions count from the
// end and positions are clamped to the string.
func runeSlice(s string, start, end float64) string {
	r := []rune(s)
	n := float64(len(r))
	clamp := func(p float64) int {
		p = math.Trunc(p)
		if p < 0 {
			p += n
		}
		if p < 0 {
			p = 0
		}
		if p > n {
			p = n
		}
		return int(p)
	}
	from, to := clamp(start), clamp(end)
	if from >= to {
		return ""
	}
	return string(r[from:to])
}

func fnSubstring(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	start, _ := args[1].(float64)
	n := float64(utf8.RuneCountInString(str))
	if n+start < 0 {
		start = 0
	}
	length, ok := argAt(args, 2).(float64)
	if !ok {
		return runeSlice(str, start, n), nil
	}
	if length <= 0 {
		return "", nil
	}
	end := start + length
	if start < 0 {
		end = n + start + length
	}
	return runeSlice(str, start, end), nil
}

func fnSubstringBefore(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	chars, _ := args[1].(string)
	if i := strings.Index(str, chars); i >= 0 {
		return str[:i], nil
	}
	return str, nil
}

func fnSubstringAfter(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	chars, _ := args[1].(string)
	if i := strings.Index(str, chars); i >= 0 {
		return str[i+len(chars):], nil
	}
	return str, nil
}

func fnLowercase(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return cases.Lower(language.Und).String(str), nil
}

func fnUppercase(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return cases.Upper(language.Und).String(str), nil
}

func fnLength(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return float64(utf8.RuneCountInString(str)), nil
}

var whitespaceRun = regexp.MustCompile(`[ \t\n\r]+`)

// fnTrim collapses runs of whitespace to a single space and strips the
// ends.
func fnTrim(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	result := whitespaceRun.ReplaceAllString(str, " ")
	result = strings.TrimPrefix(result, " ")
	result = strings.TrimSuffix(result, " ")
	return result, nil
}

// fnPad pads str to the absolute value of width characters, on the right
// for a positive width and on the left for a negative one.
func fnPad(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	width, ok := args[1].(float64)
	if !ok {
		return str, nil
	}
	char, _ := argAt(args, 2).(string)
	if char == "" {
		char = " "
	}
	padLength := int(math.Abs(math.Trunc(width))) - utf8.RuneCountInString(str)
	if padLength <= 0 {
		return str, nil
	}
	padding := []rune(strings.Repeat(char, padLength))[:padLength]
	if width > 0 {
		return str + string(padding), nil
	}
	return string(padding) + str, nil
}

func fnJoin(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	items, _ := arrayItems(args[0])
	sep, _ := argAt(args, 1).(string)
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i], _ = item.(string)
	}
	return strings.Join(parts, sep), nil
}
