package evaluator

import (
	"context"
	"strconv"
	"strings"

	"github.com/sandrolain/jsonata/pkg/types"
)

// matcherOf unwraps a regular expression passed as a function argument.
func matcherOf(v interface{}) (*Matcher, bool) {
	for {
		switch f := v.(type) {
		case *Matcher:
			return f, true
		case *Closure:
			v = f.fn
		default:
			return nil, false
		}
	}
}

func notMatcher(v interface{}) error {
	return types.NewError(types.ErrArgumentMismatch, "argument 2 of function must be a regular expression", -1).WithValue(v)
}

// limitArg returns the optional limit argument at i, or -1 when absent.
func limitArg(args []interface{}, i int, code types.ErrorCode) (int, error) {
	f, ok := argAt(args, i).(float64)
	if !ok {
		return -1, nil
	}
	if f < 0 {
		return 0, types.NewError(code, "", -1).WithValue(f)
	}
	return int(f), nil
}

func fnMatch(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	m, ok := matcherOf(args[1])
	if !ok {
		return nil, notMatcher(args[1])
	}
	limit, err := limitArg(args, 2, types.ErrMatchNegativeLimit)
	if err != nil {
		return nil, err
	}
	result := emptySequence()
	if limit == 0 {
		return result, nil
	}
	found, err := m.matches(str, limit)
	if err != nil {
		return nil, err
	}
	for _, rm := range found {
		obj := types.NewOrderedObject()
		obj.Set("match", rm.match)
		obj.Set("index", float64(rm.start))
		obj.Set("groups", rm.groups)
		result.Append(obj)
	}
	return result, nil
}

func fnContains(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	if token, ok := args[1].(string); ok {
		return strings.Contains(str, token), nil
	}
	m, ok := matcherOf(args[1])
	if !ok {
		return nil, notMatcher(args[1])
	}
	return len(m.allMatches(str)) > 0, nil
}

func fnSplit(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	limit, err := limitArg(args, 2, types.ErrSplitNegativeLimit)
	if err != nil {
		return nil, err
	}
	result := []interface{}{}
	if limit == 0 {
		return result, nil
	}

	if sep, ok := args[1].(string); ok {
		for _, part := range strings.Split(str, sep) {
			if limit >= 0 && len(result) >= limit {
				break
			}
			result = append(result, part)
		}
		return result, nil
	}

	m, ok := matcherOf(args[1])
	if !ok {
		return nil, notMatcher(args[1])
	}
	found, err := m.matches(str, limit)
	if err != nil {
		return nil, err
	}
	pos := 0
	for _, rm := range found {
		result = append(result, str[pos:rm.byteFrom])
		pos = rm.byteEnd
	}
	if limit < 0 || len(found) < limit {
		result = append(result, str[pos:])
	}
	return result, nil
}

func fnReplace(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	if p, ok := args[1].(string); ok && p == "" {
		return nil, types.NewError(types.ErrReplaceEmptyPattern, "", -1).WithValue(p)
	}
	limit, err := limitArg(args, 3, types.ErrReplaceNegativeLimit)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return str, nil
	}

	if pattern, ok := args[1].(string); ok {
		replacement, _ := args[2].(string)
		if limit < 0 {
			return strings.ReplaceAll(str, pattern, replacement), nil
		}
		return strings.Replace(str, pattern, replacement, limit), nil
	}

	m, ok := matcherOf(args[1])
	if !ok {
		return nil, notMatcher(args[1])
	}
	found, err := m.matches(str, limit)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return str, nil
	}

	var b strings.Builder
	pos := 0
	for _, rm := range found {
		b.WriteString(str[pos:rm.byteFrom])
		var replaced interface{}
		switch r := args[2].(type) {
		case string:
			replaced = substitute(r, rm)
		case Function:
			obj := types.NewOrderedObject()
			obj.Set("match", rm.match)
			obj.Set("start", float64(rm.start))
			obj.Set("end", float64(rm.end))
			obj.Set("groups", rm.groups)
			replaced, err = call.Apply(ctx, r, obj)
			if err != nil {
				return nil, err
			}
		}
		s, ok := replaced.(string)
		if !ok {
			return nil, types.NewError(types.ErrReplacementNotString, "", -1).WithValue(replaced)
		}
		b.WriteString(s)
		pos = rm.byteEnd
	}
	b.WriteString(str[pos:])
	return b.String(), nil
}

// substitute expands a replacement string: $0 is the whole match, $n the
// n-th group and $$ a literal dollar. A group number is read greedily but
// only as far as the number of groups allows.
func substitute(replacement string, rm regexMatch) string {
	var b strings.Builder
	groups := len(rm.groups)
	pos := 0
	for {
		i := strings.IndexByte(replacement[pos:], '$')
		if i < 0 {
			break
		}
		b.WriteString(replacement[pos : pos+i])
		pos += i + 1
		if pos >= len(replacement) {
			b.WriteByte('$')
			break
		}
		switch replacement[pos] {
		case '$':
			b.WriteByte('$')
			pos++
			continue
		case '0':
			b.WriteString(rm.match)
			pos++
			continue
		}
		maxDigits := len(strconv.Itoa(groups))
		if groups == 0 {
			maxDigits = 1
		}
		index, digits := leadingInt(replacement[pos:], maxDigits)
		if maxDigits > 1 && index > groups {
			index, digits = leadingInt(replacement[pos:], maxDigits-1)
		}
		if digits == 0 {
			b.WriteByte('$')
			continue
		}
		if index >= 1 && index <= groups {
			if g, ok := rm.groups[index-1].(string); ok {
				b.WriteString(g)
			}
		}
		pos += digits
	}
	b.WriteString(replacement[pos:])
	return b.String()
}

// leadingInt parses up to max leading decimal digits of s.
func leadingInt(s string, max int) (int, int) {
	n, digits := 0, 0
	for digits < max && digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	return n, digits
}
