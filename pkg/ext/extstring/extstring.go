// Package extstring provides string functions that are not part of the
// standard library of the language. Register them with
// jsonata.WithFunctions or ext.WithString.
//
// Positions and lengths count characters, as $substring and $length do.
package extstring

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns every string function definition.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		StartsWith(),
		EndsWith(),
		IndexOf(),
		LastIndexOf(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Repeat(),
		Words(),
		Template(),
	}
}

// AllEntries returns All as function entries for jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// StartsWith defines $startsWith(str, prefix).
func StartsWith() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "startsWith",
		Signature: "<s-s:b>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			prefix, _ := args[1].(string)
			return strings.HasPrefix(str, prefix), nil
		},
	}
}

// EndsWith defines $endsWith(str, suffix).
func EndsWith() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "endsWith",
		Signature: "<s-s:b>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			suffix, _ := args[1].(string)
			return strings.HasSuffix(str, suffix), nil
		},
	}
}

// IndexOf defines $indexOf(str, search [, start]). It returns the
// character position of the first occurrence at or after start, or -1.
func IndexOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "indexOf",
		Signature: "<s-sn?:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			search, _ := args[1].(string)
			start := 0
			if n, ok := argAt(args, 2).(float64); ok && n > 0 {
				start = int(n)
			}
			runes := []rune(str)
			if start > len(runes) {
				return -1.0, nil
			}
			tail := string(runes[start:])
			idx := strings.Index(tail, search)
			if idx < 0 {
				return -1.0, nil
			}
			return float64(start + utf8.RuneCountInString(tail[:idx])), nil
		},
	}
}

// LastIndexOf defines $lastIndexOf(str, search).
func LastIndexOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "lastIndexOf",
		Signature: "<s-s:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			search, _ := args[1].(string)
			idx := strings.LastIndex(str, search)
			if idx < 0 {
				return -1.0, nil
			}
			return float64(utf8.RuneCountInString(str[:idx])), nil
		},
	}
}

// Capitalize defines $capitalize(str): the first character upper case,
// the rest lower case.
func Capitalize() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "capitalize",
		Signature: "<s-:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			return capitalize(str), nil
		},
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + cases.Lower(language.Und).String(s[size:])
}

// TitleCase defines $titleCase(str), upper-casing the first letter of
// every word.
func TitleCase() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "titleCase",
		Signature: "<s-:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			return cases.Title(language.Und).String(str), nil
		},
	}
}

// wordBoundary separates words at underscores, hyphens, white space and
// lower-to-upper case transitions.
var wordBoundary = regexp.MustCompile(`[_\-\s]+|([\p{Ll}\d])(\p{Lu})`)

func words(s string) []string {
	spaced := wordBoundary.ReplaceAllString(s, "$1 $2")
	return strings.Fields(spaced)
}

// CamelCase defines $camelCase(str).
func CamelCase() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "camelCase",
		Signature: "<s-:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			var b strings.Builder
			for i, w := range words(str) {
				if i == 0 {
					b.WriteString(cases.Lower(language.Und).String(w))
					continue
				}
				b.WriteString(capitalize(w))
			}
			return b.String(), nil
		},
	}
}

// SnakeCase defines $snakeCase(str).
func SnakeCase() functions.CustomFunctionDef {
	return joinedCase("snakeCase", "_")
}

// KebabCase defines $kebabCase(str).
func KebabCase() functions.CustomFunctionDef {
	return joinedCase("kebabCase", "-")
}

func joinedCase(name, sep string) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      name,
		Signature: "<s-:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			lower := cases.Lower(language.Und)
			parts := words(str)
			for i, w := range parts {
				parts[i] = lower.String(w)
			}
			return strings.Join(parts, sep), nil
		},
	}
}

// Repeat defines $repeat(str, n). A negative count yields the empty
// string.
func Repeat() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "repeat",
		Signature: "<s-n:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			n, _ := args[1].(float64)
			if n <= 0 {
				return "", nil
			}
			return strings.Repeat(str, int(n)), nil
		},
	}
}

// Words defines $words(str), splitting str at white space.
func Words() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "words",
		Signature: "<s-:a<s>>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			fields := strings.Fields(str)
			out := make([]interface{}, len(fields))
			for i, f := range fields {
				out[i] = f
			}
			return out, nil
		},
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)

// Template defines $template(str, bindings). Each {{name}} placeholder
// is replaced by the field of bindings with that name; dotted names
// reach into nested objects. Unknown placeholders are left as they are.
func Template() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "template",
		Signature: "<s-o:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			tmpl, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			bindings := args[1]
			return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
				path := placeholder.FindStringSubmatch(m)[1]
				v := bindings
				for _, key := range strings.Split(path, ".") {
					v = field(v, key)
				}
				switch t := v.(type) {
				case string:
					return t
				case float64:
					return types.FormatNumber(t)
				case bool:
					if t {
						return "true"
					}
					return "false"
				case types.Null:
					return "null"
				}
				return m
			}), nil
		},
	}
}

func field(obj interface{}, key string) interface{} {
	switch o := obj.(type) {
	case *types.OrderedObject:
		v, _ := o.Get(key)
		return v
	case map[string]interface{}:
		return o[key]
	}
	return nil
}

func argAt(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}
