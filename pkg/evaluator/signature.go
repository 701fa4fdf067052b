package evaluator

import (
	"fmt"
	"regexp"

	"github.com/sandrolain/jsonata/pkg/types"
)

var arrayTypeNames = map[byte]string{
	'a': "arrays",
	'b': "booleans",
	'f': "functions",
	'n': "numbers",
	'o': "objects",
	's': "strings",
}

// validateArgs checks args against sig and returns the arguments the
// function receives. A missing argument of a context parameter (-) is
// replaced by input, and a non-array value passed to an array parameter
// is wrapped in a singleton array.
func validateArgs(sig *types.Signature, args []interface{}, input interface{}) ([]interface{}, error) {
	if sig == nil {
		return args, nil
	}
	supplied := make([]byte, len(args))
	for i, arg := range args {
		supplied[i] = typeSymbol(arg)
	}
	m := sig.Regex.FindStringSubmatch(string(supplied))
	if m == nil {
		return nil, signatureMismatch(sig, args, string(supplied))
	}

	out := make([]interface{}, 0, len(sig.Params))
	argIndex := 0
	for i, param := range sig.Params {
		match := m[i+1]
		if match == "" {
			if param.Context && param.ContextRegex != nil {
				if !param.ContextRegex.MatchString(string(typeSymbol(input))) {
					return nil, types.NewError(types.ErrContextMismatch,
						fmt.Sprintf("context value is not a compatible type with argument %d of function", argIndex+1), -1).WithValue(input)
				}
				out = append(out, input)
			} else {
				out = append(out, argAt(args, argIndex))
				argIndex++
			}
			continue
		}
		for j := 0; j < len(match); j++ {
			single := match[j]
			arg := argAt(args, argIndex)
			if param.Type == "a" {
				if single == 'm' {
					arg = nil
				} else {
					if param.Subtype != "" && !arrayItemsMatch(arg, single, match, param.Subtype) {
						return nil, types.NewError(types.ErrArrayItemType,
							fmt.Sprintf("argument %d of function must be an array of %s", argIndex+1, arrayTypeNames[param.Subtype[0]]), -1).WithValue(arg)
					}
					if single != 'a' {
						arg = []interface{}{arg}
					}
				}
			}
			out = append(out, arg)
			argIndex++
		}
	}
	return out, nil
}

func arrayItemsMatch(arg interface{}, single byte, match, subtype string) bool {
	if single != 'a' {
		return match == subtype
	}
	items, _ := arrayItems(arg)
	if len(items) == 0 {
		return true
	}
	itemType := typeSymbol(items[0])
	if itemType != subtype[0] {
		return false
	}
	for _, item := range items[1:] {
		if typeSymbol(item) != itemType {
			return false
		}
	}
	return true
}

// signatureMismatch finds the first argument that breaks the signature by
// matching ever longer prefixes of it.
func signatureMismatch(sig *types.Signature, args []interface{}, supplied string) error {
	partial := "^"
	goodTo := 0
	for _, p := range sig.Params {
		partial += p.Pattern
		re, err := regexp.Compile(partial)
		if err != nil {
			break
		}
		loc := re.FindStringIndex(supplied)
		if loc == nil {
			break
		}
		goodTo = loc[1]
	}
	return types.NewError(types.ErrArgumentMismatch,
		fmt.Sprintf("argument %d of function does not match function signature", goodTo+1), -1).WithValue(argAt(args, goodTo))
}

func argAt(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}
