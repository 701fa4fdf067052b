// Package ext bundles optional functions that go beyond the standard
// library of the language.
//
// The functions live in sub-packages grouped by category:
//   - extstring:   $startsWith, $endsWith, $indexOf, $camelCase, $template, ...
//   - extdatetime: $parseDate, $dateAdd, $dateDiff, $dateComponents, ...
//   - exttypes:    $isString, $isEmpty, $default, ...
//   - extfunc:     $pipe, $memoize
//   - extarray:    $first, $chunk, $union, $window, $groupBy, $sumBy, ...
//   - extobject:   $values, $pick, $omit, $deepMerge, $mapValues, ...
//   - extnumeric:  $log, $clamp, $median, $stddev, $percentile, ...
//   - extcrypto:   $uuid, $hash, $hmac
//
// Register everything at once:
//
//	result, err := jsonata.Eval(expr, data, ext.WithAll())
//
// or by category:
//
//	result, err := jsonata.Eval(expr, data, ext.WithString(), ext.WithDateTime())
//
// or a single function:
//
//	result, err := jsonata.Eval(expr, data, jsonata.WithFunctions(extstring.StartsWith()))
package ext

import (
	"sort"

	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/ext/extarray"
	"github.com/sandrolain/jsonata/pkg/ext/extcrypto"
	"github.com/sandrolain/jsonata/pkg/ext/extdatetime"
	"github.com/sandrolain/jsonata/pkg/ext/extfunc"
	"github.com/sandrolain/jsonata/pkg/ext/extnumeric"
	"github.com/sandrolain/jsonata/pkg/ext/extobject"
	"github.com/sandrolain/jsonata/pkg/ext/extstring"
	"github.com/sandrolain/jsonata/pkg/ext/exttypes"
	"github.com/sandrolain/jsonata/pkg/functions"
)

// AllEntries returns every extension function.
func AllEntries() []functions.FunctionEntry {
	var all []functions.FunctionEntry
	all = append(all, extstring.AllEntries()...)
	all = append(all, extdatetime.AllEntries()...)
	all = append(all, exttypes.AllEntries()...)
	all = append(all, extfunc.AllEntries()...)
	all = append(all, extarray.AllEntries()...)
	all = append(all, extobject.AllEntries()...)
	all = append(all, extnumeric.AllEntries()...)
	all = append(all, extcrypto.AllEntries()...)
	return all
}

// Names returns the sorted names of every extension function, without
// the leading $.
func Names() []string {
	var names []string
	for _, entry := range AllEntries() {
		switch def := entry.(type) {
		case functions.CustomFunctionDef:
			names = append(names, def.Name)
		case functions.AdvancedCustomFunctionDef:
			names = append(names, def.Name)
		}
	}
	sort.Strings(names)
	return names
}

// WithAll registers every extension function.
func WithAll() evaluator.EvalOption {
	return evaluator.WithFunctions(AllEntries()...)
}

// WithString registers the string functions.
func WithString() evaluator.EvalOption {
	return evaluator.WithFunctions(extstring.AllEntries()...)
}

// WithDateTime registers the date/time functions.
func WithDateTime() evaluator.EvalOption {
	return evaluator.WithFunctions(extdatetime.AllEntries()...)
}

// WithTypes registers the type predicates.
func WithTypes() evaluator.EvalOption {
	return evaluator.WithFunctions(exttypes.AllEntries()...)
}

// WithFunctional registers the higher-order utilities.
func WithFunctional() evaluator.EvalOption {
	return evaluator.WithFunctions(extfunc.AllEntries()...)
}

// WithArray registers the array functions.
func WithArray() evaluator.EvalOption {
	return evaluator.WithFunctions(extarray.AllEntries()...)
}

// WithObject registers the object functions.
func WithObject() evaluator.EvalOption {
	return evaluator.WithFunctions(extobject.AllEntries()...)
}

// WithNumeric registers the numeric and statistical functions.
func WithNumeric() evaluator.EvalOption {
	return evaluator.WithFunctions(extnumeric.AllEntries()...)
}

// WithCrypto registers $uuid, $hash and $hmac.
func WithCrypto() evaluator.EvalOption {
	return evaluator.WithFunctions(extcrypto.AllEntries()...)
}
