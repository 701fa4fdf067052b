package ext_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"github.com/sandrolain/jsonata"
	"github.com/sandrolain/jsonata/pkg/ext"
	"github.com/sandrolain/jsonata/pkg/ext/extstring"
	"github.com/sandrolain/jsonata/pkg/types"
)

func eval(t *testing.T, expr string, opts ...jsonata.Option) interface{} {
	t.Helper()
	result, err := jsonata.Eval(expr, nil, opts...)
	qt.Assert(t, qt.IsNil(err), qt.Commentf("evaluating %s", expr))
	return result
}

func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	qt.Assert(t, qt.IsNil(err))
	return string(b)
}

func TestExtensions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		// strings
		{`$startsWith("Hello World", "Hello")`, `true`},
		{`$startsWith("Hello World", "World")`, `false`},
		{`$endsWith("Hello World", "World")`, `true`},
		{`$indexOf("abcabc", "bc")`, `1`},
		{`$indexOf("abcabc", "bc", 2)`, `4`},
		{`$indexOf("héllo", "l")`, `2`},
		{`$indexOf("abc", "x")`, `-1`},
		{`$lastIndexOf("abcabc", "bc")`, `4`},
		{`$capitalize("hELLO world")`, `"Hello world"`},
		{`$titleCase("hello world")`, `"Hello World"`},
		{`$camelCase("hello_world")`, `"helloWorld"`},
		{`$camelCase("Hello big-World")`, `"helloBigWorld"`},
		{`$snakeCase("helloWorld")`, `"hello_world"`},
		{`$kebabCase("Hello World")`, `"hello-world"`},
		{`$repeat("ab", 3)`, `"ababab"`},
		{`$repeat("ab", -1)`, `""`},
		{`$words(" a  b ")`, `["a","b"]`},
		{`$template("Hello, {{name}}! You are {{ age }}.", {"name": "World", "age": 42})`, `"Hello, World! You are 42."`},
		{`$template("{{user.name}} {{missing}}", {"user": {"name": "Ann"}})`, `"Ann {{missing}}"`},
		{`["apple", "banana"][$startsWith("b")]`, `"banana"`},

		// dates
		{`$parseDate("2021-03-04T10:15:00Z")`, `1614852900000`},
		{`$parseDate("2021-03-04 10:15:00")`, `1614852900000`},
		{`$parseDate("03/04/2021")`, `1614816000000`},
		{`$fromMillis($dateAdd($toMillis("2021-01-15T00:00:00Z"), 1, "month"))`, `"2021-02-15T00:00:00.000Z"`},
		{`$fromMillis($dateAdd($toMillis("2021-01-15T00:00:00Z"), -90, "minute"))`, `"2021-01-14T22:30:00.000Z"`},
		{`$dateDiff($toMillis("2021-01-01T00:00:00Z"), $toMillis("2021-03-15T00:00:00Z"), "month")`, `2`},
		{`$dateDiff($toMillis("2021-01-01T00:00:00Z"), $toMillis("2021-03-15T00:00:00Z"), "day")`, `73`},
		{`$dateDiff($toMillis("2021-03-15T00:00:00Z"), $toMillis("2021-01-01T00:00:00Z"), "month")`, `-2`},
		{`$dateComponents($toMillis("2021-03-04T10:15:30.250Z"))`, `{"year":2021,"month":3,"day":4,"hour":10,"minute":15,"second":30,"millisecond":250,"weekday":4}`},
		{`$fromMillis($dateStartOf($toMillis("2021-03-04T10:15:30Z"), "month"))`, `"2021-03-01T00:00:00.000Z"`},
		{`$fromMillis($dateStartOf($toMillis("2021-03-04T10:15:30Z"), "hour"))`, `"2021-03-04T10:00:00.000Z"`},
		{`$fromMillis($dateEndOf($toMillis("2021-03-04T10:15:30Z"), "day"))`, `"2021-03-04T23:59:59.999Z"`},
		{`$fromMillis($dateEndOf($toMillis("2021-02-04T10:15:30Z"), "month"))`, `"2021-02-28T23:59:59.999Z"`},

		// types
		{`$isString("a")`, `true`},
		{`$isNumber("1")`, `false`},
		{`$isArray([1])`, `true`},
		{`$isArray(1)`, `false`},
		{`$isObject({})`, `true`},
		{`$isNull(null)`, `true`},
		{`$isFunction($sum)`, `true`},
		{`$isUndefined(missing)`, `true`},
		{`$isEmpty([])`, `true`},
		{`$isEmpty("x")`, `false`},
		{`$default(missing, 5)`, `5`},
		{`$default(null, 5)`, `5`},
		{`$default(1, 5)`, `1`},
		{`$identity("x")`, `"x"`},

		// functional
		{`$pipe("  hello  ", $trim, $uppercase)`, `"HELLO"`},
		{`$pipe(3, function($x){ $x * 2 }, function($x){ $x + 1 })`, `7`},
		{`($sq := $memoize(function($x){ $x * $x }); [$sq(3), $sq(3), $sq(4)])`, `[9,9,16]`},

		// arrays
		{`$first([1, 2, 3])`, `1`},
		{`$last([1, 2, 3])`, `3`},
		{`$first([])`, `null`},
		{`$take([1, 2, 3], 2)`, `[1,2]`},
		{`$skip([1, 2, 3], 1)`, `[2,3]`},
		{`$slice([1, 2, 3, 4, 5], 1, -1)`, `[2,3,4]`},
		{`$slice([1, 2, 3], -2)`, `[2,3]`},
		{`$flatten([1, [2, [3, [4]]]])`, `[1,2,3,4]`},
		{`$flatten([1, [2, [3]]], 1)`, `[1,2,[3]]`},
		{`$chunk([1, 2, 3, 4, 5], 2)`, `[[1,2],[3,4],[5]]`},
		{`$window([1, 2, 3, 4], 2)`, `[[1,2],[2,3],[3,4]]`},
		{`$window([1, 2, 3, 4, 5], 2, 2)`, `[[1,2],[3,4]]`},
		{`$union([1, 2], [2, 3])`, `[1,2,3]`},
		{`$union([{"a": 1}], [{"a": 1}, "a"])`, `[{"a":1},"a"]`},
		{`$intersection([1, 2, 3], [2, 3, 4])`, `[2,3]`},
		{`$difference([1, 2, 3], [2])`, `[1,3]`},
		{`$symmetricDifference([1, 2], [2, 3])`, `[1,3]`},
		{`$zipLongest([1, 2, 3], ["a"])`, `[[1,"a"],[2,null],[3,null]]`},
		{`$zipLongest([1, 2], ["a"], 0)`, `[[1,"a"],[2,0]]`},
		{`$groupBy([{"t": "a", "v": 1}, {"t": "b", "v": 2}, {"t": "a", "v": 3}], function($x){ $x.t })`, `{"a":[{"t":"a","v":1},{"t":"a","v":3}],"b":[{"t":"b","v":2}]}`},
		{`$countBy(["a", "bb", "cc"], $length)`, `{"1":1,"2":2}`},
		{`$sumBy([{"p": 2, "q": 3}, {"p": 1, "q": 4}], function($o){ $o.p * $o.q })`, `10`},
		{`$minBy([{"n": "a", "v": 3}, {"n": "b", "v": 1}], function($o){ $o.v }).n`, `"b"`},
		{`$maxBy([{"n": "a", "v": 3}, {"n": "b", "v": 1}], function($o){ $o.v }).n`, `"a"`},
		{`$accumulate([1, 2, 3, 4], function($a, $b){ $a + $b })`, `[1,3,6,10]`},
		{`$accumulate([1, 2], function($a, $b){ $a + $b }, 10)`, `[10,11,13]`},

		// objects
		{`$values({"b": 1, "a": 2})`, `[1,2]`},
		{`$pairs({"a": 1, "b": 2})`, `[["a",1],["b",2]]`},
		{`$fromPairs([["a", 1], ["b", 2]])`, `{"a":1,"b":2}`},
		{`$pick({"a": 1, "b": 2, "c": 3}, ["c", "a"])`, `{"a":1,"c":3}`},
		{`$omit({"a": 1, "b": 2, "c": 3}, "b")`, `{"a":1,"c":3}`},
		{`$deepMerge([{"a": {"x": 1, "y": 2}, "b": 1}, {"a": {"y": 3}, "c": 4}])`, `{"a":{"x":1,"y":3},"b":1,"c":4}`},
		{`$invert({"a": "x", "b": 1})`, `{"x":"a","1":"b"}`},
		{`$size({"a": 1, "b": 2})`, `2`},
		{`$rename({"a": 1, "b": 2}, {"a": "z"})`, `{"z":1,"b":2}`},
		{`$mapValues({"a": 1, "b": 2}, function($v){ $v * 10 })`, `{"a":10,"b":20}`},
		{`$mapKeys({"a": 1}, $uppercase)`, `{"A":1}`},

		// numbers
		{`$round($log(100, 10), 6)`, `2`},
		{`$sign(-3)`, `-1`},
		{`$trunc(-2.7)`, `-2`},
		{`$clamp(15, 0, 10)`, `10`},
		{`$clamp(-1, 0, 10)`, `0`},
		{`$round($sin($pi() / 2), 6)`, `1`},
		{`$round($e(), 3)`, `2.718`},
		{`$median([3, 1, 2])`, `2`},
		{`$median([0.1, 0.2])`, `0.15`},
		{`$variance([1, 2, 3, 4])`, `1.25`},
		{`$stddev([2, 4, 4, 4, 5, 5, 7, 9])`, `2`},
		{`$percentile([1, 2, 3, 4, 5], 50)`, `3`},
		{`$percentile([1, 2, 3, 4], 25)`, `1.75`},
		{`$mode([1, 2, 2, 3])`, `2`},
		{`$mode([1, 1, 2, 2])`, `[1,2]`},

		// crypto
		{`$hash("abc", "sha256")`, `"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"`},
		{`$hash("abc", "MD5")`, `"900150983cd24fb0d6963f7d28e17f72"`},
		{`$hmac("The quick brown fox jumps over the lazy dog", "key", "sha256")`, `"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"`},
		{`$length($uuid())`, `36`},
		{`$uuid() = $uuid()`, `false`},
	}

	opt := ext.WithAll()
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			qt.Assert(t, qt.Equals(toJSON(t, eval(t, test.expr, opt)), test.want))
		})
	}
}

func TestExtensionErrors(t *testing.T) {
	tests := []struct {
		expr string
		code types.ErrorCode
	}{
		{`$parseDate("not a date")`, types.ErrInvalidTimestamp},
		{`$dateAdd(0, 1, "fortnight")`, types.ErrArgumentMismatch},
		{`$startsWith(1, "a")`, types.ErrArgumentMismatch},
		{`$hash("a", "crc32")`, types.ErrArgumentMismatch},
		{`$sumBy([1, 2], function($x){ "a" })`, types.ErrArgumentMismatch},
		{`$pick([1], ["a"])`, types.ErrArgumentMismatch},
		{`$asin(2)`, types.ErrNumberTooLarge},
		{`$deepMerge([{"a": 1}, 2])`, types.ErrArrayItemType},
	}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			_, err := jsonata.Eval(test.expr, nil, ext.WithAll())
			var e *types.Error
			qt.Assert(t, qt.IsTrue(errors.As(err, &e)), qt.Commentf("error: %v", err))
			qt.Assert(t, qt.Equals(e.Code, test.code))
		})
	}
}

func TestMemoizeCallsOnce(t *testing.T) {
	calls := 0
	tick := jsonata.WithCustomFunction("tick", "<n:n>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
		calls++
		return args[0].(float64) * 10, nil
	})
	got := eval(t, `($m := $memoize($tick); [$m(1), $m(1), $m(2), $m(1)])`, tick, ext.WithFunctional())
	qt.Assert(t, qt.Equals(toJSON(t, got), `[10,10,20,10]`))
	qt.Assert(t, qt.Equals(calls, 2))
}

func TestCategories(t *testing.T) {
	// only the string functions are registered
	got := eval(t, `$startsWith("abc", "a")`, ext.WithString())
	qt.Assert(t, qt.Equals(got, interface{}(true)))

	_, err := jsonata.Eval(`$isString("a")`, nil, ext.WithString())
	qt.Assert(t, qt.IsNotNil(err))

	got = eval(t, `$isString("a")`, ext.WithTypes())
	qt.Assert(t, qt.Equals(got, interface{}(true)))

	got = eval(t, `$dateDiff(0, 3600000, "hour")`, ext.WithDateTime())
	qt.Assert(t, qt.Equals(got, interface{}(1.0)))

	got = eval(t, `$first([5, 6])`, ext.WithArray())
	qt.Assert(t, qt.Equals(got, interface{}(5.0)))

	got = eval(t, `$size({"a": 1})`, ext.WithObject())
	qt.Assert(t, qt.Equals(got, interface{}(1.0)))

	got = eval(t, `$median([1, 3])`, ext.WithNumeric())
	qt.Assert(t, qt.Equals(got, interface{}(2.0)))

	got = eval(t, `$hash("", "sha1")`, ext.WithCrypto())
	qt.Assert(t, qt.Equals(got, interface{}("da39a3ee5e6b4b0d3255bfef95601890afd80709")))
}

func TestSingleFunction(t *testing.T) {
	got := eval(t, `$endsWith("abc", "c")`, jsonata.WithFunctions(extstring.EndsWith()))
	qt.Assert(t, qt.Equals(got, interface{}(true)))
}

func TestNames(t *testing.T) {
	names := ext.Names()
	qt.Assert(t, qt.IsTrue(sort.StringsAreSorted(names)))
	want := []string{"camelCase", "memoize", "parseDate", "pipe", "startsWith", "isEmpty", "groupBy", "pick", "median", "hash"}
	var missing []string
	for _, w := range want {
		i := sort.SearchStrings(names, w)
		if i == len(names) || names[i] != w {
			missing = append(missing, w)
		}
	}
	if diff := cmp.Diff([]string(nil), missing); diff != "" {
		t.Errorf("missing extension functions (-want +got):\n%s", diff)
	}
}

func TestHostObjects(t *testing.T) {
	data := map[string]interface{}{"b": 2, "a": 1, "c": map[string]interface{}{"z": true}}
	got, err := jsonata.Eval(`{"v": $values($omit($, "c")), "k": $keys($pick($, ["c", "a"]))}`, data, ext.WithObject())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(toJSON(t, got), `{"v":[1,2],"k":["a","c"]}`))
}
