package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/jsonata/pkg/compiler"
	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

const invoice = `{
  "Account": {
    "Account Name": "Firefly",
    "Order": [
      {
        "OrderID": "order103",
        "Product": [
          {"Product Name": "Bowler Hat", "ProductID": 858383, "SKU": "0406654608",
           "Description": {"Colour": "Purple", "Width": 300, "Height": 200, "Depth": 210, "Weight": 0.75},
           "Price": 34.45, "Quantity": 2},
          {"Product Name": "Trilby hat", "ProductID": 858236, "SKU": "0406634348",
           "Description": {"Colour": "Orange", "Width": 300, "Height": 200, "Depth": 210, "Weight": 0.6},
           "Price": 21.67, "Quantity": 1}
        ]
      },
      {
        "OrderID": "order104",
        "Product": [
          {"Product Name": "Bowler Hat", "ProductID": 858383, "SKU": "040657863",
           "Description": {"Colour": "Purple", "Width": 300, "Height": 200, "Depth": 210, "Weight": 0.75},
           "Price": 34.45, "Quantity": 4},
          {"ProductID": 345664, "SKU": "0406654603", "Product Name": "Cloak",
           "Description": {"Colour": "Black", "Width": 30, "Height": 20, "Depth": 210, "Weight": 2},
           "Price": 107.99, "Quantity": 1}
        ]
      }
    ]
  }
}`

const library = `{
  "loans": [{"isbn": "1", "who": "x"}, {"isbn": "2", "who": "y"}],
  "books": [{"isbn": "2", "title": "B"}, {"isbn": "1", "title": "A"}]
}`

func decode(t *testing.T, doc string) interface{} {
	t.Helper()
	if doc == "" {
		return nil
	}
	v, err := types.DecodeJSON([]byte(doc))
	qt.Assert(t, qt.IsNil(err))
	return v
}

// encode renders a result as compact JSON, or "undefined" for no result.
func encode(t *testing.T, v interface{}) string {
	t.Helper()
	if v == nil {
		return "undefined"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	qt.Assert(t, qt.IsNil(enc.Encode(v)))
	return strings.TrimSuffix(buf.String(), "\n")
}

func evaluate(t *testing.T, ev *Evaluator, expr, doc string) (interface{}, error) {
	t.Helper()
	compiled, err := compiler.Compile(expr)
	qt.Assert(t, qt.IsNil(err), qt.Commentf("compiling %s", expr))
	return ev.Eval(context.Background(), compiled, decode(t, doc))
}

func errorCode(err error) types.ErrorCode {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

type evalTest struct {
	expr string
	doc  string
	want string
}

func runEvalTests(t *testing.T, tests []evalTest) {
	t.Helper()
	ev := New()
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			got, err := evaluate(t, ev, test.expr, test.doc)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(encode(t, got), test.want))
		})
	}
}

func TestPaths(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"Account.`Account Name`", invoice, `"Firefly"`},
		{"Account.Order[0].OrderID", invoice, `"order103"`},
		{"Account.Order[-1].OrderID", invoice, `"order104"`},
		{"Account.Order.Product.Price", invoice, `[34.45,21.67,34.45,107.99]`},
		{"Account.Order.Product[0].`Product Name`", invoice, `["Bowler Hat","Bowler Hat"]`},
		{"(Account.Order.Product)[0].`Product Name`", invoice, `"Bowler Hat"`},
		{"Account.Order.Product[Price > 30].SKU", invoice, `["0406654608","040657863","0406654603"]`},
		{"Account.Order[0].Product[0].Description.Colour", invoice, `"Purple"`},
		{"Account.Order[0].Product[0].Description.Colour[]", invoice, `["Purple"]`},
		{"Account.Order.Missing", invoice, `undefined`},
		{"$sum(Account.Order.Product.(Price * Quantity))", invoice, `336.36`},
		{"$count(Account.Order.Product)", invoice, `4`},
		{"Account.Order.Product{`Product Name`: Price}", invoice, `{"Bowler Hat":[34.45,34.45],"Trilby hat":21.67,"Cloak":107.99}`},
		{"Account.Order.Product^(>Price).SKU", invoice, `["0406654603","0406654608","040657863","0406634348"]`},
		{"Account.Order.Product^(Quantity, >Price).Quantity", invoice, `[1,1,2,4]`},
		{"$^(a, b)", `[{"b": 1}, {"a": 1, "b": 2}]`, `[{"a":1,"b":2},{"b":1}]`},
		{"$^(a, >b)", `[{"a": 2, "b": 1}, {"b": 5}, {"a": 1, "b": 2}]`, `[{"a":1,"b":2},{"a":2,"b":1},{"b":5}]`},
		{"$^(>a, b)", `[{"b": 3}, {"a": 1, "b": 2}, {"b": 1}]`, `[{"a":1,"b":2},{"b":1},{"b":3}]`},
		{"Account.Order#$i.OrderID", invoice, `["order103","order104"]`},
		{"Account.Order#$i[$i = 1].OrderID", invoice, `"order104"`},
		{"Account.Order.Product.%.OrderID", invoice, `["order103","order103","order104","order104"]`},
		{`loans@$l.books@$b[$l.isbn = $b.isbn].{"who": $l.who, "title": $b.title}`, library, `[{"who":"x","title":"A"},{"who":"y","title":"B"}]`},
		{"**.c", `{"a": {"c": 1}, "b": [{"c": 2}]}`, `[1,2]`},
		{"*", `{"a": 1, "b": [2, 3]}`, `[1,2,3]`},
		{"$", `[1, 2, 3]`, `[1,2,3]`},
		{"$[1]", `[1, 2, 3]`, `2`},
		{"a.b", `{"a": [{"b": [1, 2]}, {"b": 3}]}`, `[1,2,3]`},
		{"a.b[0]", `{"a": [{"b": [1, 2]}, {"b": 3}]}`, `[1,3]`},
	})
}

func TestOperators(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"1 + 2 * 3", "", `7`},
		{"(1 + 2) * 3", "", `9`},
		{"7 % 3", "", `1`},
		{"-(5)", "", `-5`},
		{"0.1 + 0.2", "", `0.30000000000000004`},
		{`"a" & 1 & true`, "", `"a1true"`},
		{`"a" & missing`, "", `"a"`},
		{"1 = 1.0", "", `true`},
		{`[1, 2] = [1, 2]`, "", `true`},
		{`{"a": 1} != {"a": 2}`, "", `true`},
		{`"b" > "a"`, "", `true`},
		{`missing = 1`, "", `false`},
		{`"a" in ["a", "b"]`, "", `true`},
		{`true and missing`, "", `false`},
		{`false or 1`, "", `true`},
		{"[1..5]", "", `[1,2,3,4,5]`},
		{"[1..5][$ > 2]", "", `[3,4,5]`},
		{"(1..5)[$ > 2]", "", `[3,4,5]`},
		{"[5..1]", "", `[]`},
		{"[1, [2, 3], 4]", "", `[1,[2,3],4]`},
		{"[1, 2, 3][-1]", "", `3`},
		{`5 > 3 ? "yes" : "no"`, "", `"yes"`},
		{`5 < 3 ? "yes"`, "", `undefined`},
		{"0 ?: 5", "", `5`},
		{"missing ?? 1", "", `1`},
		{`{"a": 1, "b": [1, 2]}`, "", `{"a":1,"b":[1,2]}`},
		{`{"a": missing}`, "", `{}`},
		{`[{"k": "a", "v": 1}, {"k": "b", "v": 2}, {"k": "a", "v": 3}]{k: $sum(v)}`, "", `{"a":4,"b":2}`},
	})
}

func TestFunctionsAndLambdas(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"($x := 5; $x * 2)", "", `10`},
		{"($x := 1; ($x := 2); $x)", "", `1`},
		{"($f := function($x){ $x * 2 }; $f(21))", "", `42`},
		{"($add := function($a, $b){ $a + $b }; $inc := $add(?, 1); $inc(41))", "", `42`},
		{`$substring(?, 0, 2)("hello")`, "", `"he"`},
		{`$substring("hello", ?, 2)(1)`, "", `"el"`},
		{`($f := $join(?, "-"); $f(["a", "b"]))`, "", `"a-b"`},
		{`($p := $pad(?, 5, ?); $star := $p(?, "*"); $star("ab"))`, "", `"ab***"`},
		{"($fact := function($n){ $n <= 1 ? 1 : $n * $fact($n - 1) }; $fact(10))", "", `3628800`},
		{`"hello" ~> $uppercase()`, "", `"HELLO"`},
		{`($f := $trim ~> $uppercase; $f("  a  "))`, "", `"A"`},
		{"($twice := function($f){ function($x){ $f($f($x)) } }; $twice(function($n){ $n + 3 })(1))", "", `7`},
		{"($f := function($s)<s:s>{ $s & $s }; $f(\"ab\"))", "", `"abab"`},
		{"$map([1, 2, 3], function($v, $i){ $v * $i })", "", `[0,2,6]`},
		{"$map(Account.Order, function($o){ $o.OrderID })", invoice, `["order103","order104"]`},
		{"$filter([1, 2, 3, 4], function($v){ $v % 2 = 0 })", "", `[2,4]`},
		{"$reduce([1, 2, 3, 4], function($a, $b){ $a + $b })", "", `10`},
		{"$reduce([1, 2, 3], function($a, $b){ $a + $b }, 10)", "", `16`},
		{"$single([1, 2, 3], function($v){ $v = 2 })", "", `2`},
		{"$sift({\"a\": 1, \"b\": 2}, function($v){ $v > 1 })", "", `{"b":2}`},
		{"$each({\"a\": 1, \"b\": 2}, function($v, $k){ $k & $v })", "", `["a1","b2"]`},
		{"$sort([{\"a\": 2}, {\"a\": 1}], function($l, $r){ $l.a > $r.a })", "", `[{"a":1},{"a":2}]`},
	})
}

func TestBuiltins(t *testing.T) {
	runEvalTests(t, []evalTest{
		// aggregation
		{"$sum([1, 2, 3])", "", `6`},
		{"$sum([])", "", `0`},
		{"$max([1, 5, 3])", "", `5`},
		{"$min([1, 5, 3])", "", `1`},
		{"$average([1, 2, 3, 4])", "", `2.5`},
		{"$count(missing)", "", `0`},

		// strings
		{"$string(1/3)", "", `"0.333333333333333"`},
		{`$string({"a": [1, 2]})`, "", `"{\"a\":[1,2]}"`},
		{`$string({"a": 1}, true)`, "", `"{\n  \"a\": 1\n}"`},
		{`$string("x")`, "", `"x"`},
		{`$substring("Hello World", 3, 5)`, "", `"lo Wo"`},
		{`$substring("Hello", -3)`, "", `"llo"`},
		{`$substringBefore("Hello World", " ")`, "", `"Hello"`},
		{`$substringAfter("Hello World", " ")`, "", `"World"`},
		{`$uppercase("hello")`, "", `"HELLO"`},
		{`$lowercase("HeLLo")`, "", `"hello"`},
		{`$length("héllo")`, "", `5`},
		{`$trim("  a   b  ")`, "", `"a b"`},
		{`$pad("foo", 5)`, "", `"foo  "`},
		{`$pad("foo", -5, "#")`, "", `"##foo"`},
		{`$join(["a", "b"], "-")`, "", `"a-b"`},
		{`$split("a,b,c", ",")`, "", `["a","b","c"]`},
		{`$split("a,b,c", ",", 2)`, "", `["a","b"]`},
		{`$split("a1b22c", /\d+/)`, "", `["a","b","c"]`},
		{`$contains("abc", "b")`, "", `true`},
		{`$contains("abc", /B/i)`, "", `true`},
		{`$replace("abcabc", "b", "x")`, "", `"axcaxc"`},
		{`$replace("abcabc", "b", "x", 1)`, "", `"axcabc"`},
		{`$replace("John Smith", /(\w+)\s(\w+)/, "$2, $1")`, "", `"Smith, John"`},
		{`$replace("abc", /b/, function($m){ $uppercase($m.match) })`, "", `"aBc"`},
		{`$match("ababbabbcc", /a(b+)/)`, "", `[{"match":"ab","index":0,"groups":["b"]},{"match":"abb","index":2,"groups":["bb"]},{"match":"abb","index":5,"groups":["bb"]}]`},
		{`/a(b+)/("xabb").groups`, "", `["bb"]`},

		// numbers
		{"$number(\"42\")", "", `42`},
		{"$number(\"0x1F\")", "", `31`},
		{"$number(true)", "", `1`},
		{"$round(2.5)", "", `2`},
		{"$round(3.5)", "", `4`},
		{"$round(123.456, 2)", "", `123.46`},
		{"$round(-0.5)", "", `0`},
		{"$floor(-1.5)", "", `-2`},
		{"$ceil(1.2)", "", `2`},
		{"$abs(-5)", "", `5`},
		{"$sqrt(16)", "", `4`},
		{"$power(2, 10)", "", `1024`},
		{"$formatBase(255, 16)", "", `"ff"`},
		{"$formatBase(5, 2)", "", `"101"`},

		// booleans
		{"$boolean([])", "", `false`},
		{`$boolean("0")`, "", `true`},
		{"$not(0)", "", `true`},
		{"$exists(missing)", "", `false`},
		{"$exists(null)", "", `true`},

		// arrays
		{"$append([1, 2], [3])", "", `[1,2,3]`},
		{"$append(1, 2)", "", `[1,2]`},
		{"$reverse([1, 2, 3])", "", `[3,2,1]`},
		{"$distinct([1, 2, 2, 3, 1])", "", `[1,2,3]`},
		{"$sort([3, 1, 2])", "", `[1,2,3]`},
		{`$sort(["b", "c", "a"])`, "", `["a","b","c"]`},
		{"$zip([1, 2, 3], [4, 5])", "", `[[1,4],[2,5]]`},
		{"$count($shuffle([1, 2, 3]))", "", `3`},

		// objects
		{`$keys({"a": 1, "b": 2})`, "", `["a","b"]`},
		{`$keys([{"a": 1}, {"b": 2, "a": 3}])`, "", `["a","b"]`},
		{`$lookup({"a": 1}, "a")`, "", `1`},
		{`$merge([{"a": 1}, {"b": 2}, {"a": 3}])`, "", `{"a":3,"b":2}`},
		{`$spread({"a": 1, "b": 2})`, "", `[{"a":1},{"b":2}]`},
		{"$type([])", "", `"array"`},
		{"$type(null)", "", `"null"`},
		{"$type({})", "", `"object"`},
		{"$type($sum)", "", `"function"`},
		{"$type(missing)", "", `undefined`},

		// encoding
		{`$base64encode("hello")`, "", `"aGVsbG8="`},
		{`$base64decode("aGVsbG8=")`, "", `"hello"`},
		{`$encodeUrlComponent("?x=test")`, "", `"%3Fx%3Dtest"`},
		{`$encodeUrl("https://mozilla.org/?x=шеллы")`, "", `"https://mozilla.org/?x=%D1%88%D0%B5%D0%BB%D0%BB%D1%8B"`},
		{`$decodeUrlComponent("%3Fx%3Dtest")`, "", `"?x=test"`},
		{`$decodeUrl("https://mozilla.org/?x=%D1%88%D0%B5%D0%BB%D0%BB%D1%8B")`, "", `"https://mozilla.org/?x=шеллы"`},

		// dates
		{"$fromMillis(1510067557121)", "", `"2017-11-07T15:12:37.121Z"`},
		{`$toMillis("2017-11-07T15:07:54.972Z")`, "", `1510067274972`},
		{`$toMillis("2017-11-07")`, "", `1510012800000`},

		// control
		{`$eval("[1, 2, 3]")`, "", `[1,2,3]`},
		{`$eval("$ + 1", 5)`, "", `6`},
		{`$eval("a")`, `{"a": "x"}`, `"x"`},
	})
}

func TestTransform(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`$ ~> |b|{"d": 3}|`, `{"a": 1, "b": {"c": 2}}`, `{"a":1,"b":{"c":2,"d":3}}`},
		{`$ ~> |$|{}, ["a"]|`, `{"a": 1, "b": {"c": 2}}`, `{"b":{"c":2}}`},
		{`$ ~> |items|{"total": price * qty}|`, `{"items": [{"price": 2, "qty": 3}, {"price": 5, "qty": 1}]}`,
			`{"items":[{"price":2,"qty":3,"total":6},{"price":5,"qty":1,"total":5}]}`},
	})

	// the input document is left untouched
	ev := New()
	doc := decode(t, `{"a": 1}`)
	got, err := ev.Eval(context.Background(), compiler.MustCompile(`$ ~> |$|{"a": 2}|`), doc)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(encode(t, got), `{"a":2}`))
	qt.Assert(t, qt.Equals(encode(t, doc), `{"a":1}`))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		expr string
		doc  string
		code types.ErrorCode
	}{
		{`"a" + 1`, "", types.ErrLeftNotNumber},
		{`1 + "a"`, "", types.ErrRightNotNumber},
		{`1 < "a"`, "", types.ErrCompareMixedTypes},
		{`{} < 1`, "", types.ErrCompareType},
		{`-"a"`, "", types.ErrNegateNonNumber},
		{"$foo()", "", types.ErrInvokeNonFunction},
		{"sum(1)", "", types.ErrMissingDollar},
		{"[1.5..3]", "", types.ErrRangeLeftInteger},
		{"[1..10000001]", "", types.ErrRangeTooLarge},
		{`{"a": 1, "a": 2}`, "", types.ErrGroupKeyClash},
		{`{1: 2}`, "", types.ErrGroupKeyNotString},
		{`[1, "a"]^($)`, "", types.ErrSortMixedTypes},
		{"1 ~> 2", "", types.ErrApplyNonFunction},
		{`$uppercase(1)`, "", types.ErrArgumentMismatch},
		{`$sum(["a"])`, "", types.ErrArrayItemType},
		{`$sqrt(-1)`, "", types.ErrSqrtNegative},
		{`$number("abc")`, "", types.ErrNumberConversion},
		{`$formatBase(1, 40)`, "", types.ErrFormatBaseRadix},
		{`$sort([1, "a"])`, "", types.ErrSortNeedsComparator},
		{`$single([1, 2], function($v){ true })`, "", types.ErrSingleMultipleMatch},
		{`$single([1, 2], function($v){ false })`, "", types.ErrSingleNoMatch},
		{`$reduce([1], function($a){ $a })`, "", types.ErrReduceArity},
		{`$error("boom")`, "", types.ErrUserError},
		{`$assert(false, "nope")`, "", types.ErrAssertionFailed},
		{`$eval("a[")`, "", types.ErrEvalCompile},
		{`$eval("$x()")`, "", types.ErrEvalRuntime},
		{`$toMillis("yesterday")`, "", types.ErrInvalidTimestamp},
		{`$decodeUrlComponent("%E0%A4%A")`, "", types.ErrURIMalformed},
		{`$string(1/0)`, "", types.ErrNumberTooLarge},
		{`$ ~> |a|1|`, `{"a": {}}`, types.ErrUpdateNotObject},
		{`$ ~> |a|{}, 1|`, `{"a": {}}`, types.ErrDeleteNotStrings},
	}

	ev := New()
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			_, err := evaluate(t, ev, test.expr, test.doc)
			qt.Assert(t, qt.IsNotNil(err))
			qt.Assert(t, qt.Equals(errorCode(err), test.code), qt.Commentf("error: %v", err))
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := evaluate(t, New(), `1 + "a"`, "")
	var e *types.Error
	qt.Assert(t, qt.ErrorAs(err, &e))
	qt.Assert(t, qt.Equals(e.Position, 2))
	qt.Assert(t, qt.Equals(e.Token, "+"))
}

func TestTailCalls(t *testing.T) {
	expr := `($count := function($n, $acc){ $n = 0 ? $acc : $count($n - 1, $acc + 1) }; $count(100000, 0))`
	got, err := evaluate(t, New(), expr, "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}(float64(100000))))
}

func TestMaxDepth(t *testing.T) {
	expr := `($f := function($n){ 1 + $f($n + 1) }; $f(0))`
	_, err := evaluate(t, New(WithMaxDepth(200)), expr, "")
	qt.Assert(t, qt.Equals(errorCode(err), types.ErrDepthExceeded))
}

func TestTimeout(t *testing.T) {
	expr := `($loop := function(){ $loop() }; $loop())`
	_, err := evaluate(t, New(WithTimeout(50*time.Millisecond)), expr, "")
	qt.Assert(t, qt.ErrorIs(err, context.DeadlineExceeded))
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Eval(ctx, compiler.MustCompile("[1..100].($ * 2)"), nil)
	qt.Assert(t, qt.ErrorIs(err, context.Canceled))
}

func TestBindings(t *testing.T) {
	ev := New(WithBindings(map[string]interface{}{"rate": 2}))
	expr := compiler.MustCompile("$rate * $n + $count(items)")
	got, err := ev.EvalWithBindings(context.Background(), expr, map[string]interface{}{
		"items": []string{"a", "b"},
	}, map[string]interface{}{"n": int64(10)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}(float64(22))))
}

func TestHostValues(t *testing.T) {
	data := map[string]interface{}{
		"b": []interface{}{1, 2.5, uint8(3)},
		"a": map[string]int{"x": 1},
		"n": nil,
	}
	got, err := New().Eval(context.Background(), compiler.MustCompile(`{"sum": $sum(b), "keys": $keys($), "x": a.x, "n": n}`), data)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(encode(t, got), `{"sum":6.5,"keys":["a","b","n"],"x":1,"n":null}`))
}

func TestCustomFunctions(t *testing.T) {
	greet := functions.CustomFunctionDef{
		Name:      "greet",
		Signature: "<s:s>",
		Fn: func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return "Hello, " + args[0].(string) + "!", nil
		},
	}
	apply := functions.AdvancedCustomFunctionDef{
		Name:      "applyAll",
		Signature: "<af:a>",
		Fn: func(ctx context.Context, caller functions.Caller, args ...interface{}) (interface{}, error) {
			items := args[0].([]interface{})
			out := make([]interface{}, 0, len(items))
			for _, item := range items {
				v, err := caller.Call(ctx, args[1], item)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
	ev := New(WithFunctions(greet, apply), WithCustomFunction("twice", "", func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return []int{1, 2}, nil
	}))
	runWith := func(expr string) string {
		got, err := evaluate(t, ev, expr, "")
		qt.Assert(t, qt.IsNil(err))
		return encode(t, got)
	}
	qt.Assert(t, qt.Equals(runWith(`$greet("World")`), `"Hello, World!"`))
	qt.Assert(t, qt.Equals(runWith(`$applyAll([1, 2], function($x){ $x * 10 })`), `[10,20]`))
	qt.Assert(t, qt.Equals(runWith(`$twice()`), `[1,2]`))

	_, err := evaluate(t, ev, `$greet(1)`, "")
	qt.Assert(t, qt.Equals(errorCode(err), types.ErrArgumentMismatch))
}

func TestInvalidCustomSignaturePanics(t *testing.T) {
	qt.Assert(t, qt.PanicMatches(func() {
		New(WithCustomFunction("bad", "<q>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
			return nil, nil
		}))
	}, `evaluator: custom function bad: .*`))
}

func TestRegisterFunction(t *testing.T) {
	err := RegisterFunction("evaluatorTestDouble", "<n:n>", func(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
		return args[0].(float64) * 2, nil
	})
	qt.Assert(t, qt.IsNil(err))
	got, err := evaluate(t, New(), "$evaluatorTestDouble(21)", "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}(float64(42))))

	err = RegisterFunction("broken", "<n", nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestCachedCompile(t *testing.T) {
	ev := New(WithCaching(true), WithCacheSize(2))
	first, err := ev.Compile("a.b")
	qt.Assert(t, qt.IsNil(err))
	second, err := ev.Compile("a.b")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(first, second))
	qt.Assert(t, qt.Equals(ev.Cache().Capacity(), 2))

	qt.Assert(t, qt.IsNil(New().Cache()))
}

func TestNowIsStableWithinEvaluation(t *testing.T) {
	got, err := evaluate(t, New(), "[$now(), $now()]", "")
	qt.Assert(t, qt.IsNil(err))
	items := got.([]interface{})
	qt.Assert(t, qt.Equals(items[0], items[1]))

	got, err = evaluate(t, New(), "$millis() = $toMillis($now())", "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}(true)))
}

func TestFunctionNames(t *testing.T) {
	names := FunctionNames()
	qt.Assert(t, qt.IsTrue(sort.StringsAreSorted(names)))
	for _, want := range []string{"sum", "map", "formatBase", "fromMillis"} {
		i := sort.SearchStrings(names, want)
		qt.Assert(t, qt.IsTrue(i < len(names) && names[i] == want), qt.Commentf("missing %s", want))
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	expr := `($count := function($n){ $n = 0 ? "done" : $count($n - 1) }; $count(3))`

	got, err := evaluate(t, New(WithLogger(logger), WithDebug(true)), expr, "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}("done")))
	out := buf.String()
	qt.Assert(t, qt.StringContains(out, "evaluation started"))
	qt.Assert(t, qt.StringContains(out, "msg=\"tail call\""))

	buf.Reset()
	_, err = evaluate(t, New(WithLogger(logger)), expr, "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(buf.String(), ""))
}

func TestSingletonEquivalence(t *testing.T) {
	doc := `{"a": {"b": [{"c": 1}, {"c": [2, 3]}], "d": 4}, "e": "f"}`
	ev := New()
	for _, expr := range []string{"a", "e", "a.b", "a.b.c", "a.d", "a.*", "a.b.c.x", "missing"} {
		t.Run(expr, func(t *testing.T) {
			scalar, err := evaluate(t, ev, expr, doc)
			qt.Assert(t, qt.IsNil(err))
			single, err := evaluate(t, ev, expr, "["+doc+"]")
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(encode(t, single), encode(t, scalar)))
		})
	}
}

func TestCompareErrorValue(t *testing.T) {
	for _, expr := range []string{"missing < true", "true < missing", "1 < {}"} {
		_, err := evaluate(t, New(), expr, `{}`)
		var e *types.Error
		qt.Assert(t, qt.ErrorAs(err, &e), qt.Commentf("%s", expr))
		qt.Assert(t, qt.Equals(e.Code, types.ErrCompareType))
		qt.Assert(t, qt.Not(qt.IsNil(e.Value)), qt.Commentf("%s", expr))
	}
}
