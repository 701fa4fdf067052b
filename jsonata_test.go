package jsonata_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"github.com/sandrolain/jsonata"
	"github.com/sandrolain/jsonata/pkg/cache"
	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/types"
)

const account = `{
	"Account": {
		"Name": "Firefly",
		"Order": [
			{
				"OrderID": "order103",
				"Product": [
					{"Name": "Bowler Hat", "Price": 34.45, "Quantity": 2},
					{"Name": "Trilby hat", "Price": 21.67, "Quantity": 1}
				]
			},
			{
				"OrderID": "order104",
				"Product": [
					{"Name": "Bowler Hat", "Price": 34.45, "Quantity": 4},
					{"Name": "Cloak", "Price": 107.99, "Quantity": 1}
				]
			}
		]
	}
}`

func accountData(t testing.TB) interface{} {
	var data interface{}
	err := json.Unmarshal([]byte(account), &data)
	qt.Assert(t, qt.IsNil(err))
	return data
}

func toJSON(t testing.TB, v interface{}) string {
	b, err := json.Marshal(v)
	qt.Assert(t, qt.IsNil(err))
	return string(b)
}

func errorCode(err error) types.ErrorCode {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`Account.Name`, `"Firefly"`},
		{`Account.Order.OrderID`, `["order103","order104"]`},
		{`Account.Order.Product.Price`, `[34.45,21.67,34.45,107.99]`},
		{`Account.Order[0].Product[0].Name`, `"Bowler Hat"`},
		{`Account.Order.Product[Price > 30].Name`, `["Bowler Hat","Bowler Hat","Cloak"]`},
		{`$sum(Account.Order.Product.(Price * Quantity))`, `336.36`},
		{`$count(Account.Order)`, `2`},
		{`Account.Order.Product^(Price).Price`, `[21.67,34.45,34.45,107.99]`},
		{`Account.Order.Product{Name: $sum(Quantity)}`, `{"Bowler Hat":6,"Trilby hat":1,"Cloak":1}`},
		{`Account.Order.{"id": OrderID, "items": $count(Product)}`, `[{"id":"order103","items":2},{"id":"order104","items":2}]`},
		{`$sum([1, 2, 3])`, `6`},
		{`(1..5)[$ > 2]`, `[3,4,5]`},
		{`$map([1, 2, 3], function($v){ $v * 2 })`, `[2,4,6]`},
		{`"a" & 1 & true`, `"a1true"`},
		{`null`, `null`},
	}

	data := accountData(t)
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			got, err := jsonata.Eval(test.expr, data)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(toJSON(t, got), test.want))
		})
	}
}

func TestEvalUndefined(t *testing.T) {
	got, err := jsonata.Eval(`Account.Missing`, accountData(t))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(got))
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		want types.ErrorCode
	}{
		{`(1`, types.ErrExpectedBeforeEnd},
		{`1 +`, types.ErrUnexpectedEnd},
		{`{"a": 1, "a": 2}`, types.ErrGroupKeyClash},
		{`[1..10000001]`, types.ErrRangeTooLarge},
		{`1 + "a"`, types.ErrRightNotNumber},
		{`$nothing()`, types.ErrInvokeNonFunction},
	}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			_, err := jsonata.Eval(test.expr, nil)
			qt.Assert(t, qt.Equals(errorCode(err), test.want), qt.Commentf("error: %v", err))
		})
	}
}

func TestDeepTailRecursion(t *testing.T) {
	got, err := jsonata.Eval(`(
		$loop := function($n, $acc){ $n = 0 ? $acc : $loop($n - 1, $acc + $n) };
		$loop(100000, 0)
	)`, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}(float64(5000050000))))
}

func TestTimeout(t *testing.T) {
	_, err := jsonata.Eval(`($f := function(){ $f() }; $f())`, nil, jsonata.WithTimeout(20*time.Millisecond))
	qt.Assert(t, qt.ErrorIs(err, context.DeadlineExceeded))
}

func TestEvalWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := jsonata.EvalWithContext(ctx, `[1..1000].($ * $)`, nil)
	qt.Assert(t, qt.ErrorIs(err, context.Canceled))
}

func TestEvalWithBindings(t *testing.T) {
	got, err := jsonata.EvalWithBindings(context.Background(),
		`Account.Order.Product[Price > $threshold].Name`, accountData(t),
		map[string]interface{}{"threshold": 100})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}("Cloak")))
}

func TestConcurrentEvaluation(t *testing.T) {
	expr := jsonata.MustCompile(`$sum(values.($ * $factor))`)
	ev := evaluator.New()

	const workers = 16
	results := make([]interface{}, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := map[string]interface{}{"values": []interface{}{1.0, 2.0, 3.0}}
			results[i], errs[i] = ev.EvalWithBindings(context.Background(), expr, data,
				map[string]interface{}{"factor": i})
		}(i)
	}
	wg.Wait()

	want := make([]interface{}, workers)
	for i := range want {
		want[i] = float64(6 * i)
	}
	for _, err := range errs {
		qt.Assert(t, qt.IsNil(err))
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestCompile(t *testing.T) {
	expr, err := jsonata.Compile(`a.b[0]`)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(expr.Source(), `a.b[0]`))

	_, err = jsonata.Compile(`a.`)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestMustCompilePanics(t *testing.T) {
	qt.Assert(t, qt.PanicMatches(func() {
		jsonata.MustCompile("(")
	}, `jsonata: Compile\("\("\): .*`))
}

func TestRegisterFunction(t *testing.T) {
	err := jsonata.RegisterFunction("jsonataTestTriple", "<n:n>", func(ctx context.Context, call *evaluator.Call, args []interface{}) (interface{}, error) {
		return args[0].(float64) * 3, nil
	})
	qt.Assert(t, qt.IsNil(err))

	got, err := jsonata.Eval(`[1, 2].$jsonataTestTriple($)`, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(toJSON(t, got), `[3,6]`))

	err = jsonata.RegisterFunction("jsonataTestBroken", "<x", nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestCustomFunctionOption(t *testing.T) {
	greet := jsonata.WithCustomFunction("greet", "<s:s>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return fmt.Sprintf("Hello, %s!", args[0]), nil
	})
	got, err := jsonata.Eval(`$greet(Account.Name)`, accountData(t), greet)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, interface{}("Hello, Firefly!")))
}

func TestSharedCache(t *testing.T) {
	c := cache.New(8)
	for i := 0; i < 2; i++ {
		got, err := jsonata.Eval(`$count(Account.Order)`, accountData(t), jsonata.WithCache(c))
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(got, interface{}(2.0)))
	}
	qt.Assert(t, qt.Equals(c.Stats(), cache.Stats{Hits: 1, Misses: 1}))
}

func TestVersion(t *testing.T) {
	qt.Assert(t, qt.Matches(jsonata.Version(), `v\d+\.\d+\.\d+.*`))
}
