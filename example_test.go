package jsonata_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandrolain/jsonata"
	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/ext"
	"github.com/sandrolain/jsonata/pkg/types"
)

func ExampleEval() {
	var data interface{}
	_ = json.Unmarshal([]byte(`{"items": [{"price": 120}, {"price": 80}, {"price": 300}]}`), &data)

	result, err := jsonata.Eval("$sum(items[price > 100].price)", data)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(result)
	// Output: 420
}

func ExampleCompile() {
	expr := jsonata.MustCompile(`orders.{"id": id, "total": $sum(lines.(qty * price))}`)
	ev := evaluator.New()

	data, _ := types.DecodeJSON([]byte(`{"orders": [
		{"id": "a", "lines": [{"qty": 2, "price": 5}, {"qty": 1, "price": 3}]},
		{"id": "b", "lines": [{"qty": 4, "price": 1}]}
	]}`))
	result, err := ev.Eval(context.Background(), expr, data)
	if err != nil {
		fmt.Println(err)
		return
	}
	out, _ := json.Marshal(result)
	fmt.Println(string(out))
	// Output: [{"id":"a","total":13},{"id":"b","total":4}]
}

func ExampleCompile_format() {
	expr := jsonata.MustCompile(`a.b[c>1]`)
	fmt.Println(expr.Format())
	// Output: a.b[c > 1]
}

func ExampleEvalWithBindings() {
	result, _ := jsonata.EvalWithBindings(context.Background(),
		`$greeting & ", " & name`,
		map[string]interface{}{"name": "World"},
		map[string]interface{}{"greeting": "Hello"})
	fmt.Println(result)
	// Output: Hello, World
}

func ExampleWithCustomFunction() {
	double := jsonata.WithCustomFunction("double", "<n:n>", func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return args[0].(float64) * 2, nil
	})
	result, _ := jsonata.Eval(`$double(21)`, nil, double)
	fmt.Println(result)
	// Output: 42
}

func ExampleEval_error() {
	_, err := jsonata.Eval(`1 + "a"`, nil)
	var e *types.Error
	if errors.As(err, &e) {
		fmt.Println(e.Code, e.Position)
	}
	// Output: T2002 2
}

func ExampleEval_extensions() {
	result, _ := jsonata.Eval(`$kebabCase("Hello World")`, nil, ext.WithAll())
	fmt.Println(result)
	// Output: hello-world
}
