package jsonata_test

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/jsonata"
	"github.com/sandrolain/jsonata/pkg/compiler"
)

var fuzzData = map[string]interface{}{
	"name": "Alice",
	"age":  float64(30),
	"items": []interface{}{
		map[string]interface{}{"name": "foo", "price": float64(10)},
		map[string]interface{}{"name": "bar", "price": float64(200)},
	},
}

var fuzzSeeds = []string{
	`$.name`,
	`$.items[price > 100].name`,
	`$sum($.items.price)`,
	`$map($.items, function($v) { $v.price * 2 })`,
	`items{name: price}`,
	`**.price`,
	`| items | {"seen": true} |`,
	`$string($.age)`,
	`1/0`,
	`$.missing.path`,
	``,
	`(`,
	`$foo(`,
	`/a+`,
}

func FuzzCompile(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		expr, err := compiler.Compile(input)
		if err != nil {
			return
		}
		// the printed form must compile back to itself
		printed := expr.Format()
		again, err := compiler.Compile(printed)
		if err != nil {
			t.Fatalf("Format(%q) = %q does not compile: %v", input, printed, err)
		}
		if got := again.Format(); got != printed {
			t.Fatalf("Format is not stable for %q: %q then %q", input, printed, got)
		}
	})
}

func FuzzEval(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, _ = jsonata.EvalWithContext(ctx, input, fuzzData, jsonata.WithMaxDepth(200))
	})
}
