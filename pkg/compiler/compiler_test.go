package compiler

import (
	"errors"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/jsonata/pkg/types"
)

func errorCode(err error) types.ErrorCode {
	var e *types.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a.b.c", "a.b.c"},
		{"Account.Order[0].Product", "Account.Order[0].Product"},
		{"$sum(Account.Order.Product.(Price*Quantity))", "$sum(Account.Order.Product.(Price * Quantity))"},
		{"-5", "-5"},
		{"-a", "-a"},
		{"a ?: b", "a ?: b"},
		{"a ?? b", "a ?? b"},
		{"x ? y : z", "x ? y : z"},
		{"function($x){$x+1}", "function($x){$x + 1}"},
		{"function($n)<n:n>{$f($n)}", "function($n)<n:n>{$f($n)}"},
		{"a@$x.b#$i", "a@$x.b#$i"},
		{"a[0]#$i", "a[0]#$i"},
		{"Account{Name: Price}", "Account{Name: Price}"},
		{"a^(>b, c)", "a^(>b, c)"},
		{`"x y".z`, "`x y`.z"},
		{`| a | {"x": 1}, "y" |`, `| a | {"x": 1}, "y" |`},
		{"[1..3]", "[1 .. 3]"},
		{"a[]", "a[]"},
		{"$f(?, 2)", "$f(?, 2)"},
		{"($x := 1; $x)", "($x := 1; $x)"},
		{`$match("abc", /b+/i)`, `$match("abc", /b+/i)`},
		{"a ~> $f", "a ~> $f"},
		{"`and`.or", "`and`.`or`"},
		{"**.x", "**.x"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			expr, err := Compile(test.input)
			qt.Assert(t, qt.IsNil(err))
			got := expr.Format()
			qt.Assert(t, qt.Equals(got, test.want))

			again, err := Compile(got)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(again.Format(), got))
		})
	}
}

func TestResolvePaths(t *testing.T) {
	ast := MustCompile("a.b.c").AST()
	qt.Assert(t, qt.Equals(ast.Type, types.NodePath))
	qt.Assert(t, qt.HasLen(ast.Steps, 3))

	ast = MustCompile("a.b[0].c").AST()
	qt.Assert(t, qt.HasLen(ast.Steps[1].Stages, 1))
	qt.Assert(t, qt.HasLen(ast.Steps[1].Predicate, 0))

	ast = MustCompile("$x[0]").AST()
	qt.Assert(t, qt.Equals(ast.Type, types.NodeVariable))
	qt.Assert(t, qt.HasLen(ast.Predicate, 1))

	ast = MustCompile("[1, 2].x").AST()
	qt.Assert(t, qt.IsTrue(ast.Steps[0].ConsArray))

	ast = MustCompile("a.b[]").AST()
	qt.Assert(t, qt.IsTrue(ast.KeepSingletonArray))

	ast = MustCompile(`"x".y`).AST()
	qt.Assert(t, qt.Equals(ast.Steps[0].Type, types.NodeName))

	ast = MustCompile("-5").AST()
	qt.Assert(t, qt.Equals(ast.Type, types.NodeNumber))
	qt.Assert(t, qt.Equals(ast.Number, -5.0))
}

func TestResolveBindings(t *testing.T) {
	ast := MustCompile("a@$x.b").AST()
	qt.Assert(t, qt.Equals(ast.Steps[0].Focus, "x"))
	qt.Assert(t, qt.IsTrue(ast.Steps[0].Tuple))

	ast = MustCompile("a#$i").AST()
	qt.Assert(t, qt.Equals(ast.Type, types.NodePath))
	qt.Assert(t, qt.Equals(ast.Steps[0].Index, "i"))

	ast = MustCompile("a[0]#$i").AST()
	stages := ast.Steps[0].Stages
	qt.Assert(t, qt.HasLen(stages, 2))
	qt.Assert(t, qt.Equals(stages[1].Type, types.StageIndex))
	qt.Assert(t, qt.Equals(stages[1].Variable, "i"))
}

func TestResolveAncestors(t *testing.T) {
	ast := MustCompile("a.b.%").AST()
	qt.Assert(t, qt.IsNotNil(ast.Steps[1].Ancestor))
	qt.Assert(t, qt.IsTrue(ast.Steps[1].Tuple))
	qt.Assert(t, qt.Equals(ast.Steps[1].Ancestor, ast.Steps[2].Slot))

	ast = MustCompile(`Account.Order.Product.{"name": %.OrderID}`).AST()
	product := ast.Steps[2]
	qt.Assert(t, qt.IsNotNil(product.Ancestor))

	ast = MustCompile("a.b.%.%").AST()
	qt.Assert(t, qt.IsNotNil(ast.Steps[0].Ancestor))

	ast = MustCompile("a[%.b]").AST()
	qt.Assert(t, qt.IsNotNil(ast.Steps[0].Ancestor))
}

func TestTailCalls(t *testing.T) {
	ast := MustCompile("function($n){$f($n)}").AST()
	qt.Assert(t, qt.IsTrue(ast.Body.Thunk))
	qt.Assert(t, qt.Equals(ast.Body.Body.Type, types.NodeFunction))

	ast = MustCompile("function($n){$n > 0 ? $f($n - 1) : 0}").AST()
	qt.Assert(t, qt.IsTrue(ast.Body.Then.Thunk))
	qt.Assert(t, qt.Equals(ast.Body.Else.Type, types.NodeNumber))

	ast = MustCompile("function($n){($x := 1; $f($x))}").AST()
	qt.Assert(t, qt.IsTrue(ast.Body.Expressions[1].Thunk))

	ast = MustCompile("function($n){$f($n)[0]}").AST()
	qt.Assert(t, qt.IsFalse(ast.Body.Thunk))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		input string
		want  types.ErrorCode
	}{
		{"%", types.ErrUnresolvedAncestor},
		{"a.%.%", types.ErrUnresolvedAncestor},
		{"%.a", types.ErrUnresolvedAncestor},
		{"a.1", types.ErrLiteralStep},
		{"a.true", types.ErrLiteralStep},
		{`${"a": 1}[0]`, types.ErrPredicateAfterGroup},
		{`${"a": 1}{"b": 2}`, types.ErrDoubleGroup},
		{"a[0]@$x", types.ErrFocusAfterPredicate},
		{"a^(b)@$x", types.ErrFocusAfterSort},
		{"1 +", types.ErrUnexpectedEnd},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := Compile(test.input)
			qt.Assert(t, qt.IsNotNil(err))
			qt.Assert(t, qt.Equals(errorCode(err), test.want))
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	qt.Assert(t, qt.PanicMatches(func() {
		MustCompile("(")
	}, `compiler: Compile\(\(\): .*`))
}
