package evaluator

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/sandrolain/jsonata/pkg/types"
)

func TestValidateArgs(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		args      []interface{}
		input     interface{}
		want      []interface{}
		code      types.ErrorCode
	}{{
		name:      "exact",
		signature: "<s-nn?:s>",
		args:      []interface{}{"abc", 1.0},
		want:      []interface{}{"abc", 1.0, nil},
	}, {
		name:      "context substituted",
		signature: "<s-:s>",
		args:      []interface{}{},
		input:     "ctx",
		want:      []interface{}{"ctx"},
	}, {
		name:      "context of wrong type",
		signature: "<s-:s>",
		args:      []interface{}{},
		input:     1.0,
		code:      types.ErrContextMismatch,
	}, {
		name:      "scalar promoted to array",
		signature: "<a<n>:n>",
		args:      []interface{}{3.0},
		want:      []interface{}{[]interface{}{3.0}},
	}, {
		name:      "undefined array",
		signature: "<a:n>",
		args:      []interface{}{nil},
		want:      []interface{}{nil},
	}, {
		name:      "array item mismatch",
		signature: "<a<n>:n>",
		args:      []interface{}{[]interface{}{1.0, "x"}},
		code:      types.ErrArrayItemType,
	}, {
		name:      "wrong type",
		signature: "<n:n>",
		args:      []interface{}{"x"},
		code:      types.ErrArgumentMismatch,
	}, {
		name:      "too many",
		signature: "<n:n>",
		args:      []interface{}{1.0, 2.0},
		code:      types.ErrArgumentMismatch,
	}, {
		name:      "choice",
		signature: "<(sf):s>",
		args:      []interface{}{"x"},
		want:      []interface{}{"x"},
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sig, err := types.ParseSignature(test.signature)
			qt.Assert(t, qt.IsNil(err))
			got, err := validateArgs(sig, test.args, test.input)
			if test.code != "" {
				qt.Assert(t, qt.Equals(errorCode(err), test.code))
				return
			}
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.DeepEquals(got, test.want))
		})
	}
}

func TestSignatureMismatchPosition(t *testing.T) {
	sig, err := types.ParseSignature("<snb:s>")
	qt.Assert(t, qt.IsNil(err))
	_, err = validateArgs(sig, []interface{}{"a", 1.0, "oops"}, nil)
	var e *types.Error
	qt.Assert(t, qt.ErrorAs(err, &e))
	qt.Assert(t, qt.Equals(e.Code, types.ErrArgumentMismatch))
	qt.Assert(t, qt.Equals(e.Value, interface{}("oops")))
}

func TestFrames(t *testing.T) {
	outer := NewFrame(nil)
	outer.Bind("x", 1.0)
	inner := NewFrame(outer)
	inner.Bind("x", 2.0)
	inner.Bind("y", 3.0)

	v, ok := inner.Lookup("x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(v, interface{}(2.0)))

	v, _ = outer.Lookup("x")
	qt.Assert(t, qt.Equals(v, interface{}(1.0)))

	_, ok = outer.Lookup("y")
	qt.Assert(t, qt.IsFalse(ok))
	qt.Assert(t, qt.Equals(inner.Parent(), outer))
}
