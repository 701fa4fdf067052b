package evaluator

import (
	"context"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/sandrolain/jsonata/pkg/types"
)

// roundContext rounds half to even. The precision only bounds the digits
// of intermediate results; float64 values never come close to it.
var roundContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(1000)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// roundHalfEven rounds f to precision decimal places, counting from the
// decimal point; a negative precision rounds to tens, hundreds and so on.
// Rounding works on the shortest decimal form of f, so 2.675 rounds to
// 2.68 at two places.
func roundHalfEven(f float64, precision int) (float64, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f, nil
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return 0, err
	}
	if _, err := roundContext.Quantize(&d, &d, int32(-precision)); err != nil {
		return 0, err
	}
	r, err := d.Float64()
	if err != nil {
		return 0, err
	}
	if r == 0 {
		// no negative zero
		return 0, nil
	}
	return r, nil
}

func fnRound(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	f, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	precision := 0
	if p, ok := argAt(args, 1).(float64); ok {
		precision = int(p)
	}
	return roundHalfEven(f, precision)
}

func fnFloor(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	f, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	return math.Floor(f), nil
}

func fnCeil(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	f, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	return math.Ceil(f), nil
}

func fnAbs(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	f, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	return math.Abs(f), nil
}

func fnSqrt(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	f, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	if f < 0 {
		return nil, types.NewError(types.ErrSqrtNegative, "", -1).WithValue(f)
	}
	return math.Sqrt(f), nil
}

func fnPower(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	base, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	exp, _ := args[1].(float64)
	r := math.Pow(base, exp)
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return nil, types.NewError(types.ErrPowerNotRepresented, "", -1).WithValue(base).WithToken(types.FormatNumber(exp))
	}
	return r, nil
}

func fnRandom(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return rand.Float64(), nil
}

var numericString = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([Ee][-+]?[0-9]+)?$`)

// fnNumber casts strings and booleans to numbers. Strings must be JSON
// numbers, or integers with a 0x, 0o or 0b prefix.
func fnNumber(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		if numericString.MatchString(v) {
			f, err := strconv.ParseFloat(v, 64)
			if err == nil && !math.IsInf(f, 0) {
				return f, nil
			}
		} else if len(v) > 2 && v[0] == '0' && strings.ContainsRune("xXoObB", rune(v[1])) {
			n, err := strconv.ParseInt(v, 0, 64)
			if err == nil {
				return float64(n), nil
			}
		}
	}
	return nil, types.NewError(types.ErrNumberConversion, "", -1).WithValue(args[0])
}

// fnFormatBase renders an integer in radix 2 to 36, rounding the number
// half to even first.
func fnFormatBase(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	f, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	f, err := roundHalfEven(f, 0)
	if err != nil {
		return nil, err
	}
	radix := 10
	if r, ok := argAt(args, 1).(float64); ok {
		radix = int(r)
	}
	if radix < 2 || radix > 36 {
		return nil, types.NewError(types.ErrFormatBaseRadix, "", -1).WithValue(float64(radix))
	}
	return strconv.FormatInt(int64(f), radix), nil
}
