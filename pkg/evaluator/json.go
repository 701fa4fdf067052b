package evaluator

import (
	"math"
	"strings"

	"github.com/sandrolain/jsonata/pkg/types"
)

// stringify renders a value the way $string does. Strings are returned
// unquoted and functions render as the empty string; anything else is
// serialized as JSON with numbers at 15 significant digits.
func stringify(v interface{}, pretty bool) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case Function:
		return "", nil
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return "", types.NewError(types.ErrSerializeNonFinite, "", -1).WithValue(t)
		}
		return types.FormatNumber(t), nil
	}
	var b strings.Builder
	w := jsonWriter{b: &b, pretty: pretty}
	w.value(v, 0)
	return b.String(), nil
}

type jsonWriter struct {
	b      *strings.Builder
	pretty bool
}

func (w *jsonWriter) newline(depth int) {
	if !w.pretty {
		return
	}
	w.b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		w.b.WriteString("  ")
	}
}

func (w *jsonWriter) value(v interface{}, depth int) {
	if seq, ok := v.(*types.Sequence); ok && seq.OuterWrapper && len(seq.Items) == 1 {
		v = seq.Items[0]
	}
	switch t := v.(type) {
	case nil, types.Null:
		w.b.WriteString("null")
		return
	case string:
		w.b.WriteString(types.QuoteString(t))
		return
	case bool:
		if t {
			w.b.WriteString("true")
		} else {
			w.b.WriteString("false")
		}
		return
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			w.b.WriteString("null")
		} else {
			w.b.WriteString(types.FormatNumber(t))
		}
		return
	case Function:
		w.b.WriteString(`""`)
		return
	}

	if items, ok := arrayItems(v); ok {
		if len(items) == 0 {
			w.b.WriteString("[]")
			return
		}
		w.b.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				w.b.WriteByte(',')
			}
			w.newline(depth + 1)
			w.value(item, depth+1)
		}
		w.newline(depth)
		w.b.WriteByte(']')
		return
	}

	if isObject(v) {
		first := true
		w.b.WriteByte('{')
		for _, k := range objectKeys(v) {
			val, _ := objectGet(v, k)
			if val == nil {
				continue
			}
			if !first {
				w.b.WriteByte(',')
			}
			first = false
			w.newline(depth + 1)
			w.b.WriteString(types.QuoteString(k))
			w.b.WriteByte(':')
			if w.pretty {
				w.b.WriteByte(' ')
			}
			w.value(val, depth+1)
		}
		if !first {
			w.newline(depth)
		}
		w.b.WriteByte('}')
		return
	}
	// values of unknown host types serialize as null
	w.b.WriteString("null")
}
