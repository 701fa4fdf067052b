package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Null represents the JSON null value, distinct from undefined (nil).
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
// This ensures that Null serializes to JSON null instead of {}.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for JSON null.
var NullValue = Null{}

// Sequence is an array produced during evaluation.
//
// Unlike a plain []interface{}, a Sequence carries the flags that steer
// flattening across path steps and the unwrapping of singleton results.
// Sequences never escape an evaluation: results are converted with Plain.
type Sequence struct {
	Items []interface{}

	// Array marks a constructed array ([...]) rather than a result sequence.
	Array bool
	// Cons marks an array constructor in first or last path step position;
	// such arrays are not flattened into the surrounding sequence.
	Cons bool
	// KeepSingleton suppresses unwrapping of a one-item sequence.
	KeepSingleton bool
	// TupleStream marks a sequence of tuple bindings (map[string]interface{}).
	TupleStream bool
	// OuterWrapper marks the singleton wrapping a top-level array input.
	OuterWrapper bool
}

// NewSequence creates a result sequence holding items.
func NewSequence(items ...interface{}) *Sequence {
	return &Sequence{Items: items}
}

// Len returns the number of items.
func (s *Sequence) Len() int {
	return len(s.Items)
}

// Append adds items to the end of the sequence.
func (s *Sequence) Append(items ...interface{}) {
	s.Items = append(s.Items, items...)
}

// IsSequence reports whether s is a result sequence rather than a
// constructed array.
func (s *Sequence) IsSequence() bool {
	return !s.Array
}

// MarshalJSON renders the items as a JSON array.
func (s *Sequence) MarshalJSON() ([]byte, error) {
	if s.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Items)
}

// Plain converts a result value for callers outside the engine: sequences
// become []interface{}, recursively. Containers without sequences are
// returned unchanged.
func Plain(v interface{}) interface{} {
	out, _ := plain(v)
	return out
}

func plain(v interface{}) (interface{}, bool) {
	switch t := v.(type) {
	case *Sequence:
		items := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			items[i], _ = plain(item)
		}
		return items, true
	case []interface{}:
		var out []interface{}
		for i, item := range t {
			p, changed := plain(item)
			if changed && out == nil {
				out = make([]interface{}, len(t))
				copy(out, t)
			}
			if out != nil {
				out[i] = p
			}
		}
		if out != nil {
			return out, true
		}
		return t, false
	case *OrderedObject:
		var out *OrderedObject
		for _, key := range t.Keys {
			p, changed := plain(t.Values[key])
			if changed && out == nil {
				out = t.Clone()
			}
			if out != nil {
				out.Values[key] = p
			}
		}
		if out != nil {
			return out, true
		}
		return t, false
	case map[string]interface{}:
		var out map[string]interface{}
		for key, item := range t {
			p, changed := plain(item)
			if changed && out == nil {
				out = make(map[string]interface{}, len(t))
				for k, v := range t {
					out[k] = v
				}
			}
			if out != nil {
				out[key] = p
			}
		}
		if out != nil {
			return out, true
		}
		return t, false
	default:
		return v, false
	}
}

// OrderedObject is a JSON object that remembers key insertion order.
// Objects built by the evaluator are always OrderedObjects.
type OrderedObject struct {
	Keys   []string
	Values map[string]interface{}
}

// NewOrderedObject returns an empty object.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{Values: make(map[string]interface{})}
}

// Get retrieves a value by key.
func (o *OrderedObject) Get(key string) (interface{}, bool) {
	value, ok := o.Values[key]
	return value, ok
}

// Set stores a value, appending the key when it is new.
func (o *OrderedObject) Set(key string, value interface{}) {
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = value
}

// Delete removes a key.
func (o *OrderedObject) Delete(key string) {
	if _, ok := o.Values[key]; !ok {
		return
	}
	delete(o.Values, key)
	for i, k := range o.Keys {
		if k == key {
			o.Keys = append(o.Keys[:i:i], o.Keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (o *OrderedObject) Len() int {
	return len(o.Keys)
}

// Clone returns a shallow copy.
func (o *OrderedObject) Clone() *OrderedObject {
	c := &OrderedObject{
		Keys:   append([]string(nil), o.Keys...),
		Values: make(map[string]interface{}, len(o.Values)),
	}
	for k, v := range o.Values {
		c.Values[k] = v
	}
	return c
}

// MarshalJSON preserves key order during marshaling.
func (o *OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valueBytes, err := marshalJSON(o.Values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping; the encoder that
// embeds the result decides on escaping.
func marshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// FormatNumber renders a number with at most 15 significant digits,
// integers without a fraction and exponent notation outside [1e-7, 1e21).
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', 15, 64), 64)
	if err != nil {
		r = f
	}
	abs := math.Abs(r)
	if abs >= 1e21 || abs < 1e-7 {
		s := strconv.FormatFloat(r, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
