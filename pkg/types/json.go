package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeJSON parses a JSON document into the engine's value model:
// objects become *OrderedObject in document order, arrays []interface{},
// numbers float64 and null NullValue.
func DecodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// DecodeJSONStream reads successive JSON documents from dec.
// It returns io.EOF once the stream is exhausted.
func DecodeJSONStream(dec *json.Decoder) (interface{}, error) {
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewOrderedObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, noEOF(err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return nil, noEOF(err)
				}
				obj.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, noEOF(err)
			}
			return obj, nil
		case '[':
			arr := []interface{}{}
			for dec.More() {
				value, err := decodeValue(dec)
				if err != nil {
					return nil, noEOF(err)
				}
				arr = append(arr, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, noEOF(err)
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case nil:
		return NullValue, nil
	default:
		// string, float64, bool
		return t, nil
	}
}

// noEOF reports the end of input inside a value as unexpected, leaving
// io.EOF to mean that the stream ended between values.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
