package evaluator

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/jsonata/pkg/types"
)

func fnBase64Encode(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return base64.StdEncoding.EncodeToString([]byte(str)), nil
}

func fnBase64Decode(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		// padding is optional
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(str, "="))
		if err != nil {
			return nil, types.NewError(types.ErrArgumentMismatch, "argument 1 of function is not valid base64", -1).WithValue(str).WithCause(err)
		}
	}
	return string(b), nil
}

const (
	// characters left alone by both URL encoders
	uriUnreserved = "-_.!~*'()"
	// characters that delimit the parts of a URL
	uriReserved = ";,/?:@&=+$#"
)

func fnEncodeURLComponent(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return encodeURI(str, uriUnreserved)
}

func fnEncodeURL(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return encodeURI(str, uriUnreserved+uriReserved)
}

func fnDecodeURLComponent(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return decodeURI(str, "")
}

func fnDecodeURL(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	return decodeURI(str, uriReserved)
}

func malformedURI(str string) error {
	return types.NewError(types.ErrURIMalformed, "", -1).WithValue(str)
}

// encodeURI percent-encodes the UTF-8 bytes of every character of str
// except ASCII letters, digits and the characters in keep.
func encodeURI(str, keep string) (interface{}, error) {
	if !utf8.ValidString(str) {
		return nil, malformedURI(str)
	}
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c < utf8.RuneSelf && (isAlnum(c) || strings.IndexByte(keep, c) >= 0) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0xf])
	}
	return b.String(), nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// decodeURI reverses percent-encoding, leaving escapes of the characters
// in preserve as they are. Escapes must form valid UTF-8.
func decodeURI(str, preserve string) (interface{}, error) {
	var b strings.Builder
	for i := 0; i < len(str); i++ {
		if str[i] != '%' {
			b.WriteByte(str[i])
			continue
		}
		c, ok := unhexByte(str, i)
		if !ok {
			return nil, malformedURI(str)
		}
		if c < utf8.RuneSelf {
			if strings.IndexByte(preserve, c) >= 0 {
				b.WriteString(str[i : i+3])
			} else {
				b.WriteByte(c)
			}
			i += 2
			continue
		}
		// a multi-byte character: collect its continuation escapes
		buf := []byte{c}
		j := i + 3
		for !utf8.FullRune(buf) && len(buf) < utf8.UTFMax {
			next, ok := unhexByte(str, j)
			if !ok {
				return nil, malformedURI(str)
			}
			buf = append(buf, next)
			j += 3
		}
		if r, _ := utf8.DecodeRune(buf); r == utf8.RuneError {
			return nil, malformedURI(str)
		}
		b.Write(buf)
		i = j - 1
	}
	return b.String(), nil
}

func unhexByte(s string, i int) (byte, bool) {
	if i+2 >= len(s) || s[i] != '%' {
		return 0, false
	}
	hi, ok1 := unhex(s[i+1])
	lo, ok2 := unhex(s[i+2])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
