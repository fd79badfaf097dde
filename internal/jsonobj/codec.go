package jsonobj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// TypeError is returned when a document decodes to something other than an object.
type TypeError struct {
	Found string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected a JSON object, found %s", e.Found)
}

// TypeName names the JSON type of a decoded value.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *Object, map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32, uint, uint64, uint32:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Decode parses a single JSON document. Objects decode to *Object, arrays to []any
// and numbers to json.Number holding the literal text. Input must be valid UTF-8.
// A repeated name keeps its first position and takes the last value.
func Decode(data []byte) (any, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))

	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	if _, err := dec.ReadToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (any, error) {
	switch dec.PeekKind() {
	case '{':
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		obj := New()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(name.String(), v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		arr := []any{}
		for dec.PeekKind() != ']' {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '0':
		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return json.Number(string(raw)), nil
	default:
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		switch tok.Kind() {
		case 'n':
			return nil, nil
		case 't', 'f':
			return tok.Bool(), nil
		case '"':
			return tok.String(), nil
		default:
			return nil, fmt.Errorf("unexpected %v at offset %d", tok.Kind(), dec.InputOffset())
		}
	}
}

// Encode serializes v. With indent > 0 every nesting level is indented by that many
// spaces; with indent 0 the output is compact. Non-ASCII characters, including U+2028
// and U+2029, and HTML characters are written as-is. No trailing newline is added.
func Encode(v any, indent int) ([]byte, error) {
	var opts []jsontext.Options
	if indent > 0 {
		opts = append(opts,
			jsontext.WithIndent(strings.Repeat(" ", indent)),
			jsontext.SpaceAfterColon(true),
		)
	}

	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := encodeValue(enc, v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodeValue(enc *jsontext.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.WriteToken(jsontext.Null)
	case bool:
		return enc.WriteToken(jsontext.Bool(x))
	case json.Number:
		if x == "" {
			return enc.WriteValue(jsontext.Value("0"))
		}
		return enc.WriteValue(jsontext.Value(x))
	case string:
		return enc.WriteToken(jsontext.String(x))
	case *Object:
		if x == nil {
			return enc.WriteToken(jsontext.Null)
		}
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, k := range x.keys {
			if err := enc.WriteToken(jsontext.String(k)); err != nil {
				return err
			}
			if err := encodeValue(enc, x.values[k]); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case []any:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for i, elem := range x {
			if err := encodeValue(enc, elem); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	default:
		return jsonv2.MarshalEncode(enc, x, jsonv2.Deterministic(true))
	}
}
