package treedoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseJSON parses a JSON object into a document, preserving field order and
// keeping integers and doubles distinct.
func ParseJSON(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse json: top-level value is not an object")
	}

	doc := NewDocument()
	if err := decodeJSONObject(dec, doc.root); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse json: trailing data after document")
	}
	return doc, nil
}

func decodeJSONObject(dec *json.Decoder, parent *Element) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("object key is not a string")
		}
		child, err := decodeJSONValue(dec, key)
		if err != nil {
			return err
		}
		if err := parent.PushBack(child); err != nil {
			return err
		}
	}
	_, err := dec.Token() // consume '}'
	return err
}

func decodeJSONArray(dec *json.Decoder, parent *Element) error {
	for dec.More() {
		child, err := decodeJSONValue(dec, "")
		if err != nil {
			return err
		}
		if err := parent.PushBack(child); err != nil {
			return err
		}
	}
	_, err := dec.Token() // consume ']'
	return err
}

func decodeJSONValue(dec *json.Decoder, name string) (*Element, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			e := NewObject(name)
			return e, decodeJSONObject(dec, e)
		case '[':
			e := NewArray(name)
			return e, decodeJSONArray(dec, e)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return NewString(name, v), nil
	case bool:
		return NewBool(name, v), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return NewInt(name, i), nil
		}
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return NewDouble(name, f), nil
	case nil:
		return NewNull(name), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// MarshalJSON serializes the document as compact JSON in field order.
func MarshalJSON(d *Document) ([]byte, error) {
	return MarshalJSONElement(d.root)
}

// MarshalJSONElement serializes a single element as compact JSON. The
// element's own field name is not included.
func MarshalJSONElement(e *Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, e *Element) error {
	switch e.typ {
	case TypeNull:
		buf.WriteString("null")
	case TypeBool:
		buf.WriteString(strconv.FormatBool(e.b))
	case TypeInt:
		buf.WriteString(strconv.FormatInt(e.i64, 10))
	case TypeDouble:
		s := strconv.FormatFloat(e.f64, 'g', -1, 64)
		// Keep doubles recognizable as doubles on re-parse.
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		buf.WriteString(s)
	case TypeString:
		key, err := json.Marshal(e.str)
		if err != nil {
			return err
		}
		buf.Write(key)
	case TypeObject:
		buf.WriteByte('{')
		for c := e.firstChild; c != nil; c = c.next {
			if c != e.firstChild {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(c.name)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := appendJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case TypeArray:
		buf.WriteByte('[')
		for c := e.firstChild; c != nil; c = c.next {
			if c != e.firstChild {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("cannot marshal element of type %d", e.typ)
	}
	return nil
}
