// Package jsontree holds arbitrary JSON values as a closed set of node types.
//
// Object keys keep their document order so that a value read from one backup
// is written back out byte-for-byte comparable, apart from rewritten strings.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Node is one of String, Number, Bool, Null, Array or Object.
type Node interface {
	node()
}

type (
	String string
	// Number keeps the literal text so large integers survive a round trip.
	Number string
	Bool   bool
	Null   struct{}
	Array  []Node
	Object []Field
)

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value Node
}

func (String) node() {}
func (Number) node() {}
func (Bool) node()   {}
func (Null) node()   {}
func (Array) node()  {}
func (Object) node() {}

// Get returns the value stored under key.
func (o Object) Get(key string) (Node, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Parse decodes a single JSON document.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("jsontree: unexpected data after top-level value")
	}
	return n, nil
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("jsontree: object key is %T", keyTok)
				}
				val, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, Field{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				val, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("jsontree: unexpected delimiter %q", v)
	case string:
		return String(v), nil
	case json.Number:
		return Number(v), nil
	case bool:
		return Bool(v), nil
	case nil:
		return Null{}, nil
	}
	return nil, fmt.Errorf("jsontree: unexpected token %T", tok)
}

// Encode renders n as compact JSON. A nil node encodes as null.
func Encode(n Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := encodeNode(&buf, enc, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, enc *json.Encoder, n Node) error {
	switch v := n.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		if err := enc.Encode(string(v)); err != nil {
			return err
		}
		// Encoder terminates each value with a newline.
		buf.Truncate(buf.Len() - 1)
	case Number:
		if !json.Valid([]byte(v)) {
			return fmt.Errorf("jsontree: invalid number %q", string(v))
		}
		buf.WriteString(string(v))
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeNode(buf, enc, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeNode(buf, enc, String(f.Key)); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeNode(buf, enc, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsontree: unsupported node %T", n)
	}
	return nil
}

// FromValue converts any JSON-marshalable Go value into a Node.
func FromValue(v any) (Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
