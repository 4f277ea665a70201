// Package jsonval provides an order-preserving JSON document type
// and a path engine for reading and materializing values in it.
package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Kind is the type of a JSON value.
type Kind int

// Possible kinds of a JSON value.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value. Objects preserve the insertion order of their keys,
// numbers keep their source representation.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []*Value
	obj  *Object
}

// Null returns a JSON null.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a JSON boolean.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Number returns a JSON number.
func Number(n json.Number) *Value { return &Value{kind: KindNumber, num: n} }

// Int returns a JSON number holding the given integer.
func Int(i int64) *Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// String returns a JSON string.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// NewArray returns a JSON array with the given elements.
func NewArray(elems ...*Value) *Value { return &Value{kind: KindArray, arr: elems} }

// NewObject returns an empty JSON object.
func NewObject() *Value { return &Value{kind: KindObject, obj: &Object{}} }

// Kind returns the kind of the value.
func (v *Value) Kind() Kind { return v.kind }

// Append adds elements to the end of an array value.
func (v *Value) Append(elems ...*Value) { v.arr = append(v.arr, elems...) }

// BoolValue returns the boolean held by the value.
func (v *Value) BoolValue() bool { return v.b }

// NumberValue returns the number held by the value.
func (v *Value) NumberValue() json.Number { return v.num }

// StringValue returns the string held by the value.
func (v *Value) StringValue() string { return v.str }

// Array returns the elements of an array value.
func (v *Value) Array() []*Value { return v.arr }

// Object returns the object held by the value, nil if the value
// is not an object.
func (v *Value) Object() *Object { return v.obj }

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	switch v.kind {
	case KindArray:
		elems := make([]*Value, len(v.arr))
		for i, e := range v.arr {
			elems[i] = e.Clone()
		}
		return &Value{kind: KindArray, arr: elems}
	case KindObject:
		obj := &Object{}
		for _, k := range v.obj.Keys() {
			child, _ := v.obj.Get(k)
			obj.Set(k, child.Clone())
		}
		return &Value{kind: KindObject, obj: obj}
	default:
		cp := *v
		return &cp
	}
}

// Equal reports whether two values are structurally equal,
// including the key order of objects.
func (v *Value) Equal(other *Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		lk, rk := v.obj.Keys(), other.obj.Keys()
		if len(lk) != len(rk) {
			return false
		}
		for i := range lk {
			if lk[i] != rk[i] {
				return false
			}
			lv, _ := v.obj.Get(lk[i])
			rv, _ := other.obj.Get(rk[i])
			if !lv.Equal(rv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns the JSON representation of the value.
func (v *Value) String() string {
	bts, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid json value: %v>", err)
	}
	return string(bts)
}

// MarshalJSON serializes the value, preserving the key order of objects.
func (v *Value) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := v.encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if v.num == "" {
			buf.WriteString("0")
			break
		}
		buf.WriteString(v.num.String())
	case KindString:
		bts, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(bts)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.obj.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			bts, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(bts)
			buf.WriteByte(':')
			child, _ := v.obj.Get(k)
			if err := child.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown kind: %d", v.kind)
	}
	return nil
}

// Parse decodes a single JSON value from the reader, preserving
// the key order of objects.
func Parse(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := parseNext(dec)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// ParseBytes decodes a single JSON value from the given bytes.
func ParseBytes(bts []byte) (*Value, error) { return Parse(bytes.NewReader(bts)) }

func parseNext(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch tok := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(tok), nil
	case json.Number:
		return Number(tok), nil
	case string:
		return String(tok), nil
	case json.Delim:
		switch tok {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", tok)
		}
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (*Value, error) {
	obj := NewObject()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read object token: %w", err)
		}

		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return obj, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}

		child, err := parseNext(dec)
		if err != nil {
			return nil, fmt.Errorf("parse value of key %q: %w", key, err)
		}

		obj.obj.Set(key, child)
	}
}

func parseArray(dec *json.Decoder) (*Value, error) {
	arr := NewArray()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read array token: %w", err)
		}

		if delim, ok := tok.(json.Delim); ok && delim == ']' {
			return arr, nil
		}

		elem, err := parseToken(dec, tok)
		if err != nil {
			return nil, fmt.Errorf("parse element #%d: %w", len(arr.arr), err)
		}

		arr.arr = append(arr.arr, elem)
	}
}

// Object is a JSON object that preserves the insertion order of its keys.
type Object struct {
	keys []string
	vals map[string]*Value
}

// Len returns the number of keys in the object.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys of the object in insertion order.
func (o *Object) Keys() []string { return o.keys }

// Get returns the value stored under the given key.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Set stores the value under the given key. An existing key
// keeps its position.
func (o *Object) Set(key string, v *Value) {
	if o.vals == nil {
		o.vals = map[string]*Value{}
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}
