package localeflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is a JSON null.
	KindNull Kind = iota
	// KindString is a JSON string.
	KindString
	// KindNumber is a JSON number, kept as its original literal.
	KindNumber
	// KindBool is a JSON boolean.
	KindBool
	// KindObject is a JSON object with insertion-ordered keys.
	KindObject
	// KindArray is a JSON array.
	KindArray
)

// Value is a node in a content document tree. It models arbitrary JSON while
// preserving object key order, which keeps serialization stable across
// decode/encode round trips.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	keys []string
	obj  map[string]*Value
	arr  []*Value
}

// NewString returns a string Value.
func NewString(s string) *Value {
	return &Value{kind: KindString, str: s}
}

// NewNumber returns a number Value holding the given literal.
func NewNumber(n json.Number) *Value {
	return &Value{kind: KindNumber, num: n}
}

// NewBool returns a boolean Value.
func NewBool(b bool) *Value {
	return &Value{kind: KindBool, b: b}
}

// Null returns a null Value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// NewObject returns an empty object Value.
func NewObject() *Value {
	return &Value{kind: KindObject, obj: make(map[string]*Value)}
}

// NewArray returns an array Value containing the given elements.
func NewArray(elems ...*Value) *Value {
	return &Value{kind: KindArray, arr: elems}
}

// Kind returns the variant of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// Text returns the string payload. It is only meaningful for KindString.
func (v *Value) Text() string {
	return v.str
}

// Number returns the numeric literal. It is only meaningful for KindNumber.
func (v *Value) Number() json.Number {
	return v.num
}

// Bool returns the boolean payload. It is only meaningful for KindBool.
func (v *Value) Bool() bool {
	return v.b
}

// Keys returns the object's keys in insertion order. Nil for non-objects.
func (v *Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Get looks up a key in an object value.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	child, ok := v.obj[key]
	return child, ok
}

// Set inserts or replaces a key in an object value. New keys are appended to
// the key order; existing keys keep their position.
func (v *Value) Set(key string, child *Value) {
	if v.kind != KindObject {
		panic("localeflow: Set called on non-object value")
	}
	if _, exists := v.obj[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.obj[key] = child
}

// Delete removes a key from an object value. It is a no-op when the key is
// absent or the value is not an object.
func (v *Value) Delete(key string) {
	if v.kind != KindObject {
		return
	}
	if _, exists := v.obj[key]; !exists {
		return
	}
	delete(v.obj, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of object keys or array elements.
func (v *Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.keys)
	case KindArray:
		return len(v.arr)
	default:
		return 0
	}
}

// Items returns the array elements. Nil for non-arrays.
func (v *Value) Items() []*Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Index returns the i-th array element, or nil when out of range.
func (v *Value) Index(i int) *Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// Append adds an element to an array value.
func (v *Value) Append(child *Value) {
	if v.kind != KindArray {
		panic("localeflow: Append called on non-array value")
	}
	v.arr = append(v.arr, child)
}

// setIndex replaces the i-th array element.
func (v *Value) setIndex(i int, child *Value) {
	v.arr[i] = child
}

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{kind: v.kind, str: v.str, num: v.num, b: v.b}
	switch v.kind {
	case KindObject:
		out.keys = make([]string, len(v.keys))
		copy(out.keys, v.keys)
		out.obj = make(map[string]*Value, len(v.obj))
		for k, child := range v.obj {
			out.obj[k] = child.Clone()
		}
	case KindArray:
		out.arr = make([]*Value, len(v.arr))
		for i, child := range v.arr {
			out.arr[i] = child.Clone()
		}
	}
	return out
}

// Equal reports whether two values hold the same logical content. Object key
// order is ignored; number literals are compared verbatim.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, child := range v.obj {
			oc, ok := other.obj[k]
			if !ok || !child.Equal(oc) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i, child := range v.arr {
			if !child.Equal(other.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value as compact JSON. Used for debugging output.
func (v *Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}

// MarshalJSON encodes the value with object keys in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendCanonical appends the canonical serialization of the value: compact
// JSON with object keys sorted lexicographically. Two logically identical
// documents always produce the same canonical bytes regardless of their
// in-memory key insertion order.
func (v *Value) AppendCanonical(buf *bytes.Buffer) error {
	return v.encode(buf, true)
}

func (v *Value) encode(buf *bytes.Buffer, canonical bool) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		data, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindNumber:
		if v.num == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(string(v.num))
		}
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindObject:
		keys := v.keys
		if canonical {
			keys = make([]string, len(v.keys))
			copy(keys, v.keys)
			sort.Strings(keys)
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyData, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyData)
			buf.WriteByte(':')
			if err := v.obj[k].encode(buf, canonical); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, child := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := child.encode(buf, canonical); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("localeflow: unknown value kind %d", v.kind)
	}
	return nil
}

// UnmarshalJSON decodes JSON into the value, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// ParseDocument decodes a JSON document into a Value tree. Object key order
// is preserved as it appears in the input; numbers keep their literal form.
func ParseDocument(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	// Reject trailing content after the first value.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing document: unexpected trailing content")
	}

	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", kt)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
