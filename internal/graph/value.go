package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the value union carried in query result records.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a tagged union over the scalar and container shapes a graph
// query can return. Keeping the set closed lets consumers switch over
// Kind exhaustively instead of duck-typing interface{} results.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

func Null() Value                  { return Value{kind: KindNull} }
func String(s string) Value        { return Value{kind: KindString, str: s} }
func Number(f float64) Value       { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func List(vs ...Value) Value       { return Value{kind: KindList, list: vs} }
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind returns the discriminant.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string payload; ok is false for other kinds.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload; ok is false for other kinds.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsList returns the list payload; ok is false for other kinds.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the map payload; ok is false for other kinds.
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// Floats converts a list of numbers into a float32 vector. Non-list and
// non-numeric elements yield ok=false.
func (v Value) Floats() ([]float32, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]float32, 0, len(v.list))
	for _, el := range v.list {
		n, ok := el.AsNumber()
		if !ok {
			return nil, false
		}
		out = append(out, float32(n))
	}
	return out, true
}

// StringList collects the string elements of a list value, skipping
// everything else.
func (v Value) StringList() []string {
	if v.kind != KindList {
		return nil
	}
	var out []string
	for _, el := range v.list {
		if s, ok := el.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Display renders a value the way result previews show it: lists joined
// with commas (first five elements), numbers without a trailing ".0"
// when integral.
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindNumber:
		if v.num == float64(int64(v.num)) {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		out := ""
		for i, el := range v.list {
			if i >= 5 {
				break
			}
			if i > 0 {
				out += ", "
			}
			out += el.Display()
		}
		return out
	case KindMap:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return ""
}

// Interface converts the value back to plain Go data, used when node
// properties are handed to callers as map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, el := range v.list {
			out[i] = el.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.m))
		for k, el := range v.m {
			out[k] = el.Interface()
		}
		return out
	}
	return nil
}

// UnmarshalJSON decodes arbitrary JSON into the union.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON encodes the union back to plain JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func fromInterface(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case []interface{}:
		list := make([]Value, 0, len(t))
		for _, el := range t {
			pv, err := fromInterface(el)
			if err != nil {
				return Value{}, err
			}
			list = append(list, pv)
		}
		return List(list...), nil
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, el := range t {
			pv, err := fromInterface(el)
			if err != nil {
				return Value{}, err
			}
			m[k] = pv
		}
		return Map(m), nil
	}
	return Value{}, fmt.Errorf("unsupported JSON value of type %T", raw)
}
