package agentcli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ValueKind identifies which alternative of Value is populated.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is a closed sum type over the JSON data model: null, bool, i64,
// f64, string, array, and object. Control payloads and tool arguments
// cross the wire as arbitrary JSON; Value lets callers pattern-match on
// shape instead of type-asserting a bare interface{}.
//
// The zero Value is KindNull.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// NullValue returns the null Value.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue wraps an int64.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a float64.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ArrayValue wraps a slice of Values. The slice is copied.
func ArrayValue(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// ObjectValue wraps a map of Values. The map is copied.
func ObjectValue(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp}
}

// Kind reports which alternative is populated.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the wrapped bool and whether v is a KindBool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Int returns the wrapped int64 and whether v is a KindInt.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the wrapped float64 and whether v is KindFloat or KindInt
// (integers widen to float on request).
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// String returns the wrapped string and whether v is a KindString.
func (v Value) String() (string, bool) { return v.s, v.kind == KindString }

// Array returns the wrapped slice and whether v is a KindArray. The
// returned slice is not a copy; callers must not mutate it.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Object returns the wrapped map and whether v is a KindObject. The
// returned map is not a copy; callers must not mutate it.
func (v Value) Object() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Equal reports structural equality: same kind and same contents,
// recursively for arrays/objects. Object key order never matters.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
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
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := other.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		return json.Marshal(v.arr)
	case KindObject:
		// Sort keys so repeated marshaling of an equal Value is
		// byte-stable, which the Value marshaling tests rely on.
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for idx, k := range keys {
			if idx > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i)
		}
		f, _ := x.Float64()
		return FloatValue(f)
	case string:
		return StringValue(x)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = fromInterface(e)
		}
		return Value{kind: KindArray, arr: items}
	case map[string]interface{}:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			fields[k] = fromInterface(e)
		}
		return Value{kind: KindObject, obj: fields}
	default:
		return NullValue()
	}
}
