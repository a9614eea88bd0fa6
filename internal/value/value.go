package value

import (
	"encoding/json"
	"fmt"
)

// Kind identifies one of the six JSON shapes. The set is closed: every
// consumer switches over all six and panics on anything else, so a new
// shape can never fall through unhandled.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase JSON type name.
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
	}
	panic(fmt.Sprintf("value: unknown kind %d", int(k)))
}

// MarshalJSON emits the type name so structure tables and graph
// projections serialize as "number", "object", etc.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON reads a type name back into a Kind.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	kind, ok := KindFromString(name)
	if !ok {
		return fmt.Errorf("value: unknown kind %q", name)
	}
	*k = kind
	return nil
}

// KindFromString maps a type name to its Kind.
func KindFromString(name string) (Kind, bool) {
	switch name {
	case "null":
		return KindNull, true
	case "bool":
		return KindBool, true
	case "number":
		return KindNumber, true
	case "string":
		return KindString, true
	case "array":
		return KindArray, true
	case "object":
		return KindObject, true
	}
	return 0, false
}

// Member is a single key/value entry of an object. Objects are ordered
// collections of members, not maps, so document key order survives.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero value is Null.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	s       string
	items   []Value
	members []Member
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Array returns an array value with the given elements in order.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: items}
}

// Object returns an object value with the given members. Key order is
// preserved. Duplicate keys collapse to one member at the position of
// the first occurrence; the last value wins, matching how JSON parsers
// treat repeated keys.
func Object(members ...Member) Value {
	ms := make([]Member, 0, len(members))
	at := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := at[m.Key]; ok {
			ms[i].Value = m.Value
			continue
		}
		at[m.Key] = len(ms)
		ms = append(ms, m)
	}
	return Value{kind: KindObject, members: ms}
}

// Kind reports which of the six shapes this value is.
func (v Value) Kind() Kind {
	return v.kind
}

// AsBool returns the boolean payload. Panics unless Kind is KindBool.
func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic("value: " + v.kind.String() + " is not a bool")
	}
	return v.b
}

// AsNumber returns the numeric payload. Panics unless Kind is KindNumber.
func (v Value) AsNumber() float64 {
	if v.kind != KindNumber {
		panic("value: " + v.kind.String() + " is not a number")
	}
	return v.n
}

// AsString returns the string payload. Panics unless Kind is KindString.
func (v Value) AsString() string {
	if v.kind != KindString {
		panic("value: " + v.kind.String() + " is not a string")
	}
	return v.s
}

// Items returns the elements of an array. Panics unless Kind is KindArray.
// The returned slice must not be mutated.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		panic("value: " + v.kind.String() + " is not an array")
	}
	return v.items
}

// Members returns the ordered members of an object. Panics unless Kind
// is KindObject. The returned slice must not be mutated.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		panic("value: " + v.kind.String() + " is not an object")
	}
	return v.members
}

// IsScalar reports whether the value is a leaf shape (null, bool,
// number or string).
func (v Value) IsScalar() bool {
	switch v.kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	case KindArray, KindObject:
		return false
	}
	panic("value: unreachable kind")
}

// Native converts the value to plain Go data: nil, bool, float64,
// string, []any or map-free ordered []any pairs flattened into a
// map[string]any. Used when handing samples to encoding/json or
// external consumers; structural ordering guarantees do not survive
// this conversion.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Native()
		}
		return out
	}
	panic("value: unreachable kind")
}
