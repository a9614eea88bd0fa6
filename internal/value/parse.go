package value

import (
	"strings"

	"github.com/valyala/fastjson"

	"github.com/jsonatlas/jsonatlas/internal/errors"
)

// ParseBytes parses a single JSON document into a Value. Object key
// order follows the document. Invalid JSON comes back as a parsing
// AppError; once parsing succeeds every downstream transform is total.
func ParseBytes(b []byte) (Value, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(b)
	if err != nil {
		return Value{}, errors.NewParsingError("failed to parse JSON document", errors.ErrInvalidJSON)
	}
	return FromFastJSON(v)
}

// ParseString parses a single JSON document from a string.
func ParseString(s string) (Value, error) {
	if strings.TrimSpace(s) == "" {
		return Value{}, errors.NewParsingError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(s))
}

// FromFastJSON converts an already parsed fastjson value. fastjson
// bounds nesting depth itself, so the conversion can recurse safely.
func FromFastJSON(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeNumber:
		n, err := v.Float64()
		if err != nil {
			return Value{}, errors.NewParsingError("failed to read number", err)
		}
		return Number(n), nil
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return Value{}, errors.NewParsingError("failed to read string", err)
		}
		return String(string(s)), nil
	case fastjson.TypeArray:
		a, err := v.Array()
		if err != nil {
			return Value{}, errors.NewParsingError("failed to read array", err)
		}
		items := make([]Value, len(a))
		for i, e := range a {
			items[i], err = FromFastJSON(e)
			if err != nil {
				return Value{}, err
			}
		}
		return Array(items...), nil
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return Value{}, errors.NewParsingError("failed to read object", err)
		}
		var members []Member
		var visitErr error
		// Visit walks members in document order, which is what keeps
		// object member ordering intact end to end.
		o.Visit(func(key []byte, fv *fastjson.Value) {
			if visitErr != nil {
				return
			}
			child, childErr := FromFastJSON(fv)
			if childErr != nil {
				visitErr = childErr
				return
			}
			members = append(members, Member{Key: string(key), Value: child})
		})
		if visitErr != nil {
			return Value{}, visitErr
		}
		return Object(members...), nil
	}

	panic("value: should be unreachable")
}
