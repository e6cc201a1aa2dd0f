package goexpr

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes a tree. Terms are encoded as written, not collapsed.
func ToJSON(n Node) (string, error) {
	b, err := json.Marshal(n.toJSON())
	return string(b), err
}

// ToJSONMap returns the generic JSON object for a tree.
func ToJSONMap(n Node) map[string]interface{} { return n.toJSON() }

// ParseJSON decodes a tree from its JSON text.
func ParseJSON(data []byte) (Node, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return FromJSON(m)
}

// FromJSON decodes a tree from a generic JSON object.
func FromJSON(data map[string]interface{}) (Node, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subString := func(field string, allowEmpty bool) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" && !allowEmpty {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	subNodes := func(field string) ([]Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Node, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			n, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = n
		}
		return out, nil
	}

	switch typ {
	case "num":
		v, ok := data["value"].(float64)
		if !ok {
			return nil, fmt.Errorf("num: 'value' must be a number")
		}
		return Num(v), nil

	case "id":
		name, err := subString("name", false)
		if err != nil {
			return nil, err
		}
		return Ident(name), nil

	case "str":
		s, err := subString("value", true)
		if err != nil {
			return nil, err
		}
		return Str(s), nil

	case "space":
		return Sp(), nil

	case "op":
		sym, err := subString("op", false)
		if err != nil {
			return nil, err
		}
		return Op(sym), nil

	case "term":
		items, err := subNodes("items")
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("term: 'items' must not be empty")
		}
		return NewTerm(items...), nil

	case "call":
		fn, err := subString("fn", false)
		if err != nil {
			return nil, err
		}
		args, err := subNodes("args")
		if err != nil {
			return nil, err
		}
		c := FuncCall(fn, args...)
		if imp, _ := data["implicit"].(bool); imp && c.fn == MultiplyOp {
			c.implicit = true
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
