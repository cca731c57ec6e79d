package docstore

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind: тип значения атрибута документа.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindList
	KindMap
)

// AttributeValue: типизированное значение документа. Числа хранятся десятичной строкой,
// чтобы не терять точность денежных сумм.
type AttributeValue struct {
	Kind Kind
	S    string
	N    string
	BOOL bool
	L    []AttributeValue
	M    map[string]AttributeValue
}

// Document: документ хранилища: плоская карта атрибутов верхнего уровня.
type Document map[string]AttributeValue

// String создаёт строковый атрибут.
func String(s string) AttributeValue { return AttributeValue{Kind: KindString, S: s} }

// Number создаёт числовой атрибут из десятичной строки.
func Number(n string) AttributeValue { return AttributeValue{Kind: KindNumber, N: n} }

// Int создаёт числовой атрибут из целого.
func Int(n int64) AttributeValue { return Number(strconv.FormatInt(n, 10)) }

// Bool создаёт логический атрибут.
func Bool(b bool) AttributeValue { return AttributeValue{Kind: KindBool, BOOL: b} }

// List создаёт атрибут-список.
func List(values ...AttributeValue) AttributeValue {
	if values == nil {
		values = []AttributeValue{}
	}
	return AttributeValue{Kind: KindList, L: values}
}

// Map создаёт вложенную карту.
func Map(values map[string]AttributeValue) AttributeValue {
	if values == nil {
		values = map[string]AttributeValue{}
	}
	return AttributeValue{Kind: KindMap, M: values}
}

// Scalar возвращает строковое представление скалярного значения и признак скаляра.
func (v AttributeValue) Scalar() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.S, true
	case KindNumber:
		return v.N, true
	case KindBool:
		return strconv.FormatBool(v.BOOL), true
	default:
		return "", false
	}
}

// Equal сравнивает значения с учётом типа.
func (v AttributeValue) Equal(other AttributeValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindList:
		if len(v.L) != len(other.L) {
			return false
		}
		for i := range v.L {
			if !v.L[i].Equal(other.L[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.M) != len(other.M) {
			return false
		}
		for key, value := range v.M {
			o, ok := other.M[key]
			if !ok || !value.Equal(o) {
				return false
			}
		}
		return true
	default:
		a, _ := v.Scalar()
		b, _ := other.Scalar()
		return a == b
	}
}

// Clone делает глубокую копию значения.
func (v AttributeValue) Clone() AttributeValue {
	switch v.Kind {
	case KindList:
		out := make([]AttributeValue, len(v.L))
		for i := range v.L {
			out[i] = v.L[i].Clone()
		}
		return AttributeValue{Kind: KindList, L: out}
	case KindMap:
		out := make(map[string]AttributeValue, len(v.M))
		for key, value := range v.M {
			out[key] = value.Clone()
		}
		return AttributeValue{Kind: KindMap, M: out}
	default:
		return v
	}
}

// Clone делает глубокую копию документа.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for key, value := range d {
		out[key] = value.Clone()
	}
	return out
}

type attributeJSON struct {
	S    *string                   `json:"S,omitempty"`
	N    *string                   `json:"N,omitempty"`
	BOOL *bool                     `json:"BOOL,omitempty"`
	L    []AttributeValue          `json:"L,omitempty"`
	M    map[string]AttributeValue `json:"M,omitempty"`
}

// MarshalJSON кодирует значение в конверт вида {"S":"..."} / {"N":"..."} / {"L":[...]}.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(attributeJSON{S: &v.S})
	case KindNumber:
		return json.Marshal(attributeJSON{N: &v.N})
	case KindBool:
		return json.Marshal(attributeJSON{BOOL: &v.BOOL})
	case KindList:
		if len(v.L) == 0 {
			return []byte(`{"L":[]}`), nil
		}
		return json.Marshal(attributeJSON{L: v.L})
	case KindMap:
		if len(v.M) == 0 {
			return []byte(`{"M":{}}`), nil
		}
		return json.Marshal(attributeJSON{M: v.M})
	default:
		return nil, fmt.Errorf("marshal attribute: unknown kind %d", v.Kind)
	}
}

// UnmarshalJSON разбирает конверт значения.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal attribute: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("unmarshal attribute: expected exactly one type key, got %d", len(raw))
	}

	for key, body := range raw {
		switch key {
		case "S":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("unmarshal string attribute: %w", err)
			}
			*v = String(s)
		case "N":
			var n string
			if err := json.Unmarshal(body, &n); err != nil {
				return fmt.Errorf("unmarshal number attribute: %w", err)
			}
			*v = Number(n)
		case "BOOL":
			var b bool
			if err := json.Unmarshal(body, &b); err != nil {
				return fmt.Errorf("unmarshal bool attribute: %w", err)
			}
			*v = Bool(b)
		case "L":
			var l []AttributeValue
			if err := json.Unmarshal(body, &l); err != nil {
				return fmt.Errorf("unmarshal list attribute: %w", err)
			}
			*v = List(l...)
		case "M":
			var m map[string]AttributeValue
			if err := json.Unmarshal(body, &m); err != nil {
				return fmt.Errorf("unmarshal map attribute: %w", err)
			}
			*v = Map(m)
		default:
			return fmt.Errorf("unmarshal attribute: unknown type key %q", key)
		}
	}
	return nil
}
