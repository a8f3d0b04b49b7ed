package pricing

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	}
	return "null"
}

// Value is a booking context field or a condition operand.
// The zero Value is null, which is what a missing context field looks like.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	list []Value
}

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }

func List(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), items...)}
}

// ValueOf converts decoded JSON/BSON data into a Value.
// Documents and other unsupported types become null.
func ValueOf(a any) Value {
	switch val := a.(type) {
	case nil:
		return Value{}
	case Value:
		return val
	case bool:
		return Bool(val)
	case string:
		return String(val)
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int8:
		return Number(float64(val))
	case int16:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case uint:
		return Number(float64(val))
	case uint8:
		return Number(float64(val))
	case uint16:
		return Number(float64(val))
	case uint32:
		return Number(float64(val))
	case uint64:
		return Number(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return String(val.String())
		}
		return Number(f)
	case []Value:
		return List(val...)
	case primitive.D, primitive.M, map[string]any:
		return Value{}
	}

	// []any, bson arrays (primitive.A), typed slices
	rv := reflect.ValueOf(a)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = ValueOf(rv.Index(i).Interface())
		}
		return Value{kind: KindList, list: items}
	}
	return Value{}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) Items() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Equal is strict: values of different kinds are never equal, null equals nothing.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface returns the plain Go representation (float64, string, bool, []any or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return fmt.Sprint(v.Interface())
	}
	return "null"
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

func (v Value) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.kind == KindNull {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(v.Interface())
}

func (v *Value) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw any
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = ValueOf(raw)
	return nil
}
