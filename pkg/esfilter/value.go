package esfilter

import (
	"encoding/json"
	"reflect"
)

// Kind is the shape of a filter value
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is a filter value: null, a scalar (string, number, bool) or an
// ordered list of scalars. The zero Value is null.
type Value struct {
	kind   Kind
	scalar interface{}
	list   []interface{}
}

// Null returns the null value
func Null() Value {
	return Value{}
}

// Scalar wraps a single string, number or boolean
func Scalar(v interface{}) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

// List wraps an ordered sequence of scalars. An empty list is still a list.
func List(vs ...interface{}) Value {
	if vs == nil {
		vs = []interface{}{}
	}
	return Value{kind: KindList, list: vs}
}

// ValueOf decides the shape of an arbitrary Go value once: nil is null,
// slices and arrays (except []byte) are lists, everything else is a scalar.
func ValueOf(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case []interface{}:
		if t == nil {
			return Null()
		}
		return List(t...)
	case []string:
		if t == nil {
			return Null()
		}
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return List(out...)
	case []byte:
		return Scalar(string(t))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return List(out...)
	case reflect.Ptr:
		if rv.IsNil() {
			return Null()
		}
		return ValueOf(rv.Elem().Interface())
	}
	return Scalar(v)
}

// Kind reports the shape of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Scalar returns the wrapped scalar, or nil for null and list values
func (v Value) Scalar() interface{} {
	return v.scalar
}

// List returns a copy of the wrapped list, or nil for null and scalar values
func (v Value) List() []interface{} {
	if v.kind != KindList {
		return nil
	}
	out := make([]interface{}, len(v.list))
	copy(out, v.list)
	return out
}

// Interface returns the plain Go form of the value, as it is rendered
// into a clause payload.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		return v.List()
	}
	return nil
}

// MarshalJSON renders the value as JSON null, a scalar or an array
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
