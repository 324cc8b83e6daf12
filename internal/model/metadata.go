package model

import (
	"encoding/json"
	"reflect"
)

// Metadata is a free-form metadata record attached to a graph, node or edge.
type Metadata map[string]any

// Clone returns a shallow copy of m. A nil record clones to an empty one.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a shallow copy of m with every key of patch written over it.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := m.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// isArray reports whether v is a sequence value.
func isArray(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// primitiveType names the primitive type of v the way a dynamically typed
// host reports it: sequences, maps and nil all report "object".
func primitiveType(v any) string {
	switch v.(type) {
	case nil:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Func:
		return "function"
	}
	return "object"
}

// describeType is the type name reported in mismatch errors.
func describeType(v any) string {
	if isArray(v) {
		return "array"
	}
	return primitiveType(v)
}

// cloneDefault copies slice and map defaults one level deep so entities never
// share a mutable default value.
func cloneDefault(v any) any {
	switch d := v.(type) {
	case []any:
		out := make([]any, len(d))
		copy(out, d)
		return out
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, val := range d {
			out[k] = val
		}
		return out
	case Metadata:
		return d.Clone()
	}
	return v
}
