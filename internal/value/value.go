// Package value implements the untyped JSON-like value tree shared by event
// payloads, rule constants, and extracted variables throughout the matcher.
package value

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// jsonMarshal renders Values to their deterministic JSON-like string form.
// UseProtoNames keeps map keys verbatim instead of camel-casing them.
var jsonMarshal = protojson.MarshalOptions{
	UseProtoNames: true,
}

// Kind tags the variant currently held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
)

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
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged variant over null, bool, number (float64), string, an
// ordered array of Values, and a string-keyed map of Values. It is backed by
// structpb.Value, which already models this exact shape and gives the
// interpolator a canonical, deterministic JSON rendering for free.
type Value struct {
	pb *structpb.Value
}

// Null returns the null Value.
func Null() Value { return Value{pb: structpb.NewNullValue()} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{pb: structpb.NewBoolValue(b)} }

// Number wraps a float64.
func Number(n float64) Value { return Value{pb: structpb.NewNumberValue(n)} }

// Int wraps an integer as a number Value. It is stored as a float64 exactly
// like Number; no separate integer tag is kept. String prints any integral
// number without a fractional part.
func Int(n int64) Value { return Value{pb: structpb.NewNumberValue(float64(n))} }

// String wraps a string.
func String(s string) Value { return Value{pb: structpb.NewStringValue(s)} }

// Array builds an array Value from elements.
func Array(elems ...Value) Value {
	vals := make([]*structpb.Value, len(elems))
	for i, e := range elems {
		vals[i] = e.proto()
	}
	return Value{pb: structpb.NewListValue(&structpb.ListValue{Values: vals})}
}

// Map builds a map Value from a Go map. Key order is not semantically
// significant and insertion order is not kept; String and Equal sort the
// keys, so rendering is deterministic.
func Map(m map[string]Value) Value {
	fields := make(map[string]*structpb.Value, len(m))
	for k, v := range m {
		fields[k] = v.proto()
	}
	return Value{pb: structpb.NewStructValue(&structpb.Struct{Fields: fields})}
}

func (v Value) proto() *structpb.Value {
	if v.pb == nil {
		return structpb.NewNullValue()
	}
	return v.pb
}

// IsZero reports whether v is the Go zero value (treated as null).
func (v Value) IsZero() bool { return v.pb == nil }

// Kind reports the tag currently held by v.
func (v Value) Kind() Kind {
	if v.pb == nil {
		return KindNull
	}
	switch v.pb.GetKind().(type) {
	case *structpb.Value_NullValue, nil:
		return KindNull
	case *structpb.Value_BoolValue:
		return KindBool
	case *structpb.Value_NumberValue:
		return KindNumber
	case *structpb.Value_StringValue:
		return KindString
	case *structpb.Value_ListValue:
		return KindArray
	case *structpb.Value_StructValue:
		return KindMap
	default:
		return KindNull
	}
}

// AsBool returns the boolean value and whether v held one.
func (v Value) AsBool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.pb.GetBoolValue(), true
}

// AsNumber returns the numeric value and whether v held one.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}
	return v.pb.GetNumberValue(), true
}

// AsString returns the string value and whether v held one.
func (v Value) AsString() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.pb.GetStringValue(), true
}

// AsArray returns the element slice and whether v held an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind() != KindArray {
		return nil, false
	}
	list := v.pb.GetListValue().GetValues()
	out := make([]Value, len(list))
	for i, e := range list {
		out[i] = Value{pb: e}
	}
	return out, true
}

// AsMap returns the field map and whether v held a map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.Kind() != KindMap {
		return nil, false
	}
	fields := v.pb.GetStructValue().GetFields()
	out := make(map[string]Value, len(fields))
	for k, f := range fields {
		out[k] = Value{pb: f}
	}
	return out, true
}

// Index returns the array element at i, or Missing if v is not an array or
// i is out of range.
func (v Value) Index(i int) (Value, bool) {
	arr, ok := v.AsArray()
	if !ok || i < 0 || i >= len(arr) {
		return Value{}, false
	}
	return arr[i], true
}

// Key returns the map field named key, or Missing if v is not a map or the
// key is absent.
func (v Value) Key(key string) (Value, bool) {
	m, ok := v.AsMap()
	if !ok {
		return Value{}, false
	}
	f, ok := m[key]
	return f, ok
}

// Equal reports deep structural equality.
func (v Value) Equal(other Value) bool {
	return proto_Equal(v.proto(), other.proto())
}

func proto_Equal(a, b *structpb.Value) bool {
	if a.GetKind() == nil && b.GetKind() == nil {
		return true
	}
	am, _ := protojson.Marshal(a)
	bm, _ := protojson.Marshal(b)
	return bytes.Equal(normalizeJSON(am), normalizeJSON(bm))
}

func normalizeJSON(b []byte) []byte {
	// protojson is not guaranteed to produce stable map key ordering;
	// route through our own deterministic renderer for comparison.
	return []byte(renderJSONBytes(b))
}

func renderJSONBytes(b []byte) string {
	// Cheap normalization: re-marshal through structpb to sort struct keys.
	var v structpb.Value
	if err := protojson.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	return canonicalString(Value{pb: &v})
}

// String renders v in the "natural" display form used by the interpolator:
// strings/numbers format naturally, booleans as true/false, null as empty,
// arrays/maps as deterministic JSON-like text.
func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case KindNumber:
		n, _ := v.AsNumber()
		return formatNumber(n)
	case KindString:
		s, _ := v.AsString()
		return s
	case KindArray, KindMap:
		return canonicalString(v)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// canonicalString renders arrays/maps deterministically with sorted map
// keys, giving interpolated output a stable JSON-like form.
func canonicalString(v Value) string {
	var buf bytes.Buffer
	writeCanonical(&buf, v)
	return buf.String()
}

func writeCanonical(buf *bytes.Buffer, v Value) {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case KindNumber:
		n, _ := v.AsNumber()
		buf.WriteString(formatNumber(n))
	case KindString:
		s, _ := v.AsString()
		buf.WriteString(strconv.Quote(s))
	case KindArray:
		arr, _ := v.AsArray()
		buf.WriteByte('[')
		for i, e := range arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, e)
		}
		buf.WriteByte(']')
	case KindMap:
		m, _ := v.AsMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteByte(':')
			writeCanonical(buf, m[k])
		}
		buf.WriteByte('}')
	}
}

// MarshalJSON implements json.Marshaler via protojson.
func (v Value) MarshalJSON() ([]byte, error) {
	return jsonMarshal.Marshal(v.proto())
}

// UnmarshalJSON implements json.Unmarshaler via protojson.
func (v *Value) UnmarshalJSON(data []byte) error {
	var pb structpb.Value
	if err := protojson.Unmarshal(data, &pb); err != nil {
		return fmt.Errorf("value: invalid JSON: %w", err)
	}
	v.pb = &pb
	return nil
}

// FromAny converts a decoded Go value (as produced by encoding/json's
// interface{} unmarshaling, or hand-built literals in tests) into a Value.
func FromAny(a any) (Value, error) {
	pb, err := structpb.NewValue(a)
	if err != nil {
		return Value{}, fmt.Errorf("value: %w", err)
	}
	return Value{pb: pb}, nil
}

// ToAny returns the plain Go representation (nil/bool/float64/string/
// []any/map[string]any) matching encoding/json's decoding convention.
func (v Value) ToAny() any {
	return v.proto().AsInterface()
}
