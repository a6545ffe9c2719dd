package types

import (
	"fmt"
	"strings"
)

// Kind identifies the decoded type of an entry's values
type Kind int

const (
	KindUnknown Kind = iota
	KindBoolean
	KindInt64
	KindFloat64
	KindString
	KindBooleanArray
	KindInt64Array
	KindFloat64Array
	KindStringArray
	KindRaw
)

// String returns the canonical type string for the kind
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBooleanArray:
		return "boolean[]"
	case KindInt64Array:
		return "int64[]"
	case KindFloat64Array:
		return "float64[]"
	case KindStringArray:
		return "string[]"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// IsArray reports whether the kind holds multiple elements per sample
func (k Kind) IsArray() bool {
	switch k {
	case KindBooleanArray, KindInt64Array, KindFloat64Array, KindStringArray:
		return true
	}
	return false
}

// Value is a tagged union over the kinds a data log entry can carry.
// Only the field selected by Kind is meaningful; the rest stay zero.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Bools  []bool
	Ints   []int64
	Floats []float64
	Strs   []string
	Raw    []byte
}

// Any returns the underlying value as a plain Go value, suitable for
// JSON/YAML serialization by the dump tooling.
func (v Value) Any() interface{} {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindInt64:
		return v.Int
	case KindFloat64:
		return v.Float
	case KindString:
		return v.Str
	case KindBooleanArray:
		return v.Bools
	case KindInt64Array:
		return v.Ints
	case KindFloat64Array:
		return v.Floats
	case KindStringArray:
		return v.Strs
	case KindRaw:
		return v.Raw
	default:
		return nil
	}
}

// Sample is one timestamped value belonging to a single entry generation.
// Timestamp is microseconds since log start.
type Sample struct {
	Timestamp int64 `json:"timestamp"`
	Value     Value `json:"value"`
}

// EntryInfo describes one named entry as seen across the whole log
type EntryInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Metadata    string `json:"metadata,omitempty"`
	Generations int    `json:"generations"`
	Records     int    `json:"records"`
}

// WarningKind classifies a non-fatal decode diagnostic
type WarningKind string

const (
	WarnUnknownRecordKind    WarningKind = "unknown-record-kind"
	WarnIDReuseWithoutFinish WarningKind = "id-reuse-without-finish"
	WarnFinishUnbound        WarningKind = "finish-unbound"
	WarnMetadataUnbound      WarningKind = "metadata-unbound"
	WarnDataUnbound          WarningKind = "data-unbound"
	WarnMalformedSample      WarningKind = "malformed-sample"
	WarnOutOfOrderTimestamp  WarningKind = "out-of-order-timestamp"
)

// Warning is a non-fatal diagnostic produced while indexing a log.
// Record is the zero-based index of the offending record in the stream.
type Warning struct {
	Record int         `json:"record"`
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("record %d: %s: %s", w.Record, w.Kind, w.Detail)
}

// KindFromType maps a declared entry type string to a value kind.
// The format predates the float64 spelling, so the legacy names
// (double, float, json) are accepted alongside the modern ones.
// Struct-typed and other schema-qualified payloads decode as raw bytes.
// Anything else is KindUnknown; data records for unknown kinds are
// skipped with a warning rather than guessed at.
func KindFromType(entryType string) Kind {
	switch entryType {
	case "boolean":
		return KindBoolean
	case "int64":
		return KindInt64
	case "float64", "double", "float":
		return KindFloat64
	case "string", "json":
		return KindString
	case "boolean[]":
		return KindBooleanArray
	case "int64[]":
		return KindInt64Array
	case "float64[]", "double[]", "float[]":
		return KindFloat64Array
	case "string[]":
		return KindStringArray
	case "raw", "rawBytes", "structschema", "msgpack":
		return KindRaw
	}
	if strings.HasPrefix(entryType, "struct:") || strings.HasPrefix(entryType, "proto:") {
		return KindRaw
	}
	return KindUnknown
}

// FloatWidth returns the per-element payload width for a float-kind
// entry declared with the given type string: 4 for the legacy float
// spellings, 8 otherwise.
func FloatWidth(entryType string) int {
	if entryType == "float" || entryType == "float[]" {
		return 4
	}
	return 8
}
