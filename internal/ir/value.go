package ir

import (
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// IRValue is a sealed interface representing a scalar or composite value.
// Only IRNull, IRString, IRInt, IRFloat, IRBool, IRArray and IRObject
// implement it.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents SQL NULL / JSON null.
type IRNull struct{}

func (IRNull) irValue() {}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRFloat represents a floating-point value.
type IRFloat float64

func (IRFloat) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an ordered list of values.
// Only used for serialized output; it is never bound as a query parameter.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps column or field names to values.
// A fetched row, a record to persist and a serialized entity are all IRObjects.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// IsNull reports whether v is nil or IRNull.
func IsNull(v IRValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(IRNull)
	return ok
}

// Clone returns a shallow copy of obj. A nil object clones to an empty one.
func (obj IRObject) Clone() IRObject {
	out := make(IRObject, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs for astral characters.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// KeyOf renders a value as a match key.
//
// SQLite may hand back the same logical key with integer or text affinity
// depending on the column, so IRInt(42), IRString("42") and IRFloat(42) all
// render as "42". Returns ok=false for NULL and composite values, which never
// match anything.
func KeyOf(v IRValue) (key string, ok bool) {
	switch val := v.(type) {
	case IRString:
		return string(val), true
	case IRInt:
		return strconv.FormatInt(int64(val), 10), true
	case IRFloat:
		f := float64(val)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10), true
		}
		return strconv.FormatFloat(f, 'g', -1, 64), true
	case IRBool:
		return strconv.FormatBool(bool(val)), true
	default:
		return "", false
	}
}
