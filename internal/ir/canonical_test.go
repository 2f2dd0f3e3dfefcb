package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"max int64", IRInt(math.MaxInt64), "9223372036854775807"},
		{"bool", IRBool(true), "true"},
		{"null", IRNull{}, "null"},
		{"nil", nil, "null"},
		{"float", IRFloat(19.99), "19.99"},
		{"whole float", IRFloat(42), "42"},
		{"negative zero", IRFloat(math.Copysign(0, -1)), "0"},
		{"small float", IRFloat(0.0000001), "1e-7"},
		{"large float", IRFloat(1e21), "1e+21"},
		{"plain go map", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"array", IRArray{IRInt(1), IRNull{}, IRString("x")}, `[1,null,"x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MarshalCanonical(IRObject{"price": IRFloat(f)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "price")
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra": IRInt(1),
		"alpha": IRObject{"b": IRInt(1), "a": IRInt(2)},
		"beta":  IRInt(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting at 0xD800, before 0xE000.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no html escape", "<a&b>", `"<a&b>"`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"control char", "a\nb", `"a\nb"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped text stays", `\u2028`, `"\\u2028"`},
		// e followed by a combining acute accent composes to U+00E9
		{"nfc", "e\u0301", "\"\u00e9\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}
