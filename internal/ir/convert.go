package ir

import (
	"fmt"
	"math"
	"time"
)

// FromSQL converts a value scanned by database/sql into an IRValue.
func FromSQL(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case int64:
		return IRInt(val), nil
	case int:
		return IRInt(int64(val)), nil
	case float64:
		return IRFloat(val), nil
	case string:
		return IRString(val), nil
	case []byte:
		return IRString(string(val)), nil
	case bool:
		return IRBool(val), nil
	case time.Time:
		return IRString(val.UTC().Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported SQL type: %T", v)
	}
}

// ToParam converts an IRValue to a Go native type for a SQL parameter.
// Arrays and objects cannot be bound.
func ToParam(v IRValue) (any, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return nil, nil
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRFloat:
		return float64(val), nil
	case IRBool:
		return bool(val), nil
	case IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter")
	case IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// FromGo converts a plain Go value (as produced by YAML or JSON decoding)
// into an IRValue. Whole floats stay floats; only integer Go kinds map to IRInt.
func FromGo(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case int:
		return IRInt(int64(val)), nil
	case int32:
		return IRInt(int64(val)), nil
	case int64:
		return IRInt(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return IRInt(int64(val)), nil
	case float32:
		return IRFloat(float64(val)), nil
	case float64:
		return IRFloat(val), nil
	case bool:
		return IRBool(val), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ObjectFromGo converts a map of plain Go values into an IRObject.
func ObjectFromGo(m map[string]any) (IRObject, error) {
	obj := make(IRObject, len(m))
	for k, v := range m {
		val, err := FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		obj[k] = val
	}
	return obj, nil
}
