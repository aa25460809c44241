package number

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Add sums two numeric values. ok is false when either side is not numeric.
func Add(a, b any) (float64, bool) {
	left, ok := ToFloat64(a)
	if !ok {
		return 0, false
	}
	right, ok := ToFloat64(b)
	if !ok {
		return 0, false
	}
	return left + right, true
}

// Format renders a scalar the way predicate values and path variables are
// compared: integers without a fraction, floats in their shortest form.
func Format(value any) string {
	switch current := value.(type) {
	case nil:
		return ""
	case string:
		return current
	case bool:
		return strconv.FormatBool(current)
	case float32:
		return strconv.FormatFloat(float64(current), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(current, 'f', -1, 64)
	case json.Number:
		return current.String()
	case fmt.Stringer:
		return current.String()
	}

	if f, ok := ToFloat64(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return fmt.Sprintf("%v", value)
}
