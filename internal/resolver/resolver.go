// Package resolver holds the comparison operators shared by the compare,
// filter and groupOn directives.
package resolver

import (
	"cmp"
	"reflect"
	"slices"
	"strings"

	"github.com/jacoelho/resultshape/internal/number"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

var supportedOperatorSet = map[Operator]struct{}{
	OpEq:  {},
	OpNeq: {},
	OpGt:  {},
	OpGte: {},
	OpLt:  {},
	OpLte: {},
	OpIn:  {},
}

// Lookup reports whether name is a known operator.
func Lookup(name string) (Operator, bool) {
	op := Operator(name)
	_, ok := supportedOperatorSet[op]
	return op, ok
}

// Resolve returns the operator called name, falling back to eq.
func Resolve(name string) Operator {
	if op, ok := Lookup(name); ok {
		return op
	}
	return OpEq
}

// Apply compares actual against expected. Ordering operators compare numbers
// numerically and strings lexically; mixed kinds never order.
func (op Operator) Apply(actual, expected any) bool {
	switch op {
	case OpNeq:
		return !equalValues(actual, expected)
	case OpGt:
		c, ok := compare(actual, expected)
		return ok && c > 0
	case OpGte:
		c, ok := compare(actual, expected)
		return ok && c >= 0
	case OpLt:
		c, ok := compare(actual, expected)
		return ok && c < 0
	case OpLte:
		c, ok := compare(actual, expected)
		return ok && c <= 0
	case OpIn:
		return contains(expected, actual)
	default:
		return equalValues(actual, expected)
	}
}

func equalValues(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	actualNumber, actualIsNumber := number.ToFloat64(actual)
	expectedNumber, expectedIsNumber := number.ToFloat64(expected)
	if actualIsNumber && expectedIsNumber {
		return actualNumber == expectedNumber
	}

	return false
}

func compare(actual, expected any) (int, bool) {
	actualNumber, actualIsNumber := ordinal(actual)
	expectedNumber, expectedIsNumber := ordinal(expected)
	if actualIsNumber && expectedIsNumber {
		return cmp.Compare(actualNumber, expectedNumber), true
	}

	actualString, actualIsString := actual.(string)
	expectedString, expectedIsString := expected.(string)
	if actualIsString && expectedIsString {
		return strings.Compare(actualString, expectedString), true
	}

	return 0, false
}

// ordinal is the numeric position of v in an ordering; booleans order as
// 0 and 1 so a folded comparison result can be compared again.
func ordinal(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return number.ToFloat64(v)
}

func contains(list, actual any) bool {
	value := reflect.ValueOf(list)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return equalValues(actual, list)
	}

	for i := 0; i < value.Len(); i++ {
		if equalValues(actual, value.Index(i).Interface()) {
			return true
		}
	}

	return false
}

// Condition is one parsed argument of a filter-style directive. Field is
// empty for a bare operator key, which applies to the directive's own value.
type Condition struct {
	Field string
	Op    Operator
	Arg   any
}

// ParseCondition splits an argument key of the form `<field>_<op>`,
// `<field>` or `<op>`. Unknown suffixes are part of the field name and
// compare with eq.
func ParseCondition(key string, arg any) Condition {
	if op, ok := Lookup(key); ok {
		return Condition{Op: op, Arg: arg}
	}

	if i := strings.LastIndexByte(key, '_'); i > 0 {
		if op, ok := Lookup(key[i+1:]); ok {
			return Condition{Field: key[:i], Op: op, Arg: arg}
		}
	}

	return Condition{Field: key, Op: OpEq, Arg: arg}
}

func (c Condition) Holds(value any) bool {
	return c.Op.Apply(value, c.Arg)
}

type Conditions []Condition

// Rejects reports whether any condition fails for value.
func (cs Conditions) Rejects(value any) bool {
	return slices.ContainsFunc(cs, func(c Condition) bool {
		return !c.Holds(value)
	})
}

// For returns the conditions that test field.
func (cs Conditions) For(field string) Conditions {
	var out Conditions
	for _, c := range cs {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// Fields returns the distinct tested fields in sorted order.
func (cs Conditions) Fields() []string {
	fields := make([]string, 0, len(cs))
	for _, c := range cs {
		fields = append(fields, c.Field)
	}
	slices.Sort(fields)
	return slices.Compact(fields)
}

// Truthy reports the truthiness of a directive argument or resolved value.
func Truthy(v any) bool {
	switch current := v.(type) {
	case nil:
		return false
	case bool:
		return current
	case string:
		return current != ""
	}

	if f, ok := number.ToFloat64(v); ok {
		return f != 0
	}

	return true
}
