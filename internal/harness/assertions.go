package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes the entity key to help debug the failure.
type AssertionError struct {
	Type     string // Expectation type for categorization
	Key      string // Entity key, empty for batch-level checks
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Key != "" {
		fmt.Fprintf(&buf, " (entity %s)", e.Key)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateExpectations checks expectations against loaded models and
// returns one message per failure.
func EvaluateExpectations(models []*entity.Model, expectations []Expectation) []string {
	byKey := make(map[string]*entity.Model, len(models))
	for _, m := range models {
		if k, ok := ir.KeyOf(m.Key()); ok {
			byKey[k] = m
		}
	}

	var errs []string
	for i, exp := range expectations {
		key, err := ir.FromGo(exp.Key)
		if err != nil {
			errs = append(errs, fmt.Sprintf("expect[%d]: key: %v", i, err))
			continue
		}
		k, _ := ir.KeyOf(key)
		label := render(key)

		m, found := byKey[k]
		if exp.Absent {
			if found {
				errs = append(errs, (&AssertionError{Type: "absent", Key: label, Expected: "not loaded", Actual: "loaded"}).Error())
			}
			continue
		}
		if !found {
			errs = append(errs, (&AssertionError{Type: "entity", Key: label, Expected: "loaded", Actual: "not loaded"}).Error())
			continue
		}

		for _, err := range checkEntity(m, exp) {
			err.Key = label
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func checkEntity(m *entity.Model, exp Expectation) []*AssertionError {
	var errs []*AssertionError

	for _, name := range sortedNames(exp.Attributes) {
		want, err := ir.FromGo(exp.Attributes[name])
		if err != nil {
			errs = append(errs, &AssertionError{Type: "attribute", Expected: name, Actual: err.Error()})
			continue
		}
		got, ok := m.Attribute(name)
		if !ok {
			errs = append(errs, &AssertionError{
				Type:     "attribute",
				Expected: fmt.Sprintf("%s = %s", name, describe(want)),
				Actual:   "not found",
			})
			continue
		}
		if describe(got) != describe(want) {
			errs = append(errs, &AssertionError{
				Type:     "attribute",
				Expected: fmt.Sprintf("%s = %s", name, describe(want)),
				Actual:   fmt.Sprintf("%s = %s", name, describe(got)),
			})
		}
	}

	for _, name := range exp.Missing {
		if got, ok := m.Attribute(name); ok {
			errs = append(errs, &AssertionError{
				Type:     "missing",
				Expected: fmt.Sprintf("%s not found", name),
				Actual:   fmt.Sprintf("%s = %s", name, describe(got)),
			})
		}
	}

	for _, name := range sortedNames(exp.Relations) {
		want := exp.Relations[name]
		loaded, ok := m.Relation(name)
		if !ok {
			errs = append(errs, &AssertionError{
				Type:     "relation",
				Expected: fmt.Sprintf("%s with %d records", name, want),
				Actual:   "not loaded",
			})
			continue
		}
		if len(loaded.Records) != want {
			errs = append(errs, &AssertionError{
				Type:     "relation",
				Expected: fmt.Sprintf("%s with %d records", name, want),
				Actual:   fmt.Sprintf("%d records", len(loaded.Records)),
			})
		}
	}

	return errs
}

// describe renders a value with its type. Canonical JSON prints 3 and
// 3.0 alike, so the type is part of the comparison.
func describe(v ir.IRValue) string {
	return fmt.Sprintf("%s (%s)", render(v), typeName(v))
}

func typeName(v ir.IRValue) string {
	switch v.(type) {
	case nil, ir.IRNull:
		return "null"
	case ir.IRString:
		return "string"
	case ir.IRInt:
		return "integer"
	case ir.IRFloat:
		return "float"
	case ir.IRBool:
		return "bool"
	case ir.IRArray:
		return "array"
	default:
		return "object"
	}
}

// render formats a value as canonical JSON.
func render(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
