package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", event.Seq, event.Op, event.Args, event.Outcome)
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains a step matching the op
// and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Op == assertion.Op && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("op %s with args %v", assertion.Op, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if ops appear in the specified order.
// Ops don't need to be consecutive (intervening steps are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// First position of each expected op, 1-indexed for readability
	positions := make(map[string]int)
	for i, event := range trace {
		if slices.Contains(assertion.Ops, event.Op) && positions[event.Op] == 0 {
			positions[event.Op] = i + 1
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev, curr := assertion.Ops[i-1], assertion.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the op appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == assertion.Op {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s appears %d times", assertion.Op, assertion.Count),
			Actual:   fmt.Sprintf("%s appears %d times", assertion.Op, count),
			Trace:    trace,
		}
	}
	return nil
}

// assertView checks the final page. Only the fields set in the assertion
// are compared.
func assertView(final ViewSnapshot, assertion Assertion) error {
	if assertion.Names != nil {
		names := make([]string, len(final.Items))
		for i, item := range final.Items {
			names[i] = item.Name
		}
		if !slices.Equal(names, assertion.Names) {
			return &AssertionError{
				Type:     AssertView,
				Expected: fmt.Sprintf("names %v", assertion.Names),
				Actual:   fmt.Sprintf("names %v", names),
			}
		}
	}

	if assertion.IDs != nil {
		ids := make([]int64, len(final.Items))
		for i, item := range final.Items {
			ids[i] = item.ID
		}
		if !slices.Equal(ids, assertion.IDs) {
			return &AssertionError{
				Type:     AssertView,
				Expected: fmt.Sprintf("ids %v", assertion.IDs),
				Actual:   fmt.Sprintf("ids %v", ids),
			}
		}
	}

	if assertion.TotalPages != 0 && final.TotalPages != assertion.TotalPages {
		return &AssertionError{
			Type:     AssertView,
			Expected: fmt.Sprintf("total_pages %d", assertion.TotalPages),
			Actual:   fmt.Sprintf("total_pages %d", final.TotalPages),
		}
	}

	if assertion.Empty != "" && final.Empty != assertion.Empty {
		return &AssertionError{
			Type:     AssertView,
			Expected: fmt.Sprintf("empty state %s", assertion.Empty),
			Actual:   fmt.Sprintf("empty state %s", final.Empty),
		}
	}

	return nil
}

func assertStoreCount(count int, assertion Assertion) error {
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertStoreCount,
			Expected: fmt.Sprintf("%d records", assertion.Count),
			Actual:   fmt.Sprintf("%d records", count),
		}
	}
	return nil
}

// matchArgs performs subset matching: every expected key must be present in
// actual with an equal value. Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares YAML-decoded values, treating integer kinds as equal
// when their values match.
func valuesEqual(actual, expected any) bool {
	if a, ok := toInt64(actual); ok {
		if e, ok := toInt64(expected); ok {
			return a == e
		}
	}
	return reflect.DeepEqual(actual, expected)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertView:
			err = assertView(result.Final, a)
		case AssertStoreCount:
			err = assertStoreCount(result.StoreCount, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
