package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/reconcile"
	"github.com/roach88/slotmap/internal/store"
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
			fmt.Fprintf(&buf, "  [%s]\n", event)
		}
	}

	return buf.String()
}

// AssertionContext provides the service and store for assertions that
// inspect final state.
type AssertionContext struct {
	Service *booking.Service
	Store   *store.Store
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.Service == nil || actx.Store == nil {
			err = fmt.Errorf("assertion[%d]: %s requires a service and store", i, assertion.Type)
		} else {
			switch assertion.Type {
			case AssertSlotState:
				err = assertSlotState(actx, assertion)
			case AssertLastAction:
				err = assertLastAction(actx, assertion)
			case AssertLogCount:
				err = assertLogCount(actx, assertion)
			case AssertHistory:
				err = assertHistory(actx, assertion)
			case AssertActiveBookings:
				err = assertActiveBookings(actx, assertion)
			case AssertVerify:
				err = assertVerify(actx, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			if ae, ok := err.(*AssertionError); ok {
				ae.Trace = result.Trace
			}
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertSlotState checks the grid flag of one slot.
func assertSlotState(actx *AssertionContext, a Assertion) error {
	slot, err := a.Slot()
	if err != nil {
		return err
	}
	free, err := actx.Service.IsFree(slot)
	if err != nil {
		return fmt.Errorf("slot_state %s: %w", slot, err)
	}
	if free != *a.Free {
		return &AssertionError{
			Type:     AssertSlotState,
			Expected: fmt.Sprintf("%s free=%t", slot, *a.Free),
			Actual:   fmt.Sprintf("%s free=%t", slot, free),
		}
	}
	return nil
}

// assertLastAction checks the last log entry of one slot.
func assertLastAction(actx *AssertionContext, a Assertion) error {
	slot, err := a.Slot()
	if err != nil {
		return err
	}
	last, found, err := actx.Service.LastAction(actx.Ctx, slot)
	if err != nil {
		return fmt.Errorf("last_action %s: %w", slot, err)
	}

	if a.Action == "none" {
		if found {
			return &AssertionError{
				Type:     AssertLastAction,
				Expected: fmt.Sprintf("%s has no history", slot),
				Actual:   fmt.Sprintf("%s by %s (seq %d)", last.Action, last.Actor, last.Seq),
			}
		}
		return nil
	}

	if !found {
		return &AssertionError{
			Type:     AssertLastAction,
			Expected: fmt.Sprintf("%s by %s on %s", a.Action, a.Actor, slot),
			Actual:   "no history",
		}
	}
	if string(last.Action) != a.Action || last.Actor != a.Actor {
		return &AssertionError{
			Type:     AssertLastAction,
			Expected: fmt.Sprintf("%s by %s on %s", a.Action, a.Actor, slot),
			Actual:   fmt.Sprintf("%s by %s (seq %d)", last.Action, last.Actor, last.Seq),
		}
	}
	return nil
}

// assertLogCount checks the number of stored log entries.
func assertLogCount(actx *AssertionContext, a Assertion) error {
	n, err := actx.Store.CountLog(actx.Ctx)
	if err != nil {
		return fmt.Errorf("log_count: %w", err)
	}
	if n != *a.Count {
		return &AssertionError{
			Type:     AssertLogCount,
			Expected: fmt.Sprintf("%d log entries", *a.Count),
			Actual:   fmt.Sprintf("%d log entries", n),
		}
	}
	return nil
}

// assertHistory checks an actor's history size and how many of its items
// were cancelled by someone else.
func assertHistory(actx *AssertionContext, a Assertion) error {
	items, err := actx.Service.HistoryFor(actx.Ctx, a.Actor)
	if err != nil {
		return fmt.Errorf("history %s: %w", a.Actor, err)
	}
	if len(items) != *a.Count {
		return &AssertionError{
			Type:     AssertHistory,
			Expected: fmt.Sprintf("%d history items for %s", *a.Count, a.Actor),
			Actual:   fmt.Sprintf("%d history items", len(items)),
		}
	}

	if a.CancelledByOther != nil {
		n := 0
		for _, item := range items {
			if item.CancelledByOther {
				n++
			}
		}
		if n != *a.CancelledByOther {
			return &AssertionError{
				Type:     AssertHistory,
				Expected: fmt.Sprintf("%d items for %s cancelled by others", *a.CancelledByOther, a.Actor),
				Actual:   fmt.Sprintf("%d items cancelled by others", n),
			}
		}
	}
	return nil
}

// assertActiveBookings checks how many slots the actor currently holds.
func assertActiveBookings(actx *AssertionContext, a Assertion) error {
	bookings, err := actx.Service.ActiveBookings(actx.Ctx, a.Actor)
	if err != nil {
		return fmt.Errorf("active_bookings %s: %w", a.Actor, err)
	}
	if len(bookings) != *a.Count {
		return &AssertionError{
			Type:     AssertActiveBookings,
			Expected: fmt.Sprintf("%d active bookings for %s", *a.Count, a.Actor),
			Actual:   fmt.Sprintf("%d active bookings", len(bookings)),
		}
	}
	return nil
}

// assertVerify checks the grid/log violation kinds in report order.
func assertVerify(actx *AssertionContext, a Assertion) error {
	report, err := actx.Service.Verify(actx.Ctx)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	kinds := make([]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		kinds = append(kinds, string(v.Kind))
	}

	expected := a.Violations
	if expected == nil {
		expected = []string{}
	}
	if strings.Join(kinds, ",") != strings.Join(expected, ",") {
		return &AssertionError{
			Type:     AssertVerify,
			Expected: fmt.Sprintf("violations %v", expected),
			Actual:   fmt.Sprintf("violations %v: %s", kinds, describeViolations(report.Violations)),
		}
	}
	return nil
}

func describeViolations(vs []reconcile.Violation) string {
	if len(vs) == 0 {
		return "none"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}
