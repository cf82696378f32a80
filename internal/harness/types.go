package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/slotmap/internal/model"
)

// TraceEvent records how one flow step ended.
type TraceEvent struct {
	Step     int      `json:"step"` // 1-indexed flow position
	Op       string   `json:"op"`
	Actor    string   `json:"actor"`
	Target   string   `json:"target"` // slot, room or identity
	State    string   `json:"state"`
	Code     string   `json:"code,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Seq      int64    `json:"seq,omitempty"` // appended entry, 0 if none
}

// String renders the event on one line, e.g.
// "2 book bob room 101 Mon 9AM -> rejected ALREADY_OCCUPIED".
func (e TraceEvent) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d %s %s %s -> %s", e.Step, e.Op, e.Actor, e.Target, e.State)
	if e.Code != "" {
		fmt.Fprintf(&buf, " %s", e.Code)
	}
	if e.Seq > 0 {
		fmt.Fprintf(&buf, " seq=%d", e.Seq)
	}
	if len(e.Warnings) > 0 {
		fmt.Fprintf(&buf, " warnings=%s", strings.Join(e.Warnings, ","))
	}
	return buf.String()
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion
	// held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Log is the full action log after the flow.
	Log []model.LogEntry `json:"log"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Log:    []model.LogEntry{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a flow step event.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
