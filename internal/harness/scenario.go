package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/model"
)

// Scenario defines a reservation scenario.
// Scenarios provision rooms and accounts, drive a flow of booking requests
// through the service and assert on the resulting log and grid.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rooms are provisioned before setup. Every room starts free.
	Rooms []RoomSpec `yaml:"rooms"`

	// Accounts are provisioned before setup.
	Accounts []AccountSpec `yaml:"accounts"`

	// Setup writes grid flags or log entries directly, bypassing the
	// service. Use it to stage grid/log disagreements.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Flow contains the requests, in order, with optional expectations.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final log and grid.
	// Supported types: slot_state, last_action, log_count, history,
	// active_bookings, verify
	Assertions []Assertion `yaml:"assertions"`

	// RequestID is the fixed request id stamped on every transaction.
	// Defaults to "scenario-<name>".
	RequestID string `yaml:"request_id,omitempty"`
}

// RoomSpec provisions one room. Department defaults to CSE and category to
// lab.
type RoomSpec struct {
	ID         int    `yaml:"id"`
	Department string `yaml:"department,omitempty"`
	Category   string `yaml:"category,omitempty"`
}

// AccountSpec provisions one account. Role defaults to regular.
type AccountSpec struct {
	Identity string `yaml:"identity"`
	Secret   string `yaml:"secret"`
	Role     string `yaml:"role,omitempty"`
}

// SlotRef names a slot the way a user types it: room 101, day "Mon",
// hour "9AM".
type SlotRef struct {
	Room int    `yaml:"room"`
	Day  string `yaml:"day,omitempty"`
	Hour string `yaml:"hour,omitempty"`
}

// Slot parses the reference with the same boundary rules as user input.
func (r SlotRef) Slot() (model.Slot, error) {
	return model.ParseSlot(strconv.Itoa(r.Room), r.Day, r.Hour)
}

// SetupStep stages state without going through a transaction.
type SetupStep struct {
	// Kind is "occupy" (set the grid flag only) or "log" (append a log
	// entry only).
	Kind string `yaml:"kind"`

	SlotRef `yaml:",inline"`

	// Actor and Action describe the log entry (kind log).
	Actor  string `yaml:"actor,omitempty"`
	Action string `yaml:"action,omitempty"`
}

// FlowStep is one request against the service.
type FlowStep struct {
	// Op is book, cancel, add_room or register.
	Op string `yaml:"op"`

	// Actor is the requesting account. For register it is the new identity.
	Actor string `yaml:"actor"`

	SlotRef `yaml:",inline"`

	// Department and Category describe the room (add_room).
	Department string `yaml:"department,omitempty"`
	Category   string `yaml:"category,omitempty"`

	// Secret is the new account's secret (register).
	Secret string `yaml:"secret,omitempty"`

	// Fail injects a store failure for this step only: "save" fails the
	// rooms snapshot write, "append" fails the log append.
	Fail string `yaml:"fail,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, no validation is performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// State is the terminal transaction state: committed, rejected or
	// rolled_back.
	State string `yaml:"state"`

	// Code is the expected error code. Empty means no error.
	Code string `yaml:"code,omitempty"`

	// Warnings lists the expected warning codes in order. Nil skips the
	// check; an empty list requires no warnings.
	Warnings []string `yaml:"warnings,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "slot_state": the grid flag of a slot (free)
	// - "last_action": the last log entry of a slot (action, actor)
	// - "log_count": the number of log entries (count)
	// - "history": an actor's history (count, cancelled_by_other)
	// - "active_bookings": an actor's live bookings (count)
	// - "verify": the grid/log violations by kind (violations)
	Type string `yaml:"type"`

	SlotRef `yaml:",inline"`

	// Free is the expected grid flag (slot_state).
	Free *bool `yaml:"free,omitempty"`

	// Actor selects the history owner, or the expected last actor.
	Actor string `yaml:"actor,omitempty"`

	// Action is book, cancel, or none for a slot with no history.
	Action string `yaml:"action,omitempty"`

	// Count is the expected number of entries.
	Count *int `yaml:"count,omitempty"`

	// CancelledByOther is the expected number of history items cancelled
	// by someone other than the actor.
	CancelledByOther *int `yaml:"cancelled_by_other,omitempty"`

	// Violations lists the expected violation kinds in report order.
	// Empty means the grid and log agree.
	Violations []string `yaml:"violations,omitempty"`
}

// Assertion type constants.
const (
	AssertSlotState      = "slot_state"
	AssertLastAction     = "last_action"
	AssertLogCount       = "log_count"
	AssertHistory        = "history"
	AssertActiveBookings = "active_bookings"
	AssertVerify         = "verify"
)

// Flow operations.
const (
	OpBook     = "book"
	OpCancel   = "cancel"
	OpAddRoom  = "add_room"
	OpRegister = "register"
)

// Setup kinds.
const (
	SetupOccupy = "occupy"
	SetupLog    = "log"
)

// Injected failures.
const (
	FailSave   = "save"
	FailAppend = "append"
)

var terminalStates = []string{
	booking.StateCommitted.String(),
	booking.StateRejected.String(),
	booking.StateRolledBack.String(),
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Rooms) == 0 {
		return fmt.Errorf("rooms list is required and must be non-empty")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Accounts {
		if a.Identity == "" || a.Secret == "" {
			return fmt.Errorf("accounts[%d]: identity and secret are required", i)
		}
		if a.Role != "" && a.Role != string(model.RoleRegular) && a.Role != string(model.RoleAdmin) {
			return fmt.Errorf("accounts[%d]: unknown role %q", i, a.Role)
		}
	}

	for i, step := range s.Setup {
		switch step.Kind {
		case SetupOccupy:
		case SetupLog:
			if step.Actor == "" {
				return fmt.Errorf("setup[%d]: actor is required for log", i)
			}
			if step.Action != string(model.ActionBook) && step.Action != string(model.ActionCancel) {
				return fmt.Errorf("setup[%d]: action must be book or cancel", i)
			}
		default:
			return fmt.Errorf("setup[%d]: unknown kind %q", i, step.Kind)
		}
		if _, err := step.Slot(); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	for i, step := range s.Flow {
		if err := validateFlowStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateFlowStep(index int, step *FlowStep) error {
	if step.Actor == "" {
		return fmt.Errorf("flow[%d]: actor is required", index)
	}

	switch step.Op {
	case OpBook, OpCancel:
		// Slots are parsed at run time so scenarios can exercise bad input.
		if step.Day == "" || step.Hour == "" {
			return fmt.Errorf("flow[%d]: day and hour are required for %s", index, step.Op)
		}
	case OpAddRoom:
		if step.Room == 0 {
			return fmt.Errorf("flow[%d]: room is required for add_room", index)
		}
	case OpRegister:
		if step.Secret == "" {
			return fmt.Errorf("flow[%d]: secret is required for register", index)
		}
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}

	switch step.Fail {
	case "", FailSave, FailAppend:
	default:
		return fmt.Errorf("flow[%d]: unknown fail %q", index, step.Fail)
	}

	if step.Expect != nil && !slices.Contains(terminalStates, step.Expect.State) {
		return fmt.Errorf("flow[%d].expect: state must be one of %v", index, terminalStates)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSlotState:
		if a.Free == nil {
			return fmt.Errorf("assertions[%d]: free is required for slot_state", index)
		}
		if _, err := a.Slot(); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertLastAction:
		switch a.Action {
		case "none":
		case string(model.ActionBook), string(model.ActionCancel):
			if a.Actor == "" {
				return fmt.Errorf("assertions[%d]: actor is required for last_action", index)
			}
		default:
			return fmt.Errorf("assertions[%d]: action must be book, cancel or none", index)
		}
		if _, err := a.Slot(); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertLogCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for log_count", index)
		}
	case AssertHistory, AssertActiveBookings:
		if a.Actor == "" {
			return fmt.Errorf("assertions[%d]: actor is required for %s", index, a.Type)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertVerify:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
