package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/store"
	"github.com/roach88/slotmap/internal/testutil"
)

// errInjected is returned by the store for steps with a fail clause.
var errInjected = errors.New("injected failure")

// Harness is the scenario execution engine.
// It runs scenarios against a real service over an in-memory store, with a
// fixed request id so runs are reproducible.
type Harness struct {
	store   *faultStore
	service *booking.Service
}

// faultStore wraps the SQLite store and fails the next snapshot write or
// log append on demand.
type faultStore struct {
	*store.Store
	failSave   bool
	failAppend bool
}

func (f *faultStore) SaveRooms(ctx context.Context, rooms []model.Room) error {
	if f.failSave {
		return errInjected
	}
	return f.Store.SaveRooms(ctx, rooms)
}

func (f *faultStore) Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	if f.failAppend {
		return model.LogEntry{}, errInjected
	}
	return f.Store.Append(ctx, e)
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Provision rooms and accounts
// 3. Execute setup steps directly against grid and log
// 4. Execute flow steps through the booking service with expect validation
// 5. Evaluate assertions and capture the final log
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: &faultStore{Store: st}}

	if err := h.provision(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to provision: %w", err)
	}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	rooms, err := st.LoadRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	g, err := grid.New(rooms)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}

	requestID := scenario.RequestID
	if requestID == "" {
		requestID = "scenario-" + scenario.Name
	}
	h.service = booking.NewService(g, h.store, h.store, st,
		booking.WithLogger(logger),
		booking.WithRequestIDs(testutil.NewFixedRequestIDs(requestID)),
	)

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{Service: h.service, Store: st, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	log, err := st.ReadLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	result.Log = log

	return result, nil
}

// provision writes the scenario's rooms and accounts.
func (h *Harness) provision(ctx context.Context, scenario *Scenario) error {
	rooms := make([]model.Room, 0, len(scenario.Rooms))
	for i, spec := range scenario.Rooms {
		room, err := spec.room()
		if err != nil {
			return fmt.Errorf("rooms[%d]: %w", i, err)
		}
		rooms = append(rooms, room)
	}
	if err := h.store.Store.SaveRooms(ctx, rooms); err != nil {
		return err
	}

	for i, spec := range scenario.Accounts {
		role := model.RoleRegular
		if spec.Role != "" {
			role = model.Role(spec.Role)
		}
		a := model.Account{Identity: spec.Identity, Secret: spec.Secret, Role: role}
		if err := h.store.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
	}
	return nil
}

func (r RoomSpec) room() (model.Room, error) {
	id, err := model.ParseRoomID(strconv.Itoa(r.ID))
	if err != nil {
		return model.Room{}, err
	}
	room := model.Room{ID: id, Department: "CSE", Category: model.CategoryLab}
	if r.Department != "" {
		room.Department = r.Department
	}
	if r.Category != "" {
		if room.Category, err = model.ParseCategory(r.Category); err != nil {
			return model.Room{}, err
		}
	}
	return room, model.ValidateRoom(room)
}

// executeSetup runs all setup steps.
//
// Setup bypasses the service: occupy flips a grid flag in the stored
// snapshot without a log entry, log appends an entry without touching the
// grid.
func (h *Harness) executeSetup(ctx context.Context, setup []SetupStep) error {
	for i, step := range setup {
		slot, err := step.Slot()
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}

		switch step.Kind {
		case SetupOccupy:
			rooms, err := h.store.LoadRooms(ctx)
			if err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
			found := false
			for j := range rooms {
				if rooms[j].ID == slot.Room {
					rooms[j].Occupied[slot.Day][slot.Hour] = true
					found = true
				}
			}
			if !found {
				return fmt.Errorf("setup step %d: room %d not provisioned", i, int(slot.Room))
			}
			if err := h.store.Store.SaveRooms(ctx, rooms); err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
		case SetupLog:
			e := model.LogEntry{
				Room:   slot.Room,
				Day:    slot.Day,
				Hour:   slot.Hour,
				Actor:  step.Actor,
				Action: model.Action(step.Action),
			}
			if _, err := h.store.Store.Append(ctx, e); err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
		}
	}
	return nil
}

// executeFlow runs every flow step and checks its expect clause.
// Rejections are recorded in the trace; only harness faults (unknown
// actors, store errors outside a transaction) abort the run.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		h.store.failSave = step.Fail == FailSave
		h.store.failAppend = step.Fail == FailAppend

		event, warnings, err := h.executeStep(ctx, step)
		h.store.failSave, h.store.failAppend = false, false
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		event.Step = i + 1
		event.Warnings = warnings
		result.AddTrace(event)

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, event) {
				result.AddError(fmt.Sprintf("flow[%d] (%s %s): %s", i, step.Op, event.Target, msg))
			}
		}
	}
	return nil
}

// executeStep performs one request and reports how it ended.
func (h *Harness) executeStep(ctx context.Context, step FlowStep) (TraceEvent, []string, error) {
	event := TraceEvent{Op: step.Op, Actor: step.Actor}

	if step.Op == OpRegister {
		event.Target = step.Actor
		_, err := h.service.RegisterAccount(ctx, step.Actor, step.Secret)
		return settle(event, err), nil, nil
	}

	actor, err := h.store.GetAccount(ctx, step.Actor)
	if err != nil {
		return event, nil, fmt.Errorf("unknown actor %q: %w", step.Actor, err)
	}

	if step.Op == OpAddRoom {
		event.Target = fmt.Sprintf("room %d", step.Room)
		room := model.Room{
			ID:         model.RoomID(step.Room),
			Department: step.Department,
			Category:   model.Category(step.Category),
		}
		_, err := h.service.AddRoom(ctx, actor, room)
		return settle(event, err), nil, nil
	}

	slot, err := step.Slot()
	if err != nil {
		event.Target = fmt.Sprintf("room %d %s %s", step.Room, step.Day, step.Hour)
		return settle(event, &booking.Error{Code: booking.CodeInvalidInput, Message: err.Error()}), nil, nil
	}
	event.Target = slot.String()

	var out booking.Outcome
	switch step.Op {
	case OpBook:
		out, err = h.service.Book(ctx, actor, slot)
	case OpCancel:
		out, err = h.service.Cancel(ctx, actor, slot)
	}

	event.State = out.State.String()
	event.Code = string(booking.CodeOf(err))
	if out.Entry != nil {
		event.Seq = out.Entry.Seq
	}
	var warnings []string
	for _, w := range out.Warnings {
		warnings = append(warnings, string(w.Code))
	}
	return event, warnings, nil
}

// settle fills the state of a non-transactional request from its error.
// A failed save was undone in memory, so it reports as rolled back.
func settle(event TraceEvent, err error) TraceEvent {
	event.State = booking.StateCommitted.String()
	if err != nil {
		event.State = booking.StateRejected.String()
		event.Code = string(booking.CodeOf(err))
		if booking.IsPersistenceFailure(err) {
			event.State = booking.StateRolledBack.String()
		}
	}
	return event
}

// checkExpect compares one event against its expect clause.
func checkExpect(expect *ExpectClause, event TraceEvent) []string {
	var errs []string
	if event.State != expect.State {
		errs = append(errs, fmt.Sprintf("expected state %s, got %s", expect.State, event.State))
	}
	if event.Code != expect.Code {
		errs = append(errs, fmt.Sprintf("expected code %q, got %q", expect.Code, event.Code))
	}
	if expect.Warnings != nil && !slices.Equal(expect.Warnings, event.Warnings) {
		errs = append(errs, fmt.Sprintf("expected warnings %v, got %v", expect.Warnings, event.Warnings))
	}
	return errs
}
