package booking

import (
	"context"
	"fmt"

	"github.com/roach88/slotmap/internal/model"
)

// Book reserves slot for actor.
//
// Returns ALREADY_OCCUPIED when the slot is taken. The message names the
// holder when the log shows one; when the log has no matching Book the
// outcome also carries an INVARIANT_VIOLATION warning. A failed snapshot
// write restores the grid and returns PERSISTENCE_FAILURE.
func (s *Service) Book(ctx context.Context, actor model.Account, slot model.Slot) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.begin(model.ActionBook, actor, slot)
	entry := model.LogEntry{
		Room:   slot.Room,
		Day:    slot.Day,
		Hour:   slot.Hour,
		Actor:  actor.Identity,
		Action: model.ActionBook,
	}
	if err := s.validate(t, actor, entry); err != nil {
		return t.reject(err)
	}

	t.to(StateCheckingAvailability)
	free, err := s.grid.IsFree(slot.Room, slot.Day, slot.Hour)
	if err != nil {
		return t.reject(&Error{Code: CodeNotFound, Message: "room not found", Slot: slot, Err: err})
	}
	if !free {
		last, found, err := s.recon.LastAction(ctx, slot)
		if err != nil {
			return t.reject(&Error{Code: CodePersistenceFailure, Message: "cannot read booking history", Slot: slot, Err: err})
		}
		if found && last.Action == model.ActionBook {
			return t.reject(&Error{
				Code:    CodeAlreadyOccupied,
				Message: fmt.Sprintf("booked by %s", last.Actor),
				Slot:    slot,
			})
		}
		t.warn(CodeInvariantViolation, "slot is occupied but has no matching log entry")
		return t.reject(&Error{Code: CodeAlreadyOccupied, Message: "slot is occupied", Slot: slot})
	}

	t.to(StateCommitting)
	if err := s.grid.SetOccupied(slot.Room, slot.Day, slot.Hour, true); err != nil {
		return t.rollback(&Error{Code: CodeNotFound, Message: "room not found", Slot: slot, Err: err})
	}
	if err := s.persist(ctx); err != nil {
		_ = s.grid.SetOccupied(slot.Room, slot.Day, slot.Hour, false)
		return t.rollback(&Error{Code: CodePersistenceFailure, Message: "could not save rooms", Slot: slot, Err: err})
	}

	s.appendEntry(ctx, t, entry)
	return t.commit()
}
