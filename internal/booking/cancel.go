package booking

import (
	"context"
	"fmt"

	"github.com/roach88/slotmap/internal/model"
)

// Cancel frees slot on behalf of actor.
//
// Regular actors may only cancel a slot whose last action is their own Book;
// anything else is PERMISSION_DENIED with a message that never names the
// holder. Admins bypass the check. The permission gate runs before the
// availability check, so a regular actor asking about a free slot is denied
// rather than told it is free. The Cancel entry records the requesting actor.
func (s *Service) Cancel(ctx context.Context, actor model.Account, slot model.Slot) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.begin(model.ActionCancel, actor, slot)
	entry := model.LogEntry{
		Room:   slot.Room,
		Day:    slot.Day,
		Hour:   slot.Hour,
		Actor:  actor.Identity,
		Action: model.ActionCancel,
	}
	if err := s.validate(t, actor, entry); err != nil {
		return t.reject(err)
	}

	t.to(StateAuthorizing)
	last, found, err := s.recon.LastAction(ctx, slot)
	if err != nil {
		return t.reject(&Error{Code: CodePersistenceFailure, Message: "cannot read booking history", Slot: slot, Err: err})
	}
	heldBook := found && last.Action == model.ActionBook
	if !actor.IsAdmin() && (!heldBook || last.Actor != actor.Identity) {
		return t.reject(&Error{Code: CodePermissionDenied, Message: "not your booking", Slot: slot})
	}

	t.to(StateCheckingAvailability)
	free, err := s.grid.IsFree(slot.Room, slot.Day, slot.Hour)
	if err != nil {
		return t.reject(&Error{Code: CodeNotFound, Message: "room not found", Slot: slot, Err: err})
	}
	if free {
		if heldBook {
			t.warn(CodeInvariantViolation, fmt.Sprintf("log shows a booking by %s but the slot is free", last.Actor))
		}
		return t.reject(&Error{Code: CodeNotFound, Message: "slot is not booked", Slot: slot})
	}
	if !heldBook {
		t.warn(CodeInvariantViolation, "slot is occupied but has no matching log entry")
	}

	t.to(StateCommitting)
	if err := s.grid.SetOccupied(slot.Room, slot.Day, slot.Hour, false); err != nil {
		return t.rollback(&Error{Code: CodeNotFound, Message: "room not found", Slot: slot, Err: err})
	}
	if err := s.persist(ctx); err != nil {
		_ = s.grid.SetOccupied(slot.Room, slot.Day, slot.Hour, true)
		return t.rollback(&Error{Code: CodePersistenceFailure, Message: "could not save rooms", Slot: slot, Err: err})
	}

	s.appendEntry(ctx, t, entry)
	return t.commit()
}
