package booking

import (
	"context"

	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/reconcile"
)

// Rooms returns a copy of every room in id order.
func (s *Service) Rooms() []model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// Room returns a copy of one room.
func (s *Service) Room(id model.RoomID) (model.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Room(id)
}

// IsFree answers from the grid alone.
func (s *Service) IsFree(slot model.Slot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.IsFree(slot.Room, slot.Day, slot.Hour)
}

// Search filters rooms and reports availability at one slot.
func (s *Service) Search(q grid.Query) []grid.Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Search(q)
}

// LastAction returns the slot's most recent log entry.
func (s *Service) LastAction(ctx context.Context, slot model.Slot) (model.LogEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.LastAction(ctx, slot)
}

// CurrentHolder returns who holds slot, if anyone.
func (s *Service) CurrentHolder(ctx context.Context, slot model.Slot) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.CurrentHolder(ctx, slot)
}

// HistoryFor returns actor's history, including cancellations by others.
func (s *Service) HistoryFor(ctx context.Context, actor string) ([]reconcile.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.HistoryFor(ctx, actor)
}

// ActiveBookings lists held slots; empty actor means everyone.
func (s *Service) ActiveBookings(ctx context.Context, actor string) ([]reconcile.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.ActiveBookings(ctx, s.grid, actor)
}

// Verify compares the whole grid with the log.
func (s *Service) Verify(ctx context.Context) (reconcile.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.Verify(ctx, s.grid)
}

// CheckSlot compares one slot with the log.
func (s *Service) CheckSlot(ctx context.Context, slot model.Slot) (*reconcile.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon.CheckSlot(ctx, s.grid, slot)
}
