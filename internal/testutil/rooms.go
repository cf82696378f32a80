package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/roach88/slotmap/internal/model"
)

// RoomStore records full room snapshots in memory.
//
// When FailSave is set, SaveRooms returns it and the last good snapshot is
// kept, mirroring the transactional SQLite store.
type RoomStore struct {
	mu    sync.Mutex
	saved []model.Room
	saves int

	FailSave error
}

// SaveRooms replaces the stored snapshot.
func (s *RoomStore) SaveRooms(_ context.Context, rooms []model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}
	s.saved = slices.Clone(rooms)
	s.saves++
	return nil
}

// Saved returns the last successfully saved snapshot.
func (s *RoomStore) Saved() []model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

// Saves returns how many snapshots were written successfully.
func (s *RoomStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
