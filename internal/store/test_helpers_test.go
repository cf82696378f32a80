package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/slotmap/internal/model"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEntry creates a log entry with the given key and actor.
func createTestEntry(room model.RoomID, day model.Day, hour model.Hour, actor string, action model.Action) model.LogEntry {
	return model.LogEntry{
		Room:   room,
		Day:    day,
		Hour:   hour,
		Actor:  actor,
		Action: action,
	}
}

// createTestRoom creates an empty room.
func createTestRoom(id model.RoomID, dept string, cat model.Category) model.Room {
	return model.Room{ID: id, Department: dept, Category: cat}
}
