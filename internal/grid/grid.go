// Package grid holds the in-memory occupancy matrix for every room.
//
// The grid is the fast path for "is this slot free". It knows whether a slot
// is occupied, never by whom; ownership lives in the action log. Callers
// persist Snapshot() after every mutation and roll back with SetOccupied if
// persistence fails.
package grid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/slotmap/internal/model"
)

var (
	// ErrRoomNotFound is returned for ids with no provisioned room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned by AddRoom for duplicate ids.
	ErrRoomExists = errors.New("room already exists")

	// ErrSlotOutOfRange is returned for day or hour indices outside the grid.
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// Grid owns the rooms and their occupancy. It is not safe for concurrent
// use; booking.Service serializes access.
type Grid struct {
	rooms map[model.RoomID]*model.Room
	order []model.RoomID // ascending ids
}

// New builds a grid from loaded rooms. Duplicate ids are rejected.
func New(rooms []model.Room) (*Grid, error) {
	g := &Grid{rooms: make(map[model.RoomID]*model.Room, len(rooms))}
	for _, r := range rooms {
		if err := g.AddRoom(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddRoom inserts a copy of r.
func (g *Grid) AddRoom(r model.Room) error {
	if _, ok := g.rooms[r.ID]; ok {
		return fmt.Errorf("add room %d: %w", int(r.ID), ErrRoomExists)
	}
	room := r
	g.rooms[r.ID] = &room

	i := sort.Search(len(g.order), func(i int) bool { return g.order[i] >= r.ID })
	g.order = append(g.order, 0)
	copy(g.order[i+1:], g.order[i:])
	g.order[i] = r.ID
	return nil
}

// RemoveRoom drops a room. Only used to undo an AddRoom whose persistence
// failed; rooms are never deleted otherwise.
func (g *Grid) RemoveRoom(id model.RoomID) {
	if _, ok := g.rooms[id]; !ok {
		return
	}
	delete(g.rooms, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Room returns a copy of the room with the given id.
func (g *Grid) Room(id model.RoomID) (model.Room, bool) {
	r, ok := g.rooms[id]
	if !ok {
		return model.Room{}, false
	}
	return *r, true
}

// Len returns the number of rooms.
func (g *Grid) Len() int { return len(g.order) }

// IsFree reports whether the slot is unoccupied.
func (g *Grid) IsFree(room model.RoomID, day model.Day, hour model.Hour) (bool, error) {
	r, err := g.lookup(room, day, hour)
	if err != nil {
		return false, err
	}
	return !r.Occupied[day][hour], nil
}

// SetOccupied flips the slot's flag in memory only.
func (g *Grid) SetOccupied(room model.RoomID, day model.Day, hour model.Hour, occupied bool) error {
	r, err := g.lookup(room, day, hour)
	if err != nil {
		return err
	}
	r.Occupied[day][hour] = occupied
	return nil
}

// Snapshot returns copies of every room in ascending id order. Schedules are
// arrays, so the copies share no state with the grid.
func (g *Grid) Snapshot() []model.Room {
	out := make([]model.Room, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.rooms[id])
	}
	return out
}

func (g *Grid) lookup(room model.RoomID, day model.Day, hour model.Hour) (*model.Room, error) {
	r, ok := g.rooms[room]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", int(room), ErrRoomNotFound)
	}
	if !day.Valid() || !hour.Valid() {
		return nil, fmt.Errorf("day %d hour %d: %w", int(day), int(hour), ErrSlotOutOfRange)
	}
	return r, nil
}
