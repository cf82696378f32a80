package testutil

import "github.com/roach88/slotmap/internal/model"

// Rooms builds empty CSE lab rooms with the given ids.
func Rooms(ids ...model.RoomID) []model.Room {
	rooms := make([]model.Room, 0, len(ids))
	for _, id := range ids {
		rooms = append(rooms, model.Room{ID: id, Department: "CSE", Category: model.CategoryLab})
	}
	return rooms
}

// Slot builds a slot key.
func Slot(room model.RoomID, day model.Day, hour model.Hour) model.Slot {
	return model.Slot{Room: room, Day: day, Hour: hour}
}

// Book builds an unstamped Book entry.
func Book(s model.Slot, actor string) model.LogEntry {
	return model.LogEntry{Room: s.Room, Day: s.Day, Hour: s.Hour, Actor: actor, Action: model.ActionBook}
}

// Cancel builds an unstamped Cancel entry.
func Cancel(s model.Slot, actor string) model.LogEntry {
	return model.LogEntry{Room: s.Room, Day: s.Day, Hour: s.Hour, Actor: actor, Action: model.ActionCancel}
}
