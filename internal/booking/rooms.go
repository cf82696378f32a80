package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
)

// AddRoom provisions a new, fully free room. Admin only.
//
// The room is added to the grid, then the full snapshot is persisted; if that
// write fails the room is removed from the grid again.
func (s *Service) AddRoom(ctx context.Context, actor model.Account, room model.Room) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With("request_id", s.ids.Generate(), "actor", actor.Identity, "room_id", int(room.ID))

	if !actor.IsAdmin() {
		logger.Info("add room rejected", "code", string(CodePermissionDenied))
		return model.Room{}, &Error{Code: CodePermissionDenied, Message: "only admins can add rooms"}
	}

	room.Occupied = model.Schedule{}
	if err := model.ValidateRoom(room); err != nil {
		return model.Room{}, &Error{Code: CodeInvalidInput, Message: "invalid room", Err: err}
	}

	if err := s.grid.AddRoom(room); err != nil {
		if errors.Is(err, grid.ErrRoomExists) {
			return model.Room{}, &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf("room %d already exists", int(room.ID))}
		}
		return model.Room{}, &Error{Code: CodeInvalidInput, Message: "invalid room", Err: err}
	}
	if err := s.persist(ctx); err != nil {
		s.grid.RemoveRoom(room.ID)
		logger.Error("add room rolled back", "error", err)
		return model.Room{}, &Error{Code: CodePersistenceFailure, Message: "could not save rooms", Err: err}
	}

	logger.Info("room added", "department", room.Department, "category", string(room.Category))
	return room, nil
}
