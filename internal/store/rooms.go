package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/slotmap/internal/model"
)

const scheduleLen = model.DaysPerWeek * model.HoursPerDay

// LoadRooms returns every valid room ordered by id.
// Rows that fail validation or carry a malformed schedule are skipped and
// logged; they are never returned.
func (s *Store) LoadRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, department, category, schedule
		FROM rooms
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		var (
			r        model.Room
			id       int
			category string
			schedule string
		)
		if err := rows.Scan(&id, &r.Department, &category, &schedule); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		r.ID = model.RoomID(id)
		r.Category = model.Category(category)

		if err := model.ValidateRoom(r); err != nil {
			s.logger.Warn("skipping invalid room record", "room_id", int(r.ID), "error", err)
			continue
		}
		if r.Occupied, err = DecodeSchedule(schedule); err != nil {
			s.logger.Warn("skipping room with malformed schedule", "room_id", int(r.ID), "error", err)
			continue
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	return rooms, nil
}

// SaveRooms writes every room in rooms inside one transaction, inserting
// new ids and overwriting existing ones. Rows whose id is not in rooms are
// left as they are, so a record LoadRooms skipped survives later saves.
// On any error the previous snapshot is kept.
func (s *Store) SaveRooms(ctx context.Context, rooms []model.Room) error {
	seen := make(map[model.RoomID]bool, len(rooms))
	for _, r := range rooms {
		if err := model.ValidateRoom(r); err != nil {
			return fmt.Errorf("save rooms: %w", err)
		}
		if seen[r.ID] {
			return fmt.Errorf("save rooms: room %d listed twice", int(r.ID))
		}
		seen[r.ID] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save rooms: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rooms (id, department, category, schedule)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			department = excluded.department,
			category   = excluded.category,
			schedule   = excluded.schedule
	`)
	if err != nil {
		return fmt.Errorf("save rooms: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rooms {
		if _, err := stmt.ExecContext(ctx, int(r.ID), r.Department, string(r.Category), EncodeSchedule(r.Occupied)); err != nil {
			return fmt.Errorf("save rooms: upsert %d: %w", int(r.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save rooms: commit: %w", err)
	}
	return nil
}

// CountRooms returns the number of stored room rows.
func (s *Store) CountRooms(ctx context.Context) (int, error) {
	return s.count(ctx, "rooms")
}

// ReadRoom loads one room by id. Returns sql.ErrNoRows if not found.
func (s *Store) ReadRoom(ctx context.Context, id model.RoomID) (model.Room, error) {
	var (
		r        model.Room
		category string
		schedule string
	)
	r.ID = id
	err := s.db.QueryRowContext(ctx, `
		SELECT department, category, schedule
		FROM rooms
		WHERE id = ?
	`, int(id)).Scan(&r.Department, &category, &schedule)
	if err == sql.ErrNoRows {
		return model.Room{}, err
	}
	if err != nil {
		return model.Room{}, fmt.Errorf("read room %d: %w", int(id), err)
	}
	r.Category = model.Category(category)
	if r.Occupied, err = DecodeSchedule(schedule); err != nil {
		return model.Room{}, fmt.Errorf("read room %d: %w", int(id), err)
	}
	return r, nil
}

// EncodeSchedule renders a schedule as 168 '0'/'1' characters, day-major.
func EncodeSchedule(sched model.Schedule) string {
	var b strings.Builder
	b.Grow(scheduleLen)
	for d := range sched {
		for h := range sched[d] {
			if sched[d][h] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}

// DecodeSchedule parses the EncodeSchedule form.
func DecodeSchedule(s string) (model.Schedule, error) {
	var sched model.Schedule
	if len(s) != scheduleLen {
		return sched, fmt.Errorf("schedule has %d flags, want %d", len(s), scheduleLen)
	}
	for i := 0; i < scheduleLen; i++ {
		switch s[i] {
		case '0':
		case '1':
			sched[i/model.HoursPerDay][i%model.HoursPerDay] = true
		default:
			return sched, fmt.Errorf("schedule flag %d is %q, want 0 or 1", i, s[i])
		}
	}
	return sched, nil
}
