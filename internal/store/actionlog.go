package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/roach88/slotmap/internal/model"
)

// Append writes one entry to the end of the action log and returns it with
// its assigned seq. The entry is validated first; nothing is written for an
// invalid entry.
func (s *Store) Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error) {
	if err := model.ValidateEntry(e); err != nil {
		return model.LogEntry{}, fmt.Errorf("append log entry: %w", err)
	}

	e.Seq = s.clock.Next()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_log (seq, room_id, day, hour, action, actor)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.Seq,
		int(e.Room),
		int(e.Day),
		int(e.Hour),
		e.Action.Code(),
		e.Actor,
	)
	if err != nil {
		return model.LogEntry{}, fmt.Errorf("append log entry: %w", err)
	}

	return e, nil
}

// Scan returns a lazy, finite, restartable sequence over the whole log in
// append order. Each range re-reads the table from durable storage.
//
// A query or iteration failure is yielded once as a non-nil error and ends
// the sequence. Invalid rows are skipped and logged. Do not call other Store
// methods while ranging; the store holds a single connection.
func (s *Store) Scan(ctx context.Context) iter.Seq2[model.LogEntry, error] {
	return func(yield func(model.LogEntry, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT seq, room_id, day, hour, action, actor
			FROM action_log
			ORDER BY seq ASC
		`)
		if err != nil {
			yield(model.LogEntry{}, fmt.Errorf("scan log: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, valid, err := s.scanEntry(rows)
			if err != nil {
				yield(model.LogEntry{}, err)
				return
			}
			if !valid {
				continue
			}
			if !yield(e, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(model.LogEntry{}, fmt.Errorf("iterate log: %w", err))
		}
	}
}

// ReadLog collects Scan into a slice. Returns an empty slice (not nil) for
// an empty log.
func (s *Store) ReadLog(ctx context.Context) ([]model.LogEntry, error) {
	entries := []model.LogEntry{}
	for e, err := range s.Scan(ctx) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LastSeq returns the seq of the most recent append (0 for an empty log).
func (s *Store) LastSeq() int64 {
	return s.clock.Current()
}

// CountLog returns the number of stored log rows, valid or not.
func (s *Store) CountLog(ctx context.Context) (int, error) {
	return s.count(ctx, "action_log")
}

// scanEntry reads one row. valid is false when the row fails boundary
// validation; such rows are logged and must be skipped by the caller.
func (s *Store) scanEntry(rows *sql.Rows) (model.LogEntry, bool, error) {
	var (
		e               model.LogEntry
		room, day, hour int
		code, actor     string
	)
	if err := rows.Scan(&e.Seq, &room, &day, &hour, &code, &actor); err != nil {
		return e, false, fmt.Errorf("scan log entry: %w", err)
	}
	e.Room = model.RoomID(room)
	e.Day = model.Day(day)
	e.Hour = model.Hour(hour)
	e.Actor = actor

	action, err := model.ParseActionCode(code)
	if err != nil {
		s.logger.Warn("skipping log entry with unknown action", "seq", e.Seq, "error", err)
		return e, false, nil
	}
	e.Action = action

	if err := model.ValidateEntry(e); err != nil {
		s.logger.Warn("skipping invalid log entry", "seq", e.Seq, "error", err)
		return e, false, nil
	}
	return e, true, nil
}
