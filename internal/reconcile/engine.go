// Package reconcile derives slot ownership and history from the action log
// and checks the occupancy grid against it.
//
// Every query runs a full, fresh pass over the log. Nothing is cached between
// calls, so answers always reflect the latest append.
package reconcile

import (
	"context"
	"fmt"
	"iter"

	"github.com/roach88/slotmap/internal/model"
)

// LogScanner is the read side of the action log.
type LogScanner interface {
	Scan(ctx context.Context) iter.Seq2[model.LogEntry, error]
}

// Grid is the read side of the occupancy grid.
type Grid interface {
	IsFree(room model.RoomID, day model.Day, hour model.Hour) (bool, error)
	Snapshot() []model.Room
}

// Engine answers ownership and history questions from the log.
type Engine struct {
	log LogScanner
}

// New creates an engine over log.
func New(log LogScanner) *Engine {
	return &Engine{log: log}
}

// LastAction returns the most recently appended entry for slot. found is
// false when the slot has no history.
func (e *Engine) LastAction(ctx context.Context, slot model.Slot) (last model.LogEntry, found bool, err error) {
	for entry, err := range e.log.Scan(ctx) {
		if err != nil {
			return model.LogEntry{}, false, fmt.Errorf("last action for %s: %w", slot, err)
		}
		if entry.Slot() == slot {
			last, found = entry, true
		}
	}
	return last, found, nil
}

// CurrentHolder returns the actor holding slot. ok is false unless the last
// action on slot is a Book.
func (e *Engine) CurrentHolder(ctx context.Context, slot model.Slot) (string, bool, error) {
	last, found, err := e.LastAction(ctx, slot)
	if err != nil {
		return "", false, err
	}
	if !found || last.Action != model.ActionBook {
		return "", false, nil
	}
	return last.Actor, true, nil
}

// HistoryItem is one entry of an actor's history.
type HistoryItem struct {
	model.LogEntry

	// CancelledByOther marks a Cancel by someone else on a slot the actor
	// held at the time.
	CancelledByOther bool `json:"cancelled_by_other"`
}

// HistoryFor returns, in append order, every entry written by actor plus
// every Cancel by another actor whose previous last action on that slot was
// a Book by actor.
func (e *Engine) HistoryFor(ctx context.Context, actor string) ([]HistoryItem, error) {
	items := []HistoryItem{}
	last := make(map[model.Slot]model.LogEntry)

	for entry, err := range e.log.Scan(ctx) {
		if err != nil {
			return nil, fmt.Errorf("history for %q: %w", actor, err)
		}
		key := entry.Slot()
		prev, seen := last[key]
		last[key] = entry

		switch {
		case entry.Actor == actor:
			items = append(items, HistoryItem{LogEntry: entry})
		case entry.Action == model.ActionCancel && seen &&
			prev.Action == model.ActionBook && prev.Actor == actor:
			items = append(items, HistoryItem{LogEntry: entry, CancelledByOther: true})
		}
	}
	return items, nil
}

// lastBySlot folds the whole log into the last entry per slot.
func (e *Engine) lastBySlot(ctx context.Context) (map[model.Slot]model.LogEntry, int, error) {
	last := make(map[model.Slot]model.LogEntry)
	n := 0
	for entry, err := range e.log.Scan(ctx) {
		if err != nil {
			return nil, n, err
		}
		last[entry.Slot()] = entry
		n++
	}
	return last, n, nil
}
