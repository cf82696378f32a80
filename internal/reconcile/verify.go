package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/slotmap/internal/model"
)

// Kind classifies a grid/log disagreement.
type Kind string

const (
	// OccupiedWithoutBook: the grid says occupied but the last log entry for
	// the slot is missing or a Cancel.
	OccupiedWithoutBook Kind = "occupied_without_book"

	// BookedButFree: the last log entry is a Book but the grid says free.
	BookedButFree Kind = "booked_but_free"

	// UnknownRoom: the log references a room the grid does not have.
	UnknownRoom Kind = "unknown_room"
)

// Violation is one slot where the grid and the log disagree.
type Violation struct {
	Kind Kind       `json:"kind"`
	Slot model.Slot `json:"slot"`

	// Last is the slot's last log entry; zero when the slot has none.
	Last model.LogEntry `json:"last,omitzero"`
}

func (v Violation) String() string {
	switch v.Kind {
	case OccupiedWithoutBook:
		if v.Last.Seq == 0 {
			return fmt.Sprintf("%s: occupied but no matching log entry", v.Slot)
		}
		return fmt.Sprintf("%s: occupied but last action is %s by %s (seq %d)",
			v.Slot, v.Last.Action, v.Last.Actor, v.Last.Seq)
	case BookedButFree:
		return fmt.Sprintf("%s: free but booked by %s (seq %d)", v.Slot, v.Last.Actor, v.Last.Seq)
	case UnknownRoom:
		return fmt.Sprintf("%s: log references unknown room (last %s by %s, seq %d)",
			v.Slot, v.Last.Action, v.Last.Actor, v.Last.Seq)
	}
	return fmt.Sprintf("%s: %s", v.Slot, v.Kind)
}

// Report summarizes a full grid/log comparison.
type Report struct {
	Rooms      int         `json:"rooms"`
	Slots      int         `json:"slots"`
	Entries    int         `json:"entries"`
	Violations []Violation `json:"violations"`
}

// OK reports whether no violations were found.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Verify compares every slot of every room in g with the log in one pass.
// Violations are ordered by room, day then hour, with unknown-room findings
// last. Verify never repairs anything.
func (e *Engine) Verify(ctx context.Context, g Grid) (Report, error) {
	last, n, err := e.lastBySlot(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("verify: %w", err)
	}

	rooms := g.Snapshot()
	report := Report{
		Rooms:      len(rooms),
		Slots:      len(rooms) * model.DaysPerWeek * model.HoursPerDay,
		Entries:    n,
		Violations: []Violation{},
	}

	known := make(map[model.RoomID]bool, len(rooms))
	for _, r := range rooms {
		known[r.ID] = true
		for d := range model.DaysPerWeek {
			for h := range model.HoursPerDay {
				slot := model.Slot{Room: r.ID, Day: model.Day(d), Hour: model.Hour(h)}
				entry, has := last[slot]
				if v, bad := compare(slot, r.Occupied[d][h], entry, has); bad {
					report.Violations = append(report.Violations, v)
				}
			}
		}
	}

	var unknown []Violation
	for slot, entry := range last {
		if !known[slot.Room] {
			unknown = append(unknown, Violation{Kind: UnknownRoom, Slot: slot, Last: entry})
		}
	}
	slices.SortFunc(unknown, func(a, b Violation) int { return compareSlots(a.Slot, b.Slot) })
	report.Violations = append(report.Violations, unknown...)

	return report, nil
}

// CheckSlot compares a single slot. It returns nil when the grid and log
// agree.
func (e *Engine) CheckSlot(ctx context.Context, g Grid, slot model.Slot) (*Violation, error) {
	free, err := g.IsFree(slot.Room, slot.Day, slot.Hour)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", slot, err)
	}
	entry, has, err := e.LastAction(ctx, slot)
	if err != nil {
		return nil, err
	}
	if v, bad := compare(slot, !free, entry, has); bad {
		return &v, nil
	}
	return nil, nil
}

// compare applies the occupancy rule: occupied iff the last entry exists
// and is a Book.
func compare(slot model.Slot, occupied bool, last model.LogEntry, has bool) (Violation, bool) {
	booked := has && last.Action == model.ActionBook
	switch {
	case occupied && !booked:
		return Violation{Kind: OccupiedWithoutBook, Slot: slot, Last: last}, true
	case !occupied && booked:
		return Violation{Kind: BookedButFree, Slot: slot, Last: last}, true
	}
	return Violation{}, false
}
