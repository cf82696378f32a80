package reconcile

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/roach88/slotmap/internal/model"
)

// Booking is a slot that is occupied in the grid and held by a Book entry.
type Booking struct {
	model.Slot
	Holder string `json:"holder"`
	Seq    int64  `json:"seq"`
}

// ActiveBookings lists slots whose last action is a Book and which are
// occupied in g, ordered by room, day then hour. An empty actor lists
// everyone's bookings.
//
// Slots where the grid and log disagree are left out; Verify reports them.
func (e *Engine) ActiveBookings(ctx context.Context, g Grid, actor string) ([]Booking, error) {
	last, _, err := e.lastBySlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("active bookings: %w", err)
	}

	out := []Booking{}
	for slot, entry := range last {
		if entry.Action != model.ActionBook {
			continue
		}
		if actor != "" && entry.Actor != actor {
			continue
		}
		free, err := g.IsFree(slot.Room, slot.Day, slot.Hour)
		if err != nil || free {
			continue
		}
		out = append(out, Booking{Slot: slot, Holder: entry.Actor, Seq: entry.Seq})
	}

	slices.SortFunc(out, func(a, b Booking) int { return compareSlots(a.Slot, b.Slot) })
	return out, nil
}

func compareSlots(a, b model.Slot) int {
	return cmp.Or(
		cmp.Compare(a.Room, b.Room),
		cmp.Compare(a.Day, b.Day),
		cmp.Compare(a.Hour, b.Hour),
	)
}

