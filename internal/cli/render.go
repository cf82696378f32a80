package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/reconcile"
)

// Color palette
var (
	colorFree    = lipgloss.Color("#2CD7C7")
	colorBooked  = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#2C4A54")
	colorBorder  = lipgloss.Color("#16858E")
)

// Status icons
const (
	iconOK      = "✓"
	iconWarning = "⚠"
	iconError   = "✗"
	cellFree    = "·"
	cellBooked  = "■"
)

// styles are bound to one writer so color is only emitted to terminals.
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	free    lipgloss.Style
	booked  lipgloss.Style
	ok      lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	box     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		free:    r.NewStyle().Foreground(colorFree),
		booked:  r.NewStyle().Foreground(colorBooked).Bold(true),
		ok:      r.NewStyle().Foreground(colorFree),
		warning: r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorBooked),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
	}
}

// renderRoom draws one room's week as a day by hour matrix.
func (s styles) renderRoom(r model.Room) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.title.Render(fmt.Sprintf("Room %d  %s  %s  floor %d",
		int(r.ID), r.Department, r.Category, r.ID.Floor())))

	b.WriteString("    ")
	for h := range model.HoursPerDay {
		b.WriteString(s.muted.Render(fmt.Sprintf("%3d", h)))
	}
	b.WriteString("\n")

	for d := range model.DaysPerWeek {
		fmt.Fprintf(&b, "%-4s", model.Day(d))
		for h := range model.HoursPerDay {
			if r.Occupied[d][h] {
				b.WriteString(s.booked.Render(fmt.Sprintf("%3s", cellBooked)))
			} else {
				b.WriteString(s.free.Render(fmt.Sprintf("%3s", cellFree)))
			}
		}
		if d < model.DaysPerWeek-1 {
			b.WriteString("\n")
		}
	}

	return s.box.Render(b.String()) + "\n"
}

// renderRooms lists rooms one per line with their booked-slot count.
func (s styles) renderRooms(rooms []model.Room) string {
	if len(rooms) == 0 {
		return "No rooms.\n"
	}
	var b strings.Builder
	for _, r := range rooms {
		fmt.Fprintf(&b, "%d  %-19s  %-7s  floor %d  %s\n",
			int(r.ID), r.Department, r.Category, r.ID.Floor(),
			s.muted.Render(fmt.Sprintf("%d booked", r.Occupied.Count())))
	}
	return b.String()
}

// renderSearch lists availability at one slot.
func (s styles) renderSearch(q grid.Query, hits []grid.Availability) string {
	if len(hits) == 0 {
		return "No matching rooms.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.title.Render(fmt.Sprintf("%s %s", q.Day, q.Hour)))
	for _, h := range hits {
		status := s.free.Render("free")
		if !h.Free {
			status = s.booked.Render("booked")
		}
		fmt.Fprintf(&b, "%d  %-19s  %-7s  %s\n", int(h.Room), h.Department, h.Category, status)
	}
	return b.String()
}

// renderOutcome describes a finished transaction, warnings included.
func (s styles) renderOutcome(out booking.Outcome, err error) string {
	var b strings.Builder
	switch {
	case err != nil:
		fmt.Fprintf(&b, "%s %s %s: %s\n", s.err.Render(iconError), out.Action, out.Slot, out.State)
	case out.Entry != nil:
		fmt.Fprintf(&b, "%s %s %s (seq %d)\n", s.ok.Render(iconOK), out.Action, out.Slot, out.Entry.Seq)
	default:
		fmt.Fprintf(&b, "%s %s %s\n", s.ok.Render(iconOK), out.Action, out.Slot)
	}
	for _, w := range out.Warnings {
		fmt.Fprintf(&b, "%s %s\n", s.warning.Render(iconWarning), w)
	}
	return b.String()
}

// renderHistory lists an actor's log entries in append order.
func (s styles) renderHistory(actor string, items []reconcile.HistoryItem) string {
	if len(items) == 0 {
		return fmt.Sprintf("No history for %s.\n", actor)
	}
	var b strings.Builder
	for _, it := range items {
		line := fmt.Sprintf("%4d  %-6s  %s  by %s", it.Seq, it.Action, it.Slot(), it.Actor)
		if it.CancelledByOther {
			line += "  " + s.warning.Render("(cancelled your booking)")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderLog lists log entries in append order.
func (s styles) renderLog(entries []model.LogEntry) string {
	if len(entries) == 0 {
		return "The log is empty.\n"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%4d  %-6s  %s  by %s\n", e.Seq, e.Action, e.Slot(), e.Actor)
	}
	fmt.Fprintf(&b, "%s\n", s.muted.Render(fmt.Sprintf("%d entries", len(entries))))
	return b.String()
}

// renderBookings lists live bookings.
func (s styles) renderBookings(bookings []reconcile.Booking) string {
	if len(bookings) == 0 {
		return "No active bookings.\n"
	}
	var b strings.Builder
	for _, bk := range bookings {
		fmt.Fprintf(&b, "%s  %s  %s\n", bk.Slot, bk.Holder, s.muted.Render(fmt.Sprintf("seq %d", bk.Seq)))
	}
	return b.String()
}

// renderReport summarizes a reconciliation.
func (s styles) renderReport(rep reconcile.Report) string {
	var b strings.Builder
	if rep.OK() {
		fmt.Fprintf(&b, "%s grid and log agree (%d rooms, %d slots, %d log entries)\n",
			s.ok.Render(iconOK), rep.Rooms, rep.Slots, rep.Entries)
		return b.String()
	}
	fmt.Fprintf(&b, "%s %d violation(s) (%d rooms, %d slots, %d log entries)\n",
		s.err.Render(iconError), len(rep.Violations), rep.Rooms, rep.Slots, rep.Entries)
	for _, v := range rep.Violations {
		fmt.Fprintf(&b, "  %s %s\n", s.warning.Render(iconWarning), v)
	}
	return b.String()
}
