package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/testutil"
)

func newGrid(t *testing.T, occupied ...model.Slot) *grid.Grid {
	t.Helper()
	g, err := grid.New(testutil.Rooms(101, 202))
	require.NoError(t, err)
	for _, s := range occupied {
		require.NoError(t, g.SetOccupied(s.Room, s.Day, s.Hour, true))
	}
	return g
}

func TestVerify_Consistent(t *testing.T) {
	g := newGrid(t, mon9)
	log := testutil.NewMemoryLog(
		testutil.Book(mon9, "alice"),
		testutil.Book(fri14, "bob"),
		testutil.Cancel(fri14, "bob"),
	)

	report, err := New(log).Verify(context.Background(), g)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Rooms)
	assert.Equal(t, 2*7*24, report.Slots)
	assert.Equal(t, 3, report.Entries)
}

func TestVerify_BothDirections(t *testing.T) {
	// mon9 occupied with no log entry, mon10 occupied after a cancel,
	// fri14 booked in the log but free in the grid.
	g := newGrid(t, mon9, mon10)
	log := testutil.NewMemoryLog(
		testutil.Book(mon10, "alice"),
		testutil.Cancel(mon10, "alice"),
		testutil.Book(fri14, "bob"),
	)

	report, err := New(log).Verify(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, report.Violations, 3)

	assert.Equal(t, OccupiedWithoutBook, report.Violations[0].Kind)
	assert.Equal(t, mon9, report.Violations[0].Slot)
	assert.Equal(t, "room 101 Mon 9AM: occupied but no matching log entry", report.Violations[0].String())

	assert.Equal(t, OccupiedWithoutBook, report.Violations[1].Kind)
	assert.Equal(t, mon10, report.Violations[1].Slot)
	assert.Equal(t, model.ActionCancel, report.Violations[1].Last.Action)

	assert.Equal(t, BookedButFree, report.Violations[2].Kind)
	assert.Equal(t, fri14, report.Violations[2].Slot)
	assert.Equal(t, "room 202 Fri 2PM: free but booked by bob (seq 3)", report.Violations[2].String())
}

func TestVerify_UnknownRoom(t *testing.T) {
	g := newGrid(t)
	ghost := testutil.Slot(555, model.Sunday, 0)
	log := testutil.NewMemoryLog(testutil.Cancel(ghost, "admin"))

	report, err := New(log).Verify(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, UnknownRoom, report.Violations[0].Kind)
	assert.Equal(t, ghost, report.Violations[0].Slot)
}

func TestCheckSlot(t *testing.T) {
	ctx := context.Background()
	g := newGrid(t, mon9)
	e := New(testutil.NewMemoryLog(testutil.Book(fri14, "bob")))

	v, err := e.CheckSlot(ctx, g, mon9)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, OccupiedWithoutBook, v.Kind)

	v, err = e.CheckSlot(ctx, g, fri14)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, BookedButFree, v.Kind)

	v, err = e.CheckSlot(ctx, g, mon10)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = e.CheckSlot(ctx, g, testutil.Slot(303, model.Monday, 9))
	assert.ErrorIs(t, err, grid.ErrRoomNotFound)
}

func TestActiveBookings(t *testing.T) {
	ctx := context.Background()
	g := newGrid(t, mon9, mon10, fri14)
	log := testutil.NewMemoryLog(
		testutil.Book(fri14, "bob"),
		testutil.Book(mon10, "alice"),
		testutil.Book(mon9, "alice"),
		testutil.Book(testutil.Slot(202, model.Sunday, 1), "alice"), // booked but free: left out
	)
	e := New(log)

	all, err := e.ActiveBookings(ctx, g, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, mon9, all[0].Slot)
	assert.Equal(t, mon10, all[1].Slot)
	assert.Equal(t, fri14, all[2].Slot)
	assert.Equal(t, "bob", all[2].Holder)

	mine, err := e.ActiveBookings(ctx, g, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(3), mine[0].Seq)
}
