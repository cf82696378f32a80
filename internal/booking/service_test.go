package booking

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/reconcile"
	"github.com/roach88/slotmap/internal/store"
	"github.com/roach88/slotmap/internal/testutil"
)

var (
	alice = model.Account{Identity: "alice", Secret: "pw", Role: model.RoleRegular}
	bob   = model.Account{Identity: "bob", Secret: "pw", Role: model.RoleRegular}
	admin = model.Account{Identity: "admin", Secret: "admin123", Role: model.RoleAdmin}

	mon9 = testutil.Slot(101, model.Monday, 9)
)

type fixture struct {
	svc   *Service
	grid  *grid.Grid
	log   *testutil.MemoryLog
	rooms *testutil.RoomStore
}

func newFixture(t *testing.T, log *testutil.MemoryLog, occupied ...model.Slot) *fixture {
	t.Helper()
	g, err := grid.New(testutil.Rooms(101, 102, 201))
	require.NoError(t, err)
	for _, s := range occupied {
		require.NoError(t, g.SetOccupied(s.Room, s.Day, s.Hour, true))
	}
	rooms := &testutil.RoomStore{}
	svc := NewService(g, rooms, log, nil,
		WithRequestIDs(testutil.NewFixedRequestIDs("req-1")),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	return &fixture{svc: svc, grid: g, log: log, rooms: rooms}
}

func (f *fixture) isFree(t *testing.T, s model.Slot) bool {
	t.Helper()
	free, err := f.grid.IsFree(s.Room, s.Day, s.Hour)
	require.NoError(t, err)
	return free
}

func (f *fixture) lastAction(t *testing.T, s model.Slot) (model.LogEntry, bool) {
	t.Helper()
	last, found, err := f.svc.LastAction(context.Background(), s)
	require.NoError(t, err)
	return last, found
}

func TestBook_Success(t *testing.T) {
	f := newFixture(t, testutil.NewMemoryLog())

	out, err := f.svc.Book(context.Background(), alice, mon9)
	require.NoError(t, err)

	assert.True(t, out.Committed())
	assert.Equal(t, "req-1", out.RequestID)
	assert.Empty(t, out.Warnings)
	require.NotNil(t, out.Entry)
	assert.Equal(t, int64(1), out.Entry.Seq)

	assert.False(t, f.isFree(t, mon9))
	last, found := f.lastAction(t, mon9)
	require.True(t, found)
	assert.Equal(t, "alice", last.Actor)
	assert.Equal(t, model.ActionBook, last.Action)

	saved := f.rooms.Saved()
	require.Len(t, saved, 3)
	assert.True(t, saved[0].Occupied[model.Monday][9])
}

func TestBook_AlreadyOccupiedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())
	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)
	saves := f.rooms.Saves()

	out, err := f.svc.Book(ctx, bob, mon9)
	require.Error(t, err)
	assert.True(t, IsAlreadyOccupied(err))
	assert.Equal(t, "ALREADY_OCCUPIED: booked by alice (room 101 Mon 9AM)", err.Error())
	assert.Equal(t, StateRejected, out.State)
	assert.Empty(t, out.Warnings)

	assert.Equal(t, 1, f.log.Len())
	assert.Equal(t, saves, f.rooms.Saves())
	assert.False(t, f.isFree(t, mon9))
	last, _ := f.lastAction(t, mon9)
	assert.Equal(t, "alice", last.Actor)
}

func TestBook_OccupiedWithoutLogWarns(t *testing.T) {
	f := newFixture(t, testutil.NewMemoryLog(), mon9)

	out, err := f.svc.Book(context.Background(), alice, mon9)
	require.Error(t, err)
	assert.True(t, IsAlreadyOccupied(err))
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, CodeInvariantViolation, out.Warnings[0].Code)
	assert.Equal(t, 0, f.log.Len())
}

func TestBook_OccupiedAfterCancelWarns(t *testing.T) {
	log := testutil.NewMemoryLog(testutil.Book(mon9, "alice"), testutil.Cancel(mon9, "alice"))
	f := newFixture(t, log, mon9)

	out, err := f.svc.Book(context.Background(), bob, mon9)
	require.Error(t, err)
	assert.True(t, IsAlreadyOccupied(err))
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, CodeInvariantViolation, out.Warnings[0].Code)
}

func TestBook_PersistenceFailureRollsBack(t *testing.T) {
	f := newFixture(t, testutil.NewMemoryLog())
	f.rooms.FailSave = errors.New("disk full")

	out, err := f.svc.Book(context.Background(), alice, mon9)
	require.Error(t, err)
	assert.True(t, IsPersistenceFailure(err))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, StateRolledBack, out.State)

	assert.True(t, f.isFree(t, mon9), "in-memory flag must be restored")
	assert.Equal(t, 0, f.log.Len(), "no log entry after rollback")
}

func TestBook_LogAppendFailureStillCommits(t *testing.T) {
	ctx := context.Background()
	log := testutil.NewMemoryLog()
	log.FailAppend = errors.New("log unavailable")
	f := newFixture(t, log)

	out, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)
	assert.True(t, out.Committed())
	assert.Nil(t, out.Entry)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, CodeLogAppendFailed, out.Warnings[0].Code)

	assert.False(t, f.isFree(t, mon9))
	assert.True(t, f.rooms.Saved()[0].Occupied[model.Monday][9])

	report, err := f.svc.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, reconcile.OccupiedWithoutBook, report.Violations[0].Kind)
}

func TestBook_Validation(t *testing.T) {
	tests := []struct {
		name  string
		actor model.Account
		slot  model.Slot
		check func(error) bool
	}{
		{"unknown room", alice, testutil.Slot(999, model.Monday, 9), IsNotFound},
		{"bad room id", alice, testutil.Slot(100, model.Monday, 9), IsInvalidInput},
		{"bad day", alice, testutil.Slot(101, 7, 9), IsInvalidInput},
		{"bad hour", alice, testutil.Slot(101, model.Monday, 24), IsInvalidInput},
		{"empty actor", model.Account{Role: model.RoleRegular}, mon9, IsInvalidInput},
		{"spaced actor", model.Account{Identity: "a b", Role: model.RoleRegular}, mon9, IsInvalidInput},
		{"no role", model.Account{Identity: "alice"}, mon9, IsInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testutil.NewMemoryLog())
			out, err := f.svc.Book(context.Background(), tt.actor, tt.slot)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Equal(t, StateRejected, out.State)
			assert.Equal(t, 0, f.log.Len())
			assert.Equal(t, 0, f.rooms.Saves())
		})
	}
}

func TestCancel_ByOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())
	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)

	out, err := f.svc.Cancel(ctx, alice, mon9)
	require.NoError(t, err)
	assert.True(t, out.Committed())
	assert.True(t, f.isFree(t, mon9))

	last, _ := f.lastAction(t, mon9)
	assert.Equal(t, "alice", last.Actor)
	assert.Equal(t, model.ActionCancel, last.Action)
}

func TestCancel_AdminOverridesAndRecordsSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())
	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)

	out, err := f.svc.Cancel(ctx, admin, mon9)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.True(t, f.isFree(t, mon9))

	last, _ := f.lastAction(t, mon9)
	assert.Equal(t, "admin", last.Actor)
	assert.Equal(t, model.ActionCancel, last.Action)

	history, err := f.svc.HistoryFor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].CancelledByOther)
	assert.True(t, history[1].CancelledByOther)
	assert.Equal(t, "admin", history[1].Actor)
}

func TestCancel_RegularCannotCancelOthers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())
	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)
	saves := f.rooms.Saves()

	out, err := f.svc.Cancel(ctx, bob, mon9)
	require.Error(t, err)
	assert.True(t, IsPermissionDenied(err))
	assert.NotContains(t, err.Error(), "alice", "must not reveal the holder")
	assert.Equal(t, StateRejected, out.State)

	assert.False(t, f.isFree(t, mon9))
	assert.Equal(t, 1, f.log.Len())
	assert.Equal(t, saves, f.rooms.Saves())
}

func TestCancel_PermissionGateRunsFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())

	_, err := f.svc.Cancel(ctx, alice, mon9)
	assert.True(t, IsPermissionDenied(err), "regular on free slot: %v", err)

	_, err = f.svc.Cancel(ctx, admin, mon9)
	assert.True(t, IsNotFound(err), "admin on free slot: %v", err)
	assert.Equal(t, 0, f.log.Len())
}

func TestCancel_AfterOwnCancelDenied(t *testing.T) {
	ctx := context.Background()
	log := testutil.NewMemoryLog(testutil.Book(mon9, "alice"), testutil.Cancel(mon9, "alice"))
	f := newFixture(t, log, mon9)

	_, err := f.svc.Cancel(ctx, alice, mon9)
	assert.True(t, IsPermissionDenied(err))
}

func TestCancel_FreeButLoggedBookWarns(t *testing.T) {
	log := testutil.NewMemoryLog(testutil.Book(mon9, "alice"))
	f := newFixture(t, log)

	out, err := f.svc.Cancel(context.Background(), alice, mon9)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, CodeInvariantViolation, out.Warnings[0].Code)
	assert.Equal(t, 1, log.Len())
}

func TestCancel_AdminOnUnloggedOccupiedWarns(t *testing.T) {
	f := newFixture(t, testutil.NewMemoryLog(), mon9)

	out, err := f.svc.Cancel(context.Background(), admin, mon9)
	require.NoError(t, err)
	assert.True(t, out.Committed())
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, CodeInvariantViolation, out.Warnings[0].Code)
	assert.True(t, f.isFree(t, mon9))
	assert.Equal(t, 1, f.log.Len())
}

func TestCancel_PersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())
	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)

	f.rooms.FailSave = errors.New("disk full")
	out, err := f.svc.Cancel(ctx, alice, mon9)
	require.Error(t, err)
	assert.True(t, IsPersistenceFailure(err))
	assert.Equal(t, StateRolledBack, out.State)

	assert.False(t, f.isFree(t, mon9))
	assert.Equal(t, 1, f.log.Len())
}

func TestCancel_LogAppendFailureWarns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())
	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)

	f.log.FailAppend = errors.New("log unavailable")
	out, err := f.svc.Cancel(ctx, alice, mon9)
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, CodeLogAppendFailed, out.Warnings[0].Code)
	assert.True(t, f.isFree(t, mon9))

	report, err := f.svc.Verify(ctx)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, reconcile.BookedButFree, report.Violations[0].Kind)
}

func TestScenario_AliceBobAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())

	require.True(t, f.isFree(t, mon9))

	_, err := f.svc.Book(ctx, alice, mon9)
	require.NoError(t, err)
	assert.False(t, f.isFree(t, mon9))
	entries := f.log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.RoomID(101), entries[0].Room)
	assert.Equal(t, model.Day(1), entries[0].Day)
	assert.Equal(t, model.Hour(9), entries[0].Hour)
	assert.Equal(t, "alice", entries[0].Actor)

	_, err = f.svc.Cancel(ctx, bob, mon9)
	assert.True(t, IsPermissionDenied(err))
	assert.False(t, f.isFree(t, mon9))
	assert.Equal(t, 1, f.log.Len())

	_, err = f.svc.Cancel(ctx, alice, mon9)
	require.NoError(t, err)
	assert.True(t, f.isFree(t, mon9))
	entries = f.log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionBook, entries[0].Action)
	assert.Equal(t, model.ActionCancel, entries[1].Action)
	assert.Equal(t, "alice", entries[1].Actor)

	_, err = f.svc.Cancel(ctx, admin, mon9)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 2, f.log.Len())

	report, err := f.svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestService_VerifyCleanAfterTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())

	actors := []model.Account{alice, bob, admin}
	for i := 0; i < 60; i++ {
		actor := actors[i%len(actors)]
		slot := testutil.Slot(101+model.RoomID(i%2), model.Day(i%7), model.Hour(i%5))
		if i%4 == 3 {
			_, _ = f.svc.Cancel(ctx, actor, slot)
		} else {
			_, _ = f.svc.Book(ctx, actor, slot)
		}
	}

	report, err := f.svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), "violations: %v", report.Violations)
}

func TestService_ConcurrentBookingsOfOneSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.NewMemoryLog())

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := f.svc.Book(ctx, alice, mon9)
			if err == nil && out.Committed() {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, f.log.Len())
}

func TestService_LogsStateTransitions(t *testing.T) {
	var buf bytes.Buffer
	g, err := grid.New(testutil.Rooms(101))
	require.NoError(t, err)
	svc := NewService(g, &testutil.RoomStore{}, testutil.NewMemoryLog(), nil,
		WithRequestIDs(testutil.NewFixedRequestIDs("req-42")),
		WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)

	_, err = svc.Book(context.Background(), alice, mon9)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "request_id=req-42")
	assert.Contains(t, out, "to=validating")
	assert.Contains(t, out, "to=checking_availability")
	assert.Contains(t, out, "to=committing")
	assert.Contains(t, out, "to=committed")
}

func TestService_RoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slotmap.db")
	s, err := store.Open(path)
	require.NoError(t, err)

	g, err := grid.New(testutil.Rooms(101, 102))
	require.NoError(t, err)
	require.NoError(t, s.SaveRooms(ctx, g.Snapshot()))

	svc := NewService(g, s, s, s)
	_, err = svc.Book(ctx, alice, mon9)
	require.NoError(t, err)
	_, err = svc.Book(ctx, bob, testutil.Slot(102, model.Saturday, 23))
	require.NoError(t, err)
	before := svc.Rooms()
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, rooms)

	g2, err := grid.New(rooms)
	require.NoError(t, err)
	report, err := NewService(g2, s, s, s).Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
}
