package reconcile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/store"
	"github.com/roach88/slotmap/internal/testutil"
)

var (
	mon9  = testutil.Slot(101, model.Monday, 9)
	mon10 = testutil.Slot(101, model.Monday, 10)
	fri14 = testutil.Slot(202, model.Friday, 14)
)

func TestLastAction(t *testing.T) {
	tests := []struct {
		name      string
		log       []model.LogEntry
		slot      model.Slot
		wantFound bool
		wantActor string
		wantAct   model.Action
	}{
		{
			name:      "empty log",
			slot:      mon9,
			wantFound: false,
		},
		{
			name:      "single book",
			log:       []model.LogEntry{testutil.Book(mon9, "alice")},
			slot:      mon9,
			wantFound: true,
			wantActor: "alice",
			wantAct:   model.ActionBook,
		},
		{
			name: "last write wins",
			log: []model.LogEntry{
				testutil.Book(mon9, "alice"),
				testutil.Cancel(mon9, "admin"),
				testutil.Book(mon9, "bob"),
			},
			slot:      mon9,
			wantFound: true,
			wantActor: "bob",
			wantAct:   model.ActionBook,
		},
		{
			name: "other keys ignored",
			log: []model.LogEntry{
				testutil.Book(mon9, "alice"),
				testutil.Book(mon10, "bob"),
				testutil.Cancel(fri14, "carol"),
			},
			slot:      mon9,
			wantFound: true,
			wantActor: "alice",
			wantAct:   model.ActionBook,
		},
		{
			name:      "no match",
			log:       []model.LogEntry{testutil.Book(mon10, "bob")},
			slot:      mon9,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(testutil.NewMemoryLog(tt.log...))
			last, found, err := e.LastAction(context.Background(), tt.slot)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantActor, last.Actor)
				assert.Equal(t, tt.wantAct, last.Action)
			}
		})
	}
}

func TestLastAction_ScanError(t *testing.T) {
	log := testutil.NewMemoryLog()
	log.FailScan = errors.New("read error")

	_, _, err := New(log).LastAction(context.Background(), mon9)
	assert.ErrorContains(t, err, "read error")
}

func TestLastAction_ReadsFreshFromStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	e := New(s)

	_, found, err := e.LastAction(ctx, mon9)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Append(ctx, testutil.Book(mon9, "alice"))
	require.NoError(t, err)

	last, found, err := e.LastAction(ctx, mon9)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", last.Actor)
}

func TestCurrentHolder(t *testing.T) {
	ctx := context.Background()
	log := testutil.NewMemoryLog(
		testutil.Book(mon9, "alice"),
		testutil.Book(mon10, "bob"),
		testutil.Cancel(mon10, "bob"),
	)
	e := New(log)

	holder, ok, err := e.CurrentHolder(ctx, mon9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", holder)

	_, ok, err = e.CurrentHolder(ctx, mon10)
	require.NoError(t, err)
	assert.False(t, ok, "cancelled slot has no holder")

	_, ok, err = e.CurrentHolder(ctx, fri14)
	require.NoError(t, err)
	assert.False(t, ok, "untouched slot has no holder")
}

func TestHistoryFor(t *testing.T) {
	log := testutil.NewMemoryLog(
		testutil.Book(mon9, "alice"),    // 1 alice own
		testutil.Book(mon10, "bob"),     // 2
		testutil.Cancel(mon9, "admin"),  // 3 cancels alice's booking
		testutil.Book(mon9, "bob"),      // 4
		testutil.Cancel(mon9, "admin"),  // 5 cancels bob's booking, not alice's
		testutil.Book(fri14, "alice"),   // 6 alice own
		testutil.Cancel(fri14, "alice"), // 7 alice own
		testutil.Cancel(fri14, "admin"), // 8 previous last is a Cancel
	)
	e := New(log)

	items, err := e.HistoryFor(context.Background(), "alice")
	require.NoError(t, err)

	var seqs []int64
	var flagged []int64
	for _, it := range items {
		seqs = append(seqs, it.Seq)
		if it.CancelledByOther {
			flagged = append(flagged, it.Seq)
		}
	}
	assert.Equal(t, []int64{1, 3, 6, 7}, seqs)
	assert.Equal(t, []int64{3}, flagged)
}

func TestHistoryFor_UnknownActor(t *testing.T) {
	e := New(testutil.NewMemoryLog(testutil.Book(mon9, "alice")))

	items, err := e.HistoryFor(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHistoryFor_CaseSensitiveIdentity(t *testing.T) {
	e := New(testutil.NewMemoryLog(testutil.Book(mon9, "alice")))

	items, err := e.HistoryFor(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Empty(t, items)
}
