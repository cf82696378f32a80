package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStore_SaveKeepsLastGoodSnapshot(t *testing.T) {
	ctx := context.Background()
	s := &RoomStore{}

	require.NoError(t, s.SaveRooms(ctx, Rooms(101, 102)))
	assert.Equal(t, 1, s.Saves())

	s.FailSave = errors.New("disk full")
	assert.Error(t, s.SaveRooms(ctx, Rooms(301)))

	saved := s.Saved()
	require.Len(t, saved, 2)
	assert.Equal(t, 1, s.Saves())
}

func TestFixedRequestIDs(t *testing.T) {
	assert.Equal(t, "req-1", NewFixedRequestIDs("req-1").Generate())
	assert.Equal(t, "test-request", NewFixedRequestIDs("").Generate())
}
