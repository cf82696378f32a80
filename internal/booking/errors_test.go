package booking

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/slotmap/internal/testutil"
)

func TestError_Format(t *testing.T) {
	err := &Error{Code: CodeNotFound, Message: "slot is not booked", Slot: testutil.Slot(101, 1, 9)}
	assert.Equal(t, "NOT_FOUND: slot is not booked (room 101 Mon 9AM)", err.Error())

	err = &Error{Code: CodePersistenceFailure, Message: "could not save rooms", Err: errors.New("disk full")}
	assert.Equal(t, "PERSISTENCE_FAILURE: could not save rooms: disk full", err.Error())
}

func TestError_PredicatesSeeThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("book: %w", &Error{Code: CodePersistenceFailure, Err: cause})

	assert.True(t, IsPersistenceFailure(err))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodePersistenceFailure, CodeOf(err))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "checking_availability", StateCheckingAvailability.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, StateRolledBack.Terminal())
	assert.False(t, StateCommitting.Terminal())
}
