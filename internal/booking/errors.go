package booking

import (
	"errors"
	"fmt"

	"github.com/roach88/slotmap/internal/model"
)

// Error is a rejected or failed request.
//
// Error includes structured fields so callers can branch on Code and the CLI
// can render the affected slot.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description safe to show the requester.
	Message string

	// Slot is the affected slot; zero for room and account operations.
	Slot model.Slot

	// Err is the underlying cause, if any.
	Err error
}

// Code categorizes booking errors and warnings.
type Code string

const (
	// CodeNotFound indicates a room or booked slot is absent.
	CodeNotFound Code = "NOT_FOUND"

	// CodeAlreadyOccupied indicates a booking of an occupied slot.
	CodeAlreadyOccupied Code = "ALREADY_OCCUPIED"

	// CodePermissionDenied indicates the requester may not act on the slot.
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// CodePersistenceFailure indicates a durable write or read failed.
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"

	// CodeInvariantViolation indicates the grid and log disagree.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodeInvalidInput indicates a malformed request.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeAlreadyExists indicates a duplicate room or account.
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// CodeLogAppendFailed indicates the grid change is durable but its log
	// entry was not written. Only used as a warning.
	CodeLogAppendFailed Code = "LOG_APPEND_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Slot.Room != 0 {
		msg = fmt.Sprintf("%s (%s)", msg, e.Slot)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsNotFound returns true if the error is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsAlreadyOccupied returns true if the slot was already occupied.
func IsAlreadyOccupied(err error) bool { return CodeOf(err) == CodeAlreadyOccupied }

// IsPermissionDenied returns true if the requester lacked permission.
func IsPermissionDenied(err error) bool { return CodeOf(err) == CodePermissionDenied }

// IsPersistenceFailure returns true if a durable write or read failed.
func IsPersistenceFailure(err error) bool { return CodeOf(err) == CodePersistenceFailure }

// IsInvalidInput returns true if the request was malformed.
func IsInvalidInput(err error) bool { return CodeOf(err) == CodeInvalidInput }

// IsAlreadyExists returns true if a room or account already existed.
func IsAlreadyExists(err error) bool { return CodeOf(err) == CodeAlreadyExists }

// Warning is a non-fatal finding attached to an Outcome.
type Warning struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
