package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// recordValidate checks records loaded from storage or supplied by callers.
// Initialized in init() with the slotmap-specific tags.
var recordValidate *validator.Validate

func init() {
	recordValidate = validator.New(validator.WithRequiredStructEnabled())

	// roomid: floor 1-9, unit 1-99
	_ = recordValidate.RegisterValidation("roomid", validateRoomID)
	// token: non-empty, no whitespace (the text stores are whitespace-delimited)
	_ = recordValidate.RegisterValidation("token", validateToken)
}

func validateRoomID(fl validator.FieldLevel) bool {
	return RoomID(fl.Field().Int()).Valid()
}

func validateToken(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && strings.IndexFunc(s, unicode.IsSpace) < 0
}

// ValidateRoom checks a room's id, department and category.
func ValidateRoom(r Room) error {
	return describe("room", recordValidate.Struct(r))
}

// ValidateEntry checks a log entry's key, actor and action.
func ValidateEntry(e LogEntry) error {
	return describe("log entry", recordValidate.Struct(e))
}

// ValidateAccount checks an account's identity, secret and role.
func ValidateAccount(a Account) error {
	return describe("account", recordValidate.Struct(a))
}

// describe flattens validator errors into one readable error.
func describe(kind string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", kind, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Field() == "Secret" {
			parts = append(parts, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v fails %q", fe.Field(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("invalid %s: %s", kind, strings.Join(parts, ", "))
}
