package model

import "fmt"

// Grid dimensions.
const (
	DaysPerWeek = 7
	HoursPerDay = 24
)

// RoomID identifies a room as floor*100 + unit.
type RoomID int

// Room id bounds.
const (
	MinRoomID RoomID = 101
	MaxRoomID RoomID = 999
)

// Floor returns the hundreds digit of the id.
func (id RoomID) Floor() int { return int(id) / 100 }

// Unit returns the room number within its floor.
func (id RoomID) Unit() int { return int(id) % 100 }

// Valid reports whether id fits the floor 1-9 / unit 1-99 scheme.
func (id RoomID) Valid() bool {
	if id < MinRoomID || id > MaxRoomID {
		return false
	}
	return id.Floor() >= 1 && id.Floor() <= 9 && id.Unit() >= 1 && id.Unit() <= 99
}

// Day is a day-of-week index, 0=Sun through 6=Sat.
type Day int

// Day indices.
const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Valid reports whether d is within 0-6.
func (d Day) Valid() bool { return d >= 0 && d < DaysPerWeek }

// String returns the short day name ("Mon"), or "Invalid".
func (d Day) String() string {
	if !d.Valid() {
		return "Invalid"
	}
	return dayNames[d]
}

// Hour is an hour of day in 24-hour form.
type Hour int

// Valid reports whether h is within 0-23.
func (h Hour) Valid() bool { return h >= 0 && h < HoursPerDay }

// String renders h on the 12-hour clock: 0 -> "12AM", 13 -> "1PM".
func (h Hour) String() string {
	switch {
	case !h.Valid():
		return fmt.Sprintf("Invalid(%d)", int(h))
	case h == 0:
		return "12AM"
	case h < 12:
		return fmt.Sprintf("%dAM", int(h))
	case h == 12:
		return "12PM"
	default:
		return fmt.Sprintf("%dPM", int(h)-12)
	}
}

// Category classifies a room.
type Category string

// Room categories (stored lowercase).
const (
	CategoryLab     Category = "lab"
	CategoryGeneral Category = "general"
)

// Schedule is a day-major occupancy matrix; true means booked.
type Schedule [DaysPerWeek][HoursPerDay]bool

// Count returns the number of occupied slots.
func (s *Schedule) Count() int {
	n := 0
	for d := range s {
		for h := range s[d] {
			if s[d][h] {
				n++
			}
		}
	}
	return n
}

// Room is a bookable classroom. Occupied is the only field that changes
// after provisioning.
type Room struct {
	ID         RoomID   `json:"id" validate:"roomid"`
	Department string   `json:"department" validate:"required,max=19,token"`
	Category   Category `json:"category" validate:"oneof=lab general"`
	Occupied   Schedule `json:"-"`
}

// Slot is the atomic unit of booking.
type Slot struct {
	Room RoomID `json:"room_id"`
	Day  Day    `json:"day"`
	Hour Hour   `json:"hour"`
}

// Validate checks the slot against the boundary scheme.
func (s Slot) Validate() error {
	if !s.Room.Valid() {
		return fmt.Errorf("invalid room id %d", int(s.Room))
	}
	if !s.Day.Valid() {
		return fmt.Errorf("invalid day %d", int(s.Day))
	}
	if !s.Hour.Valid() {
		return fmt.Errorf("invalid hour %d", int(s.Hour))
	}
	return nil
}

func (s Slot) String() string {
	return fmt.Sprintf("room %d %s %s", int(s.Room), s.Day, s.Hour)
}

// Action is a log entry tag.
type Action string

// Log actions.
const (
	ActionBook   Action = "book"
	ActionCancel Action = "cancel"
)

// Code returns the single-letter storage code ("B" or "C").
func (a Action) Code() string {
	switch a {
	case ActionBook:
		return "B"
	case ActionCancel:
		return "C"
	}
	return "?"
}

// ParseActionCode maps a storage code back to an Action.
func ParseActionCode(code string) (Action, error) {
	switch code {
	case "B":
		return ActionBook, nil
	case "C":
		return ActionCancel, nil
	}
	return "", fmt.Errorf("unknown action code %q", code)
}

// LogEntry is one immutable booking or cancellation event.
// Seq is assigned by the log on append.
type LogEntry struct {
	Seq    int64  `json:"seq"`
	Room   RoomID `json:"room_id" validate:"roomid"`
	Day    Day    `json:"day" validate:"min=0,max=6"`
	Hour   Hour   `json:"hour" validate:"min=0,max=23"`
	Actor  string `json:"actor" validate:"required,max=49,token"`
	Action Action `json:"action" validate:"oneof=book cancel"`
}

// Slot returns the entry's key.
func (e LogEntry) Slot() Slot {
	return Slot{Room: e.Room, Day: e.Day, Hour: e.Hour}
}

// Role gates privileged operations.
type Role string

// Account roles.
const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// Account is an actor allowed to book and cancel.
type Account struct {
	Identity string `json:"identity" validate:"required,max=49,token"`
	Secret   string `json:"-" validate:"required,max=49,token"`
	Role     Role   `json:"role" validate:"oneof=regular admin"`
}

// IsAdmin reports whether the account bypasses ownership checks.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }
