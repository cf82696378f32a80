package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var fullDayNames = [DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// FoldEqual reports whether a and b are equal under Unicode case folding.
func FoldEqual(a, b string) bool {
	// cases.Caser is stateful; use a fresh one per call.
	return cases.Fold().String(a) == cases.Fold().String(b)
}

// ParseDay resolves a day name ("mon", "Mon", "Monday") to its index.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for i := range dayNames {
		if FoldEqual(s, dayNames[i]) || FoldEqual(s, fullDayNames[i]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("invalid day %q: use one of %s", s, strings.Join(dayNames[:], ", "))
}

// ParseHour normalizes 12-hour input ("9AM", "9 am", "12PM") to 0-23.
func ParseHour(s string) (Hour, error) {
	in := strings.TrimSpace(s)
	digits := strings.IndexFunc(in, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits <= 0 {
		return 0, fmt.Errorf("invalid time %q: expected e.g. 9AM or 2 PM", s)
	}

	h, err := strconv.Atoi(in[:digits])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}

	suffix := in[digits:]
	if strings.HasPrefix(suffix, " ") {
		suffix = suffix[1:]
	}
	suffix = cases.Fold().String(suffix)
	if suffix != "am" && suffix != "pm" {
		return 0, fmt.Errorf("invalid time %q: suffix must be AM or PM", s)
	}
	if h < 1 || h > 12 {
		return 0, fmt.Errorf("invalid time %q: hour must be 1-12", s)
	}

	if suffix == "am" {
		if h == 12 {
			return 0, nil
		}
		return Hour(h), nil
	}
	if h == 12 {
		return 12, nil
	}
	return Hour(h + 12), nil
}

// ParseRoomID parses and validates a room id.
func ParseRoomID(s string) (RoomID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid room id %q: not a number", s)
	}
	id := RoomID(n)
	if !id.Valid() {
		return 0, fmt.Errorf("invalid room id %d: floor must be 1-9 and unit 1-99", n)
	}
	return id, nil
}

// ParseCategory resolves "lab" or "general" in any case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	switch {
	case FoldEqual(s, string(CategoryLab)):
		return CategoryLab, nil
	case FoldEqual(s, string(CategoryGeneral)):
		return CategoryGeneral, nil
	}
	return "", fmt.Errorf("invalid category %q: must be lab or general", s)
}

// ParseSlot resolves textual room, day and time into a validated slot.
func ParseSlot(room, day, hour string) (Slot, error) {
	id, err := ParseRoomID(room)
	if err != nil {
		return Slot{}, err
	}
	d, err := ParseDay(day)
	if err != nil {
		return Slot{}, err
	}
	h, err := ParseHour(hour)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Room: id, Day: d, Hour: h}, nil
}
