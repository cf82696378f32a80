// Package legacy reads and writes the whitespace-delimited text files used
// by earlier slotmap installations: rooms.txt, users.txt and bookings.txt.
//
// Readers never trust a record. A record that parses but fails validation is
// skipped and reported as a Rejection; a file whose structure breaks (missing
// count, truncated record) is an error.
package legacy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/slotmap/internal/model"
)

// Rejection is one skipped record.
type Rejection struct {
	File   string `json:"file"`
	Record int    `json:"record"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s record %d: %s", r.File, r.Record, r.Reason)
}

// tokens walks a file word by word.
type tokens struct {
	sc   *bufio.Scanner
	file string
}

func newTokens(r io.Reader, file string) *tokens {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokens{sc: sc, file: file}
}

func (t *tokens) next(what string) (string, error) {
	if t.sc.Scan() {
		return t.sc.Text(), nil
	}
	if err := t.sc.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", t.file, err)
	}
	return "", fmt.Errorf("read %s: unexpected end of file, want %s", t.file, what)
}

func (t *tokens) nextInt(what string) (int, error) {
	s, err := t.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("read %s: %s %q is not a number", t.file, what, s)
	}
	return n, nil
}

// ReadRooms parses a rooms file: a count, then per room "id department
// category" followed by 7 rows of 24 0/1 flags.
func ReadRooms(r io.Reader) ([]model.Room, []Rejection, error) {
	const file = "rooms.txt"
	tk := newTokens(r, file)

	count, err := tk.nextInt("room count")
	if err != nil {
		return nil, nil, err
	}
	if count < 0 {
		return nil, nil, fmt.Errorf("read %s: negative room count %d", file, count)
	}

	rooms := []model.Room{}
	var rejected []Rejection
	seen := make(map[model.RoomID]bool)

	for i := 1; i <= count; i++ {
		id, err := tk.nextInt("room id")
		if err != nil {
			return nil, nil, err
		}
		dept, err := tk.next("department")
		if err != nil {
			return nil, nil, err
		}
		category, err := tk.next("category")
		if err != nil {
			return nil, nil, err
		}

		room := model.Room{
			ID:         model.RoomID(id),
			Department: dept,
			Category:   model.Category(strings.ToLower(category)),
		}
		var reason string
		for d := range model.DaysPerWeek {
			for h := range model.HoursPerDay {
				flag, err := tk.next("schedule flag")
				if err != nil {
					return nil, nil, err
				}
				switch flag {
				case "0":
				case "1":
					room.Occupied[d][h] = true
				default:
					reason = fmt.Sprintf("schedule flag %q is not 0 or 1", flag)
				}
			}
		}

		if reason == "" {
			if err := model.ValidateRoom(room); err != nil {
				reason = err.Error()
			} else if seen[room.ID] {
				reason = fmt.Sprintf("room %d listed twice", id)
			}
		}
		if reason != "" {
			rejected = append(rejected, Rejection{File: file, Record: i, Reason: reason})
			continue
		}
		seen[room.ID] = true
		rooms = append(rooms, room)
	}
	return rooms, rejected, nil
}

// WriteRooms renders rooms in the ReadRooms layout.
func WriteRooms(w io.Writer, rooms []model.Room) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(rooms))
	for _, r := range rooms {
		fmt.Fprintf(bw, "%d %s %s\n", int(r.ID), r.Department, r.Category)
		for d := range r.Occupied {
			for h := range r.Occupied[d] {
				if r.Occupied[d][h] {
					bw.WriteString("1 ")
				} else {
					bw.WriteString("0 ")
				}
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// ReadAccounts parses an accounts file: a count, then "identity secret
// adminflag" per account. Only an admin flag of 1 grants the admin role.
func ReadAccounts(r io.Reader) ([]model.Account, []Rejection, error) {
	const file = "users.txt"
	tk := newTokens(r, file)

	count, err := tk.nextInt("account count")
	if err != nil {
		return nil, nil, err
	}
	if count < 0 {
		return nil, nil, fmt.Errorf("read %s: negative account count %d", file, count)
	}

	accounts := []model.Account{}
	var rejected []Rejection
	seen := make(map[string]bool)

	for i := 1; i <= count; i++ {
		identity, err := tk.next("identity")
		if err != nil {
			return nil, nil, err
		}
		secret, err := tk.next("secret")
		if err != nil {
			return nil, nil, err
		}
		flag, err := tk.nextInt("admin flag")
		if err != nil {
			return nil, nil, err
		}

		a := model.Account{Identity: identity, Secret: secret, Role: model.RoleRegular}
		if flag == 1 {
			a.Role = model.RoleAdmin
		}
		if err := model.ValidateAccount(a); err != nil {
			rejected = append(rejected, Rejection{File: file, Record: i, Reason: err.Error()})
			continue
		}
		if seen[identity] {
			rejected = append(rejected, Rejection{File: file, Record: i, Reason: fmt.Sprintf("account %q listed twice", identity)})
			continue
		}
		seen[identity] = true
		accounts = append(accounts, a)
	}
	return accounts, rejected, nil
}

// WriteAccounts renders accounts in the ReadAccounts layout.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(accounts))
	for _, a := range accounts {
		flag := 0
		if a.IsAdmin() {
			flag = 1
		}
		fmt.Fprintf(bw, "%s %s %d\n", a.Identity, a.Secret, flag)
	}
	return bw.Flush()
}

var errLogFields = errors.New("want 5 fields: room day hour action actor")

// ReadLog parses a bookings file: one "room day hour B|C actor" line per
// entry, in append order. Blank lines are ignored. Entries come back
// without a Seq.
func ReadLog(r io.Reader) ([]model.LogEntry, []Rejection, error) {
	const file = "bookings.txt"
	sc := bufio.NewScanner(r)

	entries := []model.LogEntry{}
	var rejected []Rejection
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		e, err := parseLogLine(text)
		if err != nil {
			rejected = append(rejected, Rejection{File: file, Record: line, Reason: err.Error()})
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", file, err)
	}
	return entries, rejected, nil
}

func parseLogLine(text string) (model.LogEntry, error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return model.LogEntry{}, errLogFields
	}
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return model.LogEntry{}, fmt.Errorf("field %d %q is not a number", i+1, fields[i])
		}
		nums[i] = n
	}
	action, err := model.ParseActionCode(fields[3])
	if err != nil {
		return model.LogEntry{}, err
	}
	e := model.LogEntry{
		Room:   model.RoomID(nums[0]),
		Day:    model.Day(nums[1]),
		Hour:   model.Hour(nums[2]),
		Action: action,
		Actor:  fields[4],
	}
	if err := model.ValidateEntry(e); err != nil {
		return model.LogEntry{}, err
	}
	return e, nil
}

// WriteLog renders entries in the ReadLog layout.
func WriteLog(w io.Writer, entries []model.LogEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		fmt.Fprintf(bw, "%d %d %d %s %s\n", int(e.Room), int(e.Day), int(e.Hour), e.Action.Code(), e.Actor)
	}
	return bw.Flush()
}
