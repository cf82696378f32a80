package legacy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/store"
)

// File names inside a legacy data directory.
const (
	RoomsFile    = "rooms.txt"
	AccountsFile = "users.txt"
	LogFile      = "bookings.txt"
)

// Store is the durable side of an import or export.
type Store interface {
	LoadRooms(ctx context.Context) ([]model.Room, error)
	SaveRooms(ctx context.Context, rooms []model.Room) error
	LoadAccounts(ctx context.Context) ([]model.Account, error)
	CreateAccount(ctx context.Context, a model.Account) error
	Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error)
	ReadLog(ctx context.Context) ([]model.LogEntry, error)
}

// Report summarizes an import or export.
type Report struct {
	Rooms    int         `json:"rooms"`
	Accounts int         `json:"accounts"`
	Entries  int         `json:"entries"`
	Missing  []string    `json:"missing,omitempty"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Import loads the three legacy files from dir into st.
//
// Rooms in the file overwrite stored rooms with the same id. Accounts are created
// one by one; identities that already exist are rejected. Log lines are
// appended in file order and get fresh seq values. A missing file is noted
// in Report.Missing and skipped.
func Import(ctx context.Context, dir string, st Store, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var rep Report

	err := readFile(dir, RoomsFile, &rep, func(r io.Reader) error {
		rooms, rejected, err := ReadRooms(r)
		if err != nil {
			return err
		}
		rep.Rejected = append(rep.Rejected, rejected...)
		if err := st.SaveRooms(ctx, rooms); err != nil {
			return fmt.Errorf("save rooms: %w", err)
		}
		rep.Rooms = len(rooms)
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("import: %w", err)
	}

	err = readFile(dir, AccountsFile, &rep, func(r io.Reader) error {
		accounts, rejected, err := ReadAccounts(r)
		if err != nil {
			return err
		}
		rep.Rejected = append(rep.Rejected, rejected...)
		for _, a := range accounts {
			if err := st.CreateAccount(ctx, a); err != nil {
				if errors.Is(err, store.ErrAccountExists) {
					rep.Rejected = append(rep.Rejected, Rejection{
						File:   AccountsFile,
						Reason: fmt.Sprintf("account %q already exists", a.Identity),
					})
					continue
				}
				return fmt.Errorf("create account %q: %w", a.Identity, err)
			}
			rep.Accounts++
		}
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("import: %w", err)
	}

	err = readFile(dir, LogFile, &rep, func(r io.Reader) error {
		entries, rejected, err := ReadLog(r)
		if err != nil {
			return err
		}
		rep.Rejected = append(rep.Rejected, rejected...)
		for _, e := range entries {
			if _, err := st.Append(ctx, e); err != nil {
				return fmt.Errorf("append log entry: %w", err)
			}
			rep.Entries++
		}
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("import: %w", err)
	}

	for _, r := range rep.Rejected {
		logger.Warn("skipped legacy record", "file", r.File, "record", r.Record, "reason", r.Reason)
	}
	logger.Info("legacy import finished",
		"rooms", rep.Rooms,
		"accounts", rep.Accounts,
		"entries", rep.Entries,
		"rejected", len(rep.Rejected),
	)
	return rep, nil
}

func readFile(dir, name string, rep *Report, fn func(io.Reader) error) error {
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		rep.Missing = append(rep.Missing, name)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

// Export writes the three legacy files for st into dir, creating dir if
// needed. Existing files are replaced.
func Export(ctx context.Context, dir string, st Store) (Report, error) {
	var rep Report

	rooms, err := st.LoadRooms(ctx)
	if err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}
	accounts, err := st.LoadAccounts(ctx)
	if err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}
	entries, err := st.ReadLog(ctx)
	if err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rep, fmt.Errorf("export: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{RoomsFile, func(w io.Writer) error { return WriteRooms(w, rooms) }},
		{AccountsFile, func(w io.Writer) error { return WriteAccounts(w, accounts) }},
		{LogFile, func(w io.Writer) error { return WriteLog(w, entries) }},
	}
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf); err != nil {
			return rep, fmt.Errorf("export %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), buf.Bytes(), 0o600); err != nil {
			return rep, fmt.Errorf("export %s: %w", f.name, err)
		}
	}

	rep.Rooms = len(rooms)
	rep.Accounts = len(accounts)
	rep.Entries = len(entries)
	return rep, nil
}
