// Package provision creates the initial rooms and accounts of a new store.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/store"
)

// Store is the subset of the SQLite store that provisioning writes to.
type Store interface {
	CountRooms(ctx context.Context) (int, error)
	SaveRooms(ctx context.Context, rooms []model.Room) error
	CountAccounts(ctx context.Context) (int, error)
	CreateAccount(ctx context.Context, a model.Account) error
}

// DefaultAccounts are created when a store has no accounts.
func DefaultAccounts() []model.Account {
	return []model.Account{
		{Identity: "admin", Secret: "admin123", Role: model.RoleAdmin},
		{Identity: "faculty", Secret: "faculty123", Role: model.RoleRegular},
	}
}

// Options controls what Bootstrap seeds.
type Options struct {
	// Rooms overrides DefaultRooms.
	Rooms []model.Room

	// Accounts overrides DefaultAccounts.
	Accounts []model.Account

	Logger *slog.Logger
}

// Result reports what Bootstrap wrote.
type Result struct {
	RoomsSeeded    int `json:"rooms_seeded"`
	AccountsSeeded int `json:"accounts_seeded"`
}

// Bootstrap seeds rooms when the store has none and accounts when the store
// has none. Existing data is never touched, so running it twice is harmless.
func Bootstrap(ctx context.Context, st Store, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var res Result

	nRooms, err := st.CountRooms(ctx)
	if err != nil {
		return res, fmt.Errorf("bootstrap: %w", err)
	}
	if nRooms == 0 {
		rooms := opts.Rooms
		if rooms == nil {
			if rooms, err = DefaultRooms(); err != nil {
				return res, fmt.Errorf("bootstrap: %w", err)
			}
		}
		if err := st.SaveRooms(ctx, rooms); err != nil {
			return res, fmt.Errorf("bootstrap: seed rooms: %w", err)
		}
		res.RoomsSeeded = len(rooms)
		logger.Info("seeded rooms", "count", len(rooms))
	}

	nAccounts, err := st.CountAccounts(ctx)
	if err != nil {
		return res, fmt.Errorf("bootstrap: %w", err)
	}
	if nAccounts == 0 {
		accounts := opts.Accounts
		if accounts == nil {
			accounts = DefaultAccounts()
		}
		for _, a := range accounts {
			if err := st.CreateAccount(ctx, a); err != nil {
				if errors.Is(err, store.ErrAccountExists) {
					continue
				}
				return res, fmt.Errorf("bootstrap: seed account %q: %w", a.Identity, err)
			}
			res.AccountsSeeded++
		}
		logger.Info("seeded accounts", "count", res.AccountsSeeded)
	}

	return res, nil
}
