package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/slotmap/internal/model"
)

var (
	// ErrAccountExists is returned when creating a duplicate identity.
	ErrAccountExists = errors.New("account already exists")

	// ErrInvalidCredentials is returned when identity or secret don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CreateAccount inserts an account.
// Uses ON CONFLICT(identity) DO NOTHING; a conflict is reported as
// ErrAccountExists rather than silently ignored.
func (s *Store) CreateAccount(ctx context.Context, a model.Account) error {
	if err := model.ValidateAccount(a); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (identity, secret, is_admin)
		VALUES (?, ?, ?)
		ON CONFLICT(identity) DO NOTHING
	`, a.Identity, a.Secret, boolToInt(a.IsAdmin()))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create account: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("create account %q: %w", a.Identity, ErrAccountExists)
	}
	return nil
}

// LoadAccounts returns every valid account ordered by identity.
// Invalid rows are skipped and logged.
func (s *Store) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity, secret, is_admin
		FROM accounts
		ORDER BY identity COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		if err := model.ValidateAccount(a); err != nil {
			s.logger.Warn("skipping invalid account record", "identity", a.Identity, "error", err)
			continue
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount looks up one account. Returns sql.ErrNoRows if not found.
func (s *Store) GetAccount(ctx context.Context, identity string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT identity, secret, is_admin
		FROM accounts
		WHERE identity = ?
	`, identity)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, sql.ErrNoRows
	}
	return a, err
}

// Authenticate returns the account whose identity and secret both match.
// Any mismatch, including an unknown identity, is ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, identity, secret string) (model.Account, error) {
	a, err := s.GetAccount(ctx, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("authenticate: %w", err)
	}
	if a.Secret != secret {
		return model.Account{}, ErrInvalidCredentials
	}
	return a, nil
}

// CountAccounts returns the number of stored accounts.
func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	return s.count(ctx, "accounts")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var (
		a       model.Account
		isAdmin int
	)
	if err := row.Scan(&a.Identity, &a.Secret, &isAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("scan account: %w", err)
	}
	a.Role = model.RoleRegular
	if isAdmin == 1 {
		a.Role = model.RoleAdmin
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
