package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/store"
)

// RegisterAccount creates a regular account.
// Identity and secret must be single tokens; duplicates are ALREADY_EXISTS.
func (s *Service) RegisterAccount(ctx context.Context, identity, secret string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.Account{Identity: identity, Secret: secret, Role: model.RoleRegular}
	if err := model.ValidateAccount(a); err != nil {
		return model.Account{}, &Error{Code: CodeInvalidInput, Message: "invalid account", Err: err}
	}

	if err := s.accounts.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrAccountExists) {
			return model.Account{}, &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf("account %q already exists", identity)}
		}
		return model.Account{}, &Error{Code: CodePersistenceFailure, Message: "could not save account", Err: err}
	}

	s.logger.Info("account registered", "identity", identity)
	return a, nil
}
