package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/slotmap/internal/booking"
	"github.com/roach88/slotmap/internal/config"
	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/logging"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/provision"
	"github.com/roach88/slotmap/internal/store"
)

// app is the per-command wiring: config, logger, store, grid and service.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	service *booking.Service
	out     *OutputFormatter
	seeded  provision.Result
}

// openApp loads configuration, opens the store, seeds it when enabled (or
// when force is set) and builds the grid from the stored rooms.
func openApp(cmd *cobra.Command, opts *RootOptions, force bool) (*app, error) {
	ctx := commandContext(cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	logger := newLogger(cmd, cfg.Logging, opts.Version)

	logger.Debug("opening database", "path", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path,
		store.WithLogger(logger),
		store.WithBusyTimeout(cfg.Database.BusyTimeout),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		out:    &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}

	if cfg.Seed.Enabled || force {
		if a.seeded, err = a.seed(ctx); err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "failed to seed database", err)
		}
	}

	if err := a.loadService(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// loadService builds the grid from the stored rooms and the booking service
// over it. Called again after a bulk load changes the store underneath.
func (a *app) loadService(ctx context.Context) error {
	rooms, err := a.store.LoadRooms(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load rooms", err)
	}
	g, err := grid.New(rooms)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build grid", err)
	}
	a.service = booking.NewService(g, a.store, a.store, a.store, booking.WithLogger(a.logger))
	return nil
}

// seed provisions rooms and accounts into an empty store. The CUE catalog
// is only read when the store has no rooms yet.
func (a *app) seed(ctx context.Context) (provision.Result, error) {
	opts := provision.Options{Logger: a.logger}
	if a.cfg.Seed.Catalog != "" {
		n, err := a.store.CountRooms(ctx)
		if err != nil {
			return provision.Result{}, err
		}
		if n == 0 {
			if opts.Rooms, err = provision.LoadCatalog(a.cfg.Seed.Catalog); err != nil {
				return provision.Result{}, err
			}
		}
	}
	return provision.Bootstrap(ctx, a.store, opts)
}

// Close releases the store.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// login authenticates the --user/--password pair.
func (a *app) login(ctx context.Context, opts *RootOptions) (model.Account, error) {
	if opts.User == "" {
		return model.Account{}, NewExitError(ExitCommandError, "this command requires --user and --password")
	}
	acct, err := a.store.Authenticate(ctx, opts.User, opts.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		a.logger.Info("login failed", "identity", opts.User)
		return model.Account{}, NewExitError(ExitFailure, "invalid identity or password")
	}
	if err != nil {
		return model.Account{}, WrapExitError(ExitCommandError, "failed to authenticate", err)
	}
	return acct, nil
}

// loginAdmin authenticates like login and then requires the admin role.
func (a *app) loginAdmin(ctx context.Context, opts *RootOptions, what string) (model.Account, error) {
	actor, err := a.login(ctx, opts)
	if err != nil {
		return actor, err
	}
	if !actor.IsAdmin() {
		a.logger.Info("admin command rejected", "identity", actor.Identity, "command", what)
		return model.Account{}, a.fail(&booking.Error{
			Code:    booking.CodePermissionDenied,
			Message: what + " requires an admin account",
		}, nil)
	}
	return actor, nil
}

// fail reports a booking error through the formatter and turns it into an
// exit error: rejections are failures, anything else a command error.
func (a *app) fail(err error, details any) error {
	var be *booking.Error
	if !errors.As(err, &be) {
		return WrapExitError(ExitCommandError, "command failed", err)
	}
	msg := be.Message
	if be.Slot.Room != 0 {
		msg = fmt.Sprintf("%s (%s)", msg, be.Slot)
	}
	if outErr := a.out.Reject(string(be.Code), msg, details); outErr != nil {
		return outErr
	}
	return &ExitError{Code: ExitFailure, Message: err.Error(), Reported: true}
}

func newLogger(cmd *cobra.Command, cfg config.LoggingConfig, version string) *slog.Logger {
	var w io.Writer = cmd.ErrOrStderr()
	if strings.EqualFold(cfg.Output, "stdout") {
		w = cmd.OutOrStdout()
	}
	return logging.NewWithWriter(cfg, version, w)
}

// commandContext returns the command's context, or Background when the
// command runs outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseSlotArgs reads "<room> <day> <hour>" positional arguments.
func parseSlotArgs(args []string) (model.Slot, error) {
	slot, err := model.ParseSlot(args[0], args[1], args[2])
	if err != nil {
		return model.Slot{}, &booking.Error{Code: booking.CodeInvalidInput, Message: err.Error()}
	}
	return slot, nil
}

// invalidInput wraps a parse failure as an INVALID_INPUT booking error.
func invalidInput(format string, args ...any) error {
	return &booking.Error{Code: booking.CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}
