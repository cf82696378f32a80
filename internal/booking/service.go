package booking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/slotmap/internal/grid"
	"github.com/roach88/slotmap/internal/model"
	"github.com/roach88/slotmap/internal/reconcile"
)

// RoomSaver persists the full rooms snapshot atomically.
type RoomSaver interface {
	SaveRooms(ctx context.Context, rooms []model.Room) error
}

// LogStore is the action log: appends plus fresh full scans.
type LogStore interface {
	reconcile.LogScanner
	Append(ctx context.Context, e model.LogEntry) (model.LogEntry, error)
}

// AccountCreator persists new accounts.
type AccountCreator interface {
	CreateAccount(ctx context.Context, a model.Account) error
}

// Service serializes every transaction and query over one grid and log.
//
// Thread-safety: all exported methods are safe for concurrent use.
type Service struct {
	mu sync.Mutex

	grid     *grid.Grid
	rooms    RoomSaver
	log      LogStore
	accounts AccountCreator
	recon    *reconcile.Engine

	ids    RequestIDGenerator
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the transaction logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithRequestIDs overrides the UUIDv7 request id generator.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// NewService wires a service. g must already hold the persisted rooms.
func NewService(g *grid.Grid, rooms RoomSaver, log LogStore, accounts AccountCreator, opts ...Option) *Service {
	s := &Service{
		grid:     g,
		rooms:    rooms,
		log:      log,
		accounts: accounts,
		recon:    reconcile.New(log),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome describes how a transaction ended. It is returned for every
// request, including rejected and rolled back ones, so warnings are never
// lost.
type Outcome struct {
	RequestID string       `json:"request_id"`
	Action    model.Action `json:"action"`
	Actor     string       `json:"actor"`
	Slot      model.Slot   `json:"slot"`
	State     State        `json:"state"`

	// Entry is the appended log entry; nil unless the append succeeded.
	Entry *model.LogEntry `json:"entry,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Committed reports whether the grid change is durable.
func (o Outcome) Committed() bool { return o.State == StateCommitted }

// txn tracks one request through its states.
type txn struct {
	out    Outcome
	logger *slog.Logger
}

func (s *Service) begin(action model.Action, actor model.Account, slot model.Slot) *txn {
	id := s.ids.Generate()
	t := &txn{
		out: Outcome{
			RequestID: id,
			Action:    action,
			Actor:     actor.Identity,
			Slot:      slot,
			State:     StateIdle,
		},
		logger: s.logger.With(
			"request_id", id,
			"action", string(action),
			"actor", actor.Identity,
			"slot", slot.String(),
		),
	}
	t.to(StateCollectingInput)
	return t
}

func (t *txn) to(next State) {
	t.logger.Debug("transaction state", "from", t.out.State, "to", next)
	t.out.State = next
}

func (t *txn) warn(code Code, msg string) {
	t.out.Warnings = append(t.out.Warnings, Warning{Code: code, Message: msg})
	t.logger.Warn(msg, "code", string(code))
}

func (t *txn) reject(err *Error) (Outcome, error) {
	t.to(StateRejected)
	t.logger.Info("request rejected", "code", string(err.Code), "reason", err.Message)
	return t.out, err
}

func (t *txn) rollback(err *Error) (Outcome, error) {
	t.to(StateRolledBack)
	t.logger.Error("request rolled back", "code", string(err.Code), "error", err.Err)
	return t.out, err
}

func (t *txn) commit() (Outcome, error) {
	t.to(StateCommitted)
	t.logger.Info("request committed", "warnings", len(t.out.Warnings))
	return t.out, nil
}

// validate checks the actor and slot, then that the room exists.
func (s *Service) validate(t *txn, actor model.Account, entry model.LogEntry) *Error {
	t.to(StateValidating)
	slot := entry.Slot()

	if actor.Role != model.RoleRegular && actor.Role != model.RoleAdmin {
		return &Error{Code: CodeInvalidInput, Message: "unknown actor", Slot: slot}
	}
	if err := model.ValidateEntry(entry); err != nil {
		return &Error{Code: CodeInvalidInput, Message: "invalid request", Slot: slot, Err: err}
	}
	if _, ok := s.grid.Room(slot.Room); !ok {
		return &Error{Code: CodeNotFound, Message: "room not found", Slot: slot}
	}
	return nil
}

// persist writes the full grid snapshot.
func (s *Service) persist(ctx context.Context) error {
	return s.rooms.SaveRooms(ctx, s.grid.Snapshot())
}

// appendEntry writes the log entry after a durable grid change. A failure
// becomes a warning; the transaction still commits.
func (s *Service) appendEntry(ctx context.Context, t *txn, entry model.LogEntry) {
	appended, err := s.log.Append(ctx, entry)
	if err != nil {
		t.warn(CodeLogAppendFailed, "grid change is saved but the history log entry was not written")
		t.logger.Error("log append failed", "error", err)
		return
	}
	t.out.Entry = &appended
}
