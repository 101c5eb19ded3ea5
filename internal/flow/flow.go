// Package flow implements the OTP-gated credential flow shared by
// registration, login and password reset. One engine drives all three; they
// differ only in the user OTP slot they write, the session-ticket namespace,
// the ticket lifetime and the terminal action taken by the caller.
package flow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/finance-tracker/internal/domain"
	"github.com/spec-kit/finance-tracker/internal/events"
	"github.com/spec-kit/finance-tracker/internal/otp"
	"github.com/spec-kit/finance-tracker/internal/repository"
	"github.com/spec-kit/finance-tracker/internal/session"
)

// Flow-transition failures. Handlers translate these into the inline-error or
// restart-redirect responses of the owning flow.
var (
	// ErrInvalidSession means the ticket is missing or its email does not
	// match the request. The caller must restart at the flow's entry point.
	ErrInvalidSession = errors.New("flow: session invalid")
	// ErrSessionExpired means the ticket outlived its lifetime. The ticket
	// has already been cleared when this is returned.
	ErrSessionExpired = errors.New("flow: session expired")
	// ErrInvalidCode means the submitted code does not match the stored one.
	// The ticket is preserved so the user may retry.
	ErrInvalidCode = errors.New("flow: invalid code")
)

// Clock abstracts time for expiry checks.
type Clock func() time.Time

// TicketStore is the session-ticket surface the engine needs.
type TicketStore interface {
	PutTicket(ctx context.Context, sessionID string, ns session.Namespace, ticket session.Ticket) error
	GetTicket(ctx context.Context, sessionID string, ns session.Namespace) (*session.Ticket, error)
	ClearTickets(ctx context.Context, sessionID string, namespaces ...session.Namespace) error
}

// Config parameterizes one flow instance.
type Config struct {
	Slot      domain.OTPSlot
	Namespace session.Namespace
	TTL       time.Duration
	Kind      events.OTPKind
}

// Engine drives the Idle -> Issued -> Verified transitions for one flow.
type Engine struct {
	cfg        Config
	users      repository.UserRepository
	tickets    TicketStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
	generate   func() (string, error)
}

// NewEngine constructs an engine. A nil clock defaults to time.Now.
func NewEngine(cfg Config, users repository.UserRepository, tickets TicketStore, dispatcher events.Dispatcher, logger *zap.Logger, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		cfg:        cfg,
		users:      users,
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		now:        clock,
		generate:   otp.Generate,
	}
}

// Issue moves Idle -> Issued: generates a fresh code, overwrites the user's
// OTP slot (last writer wins, there is no versioning on the slot), writes the
// session ticket, then dispatches the code. Dispatch runs after the state is
// already persisted and its failure is never rolled back.
func (e *Engine) Issue(ctx context.Context, sessionID string, user *domain.User) error {
	code, err := e.generate()
	if err != nil {
		return err
	}

	if err := e.users.SetOTP(ctx, user.ID, e.cfg.Slot, &code); err != nil {
		return err
	}
	if err := e.tickets.PutTicket(ctx, sessionID, e.cfg.Namespace, session.Ticket{
		Email:    user.Email,
		IssuedAt: e.now(),
	}); err != nil {
		return err
	}

	e.publishCode(ctx, user, code)
	return nil
}

// Resend moves Issued -> Issued: requires a valid non-expired ticket whose
// email matches, then regenerates the code (invalidating the previous one)
// and refreshes the ticket's issue time.
func (e *Engine) Resend(ctx context.Context, sessionID, email string) error {
	if err := e.checkTicket(ctx, sessionID, email); err != nil {
		return err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrInvalidSession
		}
		return err
	}

	return e.Issue(ctx, sessionID, user)
}

// Verify moves Issued -> Verified: requires a valid non-expired matching
// ticket and exact equality with the stored code. On success the OTP slot and
// the ticket are both cleared and the user is returned for the flow's
// terminal action. On code mismatch the ticket survives so the user may
// retry.
func (e *Engine) Verify(ctx context.Context, sessionID, email, code string) (*domain.User, error) {
	if err := e.checkTicket(ctx, sessionID, email); err != nil {
		return nil, err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	stored := user.OTPValue(e.cfg.Slot)
	if stored == nil || *stored != code {
		return nil, ErrInvalidCode
	}

	if err := e.users.SetOTP(ctx, user.ID, e.cfg.Slot, nil); err != nil {
		return nil, err
	}
	if err := e.tickets.ClearTickets(ctx, sessionID, e.cfg.Namespace); err != nil {
		return nil, err
	}
	return user, nil
}

// checkTicket validates presence, expiry and email match. Expired tickets are
// cleared on detection; mismatched ones are left alone.
func (e *Engine) checkTicket(ctx context.Context, sessionID, email string) error {
	ticket, err := e.tickets.GetTicket(ctx, sessionID, e.cfg.Namespace)
	if err != nil {
		return err
	}
	if ticket == nil {
		return ErrInvalidSession
	}
	if otp.Expired(ticket.IssuedAt, e.cfg.TTL, e.now()) {
		if err := e.tickets.ClearTickets(ctx, sessionID, e.cfg.Namespace); err != nil {
			return err
		}
		return ErrSessionExpired
	}
	if ticket.Email != email {
		return ErrInvalidSession
	}
	return nil
}

func (e *Engine) publishCode(ctx context.Context, user *domain.User, code string) {
	err := e.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventOTPIssued,
		UserID:    user.ID,
		Timestamp: e.now(),
		Payload: events.OTPIssuedPayload{
			Email: user.Email,
			Code:  code,
			Kind:  e.cfg.Kind,
		},
	})
	if err != nil {
		e.logger.Error("otp dispatch failed", zap.String("email", user.Email), zap.Error(err))
	}
}
