package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/finance-tracker/internal/auth"
	"github.com/spec-kit/finance-tracker/internal/config"
	"github.com/spec-kit/finance-tracker/internal/domain"
	"github.com/spec-kit/finance-tracker/internal/events"
	"github.com/spec-kit/finance-tracker/internal/flow"
	"github.com/spec-kit/finance-tracker/internal/otp"
	"github.com/spec-kit/finance-tracker/internal/repository"
	"github.com/spec-kit/finance-tracker/internal/session"
)

// ErrInvalidCredentials is returned for any login precondition failure. The
// message never reveals whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("the provided credentials do not match our records")

// ErrEmailTaken is returned when registering an already-used address.
var ErrEmailTaken = errors.New("email already registered")

// AuthService coordinates the OTP-gated registration, login and
// password-reset flows.
type AuthService struct {
	users      repository.UserRepository
	tickets    flow.TicketStore
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int

	register *flow.Engine
	login    *flow.Engine
	reset    *flow.Engine

	resetVerifiedTTL time.Duration
	now              flow.Clock
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tickets    flow.TicketStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      flow.Clock
}

// NewAuthService builds the service with one flow engine per credential flow.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	newEngine := func(slot domain.OTPSlot, ns session.Namespace, ttl time.Duration, kind events.OTPKind) *flow.Engine {
		return flow.NewEngine(flow.Config{
			Slot:      slot,
			Namespace: ns,
			TTL:       ttl,
			Kind:      kind,
		}, deps.UserRepo, deps.Tickets, deps.Dispatcher, deps.Logger, clock)
	}

	return &AuthService{
		users:      deps.UserRepo,
		tickets:    deps.Tickets,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,

		register: newEngine(domain.OTPSlotRegister, session.NamespaceRegister, cfg.OTP.RegisterTTL(), events.OTPKindRegister),
		login:    newEngine(domain.OTPSlotLogin, session.NamespaceLogin, cfg.OTP.LoginTTL(), events.OTPKindLogin),
		reset:    newEngine(domain.OTPSlotLogin, session.NamespaceReset, cfg.OTP.ResetTTL(), events.OTPKindPasswordReset),

		resetVerifiedTTL: cfg.OTP.ResetVerifiedTTL(),
		now:              clock,
	}
}

// AuthResult bundles the authenticated user with its issued token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an unverified account and issues the registration OTP.
func (s *AuthService) Register(ctx context.Context, sessionID, name, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.register.Issue(ctx, sessionID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyRegistration completes registration: on a correct code the account is
// marked verified and logged in.
func (s *AuthService) VerifyRegistration(ctx context.Context, sessionID, email, code string) (*AuthResult, error) {
	user, err := s.register.Verify(ctx, sessionID, email, code)
	if err != nil {
		return nil, err
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	now := s.now()
	user.EmailVerifiedAt = &now
	user.OTPRegister = nil

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{Email: user.Email, Name: user.Name})
	return s.issueToken(user)
}

// ResendRegistrationOTP regenerates the registration code.
func (s *AuthService) ResendRegistrationOTP(ctx context.Context, sessionID, email string) error {
	return s.register.Resend(ctx, sessionID, email)
}

// Login checks credentials and issues the login OTP. Every precondition
// failure collapses into ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}

	return s.login.Issue(ctx, sessionID, user)
}

// VerifyLogin completes login on a correct code.
func (s *AuthService) VerifyLogin(ctx context.Context, sessionID, email, code string) (*AuthResult, error) {
	user, err := s.login.Verify(ctx, sessionID, email, code)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, events.UserLoggedInPayload{Email: user.Email})
	return s.issueToken(user)
}

// ResendLoginOTP regenerates the login code.
func (s *AuthService) ResendLoginOTP(ctx context.Context, sessionID, email string) error {
	return s.login.Resend(ctx, sessionID, email)
}

// RequestPasswordReset issues a reset OTP when the account exists. Unknown
// addresses return nil so the caller can answer with the same generic
// message either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, sessionID, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}

	return s.reset.Issue(ctx, sessionID, user)
}

// VerifyPasswordResetOTP checks the reset code and opens the short stage-two
// ticket that authorizes the password change.
func (s *AuthService) VerifyPasswordResetOTP(ctx context.Context, sessionID, email, code string) error {
	user, err := s.reset.Verify(ctx, sessionID, email, code)
	if err != nil {
		return err
	}

	return s.tickets.PutTicket(ctx, sessionID, session.NamespaceResetVerified, session.Ticket{
		Email:    user.Email,
		IssuedAt: s.now(),
	})
}

// ResendPasswordResetOTP regenerates the reset code.
func (s *AuthService) ResendPasswordResetOTP(ctx context.Context, sessionID, email string) error {
	return s.reset.Resend(ctx, sessionID, email)
}

// CompletePasswordReset replaces the password under a valid stage-two ticket,
// rotates the remember token and clears every reset ticket.
func (s *AuthService) CompletePasswordReset(ctx context.Context, sessionID, email, newPassword string) error {
	ticket, err := s.tickets.GetTicket(ctx, sessionID, session.NamespaceResetVerified)
	if err != nil {
		return err
	}
	if ticket == nil {
		return flow.ErrInvalidSession
	}
	if otp.Expired(ticket.IssuedAt, s.resetVerifiedTTL, s.now()) {
		if err := s.tickets.ClearTickets(ctx, sessionID, session.NamespaceResetVerified); err != nil {
			return err
		}
		return flow.ErrSessionExpired
	}
	if ticket.Email != email {
		return flow.ErrInvalidSession
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return flow.ErrInvalidSession
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	token, err := rememberToken()
	if err != nil {
		return err
	}
	if err := s.users.ReplacePassword(ctx, user.ID, hash, token); err != nil {
		return err
	}

	if err := s.tickets.ClearTickets(ctx, sessionID, session.NamespaceReset, session.NamespaceResetVerified); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordReset, user.ID, events.PasswordResetPayload{Email: user.Email})
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: s.now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Error("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

// rememberToken returns a 60-character random token.
func rememberToken() (string, error) {
	buf := make([]byte, 30)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
