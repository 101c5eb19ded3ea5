package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/finance-tracker/internal/api/dto"
	"github.com/spec-kit/finance-tracker/internal/flow"
	"github.com/spec-kit/finance-tracker/internal/service"
	"github.com/spec-kit/finance-tracker/internal/session"
	apperrors "github.com/spec-kit/finance-tracker/pkg/util/errorutil"
)

// Flow entry points sent back as redirect hints when a ticket is invalid.
const (
	registerStart = "/auth/register"
	loginStart    = "/auth/login"
	resetStart    = "/auth/password/forgot"
)

// AuthHandler exposes the OTP-gated credential flow endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if details := validateRegistration(req); len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details)
	}

	user, err := h.auth.Register(c.UserContext(), session.ID(c), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewValidationError("validation failed", fiber.Map{"email": err.Error()})
		}
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"email":    user.Email,
			"redirect": "/auth/register/verify",
		},
		"message": "a verification code has been sent to your email",
	})
}

// VerifyRegistration handles POST /auth/register/verify.
func (h *AuthHandler) VerifyRegistration(c *fiber.Ctx) error {
	req, err := parseVerifyRequest(c)
	if err != nil {
		return err
	}

	result, err := h.auth.VerifyRegistration(c.UserContext(), session.ID(c), req.Email, req.OTPCode)
	if err != nil {
		return flowError(err, registerStart)
	}

	if _, err := h.sessions.Regenerate(c); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(authPayload(result, "registration complete, welcome"))
}

// ResendRegistrationOTP handles POST /auth/register/resend.
func (h *AuthHandler) ResendRegistrationOTP(c *fiber.Ctx) error {
	return h.resend(c, h.auth.ResendRegistrationOTP, registerStart)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("validation failed", fiber.Map{"email": "email and password are required"})
	}

	if err := h.auth.Login(c.UserContext(), session.ID(c), req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewValidationError("validation failed", fiber.Map{"email": err.Error()})
		}
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"email":    strings.ToLower(strings.TrimSpace(req.Email)),
			"redirect": "/auth/login/verify",
		},
		"message": "a verification code has been sent to your email",
	})
}

// VerifyLogin handles POST /auth/login/verify.
func (h *AuthHandler) VerifyLogin(c *fiber.Ctx) error {
	req, err := parseVerifyRequest(c)
	if err != nil {
		return err
	}

	result, err := h.auth.VerifyLogin(c.UserContext(), session.ID(c), req.Email, req.OTPCode)
	if err != nil {
		return flowError(err, loginStart)
	}

	if _, err := h.sessions.Regenerate(c); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(authPayload(result, "login successful"))
}

// ResendLoginOTP handles POST /auth/login/resend.
func (h *AuthHandler) ResendLoginOTP(c *fiber.Ctx) error {
	return h.resend(c, h.auth.ResendLoginOTP, loginStart)
}

// ForgotPassword handles POST /auth/password/forgot. The response is the
// same generic message whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewValidationError("validation failed", fiber.Map{"email": "email is required"})
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), session.ID(c), req.Email); err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"message": "a reset code will be sent if that account is registered",
	})
}

// VerifyPasswordResetOTP handles POST /auth/password/verify.
func (h *AuthHandler) VerifyPasswordResetOTP(c *fiber.Ctx) error {
	req, err := parseVerifyRequest(c)
	if err != nil {
		return err
	}

	if err := h.auth.VerifyPasswordResetOTP(c.UserContext(), session.ID(c), req.Email, req.OTPCode); err != nil {
		return flowError(err, resetStart)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"email":    req.Email,
			"redirect": "/auth/password/reset",
		},
		"message": "code verified, choose a new password",
	})
}

// ResendPasswordResetOTP handles POST /auth/password/resend.
func (h *AuthHandler) ResendPasswordResetOTP(c *fiber.Ctx) error {
	return h.resend(c, h.auth.ResendPasswordResetOTP, resetStart)
}

// ResetPassword handles POST /auth/password/reset.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if details := validatePassword(req.Password, req.PasswordConfirmation); req.Email == "" || len(details) > 0 {
		if req.Email == "" {
			details["email"] = "email is required"
		}
		return apperrors.NewValidationError("validation failed", details)
	}

	if err := h.auth.CompletePasswordReset(c.UserContext(), session.ID(c), req.Email, req.Password); err != nil {
		return flowError(err, resetStart)
	}

	return c.JSON(fiber.Map{
		"data":    fiber.Map{"redirect": loginStart},
		"message": "password reset, log in with your new password",
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Invalidate(c); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) resend(c *fiber.Ctx, fn func(ctx context.Context, sessionID, email string) error, restart string) error {
	var req dto.ResendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewValidationError("validation failed", fiber.Map{"email": "email is required"})
	}

	if err := fn(c.UserContext(), session.ID(c), req.Email); err != nil {
		return flowError(err, restart)
	}

	return c.JSON(fiber.Map{
		"message": "a new verification code has been sent to your email",
	})
}

func parseVerifyRequest(c *fiber.Ctx) (*dto.VerifyOTPRequest, error) {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	details := fiber.Map{}
	if req.Email == "" {
		details["email"] = "email is required"
	}
	if len(req.OTPCode) != 4 || strings.Trim(req.OTPCode, "0123456789") != "" {
		details["otp_code"] = "the code must be 4 digits"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details)
	}
	return &req, nil
}

// flowError maps flow-transition failures onto the response taxonomy: code
// mismatches stay inline on the verify form, ticket problems redirect the
// caller back to the flow's entry point.
func flowError(err error, restart string) error {
	switch {
	case errors.Is(err, flow.ErrInvalidCode):
		return apperrors.NewValidationError("validation failed", fiber.Map{"otp_code": "the code is not valid"})
	case errors.Is(err, flow.ErrSessionExpired):
		return apperrors.NewInvalidSession("the session has expired, please start over", restart)
	case errors.Is(err, flow.ErrInvalidSession):
		return apperrors.NewInvalidSession("the session is not valid, please start over", restart)
	default:
		return apperrors.MapError(err)
	}
}

func authPayload(result *service.AuthResult, message string) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"user": dto.UserResponse{
				ID:              result.User.ID,
				Name:            result.User.Name,
				Email:           result.User.Email,
				EmailVerifiedAt: result.User.EmailVerifiedAt,
			},
			"auth":     dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
			"redirect": "/dashboard",
		},
		"message": message,
	}
}

func validateRegistration(req dto.RegisterRequest) fiber.Map {
	details := validatePassword(req.Password, req.PasswordConfirmation)
	if req.Name == "" || len(req.Name) > 255 {
		details["name"] = "name is required and must not exceed 255 characters"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		details["email"] = "a valid email is required"
	}
	return details
}

func validatePassword(password, confirmation string) fiber.Map {
	details := fiber.Map{}
	if len(password) < 8 {
		details["password"] = "password must be at least 8 characters"
	} else if password != confirmation {
		details["password"] = "password confirmation does not match"
	}
	return details
}
