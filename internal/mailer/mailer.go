// Package mailer delivers one-time codes to users. Delivery is
// fire-and-forget from the flows' perspective: a failed send is logged by the
// caller and never blocks the state transition that already completed.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/spec-kit/finance-tracker/internal/config"
	"github.com/spec-kit/finance-tracker/internal/events"
)

// Mailer sends OTP mail.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, kind events.OTPKind) error
}

var subjects = map[events.OTPKind]string{
	events.OTPKindRegister:      "Your registration verification code",
	events.OTPKindLogin:         "Your login verification code",
	events.OTPKindPasswordReset: "Your password reset code",
}

// SMTPMailer delivers mail over a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer constructs a mailer.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendOTP sends the code to the destination address.
func (m *SMTPMailer) SendOTP(_ context.Context, to, code string, kind events.OTPKind) error {
	subject, ok := subjects[kind]
	if !ok {
		return fmt.Errorf("unknown otp kind %q", kind)
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\nYour verification code is %s. It expires in a few minutes.\r\n",
		m.cfg.From, to, subject, code)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body))
}

// LogMailer logs codes instead of sending them. Used in development when no
// SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs the logging stub.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendOTP logs the code.
func (m *LogMailer) SendOTP(_ context.Context, to, code string, kind events.OTPKind) error {
	m.logger.Info("otp mail (smtp disabled)",
		zap.String("to", to),
		zap.String("kind", string(kind)),
		zap.String("code", code))
	return nil
}

// FromConfig picks the SMTP implementation when a host is configured, the
// logging stub otherwise.
func FromConfig(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg)
}
