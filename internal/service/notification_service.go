package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/finance-tracker/internal/events"
	"github.com/spec-kit/finance-tracker/internal/mailer"
)

// NotificationService delivers OTP mail in response to flow events. Send
// failures are logged for operators only; the flows never see them.
type NotificationService struct {
	dispatcher events.Dispatcher
	mail       mailer.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mail mailer.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mail:       mail,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOTPIssued, n.handleOTPIssued)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleAccountEvent)
	n.dispatcher.Subscribe(events.EventPasswordReset, n.handleAccountEvent)
}

func (n *NotificationService) handleOTPIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OTPIssuedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}

	if err := n.mail.SendOTP(ctx, payload.Email, payload.Code, payload.Kind); err != nil {
		n.logger.Error("otp mail delivery failed",
			zap.String("email", payload.Email),
			zap.String("kind", string(payload.Kind)),
			zap.Error(err))
		return err
	}

	n.logger.Info("otp mail sent",
		zap.String("email", payload.Email),
		zap.String("kind", string(payload.Kind)))
	return nil
}

func (n *NotificationService) handleAccountEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}
