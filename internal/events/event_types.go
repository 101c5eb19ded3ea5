package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOTPIssued      EventType = "otp_issued"
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventPasswordReset  EventType = "password_reset"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OTPKind distinguishes which credential flow issued a code.
type OTPKind string

const (
	OTPKindRegister      OTPKind = "register"
	OTPKindLogin         OTPKind = "login"
	OTPKindPasswordReset OTPKind = "password_reset"
)

// OTPIssuedPayload carries the code to be delivered to the user.
type OTPIssuedPayload struct {
	Email string  `json:"email"`
	Code  string  `json:"code"`
	Kind  OTPKind `json:"kind"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Email string `json:"email"`
}

// PasswordResetPayload payload.
type PasswordResetPayload struct {
	Email string `json:"email"`
}
