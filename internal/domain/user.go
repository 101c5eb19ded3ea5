package domain

import "time"

// OTPSlot identifies which single-slot OTP column on the user record a flow
// writes to. Registration owns its own slot; login and password reset share
// one.
type OTPSlot string

const (
	OTPSlotRegister OTPSlot = "otp_register"
	OTPSlotLogin    OTPSlot = "otp_login"
)

// User is the domain model for account holders.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Photo           *string
	Address         *string
	Phone           *string
	OTPRegister     *string
	OTPLogin        *string
	EmailVerifiedAt *time.Time
	RememberToken   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Verified reports whether the account completed registration OTP verification.
func (u *User) Verified() bool {
	return u != nil && u.EmailVerifiedAt != nil
}

// OTPValue returns the stored code for the given slot, nil when no code is outstanding.
func (u *User) OTPValue(slot OTPSlot) *string {
	if slot == OTPSlotRegister {
		return u.OTPRegister
	}
	return u.OTPLogin
}
