// Package otp implements one-time-code generation and the lazy expiry policy
// shared by the registration, login and password-reset flows.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// CodeLength is the fixed width of generated codes.
const CodeLength = 4

var codeSpace = big.NewInt(10000)

// Generate returns a 4-digit zero-padded code, each value 0-9999 equally
// likely, drawn from crypto/rand.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// Expired reports whether a ticket issued at issuedAt has outlived ttl as of
// now. A ticket checked at exactly ttl elapsed is still valid; one second
// past is not. Expiry is evaluated only at access time.
func Expired(issuedAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(issuedAt) > ttl
}
