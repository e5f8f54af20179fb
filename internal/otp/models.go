// Package otp implements the one-time-code ledger that gates registration and
// login on proof of phone possession.
package otp

import (
	"time"

	id "votegate/pkg/domain"
)

// Challenge is the live OTP record for a phone. At most one exists per phone;
// a new send replaces any prior challenge.
type Challenge struct {
	Phone     id.Phone  `json:"phone"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
