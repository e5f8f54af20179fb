package domain

import (
	"strings"

	dErrors "votegate/pkg/domain-errors"
)

// Phone is a normalized 10-digit subscriber number. Normalization strips
// everything that is not a digit and keeps the last 10 digits, so inputs like
// "+91 98765-43210" and "9876543210" collapse to the same identity key.
type Phone string

const phoneDigits = 10

func (p Phone) String() string { return string(p) }

// Masked renders the phone for responses and logs, keeping only the last four
// digits visible.
func (p Phone) Masked() string {
	if len(p) < 4 {
		return strings.Repeat("*", len(p))
	}
	return strings.Repeat("*", len(p)-4) + string(p[len(p)-4:])
}

// ParsePhone normalizes raw input to the canonical 10-digit form.
// Errors: CodeInvalidPhone when fewer than 10 digits are present.
func ParsePhone(raw string) (Phone, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < phoneDigits {
		return "", dErrors.New(dErrors.CodeInvalidPhone, "phone must contain at least 10 digits")
	}
	return Phone(d[len(d)-phoneDigits:]), nil
}
