package otp

import (
	"context"

	id "votegate/pkg/domain"
)

// Store persists OTP challenges keyed by phone. Implementations return
// sentinel.ErrNotFound when no challenge exists for a phone.
//
// Put always replaces: issuing a fresh code invalidates whatever came before.
// The service serializes mutation per phone, so stores only need per-call
// consistency.
type Store interface {
	Put(ctx context.Context, challenge Challenge) error
	Get(ctx context.Context, phone id.Phone) (Challenge, error)
	Delete(ctx context.Context, phone id.Phone) error
}
