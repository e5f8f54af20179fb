// Package sentinel holds the error values stores and other infrastructure
// layers return to report facts about resources. Services translate these
// into pkg/domain-errors codes; handlers never see them directly.
package sentinel

import "errors"

// Factual resource states, not validation failures:
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: a uniqueness rule blocked the write
//   - ErrExpired: challenge or token is past its expiry
//   - ErrAlreadyUsed: one-shot resource (OTP challenge) already consumed
//   - ErrInvalidState: record is in the wrong state for the operation
//   - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
