// Package domainerrors defines the typed error vocabulary of the voting
// gateway. Conventionally imported as dErrors.
//
// Services return these errors to describe why a request was refused; the HTTP
// layer translates them into a JSON envelope via httputil.WriteError. Stores do
// NOT use this package — they return pkg/platform/sentinel errors and the
// owning service translates.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. The string value is the wire-visible error
// code, so it never changes once clients depend on it.
type Code string

// Generic codes.
const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal_error"
	CodeUnavailable  Code = "unavailable"
)

// Registration codes. Each maps to one validation gate in the registration
// pipeline, in the order the gates run.
const (
	CodeInvalidName           Code = "invalid_name"
	CodeInvalidDOB            Code = "invalid_dob"
	CodeInvalidPhone          Code = "invalid_phone"
	CodeInvalidFaceData       Code = "invalid_face_data"
	CodeDegenerateFaceCapture Code = "degenerate_face_capture"
	CodePhoneNotVerified      Code = "phone_not_verified"
	CodeProofNotVerified      Code = "proof_not_verified"
	CodeDuplicateVoter        Code = "duplicate_voter"
)

// OTP codes.
const (
	CodeOTPNotFound        Code = "otp_not_found"
	CodeOTPExpired         Code = "otp_expired"
	CodeOTPMismatch        Code = "otp_mismatch"
	CodeOTPTooManyAttempts Code = "otp_too_many_attempts"
)

// Ballot codes.
const (
	CodeVoterNotFound     Code = "voter_not_found"
	CodeVoterInactive     Code = "voter_inactive"
	CodeElectionNotFound  Code = "election_not_found"
	CodeElectionNotActive Code = "election_not_active"
	CodeElectionNotOpen   Code = "election_not_open"
	CodeMissingDOB        Code = "missing_dob"
	CodeAgeRestricted     Code = "age_restricted"
	CodeAlreadyVoted      Code = "already_voted"
	CodeInvalidCandidate  Code = "invalid_candidate"
)

// Error carries a stable code, a human-readable description, and optional
// structured details surfaced to the caller (collision kind, attempts left,
// computed age).
type Error struct {
	Code        Code
	Description string
	Details     map[string]any
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and description.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Newf builds a domain error with a formatted description.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Description: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause so the underlying failure stays visible in logs while
// clients only see the code and description.
func Wrap(code Code, description string, cause error) *Error {
	return &Error{Code: code, Description: description, cause: cause}
}

// WithDetails returns a copy of the error carrying structured details.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the domain error code, defaulting to CodeInternal for
// unclassified errors so nothing leaks internals to clients.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput,
		CodeInvalidName, CodeInvalidDOB, CodeInvalidPhone,
		CodeInvalidFaceData, CodeDegenerateFaceCapture,
		CodeOTPMismatch, CodeMissingDOB, CodeInvalidCandidate:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodePhoneNotVerified, CodeProofNotVerified,
		CodeVoterInactive, CodeElectionNotActive, CodeElectionNotOpen,
		CodeAgeRestricted:
		return http.StatusForbidden
	case CodeNotFound, CodeOTPNotFound, CodeVoterNotFound, CodeElectionNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateVoter, CodeAlreadyVoted:
		return http.StatusConflict
	case CodeOTPExpired:
		return http.StatusGone
	case CodeOTPTooManyAttempts:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
