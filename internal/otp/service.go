package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"votegate/internal/otp/metrics"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

const codeDigits = 6

// Sender delivers codes out of band. Production wires an SMS gateway; local
// development uses the log sender.
type Sender interface {
	SendCode(ctx context.Context, phone id.Phone, code string) error
}

// Service issues and verifies OTP challenges.
//
// All challenge mutation is serialized per phone through a keyed mutex, so a
// verify racing a resend (or another verify) can never lose an attempt
// increment or resurrect a deleted challenge.
type Service struct {
	store       Store
	sender      Sender
	logger      *slog.Logger
	metrics     *metrics.Metrics
	ttl         time.Duration
	maxAttempts int
	demoMode    bool

	phoneLocks sync.Map // id.Phone -> *sync.Mutex
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithDemoMode makes Send return the generated code to the caller. Only for
// demos; never enable in production.
func WithDemoMode() Option {
	return func(s *Service) { s.demoMode = true }
}

// WithMetrics attaches OTP metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, sender Sender, logger *slog.Logger, ttl time.Duration, maxAttempts int, opts ...Option) *Service {
	s := &Service{
		store:       store,
		sender:      sender,
		logger:      logger,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SendResult is what the caller learns after a code is issued.
type SendResult struct {
	MaskedPhone string
	// DemoCode is set only in demo mode. Production responses never carry it.
	DemoCode string
}

// Send issues a fresh challenge for the phone, replacing any prior one.
// Errors: CodeInvalidPhone for malformed input, CodeInternal otherwise.
func (s *Service) Send(ctx context.Context, rawPhone string) (*SendResult, error) {
	phone, err := id.ParsePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	unlock := s.lockPhone(phone)
	defer unlock()

	code, err := generateCode()
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "generate otp code", err)
	}

	now := requestcontext.Now(ctx)
	challenge := Challenge{
		Phone:     phone,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, challenge); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store otp challenge", err)
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		// The challenge stays live; the voter can request a resend.
		s.logger.ErrorContext(ctx, "otp delivery failed",
			"request_id", requestcontext.RequestID(ctx),
			"phone", phone.Masked(),
			"error", err,
		)
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "could not deliver code", err)
	}

	s.metrics.IncrementIssued()
	s.logger.InfoContext(ctx, "otp issued",
		"request_id", requestcontext.RequestID(ctx),
		"phone", phone.Masked(),
		"expires_at", challenge.ExpiresAt,
	)

	result := &SendResult{MaskedPhone: phone.Masked()}
	if s.demoMode {
		result.DemoCode = code
	}
	return result, nil
}

// Verify checks a submitted code against the live challenge for the phone.
// Every call counts as an attempt; the challenge is deleted once attempts
// exceed the cap or the challenge has expired.
//
// Errors: CodeOTPNotFound, CodeOTPExpired, CodeOTPTooManyAttempts,
// CodeOTPMismatch (with attempts_left detail).
func (s *Service) Verify(ctx context.Context, rawPhone, code string) error {
	phone, err := id.ParsePhone(rawPhone)
	if err != nil {
		return err
	}

	unlock := s.lockPhone(phone)
	defer unlock()

	challenge, err := s.store.Get(ctx, phone)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.IncrementVerify("not_found")
		return dErrors.New(dErrors.CodeOTPNotFound, "no code was sent to this phone")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "load otp challenge", err)
	}

	now := requestcontext.Now(ctx)
	if challenge.Expired(now) {
		_ = s.store.Delete(ctx, phone)
		s.metrics.IncrementVerify("expired")
		return dErrors.New(dErrors.CodeOTPExpired, "code has expired, request a new one")
	}

	challenge.Attempts++
	if challenge.Attempts > s.maxAttempts {
		_ = s.store.Delete(ctx, phone)
		s.metrics.IncrementVerify("too_many_attempts")
		return dErrors.New(dErrors.CodeOTPTooManyAttempts, "too many attempts, request a new code")
	}

	if challenge.Code != code {
		if err := s.store.Put(ctx, challenge); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "store otp challenge", err)
		}
		remaining := s.maxAttempts - challenge.Attempts
		s.metrics.IncrementVerify("mismatch")
		return dErrors.Newf(dErrors.CodeOTPMismatch, "wrong OTP, %d tries left", remaining).
			WithDetails(map[string]any{"attempts_left": remaining})
	}

	challenge.Verified = true
	if err := s.store.Put(ctx, challenge); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "store otp challenge", err)
	}
	s.metrics.IncrementVerify("ok")
	s.logger.InfoContext(ctx, "otp verified",
		"request_id", requestcontext.RequestID(ctx),
		"phone", phone.Masked(),
	)
	return nil
}

// IsVerified reports whether the phone holds a live, verified challenge.
func (s *Service) IsVerified(ctx context.Context, phone id.Phone) (bool, error) {
	challenge, err := s.store.Get(ctx, phone)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeInternal, "load otp challenge", err)
	}
	if challenge.Expired(requestcontext.Now(ctx)) {
		return false, nil
	}
	return challenge.Verified, nil
}

// Consume deletes the phone's challenge after it has served its purpose, so
// one verification cannot be replayed across two registrations.
func (s *Service) Consume(ctx context.Context, phone id.Phone) error {
	unlock := s.lockPhone(phone)
	defer unlock()
	if err := s.store.Delete(ctx, phone); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "consume otp challenge", err)
	}
	return nil
}

func (s *Service) lockPhone(phone id.Phone) func() {
	muAny, _ := s.phoneLocks.LoadOrStore(phone, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// generateCode draws a uniformly random 6-digit code (leading zeros allowed)
// from a cryptographically strong source.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// LogSender logs codes instead of delivering them. The default sender for
// local development; production wires a real SMS gateway.
type LogSender struct {
	Logger *slog.Logger
}

func (l LogSender) SendCode(ctx context.Context, phone id.Phone, code string) error {
	l.Logger.InfoContext(ctx, "otp code (log sender)",
		"phone", phone.Masked(),
		"code", code,
	)
	return nil
}
