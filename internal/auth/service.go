package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// VoterDirectory is the slice of the voter store login needs.
type VoterDirectory interface {
	FindByNo(ctx context.Context, no id.VoterNo) (*voter.Voter, error)
}

// PhoneVerifier is the slice of the OTP service login needs. A login consumes
// the challenge the same way registration does.
type PhoneVerifier interface {
	IsVerified(ctx context.Context, phone id.Phone) (bool, error)
	Consume(ctx context.Context, phone id.Phone) error
}

// Recorder receives an event after a successful login.
type Recorder interface {
	VoterLoggedIn(ctx context.Context, voterNo id.VoterNo)
}

// Service runs the voter login flow: voter number plus a freshly OTP-verified
// phone in exchange for a session token.
type Service struct {
	voters   VoterDirectory
	phones   PhoneVerifier
	tokens   *TokenService
	recorder Recorder
	logger   *slog.Logger
}

func NewService(voters VoterDirectory, phones PhoneVerifier, tokens *TokenService, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		voters:   voters,
		phones:   phones,
		tokens:   tokens,
		recorder: recorder,
		logger:   logger,
	}
}

// LoginResult carries the issued session.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	VoterNo   id.VoterNo
	Name      string
}

// Login validates the voter number, checks the submitted phone both matches
// the record and holds a verified OTP, then issues a session token. The
// phone-mismatch case reports a generic unauthorized so the endpoint cannot be
// used to probe which phone a voter number belongs to.
func (s *Service) Login(ctx context.Context, rawVoterNo, rawPhone string) (*LoginResult, error) {
	voterNo, err := id.ParseVoterNo(rawVoterNo)
	if err != nil {
		return nil, err
	}
	phone, err := id.ParsePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	v, err := s.voters.FindByNo(ctx, voterNo)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "voter number and phone do not match")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load voter", err)
	}
	if v.Phone != phone {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "voter number and phone do not match")
	}
	if v.Status != voter.StatusActive {
		return nil, dErrors.New(dErrors.CodeVoterInactive, "voter is not active")
	}

	verified, err := s.phones.IsVerified(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, dErrors.New(dErrors.CodePhoneNotVerified, "phone has not completed OTP verification")
	}

	now := requestcontext.Now(ctx)
	token, err := s.tokens.IssueSessionToken(v.ID, v.No, now)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "issue session token", err)
	}

	if err := s.phones.Consume(ctx, phone); err != nil {
		s.logger.ErrorContext(ctx, "consume otp after login",
			"request_id", requestcontext.RequestID(ctx),
			"voter_no", v.No,
			"error", err,
		)
	}

	if s.recorder != nil {
		s.recorder.VoterLoggedIn(ctx, v.No)
	}
	s.logger.InfoContext(ctx, "voter logged in",
		"request_id", requestcontext.RequestID(ctx),
		"voter_no", v.No,
	)
	return &LoginResult{
		Token:     token,
		ExpiresIn: s.tokens.TTL(),
		VoterNo:   v.No,
		Name:      v.Name,
	}, nil
}
