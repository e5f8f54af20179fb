package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

type fakeVerifier struct {
	verified map[id.Phone]bool
	consumed []id.Phone
}

func (f *fakeVerifier) IsVerified(_ context.Context, phone id.Phone) (bool, error) {
	return f.verified[phone], nil
}

func (f *fakeVerifier) Consume(_ context.Context, phone id.Phone) error {
	f.consumed = append(f.consumed, phone)
	delete(f.verified, phone)
	return nil
}

type LoginSuite struct {
	suite.Suite
	service  *Service
	voters   *voter.InMemoryStore
	verifier *fakeVerifier
	ctx      context.Context

	voterNo id.VoterNo
	voterID id.VoterID
}

func TestLoginSuite(t *testing.T) {
	suite.Run(t, new(LoginSuite))
}

func (s *LoginSuite) SetupTest() {
	s.voters = voter.NewInMemoryStore()
	s.verifier = &fakeVerifier{verified: make(map[id.Phone]bool)}
	tokens := NewTokenService("test-signing-key", "votegate-test", 30*time.Minute)
	s.service = NewService(s.voters, s.verifier, tokens, nil, slog.New(slog.DiscardHandler))
	s.ctx = context.Background()

	no, err := id.MintVoterNo()
	s.Require().NoError(err)
	s.voterNo = no
	s.voterID = id.NewVoterID()
	s.Require().NoError(s.voters.Create(s.ctx, &voter.Voter{
		ID:     s.voterID,
		No:     s.voterNo,
		Name:   "Asha Rao",
		DOB:    "1990-06-15",
		Phone:  "9876543210",
		Status: voter.StatusActive,
	}))
}

func (s *LoginSuite) TestLogin() {
	s.Run("issues a session for a verified phone", func() {
		s.verifier.verified["9876543210"] = true

		result, err := s.service.Login(s.ctx, s.voterNo.String(), "9876543210")
		s.Require().NoError(err)
		s.Equal(s.voterNo, result.VoterNo)
		s.Equal("Asha Rao", result.Name)
		s.Equal(30*time.Minute, result.ExpiresIn)

		claims, err := NewMiddlewareAdapter(s.service.tokens).ValidateToken(result.Token)
		s.Require().NoError(err)
		s.Equal(s.voterID, claims.VoterID)

		// The login consumed the challenge.
		s.Contains(s.verifier.consumed, id.Phone("9876543210"))
	})

	s.Run("accepts a lowercase voter number and formatted phone", func() {
		s.verifier.verified["9876543210"] = true
		_, err := s.service.Login(s.ctx, strings.ToLower(s.voterNo.String()), "+91 98765-43210")
		s.Require().NoError(err)
	})

	s.Run("unknown voter number looks identical to a wrong phone", func() {
		s.verifier.verified["9876543210"] = true

		_, err := s.service.Login(s.ctx, "VTR-ZZZZZZ", "9876543210")
		s.Require().Error(err)
		unknownNo := err.Error()

		_, err = s.service.Login(s.ctx, s.voterNo.String(), "9876500000")
		s.Require().Error(err)
		s.Equal(unknownNo, err.Error())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unverified phone", func() {
		delete(s.verifier.verified, "9876543210")
		_, err := s.service.Login(s.ctx, s.voterNo.String(), "9876543210")
		s.True(dErrors.HasCode(err, dErrors.CodePhoneNotVerified))
	})

	s.Run("malformed voter number", func() {
		_, err := s.service.Login(s.ctx, "ABC-123", "9876543210")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("inactive voter", func() {
		s.verifier.verified["9876543210"] = true
		s.Require().NoError(s.voters.SetStatus(s.ctx, s.voterNo, voter.StatusInactive))

		_, err := s.service.Login(s.ctx, s.voterNo.String(), "9876543210")
		s.True(dErrors.HasCode(err, dErrors.CodeVoterInactive))
	})
}
