package registration

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
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

type captureRecorder struct {
	voterNos []id.VoterNo
}

func (c *captureRecorder) VoterRegistered(_ context.Context, voterNo id.VoterNo, _ string) {
	c.voterNos = append(c.voterNos, voterNo)
}

// clashingStore forces the first n Create calls to report a taken voter
// number, exercising the remint loop.
type clashingStore struct {
	*voter.InMemoryStore
	clashes int
}

func (s *clashingStore) Create(ctx context.Context, v *voter.Voter) error {
	if s.clashes > 0 {
		s.clashes--
		return sentinel.ErrAlreadyUsed
	}
	return s.InMemoryStore.Create(ctx, v)
}

type RegistrationSuite struct {
	suite.Suite
	service  *Service
	voters   *voter.InMemoryStore
	verifier *fakeVerifier
	recorder *captureRecorder
	ctx      context.Context
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) SetupTest() {
	s.voters = voter.NewInMemoryStore()
	s.verifier = &fakeVerifier{verified: make(map[id.Phone]bool)}
	s.recorder = &captureRecorder{}
	s.service = NewService(s.voters, s.verifier, s.recorder, slog.New(slog.DiscardHandler), nil)
	s.ctx = context.Background()
}

// validInput returns a submission that passes every gate, with the phone
// already marked verified. offset shifts the face descriptor so successive
// voters do not collide on face.
func (s *RegistrationSuite) validInput(name, phone string, offset float64) Input {
	face := make([]float64, id.DescriptorLen)
	for i := range face {
		face[i] = 0.5 + offset + 0.01*float64(i%7)
	}
	s.verifier.verified[id.Phone(phone)] = true
	return Input{
		Name:          name,
		DOB:           "1990-06-15",
		Phone:         phone,
		Address:       "12 Lake Road",
		Face:          face,
		ProofType:     "passport",
		ProofVerified: true,
	}
}

func (s *RegistrationSuite) TestRegister() {
	s.Run("admits a valid submission", func() {
		result, err := s.service.Register(s.ctx, s.validInput("Asha Rao", "9876543210", 0))
		s.Require().NoError(err)
		s.Equal("Asha Rao", result.Name)

		_, err = id.ParseVoterNo(result.VoterNo.String())
		s.Require().NoError(err)

		stored, err := s.voters.FindByNo(s.ctx, result.VoterNo)
		s.Require().NoError(err)
		s.Equal(voter.StatusActive, stored.Status)
		s.Equal(id.Phone("9876543210"), stored.Phone)

		s.Equal([]id.VoterNo{result.VoterNo}, s.recorder.voterNos)
	})

	s.Run("consumes the otp so the phone cannot be replayed", func() {
		input := s.validInput("Ben Kiran", "9876500001", 2)
		_, err := s.service.Register(s.ctx, input)
		s.Require().NoError(err)
		s.Contains(s.verifier.consumed, id.Phone("9876500001"))

		// Same phone, fresh identity, no new OTP cycle.
		again := s.validInput("Chitra Dev", "9876500001", 4)
		delete(s.verifier.verified, id.Phone("9876500001"))
		_, err = s.service.Register(s.ctx, again)
		s.True(dErrors.HasCode(err, dErrors.CodePhoneNotVerified))
	})

	s.Run("strips junk characters from the name", func() {
		result, err := s.service.Register(s.ctx, s.validInput("  ravi4  kumar!! ", "9876500002", 6))
		s.Require().NoError(err)
		s.Equal("ravi kumar", result.Name)
	})
}

func (s *RegistrationSuite) TestValidationGates() {
	s.Run("name shorter than two characters after stripping", func() {
		input := s.validInput("7$", "9876500010", 0)
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidName))
	})

	s.Run("empty date of birth", func() {
		input := s.validInput("Asha Rao", "9876500011", 0)
		input.DOB = ""
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDOB))
	})

	s.Run("malformed date of birth", func() {
		input := s.validInput("Asha Rao", "9876500012", 0)
		input.DOB = "15/06/1990"
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDOB))
	})

	s.Run("phone with fewer than ten digits", func() {
		input := s.validInput("Asha Rao", "9876500013", 0)
		input.Phone = "12345"
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidPhone))
	})

	s.Run("wrong-length face descriptor", func() {
		input := s.validInput("Asha Rao", "9876500014", 0)
		input.Face = input.Face[:100]
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidFaceData))
	})

	s.Run("all-zero descriptor is a degenerate capture", func() {
		input := s.validInput("Asha Rao", "9876500015", 0)
		input.Face = make([]float64, id.DescriptorLen)
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeDegenerateFaceCapture))
	})

	s.Run("unverified phone", func() {
		input := s.validInput("Asha Rao", "9876500016", 0)
		delete(s.verifier.verified, id.Phone("9876500016"))
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodePhoneNotVerified))
	})

	s.Run("unverified proof", func() {
		input := s.validInput("Asha Rao", "9876500017", 0)
		input.ProofVerified = false
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeProofNotVerified))
	})

	s.Run("earliest failing gate wins", func() {
		input := s.validInput("X", "12345", 0)
		input.DOB = ""
		_, err := s.service.Register(s.ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidName))
	})
}

func (s *RegistrationSuite) TestDuplicateGate() {
	s.Run("same phone is rejected with the existing voter surfaced", func() {
		first, err := s.service.Register(s.ctx, s.validInput("Asha Rao", "9876543210", 0))
		s.Require().NoError(err)

		dup := s.validInput("Different Name", "9876543210", 10)
		_, err = s.service.Register(s.ctx, dup)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateVoter))

		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal("phone", de.Details["kind"])
		s.Equal(first.VoterNo.String(), de.Details["existing_voter_no"])
		s.Equal("Asha Rao", de.Details["existing_name"])
	})

	s.Run("same name and dob is rejected", func() {
		_, err := s.service.Register(s.ctx, s.validInput("Dina Paul", "9876500023", 20))
		s.Require().NoError(err)

		dup := s.validInput("  DINA PAUL ", "9876500020", 30)
		_, err = s.service.Register(s.ctx, dup)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateVoter))

		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal("name_dob", de.Details["kind"])
	})

	s.Run("near-identical face is rejected", func() {
		_, err := s.service.Register(s.ctx, s.validInput("Elan Mor", "9876500024", 40))
		s.Require().NoError(err)

		dup := s.validInput("Other Person", "9876500021", 40.001)
		dup.DOB = "1985-01-01"
		_, err = s.service.Register(s.ctx, dup)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateVoter))

		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal("face", de.Details["kind"])
	})

	s.Run("nothing is persisted on rejection", func() {
		_, err := s.service.Register(s.ctx, s.validInput("Farah Khan", "9876500025", 60))
		s.Require().NoError(err)
		before, err := s.voters.Count(s.ctx)
		s.Require().NoError(err)

		dup := s.validInput("Farah Khan", "9876500022", 70)
		_, err = s.service.Register(s.ctx, dup)
		s.Require().Error(err)

		after, err := s.voters.Count(s.ctx)
		s.Require().NoError(err)
		s.Equal(before, after)
	})
}

func (s *RegistrationSuite) TestVoterNumberMinting() {
	s.Run("remints on a taken voter number", func() {
		store := &clashingStore{InMemoryStore: s.voters, clashes: 2}
		service := NewService(store, s.verifier, nil, slog.New(slog.DiscardHandler), nil)

		result, err := service.Register(s.ctx, s.validInput("Asha Rao", "9876543210", 0))
		s.Require().NoError(err)
		s.Zero(store.clashes)
		s.NotEmpty(result.VoterNo)
	})

	s.Run("gives up after too many clashes", func() {
		store := &clashingStore{InMemoryStore: s.voters, clashes: maxMintAttempts}
		service := NewService(store, s.verifier, nil, slog.New(slog.DiscardHandler), nil)

		_, err := service.Register(s.ctx, s.validInput("Asha Rao", "9876500030", 0))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Asha Rao", want: "Asha Rao"},
		{in: "  O'Brien-Smith Jr. ", want: "O'Brien-Smith Jr."},
		{in: "ravi4   kumar9", want: "ravi kumar"},
		{in: "42", wantErr: true},
		{in: "A", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			got, err := sanitizeName(tc.in)
			if tc.wantErr {
				if !dErrors.HasCode(err, dErrors.CodeInvalidName) {
					t.Fatalf("sanitizeName(%q): want invalid_name, got %v", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeName(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
