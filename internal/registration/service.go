// Package registration implements the admission pipeline: a fixed sequence of
// validation gates that ends, when every gate passes, in the only code path
// that ever creates a voter record.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"votegate/internal/registration/metrics"
	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

const (
	minNameLength = 2
	dobLayout     = "2006-01-02"

	// maxMintAttempts bounds the voter-number retry loop. The space is 36^6;
	// two clashes in a row already means something is wrong with the RNG.
	maxMintAttempts = 5
)

// PhoneVerifier is the slice of the OTP service the pipeline needs: the gate
// check and the post-admission consumption.
type PhoneVerifier interface {
	IsVerified(ctx context.Context, phone id.Phone) (bool, error)
	Consume(ctx context.Context, phone id.Phone) error
}

// Recorder receives an event after a voter is admitted.
type Recorder interface {
	VoterRegistered(ctx context.Context, voterNo id.VoterNo, maskedPhone string)
}

// Service runs the registration pipeline.
type Service struct {
	voters   voter.Store
	phones   PhoneVerifier
	recorder Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func NewService(voters voter.Store, phones PhoneVerifier, recorder Recorder, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		voters:   voters,
		phones:   phones,
		recorder: recorder,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("votegate/registration"),
	}
}

// Input is the raw registration submission. ProofVerified is produced by an
// external document-verification step; the pipeline only gates on the flag.
type Input struct {
	Name          string
	DOB           string
	Phone         string
	Address       string
	Face          []float64
	ProofType     string
	ProofVerified bool
}

// Result is returned to the voter on admission.
type Result struct {
	VoterNo id.VoterNo
	Name    string
}

// Register runs the gates in order and admits the voter when all pass. Each
// gate refuses with its own error code; the duplicate gate runs atomically
// with the insert inside the store.
func (s *Service) Register(ctx context.Context, input Input) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "registration.register")
	defer span.End()

	result, err := s.register(ctx, input)
	if err != nil {
		code := dErrors.CodeOf(err)
		s.metrics.IncrementRejection(string(code))
		return nil, err
	}
	s.metrics.IncrementRegistered()
	return result, nil
}

func (s *Service) register(ctx context.Context, input Input) (*Result, error) {
	name, err := sanitizeName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateDOB(input.DOB); err != nil {
		return nil, err
	}
	phone, err := id.ParsePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	face := id.FaceDescriptor(input.Face)
	if err := face.Validate(); err != nil {
		return nil, err
	}
	if face.Degenerate() {
		return nil, dErrors.New(dErrors.CodeDegenerateFaceCapture,
			"face capture looks blank or covered, retake the photo")
	}

	verified, err := s.phones.IsVerified(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, dErrors.New(dErrors.CodePhoneNotVerified, "phone has not completed OTP verification")
	}
	if !input.ProofVerified {
		return nil, dErrors.New(dErrors.CodeProofNotVerified, "identity proof has not been verified")
	}

	record := voter.Voter{
		ID:           id.NewVoterID(),
		Name:         name,
		DOB:          input.DOB,
		Phone:        phone,
		Address:      strings.TrimSpace(input.Address),
		ProofType:    input.ProofType,
		Face:         face,
		RegisteredAt: requestcontext.Now(ctx),
		Status:       voter.StatusActive,
	}

	admitted, err := s.createWithFreshNo(ctx, record)
	if err != nil {
		var collision *voter.CollisionError
		if errors.As(err, &collision) {
			s.metrics.IncrementDuplicate(string(collision.Collision.Kind))
			return nil, dErrors.New(dErrors.CodeDuplicateVoter, "an enrolled voter already matches this identity").
				WithDetails(map[string]any{
					"kind":              string(collision.Collision.Kind),
					"existing_voter_no": collision.Collision.ExistingNo.String(),
					"existing_name":     collision.Collision.ExistingName,
				})
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "persist voter", err)
	}

	// The challenge served its purpose; deleting it means this verification
	// cannot admit a second registration.
	if err := s.phones.Consume(ctx, phone); err != nil {
		s.logger.ErrorContext(ctx, "consume otp after registration",
			"request_id", requestcontext.RequestID(ctx),
			"voter_no", admitted.No,
			"error", err,
		)
	}

	if s.recorder != nil {
		s.recorder.VoterRegistered(ctx, admitted.No, phone.Masked())
	}
	s.logger.InfoContext(ctx, "voter registered",
		"request_id", requestcontext.RequestID(ctx),
		"voter_no", admitted.No,
		"phone", phone.Masked(),
	)
	return &Result{VoterNo: admitted.No, Name: admitted.Name}, nil
}

// createWithFreshNo mints a voter number and inserts, retrying the mint when
// the number is already taken. Duplicate-identity collisions are not retried.
func (s *Service) createWithFreshNo(ctx context.Context, record voter.Voter) (*voter.Voter, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		no, err := id.MintVoterNo()
		if err != nil {
			return nil, err
		}
		record.No = no
		err = s.voters.Create(ctx, &record)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.logger.WarnContext(ctx, "voter number clash, reminting",
				"request_id", requestcontext.RequestID(ctx),
				"voter_no", record.No,
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		return &record, nil
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not mint a unique voter number")
}

// sanitizeName strips characters that have no place in a name and validates
// what remains. Letters, spaces, dots, apostrophes and hyphens survive.
func sanitizeName(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || r == ' ' || r == '.' || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if len([]rune(name)) < minNameLength {
		return "", dErrors.New(dErrors.CodeInvalidName, "name must have at least 2 characters")
	}
	return name, nil
}

// validateDOB requires a well-formed ISO date; the ballot module parses it
// later for the age gate and must not fail there on admitted data.
func validateDOB(dob string) error {
	if dob == "" {
		return dErrors.New(dErrors.CodeInvalidDOB, "date of birth is required")
	}
	if _, err := time.Parse(dobLayout, dob); err != nil {
		return dErrors.New(dErrors.CodeInvalidDOB, "date of birth must be YYYY-MM-DD")
	}
	return nil
}
