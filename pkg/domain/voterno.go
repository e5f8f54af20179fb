package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	dErrors "votegate/pkg/domain-errors"
)

// VoterNo is the public voter number shown to the voter at registration and
// used for login, formatted VTR-XXXXXX. It is immutable once issued.
type VoterNo string

const voterNoPrefix = "VTR-"

// voterNoAlphabet deliberately uses the full uppercase alphanumeric set; the
// suffix is an unpredictability measure, not a checksum.
const voterNoAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const voterNoSuffixLen = 6

var voterNoPattern = regexp.MustCompile(`^VTR-[A-Z0-9]{6}$`)

func (n VoterNo) String() string { return string(n) }

// MintVoterNo draws a fresh voter number from a cryptographically strong
// source. Uniqueness against issued numbers is the registration service's
// responsibility (check-and-retry against the store).
func MintVoterNo() (VoterNo, error) {
	var b strings.Builder
	b.WriteString(voterNoPrefix)
	for i := 0; i < voterNoSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(voterNoAlphabet))))
		if err != nil {
			return "", dErrors.Wrap(dErrors.CodeInternal, "mint voter number", err)
		}
		b.WriteByte(voterNoAlphabet[n.Int64()])
	}
	return VoterNo(b.String()), nil
}

// ParseVoterNo validates external input as a voter number. Lowercase input is
// accepted and folded, since voters type these by hand.
func ParseVoterNo(s string) (VoterNo, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !voterNoPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "voter number must match VTR-XXXXXX")
	}
	return VoterNo(s), nil
}
