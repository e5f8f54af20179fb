package auth

import (
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	authmw "votegate/pkg/platform/middleware/auth"
)

// MiddlewareAdapter lets the HTTP auth middleware validate tokens without
// depending on this package's claim types.
type MiddlewareAdapter struct {
	tokens *TokenService
}

func NewMiddlewareAdapter(tokens *TokenService) *MiddlewareAdapter {
	return &MiddlewareAdapter{tokens: tokens}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*authmw.SessionClaims, error) {
	claims, err := a.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	voterID, err := id.ParseVoterID(claims.VoterID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}
	voterNo, err := id.ParseVoterNo(claims.VoterNo)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}
	return &authmw.SessionClaims{VoterID: voterID, VoterNo: voterNo}, nil
}
