package election

import (
	"context"

	id "votegate/pkg/domain"
)

// Store persists election configuration. The voting path treats it as
// read-only; Put and SetStatus exist for the admin surface.
type Store interface {
	FindByID(ctx context.Context, electionID id.ElectionID) (*Election, error)
	List(ctx context.Context) ([]*Election, error)
	Put(ctx context.Context, election *Election) error
	SetStatus(ctx context.Context, electionID id.ElectionID, status Status) error
}
