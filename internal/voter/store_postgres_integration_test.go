//go:build integration

package voter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.Pool)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "voters"))
}

func (s *PostgresStoreSuite) seed(no id.VoterNo, phone id.Phone, offset float64) *Voter {
	v := &Voter{
		ID:           id.NewVoterID(),
		No:           no,
		Name:         "Voter " + string(no),
		DOB:          "1990-01-01",
		Phone:        phone,
		Face:         descriptorAt(offset),
		RegisteredAt: time.Now().UTC(),
		Status:       StatusActive,
	}
	s.Require().NoError(s.store.Create(s.ctx, v))
	return v
}

func (s *PostgresStoreSuite) TestCreateAndLookups() {
	v := s.seed("VTR-AAAAAA", "9876543210", 0)

	byID, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.No, byID.No)
	s.Equal(v.Name, byID.Name)
	s.Equal(v.Phone, byID.Phone)
	s.Equal(StatusActive, byID.Status)
	s.Len(byID.Face, id.DescriptorLen)

	byNo, err := s.store.FindByNo(s.ctx, v.No)
	s.Require().NoError(err)
	s.Equal(v.ID, byNo.ID)

	_, err = s.store.FindByNo(s.ctx, "VTR-MISSIN")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCreateRejectsDuplicates() {
	s.Run("duplicate phone reports a collision", func() {
		s.seed("VTR-AAAAAA", "9876543210", 0)

		clash := &Voter{
			ID:           id.NewVoterID(),
			No:           "VTR-BBBBBB",
			Name:         "Someone Else",
			DOB:          "1985-06-06",
			Phone:        "9876543210",
			Face:         descriptorAt(50),
			RegisteredAt: time.Now().UTC(),
			Status:       StatusActive,
		}
		err := s.store.Create(s.ctx, clash)
		var ce *CollisionError
		s.Require().ErrorAs(err, &ce)
		s.Equal(CollisionPhone, ce.Collision.Kind)
		s.Equal(id.VoterNo("VTR-AAAAAA"), ce.Collision.ExistingNo)
	})

	s.Run("near face reports the nearest neighbor", func() {
		s.Require().NoError(s.pg.TruncateTables(s.ctx, "voters"))
		s.seed("VTR-AAAAAA", "9876543210", 0)
		s.seed("VTR-BBBBBB", "9876543211", 100)

		clash := &Voter{
			ID:           id.NewVoterID(),
			No:           "VTR-CCCCCC",
			Name:         "Third Person",
			DOB:          "1970-02-02",
			Phone:        "9876543212",
			Face:         descriptorAt(0.01),
			RegisteredAt: time.Now().UTC(),
			Status:       StatusActive,
		}
		err := s.store.Create(s.ctx, clash)
		var ce *CollisionError
		s.Require().ErrorAs(err, &ce)
		s.Equal(CollisionFace, ce.Collision.Kind)
		s.Equal(id.VoterNo("VTR-AAAAAA"), ce.Collision.ExistingNo)
	})

	s.Run("reused voter number reports ErrAlreadyUsed", func() {
		s.Require().NoError(s.pg.TruncateTables(s.ctx, "voters"))
		s.seed("VTR-AAAAAA", "9876543210", 0)

		clash := &Voter{
			ID:           id.NewVoterID(),
			No:           "VTR-AAAAAA",
			Name:         "Second Holder",
			DOB:          "1985-06-06",
			Phone:        "5550001111",
			Face:         descriptorAt(50),
			RegisteredAt: time.Now().UTC(),
			Status:       StatusActive,
		}
		s.Require().ErrorIs(s.store.Create(s.ctx, clash), sentinel.ErrAlreadyUsed)
	})
}

// TestConcurrentCreate exercises the serializable transaction plus the unique
// index: concurrent registrations sharing one phone admit exactly one voter.
func (s *PostgresStoreSuite) TestConcurrentCreate() {
	const goroutines = 8
	var wg sync.WaitGroup
	results := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			no, err := id.MintVoterNo()
			if err != nil {
				results <- err
				return
			}
			v := &Voter{
				ID:           id.NewVoterID(),
				No:           no,
				Name:         fmt.Sprintf("Racer %02d", n),
				DOB:          fmt.Sprintf("19%02d-01-01", 50+n),
				Phone:        "9876543210",
				Face:         descriptorAt(float64(n+1) * 10),
				RegisteredAt: time.Now().UTC(),
				Status:       StatusActive,
			}
			results <- s.store.Create(s.ctx, v)
		}(i)
	}
	wg.Wait()
	close(results)

	var admitted int
	for err := range results {
		if err == nil {
			admitted++
		}
	}
	s.Equal(1, admitted)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresStoreSuite) TestSetStatus() {
	v := s.seed("VTR-AAAAAA", "9876543210", 0)

	s.Require().NoError(s.store.SetStatus(s.ctx, v.No, StatusInactive))
	found, err := s.store.FindByNo(s.ctx, v.No)
	s.Require().NoError(err)
	s.Equal(StatusInactive, found.Status)

	s.Require().ErrorIs(s.store.SetStatus(s.ctx, "VTR-MISSIN", StatusInactive), sentinel.ErrNotFound)
}
