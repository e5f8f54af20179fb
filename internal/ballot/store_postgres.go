package ballot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// PostgresStore persists votes in PostgreSQL. The unique index on
// (election_id, voter_id) IS the one-vote invariant; AppendIfFirst just
// inserts and translates the violation.
//
// Schema:
//
//	CREATE TABLE votes (
//	    id           UUID PRIMARY KEY,
//	    election_id  UUID NOT NULL,
//	    voter_id     UUID NOT NULL,
//	    candidate_id UUID NOT NULL,
//	    cast_at      TIMESTAMPTZ NOT NULL,
//	    UNIQUE (election_id, voter_id)
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) AppendIfFirst(ctx context.Context, vote Vote) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO votes (id, election_id, voter_id, candidate_id, cast_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		vote.ID.String(), vote.ElectionID.String(), vote.VoterID.String(),
		vote.CandidateID.String(), vote.CastAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasVoted(ctx context.Context, electionID id.ElectionID, voterID id.VoterID) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM votes WHERE election_id = $1 AND voter_id = $2`,
		electionID.String(), voterID.String(),
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check vote existence: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) CountByCandidate(ctx context.Context, electionID id.ElectionID) (map[id.CandidateID]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, COUNT(*) FROM votes WHERE election_id = $1 GROUP BY candidate_id`,
		electionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[id.CandidateID]int)
	for rows.Next() {
		var rawCandidate string
		var n int
		if err := rows.Scan(&rawCandidate, &n); err != nil {
			return nil, fmt.Errorf("scan vote count: %w", err)
		}
		candidateID, err := id.ParseCandidateID(rawCandidate)
		if err != nil {
			return nil, fmt.Errorf("stored candidate id malformed: %w", err)
		}
		counts[candidateID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	return counts, nil
}
