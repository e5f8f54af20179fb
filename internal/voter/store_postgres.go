package voter

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

// PostgresStore persists voters in PostgreSQL.
//
// Create runs detection and insert inside one serializable transaction, and
// unique indexes on phone and voter_no back the detector up: even if two
// serializable transactions interleave in a way the scan misses, the index
// rejects the second insert.
//
// Schema:
//
//	CREATE TABLE voters (
//	    id            UUID PRIMARY KEY,
//	    voter_no      TEXT NOT NULL UNIQUE,
//	    name          TEXT NOT NULL,
//	    dob           TEXT NOT NULL,
//	    phone         TEXT NOT NULL UNIQUE,
//	    address       TEXT NOT NULL DEFAULT '',
//	    proof_type    TEXT NOT NULL DEFAULT '',
//	    face          DOUBLE PRECISION[] NOT NULL,
//	    registered_at TIMESTAMPTZ NOT NULL,
//	    status        TEXT NOT NULL DEFAULT 'active'
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const voterColumns = `id, voter_no, name, dob, phone, address, proof_type, face, registered_at, status`

func (s *PostgresStore) Create(ctx context.Context, voter *Voter) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin voter create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `SELECT voter_no, name, dob, phone, face FROM voters`)
	if err != nil {
		return fmt.Errorf("scan existing voters: %w", err)
	}
	var existing []Voter
	for rows.Next() {
		var v Voter
		var face []float64
		if err := rows.Scan(&v.No, &v.Name, &v.DOB, &v.Phone, &face); err != nil {
			rows.Close()
			return fmt.Errorf("scan existing voter: %w", err)
		}
		v.Face = face
		existing = append(existing, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan existing voters: %w", err)
	}

	candidate := Candidate{Name: voter.Name, DOB: voter.DOB, Phone: voter.Phone, Face: voter.Face}
	if collision := DetectCollision(candidate, existing); collision != nil {
		return &CollisionError{Collision: *collision}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO voters (`+voterColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id.VoterID(voter.ID).String(), voter.No.String(), voter.Name, voter.DOB,
		voter.Phone.String(), voter.Address, voter.ProofType, []float64(voter.Face),
		voter.RegisteredAt, string(voter.Status),
	)
	if err != nil {
		return s.translateInsertError(ctx, err, voter)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit voter create: %w", err)
	}
	return nil
}

// translateInsertError maps unique-index violations onto the same errors the
// detector produces, so callers see one vocabulary regardless of which layer
// caught the duplicate.
func (s *PostgresStore) translateInsertError(ctx context.Context, err error, voter *Voter) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return fmt.Errorf("insert voter: %w", err)
	}
	switch pgErr.ConstraintName {
	case "voters_voter_no_key":
		return sentinel.ErrAlreadyUsed
	case "voters_phone_key":
		existing, lookupErr := s.findByPhone(ctx, voter.Phone)
		if lookupErr != nil {
			return &CollisionError{Collision: Collision{Kind: CollisionPhone}}
		}
		return &CollisionError{Collision: Collision{
			Kind: CollisionPhone, ExistingNo: existing.No, ExistingName: existing.Name,
		}}
	default:
		return sentinel.ErrConflict
	}
}

func (s *PostgresStore) FindByID(ctx context.Context, voterID id.VoterID) (*Voter, error) {
	return s.findOne(ctx, `SELECT `+voterColumns+` FROM voters WHERE id = $1`, voterID.String())
}

func (s *PostgresStore) FindByNo(ctx context.Context, no id.VoterNo) (*Voter, error) {
	return s.findOne(ctx, `SELECT `+voterColumns+` FROM voters WHERE voter_no = $1`, no.String())
}

func (s *PostgresStore) findByPhone(ctx context.Context, phone id.Phone) (*Voter, error) {
	return s.findOne(ctx, `SELECT `+voterColumns+` FROM voters WHERE phone = $1`, phone.String())
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*Voter, error) {
	var (
		v        Voter
		rawID    string
		rawNo    string
		face     []float64
		status   string
		rawPhone string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&rawID, &rawNo, &v.Name, &v.DOB, &rawPhone, &v.Address, &v.ProofType,
		&face, &v.RegisteredAt, &status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find voter: %w", err)
	}
	parsed, err := id.ParseVoterID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored voter id malformed: %w", err)
	}
	v.ID = parsed
	v.No = id.VoterNo(rawNo)
	v.Phone = id.Phone(rawPhone)
	v.Face = face
	v.Status = Status(status)
	return &v, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, no id.VoterNo, status Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE voters SET status = $1 WHERE voter_no = $2`,
		string(status), no.String(),
	)
	if err != nil {
		return fmt.Errorf("set voter status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM voters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count voters: %w", err)
	}
	return n, nil
}
