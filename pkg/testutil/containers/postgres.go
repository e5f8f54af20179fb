//go:build integration

package containers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors what the Postgres stores document: the unique indexes on
// voters and votes back the application-level checks.
const schema = `
CREATE TABLE IF NOT EXISTS voters (
    id            UUID PRIMARY KEY,
    voter_no      TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    dob           TEXT NOT NULL,
    phone         TEXT NOT NULL UNIQUE,
    address       TEXT NOT NULL DEFAULT '',
    proof_type    TEXT NOT NULL DEFAULT '',
    face          DOUBLE PRECISION[] NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL,
    status        TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS votes (
    id           UUID PRIMARY KEY,
    election_id  UUID NOT NULL,
    voter_id     UUID NOT NULL,
    candidate_id UUID NOT NULL,
    cast_at      TIMESTAMPTZ NOT NULL,
    UNIQUE (election_id, voter_id)
);
`

// PostgresContainer is a running Postgres instance with the votegate schema
// applied and a connected pool.
type PostgresContainer struct {
	Pool *pgxpool.Pool
}

// NewPostgresContainer starts Postgres, applies the schema, and connects.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("votegate_test"),
		tcpostgres.WithUsername("votegate"),
		tcpostgres.WithPassword("votegate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return &PostgresContainer{Pool: pool}
}

// TruncateTables empties the given tables. Call between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", strings.Join(tables, ", ")))
	return err
}
