package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultProfile names the single session slot used by shared stores.
const DefaultProfile = "default"

// PostgresStore implements Store using PostgreSQL (keeper.sessions).
//
// Schema:
//
//	CREATE TABLE keeper.sessions (
//	    profile    text PRIMARY KEY,
//	    body       jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL
//	);
type PostgresStore struct {
	pool    *pgxpool.Pool
	profile string
}

// NewPostgresStore creates a Postgres-backed session store for one profile.
// The pool is owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool, profile string) *PostgresStore {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = DefaultProfile
	}
	return &PostgresStore{pool: pool, profile: profile}
}

// Read loads the profile row. A missing row is reported as (nil, nil).
func (s *PostgresStore) Read(ctx context.Context) (*Session, error) {
	var body []byte

	err := s.pool.QueryRow(ctx, `
		SELECT body
		FROM keeper.sessions
		WHERE profile = $1
	`, s.profile).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keeper.sessions/%s: %w", s.profile, err)
	}

	return decodeSession(body, "keeper.sessions/"+s.profile)
}

// Write upserts the profile row with the serialized session.
func (s *PostgresStore) Write(ctx context.Context, sess *Session) error {
	body, err := encodeSession(sess)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO keeper.sessions (profile, body, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (profile) DO UPDATE
		SET body = EXCLUDED.body,
		    updated_at = EXCLUDED.updated_at
	`, s.profile, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}
