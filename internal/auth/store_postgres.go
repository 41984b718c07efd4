// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresSessionStore persists sessions in a PostgreSQL table, shared across
// API replicas.
//
// Expected schema:
//
//	CREATE TABLE sessions (
//	    id          BYTEA PRIMARY KEY,
//	    user_id     BIGINT NOT NULL,
//	    permissions BIGINT NOT NULL,
//	    expires_on  TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX sessions_user_id_idx ON sessions (user_id);
type PostgresSessionStore struct {
	db *sql.DB
}

// NewPostgresSessionStore wraps an opened database handle as a session store.
func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// OpenPostgresSessionStore connects to the given DSN and verifies the
// connection before returning a store.
func OpenPostgresSessionStore(ctx context.Context, dsn string) (*PostgresSessionStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresSessionStore(db), nil
}

// Create implements SessionStore. Permission bits are stored as the signed
// 64-bit reinterpretation since postgres has no unsigned BIGINT.
func (s *PostgresSessionStore) Create(ctx context.Context, userID uint64, permissions Permissions, ttl time.Duration) (SessionID, error) {
	id, err := NewSessionID()
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}

	const query = `
		INSERT INTO sessions (id, user_id, permissions, expires_on)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		id.Bytes(), int64(userID), int64(permissions), time.Now().Add(ttl))
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}
	if affected == 0 {
		return SessionID{}, ErrSessionIDCollision
	}
	return id, nil
}

// Load implements SessionStore.
func (s *PostgresSessionStore) Load(ctx context.Context, id SessionID) (*SessionData, error) {
	const query = `SELECT user_id, permissions, expires_on FROM sessions WHERE id = $1`

	var (
		userID      int64
		permissions int64
		expiresOn   time.Time
	)
	err := s.db.QueryRowContext(ctx, query, id.Bytes()).Scan(&userID, &permissions, &expiresOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, newStoreError("load", err)
	}

	return &SessionData{
		UserID:      uint64(userID),
		Permissions: Permissions(permissions),
		ExpiresOn:   expiresOn,
	}, nil
}

// Refresh implements SessionStore.
func (s *PostgresSessionStore) Refresh(ctx context.Context, id SessionID, expiresOn time.Time) error {
	const query = `UPDATE sessions SET expires_on = $2 WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id.Bytes(), expiresOn)
	if err != nil {
		return newStoreError("refresh", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return newStoreError("refresh", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Revoke implements SessionStore.
func (s *PostgresSessionStore) Revoke(ctx context.Context, id SessionID) error {
	const query = `DELETE FROM sessions WHERE id = $1`

	if _, err := s.db.ExecContext(ctx, query, id.Bytes()); err != nil {
		return newStoreError("revoke", err)
	}
	return nil
}

// RevokeAll implements SessionStore.
func (s *PostgresSessionStore) RevokeAll(ctx context.Context, userID uint64) (int, error) {
	const query = `DELETE FROM sessions WHERE user_id = $1`

	res, err := s.db.ExecContext(ctx, query, int64(userID))
	if err != nil {
		return 0, newStoreError("revoke_all", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, newStoreError("revoke_all", err)
	}
	return int(affected), nil
}

// CleanupExpired implements SessionStore.
func (s *PostgresSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	const query = `DELETE FROM sessions WHERE expires_on <= NOW()`

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, newStoreError("cleanup", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, newStoreError("cleanup", err)
	}
	return int(affected), nil
}

// Close implements SessionStore.
func (s *PostgresSessionStore) Close() error {
	return s.db.Close()
}
