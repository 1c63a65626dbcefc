package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/janvanerven/pawtal/internal/models"
)

// DefaultSessionTTL is how long a login session lives before it expires.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStore manages login sessions in the database. Only the SHA-256
// hash of a token is stored; the raw token exists solely in the client's
// cookie. Expired rows stay in place until the scheduler prunes them.
type SessionStore struct {
	q Querier
}

// NewSessionStore creates a new SessionStore with the given database connection.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{q: db}
}

// hashToken returns the hex-encoded SHA-256 hash of a session token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create opens a new session for the user and returns the raw token for
// the cookie.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	token := uuid.NewString()

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, hashToken(token), time.Now().Add(ttl))
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Validate resolves a raw token to its user. Returns nil if the token is
// unknown or the session has expired; expired rows are left for the
// scheduler's cleanup sweep.
func (s *SessionStore) Validate(ctx context.Context, token string) (*models.User, error) {
	u := &models.User{}
	err := s.q.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password_hash, u.display_name, u.role, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.expires_at > NOW()
	`, hashToken(token)).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	return u, nil
}

// Delete ends a session by its raw token. Deleting an unknown token is not
// an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`, hashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired before now. Called from
// the scheduler so the sessions table stays lean.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
