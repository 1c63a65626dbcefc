// audit.go records every significant content action to the audit_log table
// for accountability and debugging. Writes are fire-and-forget: losing an
// audit entry is bad, but it must never roll back the user-visible
// operation that triggered it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditStore handles audit log operations.
type AuditStore struct {
	q Querier
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{q: db}
}

// AuditEntry is a single recorded action.
type AuditEntry struct {
	ID         int64           `json:"id"`
	ActorID    uuid.UUID       `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Log records one action. Failures are logged and swallowed.
func (s *AuditStore) Log(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]any) {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO audit_log (actor_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`, actorID, action, entityType, entityID, payload)
	if err != nil {
		slog.Warn("failed to write audit entry",
			"actor_id", actorID,
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
		return
	}
	slog.Debug("audit entry recorded",
		"actor_id", actorID,
		"action", action,
		"entity_type", entityType,
		"entity_id", entityID,
	)
}

// Recent returns the most recent audit entries, newest first, limited to
// the given count.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, actor_id, action, entity_type, entity_id, details, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
