package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/janvanerven/pawtal/internal/models"
)

// revisionColumns lists all columns for content_revisions SELECTs.
const revisionColumns = `id, content_id, title, body, summary, author_id, created_at`

// RevisionStore provides access to the append-only revision log. Revisions
// are only ever inserted; there is no update or delete path here.
type RevisionStore struct {
	q Querier
}

// NewRevisionStore creates a new RevisionStore backed by the given database.
func NewRevisionStore(db *sql.DB) *RevisionStore {
	return &RevisionStore{q: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *RevisionStore) WithTx(tx *sql.Tx) *RevisionStore {
	return &RevisionStore{q: tx}
}

// scanRevision scans a single content_revisions row.
func scanRevision(scanner interface{ Scan(...any) error }) (*models.Revision, error) {
	var r models.Revision
	err := scanner.Scan(
		&r.ID, &r.ContentID, &r.Title, &r.Body, &r.Summary,
		&r.AuthorID, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Append inserts a new revision and returns it with the generated ID.
// Callers run this inside the same transaction as the content write it
// documents, so both land or neither does.
func (s *RevisionStore) Append(ctx context.Context, rev *models.Revision) (*models.Revision, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO content_revisions (content_id, title, body, summary, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+revisionColumns,
		rev.ContentID, rev.Title, rev.Body, rev.Summary, rev.AuthorID,
	)
	created, err := scanRevision(row)
	if err != nil {
		return nil, fmt.Errorf("append revision: %w", err)
	}
	return created, nil
}

// ListByContentID returns all revisions for a content item, newest first.
// Ties on created_at are broken by id so the order is stable.
func (s *RevisionStore) ListByContentID(ctx context.Context, contentID uuid.UUID) ([]models.Revision, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+revisionColumns+`
		FROM content_revisions
		WHERE content_id = $1
		ORDER BY created_at DESC, id DESC
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []models.Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, *r)
	}
	return revisions, rows.Err()
}

// FindByID returns a single revision scoped to its content item. Returns
// nil if no such revision exists for that item.
func (s *RevisionStore) FindByID(ctx context.Context, contentID, revisionID uuid.UUID) (*models.Revision, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+revisionColumns+`
		FROM content_revisions
		WHERE id = $1 AND content_id = $2
	`, revisionID, contentID)
	r, err := scanRevision(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	return r, nil
}

// Count returns the number of revisions for a content item.
func (s *RevisionStore) Count(ctx context.Context, contentID uuid.UUID) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM content_revisions WHERE content_id = $1
	`, contentID).Scan(&count)
	return count, err
}
