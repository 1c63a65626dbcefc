package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/janvanerven/pawtal/internal/models"
)

// ErrDuplicateSlug is returned when an insert or update would violate the
// per-kind slug uniqueness constraint.
var ErrDuplicateSlug = errors.New("slug already in use")

// contentColumns lists all columns for content SELECTs.
const contentColumns = `id, kind, title, slug, body, summary, status,
	publish_at, trashed_at, cover_media_id, author_id, created_at, updated_at`

// ContentStore handles all content-related database operations. It serves
// both pages and articles through the unified content table.
type ContentStore struct {
	q Querier
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{q: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *ContentStore) WithTx(tx *sql.Tx) *ContentStore {
	return &ContentStore{q: tx}
}

// scanContent scans a single content row.
func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	err := scanner.Scan(
		&c.ID, &c.Kind, &c.Title, &c.Slug, &c.Body, &c.Summary, &c.Status,
		&c.PublishAt, &c.TrashedAt, &c.CoverMediaID, &c.AuthorID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// isUniqueViolation reports whether err is a violation of the slug
// uniqueness constraint.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new content item and returns it with generated fields.
// Returns ErrDuplicateSlug when the slug is taken by another item of the
// same kind.
func (s *ContentStore) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO content (kind, title, slug, body, summary, status,
		                     publish_at, trashed_at, cover_media_id, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+contentColumns,
		c.Kind, c.Title, c.Slug, c.Body, c.Summary, c.Status,
		c.PublishAt, c.TrashedAt, c.CoverMediaID, c.AuthorID,
	)
	created, err := scanContent(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return created, nil
}

// Update modifies an existing content item's editable fields and bumps
// updated_at. Status, publish_at, and trashed_at are deliberately not
// written here — they move only through UpdateStatus and the scheduler
// sweeps, so an edit can never clobber a concurrent transition. Returns
// nil if the item no longer exists, and ErrDuplicateSlug on a slug
// collision.
func (s *ContentStore) Update(ctx context.Context, c *models.Content) (*models.Content, error) {
	row := s.q.QueryRowContext(ctx, `
		UPDATE content SET
			title = $1, slug = $2, body = $3, summary = $4,
			cover_media_id = $5, updated_at = NOW()
		WHERE id = $6 AND kind = $7
		RETURNING `+contentColumns,
		c.Title, c.Slug, c.Body, c.Summary,
		c.CoverMediaID, c.ID, c.Kind,
	)
	updated, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return updated, nil
}

// FindByID retrieves a content item by kind and id. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.Content, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content WHERE id = $1 AND kind = $2
	`, id, kind)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// FindPublishedBySlug retrieves a published content item by its slug.
// Used for public rendering — drafts, scheduled, and trashed items are
// invisible here.
func (s *ContentStore) FindPublishedBySlug(ctx context.Context, kind models.ContentKind, slug string) (*models.Content, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+contentColumns+`
		FROM content WHERE kind = $1 AND slug = $2 AND status = 'published'
	`, kind, slug)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// FindBySlugAny retrieves an item by slug regardless of status. Used for
// slug pre-checks so conflicts surface before any write.
func (s *ContentStore) FindBySlugAny(ctx context.Context, kind models.ContentKind, slug string) (*models.Content, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content WHERE kind = $1 AND slug = $2
	`, kind, slug)
	c, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// ListByStatus returns one page of content of the given kind ordered by
// updated_at descending, ties broken by id for a stable order. A nil status
// filter returns everything except trashed items, matching the default
// admin view.
func (s *ContentStore) ListByStatus(ctx context.Context, kind models.ContentKind, status *models.ContentStatus, limit, offset int) ([]models.Content, error) {
	var rows *sql.Rows
	var err error
	if status != nil {
		rows, err = s.q.QueryContext(ctx, `
			SELECT `+contentColumns+`
			FROM content
			WHERE kind = $1 AND status = $2
			ORDER BY updated_at DESC, id
			LIMIT $3 OFFSET $4
		`, kind, *status, limit, offset)
	} else {
		rows, err = s.q.QueryContext(ctx, `
			SELECT `+contentColumns+`
			FROM content
			WHERE kind = $1 AND status != 'trashed'
			ORDER BY updated_at DESC, id
			LIMIT $2 OFFSET $3
		`, kind, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// CountByStatus returns the number of rows the matching ListByStatus call
// would page over.
func (s *ContentStore) CountByStatus(ctx context.Context, kind models.ContentKind, status *models.ContentStatus) (int, error) {
	var count int
	var err error
	if status != nil {
		err = s.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM content WHERE kind = $1 AND status = $2`,
			kind, *status).Scan(&count)
	} else {
		err = s.q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM content WHERE kind = $1 AND status != 'trashed'`,
			kind).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return count, nil
}

// UpdateStatus conditionally applies a status change: the row is updated
// only if it still holds one of the expected statuses at write time. This
// is the single atomic statement that makes interactive transitions safe
// against the scheduler (and against each other) without locks. Returns
// false when zero rows matched.
func (s *ContentStore) UpdateStatus(ctx context.Context, kind models.ContentKind, id uuid.UUID, change models.StatusChange, from []models.ContentStatus) (bool, error) {
	args := []any{change.Status, change.PublishAt, change.TrashedAt, id, kind}
	placeholders := make([]string, len(from))
	for i, st := range from {
		args = append(args, st)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE content SET
			status = $1, publish_at = $2, trashed_at = $3, updated_at = NOW()
		WHERE id = $4 AND kind = $5 AND status IN (`+strings.Join(placeholders, ", ")+`)
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update content status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update content status: %w", err)
	}
	return n > 0, nil
}

// PublishDue promotes every scheduled item of the given kind whose
// publish_at has passed. A single conditional statement with no
// read-then-write window: a row published concurrently no longer matches
// the predicate and is simply skipped. Returns the number of rows promoted.
func (s *ContentStore) PublishDue(ctx context.Context, kind models.ContentKind, now time.Time) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE content
		SET status = 'published', publish_at = NULL, updated_at = $2
		WHERE kind = $1 AND status = 'scheduled' AND publish_at <= $2
	`, kind, now)
	if err != nil {
		return 0, fmt.Errorf("publish due content: %w", err)
	}
	return res.RowsAffected()
}

// PurgeTrashed permanently deletes every trashed item of the given kind
// whose trashed_at is before the cutoff. Revisions go with the row via the
// foreign key cascade. Returns the number of rows destroyed.
func (s *ContentStore) PurgeTrashed(ctx context.Context, kind models.ContentKind, cutoff time.Time) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		DELETE FROM content
		WHERE kind = $1 AND status = 'trashed' AND trashed_at < $2
	`, kind, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge trashed content: %w", err)
	}
	return res.RowsAffected()
}
