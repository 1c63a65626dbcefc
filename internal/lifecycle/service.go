package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/janvanerven/pawtal/internal/models"
	"github.com/janvanerven/pawtal/internal/slug"
	"github.com/janvanerven/pawtal/internal/store"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Observer is notified after a content mutation has committed. External
// systems — the published-content cache, a search indexer — hook in here
// instead of relying on database triggers. Notifications run after commit,
// so an observer always sees the committed row.
type Observer interface {
	ContentChanged(ctx context.Context, c *models.Content, action string)
}

// ActionName identifies a lifecycle operation requested through SetStatus.
type ActionName string

const (
	ActionPublish  ActionName = "publish"
	ActionTrash    ActionName = "trash"
	ActionRestore  ActionName = "restore"
	ActionSchedule ActionName = "schedule"
)

// Action is a requested status change. PublishAt is required for
// ActionSchedule and ignored otherwise.
type Action struct {
	Name      ActionName
	PublishAt *time.Time
}

// CreateInput carries the fields for a new content item. Slug is derived
// from the title when empty; Status defaults to draft.
type CreateInput struct {
	Title        string
	Slug         string
	Body         string
	Summary      *string
	Status       models.ContentStatus
	PublishAt    *time.Time
	CoverMediaID *uuid.UUID
}

// UpdateInput is a partial update. Nil fields keep their current values.
type UpdateInput struct {
	Title        *string
	Slug         *string
	Body         *string
	Summary      *string
	Status       *models.ContentStatus
	PublishAt    *time.Time
	CoverMediaID *uuid.UUID
}

// Service is the lifecycle façade consumed by the HTTP layer. It composes
// the content store, revision log, and state machine inside transactions:
// every create or update writes the content row and exactly one revision
// atomically, then notifies the audit log and observers outside the
// transaction.
type Service struct {
	db        *sql.DB
	contents  *store.ContentStore
	revisions *store.RevisionStore
	audit     *store.AuditStore
	observers []Observer
}

// NewService creates the lifecycle service. Observers are optional.
func NewService(db *sql.DB, contents *store.ContentStore, revisions *store.RevisionStore, audit *store.AuditStore, observers ...Observer) *Service {
	return &Service{
		db:        db,
		contents:  contents,
		revisions: revisions,
		audit:     audit,
		observers: observers,
	}
}

// notify fans a committed change out to all observers.
func (s *Service) notify(ctx context.Context, c *models.Content, action string) {
	for _, o := range s.observers {
		o.ContentChanged(ctx, c, action)
	}
}

// Create inserts a new content item together with its initial revision.
func (s *Service) Create(ctx context.Context, kind models.ContentKind, input CreateInput, authorID uuid.UUID) (*models.Content, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Msg: "unknown content kind " + string(kind)}
	}
	if input.Title == "" {
		return nil, &ValidationError{Msg: "title is required"}
	}

	status := input.Status
	if status == "" {
		status = models.StatusDraft
	}
	change, err := InitialStatus(status, input.PublishAt, time.Now())
	if err != nil {
		return nil, err
	}

	itemSlug := input.Slug
	if itemSlug == "" {
		itemSlug = slug.Generate(input.Title)
	}
	if itemSlug == "" {
		return nil, &ValidationError{Msg: "cannot derive a slug from the title"}
	}
	if existing, err := s.contents.FindBySlugAny(ctx, kind, itemSlug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &ConflictError{Slug: itemSlug}
	}

	item := &models.Content{
		Kind:         kind,
		Title:        input.Title,
		Slug:         itemSlug,
		Body:         input.Body,
		Summary:      input.Summary,
		Status:       change.Status,
		PublishAt:    change.PublishAt,
		CoverMediaID: input.CoverMediaID,
		AuthorID:     authorID,
	}

	var created *models.Content
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.contents.WithTx(tx).Create(ctx, item)
		if errors.Is(err, store.ErrDuplicateSlug) {
			return &ConflictError{Slug: itemSlug}
		}
		if err != nil {
			return err
		}
		_, err = s.revisions.WithTx(tx).Append(ctx, &models.Revision{
			ContentID: created.ID,
			Title:     created.Title,
			Body:      created.Body,
			Summary:   created.Summary,
			AuthorID:  authorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, authorID, "create", string(kind), created.ID, map[string]any{
		"title": created.Title, "slug": created.Slug, "status": created.Status,
	})
	s.notify(ctx, created, "create")
	return created, nil
}

// Update applies a partial update to an existing item and appends one
// revision. A status change in the patch goes through the state machine
// and lands as a conditional write in the same transaction.
func (s *Service) Update(ctx context.Context, kind models.ContentKind, id uuid.UUID, input UpdateInput, authorID uuid.UUID) (*models.Content, error) {
	current, err := s.contents.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	merged := *current
	if input.Title != nil {
		merged.Title = *input.Title
	}
	if input.Body != nil {
		merged.Body = *input.Body
	}
	if input.Summary != nil {
		merged.Summary = input.Summary
	}
	if input.CoverMediaID != nil {
		merged.CoverMediaID = input.CoverMediaID
	}
	if merged.Title == "" {
		return nil, &ValidationError{Msg: "title is required"}
	}

	if input.Slug != nil && *input.Slug != current.Slug {
		merged.Slug = *input.Slug
		if merged.Slug == "" {
			return nil, &ValidationError{Msg: "slug cannot be empty"}
		}
		if existing, err := s.contents.FindBySlugAny(ctx, kind, merged.Slug); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != id {
			return nil, &ConflictError{Slug: merged.Slug}
		}
	}

	// A status in the patch is a transition request. Rescheduling a
	// scheduled item (new publish_at, same status) runs through the machine
	// too, so the future-date rule always applies.
	now := time.Now()
	var change *models.StatusChange
	var changeFrom []models.ContentStatus
	target := current.Status
	if input.Status != nil {
		target = *input.Status
	}
	publishAt := input.PublishAt
	if publishAt == nil {
		publishAt = current.PublishAt
	}
	if target != current.Status || (target == models.StatusScheduled && input.PublishAt != nil) {
		ch, from, err := Transition(current.Status, target, publishAt, now)
		if err != nil {
			return nil, err
		}
		change = &ch
		changeFrom = from
	}

	var updated *models.Content
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		contents := s.contents.WithTx(tx)
		if change != nil {
			ok, err := contents.UpdateStatus(ctx, kind, id, *change, changeFrom)
			if err != nil {
				return err
			}
			if !ok {
				// The row moved under us (scheduler promotion, concurrent
				// edit) or was purged. Re-read outside the machine's view
				// and report the real situation.
				return s.statusRaceError(ctx, kind, id, change.Status)
			}
		}

		var err error
		updated, err = contents.Update(ctx, &merged)
		if errors.Is(err, store.ErrDuplicateSlug) {
			return &ConflictError{Slug: merged.Slug}
		}
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrNotFound
		}

		_, err = s.revisions.WithTx(tx).Append(ctx, &models.Revision{
			ContentID: updated.ID,
			Title:     updated.Title,
			Body:      updated.Body,
			Summary:   updated.Summary,
			AuthorID:  authorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, authorID, "update", string(kind), updated.ID, map[string]any{
		"title": updated.Title, "slug": updated.Slug, "status": updated.Status,
	})
	s.notify(ctx, updated, "update")
	return updated, nil
}

// SetStatus applies a pure lifecycle action — publish, trash, restore, or
// schedule — without touching editable fields and without creating a
// revision. The write is conditional on the status the machine validated,
// so racing the scheduler is safe: whichever side commits first makes the
// other's predicate match zero rows.
func (s *Service) SetStatus(ctx context.Context, kind models.ContentKind, id uuid.UUID, action Action, authorID uuid.UUID) (*models.Content, error) {
	current, err := s.contents.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	target, err := action.target()
	if err != nil {
		return nil, err
	}

	change, from, err := Transition(current.Status, target, action.PublishAt, time.Now())
	if err != nil {
		return nil, err
	}

	ok, err := s.contents.UpdateStatus(ctx, kind, id, change, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := s.statusRaceError(ctx, kind, id, change.Status); err != nil {
			return nil, err
		}
	}

	updated, err := s.contents.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.audit.Log(ctx, authorID, string(action.Name), string(kind), updated.ID, map[string]any{
		"status": updated.Status,
	})
	s.notify(ctx, updated, string(action.Name))
	return updated, nil
}

// target maps an action to the status it requests.
func (a Action) target() (models.ContentStatus, error) {
	switch a.Name {
	case ActionPublish:
		return models.StatusPublished, nil
	case ActionTrash:
		return models.StatusTrashed, nil
	case ActionRestore:
		return models.StatusDraft, nil
	case ActionSchedule:
		return models.StatusScheduled, nil
	}
	return "", &ValidationError{Msg: "unknown action " + string(a.Name)}
}

// statusRaceError classifies a conditional status write that matched zero
// rows. If the row already holds the intended status the race was benign
// (the scheduler got there first) and no error is returned.
func (s *Service) statusRaceError(ctx context.Context, kind models.ContentKind, id uuid.UUID, intended models.ContentStatus) error {
	reread, err := s.contents.FindByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if reread == nil {
		return ErrNotFound
	}
	if reread.Status == intended {
		return nil
	}
	return &InvalidTransitionError{From: reread.Status, To: intended}
}

// Get returns a content item by id.
func (s *Service) Get(ctx context.Context, kind models.ContentKind, id uuid.UUID) (*models.Content, error) {
	c, err := s.contents.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// GetPublishedBySlug returns a published item by slug, for public reads.
func (s *Service) GetPublishedBySlug(ctx context.Context, kind models.ContentKind, itemSlug string) (*models.Content, error) {
	c, err := s.contents.FindPublishedBySlug(ctx, kind, itemSlug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns one page of content. A nil status filter excludes trashed
// items; pass models.StatusTrashed explicitly to browse the trash.
func (s *Service) List(ctx context.Context, kind models.ContentKind, status *models.ContentStatus, page, perPage int) (*models.ContentPage, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Msg: "unknown content kind " + string(kind)}
	}
	if status != nil && !status.Valid() {
		return nil, &ValidationError{Msg: "unknown status " + string(*status)}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	items, err := s.contents.ListByStatus(ctx, kind, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	total, err := s.contents.CountByStatus(ctx, kind, status)
	if err != nil {
		return nil, err
	}
	return &models.ContentPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// ListRevisions returns an item's revisions, newest first.
func (s *Service) ListRevisions(ctx context.Context, kind models.ContentKind, id uuid.UUID) ([]models.Revision, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return nil, err
	}
	return s.revisions.ListByContentID(ctx, id)
}

// RestoreRevision rewrites an item's editable fields from a historical
// snapshot. It is an ordinary update, so it appends a new revision rather
// than rewinding history.
func (s *Service) RestoreRevision(ctx context.Context, kind models.ContentKind, id, revisionID uuid.UUID, authorID uuid.UUID) (*models.Content, error) {
	rev, err := s.revisions.FindByID(ctx, id, revisionID)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, ErrNotFound
	}

	input := UpdateInput{
		Title:   &rev.Title,
		Body:    &rev.Body,
		Summary: rev.Summary,
	}
	return s.Update(ctx, kind, id, input, authorID)
}

// inTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
