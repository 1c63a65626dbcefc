package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind distinguishes pages from articles in the unified content table.
// Both share identical lifecycle semantics; articles additionally carry a
// summary shown in listings and feeds.
type ContentKind string

const (
	ContentKindPage    ContentKind = "page"
	ContentKindArticle ContentKind = "article"
)

// Valid reports whether k is one of the known content kinds.
func (k ContentKind) Valid() bool {
	return k == ContentKindPage || k == ContentKindArticle
}

// ContentStatus represents the lifecycle state of a content item.
// Permanent deletion is not a status — a purged row simply no longer exists.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
	StatusScheduled ContentStatus = "scheduled"
	StatusTrashed   ContentStatus = "trashed"
)

// Valid reports whether s is one of the four known statuses.
func (s ContentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusTrashed:
		return true
	}
	return false
}

// Content represents a page or article. Pages and articles share the same
// table, differentiated by the Kind field.
type Content struct {
	ID           uuid.UUID     `json:"id"`
	Kind         ContentKind   `json:"kind"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Body         string        `json:"body"`
	Summary      *string       `json:"summary,omitempty"`
	Status       ContentStatus `json:"status"`
	PublishAt    *time.Time    `json:"publish_at,omitempty"`
	TrashedAt    *time.Time    `json:"trashed_at,omitempty"`
	CoverMediaID *uuid.UUID    `json:"cover_media_id,omitempty"`
	AuthorID     uuid.UUID     `json:"author_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsPublished returns true if the content item is in published status.
func (c *Content) IsPublished() bool {
	return c.Status == StatusPublished
}

// StatusChange describes the row-level effect of a lifecycle transition:
// the new status plus the publish_at and trashed_at values that must be
// written alongside it. A nil pointer clears the column.
type StatusChange struct {
	Status    ContentStatus
	PublishAt *time.Time
	TrashedAt *time.Time
}

// Revision is an immutable snapshot of a content item's editable fields,
// written in the same transaction as the save it documents. Revisions are
// never mutated or deleted while their content item exists.
type Revision struct {
	ID        uuid.UUID `json:"id"`
	ContentID uuid.UUID `json:"content_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Summary   *string   `json:"summary,omitempty"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentPage is one page of a content listing plus the total row count
// for the applied filter.
type ContentPage struct {
	Items   []Content `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}
