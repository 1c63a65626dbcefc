// Package lifecycle implements the content lifecycle engine: the pure
// status state machine, the typed error taxonomy, and the Service façade
// that composes the stores inside transactions.
package lifecycle

import (
	"time"

	"github.com/janvanerven/pawtal/internal/models"
)

// Transition table:
//
//	draft     -> published, scheduled, trashed
//	published -> scheduled, trashed, published (idempotent publish)
//	scheduled -> published, scheduled (reschedule), trashed
//	trashed   -> draft (restore)
//
// Permanent deletion is not an edge here; it is the destruction of the row,
// performed only by the scheduler's purge sweep on trashed items.

// InitialStatus validates the status a new content item may be created in
// and returns the initial status fields. Items start as draft, published,
// or scheduled; nothing is born in the trash.
func InitialStatus(status models.ContentStatus, publishAt *time.Time, now time.Time) (models.StatusChange, error) {
	switch status {
	case models.StatusDraft, models.StatusPublished:
		return models.StatusChange{Status: status}, nil
	case models.StatusScheduled:
		if publishAt == nil {
			return models.StatusChange{}, &ValidationError{Msg: "scheduled content requires publish_at"}
		}
		if !publishAt.After(now) {
			return models.StatusChange{}, &ValidationError{Msg: "publish_at must be in the future"}
		}
		return models.StatusChange{Status: models.StatusScheduled, PublishAt: publishAt}, nil
	case models.StatusTrashed:
		return models.StatusChange{}, &ValidationError{Msg: "content cannot be created in the trash"}
	}
	return models.StatusChange{}, &ValidationError{Msg: "unknown status " + string(status)}
}

// Transition validates a requested status change against the current status
// and returns the StatusChange to write, together with the set of statuses
// the row must still be in when the write lands. Callers apply the change
// with a conditional update over that set, so a concurrent transition on the
// same row makes one of the writers affect zero rows instead of corrupting
// state.
func Transition(current, target models.ContentStatus, publishAt *time.Time, now time.Time) (models.StatusChange, []models.ContentStatus, error) {
	if !target.Valid() {
		return models.StatusChange{}, nil, &ValidationError{Msg: "unknown status " + string(target)}
	}

	switch target {
	case models.StatusPublished:
		// Publishing is idempotent: an already-published item republished is
		// a no-op success, because an interactive publish and a scheduler
		// promotion may race on the same row.
		switch current {
		case models.StatusDraft, models.StatusScheduled, models.StatusPublished:
			return models.StatusChange{Status: models.StatusPublished},
				[]models.ContentStatus{models.StatusDraft, models.StatusScheduled, models.StatusPublished},
				nil
		}

	case models.StatusScheduled:
		switch current {
		case models.StatusDraft, models.StatusPublished, models.StatusScheduled:
			if publishAt == nil {
				return models.StatusChange{}, nil, &ValidationError{Msg: "scheduled content requires publish_at"}
			}
			if !publishAt.After(now) {
				return models.StatusChange{}, nil, &ValidationError{Msg: "publish_at must be in the future"}
			}
			return models.StatusChange{Status: models.StatusScheduled, PublishAt: publishAt},
				[]models.ContentStatus{models.StatusDraft, models.StatusPublished, models.StatusScheduled},
				nil
		}

	case models.StatusTrashed:
		switch current {
		case models.StatusDraft, models.StatusPublished, models.StatusScheduled:
			// Trashing clears publish_at so a trashed item can never hold a
			// stale schedule; restore always lands in draft.
			trashedAt := now
			return models.StatusChange{Status: models.StatusTrashed, TrashedAt: &trashedAt},
				[]models.ContentStatus{models.StatusDraft, models.StatusPublished, models.StatusScheduled},
				nil
		}

	case models.StatusDraft:
		// Only restore reaches draft; demoting published or scheduled
		// content to draft is not an edge of the table.
		if current == models.StatusTrashed {
			return models.StatusChange{Status: models.StatusDraft},
				[]models.ContentStatus{models.StatusTrashed},
				nil
		}
	}

	return models.StatusChange{}, nil, &InvalidTransitionError{From: current, To: target}
}
