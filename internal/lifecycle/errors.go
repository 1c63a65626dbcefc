package lifecycle

import (
	"errors"
	"fmt"

	"github.com/janvanerven/pawtal/internal/models"
)

// ErrNotFound is returned when an operation targets a content item,
// revision, or user that does not exist or has already been purged.
var ErrNotFound = errors.New("not found")

// ConflictError is returned when a create or update would reuse a slug
// already taken by another non-purged item of the same kind.
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slug %q already in use", e.Slug)
}

// ValidationError is returned for malformed input. Validation always runs
// before any write, so a ValidationError implies nothing was persisted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// InvalidTransitionError is returned when a requested status change is not
// an edge of the lifecycle state machine.
type InvalidTransitionError struct {
	From models.ContentStatus
	To   models.ContentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition content from %q to %q", e.From, e.To)
}
