package incidence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
)

var ErrNotFound = errors.New("incidence not found")

// ConcurrentModificationError reports that the record was modified after the
// change-set was staged. The stale diff must not be applied; recovery is
// discard and re-upload.
type ConcurrentModificationError struct {
	IncidenceID int64
	StagedAt    time.Time
	ModifiedAt  time.Time
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf(
		"incidence %d modified at %s, after change-set was staged against state from %s",
		e.IncidenceID,
		e.ModifiedAt.UTC().Format(time.RFC3339),
		e.StagedAt.UTC().Format(time.RFC3339),
	)
}

type FindParams struct {
	Sector schemadef.Sector
	Limit  int
	Offset int
}

// ApplyParams carries one confirmed change-set to the store. IncidenceID 0
// creates a new record; otherwise the repository compares the row's
// last-modified timestamp against BaseUpdatedAt inside its transaction and
// fails with ConcurrentModificationError when the row moved on.
type ApplyParams struct {
	IncidenceID   int64
	Sector        schemadef.Sector
	SchemaID      string
	BaseUpdatedAt time.Time
	Changes       map[string]any
	StagedID      string
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (Incidence, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Incidence, int64, error)
	ApplyChanges(ctx context.Context, params ApplyParams) (Incidence, error)
}
