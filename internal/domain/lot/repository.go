package lot

import (
	"context"

	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
)

// ListPage is the shape every listing call returns: the page of rows, the ids
// of the whole matching scope, the total, and the error/deadline counters
// shown on the listing chrome.
type ListPage struct {
	Lots          []Lot
	IDs           []uuid.UUID
	Total         int64
	ErrorsByLot   map[uuid.UUID][]DataError
	TotalErrors   int64
	TotalDeadline int64
}

// Repository defines the interface for lot persistence
type Repository interface {
	// FindByID finds a lot by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByIDs finds all lots matching the given ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Lot, error)

	// FindByParentTransformation finds the output lots of a transformation
	FindByParentTransformation(ctx context.Context, transformationID uuid.UUID) ([]Lot, error)

	// FindByPeriod finds every lot of an entity inside one declaration period
	FindByPeriod(ctx context.Context, entityID uuid.UUID, period valueobject.Period) ([]Lot, error)

	// List runs a scoped listing query and returns the page plus counters
	List(ctx context.Context, query view.Query) (*ListPage, error)

	// Snapshot computes the per-status/category counts for one entity and year
	Snapshot(ctx context.Context, entityID uuid.UUID, year int) (*view.Snapshot, error)

	// CountChildren counts the lots that reference this lot as their parent
	CountChildren(ctx context.Context, lotID uuid.UUID) (int64, error)

	// CountPendingByPeriod counts the not-yet-resolved lots gating a declaration
	CountPendingByPeriod(ctx context.Context, entityID uuid.UUID, period valueobject.Period) (int64, error)

	// ErrorsForLots loads the data errors attached to the given lots
	ErrorsForLots(ctx context.Context, lotIDs []uuid.UUID) (map[uuid.UUID][]DataError, error)

	// Save creates or updates a lot
	Save(ctx context.Context, l *Lot) error

	// SaveAll persists a batch of lots atomically; either every lot is saved
	// or none is
	SaveAll(ctx context.Context, lots []*Lot) error

	// Delete removes a lot row (the lifecycle Deleted status is the logical
	// deletion; physical removal only happens for drafts)
	Delete(ctx context.Context, id uuid.UUID) error
}
