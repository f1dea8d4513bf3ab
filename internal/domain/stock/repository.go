package stock

import (
	"context"

	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
)

// ListPage is the listing shape for stocks, analogous to the lot listing:
// the page of rows, the ids of the full scope and the scope total.
type ListPage struct {
	Stocks   []Stock
	IDs      []uuid.UUID
	Returned int64
	Total    int64
}

// Repository defines the interface for stock persistence
type Repository interface {
	// FindByID finds a stock by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)

	// FindByIDs finds all stocks matching the given ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Stock, error)

	// FindByParentLot finds the stocks derived from a lot
	FindByParentLot(ctx context.Context, lotID uuid.UUID) ([]Stock, error)

	// List runs a scoped listing query
	List(ctx context.Context, query view.Query) (*ListPage, error)

	// Save creates or updates a stock
	Save(ctx context.Context, s *Stock) error

	// SaveAll persists a batch of stocks atomically
	SaveAll(ctx context.Context, stocks []*Stock) error

	// Delete removes a stock position
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransformationRepository defines the interface for transformation persistence
type TransformationRepository interface {
	// FindByID finds a transformation (with its allocations) by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transformation, error)

	// FindByEntity finds the transformations declared by an entity
	FindByEntity(ctx context.Context, entityID uuid.UUID) ([]Transformation, error)

	// Save creates or updates a transformation and its allocations
	Save(ctx context.Context, t *Transformation) error
}
