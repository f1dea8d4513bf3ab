package declaration

import (
	"context"

	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Repository defines the interface for declaration persistence
type Repository interface {
	// FindByPeriod finds the declaration row for one (entity, period)
	FindByPeriod(ctx context.Context, entityID uuid.UUID, period valueobject.Period) (*Declaration, error)

	// FindByYear finds every declaration of an entity over a year
	FindByYear(ctx context.Context, entityID uuid.UUID, year int) ([]Declaration, error)

	// Save creates or updates a declaration
	Save(ctx context.Context, d *Declaration) error
}
