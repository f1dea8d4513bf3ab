package persistence

import (
	"context"
	"errors"

	"github.com/carbure/backend/internal/domain/declaration"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeclarationRepository implements declaration.Repository using GORM
type GormDeclarationRepository struct {
	db *gorm.DB
}

// NewGormDeclarationRepository creates a new GormDeclarationRepository
func NewGormDeclarationRepository(db *gorm.DB) *GormDeclarationRepository {
	return &GormDeclarationRepository{db: db}
}

// FindByPeriod finds the declaration row for one (entity, period)
func (r *GormDeclarationRepository) FindByPeriod(ctx context.Context, entityID uuid.UUID, period valueobject.Period) (*declaration.Declaration, error) {
	var d declaration.Declaration
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND period = ?", entityID, period).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByYear finds every declaration of an entity over a year
func (r *GormDeclarationRepository) FindByYear(ctx context.Context, entityID uuid.UUID, year int) ([]declaration.Declaration, error) {
	var declarations []declaration.Declaration
	if err := r.db.WithContext(ctx).
		Where("entity_id = ? AND period BETWEEN ? AND ?", entityID, year*100+1, year*100+12).
		Order("period ASC").
		Find(&declarations).Error; err != nil {
		return nil, err
	}
	return declarations, nil
}

// Save creates or updates a declaration
func (r *GormDeclarationRepository) Save(ctx context.Context, d *declaration.Declaration) error {
	return r.db.WithContext(ctx).Save(d).Error
}
