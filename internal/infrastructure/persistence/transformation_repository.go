package persistence

import (
	"context"
	"errors"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransformationRepository implements stock.TransformationRepository using GORM
type GormTransformationRepository struct {
	db *gorm.DB
}

// NewGormTransformationRepository creates a new GormTransformationRepository
func NewGormTransformationRepository(db *gorm.DB) *GormTransformationRepository {
	return &GormTransformationRepository{db: db}
}

// FindByID finds a transformation with its allocations by ID
func (r *GormTransformationRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Transformation, error) {
	var t stock.Transformation
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByEntity finds the transformations declared by an entity
func (r *GormTransformationRepository) FindByEntity(ctx context.Context, entityID uuid.UUID) ([]stock.Transformation, error) {
	var transformations []stock.Transformation
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Find(&transformations).Error; err != nil {
		return nil, err
	}
	return transformations, nil
}

// Save creates or updates a transformation and its allocations
func (r *GormTransformationRepository) Save(ctx context.Context, t *stock.Transformation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		for i := range t.Allocations {
			a := &t.Allocations[i]
			a.TransformationID = t.ID
			if err := tx.Save(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
