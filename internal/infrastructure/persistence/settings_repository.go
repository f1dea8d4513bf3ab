package persistence

import (
	"context"
	"errors"

	"github.com/carbure/backend/internal/domain/settings"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindByEntity finds the settings row of one entity
func (r *GormSettingsRepository) FindByEntity(ctx context.Context, entityID uuid.UUID) (*settings.EntitySettings, error) {
	var s settings.EntitySettings
	if err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Save creates or updates an entity's settings
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.EntitySettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}
