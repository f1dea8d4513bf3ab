package settings

import (
	"context"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const DefaultPageLimit = 25

// EntitySettings stores per-company display preferences
type EntitySettings struct {
	shared.BaseEntity
	EntityID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	PreferredUnit valueobject.Unit `gorm:"type:varchar(8);not null;default:'l'"`
	PageLimit     int              `gorm:"not null;default:25"`
}

func NewEntitySettings(entityID uuid.UUID) (*EntitySettings, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity cannot be empty")
	}
	return &EntitySettings{
		BaseEntity:    shared.NewBaseEntity(),
		EntityID:      entityID,
		PreferredUnit: valueobject.UnitVolume,
		PageLimit:     DefaultPageLimit,
	}, nil
}

func (s *EntitySettings) SetPreferredUnit(u valueobject.Unit) error {
	if !u.IsValid() {
		return shared.NewDomainError("INVALID_UNIT", "Unknown display unit")
	}
	s.PreferredUnit = u
	s.Touch()
	return nil
}

func (s *EntitySettings) SetPageLimit(limit int) error {
	if limit <= 0 || limit > 500 {
		return shared.NewDomainError("INVALID_LIMIT", "Page limit must be between 1 and 500")
	}
	s.PageLimit = limit
	s.Touch()
	return nil
}

// Repository provides persistence for entity settings
type Repository interface {
	FindByEntity(ctx context.Context, entityID uuid.UUID) (*EntitySettings, error)
	Save(ctx context.Context, s *EntitySettings) error
}
