package settings

import (
	"context"
	"errors"

	"github.com/carbure/backend/internal/domain/settings"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// UpdateSettingsRequest patches an entity's display preferences; nil fields
// are left untouched
type UpdateSettingsRequest struct {
	PreferredUnit *string `json:"preferred_unit"`
	PageLimit     *int    `json:"page_limit"`
}

// SettingsResponse is the transport shape of an entity's preferences
type SettingsResponse struct {
	EntityID      uuid.UUID `json:"entity_id"`
	PreferredUnit string    `json:"preferred_unit"`
	PageLimit     int       `json:"page_limit"`
}

// Service handles per-entity display preferences. It also backs the browsing
// coordinator's page-limit persistence.
type Service struct {
	repo settings.Repository
}

// NewService creates a new settings Service
func NewService(repo settings.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns an entity's preferences, falling back to defaults when the
// entity never saved any
func (s *Service) Get(ctx context.Context, entityID uuid.UUID) (*SettingsResponse, error) {
	prefs, err := s.loadOrDefault(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return toResponse(prefs), nil
}

// Update patches and persists an entity's preferences
func (s *Service) Update(ctx context.Context, entityID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	prefs, err := s.loadOrDefault(ctx, entityID)
	if err != nil {
		return nil, err
	}

	if req.PreferredUnit != nil {
		unit, err := valueobject.ParseUnit(*req.PreferredUnit)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_UNIT", "Unknown display unit")
		}
		if err := prefs.SetPreferredUnit(unit); err != nil {
			return nil, err
		}
	}
	if req.PageLimit != nil {
		if err := prefs.SetPageLimit(*req.PageLimit); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, prefs); err != nil {
		return nil, err
	}
	return toResponse(prefs), nil
}

// SaveLimit persists the page size chosen during browsing. It satisfies the
// coordinator's LimitStore collaborator.
func (s *Service) SaveLimit(ctx context.Context, entityID uuid.UUID, limit int) error {
	prefs, err := s.loadOrDefault(ctx, entityID)
	if err != nil {
		return err
	}
	if err := prefs.SetPageLimit(limit); err != nil {
		return err
	}
	return s.repo.Save(ctx, prefs)
}

func (s *Service) loadOrDefault(ctx context.Context, entityID uuid.UUID) (*settings.EntitySettings, error) {
	prefs, err := s.repo.FindByEntity(ctx, entityID)
	if err == nil {
		return prefs, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return settings.NewEntitySettings(entityID)
	}
	return nil, err
}

func toResponse(prefs *settings.EntitySettings) *SettingsResponse {
	return &SettingsResponse{
		EntityID:      prefs.EntityID,
		PreferredUnit: string(prefs.PreferredUnit),
		PageLimit:     prefs.PageLimit,
	}
}
