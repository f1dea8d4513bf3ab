package declaration

import (
	"context"
	"errors"
	"time"

	"github.com/carbure/backend/internal/domain/declaration"
	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryResponse reports the state of one declaration period
type SummaryResponse struct {
	Period          int        `json:"period"`
	DraftCount      int64      `json:"draft_count"`
	InCount         int64      `json:"in_count"`
	OutCount        int64      `json:"out_count"`
	CorrectionCount int64      `json:"correction_count"`
	PendingCount    int64      `json:"pending_count"`
	Declared        bool       `json:"declared"`
	DeclaredAt      *time.Time `json:"declared_at,omitempty"`
}

// Service handles the monthly declaration roll-up: summary, validation
// (which freezes the period's lots) and invalidation (which un-freezes them)
type Service struct {
	declarationRepo declaration.Repository
	lotRepo         lot.Repository
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewService creates a new declaration Service
func NewService(declarationRepo declaration.Repository, lotRepo lot.Repository, logger *zap.Logger) *Service {
	return &Service{
		declarationRepo: declarationRepo,
		lotRepo:         lotRepo,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetSummary refreshes and returns the roll-up for one (entity, period)
func (s *Service) GetSummary(ctx context.Context, entityID uuid.UUID, periodValue int) (*SummaryResponse, error) {
	period := valueobject.Period(periodValue)
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be a valid YYYYMM value")
	}

	d, err := s.loadOrCreate(ctx, entityID, period)
	if err != nil {
		return nil, err
	}
	if err := s.refreshCounts(ctx, d); err != nil {
		return nil, err
	}
	if err := s.declarationRepo.Save(ctx, d); err != nil {
		return nil, err
	}
	return toSummaryResponse(d), nil
}

// ListYear returns every declaration of an entity over one year
func (s *Service) ListYear(ctx context.Context, entityID uuid.UUID, year int) ([]SummaryResponse, error) {
	declarations, err := s.declarationRepo.FindByYear(ctx, entityID, year)
	if err != nil {
		return nil, err
	}
	out := make([]SummaryResponse, 0, len(declarations))
	for i := range declarations {
		out = append(out, *toSummaryResponse(&declarations[i]))
	}
	return out, nil
}

// Validate closes a period: refused while any lot still awaits a decision,
// otherwise every Pending/Accepted lot in scope is frozen
func (s *Service) Validate(ctx context.Context, entityID uuid.UUID, periodValue int) (*SummaryResponse, []view.Scope, error) {
	period := valueobject.Period(periodValue)
	if !period.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_PERIOD", "Period must be a valid YYYYMM value")
	}

	d, err := s.loadOrCreate(ctx, entityID, period)
	if err != nil {
		return nil, nil, err
	}
	if err := s.refreshCounts(ctx, d); err != nil {
		return nil, nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}

	lots, err := s.lotRepo.FindByPeriod(ctx, entityID, period)
	if err != nil {
		return nil, nil, err
	}
	frozen := make([]*lot.Lot, 0, len(lots))
	for i := range lots {
		l := &lots[i]
		if l.Status != lot.StatusPending && l.Status != lot.StatusAccepted {
			continue
		}
		if err := l.Freeze(); err != nil {
			return nil, nil, err
		}
		frozen = append(frozen, l)
	}
	if len(frozen) > 0 {
		if err := s.lotRepo.SaveAll(ctx, frozen); err != nil {
			return nil, nil, err
		}
	}
	if err := s.declarationRepo.Save(ctx, d); err != nil {
		return nil, nil, err
	}
	s.publishLotEvents(ctx, frozen)

	s.logger.Info("declared period",
		zap.String("entity_id", entityID.String()),
		zap.Int("period", periodValue),
		zap.Int("frozen_lots", len(frozen)),
	)
	return toSummaryResponse(d), scopesForPeriod(entityID, period), nil
}

// Invalidate reopens a declared period and un-freezes its lots. The
// administrative authorization is decided by the caller.
func (s *Service) Invalidate(ctx context.Context, entityID uuid.UUID, periodValue int) (*SummaryResponse, []view.Scope, error) {
	period := valueobject.Period(periodValue)
	if !period.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_PERIOD", "Period must be a valid YYYYMM value")
	}

	d, err := s.declarationRepo.FindByPeriod(ctx, entityID, period)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Invalidate(); err != nil {
		return nil, nil, err
	}

	lots, err := s.lotRepo.FindByPeriod(ctx, entityID, period)
	if err != nil {
		return nil, nil, err
	}
	thawed := make([]*lot.Lot, 0, len(lots))
	for i := range lots {
		l := &lots[i]
		if l.Status != lot.StatusFrozen {
			continue
		}
		if err := l.Unfreeze(); err != nil {
			return nil, nil, err
		}
		thawed = append(thawed, l)
	}
	if len(thawed) > 0 {
		if err := s.lotRepo.SaveAll(ctx, thawed); err != nil {
			return nil, nil, err
		}
	}
	if err := s.declarationRepo.Save(ctx, d); err != nil {
		return nil, nil, err
	}
	s.publishLotEvents(ctx, thawed)

	return toSummaryResponse(d), scopesForPeriod(entityID, period), nil
}

// ==================== helpers ====================

func (s *Service) loadOrCreate(ctx context.Context, entityID uuid.UUID, period valueobject.Period) (*declaration.Declaration, error) {
	d, err := s.declarationRepo.FindByPeriod(ctx, entityID, period)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return declaration.NewDeclaration(entityID, period)
}

// refreshCounts recomputes the roll-up from the period's lots
func (s *Service) refreshCounts(ctx context.Context, d *declaration.Declaration) error {
	lots, err := s.lotRepo.FindByPeriod(ctx, d.EntityID, d.Period)
	if err != nil {
		return err
	}

	var drafts, in, out, correction int64
	for i := range lots {
		l := &lots[i]
		switch {
		case l.IsDraft():
			drafts++
		case l.Client.EntityID != nil && *l.Client.EntityID == d.EntityID:
			in++
		default:
			out++
		}
		if l.CorrectionStatus == lot.CorrectionInCorrection {
			correction++
		}
	}

	pending, err := s.lotRepo.CountPendingByPeriod(ctx, d.EntityID, d.Period)
	if err != nil {
		return err
	}
	d.UpdateCounts(drafts, in, out, correction, pending)
	return nil
}

func (s *Service) publishLotEvents(ctx context.Context, lots []*lot.Lot) {
	if s.eventPublisher == nil {
		return
	}
	for _, l := range lots {
		for _, event := range l.GetDomainEvents() {
			_ = s.eventPublisher.Publish(ctx, event)
		}
		l.ClearDomainEvents()
	}
}

func scopesForPeriod(entityID uuid.UUID, period valueobject.Period) []view.Scope {
	year := period.Year()
	return []view.Scope{
		{EntityID: entityID, Year: year, Status: view.StatusDrafts},
		{EntityID: entityID, Year: year, Status: view.StatusIn},
		{EntityID: entityID, Year: year, Status: view.StatusStocks},
		{EntityID: entityID, Year: year, Status: view.StatusOut},
	}
}

func toSummaryResponse(d *declaration.Declaration) *SummaryResponse {
	return &SummaryResponse{
		Period:          int(d.Period),
		DraftCount:      d.DraftCount,
		InCount:         d.InCount,
		OutCount:        d.OutCount,
		CorrectionCount: d.CorrectionCount,
		PendingCount:    d.PendingCount,
		Declared:        d.Declared,
		DeclaredAt:      d.DeclaredAt,
	}
}
