package stock

import (
	"context"

	applot "github.com/carbure/backend/internal/application/lot"
	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ETBEBiofuelCode identifies the derived product of an ethanol transformation
const ETBEBiofuelCode = "ETBE"

// Service handles custody-position operations: splits, flushes and ETBE
// transformations
type Service struct {
	stockRepo          stock.Repository
	transformationRepo stock.TransformationRepository
	lotRepo            lot.Repository
	eventPublisher     shared.EventPublisher
}

// NewService creates a new stock Service
func NewService(stockRepo stock.Repository, transformationRepo stock.TransformationRepository, lotRepo lot.Repository) *Service {
	return &Service{
		stockRepo:          stockRepo,
		transformationRepo: transformationRepo,
		lotRepo:            lotRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves one stock
func (s *Service) GetByID(ctx context.Context, stockID uuid.UUID) (*StockResponse, error) {
	position, err := s.stockRepo.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	response := ToStockResponse(position)
	return &response, nil
}

// List runs a scoped listing query
func (s *Service) List(ctx context.Context, query view.Query) (*ListResponse, error) {
	page, err := s.stockRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return ToListResponse(page), nil
}

// Split carves an explicit volume out of a position into a new draft lot.
// The weight and energy remainders shrink proportionally; the child inherits
// the sustainability data of the stock's parent lot.
func (s *Service) Split(ctx context.Context, entityID uuid.UUID, req SplitStockRequest) (*applot.LotResponse, []view.Scope, error) {
	position, err := s.findOwned(ctx, entityID, req.StockID)
	if err != nil {
		return nil, nil, err
	}
	parent, err := s.lotRepo.FindByID(ctx, position.ParentLotID)
	if err != nil {
		return nil, nil, err
	}

	consumed, err := position.Consume(req.Volume)
	if err != nil {
		return nil, nil, err
	}

	child, err := s.newChildLot(entityID, parent, position, valueobject.Period(req.Period), consumed, nil)
	if err != nil {
		return nil, nil, err
	}
	if req.Client.EntityID != nil || req.Client.Name != "" {
		client := toParty(req.Client)
		if err := child.SetParties(parent.Producer, lot.KnownParty(entityID), client); err != nil {
			return nil, nil, err
		}
	}
	if req.DeliverySite.SiteID != nil || req.DeliverySite.Name != "" {
		if err := child.SetSites(parent.ProductionSite, toSite(req.DeliverySite)); err != nil {
			return nil, nil, err
		}
	}

	position.AddDomainEvent(stock.NewStockSplitEvent(position, child.ID, req.Volume))

	if err := s.lotRepo.Save(ctx, child); err != nil {
		return nil, nil, err
	}
	if err := s.stockRepo.Save(ctx, position); err != nil {
		return nil, nil, err
	}
	s.publishStockEvents(ctx, position)
	s.publishLotEvents(ctx, child)

	response := applot.ToLotResponse(child)
	return &response, scopesFor(entityID, child.Year), nil
}

// Flush empties a position irreversibly. Flushing an already empty position
// is a no-op, reported as such.
func (s *Service) Flush(ctx context.Context, entityID uuid.UUID, req FlushStockRequest) (alreadyEmpty bool, scopes []view.Scope, err error) {
	position, err := s.findOwned(ctx, entityID, req.StockID)
	if err != nil {
		return false, nil, err
	}

	alreadyEmpty = position.Flush(req.Comment)
	if alreadyEmpty {
		return true, nil, nil
	}

	if err := s.stockRepo.Save(ctx, position); err != nil {
		return false, nil, err
	}
	s.publishStockEvents(ctx, position)
	return false, scopesFor(entityID, position.CreatedAt.Year()), nil
}

// Transform submits an ethanol-to-ETBE transformation: the allocated ethanol
// is drawn from the source stocks and one derived ETBE draft lot is produced
// per allocation, carrying its proportional share of the declared totals.
func (s *Service) Transform(ctx context.Context, entityID uuid.UUID, req TransformETBERequest) (*TransformationResponse, []view.Scope, error) {
	allocations := make(map[uuid.UUID]decimal.Decimal, len(req.Allocations))
	for _, a := range req.Allocations {
		allocations[a.StockID] = allocations[a.StockID].Add(a.Volume)
	}

	t, err := stock.NewTransformation(entityID, req.VolumeETBE, req.VolumeEthanol, req.VolumeDenaturant, allocations)
	if err != nil {
		return nil, nil, err
	}

	positions, err := s.loadOwnedStocks(ctx, entityID, t.Allocations)
	if err != nil {
		return nil, nil, err
	}

	remaining := make(map[uuid.UUID]decimal.Decimal, len(positions))
	for id, position := range positions {
		remaining[id] = position.Remaining.Volume
	}
	if err := t.Validate(remaining); err != nil {
		return nil, nil, err
	}

	period := valueobject.Period(req.Period)
	outputs := make([]*lot.Lot, 0, len(t.Allocations))
	touched := make([]*stock.Stock, 0, len(positions))
	for _, a := range t.Allocations {
		position := positions[a.StockID]
		consumed, err := position.Consume(a.Volume)
		if err != nil {
			return nil, nil, err
		}

		share := t.ShareOf(a)
		quantity := shareQuantity(consumed, share.ETBE)
		parent, err := s.lotRepo.FindByID(ctx, position.ParentLotID)
		if err != nil {
			return nil, nil, err
		}
		child, err := s.newChildLot(entityID, parent, position, period, quantity, &t.ID)
		if err != nil {
			return nil, nil, err
		}
		child.BiofuelCode = ETBEBiofuelCode
		outputs = append(outputs, child)
		touched = append(touched, position)
	}

	t.AddDomainEvent(stock.NewTransformationSubmittedEvent(t))

	if err := s.transformationRepo.Save(ctx, t); err != nil {
		return nil, nil, err
	}
	if err := s.stockRepo.SaveAll(ctx, touched); err != nil {
		return nil, nil, err
	}
	if err := s.lotRepo.SaveAll(ctx, outputs); err != nil {
		return nil, nil, err
	}

	for _, position := range touched {
		s.publishStockEvents(ctx, position)
	}
	for _, child := range outputs {
		s.publishLotEvents(ctx, child)
	}
	s.publishTransformationEvents(ctx, t)

	outputIDs := make([]uuid.UUID, 0, len(outputs))
	for _, child := range outputs {
		outputIDs = append(outputIDs, child.ID)
	}
	response := ToTransformationResponse(t, outputIDs)
	return &response, scopesFor(entityID, period.Year()), nil
}

// CancelTransformation reverts a transformation: the consumed remainders go
// back to their source stocks and the derived output lots are removed. A
// transformation whose outputs were consumed further cannot be cancelled.
func (s *Service) CancelTransformation(ctx context.Context, entityID, transformationID uuid.UUID) ([]view.Scope, error) {
	t, err := s.transformationRepo.FindByID(ctx, transformationID)
	if err != nil {
		return nil, err
	}
	if t.EntityID != entityID {
		return nil, shared.ErrNotFound
	}

	outputs, err := s.lotRepo.FindByParentTransformation(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	for i := range outputs {
		child := &outputs[i]
		if !child.IsDraft() && !child.IsPending() {
			return nil, shared.ErrChildrenInUse
		}
		children, err := s.lotRepo.CountChildren(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		if children > 0 {
			return nil, shared.ErrChildrenInUse
		}
	}

	if err := t.Cancel(); err != nil {
		return nil, err
	}

	restored := make([]*stock.Stock, 0, len(t.Allocations))
	for _, a := range t.Allocations {
		position, err := s.stockRepo.FindByID(ctx, a.StockID)
		if err != nil {
			return nil, err
		}
		if err := position.Restore(restoreQuantity(position, a.Volume)); err != nil {
			return nil, err
		}
		restored = append(restored, position)
	}

	for i := range outputs {
		if err := s.lotRepo.Delete(ctx, outputs[i].ID); err != nil {
			return nil, err
		}
	}
	if err := s.stockRepo.SaveAll(ctx, restored); err != nil {
		return nil, err
	}

	t.AddDomainEvent(stock.NewTransformationCancelledEvent(t))
	if err := s.transformationRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	s.publishTransformationEvents(ctx, t)

	year := t.CreatedAt.Year()
	return scopesFor(entityID, year), nil
}

// ==================== helpers ====================

func (s *Service) findOwned(ctx context.Context, entityID, stockID uuid.UUID) (*stock.Stock, error) {
	position, err := s.stockRepo.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if position.EntityID != entityID {
		return nil, shared.ErrNotFound
	}
	return position, nil
}

func (s *Service) loadOwnedStocks(ctx context.Context, entityID uuid.UUID, allocations []stock.Allocation) (map[uuid.UUID]*stock.Stock, error) {
	ids := make([]uuid.UUID, 0, len(allocations))
	for _, a := range allocations {
		ids = append(ids, a.StockID)
	}
	found, err := s.stockRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, shared.ErrNotFound
	}
	out := make(map[uuid.UUID]*stock.Stock, len(found))
	for i := range found {
		position := &found[i]
		if position.EntityID != entityID {
			return nil, shared.ErrNotFound
		}
		out[position.ID] = position
	}
	return out, nil
}

// newChildLot opens the draft produced by a split or a transformation,
// inheriting the sustainability data of the stock's parent lot
func (s *Service) newChildLot(entityID uuid.UUID, parent *lot.Lot, position *stock.Stock, period valueobject.Period, quantity valueobject.QuantityVector, transformationID *uuid.UUID) (*lot.Lot, error) {
	child, err := lot.NewLot(
		entityID,
		lot.GenerateCarbureID(parent.CountryOfOrigin, period),
		period,
		parent.BiofuelCode,
		parent.FeedstockCode,
		parent.CountryOfOrigin,
		quantity,
		parent.GHG,
	)
	if err != nil {
		return nil, err
	}
	parentLotID := parent.ID
	stockID := position.ID
	child.ParentLotID = &parentLotID
	child.ParentStockID = &stockID
	child.ParentTransformationID = transformationID
	return child, nil
}

// shareQuantity derives the output vector of one allocation: the consumed
// input scaled so its volume column equals the allocated ETBE share
func shareQuantity(consumed valueobject.QuantityVector, volumeETBE decimal.Decimal) valueobject.QuantityVector {
	if consumed.Volume.IsZero() {
		return consumed
	}
	out := consumed.Scale(volumeETBE.Div(consumed.Volume))
	out.Volume = volumeETBE
	return out
}

// restoreQuantity rebuilds the vector consumed by one allocation from the
// stock's initial proportions
func restoreQuantity(position *stock.Stock, volume decimal.Decimal) valueobject.QuantityVector {
	if position.Initial.Volume.IsZero() {
		return valueobject.QuantityVector{}
	}
	out := position.Initial.Scale(volume.Div(position.Initial.Volume))
	out.Volume = volume
	return out
}

func toParty(in applot.PartyInput) lot.Party {
	if in.EntityID != nil {
		return lot.KnownParty(*in.EntityID)
	}
	return lot.UnknownParty(in.Name)
}

func toSite(in applot.SiteInput) lot.Site {
	if in.SiteID != nil {
		return lot.KnownSite(*in.SiteID, in.Country)
	}
	return lot.UnknownSite(in.Name, in.Country)
}

func scopesFor(entityID uuid.UUID, year int) []view.Scope {
	return []view.Scope{
		{EntityID: entityID, Year: year, Status: view.StatusStocks},
		{EntityID: entityID, Year: year, Status: view.StatusDrafts},
		{EntityID: entityID, Year: year, Status: view.StatusOut},
	}
}

func (s *Service) publishStockEvents(ctx context.Context, position *stock.Stock) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range position.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	position.ClearDomainEvents()
}

func (s *Service) publishLotEvents(ctx context.Context, l *lot.Lot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range l.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	l.ClearDomainEvents()
}

func (s *Service) publishTransformationEvents(ctx context.Context, t *stock.Transformation) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range t.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	t.ClearDomainEvents()
}
