package lot

import (
	"context"
	"strings"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
)

// StockLedger is the narrow view of stock persistence the lot lifecycle
// needs: cancelling an acceptance must know whether the derived custody
// position has been drawn from.
type StockLedger interface {
	FindByParentLot(ctx context.Context, lotID uuid.UUID) ([]stock.Stock, error)
}

// Service handles lot lifecycle operations. Batch mutations validate every
// target first and apply as a whole; a single refusal leaves all lots
// untouched.
type Service struct {
	lotRepo        lot.Repository
	stockLedger    StockLedger
	eventPublisher shared.EventPublisher
}

// NewService creates a new lot Service
func NewService(lotRepo lot.Repository, stockLedger StockLedger) *Service {
	return &Service{lotRepo: lotRepo, stockLedger: stockLedger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a new draft lot for the entity
func (s *Service) Create(ctx context.Context, entityID uuid.UUID, req CreateLotRequest) (*LotResponse, []view.Scope, error) {
	period := valueobject.Period(req.Period)
	quantity, err := valueobject.NewQuantityVector(req.Volume, req.Weight, req.LHVAmount)
	if err != nil {
		return nil, nil, err
	}

	carbureID := lot.GenerateCarbureID(req.CountryOfOrigin, period)
	l, err := lot.NewLot(entityID, carbureID, period,
		req.BiofuelCode, req.FeedstockCode, strings.ToUpper(req.CountryOfOrigin),
		quantity, toGHG(req.GHG))
	if err != nil {
		return nil, nil, err
	}
	if err := l.SetParties(toParty(req.Producer), toParty(req.Supplier), toParty(req.Client)); err != nil {
		return nil, nil, err
	}
	if err := l.SetSites(toSite(req.ProductionSite), toSite(req.DeliverySite)); err != nil {
		return nil, nil, err
	}

	if err := s.lotRepo.Save(ctx, l); err != nil {
		return nil, nil, err
	}
	s.publishEvents(ctx, l)

	response := ToLotResponse(l)
	return &response, scopesFor([]*lot.Lot{l}), nil
}

// GetByID retrieves one lot
func (s *Service) GetByID(ctx context.Context, lotID uuid.UUID) (*LotResponse, error) {
	l, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	response := ToLotResponse(l)
	return &response, nil
}

// List runs a scoped listing query
func (s *Service) List(ctx context.Context, query view.Query) (*ListResponse, error) {
	page, err := s.lotRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return ToListResponse(page), nil
}

// Update patches a draft lot; any other status refuses
func (s *Service) Update(ctx context.Context, entityID, lotID uuid.UUID, req UpdateLotRequest) (*LotResponse, []view.Scope, error) {
	l, err := s.findOwned(ctx, entityID, lotID)
	if err != nil {
		return nil, nil, err
	}
	if !l.IsDraft() {
		return nil, nil, shared.ErrWrongStatus
	}

	if req.Period != nil {
		period := valueobject.Period(*req.Period)
		if !period.IsValid() {
			return nil, nil, shared.NewDomainError("INVALID_PERIOD", "Period must be a valid YYYYMM value")
		}
		l.Period = period
		l.Year = period.Year()
	}
	if req.BiofuelCode != nil {
		l.BiofuelCode = *req.BiofuelCode
	}
	if req.FeedstockCode != nil {
		l.FeedstockCode = *req.FeedstockCode
	}
	if req.CountryOfOrigin != nil {
		l.CountryOfOrigin = strings.ToUpper(*req.CountryOfOrigin)
	}
	if req.Volume != nil || req.Weight != nil || req.LHVAmount != nil {
		volume, weight, lhv := l.Quantity.Volume, l.Quantity.Weight, l.Quantity.LHVAmount
		if req.Volume != nil {
			volume = *req.Volume
		}
		if req.Weight != nil {
			weight = *req.Weight
		}
		if req.LHVAmount != nil {
			lhv = *req.LHVAmount
		}
		quantity, err := valueobject.NewQuantityVector(volume, weight, lhv)
		if err != nil {
			return nil, nil, err
		}
		l.Quantity = quantity
	}
	if req.GHG != nil {
		l.GHG = toGHG(*req.GHG)
	}
	if req.Producer != nil || req.Supplier != nil || req.Client != nil {
		producer, supplier, client := l.Producer, l.Supplier, l.Client
		if req.Producer != nil {
			producer = toParty(*req.Producer)
		}
		if req.Supplier != nil {
			supplier = toParty(*req.Supplier)
		}
		if req.Client != nil {
			client = toParty(*req.Client)
		}
		if err := l.SetParties(producer, supplier, client); err != nil {
			return nil, nil, err
		}
	}
	if req.ProductionSite != nil || req.DeliverySite != nil {
		production, delivery := l.ProductionSite, l.DeliverySite
		if req.ProductionSite != nil {
			production = toSite(*req.ProductionSite)
		}
		if req.DeliverySite != nil {
			delivery = toSite(*req.DeliverySite)
		}
		if err := l.SetSites(production, delivery); err != nil {
			return nil, nil, err
		}
	}

	if err := s.lotRepo.Save(ctx, l); err != nil {
		return nil, nil, err
	}

	response := ToLotResponse(l)
	return &response, scopesFor([]*lot.Lot{l}), nil
}

// Send submits a batch of drafts. Lots carrying a blocking data error veto
// the whole batch.
func (s *Service) Send(ctx context.Context, entityID uuid.UUID, req SendLotsRequest) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	if err := s.refuseBlocking(ctx, req.LotIDs); err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		if !l.IsDraft() {
			return nil, nil, shared.ErrWrongStatus
		}
	}

	for _, l := range lots {
		if err := l.Send(req.DurabilityAttested, req.DataAttested); err != nil {
			return nil, nil, err
		}
	}
	return s.commitBatch(ctx, lots)
}

// Accept accepts a batch of pending lots under one delivery mode
func (s *Service) Accept(ctx context.Context, entityID uuid.UUID, req AcceptLotsRequest) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	if err := s.refuseBlocking(ctx, req.LotIDs); err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		if !l.IsPending() {
			return nil, nil, shared.ErrWrongStatus
		}
	}

	for _, l := range lots {
		if err := l.Accept(req.DeliveryType); err != nil {
			return nil, nil, err
		}
	}
	return s.commitBatch(ctx, lots)
}

// Reject refuses a batch of pending lots with a mandatory comment
func (s *Service) Reject(ctx context.Context, entityID uuid.UUID, req CommentedLotsRequest) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		if !l.IsPending() {
			return nil, nil, shared.ErrWrongStatus
		}
	}

	for _, l := range lots {
		if err := l.Reject(entityID, req.Comment); err != nil {
			return nil, nil, err
		}
	}
	return s.commitBatch(ctx, lots)
}

// CancelAcceptance reverts accepted or rejected lots to Pending. A lot whose
// stock or children are already in use refuses the whole batch: child lots
// block outright, and a derived custody position blocks once anything has
// been drawn from it (split, transformation allocation or flush). Untouched
// derived positions are removed by the stock context when the event lands.
func (s *Service) CancelAcceptance(ctx context.Context, entityID uuid.UUID, req LotIDsRequest) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		children, err := s.lotRepo.CountChildren(ctx, l.ID)
		if err != nil {
			return nil, nil, err
		}
		if children > 0 {
			return nil, nil, shared.ErrChildrenInUse
		}
		positions, err := s.stockLedger.FindByParentLot(ctx, l.ID)
		if err != nil {
			return nil, nil, err
		}
		for i := range positions {
			if !positions[i].IsUntouched() {
				return nil, nil, shared.ErrChildrenInUse
			}
		}
	}

	for _, l := range lots {
		if err := l.CancelAcceptance(); err != nil {
			return nil, nil, err
		}
	}
	return s.commitBatch(ctx, lots)
}

// RequestFix opens the correction loop on a batch of lots
func (s *Service) RequestFix(ctx context.Context, entityID uuid.UUID, req CommentedLotsRequest) (*MutationResponse, []view.Scope, error) {
	return s.commentedBatch(ctx, entityID, req, func(l *lot.Lot) error {
		return l.RequestFix(entityID, req.Comment)
	})
}

// ConfirmFix marks corrections as done, back to the requester
func (s *Service) ConfirmFix(ctx context.Context, entityID uuid.UUID, req CommentedLotsRequest) (*MutationResponse, []view.Scope, error) {
	return s.commentedBatch(ctx, entityID, req, func(l *lot.Lot) error {
		return l.ConfirmFix(entityID, req.Comment)
	})
}

// ApproveFix closes the correction loop
func (s *Service) ApproveFix(ctx context.Context, entityID uuid.UUID, req LotIDsRequest) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		if err := l.ApproveFix(); err != nil {
			return nil, nil, err
		}
	}
	return s.commitBatch(ctx, lots)
}

// Delete removes a batch of lots. Drafts are removed physically, anything
// else transitions to Deleted; frozen lots refuse.
func (s *Service) Delete(ctx context.Context, entityID uuid.UUID, req LotIDsRequest) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		if l.Status == lot.StatusFrozen {
			return nil, nil, shared.ErrFrozenLot
		}
	}

	scopes := scopesFor(lots)
	var kept []*lot.Lot
	for _, l := range lots {
		if l.IsDraft() {
			if err := s.lotRepo.Delete(ctx, l.ID); err != nil {
				return nil, nil, err
			}
			continue
		}
		if err := l.MarkDeleted(); err != nil {
			return nil, nil, err
		}
		kept = append(kept, l)
	}
	if len(kept) > 0 {
		if err := s.lotRepo.SaveAll(ctx, kept); err != nil {
			return nil, nil, err
		}
		for _, l := range kept {
			s.publishEvents(ctx, l)
		}
	}
	return &MutationResponse{LotIDs: req.LotIDs}, scopes, nil
}

// Duplicate copies a draft from an existing lot
func (s *Service) Duplicate(ctx context.Context, entityID, lotID uuid.UUID) (*LotResponse, []view.Scope, error) {
	l, err := s.findOwned(ctx, entityID, lotID)
	if err != nil {
		return nil, nil, err
	}
	dup := l.Duplicate()
	dup.CarbureID = lot.GenerateCarbureID(dup.CountryOfOrigin, dup.Period)
	if err := s.lotRepo.Save(ctx, dup); err != nil {
		return nil, nil, err
	}
	s.publishEvents(ctx, dup)

	response := ToLotResponse(dup)
	return &response, scopesFor([]*lot.Lot{dup}), nil
}

// ==================== helpers ====================

func (s *Service) findOwned(ctx context.Context, entityID, lotID uuid.UUID) (*lot.Lot, error) {
	l, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if l.EntityID != entityID && !isKnownCounterpart(l, entityID) {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

// loadOwnedBatch resolves every id and checks the entity may act on each lot;
// a single miss refuses the batch
func (s *Service) loadOwnedBatch(ctx context.Context, entityID uuid.UUID, ids []uuid.UUID) ([]*lot.Lot, error) {
	if len(ids) == 0 {
		return nil, shared.ErrInvalidInput
	}
	found, err := s.lotRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, shared.ErrNotFound
	}
	lots := make([]*lot.Lot, 0, len(found))
	for i := range found {
		l := &found[i]
		if l.EntityID != entityID && !isKnownCounterpart(l, entityID) {
			return nil, shared.ErrNotFound
		}
		lots = append(lots, l)
	}
	return lots, nil
}

func isKnownCounterpart(l *lot.Lot, entityID uuid.UUID) bool {
	if l.Client.EntityID != nil && *l.Client.EntityID == entityID {
		return true
	}
	if l.Supplier.EntityID != nil && *l.Supplier.EntityID == entityID {
		return true
	}
	return false
}

func (s *Service) refuseBlocking(ctx context.Context, ids []uuid.UUID) error {
	errsByLot, err := s.lotRepo.ErrorsForLots(ctx, ids)
	if err != nil {
		return err
	}
	for _, errs := range errsByLot {
		if lot.HasBlocking(errs) {
			return shared.NewDomainError("BLOCKING_ERRORS", "One or more lots carry blocking validation errors")
		}
	}
	return nil
}

func (s *Service) commentedBatch(ctx context.Context, entityID uuid.UUID, req CommentedLotsRequest, apply func(*lot.Lot) error) (*MutationResponse, []view.Scope, error) {
	lots, err := s.loadOwnedBatch(ctx, entityID, req.LotIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		if err := apply(l); err != nil {
			return nil, nil, err
		}
	}
	return s.commitBatch(ctx, lots)
}

func (s *Service) commitBatch(ctx context.Context, lots []*lot.Lot) (*MutationResponse, []view.Scope, error) {
	if err := s.lotRepo.SaveAll(ctx, lots); err != nil {
		return nil, nil, err
	}
	for _, l := range lots {
		s.publishEvents(ctx, l)
	}

	ids := make([]uuid.UUID, 0, len(lots))
	responses := make([]LotResponse, 0, len(lots))
	for _, l := range lots {
		ids = append(ids, l.ID)
		responses = append(responses, ToLotResponse(l))
	}
	return &MutationResponse{LotIDs: ids, Lots: responses}, scopesFor(lots), nil
}

func (s *Service) publishEvents(ctx context.Context, l *lot.Lot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range l.GetDomainEvents() {
		// event handling is async; a publish failure must not undo the save
		_ = s.eventPublisher.Publish(ctx, event)
	}
	l.ClearDomainEvents()
}

// scopesFor lists every (entity, year, status tab) region a batch touches:
// the owner's side plus the known counterparts' sides
func scopesFor(lots []*lot.Lot) []view.Scope {
	seen := make(map[view.Scope]struct{})
	var out []view.Scope
	add := func(entityID uuid.UUID, year int, status view.Status) {
		scope := view.Scope{EntityID: entityID, Year: year, Status: status}
		if _, ok := seen[scope]; ok {
			return
		}
		seen[scope] = struct{}{}
		out = append(out, scope)
	}
	for _, l := range lots {
		add(l.EntityID, l.Year, view.StatusDrafts)
		add(l.EntityID, l.Year, view.StatusOut)
		add(l.EntityID, l.Year, view.StatusStocks)
		if l.Client.EntityID != nil {
			add(*l.Client.EntityID, l.Year, view.StatusIn)
			add(*l.Client.EntityID, l.Year, view.StatusStocks)
		}
	}
	return out
}

func toGHG(in GHGInput) lot.GHG {
	return lot.GHG{
		EEC: in.EEC, EL: in.EL, EP: in.EP, ETD: in.ETD, EU: in.EU,
		ESCA: in.ESCA, ECCS: in.ECCS, ECCR: in.ECCR, EEE: in.EEE,
	}
}

func toParty(in PartyInput) lot.Party {
	if in.EntityID != nil {
		return lot.KnownParty(*in.EntityID)
	}
	return lot.UnknownParty(in.Name)
}

func toSite(in SiteInput) lot.Site {
	if in.SiteID != nil {
		return lot.KnownSite(*in.SiteID, in.Country)
	}
	return lot.UnknownSite(in.Name, in.Country)
}
