package lot

import (
	"time"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// PartyInput names a counterpart either by registered entity id or free text,
// never both
type PartyInput struct {
	EntityID *uuid.UUID `json:"entity_id"`
	Name     string     `json:"name"`
}

// SiteInput names a production or delivery site
type SiteInput struct {
	SiteID  *uuid.UUID `json:"site_id"`
	Name    string     `json:"name"`
	Country string     `json:"country"`
}

// CreateLotRequest carries everything needed to open a draft lot
type CreateLotRequest struct {
	Period          int             `json:"period" binding:"required,period"`
	BiofuelCode     string          `json:"biofuel_code" binding:"required,min=1,max=40"`
	FeedstockCode   string          `json:"feedstock_code" binding:"required,min=1,max=40"`
	CountryOfOrigin string          `json:"country_of_origin" binding:"required,len=2"`
	Volume          decimal.Decimal `json:"volume" binding:"required"`
	Weight          decimal.Decimal `json:"weight" binding:"required"`
	LHVAmount       decimal.Decimal `json:"lhv_amount" binding:"required"`
	GHG             GHGInput        `json:"ghg"`
	Producer        PartyInput      `json:"producer"`
	Supplier        PartyInput      `json:"supplier"`
	Client          PartyInput      `json:"client"`
	ProductionSite  SiteInput       `json:"production_site"`
	DeliverySite    SiteInput       `json:"delivery_site"`
}

// GHGInput carries the nine emission factors of a lot
type GHGInput struct {
	EEC  decimal.Decimal `json:"eec"`
	EL   decimal.Decimal `json:"el"`
	EP   decimal.Decimal `json:"ep"`
	ETD  decimal.Decimal `json:"etd"`
	EU   decimal.Decimal `json:"eu"`
	ESCA decimal.Decimal `json:"esca"`
	ECCS decimal.Decimal `json:"eccs"`
	ECCR decimal.Decimal `json:"eccr"`
	EEE  decimal.Decimal `json:"eee"`
}

// UpdateLotRequest patches a draft lot; nil fields are left untouched
type UpdateLotRequest struct {
	Period          *int             `json:"period" binding:"omitempty,period"`
	BiofuelCode     *string          `json:"biofuel_code"`
	FeedstockCode   *string          `json:"feedstock_code"`
	CountryOfOrigin *string          `json:"country_of_origin"`
	Volume          *decimal.Decimal `json:"volume"`
	Weight          *decimal.Decimal `json:"weight"`
	LHVAmount       *decimal.Decimal `json:"lhv_amount"`
	GHG             *GHGInput        `json:"ghg"`
	Producer        *PartyInput      `json:"producer"`
	Supplier        *PartyInput      `json:"supplier"`
	Client          *PartyInput      `json:"client"`
	ProductionSite  *SiteInput       `json:"production_site"`
	DeliverySite    *SiteInput       `json:"delivery_site"`
}

// SendLotsRequest submits drafts to their recipients
type SendLotsRequest struct {
	LotIDs             []uuid.UUID `json:"lot_ids" binding:"required,min=1"`
	DurabilityAttested bool        `json:"durability_attested"`
	DataAttested       bool        `json:"data_attested"`
}

// AcceptLotsRequest accepts pending lots under one delivery mode
type AcceptLotsRequest struct {
	LotIDs       []uuid.UUID      `json:"lot_ids" binding:"required,min=1"`
	DeliveryType lot.DeliveryType `json:"delivery_type" binding:"required"`
}

// CommentedLotsRequest is the shape of every refusal/correction batch
type CommentedLotsRequest struct {
	LotIDs  []uuid.UUID `json:"lot_ids" binding:"required,min=1"`
	Comment string      `json:"comment" binding:"required,min=1"`
}

// LotIDsRequest is a bare batch of ids
type LotIDsRequest struct {
	LotIDs []uuid.UUID `json:"lot_ids" binding:"required,min=1"`
}

// ==================== Responses ====================

type PartyResponse struct {
	EntityID *uuid.UUID `json:"entity_id,omitempty"`
	Name     string     `json:"name"`
}

type SiteResponse struct {
	SiteID  *uuid.UUID `json:"site_id,omitempty"`
	Name    string     `json:"name"`
	Country string     `json:"country"`
}

type CommentResponse struct {
	AuthorEntityID uuid.UUID `json:"author_entity_id"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

type DataErrorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	IsBlocking bool   `json:"is_blocking"`
}

type LotResponse struct {
	ID               uuid.UUID            `json:"id"`
	CarbureID        string               `json:"carbure_id"`
	EntityID         uuid.UUID            `json:"entity_id"`
	Year             int                  `json:"year"`
	Period           int                  `json:"period"`
	BiofuelCode      string               `json:"biofuel_code"`
	FeedstockCode    string               `json:"feedstock_code"`
	CountryOfOrigin  string               `json:"country_of_origin"`
	Volume           decimal.Decimal      `json:"volume"`
	Weight           decimal.Decimal      `json:"weight"`
	LHVAmount        decimal.Decimal      `json:"lhv_amount"`
	GHGTotal         decimal.Decimal      `json:"ghg_total"`
	GHGReduction     decimal.Decimal      `json:"ghg_reduction"`
	GHGReductionRed2 decimal.Decimal      `json:"ghg_reduction_red_ii"`
	Producer         PartyResponse        `json:"producer"`
	Supplier         PartyResponse        `json:"supplier"`
	Client           PartyResponse        `json:"client"`
	ProductionSite   SiteResponse         `json:"production_site"`
	DeliverySite     SiteResponse         `json:"delivery_site"`
	Status           lot.Status           `json:"lot_status"`
	CorrectionStatus lot.CorrectionStatus `json:"correction_status"`
	DeliveryType     lot.DeliveryType     `json:"delivery_type"`
	ParentLotID      *uuid.UUID           `json:"parent_lot_id,omitempty"`
	ParentStockID    *uuid.UUID           `json:"parent_stock_id,omitempty"`
	Comments         []CommentResponse    `json:"comments,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

/// MutationResponse reports the outcome of a batch mutation: which lots moved
// (the caller drops them from its selection) and which cached scopes are now
// stale
type MutationResponse struct {
	LotIDs []uuid.UUID   `json:"lot_ids"`
	Lots   []LotResponse `json:"lots,omitempty"`
}

func toPartyResponse(p lot.Party) PartyResponse {
	return PartyResponse{EntityID: p.EntityID, Name: p.DisplayName()}
}

func toSiteResponse(s lot.Site) SiteResponse {
	return SiteResponse{SiteID: s.SiteID, Name: s.Name, Country: s.Country}
}

// ToLotResponse converts a lot aggregate to its transport shape
func ToLotResponse(l *lot.Lot) LotResponse {
	comments := make([]CommentResponse, 0, len(l.Comments))
	for _, c := range l.Comments {
		comments = append(comments, CommentResponse{
			AuthorEntityID: c.AuthorEntityID,
			Message:        c.Message,
			CreatedAt:      c.CreatedAt,
		})
	}
	return LotResponse{
		ID:               l.ID,
		CarbureID:        l.CarbureID,
		EntityID:         l.EntityID,
		Year:             l.Year,
		Period:           int(l.Period),
		BiofuelCode:      l.BiofuelCode,
		FeedstockCode:    l.FeedstockCode,
		CountryOfOrigin:  l.CountryOfOrigin,
		Volume:           l.Quantity.Volume,
		Weight:           l.Quantity.Weight,
		LHVAmount:        l.Quantity.LHVAmount,
		GHGTotal:         l.GHG.Total(),
		GHGReduction:     l.GHG.ReductionRedI(),
		GHGReductionRed2: l.GHG.ReductionRedII(),
		Producer:         toPartyResponse(l.Producer),
		Supplier:         toPartyResponse(l.Supplier),
		Client:           toPartyResponse(l.Client),
		ProductionSite:   toSiteResponse(l.ProductionSite),
		DeliverySite:     toSiteResponse(l.DeliverySite),
		Status:           l.Status,
		CorrectionStatus: l.CorrectionStatus,
		DeliveryType:     l.DeliveryType(),
		ParentLotID:      l.ParentLotID,
		ParentStockID:    l.ParentStockID,
		Comments:         comments,
		CreatedAt:        l.CreatedAt,
	}
}

// ToLotResponses converts a slice of lots
func ToLotResponses(lots []lot.Lot) []LotResponse {
	out := make([]LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, ToLotResponse(&lots[i]))
	}
	return out
}

func toDataErrorResponses(errs []lot.DataError) []DataErrorResponse {
	out := make([]DataErrorResponse, 0, len(errs))
	for _, e := range errs {
		out = append(out, DataErrorResponse{Code: e.Code, Message: e.Message, IsBlocking: e.IsBlocking})
	}
	return out
}

// ListResponse is a page of lots plus the listing counters
type ListResponse struct {
	Lots          []LotResponse                     `json:"lots"`
	IDs           []uuid.UUID                       `json:"ids"`
	Total         int64                             `json:"total"`
	TotalErrors   int64                             `json:"total_errors"`
	TotalDeadline int64                             `json:"total_deadline"`
	Errors        map[uuid.UUID][]DataErrorResponse `json:"errors,omitempty"`
}

// ToListResponse converts a repository page to its transport shape
func ToListResponse(page *lot.ListPage) *ListResponse {
	errs := make(map[uuid.UUID][]DataErrorResponse, len(page.ErrorsByLot))
	for id, list := range page.ErrorsByLot {
		errs[id] = toDataErrorResponses(list)
	}
	return &ListResponse{
		Lots:          ToLotResponses(page.Lots),
		IDs:           page.IDs,
		Total:         page.Total,
		TotalErrors:   page.TotalErrors,
		TotalDeadline: page.TotalDeadline,
		Errors:        errs,
	}
}
