package stock

import (
	"time"

	applot "github.com/carbure/backend/internal/application/lot"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// SplitStockRequest carves a delivery out of a custody position
type SplitStockRequest struct {
	StockID      uuid.UUID         `json:"stock_id" binding:"required"`
	Volume       decimal.Decimal   `json:"volume" binding:"required"`
	Period       int               `json:"period" binding:"required,period"`
	Client       applot.PartyInput `json:"client"`
	DeliverySite applot.SiteInput  `json:"delivery_site"`
}

// FlushStockRequest empties a position irreversibly
type FlushStockRequest struct {
	StockID uuid.UUID `json:"stock_id" binding:"required"`
	Comment string    `json:"comment" binding:"required,min=1"`
}

// AllocationInput assigns part of the consumed ethanol to one stock
type AllocationInput struct {
	StockID uuid.UUID       `json:"stock_id" binding:"required"`
	Volume  decimal.Decimal `json:"volume" binding:"required"`
}

// TransformETBERequest declares an ethanol-to-ETBE transformation
type TransformETBERequest struct {
	VolumeETBE       decimal.Decimal   `json:"volume_etbe" binding:"required"`
	VolumeEthanol    decimal.Decimal   `json:"volume_ethanol" binding:"required"`
	VolumeDenaturant decimal.Decimal   `json:"volume_denaturant"`
	Period           int               `json:"period" binding:"required,period"`
	Allocations      []AllocationInput `json:"allocations" binding:"required,min=1"`
}

// ==================== Responses ====================

type StockResponse struct {
	ID                     uuid.UUID       `json:"id"`
	CarbureID              string          `json:"carbure_id"`
	EntityID               uuid.UUID       `json:"entity_id"`
	ParentLotID            uuid.UUID       `json:"parent_lot_id"`
	ParentTransformationID *uuid.UUID      `json:"parent_transformation_id,omitempty"`
	BiofuelCode            string          `json:"biofuel_code"`
	FeedstockCode          string          `json:"feedstock_code"`
	CountryOfOrigin        string          `json:"country_of_origin"`
	SupplierName           string          `json:"supplier"`
	DepotName              string          `json:"depot"`
	GHGReduction           decimal.Decimal `json:"ghg_reduction"`
	InitialVolume          decimal.Decimal `json:"initial_volume"`
	RemainingVolume        decimal.Decimal `json:"remaining_volume"`
	RemainingWeight        decimal.Decimal `json:"remaining_weight"`
	RemainingLHVAmount     decimal.Decimal `json:"remaining_lhv_amount"`
	Flushed                bool            `json:"flushed"`
	CreatedAt              time.Time       `json:"created_at"`
}

// TransformationResponse reports a submitted transformation with its derived
// figures
type TransformationResponse struct {
	ID                 uuid.UUID          `json:"id"`
	EntityID           uuid.UUID          `json:"entity_id"`
	VolumeEthanol      decimal.Decimal    `json:"volume_ethanol"`
	VolumeETBE         decimal.Decimal    `json:"volume_etbe"`
	VolumeDenaturant   decimal.Decimal    `json:"volume_denaturant"`
	UsageVolume        decimal.Decimal    `json:"usage_volume"`
	Ratio              decimal.Decimal    `json:"ratio"`
	EligibleETBEVolume decimal.Decimal    `json:"eligible_etbe_volume"`
	Allocations        []stock.Allocation `json:"allocations"`
	OutputLotIDs       []uuid.UUID        `json:"output_lot_ids,omitempty"`
	Cancelled          bool               `json:"cancelled"`
}

// ListResponse is a page of stocks plus the scope counters
type ListResponse struct {
	Stocks   []StockResponse `json:"stocks"`
	IDs      []uuid.UUID     `json:"ids"`
	Returned int64           `json:"returned"`
	Total    int64           `json:"total"`
}

// ToListResponse converts a repository page to its transport shape
func ToListResponse(page *stock.ListPage) *ListResponse {
	return &ListResponse{
		Stocks:   ToStockResponses(page.Stocks),
		IDs:      page.IDs,
		Returned: page.Returned,
		Total:    page.Total,
	}
}

// ToStockResponse converts a stock aggregate to its transport shape
func ToStockResponse(s *stock.Stock) StockResponse {
	return StockResponse{
		ID:                     s.ID,
		CarbureID:              s.CarbureID,
		EntityID:               s.EntityID,
		ParentLotID:            s.ParentLotID,
		ParentTransformationID: s.ParentTransformationID,
		BiofuelCode:            s.BiofuelCode,
		FeedstockCode:          s.FeedstockCode,
		CountryOfOrigin:        s.CountryOfOrigin,
		SupplierName:           s.SupplierName,
		DepotName:              s.DepotName,
		GHGReduction:           s.GHGReduction,
		InitialVolume:          s.Initial.Volume,
		RemainingVolume:        s.Remaining.Volume,
		RemainingWeight:        s.Remaining.Weight,
		RemainingLHVAmount:     s.Remaining.LHVAmount,
		Flushed:                s.Flushed,
		CreatedAt:              s.CreatedAt,
	}
}

// ToStockResponses converts a slice of stocks
func ToStockResponses(stocks []stock.Stock) []StockResponse {
	out := make([]StockResponse, 0, len(stocks))
	for i := range stocks {
		out = append(out, ToStockResponse(&stocks[i]))
	}
	return out
}

// ToTransformationResponse converts a transformation with its output lots
func ToTransformationResponse(t *stock.Transformation, outputLotIDs []uuid.UUID) TransformationResponse {
	return TransformationResponse{
		ID:                 t.ID,
		EntityID:           t.EntityID,
		VolumeEthanol:      t.VolumeEthanol,
		VolumeETBE:         t.VolumeETBE,
		VolumeDenaturant:   t.VolumeDenaturant,
		UsageVolume:        t.UsageVolume(),
		Ratio:              t.Ratio(),
		EligibleETBEVolume: t.EligibleETBEVolume(),
		Allocations:        t.Allocations,
		OutputLotIDs:       outputLotIDs,
		Cancelled:          t.Cancelled,
	}
}
