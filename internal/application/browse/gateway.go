package browse

import (
	"context"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/report"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary is the aggregated view of a listing scope, grouped by counterparty
type Summary struct {
	Unit           valueobject.Unit `json:"unit"`
	In             []report.Row     `json:"in,omitempty"`
	Out            []report.Row     `json:"out,omitempty"`
	Stocks         []report.Row     `json:"stocks,omitempty"`
	Count          int64            `json:"count"`
	Total          decimal.Decimal  `json:"total"`
	TotalRemaining decimal.Decimal  `json:"total_remaining"`
}

// Gateway is the record-transport collaborator the coordinator talks to. The
// in-process implementation is backed by this service's own repositories; a
// remote deployment can substitute an HTTP client without touching the
// coordinator.
type Gateway interface {
	ListLots(ctx context.Context, q view.Query) (*lot.ListPage, error)
	ListStocks(ctx context.Context, q view.Query) (*stock.ListPage, error)
	Summary(ctx context.Context, q view.Query, selection []uuid.UUID) (*Summary, error)
	Snapshot(ctx context.Context, entityID uuid.UUID, year int) (*view.Snapshot, error)
}

// Scheduler defers a callback to the next tick. Filter changes push their
// route synchronization through it so the route write never feeds back into
// the change that triggered it.
type Scheduler interface {
	Defer(fn func())
}

// LimitStore persists the chosen page size across sessions
type LimitStore interface {
	SaveLimit(ctx context.Context, entityID uuid.UUID, limit int) error
}

// RouteSink receives the coordinator's filter state for external
// synchronization (the route/query-string of a UI client)
type RouteSink interface {
	SyncFilters(filters view.FilterSet)
}
