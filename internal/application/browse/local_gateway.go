package browse

import (
	"context"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/report"
	"github.com/carbure/backend/internal/domain/settings"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
)

// LocalGateway serves the coordinator from this process's own repositories
type LocalGateway struct {
	lots     lot.Repository
	stocks   stock.Repository
	settings settings.Repository
}

func NewLocalGateway(lots lot.Repository, stocks stock.Repository, settingsRepo settings.Repository) *LocalGateway {
	return &LocalGateway{lots: lots, stocks: stocks, settings: settingsRepo}
}

func (g *LocalGateway) ListLots(ctx context.Context, q view.Query) (*lot.ListPage, error) {
	return g.lots.List(ctx, q)
}

func (g *LocalGateway) ListStocks(ctx context.Context, q view.Query) (*stock.ListPage, error) {
	return g.stocks.List(ctx, q)
}

func (g *LocalGateway) Snapshot(ctx context.Context, entityID uuid.UUID, year int) (*view.Snapshot, error) {
	return g.lots.Snapshot(ctx, entityID, year)
}

// Summary aggregates the full filter scope, or exactly the selected ids when
// a selection is present, in the entity's preferred display unit
func (g *LocalGateway) Summary(ctx context.Context, q view.Query, selection []uuid.UUID) (*Summary, error) {
	unit := g.preferredUnit(ctx, q.EntityID)
	out := &Summary{Unit: unit}

	if q.Status == view.StatusStocks {
		stocks, err := g.scopeStocks(ctx, q, selection)
		if err != nil {
			return nil, err
		}
		out.Stocks = report.SummarizeStocks(stocks, unit)
		out.Count, out.Total, out.TotalRemaining = report.Totals(out.Stocks)
		return out, nil
	}

	lots, err := g.scopeLots(ctx, q, selection)
	if err != nil {
		return nil, err
	}
	out.In = report.SummarizeLots(lots, report.DirectionIn, unit)
	out.Out = report.SummarizeLots(lots, report.DirectionOut, unit)
	out.Count, out.Total, _ = report.Totals(out.In)
	return out, nil
}

func (g *LocalGateway) scopeLots(ctx context.Context, q view.Query, selection []uuid.UUID) ([]lot.Lot, error) {
	if len(selection) > 0 {
		return g.lots.FindByIDs(ctx, selection)
	}
	q.FromIdx = 0
	q.Limit = 0 // whole scope
	page, err := g.lots.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return page.Lots, nil
}

func (g *LocalGateway) scopeStocks(ctx context.Context, q view.Query, selection []uuid.UUID) ([]stock.Stock, error) {
	if len(selection) > 0 {
		return g.stocks.FindByIDs(ctx, selection)
	}
	q.FromIdx = 0
	q.Limit = 0
	page, err := g.stocks.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return page.Stocks, nil
}

func (g *LocalGateway) preferredUnit(ctx context.Context, entityID uuid.UUID) valueobject.Unit {
	if g.settings == nil {
		return valueobject.UnitVolume
	}
	prefs, err := g.settings.FindByEntity(ctx, entityID)
	if err != nil {
		return valueobject.UnitVolume
	}
	return prefs.PreferredUnit
}
