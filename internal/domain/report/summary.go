package report

import (
	"sort"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// Direction selects which counterpart of a lot a summary groups by
type Direction string

const (
	DirectionIn  Direction = "in"  // group by supplier
	DirectionOut Direction = "out" // group by client
)

// Row is one group of a summary: a (counterparty, delivery type, biofuel)
// bucket for lots, a (counterparty, biofuel) bucket for stocks. Totals are
// expressed in the caller's chosen display unit; the GHG reduction is the
// unweighted arithmetic mean of the per-row reductions.
type Row struct {
	Counterparty    string           `json:"counterparty"`
	DeliveryType    lot.DeliveryType `json:"delivery_type,omitempty"`
	BiofuelCode     string           `json:"biofuel_code"`
	Count           int64            `json:"count"`
	PendingCount    int64            `json:"pending_count"`
	Total           decimal.Decimal  `json:"total"`
	TotalRemaining  decimal.Decimal  `json:"total_remaining,omitempty"`
	AvgGHGReduction decimal.Decimal  `json:"avg_ghg_reduction"`
}

type groupAccumulator struct {
	row          Row
	reductionSum decimal.Decimal
}

// SummarizeLots groups lots by (counterparty, delivery type, biofuel) and
// derives the per-group metrics. The same function serves the full filter
// scope and an explicit id selection; only the input slice differs.
func SummarizeLots(lots []lot.Lot, direction Direction, unit valueobject.Unit) []Row {
	groups := make(map[[3]string]*groupAccumulator)

	for i := range lots {
		l := &lots[i]

		counterparty := l.Supplier.DisplayName()
		if direction == DirectionOut {
			counterparty = l.Client.DisplayName()
		}
		delivery := l.DeliveryType()

		key := [3]string{counterparty, delivery.String(), l.BiofuelCode}
		acc, ok := groups[key]
		if !ok {
			acc = &groupAccumulator{
				row: Row{
					Counterparty: counterparty,
					DeliveryType: delivery,
					BiofuelCode:  l.BiofuelCode,
				},
				reductionSum: decimal.Zero,
			}
			groups[key] = acc
		}

		acc.row.Count++
		if l.IsPending() {
			acc.row.PendingCount++
		}
		acc.row.Total = acc.row.Total.Add(l.Quantity.Get(unit))
		acc.reductionSum = acc.reductionSum.Add(l.GHG.ReductionRedI())
	}

	return finishRows(groups)
}

// SummarizeStocks groups stocks by (counterparty, biofuel). Stock rows also
// carry the summed remaining quantity in the chosen unit.
func SummarizeStocks(stocks []stock.Stock, unit valueobject.Unit) []Row {
	groups := make(map[[3]string]*groupAccumulator)

	for i := range stocks {
		s := &stocks[i]

		key := [3]string{s.SupplierName, "", s.BiofuelCode}
		acc, ok := groups[key]
		if !ok {
			acc = &groupAccumulator{
				row: Row{
					Counterparty: s.SupplierName,
					BiofuelCode:  s.BiofuelCode,
				},
				reductionSum: decimal.Zero,
			}
			groups[key] = acc
		}

		acc.row.Count++
		if !s.IsFullyConsumed() {
			acc.row.PendingCount++
		}
		acc.row.Total = acc.row.Total.Add(s.Initial.Get(unit))
		acc.row.TotalRemaining = acc.row.TotalRemaining.Add(s.Remaining.Get(unit))
		acc.reductionSum = acc.reductionSum.Add(s.GHGReduction)
	}

	return finishRows(groups)
}

// finishRows computes the mean reductions and orders the groups
// deterministically by counterparty, delivery type, then biofuel
func finishRows(groups map[[3]string]*groupAccumulator) []Row {
	rows := make([]Row, 0, len(groups))
	for _, acc := range groups {
		if acc.row.Count > 0 {
			acc.row.AvgGHGReduction = acc.reductionSum.Div(decimal.NewFromInt(acc.row.Count)).Round(2)
		}
		rows = append(rows, acc.row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Counterparty != rows[j].Counterparty {
			return rows[i].Counterparty < rows[j].Counterparty
		}
		if rows[i].DeliveryType != rows[j].DeliveryType {
			return rows[i].DeliveryType < rows[j].DeliveryType
		}
		return rows[i].BiofuelCode < rows[j].BiofuelCode
	})

	return rows
}

// Totals sums every row of a summary into the headline figures
func Totals(rows []Row) (count int64, total decimal.Decimal, totalRemaining decimal.Decimal) {
	for _, r := range rows {
		count += r.Count
		total = total.Add(r.Total)
		totalRemaining = totalRemaining.Add(r.TotalRemaining)
	}
	return count, total, totalRemaining
}
