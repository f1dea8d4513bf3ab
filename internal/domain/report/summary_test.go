package report

import (
	"testing"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSummaryLot(t *testing.T, supplier, client, biofuel string, volume float64, reduction float64) lot.Lot {
	t.Helper()

	period, err := valueobject.NewPeriod(2024, 3)
	require.NoError(t, err)

	qty := valueobject.MustNewQuantityVector(
		decimal.NewFromFloat(volume),
		decimal.NewFromFloat(volume*0.8),
		decimal.NewFromFloat(volume*21.0),
	)

	// eec tuned so ReductionRedI lands on the wanted percentage
	eec := decimal.NewFromFloat(83.8).Mul(
		decimal.NewFromInt(100).Sub(decimal.NewFromFloat(reduction)),
	).Div(decimal.NewFromInt(100))

	l, err := lot.NewLot(uuid.New(), "", period, biofuel, "COLZA", "FR", qty, lot.GHG{EEC: eec})
	require.NoError(t, err)
	require.NoError(t, l.SetParties(
		lot.Party{Name: "Producer SA"},
		lot.Party{Name: supplier},
		lot.Party{Name: client},
	))
	return *l
}

func acceptedSummaryLot(t *testing.T, supplier, client, biofuel string, volume, reduction float64, mode lot.DeliveryType) lot.Lot {
	t.Helper()
	l := createSummaryLot(t, supplier, client, biofuel, volume, reduction)
	require.NoError(t, l.Send(true, true))
	require.NoError(t, l.Accept(mode))
	return l
}

func createSummaryStock(t *testing.T, supplier, biofuel string, initial, remaining, reduction float64) stock.Stock {
	t.Helper()
	l := acceptedSummaryLot(t, supplier, "Client SA", biofuel, initial, reduction, lot.DeliveryStock)
	s, err := stock.NewStockFromLot(&l)
	require.NoError(t, err)
	if remaining < initial {
		_, err := s.Consume(decimal.NewFromFloat(initial - remaining))
		require.NoError(t, err)
	}
	return *s
}

// ============================================
// SummarizeLots Tests
// ============================================

func TestSummarizeLots_GroupsByCounterpartyDeliveryAndBiofuel(t *testing.T) {
	lots := []lot.Lot{
		acceptedSummaryLot(t, "Alpha Oil", "Client SA", "ETH", 1000, 60, lot.DeliveryBlending),
		acceptedSummaryLot(t, "Alpha Oil", "Client SA", "ETH", 500, 70, lot.DeliveryBlending),
		acceptedSummaryLot(t, "Alpha Oil", "Client SA", "EMHV", 200, 55, lot.DeliveryBlending),
		acceptedSummaryLot(t, "Beta Fuels", "Client SA", "ETH", 300, 80, lot.DeliveryReleaseForConsumption),
	}

	rows := SummarizeLots(lots, DirectionIn, valueobject.UnitVolume)

	require.Len(t, rows, 3)

	assert.Equal(t, "Alpha Oil", rows[0].Counterparty)
	assert.Equal(t, lot.DeliveryBlending, rows[0].DeliveryType)
	assert.Equal(t, "EMHV", rows[0].BiofuelCode)
	assert.Equal(t, int64(1), rows[0].Count)

	assert.Equal(t, "Alpha Oil", rows[1].Counterparty)
	assert.Equal(t, "ETH", rows[1].BiofuelCode)
	assert.Equal(t, int64(2), rows[1].Count)
	assert.True(t, rows[1].Total.Equal(decimal.NewFromInt(1500)), "total %s", rows[1].Total)
	assert.True(t, rows[1].AvgGHGReduction.Equal(decimal.NewFromInt(65)), "avg %s", rows[1].AvgGHGReduction)

	assert.Equal(t, "Beta Fuels", rows[2].Counterparty)
	assert.Equal(t, lot.DeliveryReleaseForConsumption, rows[2].DeliveryType)
}

func TestSummarizeLots_DirectionSelectsCounterparty(t *testing.T) {
	lots := []lot.Lot{
		acceptedSummaryLot(t, "Alpha Oil", "Gamma Dist", "ETH", 100, 60, lot.DeliveryBlending),
	}

	in := SummarizeLots(lots, DirectionIn, valueobject.UnitVolume)
	out := SummarizeLots(lots, DirectionOut, valueobject.UnitVolume)

	require.Len(t, in, 1)
	require.Len(t, out, 1)
	assert.Equal(t, "Alpha Oil", in[0].Counterparty)
	assert.Equal(t, "Gamma Dist", out[0].Counterparty)
}

func TestSummarizeLots_PendingLotsGroupUnderUnknownDelivery(t *testing.T) {
	pending := createSummaryLot(t, "Alpha Oil", "Client SA", "ETH", 100, 60)
	require.NoError(t, pending.Send(true, true))

	lots := []lot.Lot{
		pending,
		acceptedSummaryLot(t, "Alpha Oil", "Client SA", "ETH", 100, 60, lot.DeliveryBlending),
	}

	rows := SummarizeLots(lots, DirectionIn, valueobject.UnitVolume)

	require.Len(t, rows, 2)
	assert.Equal(t, lot.DeliveryBlending, rows[0].DeliveryType)
	assert.Equal(t, int64(0), rows[0].PendingCount)
	assert.Equal(t, lot.DeliveryUnknown, rows[1].DeliveryType)
	assert.Equal(t, int64(1), rows[1].PendingCount)
}

func TestSummarizeLots_UnitSelection(t *testing.T) {
	lots := []lot.Lot{
		acceptedSummaryLot(t, "Alpha Oil", "Client SA", "ETH", 1000, 60, lot.DeliveryBlending),
	}

	byWeight := SummarizeLots(lots, DirectionIn, valueobject.UnitWeight)
	byEnergy := SummarizeLots(lots, DirectionIn, valueobject.UnitEnergy)

	require.Len(t, byWeight, 1)
	assert.True(t, byWeight[0].Total.Equal(decimal.NewFromInt(800)), "weight %s", byWeight[0].Total)
	assert.True(t, byEnergy[0].Total.Equal(decimal.NewFromInt(21000)), "energy %s", byEnergy[0].Total)
}

func TestSummarizeLots_EmptyInput(t *testing.T) {
	rows := SummarizeLots(nil, DirectionIn, valueobject.UnitVolume)
	assert.Empty(t, rows)
}

// ============================================
// SummarizeStocks Tests
// ============================================

func TestSummarizeStocks_SumsInitialAndRemaining(t *testing.T) {
	stocks := []stock.Stock{
		createSummaryStock(t, "Alpha Oil", "ETH", 1000, 600, 60),
		createSummaryStock(t, "Alpha Oil", "ETH", 500, 500, 70),
		createSummaryStock(t, "Beta Fuels", "ETH", 200, 0, 55),
	}

	rows := SummarizeStocks(stocks, valueobject.UnitVolume)

	require.Len(t, rows, 2)

	assert.Equal(t, "Alpha Oil", rows[0].Counterparty)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.Equal(t, int64(2), rows[0].PendingCount)
	assert.True(t, rows[0].Total.Equal(decimal.NewFromInt(1500)), "total %s", rows[0].Total)
	assert.True(t, rows[0].TotalRemaining.Equal(decimal.NewFromInt(1100)), "remaining %s", rows[0].TotalRemaining)

	assert.Equal(t, "Beta Fuels", rows[1].Counterparty)
	assert.Equal(t, int64(0), rows[1].PendingCount, "fully consumed stock is not pending")
	assert.True(t, rows[1].TotalRemaining.IsZero())
}

// ============================================
// Totals Tests
// ============================================

func TestTotals(t *testing.T) {
	rows := []Row{
		{Count: 2, Total: decimal.NewFromInt(1500), TotalRemaining: decimal.NewFromInt(1100)},
		{Count: 1, Total: decimal.NewFromInt(200)},
	}

	count, total, remaining := Totals(rows)

	assert.Equal(t, int64(3), count)
	assert.True(t, total.Equal(decimal.NewFromInt(1700)))
	assert.True(t, remaining.Equal(decimal.NewFromInt(1100)))
}
