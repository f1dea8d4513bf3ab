package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&stock.Stock{})
	require.NoError(t, err)

	return db
}

// newTestStock builds a position held by entityID and dates it inside 2024
func newTestStock(t *testing.T, entityID uuid.UUID) *stock.Stock {
	t.Helper()
	qty := valueobject.MustNewQuantityVector(
		decimal.NewFromInt(1000),
		decimal.NewFromInt(790),
		decimal.NewFromInt(21000),
	)
	s := &stock.Stock{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(entityID),
		CarbureID:          "FR-202403-" + uuid.NewString()[:8],
		ParentLotID:        uuid.New(),
		BiofuelCode:        "ETH",
		FeedstockCode:      "COLZA",
		CountryOfOrigin:    "FR",
		SupplierName:       "Raffinerie SA",
		DepotName:          "Depot du Havre",
		Initial:            qty,
		Remaining:          qty,
	}
	s.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return s
}

func TestGormStockRepository_SaveAndFindByID(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	s := newTestStock(t, uuid.New())
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ParentLotID, found.ParentLotID)
	assert.True(t, found.Remaining.Equal(s.Initial))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormStockRepository_FindByParentLot(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	derived := newTestStock(t, entityID)
	require.NoError(t, repo.Save(ctx, derived))
	require.NoError(t, repo.Save(ctx, newTestStock(t, entityID)))

	positions, err := repo.FindByParentLot(ctx, derived.ParentLotID)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, derived.ID, positions[0].ID)
}

func TestGormStockRepository_ListScopesByYear(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	inYear := newTestStock(t, entityID)
	require.NoError(t, repo.Save(ctx, inYear))

	nextYear := newTestStock(t, entityID)
	nextYear.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, nextYear))

	require.NoError(t, repo.Save(ctx, newTestStock(t, uuid.New())))

	page, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024})
	require.NoError(t, err)
	require.Len(t, page.Stocks, 1)
	assert.Equal(t, inYear.ID, page.Stocks[0].ID)
	assert.Equal(t, int64(1), page.Total)
}

func TestGormStockRepository_ListSplitsPendingFromHistory(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	open := newTestStock(t, entityID)
	require.NoError(t, repo.Save(ctx, open))

	emptied := newTestStock(t, entityID)
	_, err := emptied.Consume(emptied.Remaining.Volume)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, emptied))

	flushed := newTestStock(t, entityID)
	flushed.Flush("depot closed")
	require.NoError(t, repo.Save(ctx, flushed))

	pending, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Category: view.CategoryPending})
	require.NoError(t, err)
	require.Len(t, pending.Stocks, 1)
	assert.Equal(t, open.ID, pending.Stocks[0].ID)

	history, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Category: view.CategoryHistory})
	require.NoError(t, err)
	assert.Equal(t, int64(2), history.Total)
}

func TestGormStockRepository_ListSearchIsCaseInsensitive(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestStock(t, entityID)))

	page, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Search: "HAVRE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Search: "marseille"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestGormStockRepository_ListAppliesFilters(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	ethanol := newTestStock(t, entityID)
	require.NoError(t, repo.Save(ctx, ethanol))

	ester := newTestStock(t, entityID)
	ester.BiofuelCode = "EMHV"
	require.NoError(t, repo.Save(ctx, ester))

	page, err := repo.List(ctx, view.Query{
		EntityID: entityID, Year: 2024,
		Filters: view.FilterSet{view.FilterBiofuels: {"ETH"}},
	})
	require.NoError(t, err)
	require.Len(t, page.Stocks, 1)
	assert.Equal(t, ethanol.ID, page.Stocks[0].ID)
}

func TestGormStockRepository_Delete(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	doomed := newTestStock(t, entityID)
	kept := newTestStock(t, entityID)
	require.NoError(t, repo.SaveAll(ctx, []*stock.Stock{doomed, kept}))

	require.NoError(t, repo.Delete(ctx, doomed.ID))

	_, err := repo.FindByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}
