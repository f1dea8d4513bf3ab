package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/carbure/backend/internal/domain/lot"
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

func setupLotTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&lot.Lot{}, &lot.Comment{}, &lot.DataError{}, &stock.Stock{})
	require.NoError(t, err)

	return db
}

func newTestLot(t *testing.T, entityID uuid.UUID, period valueobject.Period) *lot.Lot {
	t.Helper()
	qty := valueobject.MustNewQuantityVector(
		decimal.NewFromInt(1000),
		decimal.NewFromInt(790),
		decimal.NewFromInt(21000),
	)
	l, err := lot.NewLot(entityID, lot.GenerateCarbureID("FR", period), period,
		"ETH", "COLZA", "FR", qty, lot.GHG{EEC: decimal.NewFromFloat(20.5)})
	require.NoError(t, err)
	return l
}

// newReceivedLot builds a pending lot sent by a foreign supplier to clientID
func newReceivedLot(t *testing.T, clientID uuid.UUID, period valueobject.Period) *lot.Lot {
	t.Helper()
	l := newTestLot(t, uuid.New(), period)
	require.NoError(t, l.SetParties(lot.Party{}, lot.UnknownParty("Raffinerie SA"), lot.KnownParty(clientID)))
	require.NoError(t, l.Send(true, true))
	return l
}

func TestGormLotRepository_SaveAndFindByIDWithComments(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	l := newReceivedLot(t, entityID, valueobject.MustNewPeriod(2024, 3))
	require.NoError(t, l.Reject(entityID, "wrong delivery site"))
	require.NoError(t, repo.Save(ctx, l))

	found, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, lot.StatusRejected, found.Status)
	require.Len(t, found.Comments, 1)
	assert.Equal(t, "wrong delivery site", found.Comments[0].Message)
}

func TestGormLotRepository_FindByIDNotFound(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLotRepository_ListScopesBySide(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	period := valueobject.MustNewPeriod(2024, 3)

	draft := newTestLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, draft))

	sent := newTestLot(t, entityID, period)
	require.NoError(t, sent.Send(true, true))
	require.NoError(t, repo.Save(ctx, sent))

	received := newReceivedLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, received))

	// a transaction between two other parties never shows up
	foreign := newReceivedLot(t, uuid.New(), period)
	require.NoError(t, repo.Save(ctx, foreign))

	for _, tc := range []struct {
		status view.Status
		wantID uuid.UUID
	}{
		{view.StatusDrafts, draft.ID},
		{view.StatusIn, received.ID},
		{view.StatusOut, sent.ID},
	} {
		page, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: tc.status})
		require.NoError(t, err)
		require.Len(t, page.Lots, 1, "status %s", tc.status)
		assert.Equal(t, tc.wantID, page.Lots[0].ID)
		assert.Equal(t, int64(1), page.Total)
	}
}

func TestGormLotRepository_ListSearchIsCaseInsensitive(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	l := newTestLot(t, entityID, valueobject.MustNewPeriod(2024, 3))
	require.NoError(t, repo.Save(ctx, l))

	page, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: view.StatusDrafts, Search: "colza"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: view.StatusDrafts, Search: "soja"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestGormLotRepository_ListFiltersAndErrorCounters(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	period := valueobject.MustNewPeriod(2024, 3)

	clean := newTestLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, clean))

	flagged := newTestLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, flagged))
	finding := lot.NewDataError(flagged.ID, "MISSING_SUPPLIER", "Supplier is required", true)
	require.NoError(t, db.Create(&finding).Error)

	page, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: view.StatusDrafts})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(1), page.TotalErrors)
	require.Len(t, page.ErrorsByLot[flagged.ID], 1)

	page, err = repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: view.StatusDrafts, Invalid: true})
	require.NoError(t, err)
	require.Len(t, page.Lots, 1)
	assert.Equal(t, flagged.ID, page.Lots[0].ID)

	page, err = repo.List(ctx, view.Query{
		EntityID: entityID, Year: 2024, Status: view.StatusDrafts,
		Filters: view.FilterSet{view.FilterErrors: {"MISSING_SUPPLIER"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestGormLotRepository_ListCountsDeadlineLots(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	period := valueobject.MustNewPeriod(2024, 1)

	overdue := newTestLot(t, entityID, period)
	require.NoError(t, overdue.Send(true, true))
	require.NoError(t, repo.Save(ctx, overdue))

	settled := newTestLot(t, entityID, period)
	require.NoError(t, settled.Send(true, true))
	require.NoError(t, settled.Accept(lot.DeliveryBlending))
	require.NoError(t, repo.Save(ctx, settled))

	page, err := repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: view.StatusOut})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(1), page.TotalDeadline)

	page, err = repo.List(ctx, view.Query{EntityID: entityID, Year: 2024, Status: view.StatusOut, Deadline: true})
	require.NoError(t, err)
	require.Len(t, page.Lots, 1)
	assert.Equal(t, overdue.ID, page.Lots[0].ID)
}

func TestGormLotRepository_Snapshot(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	period := valueobject.MustNewPeriod(2024, 3)

	draft := newTestLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, draft))

	sent := newTestLot(t, entityID, period)
	require.NoError(t, sent.Send(true, true))
	require.NoError(t, repo.Save(ctx, sent))

	receivedPending := newReceivedLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, receivedPending))

	receivedAccepted := newReceivedLot(t, entityID, period)
	require.NoError(t, receivedAccepted.Accept(lot.DeliveryBlending))
	require.NoError(t, repo.Save(ctx, receivedAccepted))

	// custody positions are bucketed by creation date, not period
	open := stock.Stock{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(entityID),
		ParentLotID:        receivedAccepted.ID,
		BiofuelCode:        "ETH",
		FeedstockCode:      "COLZA",
		Initial:            receivedAccepted.Quantity,
		Remaining:          receivedAccepted.Quantity,
	}
	open.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&open).Error)

	emptied := open
	emptied.ID = uuid.New()
	emptied.Remaining = valueobject.ZeroQuantityVector()
	require.NoError(t, db.Create(&emptied).Error)

	snapshot, err := repo.Snapshot(ctx, entityID, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.DraftsImported)
	assert.Equal(t, int64(0), snapshot.DraftsStocks)
	assert.Equal(t, int64(1), snapshot.InPending)
	assert.Equal(t, int64(2), snapshot.InTotal)
	assert.Equal(t, int64(1), snapshot.OutPending)
	assert.Equal(t, int64(1), snapshot.OutTotal)
	assert.Equal(t, int64(2), snapshot.StocksTotal)
	assert.Equal(t, int64(1), snapshot.StocksPending)
}

func TestGormLotRepository_CountChildren(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	period := valueobject.MustNewPeriod(2024, 3)
	parent := newTestLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, parent))

	child := newTestLot(t, entityID, period)
	child.ParentLotID = &parent.ID
	require.NoError(t, repo.Save(ctx, child))

	// a deleted child no longer blocks the parent
	removed := newTestLot(t, entityID, period)
	removed.ParentLotID = &parent.ID
	require.NoError(t, removed.MarkDeleted())
	require.NoError(t, repo.Save(ctx, removed))

	count, err := repo.CountChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormLotRepository_CountPendingByPeriod(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	period := valueobject.MustNewPeriod(2024, 3)

	pending := newTestLot(t, entityID, period)
	require.NoError(t, pending.Send(true, true))
	require.NoError(t, repo.Save(ctx, pending))

	received := newReceivedLot(t, entityID, period)
	require.NoError(t, repo.Save(ctx, received))

	otherPeriod := newTestLot(t, entityID, valueobject.MustNewPeriod(2024, 4))
	require.NoError(t, otherPeriod.Send(true, true))
	require.NoError(t, repo.Save(ctx, otherPeriod))

	count, err := repo.CountPendingByPeriod(ctx, entityID, period)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormLotRepository_DeleteRemovesTrail(t *testing.T) {
	db := setupLotTestDB(t)
	repo := NewGormLotRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	l := newReceivedLot(t, entityID, valueobject.MustNewPeriod(2024, 3))
	require.NoError(t, l.Reject(entityID, "duplicate entry"))
	require.NoError(t, repo.Save(ctx, l))
	finding := lot.NewDataError(l.ID, "DUPLICATE", "Already declared", false)
	require.NoError(t, db.Create(&finding).Error)

	require.NoError(t, repo.Delete(ctx, l.ID))

	_, err := repo.FindByID(ctx, l.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var comments, findings int64
	require.NoError(t, db.Model(&lot.Comment{}).Where("lot_id = ?", l.ID).Count(&comments).Error)
	require.NoError(t, db.Model(&lot.DataError{}).Where("lot_id = ?", l.ID).Count(&findings).Error)
	assert.Zero(t, comments)
	assert.Zero(t, findings)
}
