package declaration

import (
	"context"
	"testing"

	"github.com/carbure/backend/internal/domain/declaration"
	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== fakes ====================

type declKey struct {
	entityID uuid.UUID
	period   valueobject.Period
}

type fakeDeclarationRepo struct {
	declarations map[declKey]declaration.Declaration
}

func newFakeDeclarationRepo() *fakeDeclarationRepo {
	return &fakeDeclarationRepo{declarations: make(map[declKey]declaration.Declaration)}
}

func (r *fakeDeclarationRepo) FindByPeriod(_ context.Context, entityID uuid.UUID, period valueobject.Period) (*declaration.Declaration, error) {
	d, ok := r.declarations[declKey{entityID, period}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &d, nil
}

func (r *fakeDeclarationRepo) FindByYear(_ context.Context, entityID uuid.UUID, year int) ([]declaration.Declaration, error) {
	var out []declaration.Declaration
	for key, d := range r.declarations {
		if key.entityID == entityID && key.period.Year() == year {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeclarationRepo) Save(_ context.Context, d *declaration.Declaration) error {
	r.declarations[declKey{d.EntityID, d.Period}] = *d
	return nil
}

type fakeLotRepo struct {
	lots map[uuid.UUID]lot.Lot
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{lots: make(map[uuid.UUID]lot.Lot)}
}

func (r *fakeLotRepo) FindByID(_ context.Context, id uuid.UUID) (*lot.Lot, error) {
	l, ok := r.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &l, nil
}

func (r *fakeLotRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]lot.Lot, error) {
	out := make([]lot.Lot, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.lots[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) FindByParentTransformation(context.Context, uuid.UUID) ([]lot.Lot, error) {
	return nil, nil
}

func (r *fakeLotRepo) FindByPeriod(_ context.Context, entityID uuid.UUID, period valueobject.Period) ([]lot.Lot, error) {
	var out []lot.Lot
	for _, l := range r.lots {
		if l.Period != period {
			continue
		}
		if l.EntityID == entityID || (l.Client.EntityID != nil && *l.Client.EntityID == entityID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) List(context.Context, view.Query) (*lot.ListPage, error) {
	return &lot.ListPage{}, nil
}

func (r *fakeLotRepo) Snapshot(context.Context, uuid.UUID, int) (*view.Snapshot, error) {
	return &view.Snapshot{}, nil
}

func (r *fakeLotRepo) CountChildren(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeLotRepo) CountPendingByPeriod(_ context.Context, entityID uuid.UUID, period valueobject.Period) (int64, error) {
	var pending int64
	for _, l := range r.lots {
		if l.Period == period && l.IsPending() &&
			(l.EntityID == entityID || (l.Client.EntityID != nil && *l.Client.EntityID == entityID)) {
			pending++
		}
	}
	return pending, nil
}

func (r *fakeLotRepo) ErrorsForLots(context.Context, []uuid.UUID) (map[uuid.UUID][]lot.DataError, error) {
	return nil, nil
}

func (r *fakeLotRepo) Save(_ context.Context, l *lot.Lot) error {
	r.lots[l.ID] = *l
	return nil
}

func (r *fakeLotRepo) SaveAll(_ context.Context, lots []*lot.Lot) error {
	for _, l := range lots {
		r.lots[l.ID] = *l
	}
	return nil
}

func (r *fakeLotRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.lots, id)
	return nil
}

// ==================== helpers ====================

const testPeriod = 202403

func createTestService(t *testing.T) (*Service, *fakeLotRepo, *fakeDeclarationRepo, uuid.UUID) {
	t.Helper()
	lots := newFakeLotRepo()
	declarations := newFakeDeclarationRepo()
	return NewService(declarations, lots, zap.NewNop()), lots, declarations, uuid.New()
}

// addLot seeds one accepted or pending lot owned by the entity
func addLot(t *testing.T, repo *fakeLotRepo, entityID uuid.UUID, accept bool) *lot.Lot {
	t.Helper()

	qty := valueobject.MustNewQuantityVector(
		decimal.NewFromInt(1000), decimal.NewFromInt(790), decimal.NewFromInt(21000))
	l, err := lot.NewLot(entityID, "FR202403SEED0001", valueobject.Period(testPeriod),
		"ETH", "COLZA", "FR", qty, lot.GHG{EEC: decimal.NewFromFloat(20.5)})
	require.NoError(t, err)
	require.NoError(t, l.SetParties(
		lot.UnknownParty("Producer SA"),
		lot.UnknownParty("Alpha Oil"),
		lot.UnknownParty("Gamma Dist"),
	))
	require.NoError(t, l.Send(true, true))
	if accept {
		require.NoError(t, l.Accept(lot.DeliveryBlending))
	}
	l.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), l))
	return l
}

// ============================================
// Summary Tests
// ============================================

func TestGetSummary_CreatesAndCounts(t *testing.T) {
	service, lots, _, entityID := createTestService(t)
	addLot(t, lots, entityID, true)
	addLot(t, lots, entityID, false)

	summary, err := service.GetSummary(context.Background(), entityID, testPeriod)

	require.NoError(t, err)
	assert.Equal(t, testPeriod, summary.Period)
	assert.Equal(t, int64(2), summary.OutCount)
	assert.Equal(t, int64(1), summary.PendingCount)
	assert.False(t, summary.Declared)
}

func TestGetSummary_InvalidPeriod(t *testing.T) {
	service, _, _, entityID := createTestService(t)

	_, err := service.GetSummary(context.Background(), entityID, 202413)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_PERIOD")
}

// ============================================
// Validation Tests
// ============================================

func TestValidate_RefusedWhilePending(t *testing.T) {
	service, lots, _, entityID := createTestService(t)
	addLot(t, lots, entityID, false)

	_, _, err := service.Validate(context.Background(), entityID, testPeriod)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PERIOD_HAS_PENDING_LOTS")
}

func TestValidate_FreezesPeriodLots(t *testing.T) {
	service, lots, _, entityID := createTestService(t)
	accepted := addLot(t, lots, entityID, true)

	summary, scopes, err := service.Validate(context.Background(), entityID, testPeriod)

	require.NoError(t, err)
	assert.True(t, summary.Declared)
	assert.NotNil(t, summary.DeclaredAt)
	assert.Len(t, scopes, 4)

	frozen := lots.lots[accepted.ID]
	assert.Equal(t, lot.StatusFrozen, frozen.Status)
}

func TestValidate_AlreadyDeclared(t *testing.T) {
	service, lots, _, entityID := createTestService(t)
	addLot(t, lots, entityID, true)
	_, _, err := service.Validate(context.Background(), entityID, testPeriod)
	require.NoError(t, err)

	_, _, err = service.Validate(context.Background(), entityID, testPeriod)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALREADY_DECLARED")
}

// ============================================
// Invalidation Tests
// ============================================

func TestInvalidate_ThawsFrozenLots(t *testing.T) {
	service, lots, _, entityID := createTestService(t)
	accepted := addLot(t, lots, entityID, true)
	_, _, err := service.Validate(context.Background(), entityID, testPeriod)
	require.NoError(t, err)

	summary, scopes, err := service.Invalidate(context.Background(), entityID, testPeriod)

	require.NoError(t, err)
	assert.False(t, summary.Declared)
	assert.Len(t, scopes, 4)

	thawed := lots.lots[accepted.ID]
	assert.Equal(t, lot.StatusAccepted, thawed.Status)
}

func TestInvalidate_NeverDeclared(t *testing.T) {
	service, _, _, entityID := createTestService(t)

	_, _, err := service.Invalidate(context.Background(), entityID, testPeriod)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
