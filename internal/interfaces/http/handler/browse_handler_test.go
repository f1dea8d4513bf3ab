package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carbure/backend/internal/application/browse"
	settingsapp "github.com/carbure/backend/internal/application/settings"
	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/settings"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// immediateScheduler runs deferred callbacks synchronously, which keeps the
// coordinator's route writes deterministic in tests
type immediateScheduler struct{}

func (immediateScheduler) Defer(fn func()) {
	if fn != nil {
		fn()
	}
}

type fakeStockRepo struct {
	stocks map[uuid.UUID]*stock.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[uuid.UUID]*stock.Stock)}
}

func (r *fakeStockRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Stock, error) {
	s, ok := r.stocks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeStockRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]stock.Stock, error) {
	var out []stock.Stock
	for _, id := range ids {
		if s, ok := r.stocks[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindByParentLot(_ context.Context, _ uuid.UUID) ([]stock.Stock, error) {
	return nil, nil
}

func (r *fakeStockRepo) List(_ context.Context, _ view.Query) (*stock.ListPage, error) {
	page := &stock.ListPage{}
	for _, s := range r.stocks {
		page.Stocks = append(page.Stocks, *s)
		page.IDs = append(page.IDs, s.ID)
	}
	page.Total = int64(len(page.Stocks))
	page.Returned = page.Total
	return page, nil
}

func (r *fakeStockRepo) Save(_ context.Context, s *stock.Stock) error {
	r.stocks[s.ID] = s
	return nil
}

func (r *fakeStockRepo) SaveAll(_ context.Context, stocks []*stock.Stock) error {
	for _, s := range stocks {
		r.stocks[s.ID] = s
	}
	return nil
}

func (r *fakeStockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.stocks, id)
	return nil
}

type fakeSettingsRepo struct {
	byEntity map[uuid.UUID]*settings.EntitySettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{byEntity: make(map[uuid.UUID]*settings.EntitySettings)}
}

func (r *fakeSettingsRepo) FindByEntity(_ context.Context, entityID uuid.UUID) (*settings.EntitySettings, error) {
	s, ok := r.byEntity[entityID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *settings.EntitySettings) error {
	r.byEntity[s.EntityID] = s
	return nil
}

type browseFixture struct {
	engine       *gin.Engine
	lotRepo      *fakeLotRepo
	settingsRepo *fakeSettingsRepo
	entityID     uuid.UUID
}

func newBrowseFixture(t *testing.T) *browseFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lotRepo := newFakeLotRepo()
	stockRepo := newFakeStockRepo()
	settingsRepo := newFakeSettingsRepo()

	gateway := browse.NewLocalGateway(lotRepo, stockRepo, settingsRepo)
	limits := settingsapp.NewService(settingsRepo)
	factory := func() *browse.Coordinator {
		return browse.NewCoordinator(gateway, immediateScheduler{}, limits, nil, zap.NewNop())
	}

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewBrowseHandler(factory).RegisterRoutes(api)

	return &browseFixture{
		engine:       engine,
		lotRepo:      lotRepo,
		settingsRepo: settingsRepo,
		entityID:     uuid.New(),
	}
}

// seedLot stores one ethanol lot for the fixture entity
func (f *browseFixture) seedLot(t *testing.T) *lot.Lot {
	t.Helper()
	period := valueobject.MustNewPeriod(2024, 3)
	qty := valueobject.MustNewQuantityVector(
		decimal.NewFromInt(1000),
		decimal.NewFromInt(790),
		decimal.NewFromInt(21000),
	)
	l, err := lot.NewLot(f.entityID, lot.GenerateCarbureID("FR", period), period,
		"ETH", "COLZA", "FR", qty, lot.GHG{EEC: decimal.NewFromFloat(20.5)})
	require.NoError(t, err)
	require.NoError(t, f.lotRepo.Save(context.Background(), l))
	return l
}

func (f *browseFixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(EntityIDHeader, f.entityID.String())
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestBrowseHandler_LotsReconcilesScope(t *testing.T) {
	f := newBrowseFixture(t)

	w := f.get("/api/v1/browse/lots?year=2024&status=in")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.get("/api/v1/browse/state")
	var resp struct {
		Data browseState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.entityID, resp.Data.EntityID)
	assert.Equal(t, 2024, resp.Data.Year)
	assert.Equal(t, view.StatusIn, resp.Data.Status)
	assert.Equal(t, settings.DefaultPageLimit, resp.Data.Limit)
}

func TestBrowseHandler_InvalidStatusRejected(t *testing.T) {
	f := newBrowseFixture(t)

	w := f.get("/api/v1/browse/lots?year=2024&status=bogus")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS")
}

func TestBrowseHandler_LimitIsPersisted(t *testing.T) {
	f := newBrowseFixture(t)

	w := f.get("/api/v1/browse/lots?year=2024&status=drafts&limit=50")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	prefs, err := f.settingsRepo.FindByEntity(context.Background(), f.entityID)
	require.NoError(t, err)
	assert.Equal(t, 50, prefs.PageLimit)
}

func TestBrowseHandler_SnapshotRefreshes(t *testing.T) {
	f := newBrowseFixture(t)

	w := f.get("/api/v1/browse/snapshot?year=2024&status=in")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data view.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2024, resp.Data.Year)
}

func TestBrowseHandler_SummaryHonorsSelection(t *testing.T) {
	f := newBrowseFixture(t)
	first := f.seedLot(t)
	f.seedLot(t)

	w := f.get("/api/v1/browse/summary?year=2024&status=in&selection=" + first.ID.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data browse.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Count, "only the selected row is aggregated")
}

func TestBrowseHandler_SummaryWholeScopeWithoutSelection(t *testing.T) {
	f := newBrowseFixture(t)
	f.seedLot(t)
	f.seedLot(t)

	w := f.get("/api/v1/browse/summary?year=2024&status=in")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data browse.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Data.Count)
}

func TestBrowseHandler_MissingEntityHeader(t *testing.T) {
	f := newBrowseFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/browse/lots?year=2024&status=in", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_ENTITY")
}
