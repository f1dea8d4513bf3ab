package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLotRepository implements lot.Repository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	var l lot.Lot
	if err := r.db.WithContext(ctx).
		Preload("Comments").
		First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByIDs finds all lots matching the given ids
func (r *GormLotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]lot.Lot, error) {
	var lots []lot.Lot
	if len(ids) == 0 {
		return lots, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Comments").
		Where("id IN ?", ids).
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByParentTransformation finds the output lots of a transformation
func (r *GormLotRepository) FindByParentTransformation(ctx context.Context, transformationID uuid.UUID) ([]lot.Lot, error) {
	var lots []lot.Lot
	if err := r.db.WithContext(ctx).
		Where("parent_transformation_id = ?", transformationID).
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByPeriod finds every lot an entity is involved in inside one period,
// on either side of the transaction
func (r *GormLotRepository) FindByPeriod(ctx context.Context, entityID uuid.UUID, period valueobject.Period) ([]lot.Lot, error) {
	var lots []lot.Lot
	if err := r.db.WithContext(ctx).
		Where("period = ? AND status <> ?", period, lot.StatusDeleted).
		Where("entity_id = ? OR client_entity_id = ?", entityID, entityID).
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// List runs a scoped listing query and returns the page plus the counters
// shown on the listing chrome
func (r *GormLotRepository) List(ctx context.Context, query view.Query) (*lot.ListPage, error) {
	scope := r.scoped(ctx, query)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	sortBy := ValidateSortField(query.SortBy, LotSortFields, "created_at")
	order := ValidateSortOrder(query.Order)

	var ids []uuid.UUID
	if err := scope.Session(&gorm.Session{}).
		Order(sortBy + " " + order).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	page := scope.Session(&gorm.Session{}).
		Preload("Comments").
		Order(sortBy + " " + order).
		Offset(query.FromIdx)
	if query.Limit > 0 {
		page = page.Limit(query.Limit)
	}
	var lots []lot.Lot
	if err := page.Find(&lots).Error; err != nil {
		return nil, err
	}

	pageIDs := make([]uuid.UUID, 0, len(lots))
	for i := range lots {
		pageIDs = append(pageIDs, lots[i].ID)
	}
	errorsByLot, err := r.ErrorsForLots(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	var totalErrors int64
	if err := scope.Session(&gorm.Session{}).
		Where("EXISTS (SELECT 1 FROM data_errors WHERE data_errors.lot_id = lots.id)").
		Count(&totalErrors).Error; err != nil {
		return nil, err
	}

	var totalDeadline int64
	if err := scope.Session(&gorm.Session{}).
		Where("status IN ? AND period <= ?",
			[]lot.Status{lot.StatusDraft, lot.StatusPending}, deadlinePeriod(time.Now())).
		Count(&totalDeadline).Error; err != nil {
		return nil, err
	}

	return &lot.ListPage{
		Lots:          lots,
		IDs:           ids,
		Total:         total,
		ErrorsByLot:   errorsByLot,
		TotalErrors:   totalErrors,
		TotalDeadline: totalDeadline,
	}, nil
}

// Snapshot computes the per-status/category counts for one entity and year
func (r *GormLotRepository) Snapshot(ctx context.Context, entityID uuid.UUID, year int) (*view.Snapshot, error) {
	snapshot := &view.Snapshot{Year: year}
	db := r.db.WithContext(ctx)

	drafts := func(stockDrafts bool) *gorm.DB {
		q := db.Model(&lot.Lot{}).
			Where("entity_id = ? AND year = ? AND status = ?", entityID, year, lot.StatusDraft)
		if stockDrafts {
			return q.Where("parent_stock_id IS NOT NULL")
		}
		return q.Where("parent_stock_id IS NULL")
	}
	if err := drafts(false).Count(&snapshot.DraftsImported).Error; err != nil {
		return nil, err
	}
	if err := drafts(true).Count(&snapshot.DraftsStocks).Error; err != nil {
		return nil, err
	}

	in := func() *gorm.DB {
		return db.Model(&lot.Lot{}).
			Where("client_entity_id = ? AND year = ?", entityID, year).
			Where("status NOT IN ?", []lot.Status{lot.StatusDraft, lot.StatusDeleted})
	}
	if err := in().Where("status = ?", lot.StatusPending).Count(&snapshot.InPending).Error; err != nil {
		return nil, err
	}
	if err := in().Where("correction_status = ?", lot.CorrectionInCorrection).Count(&snapshot.InToFix).Error; err != nil {
		return nil, err
	}
	if err := in().Count(&snapshot.InTotal).Error; err != nil {
		return nil, err
	}

	out := func() *gorm.DB {
		return db.Model(&lot.Lot{}).
			Where("entity_id = ? AND year = ?", entityID, year).
			Where("status NOT IN ?", []lot.Status{lot.StatusDraft, lot.StatusDeleted})
	}
	if err := out().Where("status = ?", lot.StatusPending).Count(&snapshot.OutPending).Error; err != nil {
		return nil, err
	}
	if err := out().Where("correction_status = ?", lot.CorrectionInCorrection).Count(&snapshot.OutToFix).Error; err != nil {
		return nil, err
	}
	if err := out().Count(&snapshot.OutTotal).Error; err != nil {
		return nil, err
	}

	yearStart, yearEnd := yearBounds(year)
	stocks := db.Table("stocks").
		Where("entity_id = ? AND created_at >= ? AND created_at < ?", entityID, yearStart, yearEnd)
	if err := stocks.Session(&gorm.Session{}).Count(&snapshot.StocksTotal).Error; err != nil {
		return nil, err
	}
	if err := stocks.Session(&gorm.Session{}).
		Where("flushed = ? AND remaining_volume > 0", false).
		Count(&snapshot.StocksPending).Error; err != nil {
		return nil, err
	}

	return snapshot, nil
}

// CountChildren counts the lots that reference this lot as their parent
func (r *GormLotRepository) CountChildren(ctx context.Context, lotID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&lot.Lot{}).
		Where("parent_lot_id = ? AND status <> ?", lotID, lot.StatusDeleted).
		Count(&count).Error
	return count, err
}

// CountPendingByPeriod counts the not-yet-resolved lots gating a declaration
func (r *GormLotRepository) CountPendingByPeriod(ctx context.Context, entityID uuid.UUID, period valueobject.Period) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&lot.Lot{}).
		Where("period = ? AND status = ?", period, lot.StatusPending).
		Where("entity_id = ? OR client_entity_id = ?", entityID, entityID).
		Count(&count).Error
	return count, err
}

// ErrorsForLots loads the data errors attached to the given lots
func (r *GormLotRepository) ErrorsForLots(ctx context.Context, lotIDs []uuid.UUID) (map[uuid.UUID][]lot.DataError, error) {
	out := make(map[uuid.UUID][]lot.DataError)
	if len(lotIDs) == 0 {
		return out, nil
	}
	var findings []lot.DataError
	if err := r.db.WithContext(ctx).
		Where("lot_id IN ?", lotIDs).
		Order("created_at ASC").
		Find(&findings).Error; err != nil {
		return nil, err
	}
	for _, f := range findings {
		out[f.LotID] = append(out[f.LotID], f)
	}
	return out, nil
}

// Save creates or updates a lot with its comment trail
func (r *GormLotRepository) Save(ctx context.Context, l *lot.Lot) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(l).Error
}

// SaveAll persists a batch of lots atomically; either every lot is saved or
// none is
func (r *GormLotRepository) SaveAll(ctx context.Context, lots []*lot.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, l := range lots {
			if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(l).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a lot row with its comments and findings
func (r *GormLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", id).Delete(&lot.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lot_id = ?", id).Delete(&lot.DataError{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lot.Lot{}, "id = ?", id).Error
	})
}

// scoped translates a listing query into its SQL scope: the status tab picks
// the side of the custody flow, the category narrows the lifecycle slice, and
// the filter set maps onto indexed columns
func (r *GormLotRepository) scoped(ctx context.Context, query view.Query) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&lot.Lot{}).
		Where("year = ? AND status <> ?", query.Year, lot.StatusDeleted)

	switch query.Status {
	case view.StatusDrafts:
		db = db.Where("entity_id = ? AND status = ?", query.EntityID, lot.StatusDraft)
		if query.Category == view.CategoryStocks {
			db = db.Where("parent_stock_id IS NOT NULL")
		} else {
			db = db.Where("parent_stock_id IS NULL")
		}
	case view.StatusIn:
		db = db.Where("client_entity_id = ? AND status <> ?", query.EntityID, lot.StatusDraft)
		db = applyLotCategory(db, query.Category)
	default: // view.StatusOut
		db = db.Where("entity_id = ? AND status <> ?", query.EntityID, lot.StatusDraft)
		db = applyLotCategory(db, query.Category)
	}

	db = applyLotFilters(db, query.Filters)

	if query.Search != "" {
		like := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where(
			"LOWER(carbure_id) LIKE ? OR LOWER(biofuel_code) LIKE ? OR LOWER(feedstock_code) LIKE ? OR LOWER(supplier_name) LIKE ? OR LOWER(client_name) LIKE ?",
			like, like, like, like, like,
		)
	}
	if query.Invalid {
		db = db.Where("EXISTS (SELECT 1 FROM data_errors WHERE data_errors.lot_id = lots.id)")
	}
	if query.Deadline {
		db = db.Where("status IN ? AND period <= ?",
			[]lot.Status{lot.StatusDraft, lot.StatusPending}, deadlinePeriod(time.Now()))
	}

	return db
}

func applyLotCategory(db *gorm.DB, category view.Category) *gorm.DB {
	switch category {
	case view.CategoryPending:
		return db.Where("status IN ?", []lot.Status{lot.StatusPending, lot.StatusRejected})
	case view.CategoryCorrection:
		return db.Where("correction_status = ?", lot.CorrectionInCorrection)
	case view.CategoryHistory:
		return db.Where("status IN ?", []lot.Status{lot.StatusAccepted, lot.StatusFrozen})
	default:
		return db
	}
}

// lotFilterColumns maps the well-known filter keys onto lot columns
var lotFilterColumns = map[string]string{
	view.FilterFeedstocks:      "feedstock_code",
	view.FilterBiofuels:        "biofuel_code",
	view.FilterPeriods:         "period",
	view.FilterCountries:       "country_of_origin",
	view.FilterProductionSites: "production_site_name",
	view.FilterDeliverySites:   "delivery_site_name",
	view.FilterClients:         "client_name",
	view.FilterSuppliers:       "supplier_name",
	view.FilterDeliveryTypes:   "delivery_type",
}

func applyLotFilters(db *gorm.DB, filters view.FilterSet) *gorm.DB {
	for key, values := range filters {
		if len(values) == 0 {
			continue
		}
		if key == view.FilterErrors {
			db = db.Where(
				"EXISTS (SELECT 1 FROM data_errors WHERE data_errors.lot_id = lots.id AND data_errors.code IN ?)",
				values,
			)
			continue
		}
		if column, ok := lotFilterColumns[key]; ok {
			db = db.Where(column+" IN ?", values)
		}
	}
	return db
}

// deadlinePeriod returns the latest period whose declaration deadline has
// come due: lots of the previous month (and older) must be resolved now
func deadlinePeriod(now time.Time) valueobject.Period {
	previous := now.AddDate(0, -1, 0)
	return valueobject.Period(previous.Year()*100 + int(previous.Month()))
}

// yearBounds returns the half-open UTC interval [Jan 1 year, Jan 1 year+1)
func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
