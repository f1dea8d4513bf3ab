package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/stock"
	"github.com/carbure/backend/internal/domain/view"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockRepository implements stock.Repository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock by its ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Stock, error) {
	var s stock.Stock
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByIDs finds all stocks matching the given ids
func (r *GormStockRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]stock.Stock, error) {
	var stocks []stock.Stock
	if len(ids) == 0 {
		return stocks, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindByParentLot finds the stocks derived from a lot
func (r *GormStockRepository) FindByParentLot(ctx context.Context, lotID uuid.UUID) ([]stock.Stock, error) {
	var stocks []stock.Stock
	if err := r.db.WithContext(ctx).Where("parent_lot_id = ?", lotID).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// List runs a scoped listing query
func (r *GormStockRepository) List(ctx context.Context, query view.Query) (*stock.ListPage, error) {
	scope := r.scoped(ctx, query)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	sortBy := ValidateSortField(query.SortBy, StockSortFields, "created_at")
	order := ValidateSortOrder(query.Order)

	var ids []uuid.UUID
	if err := scope.Session(&gorm.Session{}).
		Order(sortBy + " " + order).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	page := scope.Session(&gorm.Session{}).
		Order(sortBy + " " + order).
		Offset(query.FromIdx)
	if query.Limit > 0 {
		page = page.Limit(query.Limit)
	}
	var stocks []stock.Stock
	if err := page.Find(&stocks).Error; err != nil {
		return nil, err
	}

	return &stock.ListPage{
		Stocks:   stocks,
		IDs:      ids,
		Returned: int64(len(stocks)),
		Total:    total,
	}, nil
}

// Save creates or updates a stock
func (r *GormStockRepository) Save(ctx context.Context, s *stock.Stock) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Delete removes a stock position
func (r *GormStockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&stock.Stock{}, "id = ?", id).Error
}

// SaveAll persists a batch of stocks atomically
func (r *GormStockRepository) SaveAll(ctx context.Context, stocks []*stock.Stock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range stocks {
			if err := tx.Save(s).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// stockFilterColumns maps the well-known filter keys onto stock columns
var stockFilterColumns = map[string]string{
	view.FilterFeedstocks:    "feedstock_code",
	view.FilterBiofuels:      "biofuel_code",
	view.FilterCountries:     "country_of_origin",
	view.FilterSuppliers:     "supplier_name",
	view.FilterDeliverySites: "depot_name",
}

func (r *GormStockRepository) scoped(ctx context.Context, query view.Query) *gorm.DB {
	yearStart, yearEnd := yearBounds(query.Year)
	db := r.db.WithContext(ctx).Model(&stock.Stock{}).
		Where("entity_id = ? AND created_at >= ? AND created_at < ?", query.EntityID, yearStart, yearEnd)

	// pending positions still hold volume; history shows the emptied ones
	switch query.Category {
	case view.CategoryPending:
		db = db.Where("flushed = ? AND remaining_volume > 0", false)
	case view.CategoryHistory:
		db = db.Where("flushed = ? OR remaining_volume = 0", true)
	}

	for key, values := range query.Filters {
		if len(values) == 0 {
			continue
		}
		if column, ok := stockFilterColumns[key]; ok {
			db = db.Where(column+" IN ?", values)
		}
	}

	if query.Search != "" {
		like := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where(
			"LOWER(carbure_id) LIKE ? OR LOWER(biofuel_code) LIKE ? OR LOWER(feedstock_code) LIKE ? OR LOWER(supplier_name) LIKE ? OR LOWER(depot_name) LIKE ?",
			like, like, like, like, like,
		)
	}

	return db
}
