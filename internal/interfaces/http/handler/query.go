package handler

import (
	"github.com/carbure/backend/internal/domain/view"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// listQuery binds the query-string shape shared by every listing endpoint
type listQuery struct {
	Year     int    `form:"year" binding:"required"`
	Status   string `form:"status" binding:"required"`
	Category string `form:"category"`
	Search   string `form:"query"`
	Invalid  bool   `form:"invalid"`
	Deadline bool   `form:"deadline"`
	FromIdx  int    `form:"from_idx"`
	Limit    int    `form:"limit"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order"`
}

// filterKeys are the query-string parameters accepted as listing filters,
// each repeatable
var filterKeys = []string{
	view.FilterFeedstocks,
	view.FilterBiofuels,
	view.FilterPeriods,
	view.FilterCountries,
	view.FilterProductionSites,
	view.FilterDeliverySites,
	view.FilterClients,
	view.FilterSuppliers,
	view.FilterDeliveryTypes,
	view.FilterErrors,
}

// parseFilters collects the repeatable filter parameters into a FilterSet
func parseFilters(c *gin.Context) view.FilterSet {
	filters := view.NewFilterSet()
	for _, key := range filterKeys {
		if values := c.QueryArray(key); len(values) > 0 {
			filters[key] = values
		}
	}
	return filters
}

// parseListQuery builds the derived query object for a listing request
func parseListQuery(c *gin.Context, entityID uuid.UUID) (view.Query, error) {
	var params listQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		return view.Query{}, err
	}

	return view.Query{
		EntityID: entityID,
		Year:     params.Year,
		Status:   view.Status(params.Status),
		Category: view.Category(params.Category),
		Search:   params.Search,
		Invalid:  params.Invalid,
		Deadline: params.Deadline,
		FromIdx:  params.FromIdx,
		Limit:    params.Limit,
		SortBy:   params.SortBy,
		Order:    params.Order,
		Filters:  parseFilters(c),
	}, nil
}
