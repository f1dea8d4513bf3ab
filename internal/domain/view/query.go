package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Well-known filter keys accepted on listing queries
const (
	FilterFeedstocks      = "feedstocks"
	FilterBiofuels        = "biofuels"
	FilterPeriods         = "periods"
	FilterCountries       = "countries_of_origin"
	FilterProductionSites = "production_sites"
	FilterDeliverySites   = "delivery_sites"
	FilterClients         = "clients"
	FilterSuppliers       = "suppliers"
	FilterDeliveryTypes   = "delivery_types"
	FilterErrors          = "errors"
)

// FilterSet maps a filter key to its ordered selected values
type FilterSet map[string][]string

// NewFilterSet returns an empty filter selection
func NewFilterSet() FilterSet {
	return make(FilterSet)
}

// Clone returns a deep copy of the filter set
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, values := range f {
		out[k] = append([]string(nil), values...)
	}
	return out
}

// IsEmpty returns true when no filter carries a value
func (f FilterSet) IsEmpty() bool {
	for _, values := range f {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Equal compares two filter sets by value, order-sensitively per key
func (f FilterSet) Equal(other FilterSet) bool {
	return f.canonical() == other.canonical()
}

// canonical renders the filter set deterministically: keys sorted, values in
// their selected order. Used for value equality and for the scope identity of
// in-flight requests, so that a reordered map never looks like a new scope.
func (f FilterSet) canonical() string {
	keys := make([]string, 0, len(f))
	for k, values := range f {
		if len(values) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(f[k], ","))
		b.WriteByte(';')
	}
	return b.String()
}

// Query is the derived query object sent on every list/summary call. It is
// always rebuilt from the coordinator's current fields, never cached.
type Query struct {
	EntityID uuid.UUID `json:"entity_id"`
	Year     int       `json:"year"`
	Status   Status    `json:"status"`
	Category Category  `json:"category"`
	Search   string    `json:"query"`
	Invalid  bool      `json:"invalid"`
	Deadline bool      `json:"deadline"`
	FromIdx  int       `json:"from_idx"`
	Limit    int       `json:"limit"`
	SortBy   string    `json:"sort_by"`
	Order    string    `json:"order"`
	Filters  FilterSet `json:"filters"`
}

// History reports whether the query targets settled records
func (q Query) History() bool {
	return q.Category == CategoryHistory
}

// Correction reports whether the query targets records under correction
func (q Query) Correction() bool {
	return q.Category == CategoryCorrection
}

// ScopeKey is the value identity of the query. A response is applied to state
// only when the scope key it was issued under still matches the current one;
// anything else is a stale in-flight result and is discarded.
func (q Query) ScopeKey() string {
	return fmt.Sprintf("%s|%d|%s|%s|q=%s|inv=%t|dl=%t|from=%d|lim=%d|sort=%s:%s|%s",
		q.EntityID, q.Year, q.Status, q.Category,
		q.Search, q.Invalid, q.Deadline,
		q.FromIdx, q.Limit, q.SortBy, q.Order,
		q.Filters.canonical(),
	)
}
