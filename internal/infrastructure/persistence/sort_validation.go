package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LotSortFields contains allowed sort fields for lot listings
var LotSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"carbure_id":        true,
	"period":            true,
	"biofuel_code":      true,
	"feedstock_code":    true,
	"country_of_origin": true,
	"volume":            true,
	"status":            true,
	"delivery_type":     true,
}

// StockSortFields contains allowed sort fields for stock listings
var StockSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"carbure_id":       true,
	"biofuel_code":     true,
	"feedstock_code":   true,
	"supplier_name":    true,
	"depot_name":       true,
	"remaining_volume": true,
	"ghg_reduction":    true,
}

// DeclarationSortFields contains allowed sort fields for declaration listings
var DeclarationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"period":     true,
	"declared":   true,
}
