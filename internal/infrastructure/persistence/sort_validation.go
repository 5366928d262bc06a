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

// orderClause builds a whitelisted ORDER BY expression, qualifying the column with
// tableAlias when one is given. The id tiebreaker keeps offset paging stable.
func orderClause(orderBy, orderDir string, allowed map[string]bool, tableAlias string) string {
	field := ValidateSortField(orderBy, allowed, "created_at")
	dir := ValidateSortOrder(orderDir)
	prefix := ""
	if tableAlias != "" {
		prefix = tableAlias + "."
	}
	return prefix + field + " " + dir + ", " + prefix + "id " + dir
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"po_number":          true,
	"supplier_id":        true,
	"location_id":        true,
	"status":             true,
	"total_cost":         true,
	"shipping_cost":      true,
	"tipping_cost":       true,
	"miscellaneous_cost": true,
	"reconciled_at":      true,
}

// InventoryRecordSortFields contains allowed sort fields for inventory records
var InventoryRecordSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"location_id":      true,
	"variant_id":       true,
	"quantity_on_hand": true,
	"reorder_level":    true,
}

// DriftReportSortFields contains allowed sort fields for drift reports
var DriftReportSortFields = map[string]bool{
	"created_at": true,
	"difference": true,
	"run_id":     true,
}
