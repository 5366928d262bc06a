package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":                       "DESC",
		"asc":                    "ASC",
		"  ASC ":                 "ASC",
		"desc":                   "DESC",
		"sideways":               "DESC",
		"ASC; DELETE FROM x;--":  "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"blank falls back", "  ", "created_at"},
		{"whitelisted column", "quantity_on_hand", "quantity_on_hand"},
		{"surrounding space is trimmed", " reorder_level ", "reorder_level"},
		{"unknown column falls back", "cost", "created_at"},
		{"columns are case sensitive", "VARIANT_ID", "created_at"},
		{"expressions are rejected", "variant_id, (SELECT 1)", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.input, InventoryRecordSortFields, "created_at"))
		})
	}
}

func TestSortFieldWhitelistsAllowCreatedAt(t *testing.T) {
	for name, fields := range map[string]map[string]bool{
		"purchase orders":   PurchaseOrderSortFields,
		"inventory records": InventoryRecordSortFields,
		"drift reports":     DriftReportSortFields,
	} {
		assert.True(t, fields["created_at"], "%s must allow the default sort column", name)
	}
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "po.created_at DESC, po.id DESC",
		orderClause("", "", PurchaseOrderSortFields, "po"))
	assert.Equal(t, "po_number ASC, id ASC",
		orderClause("po_number", "asc", PurchaseOrderSortFields, ""))
	assert.Equal(t, "created_at DESC, id DESC",
		orderClause("po_number; DROP TABLE purchase_orders", "asc; --", PurchaseOrderSortFields, ""))
}
