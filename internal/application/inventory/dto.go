package inventory

import (
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/google/uuid"
)

// InventoryRecordResponse represents a stock aggregate in API responses
type InventoryRecordResponse struct {
	ID             uuid.UUID `json:"id"`
	LocationID     uuid.UUID `json:"location_id"`
	VariantID      uuid.UUID `json:"variant_id"`
	QuantityOnHand int64     `json:"quantity_on_hand"`
	ReorderLevel   int64     `json:"reorder_level"`
	NeedsReorder   bool      `json:"needs_reorder"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToInventoryRecordResponse converts a domain record to a response
func ToInventoryRecordResponse(r *inventory.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:             r.ID,
		LocationID:     r.LocationID,
		VariantID:      r.VariantID,
		QuantityOnHand: r.QuantityOnHand,
		ReorderLevel:   r.ReorderLevel,
		NeedsReorder:   r.NeedsReorder(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	LocationID    uuid.UUID  `json:"location_id"`
	VariantID     uuid.UUID  `json:"variant_id"`
	MovementType  string     `json:"movement_type"`
	Quantity      int64      `json:"quantity"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain entry to a response
func ToMovementResponse(m *inventory.MovementEntry) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		LocationID:    m.LocationID,
		VariantID:     m.VariantID,
		MovementType:  string(m.MovementType),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	}
}

// ListInventoryRequest filters inventory records
type ListInventoryRequest struct {
	LocationID   *uuid.UUID
	VariantID    *uuid.UUID
	BelowReorder bool
	OrderBy      string
	OrderDir     string
	Limit        int
	Offset       int
}

// ListMovementsRequest filters ledger entries
type ListMovementsRequest struct {
	LocationID    *uuid.UUID
	VariantID     *uuid.UUID
	ReferenceType string
	ReferenceID   *uuid.UUID
	MovementType  string
	Limit         int
	Offset        int
}

// AdjustInventoryRequest records an administrative stock change
type AdjustInventoryRequest struct {
	LocationID   uuid.UUID
	VariantID    uuid.UUID
	Quantity     int64
	MovementType string
	Reason       string
}

// DriftReportResponse represents a drift finding in API responses
type DriftReportResponse struct {
	ID               uuid.UUID `json:"id"`
	RunID            uuid.UUID `json:"run_id"`
	LocationID       uuid.UUID `json:"location_id"`
	VariantID        uuid.UUID `json:"variant_id"`
	RecordedQuantity int64     `json:"recorded_quantity"`
	LedgerQuantity   int64     `json:"ledger_quantity"`
	Difference       int64     `json:"difference"`
	Corrected        bool      `json:"corrected"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToDriftReportResponse converts a domain report to a response
func ToDriftReportResponse(r *inventory.DriftReport) DriftReportResponse {
	return DriftReportResponse{
		ID:               r.ID,
		RunID:            r.RunID,
		LocationID:       r.LocationID,
		VariantID:        r.VariantID,
		RecordedQuantity: r.RecordedQuantity,
		LedgerQuantity:   r.LedgerQuantity,
		Difference:       r.Difference,
		Corrected:        r.Corrected,
		CreatedAt:        r.CreatedAt,
	}
}
