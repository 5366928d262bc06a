package inventory

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeInventoryAdjusted      = "InventoryAdjusted"
	EventTypeInventoryDriftDetected = "InventoryDriftDetected"

	AggregateTypeInventoryRecord = "InventoryRecord"
)

// InventoryAdjustedEvent is raised after an administrative adjustment
type InventoryAdjustedEvent struct {
	shared.BaseDomainEvent
	LocationID uuid.UUID `json:"location_id"`
	VariantID  uuid.UUID `json:"variant_id"`
	Delta      int64     `json:"delta"`
	Reason     string    `json:"reason"`
	MovementID uuid.UUID `json:"movement_id"`
}

func (e *InventoryAdjustedEvent) EventType() string { return EventTypeInventoryAdjusted }

// NewInventoryAdjustedEvent creates the event for an applied adjustment movement
func NewInventoryAdjustedEvent(m *MovementEntry, reason string) *InventoryAdjustedEvent {
	return &InventoryAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryAdjusted, AggregateTypeInventoryRecord, m.VariantID),
		LocationID:      m.LocationID,
		VariantID:       m.VariantID,
		Delta:           m.Quantity,
		Reason:          reason,
		MovementID:      m.ID,
	}
}

// InventoryDriftDetectedEvent is raised once per drifted pair found by a check run
type InventoryDriftDetectedEvent struct {
	shared.BaseDomainEvent
	RunID            uuid.UUID `json:"run_id"`
	LocationID       uuid.UUID `json:"location_id"`
	VariantID        uuid.UUID `json:"variant_id"`
	RecordedQuantity int64     `json:"recorded_quantity"`
	LedgerQuantity   int64     `json:"ledger_quantity"`
	Corrected        bool      `json:"corrected"`
}

func (e *InventoryDriftDetectedEvent) EventType() string { return EventTypeInventoryDriftDetected }

// NewInventoryDriftDetectedEvent creates the event for a drift report
func NewInventoryDriftDetectedEvent(r *DriftReport) *InventoryDriftDetectedEvent {
	return &InventoryDriftDetectedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeInventoryDriftDetected, AggregateTypeInventoryRecord, r.ID),
		RunID:            r.RunID,
		LocationID:       r.LocationID,
		VariantID:        r.VariantID,
		RecordedQuantity: r.RecordedQuantity,
		LedgerQuantity:   r.LedgerQuantity,
		Corrected:        r.Corrected,
	}
}
