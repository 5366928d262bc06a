package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/google/uuid"
)

// InventoryRecordModel is the persistence model for a (location, variant) stock aggregate.
// The composite unique index is the conflict target of the atomic upsert.
type InventoryRecordModel struct {
	BaseModel
	LocationID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_records_location_variant,priority:1"`
	VariantID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_records_location_variant,priority:2"`
	QuantityOnHand int64     `gorm:"not null"`
	ReorderLevel   int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryRecordModel) TableName() string {
	return "inventory_records"
}

func (m *InventoryRecordModel) ToDomain() *inventory.InventoryRecord {
	return &inventory.InventoryRecord{
		ID:             m.ID,
		LocationID:     m.LocationID,
		VariantID:      m.VariantID,
		QuantityOnHand: m.QuantityOnHand,
		ReorderLevel:   m.ReorderLevel,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// InventoryRecordModelFromDomain creates a persistence model from a domain record
func InventoryRecordModelFromDomain(r *inventory.InventoryRecord) *InventoryRecordModel {
	return &InventoryRecordModel{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		LocationID:     r.LocationID,
		VariantID:      r.VariantID,
		QuantityOnHand: r.QuantityOnHand,
		ReorderLevel:   r.ReorderLevel,
	}
}

// MovementModel is the persistence model for a ledger entry. It has no UpdatedAt: rows are never updated.
type MovementModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	LocationID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_inventory_movements_location_variant,priority:1"`
	VariantID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_inventory_movements_location_variant,priority:2"`
	MovementType  string     `gorm:"type:varchar(20);not null"`
	Quantity      int64      `gorm:"not null"`
	ReferenceType string     `gorm:"type:varchar(50)"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "inventory_movements"
}

func (m *MovementModel) ToDomain() *inventory.MovementEntry {
	return &inventory.MovementEntry{
		ID:            m.ID,
		LocationID:    m.LocationID,
		VariantID:     m.VariantID,
		MovementType:  inventory.MovementType(m.MovementType),
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementModelFromDomain creates a persistence model from a domain entry
func MovementModelFromDomain(e *inventory.MovementEntry) *MovementModel {
	return &MovementModel{
		ID:            e.ID,
		LocationID:    e.LocationID,
		VariantID:     e.VariantID,
		MovementType:  string(e.MovementType),
		Quantity:      e.Quantity,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     e.CreatedAt,
	}
}

// DriftReportModel persists a drift finding
type DriftReportModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	RunID            uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID       uuid.UUID `gorm:"type:uuid;not null"`
	VariantID        uuid.UUID `gorm:"type:uuid;not null"`
	RecordedQuantity int64     `gorm:"not null"`
	LedgerQuantity   int64     `gorm:"not null"`
	Difference       int64     `gorm:"not null"`
	Corrected        bool      `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DriftReportModel) TableName() string {
	return "inventory_drift_reports"
}

func (m *DriftReportModel) ToDomain() *inventory.DriftReport {
	return &inventory.DriftReport{
		ID:               m.ID,
		RunID:            m.RunID,
		LocationID:       m.LocationID,
		VariantID:        m.VariantID,
		RecordedQuantity: m.RecordedQuantity,
		LedgerQuantity:   m.LedgerQuantity,
		Difference:       m.Difference,
		Corrected:        m.Corrected,
		CreatedAt:        m.CreatedAt,
	}
}

// DriftReportModelFromDomain creates a persistence model from a domain report
func DriftReportModelFromDomain(r *inventory.DriftReport) *DriftReportModel {
	return &DriftReportModel{
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

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&PurchaseOrderEstimateModel{},
		&InventoryRecordModel{},
		&MovementModel{},
		&DriftReportModel{},
	}
}
