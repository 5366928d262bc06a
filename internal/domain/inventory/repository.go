package inventory

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryRecordRepository persists per-(location, variant) stock aggregates
type InventoryRecordRepository interface {
	// FindByKey returns shared.ErrNotFound when no record exists for the pair
	FindByKey(ctx context.Context, locationID, variantID uuid.UUID) (*InventoryRecord, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryRecord, error)

	// ApplyDelta atomically adds delta.Quantity to the pair's on-hand quantity,
	// creating the record with reorder level 0 when it does not exist yet.
	// It never reads the current value first.
	ApplyDelta(ctx context.Context, delta StockDelta) error

	// ResyncFromLedger recomputes the pair's on-hand quantity from its movements in one statement.
	// It is the only way to correct drift.
	ResyncFromLedger(ctx context.Context, locationID, variantID uuid.UUID) error
	Save(ctx context.Context, record *InventoryRecord) error
}

// MovementRepository is the append-only stock ledger
type MovementRepository interface {
	Append(ctx context.Context, entry *MovementEntry) error
	FindAll(ctx context.Context, filter MovementFilter) ([]MovementEntry, error)
	// SumForKey returns the signed sum of quantities for a pair, 0 when none
	SumForKey(ctx context.Context, locationID, variantID uuid.UUID) (int64, error)
}

// DriftRepository detects and records ledger/aggregate mismatches
type DriftRepository interface {
	// FindDrift compares every record against its ledger sum and returns mismatches
	FindDrift(ctx context.Context) ([]Drift, error)
	// CountRecords returns how many inventory records a check covers
	CountRecords(ctx context.Context) (int64, error)
	SaveReport(ctx context.Context, report *DriftReport) error
	FindReports(ctx context.Context, filter shared.Filter) ([]DriftReport, error)
}
