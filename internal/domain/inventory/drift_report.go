package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Drift is a mismatch between an inventory record and the sum of its ledger
type Drift struct {
	LocationID       uuid.UUID
	VariantID        uuid.UUID
	RecordedQuantity int64
	LedgerQuantity   int64
}

// Difference returns recorded minus ledger
func (d Drift) Difference() int64 {
	return d.RecordedQuantity - d.LedgerQuantity
}

// DriftReport is the persisted finding of one drift-check run
type DriftReport struct {
	ID               uuid.UUID
	RunID            uuid.UUID
	LocationID       uuid.UUID
	VariantID        uuid.UUID
	RecordedQuantity int64
	LedgerQuantity   int64
	Difference       int64
	Corrected        bool
	CreatedAt        time.Time
}

// NewDriftReport records a drift found during run runID
func NewDriftReport(runID uuid.UUID, d Drift) *DriftReport {
	return &DriftReport{
		ID:               uuid.New(),
		RunID:            runID,
		LocationID:       d.LocationID,
		VariantID:        d.VariantID,
		RecordedQuantity: d.RecordedQuantity,
		LedgerQuantity:   d.LedgerQuantity,
		Difference:       d.Difference(),
		CreatedAt:        time.Now(),
	}
}
