package inventory

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryRecord is the on-hand aggregate for one (location, variant) pair.
// QuantityOnHand is expected to equal the signed sum of the pair's movements.
type InventoryRecord struct {
	ID             uuid.UUID
	LocationID     uuid.UUID
	VariantID      uuid.UUID
	QuantityOnHand int64
	ReorderLevel   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StockKey identifies an inventory record
type StockKey struct {
	LocationID uuid.UUID
	VariantID  uuid.UUID
}

// Key returns the composite identity of the record
func (r *InventoryRecord) Key() StockKey {
	return StockKey{LocationID: r.LocationID, VariantID: r.VariantID}
}

// NeedsReorder reports whether stock has fallen to the reorder level
func (r *InventoryRecord) NeedsReorder() bool {
	return r.ReorderLevel > 0 && r.QuantityOnHand <= r.ReorderLevel
}

// SetReorderLevel updates the reorder threshold
func (r *InventoryRecord) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewValidationError("Reorder level cannot be negative")
	}
	r.ReorderLevel = level
	r.UpdatedAt = time.Now()
	return nil
}

// StockDelta is a signed quantity change applied to a record by atomic upsert
type StockDelta struct {
	LocationID uuid.UUID
	VariantID  uuid.UUID
	Quantity   int64
}

// DeltaFor derives the upsert delta implied by a movement entry
func DeltaFor(m *MovementEntry) StockDelta {
	return StockDelta{LocationID: m.LocationID, VariantID: m.VariantID, Quantity: m.Quantity}
}
