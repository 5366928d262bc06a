package inventory

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType is the business reason for a stock movement
type MovementType string

const (
	MovementTypeSale       MovementType = "sale"
	MovementTypeRestock    MovementType = "restock"
	MovementTypeReturn     MovementType = "return"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeAdjustment MovementType = "adjustment"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale,
		MovementTypeRestock,
		MovementTypeReturn,
		MovementTypeTransfer,
		MovementTypeAdjustment:
		return true
	}
	return false
}

// Reference types for movements caused by a business document
const (
	ReferenceTypePurchaseOrder = "purchase_order"
	ReferenceTypeAdjustment    = "manual_adjustment"
	ReferenceTypeDriftCheck    = "drift_check"
)

// MovementEntry is one immutable line of the stock ledger.
// There is deliberately no mutator: an entry is the audit record for a quantity change.
type MovementEntry struct {
	ID            uuid.UUID
	LocationID    uuid.UUID
	VariantID     uuid.UUID
	MovementType  MovementType
	Quantity      int64
	ReferenceType string
	ReferenceID   *uuid.UUID
	CreatedAt     time.Time
}

// NewMovementEntry validates and stamps a ledger entry
func NewMovementEntry(locationID, variantID uuid.UUID, movementType MovementType, quantity int64, referenceType string, referenceID *uuid.UUID) (*MovementEntry, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("Location ID cannot be empty")
	}
	if variantID == uuid.Nil {
		return nil, shared.NewValidationError("Variant ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("Invalid movement type: " + string(movementType))
	}
	if quantity == 0 {
		return nil, shared.NewValidationError("Movement quantity cannot be zero")
	}
	return &MovementEntry{
		ID:            uuid.New(),
		LocationID:    locationID,
		VariantID:     variantID,
		MovementType:  movementType,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		CreatedAt:     time.Now(),
	}, nil
}

// NewRestockFromPurchaseOrder builds the restock entry produced by receiving one order line
func NewRestockFromPurchaseOrder(locationID, variantID, orderID uuid.UUID, quantity int64) (*MovementEntry, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("Restock quantity must be positive")
	}
	ref := orderID
	return NewMovementEntry(locationID, variantID, MovementTypeRestock, quantity, ReferenceTypePurchaseOrder, &ref)
}

// MovementFilter narrows ledger queries
type MovementFilter struct {
	LocationID    *uuid.UUID
	VariantID     *uuid.UUID
	ReferenceType string
	ReferenceID   *uuid.UUID
	MovementType  MovementType
	Limit         int
	Offset        int
}
