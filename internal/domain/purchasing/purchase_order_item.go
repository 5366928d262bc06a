package purchasing

import (
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderItem is an actually received line of an order
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID uuid.UUID
	// VariantID is nil for non-stock cost lines
	VariantID    *uuid.UUID
	Quantity     int64
	CostPrice    decimal.Decimal
	ReconciledAt *time.Time
}

// NewPurchaseOrderItem validates and creates a line for orderID
func NewPurchaseOrderItem(orderID uuid.UUID, variantID *uuid.UUID, quantity int64, costPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("purchase_order_id is required")
	}
	if variantID != nil && *variantID == uuid.Nil {
		variantID = nil
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity must be positive")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewValidationError("cost_price cannot be negative")
	}
	return &PurchaseOrderItem{
		BaseEntity:      shared.NewBaseEntity(),
		PurchaseOrderID: orderID,
		VariantID:       variantID,
		Quantity:        quantity,
		CostPrice:       costPrice,
	}, nil
}

// LineTotal returns quantity times cost price
func (i *PurchaseOrderItem) LineTotal() decimal.Decimal {
	return i.CostPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// IsStockLine reports whether the line moves inventory
func (i *PurchaseOrderItem) IsStockLine() bool {
	return i.VariantID != nil
}

func (i *PurchaseOrderItem) IsReconciled() bool {
	return i.ReconciledAt != nil
}
