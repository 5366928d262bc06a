package purchasing

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderEstimate is a pre-receipt forecast for one product on an order
type PurchaseOrderEstimate struct {
	shared.BaseEntity
	PurchaseOrderID    uuid.UUID
	ProductID          uuid.UUID
	EstimatedQuantity  int64
	EstimatedTotalCost decimal.Decimal
	Notes              string
}

// EstimatePatch carries optional changes to an estimate
type EstimatePatch struct {
	ProductID          *uuid.UUID
	EstimatedQuantity  *int64
	EstimatedTotalCost *decimal.Decimal
	Notes              *string
}

func validateEstimate(quantity int64, totalCost decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewValidationError("estimated_quantity must be greater than 0")
	}
	if totalCost.IsNegative() {
		return shared.NewValidationError("estimated_total_cost cannot be negative")
	}
	return nil
}

// NewPurchaseOrderEstimate validates and creates an estimate
func NewPurchaseOrderEstimate(orderID, productID uuid.UUID, quantity int64, totalCost decimal.Decimal, notes string) (*PurchaseOrderEstimate, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("purchase_order_id is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product_id is required")
	}
	if err := validateEstimate(quantity, totalCost); err != nil {
		return nil, err
	}
	return &PurchaseOrderEstimate{
		BaseEntity:         shared.NewBaseEntity(),
		PurchaseOrderID:    orderID,
		ProductID:          productID,
		EstimatedQuantity:  quantity,
		EstimatedTotalCost: totalCost,
		Notes:              notes,
	}, nil
}

// Apply validates the patched values as a whole and only then mutates the estimate
func (e *PurchaseOrderEstimate) Apply(p EstimatePatch) error {
	quantity, cost := e.EstimatedQuantity, e.EstimatedTotalCost
	if p.EstimatedQuantity != nil {
		quantity = *p.EstimatedQuantity
	}
	if p.EstimatedTotalCost != nil {
		cost = *p.EstimatedTotalCost
	}
	if err := validateEstimate(quantity, cost); err != nil {
		return err
	}
	if p.ProductID != nil {
		if *p.ProductID == uuid.Nil {
			return shared.NewValidationError("product_id cannot be empty")
		}
		e.ProductID = *p.ProductID
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	e.EstimatedQuantity = quantity
	e.EstimatedTotalCost = cost
	e.Touch()
	return nil
}
