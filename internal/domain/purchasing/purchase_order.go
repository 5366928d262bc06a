package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxPONumberLength mirrors the po_number column width
const MaxPONumberLength = 50

// Costs groups the header cost fields of an order
type Costs struct {
	TotalCost         decimal.Decimal
	ShippingCost      decimal.Decimal
	TippingCost       decimal.Decimal
	MiscellaneousCost decimal.Decimal
}

// Validate rejects negative cost components
func (c Costs) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"total_cost":         c.TotalCost,
		"shipping_cost":      c.ShippingCost,
		"tipping_cost":       c.TippingCost,
		"miscellaneous_cost": c.MiscellaneousCost,
	} {
		if v.IsNegative() {
			return shared.NewValidationError(fmt.Sprintf("%s cannot be negative", name))
		}
	}
	return nil
}

// PurchaseOrder is the aggregate root for procurement.
// Items and estimates are separate child records loaded through their own repositories.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber   string
	SupplierID uuid.UUID
	LocationID uuid.UUID
	Status     Status
	Costs
	Notes string
	// ReconciledAt is set once the order's items have been replayed into the ledger
	ReconciledAt *time.Time
}

// NewPurchaseOrder creates a new purchase order in the given initial status
func NewPurchaseOrder(poNumber string, supplierID, locationID uuid.UUID, status Status) (*PurchaseOrder, error) {
	poNumber = strings.TrimSpace(poNumber)
	if poNumber == "" {
		return nil, shared.NewValidationError("po_number is required")
	}
	if len(poNumber) > MaxPONumberLength {
		return nil, shared.NewValidationError(fmt.Sprintf("po_number cannot exceed %d characters", MaxPONumberLength))
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier_id is required")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("location_id is required")
	}
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid status: %s", status))
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		SupplierID:        supplierID,
		LocationID:        locationID,
		Status:            status,
		Costs: Costs{
			TotalCost:         decimal.Zero,
			ShippingCost:      decimal.Zero,
			TippingCost:       decimal.Zero,
			MiscellaneousCost: decimal.Zero,
		},
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// SetCosts replaces the header costs
func (o *PurchaseOrder) SetCosts(c Costs) error {
	if err := c.Validate(); err != nil {
		return err
	}
	o.Costs = c
	o.Touch()
	return nil
}

// TransitionTo moves the order to target. Repeating the current status is a no-op.
// Callers check NeedsReconciliation afterwards to decide whether the items must be replayed.
func (o *PurchaseOrder) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("invalid status: %s", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot change order status from %s to %s", o.Status, target))
	}
	previous := o.Status
	if previous == target {
		return nil
	}
	o.Status = target
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, previous))
	return nil
}

// NeedsReconciliation reports whether the order is received but its items were never replayed
func (o *PurchaseOrder) NeedsReconciliation() bool {
	return o.Status == StatusReceived && o.ReconciledAt == nil
}

// MarkReconciled stamps the order as replayed into the ledger
func (o *PurchaseOrder) MarkReconciled(at time.Time) {
	o.ReconciledAt = &at
	o.UpdatedAt = at
}

func (o *PurchaseOrder) IsReceived() bool {
	return o.Status == StatusReceived
}

// OrderWithTotals is an order annotated with aggregates over its line items
type OrderWithTotals struct {
	PurchaseOrder
	ItemsTotal decimal.Decimal
	ItemsCount int64
}
