package purchasing

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderStatusChanged = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderReceived      = "PurchaseOrderReceived"
	EventTypePurchaseOrderRemoved       = "PurchaseOrderRemoved"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber   string    `json:"po_number"`
	SupplierID uuid.UUID `json:"supplier_id"`
	LocationID uuid.UUID `json:"location_id"`
	Status     Status    `json:"status"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		LocationID:      o.LocationID,
		Status:          o.Status,
	}
}

func (e *PurchaseOrderCreatedEvent) EventType() string { return EventTypePurchaseOrderCreated }

// PurchaseOrderStatusChangedEvent is raised on every effective status change
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	From Status `json:"from"`
	To   Status `json:"to"`
}

// NewPurchaseOrderStatusChangedEvent creates the event for a move from previous to the order's status
func NewPurchaseOrderStatusChangedEvent(o *PurchaseOrder, previous Status) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, o.ID),
		From:            previous,
		To:              o.Status,
	}
}

func (e *PurchaseOrderStatusChangedEvent) EventType() string {
	return EventTypePurchaseOrderStatusChanged
}

// PurchaseOrderReceivedEvent is raised after an order's lines were replayed into stock
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	LocationID uuid.UUID `json:"location_id"`
	Succeeded  int       `json:"succeeded"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	// FailedItemIDs lets operators replay lines manually
	FailedItemIDs []uuid.UUID `json:"failed_item_ids,omitempty"`
}

// NewPurchaseOrderReceivedEvent summarises a reconciliation report
func NewPurchaseOrderReceivedEvent(report *ReconciliationReport) *PurchaseOrderReceivedEvent {
	e := &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, report.OrderID),
		LocationID:      report.LocationID,
		Succeeded:       report.Succeeded,
		Skipped:         report.Skipped,
		Failed:          report.Failed,
	}
	for _, r := range report.Results {
		if r.Outcome == OutcomeFailed {
			e.FailedItemIDs = append(e.FailedItemIDs, r.ItemID)
		}
	}
	return e
}

func (e *PurchaseOrderReceivedEvent) EventType() string { return EventTypePurchaseOrderReceived }

// PurchaseOrderRemovedEvent is raised after an order and its children were deleted
type PurchaseOrderRemovedEvent struct {
	shared.BaseDomainEvent
	PONumber string `json:"po_number"`
}

func NewPurchaseOrderRemovedEvent(o *PurchaseOrder) *PurchaseOrderRemovedEvent {
	return &PurchaseOrderRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderRemoved, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
	}
}

func (e *PurchaseOrderRemovedEvent) EventType() string { return EventTypePurchaseOrderRemoved }
