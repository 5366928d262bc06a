package purchasing

import (
	"time"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest carries the header of a new order and optional initial lines
type CreatePurchaseOrderRequest struct {
	PONumber          string
	SupplierID        uuid.UUID
	LocationID        uuid.UUID
	Status            string
	TotalCost         decimal.Decimal
	ShippingCost      decimal.Decimal
	TippingCost       decimal.Decimal
	MiscellaneousCost decimal.Decimal
	Notes             string
	Items             []CreateItemRequest
}

// UpdateStatusRequest patches an order header. Nil fields are left unchanged.
type UpdateStatusRequest struct {
	Status            *string
	TotalCost         *decimal.Decimal
	ShippingCost      *decimal.Decimal
	TippingCost       *decimal.Decimal
	MiscellaneousCost *decimal.Decimal
	Notes             *string
}

// ListPurchaseOrdersRequest filters orders
type ListPurchaseOrdersRequest struct {
	Search      string
	Status      string
	SupplierID  *uuid.UUID
	LocationID  *uuid.UUID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	OrderBy     string
	OrderDir    string
	Limit       int
	Offset      int
}

// CreateItemRequest records one received line. VariantID is nil for non-stock cost lines.
type CreateItemRequest struct {
	VariantID *uuid.UUID
	Quantity  int64
	CostPrice decimal.Decimal
}

// CreateEstimateRequest forecasts one product on an order
type CreateEstimateRequest struct {
	ProductID          uuid.UUID
	EstimatedQuantity  int64
	EstimatedTotalCost decimal.Decimal
	Notes              string
}

// UpdateEstimateRequest patches an estimate. Nil fields are left unchanged.
type UpdateEstimateRequest struct {
	ProductID          *uuid.UUID
	EstimatedQuantity  *int64
	EstimatedTotalCost *decimal.Decimal
	Notes              *string
}

// PurchaseOrderResponse represents an order header in API responses
type PurchaseOrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	PONumber          string          `json:"po_number"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	LocationID        uuid.UUID       `json:"location_id"`
	Status            string          `json:"status"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TippingCost       decimal.Decimal `json:"tipping_cost"`
	MiscellaneousCost decimal.Decimal `json:"miscellaneous_cost"`
	Notes             string          `json:"notes,omitempty"`
	ReconciledAt      *time.Time      `json:"reconciled_at,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// Reconciliation is present when the call replayed the order's items
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
}

// ToPurchaseOrderResponse converts a domain order to a response
func ToPurchaseOrderResponse(o *purchasing.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:                o.ID,
		PONumber:          o.PONumber,
		SupplierID:        o.SupplierID,
		LocationID:        o.LocationID,
		Status:            string(o.Status),
		TotalCost:         o.TotalCost,
		ShippingCost:      o.ShippingCost,
		TippingCost:       o.TippingCost,
		MiscellaneousCost: o.MiscellaneousCost,
		Notes:             o.Notes,
		ReconciledAt:      o.ReconciledAt,
		Version:           o.Version,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// PurchaseOrderWithTotalsResponse is an order with aggregates over its lines
type PurchaseOrderWithTotalsResponse struct {
	PurchaseOrderResponse
	ItemsTotal decimal.Decimal `json:"items_total"`
	ItemsCount int64           `json:"items_count"`
}

// ToPurchaseOrderWithTotalsResponse converts an annotated order to a response
func ToPurchaseOrderWithTotalsResponse(o *purchasing.OrderWithTotals) PurchaseOrderWithTotalsResponse {
	return PurchaseOrderWithTotalsResponse{
		PurchaseOrderResponse: ToPurchaseOrderResponse(&o.PurchaseOrder),
		ItemsTotal:            o.ItemsTotal,
		ItemsCount:            o.ItemsCount,
	}
}

// ItemResultResponse reports the reconciliation of one line
type ItemResultResponse struct {
	ItemID    uuid.UUID  `json:"item_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int64      `json:"quantity"`
	Outcome   string     `json:"outcome"`
	Reason    string     `json:"reason,omitempty"`
}

// ReconciliationResponse summarises a replay of an order's lines
type ReconciliationResponse struct {
	Succeeded  int                  `json:"succeeded"`
	Skipped    int                  `json:"skipped"`
	Failed     int                  `json:"failed"`
	Results    []ItemResultResponse `json:"results"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// ToReconciliationResponse converts a domain report to a response
func ToReconciliationResponse(r *purchasing.ReconciliationReport) *ReconciliationResponse {
	if r == nil {
		return nil
	}
	results := make([]ItemResultResponse, len(r.Results))
	for i, res := range r.Results {
		results[i] = ItemResultResponse{
			ItemID:    res.ItemID,
			VariantID: res.VariantID,
			Quantity:  res.Quantity,
			Outcome:   string(res.Outcome),
			Reason:    res.Reason,
		}
	}
	return &ReconciliationResponse{
		Succeeded:  r.Succeeded,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Results:    results,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// ItemResponse represents a received line in API responses
type ItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	VariantID       *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity        int64           `json:"quantity"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	ReconciledAt    *time.Time      `json:"reconciled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToItemResponse converts a domain item to a response
func ToItemResponse(i *purchasing.PurchaseOrderItem) ItemResponse {
	return ItemResponse{
		ID:              i.ID,
		PurchaseOrderID: i.PurchaseOrderID,
		VariantID:       i.VariantID,
		Quantity:        i.Quantity,
		CostPrice:       i.CostPrice,
		LineTotal:       i.LineTotal(),
		ReconciledAt:    i.ReconciledAt,
		CreatedAt:       i.CreatedAt,
	}
}

// CreateItemResult is the durable item plus the outcome of its stock side effect.
// A failed outcome does not fail the call.
type CreateItemResult struct {
	Item    ItemResponse       `json:"item"`
	Outcome ItemResultResponse `json:"outcome"`
}

// EstimateResponse represents an estimate in API responses
type EstimateResponse struct {
	ID                 uuid.UUID       `json:"id"`
	PurchaseOrderID    uuid.UUID       `json:"purchase_order_id"`
	ProductID          uuid.UUID       `json:"product_id"`
	EstimatedQuantity  int64           `json:"estimated_quantity"`
	EstimatedTotalCost decimal.Decimal `json:"estimated_total_cost"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToEstimateResponse converts a domain estimate to a response
func ToEstimateResponse(e *purchasing.PurchaseOrderEstimate) EstimateResponse {
	return EstimateResponse{
		ID:                 e.ID,
		PurchaseOrderID:    e.PurchaseOrderID,
		ProductID:          e.ProductID,
		EstimatedQuantity:  e.EstimatedQuantity,
		EstimatedTotalCost: e.EstimatedTotalCost,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// VarianceResponse compares forecast and actual cost
type VarianceResponse struct {
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	EstimatedTotal  decimal.Decimal `json:"estimated_total"`
	ActualTotal     decimal.Decimal `json:"actual_total"`
	Variance        decimal.Decimal `json:"variance"`
}

// ToVarianceResponse converts a domain variance to a response
func ToVarianceResponse(v purchasing.Variance) VarianceResponse {
	return VarianceResponse{
		PurchaseOrderID: v.PurchaseOrderID,
		EstimatedTotal:  v.EstimatedTotal,
		ActualTotal:     v.ActualTotal,
		Variance:        v.Variance,
	}
}
