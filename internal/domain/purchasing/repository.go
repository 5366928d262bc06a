package purchasing

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepository persists order headers.
// Filters understood in shared.Filter.Filters: status, supplier_id, location_id.
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	FindAllWithTotals(ctx context.Context, filter shared.Filter) ([]OrderWithTotals, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByPONumber(ctx context.Context, poNumber string) (bool, error)

	// Create inserts a new order; a duplicate po_number yields shared.ErrAlreadyExists
	Create(ctx context.Context, order *PurchaseOrder) error
	// SaveWithLock updates the header when its version still matches and bumps the version.
	// A stale version yields shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
	// Delete removes the order with its items and estimates in one transaction
	Delete(ctx context.Context, id uuid.UUID) error
}

// PurchaseOrderItemRepository persists received lines
type PurchaseOrderItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderItem, error)
	// FindByOrder pages through an order's items in a stable order
	FindByOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]PurchaseOrderItem, error)
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	Create(ctx context.Context, item *PurchaseOrderItem) error
	CreateBatch(ctx context.Context, items []PurchaseOrderItem) error
	// ClaimForReconciliation sets reconciled_at only if it is still null.
	// It reports false when another caller already claimed the item.
	ClaimForReconciliation(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SumLineTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

// PurchaseOrderEstimateRepository persists estimates
type PurchaseOrderEstimateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderEstimate, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]PurchaseOrderEstimate, error)
	Save(ctx context.Context, estimate *PurchaseOrderEstimate) error
	Delete(ctx context.Context, id uuid.UUID) error
	SumEstimatedTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}
