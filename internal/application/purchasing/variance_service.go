package purchasing

import (
	"context"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/google/uuid"
)

// VarianceService compares estimated and actual cost of an order
type VarianceService struct {
	orderRepo    purchasing.PurchaseOrderRepository
	itemRepo     purchasing.PurchaseOrderItemRepository
	estimateRepo purchasing.PurchaseOrderEstimateRepository
}

// NewVarianceService creates a new VarianceService
func NewVarianceService(
	orderRepo purchasing.PurchaseOrderRepository,
	itemRepo purchasing.PurchaseOrderItemRepository,
	estimateRepo purchasing.PurchaseOrderEstimateRepository,
) *VarianceService {
	return &VarianceService{
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		estimateRepo: estimateRepo,
	}
}

// Get returns actual minus estimated cost. Both totals are 0 when the order has no children.
func (s *VarianceService) Get(ctx context.Context, orderID uuid.UUID) (*VarianceResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	estimated, err := s.estimateRepo.SumEstimatedTotals(ctx, orderID)
	if err != nil {
		return nil, err
	}
	actual, err := s.itemRepo.SumLineTotals(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToVarianceResponse(purchasing.NewVariance(orderID, estimated, actual))
	return &resp, nil
}
