package purchasing

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemService records received lines on received orders and applies their stock effect
type ItemService struct {
	orderRepo purchasing.PurchaseOrderRepository
	itemRepo  purchasing.PurchaseOrderItemRepository
	engine    *ReconciliationEngine
	logger    *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(
	orderRepo purchasing.PurchaseOrderRepository,
	itemRepo purchasing.PurchaseOrderItemRepository,
	engine *ReconciliationEngine,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		engine:    engine,
		logger:    logger,
	}
}

// Create stores a line on a received order, then appends its restock movement and
// increments stock. The line stays stored when the stock side effect fails; the
// failure is logged, counted and returned in the outcome.
func (s *ItemService) Create(ctx context.Context, orderID uuid.UUID, req CreateItemRequest) (*CreateItemResult, error) {
	item, err := purchasing.NewPurchaseOrderItem(orderID, req.VariantID, req.Quantity, req.CostPrice)
	if err != nil {
		return nil, err
	}

	order, err := loadOrder(ctx, s.orderRepo, orderID)
	if err != nil && !errors.Is(err, shared.ErrOrderNotFound) {
		return nil, err
	}
	if err := purchasing.Guard(order, purchasing.ItemRule).Err(); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	result := s.engine.ReconcileItem(ctx, order, item)
	if result.Outcome == purchasing.OutcomeFailed {
		s.logger.Warn("Item stored but not applied to stock",
			zap.String("order_id", orderID.String()),
			zap.String("item_id", item.ID.String()),
			zap.String("reason", result.Reason),
		)
	}

	return &CreateItemResult{
		Item: ToItemResponse(item),
		Outcome: ItemResultResponse{
			ItemID:    result.ItemID,
			VariantID: result.VariantID,
			Quantity:  result.Quantity,
			Outcome:   string(result.Outcome),
			Reason:    result.Reason,
		},
	}, nil
}

// ListForOrder pages through an order's lines and returns the order's line count
func (s *ItemService) ListForOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]ItemResponse, int64, error) {
	if _, err := loadOrder(ctx, s.orderRepo, orderID); err != nil {
		return nil, 0, err
	}
	filter := shared.Filter{Limit: limit, Offset: offset}.Normalized()
	items, err := s.itemRepo.FindByOrder(ctx, orderID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.CountByOrder(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	result := make([]ItemResponse, len(items))
	for i := range items {
		result[i] = ToItemResponse(&items[i])
	}
	return result, total, nil
}
