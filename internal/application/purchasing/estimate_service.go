package purchasing

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EstimateService manages pre-receipt estimates. Every mutation re-reads the owning
// order and is refused once that order is received.
type EstimateService struct {
	orderRepo    purchasing.PurchaseOrderRepository
	estimateRepo purchasing.PurchaseOrderEstimateRepository
	logger       *zap.Logger
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(
	orderRepo purchasing.PurchaseOrderRepository,
	estimateRepo purchasing.PurchaseOrderEstimateRepository,
	logger *zap.Logger,
) *EstimateService {
	return &EstimateService{
		orderRepo:    orderRepo,
		estimateRepo: estimateRepo,
		logger:       logger,
	}
}

// Create adds an estimate to an order that is not yet received
func (s *EstimateService) Create(ctx context.Context, orderID uuid.UUID, req CreateEstimateRequest) (*EstimateResponse, error) {
	estimate, err := purchasing.NewPurchaseOrderEstimate(orderID, req.ProductID, req.EstimatedQuantity, req.EstimatedTotalCost, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.Save(ctx, estimate); err != nil {
		return nil, err
	}

	s.logger.Info("Estimate created",
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("order_id", orderID.String()),
	)
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// Update patches an estimate
func (s *EstimateService) Update(ctx context.Context, id uuid.UUID, req UpdateEstimateRequest) (*EstimateResponse, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, estimate.PurchaseOrderID); err != nil {
		return nil, err
	}
	if err := estimate.Apply(purchasing.EstimatePatch{
		ProductID:          req.ProductID,
		EstimatedQuantity:  req.EstimatedQuantity,
		EstimatedTotalCost: req.EstimatedTotalCost,
		Notes:              req.Notes,
	}); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.Save(ctx, estimate); err != nil {
		return nil, err
	}
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// Remove deletes an estimate and returns it
func (s *EstimateService) Remove(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, estimate.PurchaseOrderID); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Estimate removed",
		zap.String("estimate_id", id.String()),
		zap.String("order_id", estimate.PurchaseOrderID.String()),
	)
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// ListForOrder returns every estimate of an order
func (s *EstimateService) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]EstimateResponse, error) {
	if _, err := loadOrder(ctx, s.orderRepo, orderID); err != nil {
		return nil, err
	}
	estimates, err := s.estimateRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	result := make([]EstimateResponse, len(estimates))
	for i := range estimates {
		result[i] = ToEstimateResponse(&estimates[i])
	}
	return result, nil
}

func (s *EstimateService) guard(ctx context.Context, orderID uuid.UUID) error {
	order, err := loadOrder(ctx, s.orderRepo, orderID)
	if err != nil && !errors.Is(err, shared.ErrOrderNotFound) {
		return err
	}
	return purchasing.Guard(order, purchasing.EstimateRule).Err()
}

// loadOrder reads the owning order of a child record. A miss is reported as
// ORDER_NOT_FOUND rather than the generic NOT_FOUND of the repository.
func loadOrder(ctx context.Context, repo purchasing.PurchaseOrderRepository, orderID uuid.UUID) (*purchasing.PurchaseOrder, error) {
	order, err := repo.FindByID(ctx, orderID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrOrderNotFound
	}
	return order, err
}
