package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order lifecycle operations
type PurchaseOrderService struct {
	orderRepo      purchasing.PurchaseOrderRepository
	txScope        TransactionScope
	engine         *ReconciliationEngine
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo purchasing.PurchaseOrderRepository,
	txScope TransactionScope,
	engine *ReconciliationEngine,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		engine:    engine,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order with its optional initial lines.
// An order requested as received is stored as ordered and then moved to received
// through the reconcile path, so a fatal replay error leaves it ordered.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	requested := purchasing.Status(strings.TrimSpace(req.Status))
	initial := requested
	if requested == purchasing.StatusReceived {
		initial = purchasing.StatusOrdered
	}
	order, err := purchasing.NewPurchaseOrder(req.PONumber, req.SupplierID, req.LocationID, initial)
	if err != nil {
		return nil, err
	}
	if err := order.SetCosts(purchasing.Costs{
		TotalCost:         req.TotalCost,
		ShippingCost:      req.ShippingCost,
		TippingCost:       req.TippingCost,
		MiscellaneousCost: req.MiscellaneousCost,
	}); err != nil {
		return nil, err
	}
	order.Notes = req.Notes

	items := make([]purchasing.PurchaseOrderItem, 0, len(req.Items))
	for i, line := range req.Items {
		item, err := purchasing.NewPurchaseOrderItem(order.ID, line.VariantID, line.Quantity, line.CostPrice)
		if err != nil {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d]: %s", i, err.Error()))
		}
		items = append(items, *item)
	}

	exists, err := s.orderRepo.ExistsByPONumber(ctx, order.PONumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("purchase order %s already exists", order.PONumber))
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return err
		}
		return repos.ItemRepo().CreateBatch(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("po_number", order.PONumber),
		zap.String("status", string(order.Status)),
		zap.Int("items", len(items)),
	)

	s.publish(ctx, order.GetDomainEvents()...)
	order.ClearDomainEvents()

	var report *purchasing.ReconciliationReport
	if requested == purchasing.StatusReceived {
		if err := order.TransitionTo(purchasing.StatusReceived); err != nil {
			return nil, err
		}
		report, err = s.reconcile(ctx, order)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, order.GetDomainEvents()...)
		order.ClearDomainEvents()
	}
	if report != nil {
		s.publish(ctx, purchasing.NewPurchaseOrderReceivedEvent(report))
	}

	resp := ToPurchaseOrderResponse(order)
	resp.Reconciliation = ToReconciliationResponse(report)
	return &resp, nil
}

// Get retrieves a purchase order by ID
func (s *PurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List returns orders matching the request along with the total count
func (s *PurchaseOrderService) List(ctx context.Context, req ListPurchaseOrdersRequest) ([]PurchaseOrderResponse, int64, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, 0, err
	}
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		result[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return result, total, nil
}

// ListWithTotals returns orders annotated with their item totals and counts
func (s *PurchaseOrderService) ListWithTotals(ctx context.Context, req ListPurchaseOrdersRequest) ([]PurchaseOrderWithTotalsResponse, int64, error) {
	filter, err := toFilter(req)
	if err != nil {
		return nil, 0, err
	}
	orders, err := s.orderRepo.FindAllWithTotals(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]PurchaseOrderWithTotalsResponse, len(orders))
	for i := range orders {
		result[i] = ToPurchaseOrderWithTotalsResponse(&orders[i])
	}
	return result, total, nil
}

// UpdateStatus patches the header and moves the order to the requested status.
// Entering received replays the order's lines before the header is committed; a fatal
// replay error rejects the update while per-line failures are reported in the response.
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := order.Status

	costs := order.Costs
	if req.TotalCost != nil {
		costs.TotalCost = *req.TotalCost
	}
	if req.ShippingCost != nil {
		costs.ShippingCost = *req.ShippingCost
	}
	if req.TippingCost != nil {
		costs.TippingCost = *req.TippingCost
	}
	if req.MiscellaneousCost != nil {
		costs.MiscellaneousCost = *req.MiscellaneousCost
	}
	if err := order.SetCosts(costs); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.Status != nil {
		if err := order.TransitionTo(purchasing.Status(strings.TrimSpace(*req.Status))); err != nil {
			return nil, err
		}
	}

	var report *purchasing.ReconciliationReport
	if order.NeedsReconciliation() {
		report, err = s.reconcile(ctx, order)
		if err != nil {
			return nil, err
		}
	} else if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
		zap.Int("version", order.Version),
	)

	s.publish(ctx, order.GetDomainEvents()...)
	order.ClearDomainEvents()
	if report != nil {
		s.publish(ctx, purchasing.NewPurchaseOrderReceivedEvent(report))
	}

	resp := ToPurchaseOrderResponse(order)
	resp.Reconciliation = ToReconciliationResponse(report)
	return &resp, nil
}

// Reconcile replays a received order's lines again. Lines already applied are skipped,
// so this only retries lines that failed before.
func (s *PurchaseOrderService) Reconcile(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsReceived() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("only received orders can be reconciled (status: %s)", order.Status))
	}

	report, err := s.reconcile(ctx, order)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, purchasing.NewPurchaseOrderReceivedEvent(report))

	resp := ToPurchaseOrderResponse(order)
	resp.Reconciliation = ToReconciliationResponse(report)
	return &resp, nil
}

// Remove deletes an order with its items and estimates and returns the removed header
func (s *PurchaseOrderService) Remove(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order removed",
		zap.String("order_id", order.ID.String()),
		zap.String("po_number", order.PONumber),
	)
	s.publish(ctx, purchasing.NewPurchaseOrderRemovedEvent(order))

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// reconcile runs the engine and persists the header with the reconciled marker
func (s *PurchaseOrderService) reconcile(ctx context.Context, order *purchasing.PurchaseOrder) (*purchasing.ReconciliationReport, error) {
	report, err := s.engine.Reconcile(ctx, order)
	if err != nil {
		s.logger.Error("Reconciliation aborted, status update rejected",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if order.ReconciledAt == nil {
		order.MarkReconciled(time.Now())
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	if report.HasFailures() {
		s.logger.Warn("Purchase order received with failed lines",
			zap.String("order_id", order.ID.String()),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}

func (s *PurchaseOrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish purchase order events", zap.Error(err))
	}
}

func toFilter(req ListPurchaseOrdersRequest) (shared.Filter, error) {
	filter := shared.Filter{
		Limit:    req.Limit,
		Offset:   req.Offset,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]any{},
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		if !purchasing.Status(status).IsValid() {
			return filter, shared.NewValidationError("invalid status: " + status)
		}
		filter.Filters["status"] = status
	}
	if req.SupplierID != nil {
		filter.Filters["supplier_id"] = *req.SupplierID
	}
	if req.LocationID != nil {
		filter.Filters["location_id"] = *req.LocationID
	}
	if req.CreatedFrom != nil {
		filter.Filters["created_from"] = *req.CreatedFrom
	}
	if req.CreatedTo != nil {
		filter.Filters["created_to"] = *req.CreatedTo
	}
	return filter, nil
}
