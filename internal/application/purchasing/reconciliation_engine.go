package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReconciliationMetrics records reconciliation outcomes
type ReconciliationMetrics interface {
	RecordItemOutcome(ctx context.Context, outcome purchasing.ItemOutcome)
	RecordRun(ctx context.Context, report *purchasing.ReconciliationReport)
}

// EngineConfig tunes the reconciliation engine
type EngineConfig struct {
	// PageSize is how many items are loaded per query while replaying an order
	PageSize int
	// LockTTL bounds how long one order replay may hold the order lock
	LockTTL time.Duration
}

// DefaultEngineConfig returns the default engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PageSize: 500,
		LockTTL:  2 * time.Minute,
	}
}

var errAlreadyClaimed = errors.New("item already reconciled")

// ReconciliationEngine replays received purchase order lines into the movement ledger
// and the inventory store. Every line is applied at most once: the line is claimed,
// its restock movement appended and the stock delta upserted in one transaction.
type ReconciliationEngine struct {
	itemRepo purchasing.PurchaseOrderItemRepository
	txScope  TransactionScope
	locker   shared.KeyedLocker
	metrics  ReconciliationMetrics
	config   EngineConfig
	logger   *zap.Logger
}

// NewReconciliationEngine creates a new ReconciliationEngine
func NewReconciliationEngine(
	itemRepo purchasing.PurchaseOrderItemRepository,
	txScope TransactionScope,
	locker shared.KeyedLocker,
	config EngineConfig,
	logger *zap.Logger,
) *ReconciliationEngine {
	defaults := DefaultEngineConfig()
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.LockTTL <= 0 {
		config.LockTTL = defaults.LockTTL
	}
	return &ReconciliationEngine{
		itemRepo: itemRepo,
		txScope:  txScope,
		locker:   locker,
		config:   config,
		logger:   logger,
	}
}

// SetMetrics sets the metrics recorder
func (e *ReconciliationEngine) SetMetrics(metrics ReconciliationMetrics) {
	e.metrics = metrics
}

// Reconcile replays every line of order. Per-line failures are recorded in the report
// and do not stop the run; only failing to lock the order or to list its lines is fatal.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, order *purchasing.PurchaseOrder) (_ *purchasing.ReconciliationReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "reconcile",
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrOrderNumber, order.PONumber,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if e.locker != nil {
		release, ok, err := e.locker.TryLock(ctx, lockKey(order), e.config.LockTTL)
		if err != nil {
			return nil, shared.NewStorageError(fmt.Errorf("acquire reconciliation lock: %w", err))
		}
		if !ok {
			return nil, shared.NewDomainError(shared.CodeConflict,
				fmt.Sprintf("purchase order %s is already being reconciled", order.PONumber))
		}
		defer release()
	}

	report := purchasing.NewReconciliationReport(order)
	for offset := 0; ; offset += e.config.PageSize {
		items, err := e.itemRepo.FindByOrder(ctx, order.ID, e.config.PageSize, offset)
		if err != nil {
			e.logger.Error("Failed to load purchase order items for reconciliation",
				zap.String("order_id", order.ID.String()),
				zap.Int("offset", offset),
				zap.Error(err),
			)
			return nil, err
		}
		for i := range items {
			report.Add(e.ReconcileItem(ctx, order, &items[i]))
		}
		if len(items) < e.config.PageSize {
			break
		}
	}
	report.Finish()
	telemetry.SetAttributes(span,
		"reconciliation.succeeded", report.Succeeded,
		"reconciliation.skipped", report.Skipped,
		"reconciliation.failed", report.Failed,
	)

	e.logger.Info("Reconciled purchase order",
		zap.String("order_id", order.ID.String()),
		zap.String("po_number", order.PONumber),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration()),
	)
	if e.metrics != nil {
		e.metrics.RecordRun(ctx, report)
	}
	return report, nil
}

// ReconcileItem applies a single line. It never returns an error: failures become
// a failed result, are logged with the ids needed for a manual replay and are counted.
func (e *ReconciliationEngine) ReconcileItem(ctx context.Context, order *purchasing.PurchaseOrder, item *purchasing.PurchaseOrderItem) purchasing.ItemResult {
	result := purchasing.ItemResult{
		ItemID:    item.ID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
	}

	switch {
	case !item.IsStockLine():
		result.Outcome = purchasing.OutcomeSkipped
		result.Reason = purchasing.SkipNoVariant
	case item.IsReconciled():
		result.Outcome = purchasing.OutcomeSkipped
		result.Reason = purchasing.SkipAlreadyReconciled
	default:
		err := e.applyItem(ctx, order, item)
		switch {
		case err == nil:
			result.Outcome = purchasing.OutcomeSuccess
		case errors.Is(err, errAlreadyClaimed):
			result.Outcome = purchasing.OutcomeSkipped
			result.Reason = purchasing.SkipAlreadyReconciled
		default:
			result.Outcome = purchasing.OutcomeFailed
			result.Reason = err.Error()
			e.logger.Error("Failed to reconcile purchase order item",
				zap.String("order_id", order.ID.String()),
				zap.String("item_id", item.ID.String()),
				zap.String("variant_id", item.VariantID.String()),
				zap.String("location_id", order.LocationID.String()),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}

	if e.metrics != nil {
		e.metrics.RecordItemOutcome(ctx, result.Outcome)
	}
	return result
}

func (e *ReconciliationEngine) applyItem(ctx context.Context, order *purchasing.PurchaseOrder, item *purchasing.PurchaseOrderItem) error {
	entry, err := inventory.NewRestockFromPurchaseOrder(order.LocationID, *item.VariantID, order.ID, item.Quantity)
	if err != nil {
		return err
	}
	now := time.Now()
	err = e.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		claimed, err := repos.ItemRepo().ClaimForReconciliation(ctx, item.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return errAlreadyClaimed
		}
		if err := repos.MovementRepo().Append(ctx, entry); err != nil {
			return err
		}
		return repos.InventoryRepo().ApplyDelta(ctx, inventory.DeltaFor(entry))
	})
	if err == nil {
		item.ReconciledAt = &now
	}
	return err
}

func lockKey(order *purchasing.PurchaseOrder) string {
	return "reconcile:purchase_order:" + order.ID.String()
}
