package integration

import (
	"testing"
	"time"

	appinv "github.com/erp/procurement/internal/application/inventory"
	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/event"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/storage"
	"github.com/erp/procurement/tests/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// stack wires every service the way cmd/server does, over a real database
type stack struct {
	db        *persistence.Database
	orders    *apppur.PurchaseOrderService
	estimates *apppur.EstimateService
	items     *apppur.ItemService
	variance  *apppur.VarianceService
	inventory *appinv.InventoryService
	drift     *appinv.DriftCheckService
	reports   *storage.MemoryReportStore
	events    *testutil.EventRecorder
	log       *zap.Logger
}

func newStack(t *testing.T, db *persistence.Database, locker shared.KeyedLocker) *stack {
	t.Helper()
	log := zaptest.NewLogger(t)

	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	itemRepo := persistence.NewGormPurchaseOrderItemRepository(db.DB)
	estimateRepo := persistence.NewGormPurchaseOrderEstimateRepository(db.DB)
	recordRepo := persistence.NewGormInventoryRecordRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	driftRepo := persistence.NewGormDriftRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	engine := apppur.NewReconciliationEngine(itemRepo, scope.PurchasingScope(), locker,
		apppur.EngineConfig{PageSize: 2, LockTTL: 30 * time.Second}, log)

	s := &stack{
		db:        db,
		orders:    apppur.NewPurchaseOrderService(orderRepo, scope.PurchasingScope(), engine, log),
		estimates: apppur.NewEstimateService(orderRepo, estimateRepo, log),
		items:     apppur.NewItemService(orderRepo, itemRepo, engine, log),
		variance:  apppur.NewVarianceService(orderRepo, itemRepo, estimateRepo),
		inventory: appinv.NewInventoryService(recordRepo, movementRepo, scope.InventoryScope(), log),
		drift: appinv.NewDriftCheckService(driftRepo, scope.InventoryScope(),
			appinv.DriftCheckConfig{ExportPrefix: "drift"}, log),
		reports: storage.NewMemoryReportStore(),
		events:  testutil.NewEventRecorder(),
		log:     log,
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(s.events)
	s.orders.SetEventPublisher(bus)
	s.inventory.SetEventPublisher(bus)
	s.drift.SetEventPublisher(bus)
	s.drift.SetExporter(s.reports)
	return s
}
