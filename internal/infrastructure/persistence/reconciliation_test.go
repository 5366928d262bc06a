package persistence

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type receivingFixture struct {
	db        *gorm.DB
	orders    *apppur.PurchaseOrderService
	variance  *apppur.VarianceService
	records   *GormInventoryRecordRepository
	movements *GormMovementRepository
}

func newReceivingFixture(t *testing.T) *receivingFixture {
	t.Helper()
	db := newSQLiteDB(t)
	orderRepo := NewGormPurchaseOrderRepository(db)
	itemRepo := NewGormPurchaseOrderItemRepository(db)
	scope := NewGormTransactionScope(db).PurchasingScope()
	engine := apppur.NewReconciliationEngine(itemRepo, scope, nil, apppur.EngineConfig{PageSize: 2}, zap.NewNop())

	return &receivingFixture{
		db:        db,
		orders:    apppur.NewPurchaseOrderService(orderRepo, scope, engine, zap.NewNop()),
		variance:  apppur.NewVarianceService(orderRepo, itemRepo, NewGormPurchaseOrderEstimateRepository(db)),
		records:   NewGormInventoryRecordRepository(db),
		movements: NewGormMovementRepository(db),
	}
}

func (f *receivingFixture) onHand(t *testing.T, locationID, variantID uuid.UUID) int64 {
	t.Helper()
	record, err := f.records.FindByKey(context.Background(), locationID, variantID)
	require.NoError(t, err)
	return record.QuantityOnHand
}

// failMovementsFor makes every ledger insert for variantID fail while enabled is set
func failMovementsFor(t *testing.T, db *gorm.DB, variantID uuid.UUID, enabled *atomic.Bool) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_movement", func(tx *gorm.DB) {
		if !enabled.Load() {
			return
		}
		if m, ok := tx.Statement.Dest.(*models.MovementModel); ok && m.VariantID == variantID {
			_ = tx.AddError(errors.New("ledger unavailable"))
		}
	})
	require.NoError(t, err)
}

func TestReceivingReplaysItemsIntoInventory(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	locationID := uuid.New()
	v1, v2 := uuid.New(), uuid.New()

	created, err := f.orders.Create(ctx, apppur.CreatePurchaseOrderRequest{
		PONumber:   "PO-RECV-1",
		SupplierID: uuid.New(),
		LocationID: locationID,
		Status:     "ordered",
		Items: []apppur.CreateItemRequest{
			{VariantID: &v1, Quantity: 4, CostPrice: decimal.NewFromInt(25)},
			{VariantID: &v2, Quantity: 2, CostPrice: decimal.NewFromInt(10)},
			{Quantity: 1, CostPrice: decimal.NewFromInt(15)},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, created.Reconciliation)

	estimate, err := purchasing.NewPurchaseOrderEstimate(created.ID, uuid.New(), 6, decimal.NewFromInt(100), "")
	require.NoError(t, err)
	require.NoError(t, NewGormPurchaseOrderEstimateRepository(f.db).Save(ctx, estimate))

	received := "received"
	resp, err := f.orders.UpdateStatus(ctx, created.ID, apppur.UpdateStatusRequest{Status: &received})
	require.NoError(t, err)
	require.NotNil(t, resp.Reconciliation)
	assert.Equal(t, 2, resp.Reconciliation.Succeeded)
	assert.Equal(t, 1, resp.Reconciliation.Skipped)
	assert.Equal(t, 0, resp.Reconciliation.Failed)
	assert.NotNil(t, resp.ReconciledAt)

	assert.Equal(t, int64(4), f.onHand(t, locationID, v1))
	assert.Equal(t, int64(2), f.onHand(t, locationID, v2))

	ledger, err := f.movements.FindAll(ctx, inventory.MovementFilter{ReferenceID: &created.ID})
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
	for _, m := range ledger {
		assert.Equal(t, inventory.MovementTypeRestock, m.MovementType)
		assert.Equal(t, inventory.ReferenceTypePurchaseOrder, m.ReferenceType)
	}

	variance, err := f.variance.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, variance.EstimatedTotal.Equal(decimal.NewFromInt(100)), variance.EstimatedTotal.String())
	assert.True(t, variance.ActualTotal.Equal(decimal.NewFromInt(135)), variance.ActualTotal.String())
	assert.True(t, variance.Variance.Equal(decimal.NewFromInt(35)), variance.Variance.String())

	t.Run("saving a received order again does not replay", func(t *testing.T) {
		notes := "checked in"
		again, err := f.orders.UpdateStatus(ctx, created.ID, apppur.UpdateStatusRequest{Status: &received, Notes: &notes})
		require.NoError(t, err)
		assert.Nil(t, again.Reconciliation)
		assert.Equal(t, int64(4), f.onHand(t, locationID, v1))
	})

	t.Run("manual reconcile skips applied lines", func(t *testing.T) {
		replay, err := f.orders.Reconcile(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, replay.Reconciliation.Succeeded)
		assert.Equal(t, 3, replay.Reconciliation.Skipped)
		assert.Equal(t, int64(4), f.onHand(t, locationID, v1))
		assert.Equal(t, int64(2), f.onHand(t, locationID, v2))
	})
}

func TestReceivingWithFailingLineCommitsTheRest(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	locationID := uuid.New()
	v1, v2 := uuid.New(), uuid.New()

	var failing atomic.Bool
	failing.Store(true)
	failMovementsFor(t, f.db, v2, &failing)

	created, err := f.orders.Create(ctx, apppur.CreatePurchaseOrderRequest{
		PONumber:   "PO-RECV-2",
		SupplierID: uuid.New(),
		LocationID: locationID,
		Status:     "ordered",
		Items: []apppur.CreateItemRequest{
			{VariantID: &v1, Quantity: 3, CostPrice: decimal.NewFromInt(1)},
			{VariantID: &v2, Quantity: 5, CostPrice: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	received := "received"
	resp, err := f.orders.UpdateStatus(ctx, created.ID, apppur.UpdateStatusRequest{Status: &received})
	require.NoError(t, err)
	assert.Equal(t, "received", resp.Status)
	assert.Equal(t, 1, resp.Reconciliation.Succeeded)
	assert.Equal(t, 1, resp.Reconciliation.Failed)

	assert.Equal(t, int64(3), f.onHand(t, locationID, v1))
	_, err = f.records.FindByKey(ctx, locationID, v2)
	assert.Error(t, err, "a failed line must leave no partial stock")

	failing.Store(false)
	retry, err := f.orders.Reconcile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Reconciliation.Succeeded)
	assert.Equal(t, 1, retry.Reconciliation.Skipped)
	assert.Equal(t, int64(3), f.onHand(t, locationID, v1))
	assert.Equal(t, int64(5), f.onHand(t, locationID, v2))
}

func TestReconcileRejectsOrdersNotReceived(t *testing.T) {
	f := newReceivingFixture(t)
	created, err := f.orders.Create(context.Background(), apppur.CreatePurchaseOrderRequest{
		PONumber:   "PO-RECV-3",
		SupplierID: uuid.New(),
		LocationID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = f.orders.Reconcile(context.Background(), created.ID)

	assert.Error(t, err)
}

type flakyLocker struct {
	down atomic.Bool
}

func (l *flakyLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	if l.down.Load() {
		return nil, false, errors.New("redis down")
	}
	return func() {}, true, nil
}

func (l *flakyLocker) Close() error { return nil }

func TestCreateReceivedWithLockOutageStaysOrdered(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	orderRepo := NewGormPurchaseOrderRepository(db)
	itemRepo := NewGormPurchaseOrderItemRepository(db)
	scope := NewGormTransactionScope(db).PurchasingScope()
	locker := &flakyLocker{}
	locker.down.Store(true)
	engine := apppur.NewReconciliationEngine(itemRepo, scope, locker, apppur.DefaultEngineConfig(), zap.NewNop())
	orders := apppur.NewPurchaseOrderService(orderRepo, scope, engine, zap.NewNop())
	locationID, variantID := uuid.New(), uuid.New()

	_, err := orders.Create(ctx, apppur.CreatePurchaseOrderRequest{
		PONumber:   "PO-LOCK-1",
		SupplierID: uuid.New(),
		LocationID: locationID,
		Status:     "received",
		Items:      []apppur.CreateItemRequest{{VariantID: &variantID, Quantity: 5, CostPrice: decimal.NewFromInt(2)}},
	})
	require.Error(t, err)

	var model models.PurchaseOrderModel
	require.NoError(t, db.Where("po_number = ?", "PO-LOCK-1").First(&model).Error)
	stored := model.ToDomain()
	assert.Equal(t, purchasing.StatusOrdered, stored.Status)
	assert.Nil(t, stored.ReconciledAt)

	var records int64
	require.NoError(t, db.Model(&models.InventoryRecordModel{}).Count(&records).Error)
	assert.Zero(t, records)

	locker.down.Store(false)
	received := "received"
	resp, err := orders.UpdateStatus(ctx, stored.ID, apppur.UpdateStatusRequest{Status: &received})
	require.NoError(t, err)
	require.NotNil(t, resp.Reconciliation)
	assert.Equal(t, 1, resp.Reconciliation.Succeeded)

	record, err := NewGormInventoryRecordRepository(db).FindByKey(ctx, locationID, variantID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.QuantityOnHand)
}
