package purchasing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconciliationEngine_Reconcile(t *testing.T) {
	t.Run("applies every stock line to ledger and inventory", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		v1, v2 := uuid.New(), uuid.New()
		items := []purchasing.PurchaseOrderItem{
			newItem(t, order.ID, &v1, 5, "10"),
			newItem(t, order.ID, &v2, 3, "4.50"),
		}

		f.locker.On("TryLock", mock.Anything, "reconcile:purchase_order:"+order.ID.String(), 2*time.Minute).Return(true, nil)
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 500, 0).Return(items, nil)
		f.itemRepo.On("ClaimForReconciliation", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.movementRepo.On("Append", mock.Anything, mock.MatchedBy(func(m *inventory.MovementEntry) bool {
			return m.MovementType == inventory.MovementTypeRestock &&
				m.ReferenceType == inventory.ReferenceTypePurchaseOrder &&
				*m.ReferenceID == order.ID &&
				m.LocationID == order.LocationID
		})).Return(nil)
		f.inventoryRepo.On("ApplyDelta", mock.Anything, inventory.StockDelta{LocationID: order.LocationID, VariantID: v1, Quantity: 5}).Return(nil)
		f.inventoryRepo.On("ApplyDelta", mock.Anything, inventory.StockDelta{LocationID: order.LocationID, VariantID: v2, Quantity: 3}).Return(nil)

		report, err := f.engine.Reconcile(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Succeeded)
		assert.Equal(t, 0, report.Failed)
		assert.Len(t, report.Results, 2)
		assert.False(t, report.FinishedAt.IsZero())
		assert.Equal(t, 1, f.locker.released)
		f.movementRepo.AssertNumberOfCalls(t, "Append", 2)
		f.inventoryRepo.AssertExpectations(t)
	})

	t.Run("skips non-stock and already reconciled lines", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		v1 := uuid.New()
		done := newItem(t, order.ID, &v1, 2, "1")
		done.ReconciledAt = ptr(time.Now())
		items := []purchasing.PurchaseOrderItem{
			newItem(t, order.ID, nil, 1, "25"),
			done,
		}

		f.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 500, 0).Return(items, nil)

		report, err := f.engine.Reconcile(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, purchasing.SkipNoVariant, report.Results[0].Reason)
		assert.Equal(t, purchasing.SkipAlreadyReconciled, report.Results[1].Reason)
		f.itemRepo.AssertNotCalled(t, "ClaimForReconciliation", mock.Anything, mock.Anything, mock.Anything)
		f.movementRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("losing the claim race skips the line", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		v1 := uuid.New()
		items := []purchasing.PurchaseOrderItem{newItem(t, order.ID, &v1, 2, "1")}

		f.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 500, 0).Return(items, nil)
		f.itemRepo.On("ClaimForReconciliation", mock.Anything, items[0].ID, mock.Anything).Return(false, nil)

		report, err := f.engine.Reconcile(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, purchasing.SkipAlreadyReconciled, report.Results[0].Reason)
		f.movementRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("a failing line does not stop the others", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		metrics := new(MockReconciliationMetrics)
		f.engine.SetMetrics(metrics)
		order := newOrder(t, purchasing.StatusReceived)
		v1, v2, v3 := uuid.New(), uuid.New(), uuid.New()
		items := []purchasing.PurchaseOrderItem{
			newItem(t, order.ID, &v1, 1, "1"),
			newItem(t, order.ID, &v2, 2, "1"),
			newItem(t, order.ID, &v3, 3, "1"),
		}

		f.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 500, 0).Return(items, nil)
		f.itemRepo.On("ClaimForReconciliation", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.movementRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.inventoryRepo.On("ApplyDelta", mock.Anything, mock.MatchedBy(func(d inventory.StockDelta) bool {
			return d.VariantID == v2
		})).Return(shared.NewStorageError(errors.New("connection reset")))
		f.inventoryRepo.On("ApplyDelta", mock.Anything, mock.Anything).Return(nil)
		metrics.On("RecordItemOutcome", mock.Anything, purchasing.OutcomeSuccess).Return().Twice()
		metrics.On("RecordItemOutcome", mock.Anything, purchasing.OutcomeFailed).Return().Once()
		metrics.On("RecordRun", mock.Anything, mock.Anything).Return().Once()

		report, err := f.engine.Reconcile(context.Background(), order)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Succeeded)
		assert.Equal(t, 1, report.Failed)
		assert.True(t, report.HasFailures())
		assert.Equal(t, purchasing.OutcomeFailed, report.Results[1].Outcome)
		assert.Equal(t, items[1].ID, report.Results[1].ItemID)
		assert.Contains(t, report.Results[1].Reason, "connection reset")
		assert.Equal(t, purchasing.OutcomeSuccess, report.Results[2].Outcome)
		metrics.AssertExpectations(t)
	})

	t.Run("pages through all items", func(t *testing.T) {
		f := newEngineFixture(EngineConfig{PageSize: 2, LockTTL: time.Second})
		order := newOrder(t, purchasing.StatusReceived)
		page1 := []purchasing.PurchaseOrderItem{
			newItem(t, order.ID, nil, 1, "1"),
			newItem(t, order.ID, nil, 1, "1"),
		}
		page2 := []purchasing.PurchaseOrderItem{newItem(t, order.ID, nil, 1, "1")}

		f.locker.On("TryLock", mock.Anything, mock.Anything, time.Second).Return(true, nil)
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 2, 0).Return(page1, nil).Once()
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 2, 2).Return(page2, nil).Once()

		report, err := f.engine.Reconcile(context.Background(), order)

		require.NoError(t, err)
		assert.Len(t, report.Results, 3)
		f.itemRepo.AssertExpectations(t)
	})

	t.Run("rejects when another replay holds the order lock", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		f.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		report, err := f.engine.Reconcile(context.Background(), order)

		assert.Nil(t, report)
		assert.ErrorIs(t, err, shared.ErrConflict)
		f.itemRepo.AssertNotCalled(t, "FindByOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("listing failure is fatal", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		f.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.itemRepo.On("FindByOrder", mock.Anything, order.ID, 500, 0).Return(nil, shared.NewStorageError(errors.New("down")))

		report, err := f.engine.Reconcile(context.Background(), order)

		assert.Nil(t, report)
		assert.ErrorIs(t, err, shared.ErrStorage)
		assert.Equal(t, 1, f.locker.released)
	})
}

func TestReconciliationEngine_ReconcileItem(t *testing.T) {
	t.Run("marks the item reconciled on success", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		v1 := uuid.New()
		item := newItem(t, order.ID, &v1, 4, "2")

		f.itemRepo.On("ClaimForReconciliation", mock.Anything, item.ID, mock.Anything).Return(true, nil)
		f.movementRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		f.inventoryRepo.On("ApplyDelta", mock.Anything, inventory.StockDelta{LocationID: order.LocationID, VariantID: v1, Quantity: 4}).Return(nil)

		result := f.engine.ReconcileItem(context.Background(), order, &item)

		assert.Equal(t, purchasing.OutcomeSuccess, result.Outcome)
		assert.True(t, item.IsReconciled())
	})

	t.Run("ledger failure is reported, not returned", func(t *testing.T) {
		f := newEngineFixture(DefaultEngineConfig())
		order := newOrder(t, purchasing.StatusReceived)
		v1 := uuid.New()
		item := newItem(t, order.ID, &v1, 4, "2")

		f.itemRepo.On("ClaimForReconciliation", mock.Anything, item.ID, mock.Anything).Return(true, nil)
		f.movementRepo.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		result := f.engine.ReconcileItem(context.Background(), order, &item)

		assert.Equal(t, purchasing.OutcomeFailed, result.Outcome)
		assert.Equal(t, "disk full", result.Reason)
		assert.False(t, item.IsReconciled())
		f.inventoryRepo.AssertNotCalled(t, "ApplyDelta", mock.Anything, mock.Anything)
	})
}

func TestNewReconciliationEngine_Defaults(t *testing.T) {
	f := newEngineFixture(EngineConfig{})
	assert.Equal(t, 500, f.engine.config.PageSize)
	assert.Equal(t, 2*time.Minute, f.engine.config.LockTTL)
}
