package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllWithTotals(ctx context.Context, filter shared.Filter) ([]purchasing.OrderWithTotals, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.OrderWithTotals), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, poNumber string) (bool, error) {
	args := m.Called(ctx, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *purchasing.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of PurchaseOrderItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrderItem), args.Error(1)
}

func (m *MockItemRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]purchasing.PurchaseOrderItem, error) {
	args := m.Called(ctx, orderID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.PurchaseOrderItem), args.Error(1)
}

func (m *MockItemRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) Create(ctx context.Context, item *purchasing.PurchaseOrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) CreateBatch(ctx context.Context, items []purchasing.PurchaseOrderItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockItemRepository) ClaimForReconciliation(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) SumLineTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockEstimateRepository is a mock implementation of PurchaseOrderEstimateRepository
type MockEstimateRepository struct {
	mock.Mock
}

func (m *MockEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrderEstimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrderEstimate), args.Error(1)
}

func (m *MockEstimateRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]purchasing.PurchaseOrderEstimate, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchasing.PurchaseOrderEstimate), args.Error(1)
}

func (m *MockEstimateRepository) Save(ctx context.Context, estimate *purchasing.PurchaseOrderEstimate) error {
	args := m.Called(ctx, estimate)
	return args.Error(0)
}

func (m *MockEstimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEstimateRepository) SumEstimatedTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, entry *inventory.MovementEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.MovementEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.MovementEntry), args.Error(1)
}

func (m *MockMovementRepository) SumForKey(ctx context.Context, locationID, variantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, locationID, variantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRecordRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindByKey(ctx context.Context, locationID, variantID uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, locationID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) ApplyDelta(ctx context.Context, delta inventory.StockDelta) error {
	args := m.Called(ctx, delta)
	return args.Error(0)
}

func (m *MockInventoryRepository) ResyncFromLedger(ctx context.Context, locationID, variantID uuid.UUID) error {
	args := m.Called(ctx, locationID, variantID)
	return args.Error(0)
}

func (m *MockInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockLocker is a mock implementation of KeyedLocker
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	args := m.Called(ctx, key, ttl)
	return func() { m.released++ }, args.Bool(0), args.Error(1)
}

func (m *MockLocker) Close() error {
	return nil
}

// MockReconciliationMetrics is a mock implementation of ReconciliationMetrics
type MockReconciliationMetrics struct {
	mock.Mock
}

func (m *MockReconciliationMetrics) RecordItemOutcome(ctx context.Context, outcome purchasing.ItemOutcome) {
	m.Called(ctx, outcome)
}

func (m *MockReconciliationMetrics) RecordRun(ctx context.Context, report *purchasing.ReconciliationReport) {
	m.Called(ctx, report)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// engineFixture bundles the mocks behind a ReconciliationEngine
type engineFixture struct {
	orderRepo     *MockPurchaseOrderRepository
	itemRepo      *MockItemRepository
	movementRepo  *MockMovementRepository
	inventoryRepo *MockInventoryRepository
	locker        *MockLocker
	engine        *ReconciliationEngine
	txScope       *NoOpTransactionScope
}

func newEngineFixture(config EngineConfig) *engineFixture {
	f := &engineFixture{
		orderRepo:     new(MockPurchaseOrderRepository),
		itemRepo:      new(MockItemRepository),
		movementRepo:  new(MockMovementRepository),
		inventoryRepo: new(MockInventoryRepository),
		locker:        new(MockLocker),
	}
	f.txScope = NewNoOpTransactionScope(f.orderRepo, f.itemRepo, f.movementRepo, f.inventoryRepo)
	f.engine = NewReconciliationEngine(f.itemRepo, f.txScope, f.locker, config, zap.NewNop())
	return f
}

func newOrder(t *testing.T, status purchasing.Status) *purchasing.PurchaseOrder {
	t.Helper()
	order, err := purchasing.NewPurchaseOrder("PO-"+uuid.NewString()[:8], uuid.New(), uuid.New(), status)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	order.ClearDomainEvents()
	return order
}

func newItem(t *testing.T, orderID uuid.UUID, variantID *uuid.UUID, qty int64, price string) purchasing.PurchaseOrderItem {
	t.Helper()
	item, err := purchasing.NewPurchaseOrderItem(orderID, variantID, qty, decimal.RequireFromString(price))
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	return *item
}

func ptr[T any](v T) *T {
	return &v
}
