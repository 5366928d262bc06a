package purchasing

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
)

// TransactionScope provides transactional access to the repositories touched by procurement.
// All repository operations inside fn commit or roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one transaction
type TransactionalRepositories interface {
	OrderRepo() purchasing.PurchaseOrderRepository
	ItemRepo() purchasing.PurchaseOrderItemRepository
	MovementRepo() inventory.MovementRepository
	InventoryRepo() inventory.InventoryRecordRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	orderRepo     purchasing.PurchaseOrderRepository
	itemRepo      purchasing.PurchaseOrderItemRepository
	movementRepo  inventory.MovementRepository
	inventoryRepo inventory.InventoryRecordRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo purchasing.PurchaseOrderRepository,
	itemRepo purchasing.PurchaseOrderItemRepository,
	movementRepo inventory.MovementRepository,
	inventoryRepo inventory.InventoryRecordRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		movementRepo:  movementRepo,
		inventoryRepo: inventoryRepo,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() purchasing.PurchaseOrderRepository    { return s.orderRepo }
func (s *NoOpTransactionScope) ItemRepo() purchasing.PurchaseOrderItemRepository { return s.itemRepo }
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository       { return s.movementRepo }
func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryRecordRepository {
	return s.inventoryRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
