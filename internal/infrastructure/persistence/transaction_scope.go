package persistence

import (
	"context"

	appinv "github.com/erp/procurement/internal/application/inventory"
	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
	"gorm.io/gorm"
)

// GormTransactionScope implements both application TransactionScope interfaces using GORM
// transactions. If fn returns an error the transaction is rolled back, otherwise committed.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// InventoryScope returns the scope as seen by the inventory services
func (s *GormTransactionScope) InventoryScope() appinv.TransactionScope {
	return inventoryScope{s}
}

// PurchasingScope returns the scope as seen by the purchasing services
func (s *GormTransactionScope) PurchasingScope() apppur.TransactionScope {
	return purchasingScope{s}
}

func (s *GormTransactionScope) run(ctx context.Context, fn func(repos *gormTransactionalRepositories) error) error {
	return translateError(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}))
}

type inventoryScope struct{ s *GormTransactionScope }

func (i inventoryScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return i.s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

type purchasingScope struct{ s *GormTransactionScope }

func (p purchasingScope) Execute(ctx context.Context, fn func(repos apppur.TransactionalRepositories) error) error {
	return p.s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) InventoryRepo() inventory.InventoryRecordRepository {
	return NewGormInventoryRecordRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) DriftRepo() inventory.DriftRepository {
	return NewGormDriftRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() purchasing.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ItemRepo() purchasing.PurchaseOrderItemRepository {
	return NewGormPurchaseOrderItemRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = inventoryScope{}
	_ apppur.TransactionScope          = purchasingScope{}
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apppur.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
