package inventory

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
)

// TransactionScope provides transactional access to inventory repositories.
// All repository operations inside fn commit or roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to one transaction.
//   - InventoryRepo: stock aggregates, changed only through atomic deltas or ledger resync
//   - MovementRepo: append-only ledger
//   - DriftRepo: drift detection and reports
type TransactionalRepositories interface {
	InventoryRepo() inventory.InventoryRecordRepository
	MovementRepo() inventory.MovementRepository
	DriftRepo() inventory.DriftRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	inventoryRepo inventory.InventoryRecordRepository
	movementRepo  inventory.MovementRepository
	driftRepo     inventory.DriftRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	inventoryRepo inventory.InventoryRecordRepository,
	movementRepo inventory.MovementRepository,
	driftRepo inventory.DriftRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		inventoryRepo: inventoryRepo,
		movementRepo:  movementRepo,
		driftRepo:     driftRepo,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryRecordRepository { return s.inventoryRepo }
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository         { return s.movementRepo }
func (s *NoOpTransactionScope) DriftRepo() inventory.DriftRepository               { return s.driftRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
