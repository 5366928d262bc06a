package inventory

import (
	"context"
	"strings"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService exposes stock records and the ledger, and applies administrative adjustments
type InventoryService struct {
	recordRepo     inventory.InventoryRecordRepository
	movementRepo   inventory.MovementRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	recordRepo inventory.InventoryRecordRepository,
	movementRepo inventory.MovementRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		recordRepo:   recordRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Get returns the record of a (location, variant) pair
func (s *InventoryService) Get(ctx context.Context, locationID, variantID uuid.UUID) (*InventoryRecordResponse, error) {
	record, err := s.recordRepo.FindByKey(ctx, locationID, variantID)
	if err != nil {
		return nil, err
	}
	resp := ToInventoryRecordResponse(record)
	return &resp, nil
}

// List returns inventory records matching the request
func (s *InventoryService) List(ctx context.Context, req ListInventoryRequest) ([]InventoryRecordResponse, error) {
	filter := shared.Filter{
		Limit:    req.Limit,
		Offset:   req.Offset,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  map[string]any{},
	}
	if req.LocationID != nil {
		filter.Filters["location_id"] = *req.LocationID
	}
	if req.VariantID != nil {
		filter.Filters["variant_id"] = *req.VariantID
	}
	if req.BelowReorder {
		filter.Filters["below_reorder"] = true
	}

	records, err := s.recordRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]InventoryRecordResponse, len(records))
	for i := range records {
		result[i] = ToInventoryRecordResponse(&records[i])
	}
	return result, nil
}

// ListMovements returns ledger entries matching the request, newest first
func (s *InventoryService) ListMovements(ctx context.Context, req ListMovementsRequest) ([]MovementResponse, error) {
	movementType := inventory.MovementType(req.MovementType)
	if movementType != "" && !movementType.IsValid() {
		return nil, shared.NewValidationError("invalid movement_type: " + req.MovementType)
	}
	entries, err := s.movementRepo.FindAll(ctx, inventory.MovementFilter{
		LocationID:    req.LocationID,
		VariantID:     req.VariantID,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		MovementType:  movementType,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		return nil, err
	}
	result := make([]MovementResponse, len(entries))
	for i := range entries {
		result[i] = ToMovementResponse(&entries[i])
	}
	return result, nil
}

// Adjust appends a movement and applies it to the record in one transaction,
// so the record keeps matching its ledger. Restocks are reserved for purchase receipts.
func (s *InventoryService) Adjust(ctx context.Context, req AdjustInventoryRequest) (*MovementResponse, error) {
	movementType := inventory.MovementType(strings.TrimSpace(req.MovementType))
	if movementType == "" {
		movementType = inventory.MovementTypeAdjustment
	}
	if movementType == inventory.MovementTypeRestock {
		return nil, shared.NewValidationError("restock movements are created by purchase order receipts")
	}

	entry, err := inventory.NewMovementEntry(req.LocationID, req.VariantID, movementType, req.Quantity, inventory.ReferenceTypeAdjustment, nil)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.MovementRepo().Append(ctx, entry); err != nil {
			return err
		}
		return repos.InventoryRepo().ApplyDelta(ctx, inventory.DeltaFor(entry))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Inventory adjusted",
		zap.String("location_id", entry.LocationID.String()),
		zap.String("variant_id", entry.VariantID.String()),
		zap.String("movement_type", string(entry.MovementType)),
		zap.Int64("quantity", entry.Quantity),
		zap.String("reason", req.Reason),
	)
	s.publish(ctx, inventory.NewInventoryAdjustedEvent(entry, req.Reason))

	resp := ToMovementResponse(entry)
	return &resp, nil
}

// SetReorderLevel updates the reorder threshold of an existing record
func (s *InventoryService) SetReorderLevel(ctx context.Context, locationID, variantID uuid.UUID, level int64) (*InventoryRecordResponse, error) {
	record, err := s.recordRepo.FindByKey(ctx, locationID, variantID)
	if err != nil {
		return nil, err
	}
	if err := record.SetReorderLevel(level); err != nil {
		return nil, err
	}
	if err := s.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	resp := ToInventoryRecordResponse(record)
	return &resp, nil
}

func (s *InventoryService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish inventory events", zap.Error(err))
	}
}
