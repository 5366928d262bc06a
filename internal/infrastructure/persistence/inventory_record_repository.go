package persistence

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRecordRepository implements InventoryRecordRepository using GORM
type GormInventoryRecordRepository struct {
	db *gorm.DB
}

// NewGormInventoryRecordRepository creates a new GormInventoryRecordRepository
func NewGormInventoryRecordRepository(db *gorm.DB) *GormInventoryRecordRepository {
	return &GormInventoryRecordRepository{db: db}
}

// FindByKey finds the record of a (location, variant) pair
func (r *GormInventoryRecordRepository) FindByKey(ctx context.Context, locationID, variantID uuid.UUID) (*inventory.InventoryRecord, error) {
	var model models.InventoryRecordModel
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND variant_id = ?", locationID, variantID).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists records; supported filters are location_id, variant_id and below_reorder
func (r *GormInventoryRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	filter = filter.Normalized()
	query := r.db.WithContext(ctx).Model(&models.InventoryRecordModel{})
	for key, value := range filter.Filters {
		switch key {
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "variant_id":
			query = query.Where("variant_id = ?", value)
		case "below_reorder":
			if b, ok := value.(bool); ok && b {
				query = query.Where("reorder_level > 0 AND quantity_on_hand <= reorder_level")
			}
		}
	}

	var rows []models.InventoryRecordModel
	err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, InventoryRecordSortFields, "")).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	records := make([]inventory.InventoryRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// ApplyDelta adds the delta in a single INSERT ... ON CONFLICT DO UPDATE statement.
// Concurrent callers on the same pair serialize on the row inside the database,
// so no increment can be lost.
func (r *GormInventoryRecordRepository) ApplyDelta(ctx context.Context, delta inventory.StockDelta) error {
	now := time.Now()
	model := &models.InventoryRecordModel{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		LocationID:     delta.LocationID,
		VariantID:      delta.VariantID,
		QuantityOnHand: delta.Quantity,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "location_id"}, {Name: "variant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity_on_hand": gorm.Expr("inventory_records.quantity_on_hand + EXCLUDED.quantity_on_hand"),
				"updated_at":       gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(model).Error
	return translateError(err)
}

// ResyncFromLedger sets quantity_on_hand to the ledger sum using a correlated subquery
func (r *GormInventoryRecordRepository) ResyncFromLedger(ctx context.Context, locationID, variantID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryRecordModel{}).
		Where("location_id = ? AND variant_id = ?", locationID, variantID).
		Updates(map[string]any{
			"quantity_on_hand": gorm.Expr("(SELECT COALESCE(SUM(m.quantity), 0) FROM inventory_movements AS m " +
				"WHERE m.location_id = inventory_records.location_id AND m.variant_id = inventory_records.variant_id)"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save updates the record's reorder level. Quantities only change through ApplyDelta or ResyncFromLedger.
func (r *GormInventoryRecordRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryRecordModel{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{"reorder_level": record.ReorderLevel, "updated_at": record.UpdatedAt})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ inventory.InventoryRecordRepository = (*GormInventoryRecordRepository)(nil)
