package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements the append-only MovementRepository using GORM.
// It exposes no update or delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts a ledger entry
func (r *GormMovementRepository) Append(ctx context.Context, entry *inventory.MovementEntry) error {
	return translateError(r.db.WithContext(ctx).Create(models.MovementModelFromDomain(entry)).Error)
}

// FindAll lists entries newest first
func (r *GormMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.MovementEntry, error) {
	page := shared.Filter{Limit: filter.Limit, Offset: filter.Offset}.Normalized()
	query := r.db.WithContext(ctx).Model(&models.MovementModel{})
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.VariantID != nil {
		query = query.Where("variant_id = ?", *filter.VariantID)
	}
	if filter.ReferenceType != "" {
		query = query.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.MovementType != "" {
		query = query.Where("movement_type = ?", string(filter.MovementType))
	}

	var rows []models.MovementModel
	err := query.
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	entries := make([]inventory.MovementEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// SumForKey returns the ledger balance of a pair
func (r *GormMovementRepository) SumForKey(ctx context.Context, locationID, variantID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.MovementModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("location_id = ? AND variant_id = ?", locationID, variantID).
		Row().Scan(&sum)
	if err != nil {
		return 0, translateError(err)
	}
	return sum, nil
}

var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
