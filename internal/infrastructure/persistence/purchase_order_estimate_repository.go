package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPurchaseOrderEstimateRepository implements PurchaseOrderEstimateRepository using GORM
type GormPurchaseOrderEstimateRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderEstimateRepository creates a new GormPurchaseOrderEstimateRepository
func NewGormPurchaseOrderEstimateRepository(db *gorm.DB) *GormPurchaseOrderEstimateRepository {
	return &GormPurchaseOrderEstimateRepository{db: db}
}

func (r *GormPurchaseOrderEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrderEstimate, error) {
	var model models.PurchaseOrderEstimateModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists an order's estimates, oldest first
func (r *GormPurchaseOrderEstimateRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]purchasing.PurchaseOrderEstimate, error) {
	var rows []models.PurchaseOrderEstimateModel
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	result := make([]purchasing.PurchaseOrderEstimate, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save inserts or fully updates an estimate
func (r *GormPurchaseOrderEstimateRepository) Save(ctx context.Context, estimate *purchasing.PurchaseOrderEstimate) error {
	return translateError(r.db.WithContext(ctx).Save(models.PurchaseOrderEstimateModelFromDomain(estimate)).Error)
}

func (r *GormPurchaseOrderEstimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseOrderEstimateModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumEstimatedTotals returns the sum of estimated_total_cost, 0 when there are no estimates
func (r *GormPurchaseOrderEstimateRepository) SumEstimatedTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderEstimateModel{}).
		Select("COALESCE(SUM(estimated_total_cost), 0)").
		Where("purchase_order_id = ?", orderID).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return total, nil
}

var _ purchasing.PurchaseOrderEstimateRepository = (*GormPurchaseOrderEstimateRepository)(nil)
