package persistence

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPurchaseOrderItemRepository implements PurchaseOrderItemRepository using GORM
type GormPurchaseOrderItemRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderItemRepository creates a new GormPurchaseOrderItemRepository
func NewGormPurchaseOrderItemRepository(db *gorm.DB) *GormPurchaseOrderItemRepository {
	return &GormPurchaseOrderItemRepository{db: db}
}

func (r *GormPurchaseOrderItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrderItem, error) {
	var model models.PurchaseOrderItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder returns one page of an order's items ordered by creation then id
func (r *GormPurchaseOrderItemRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]purchasing.PurchaseOrderItem, error) {
	var rows []models.PurchaseOrderItemModel
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	items := make([]purchasing.PurchaseOrderItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

func (r *GormPurchaseOrderItemRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItemModel{}).
		Where("purchase_order_id = ?", orderID).
		Count(&count).Error
	return count, translateError(err)
}

func (r *GormPurchaseOrderItemRepository) Create(ctx context.Context, item *purchasing.PurchaseOrderItem) error {
	return translateError(r.db.WithContext(ctx).Create(models.PurchaseOrderItemModelFromDomain(item)).Error)
}

// CreateBatch inserts several items in one statement
func (r *GormPurchaseOrderItemRepository) CreateBatch(ctx context.Context, items []purchasing.PurchaseOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.PurchaseOrderItemModel, len(items))
	for i := range items {
		rows[i] = models.PurchaseOrderItemModelFromDomain(&items[i])
	}
	return translateError(r.db.WithContext(ctx).Create(rows).Error)
}

// ClaimForReconciliation marks the item reconciled only if nobody did so before
func (r *GormPurchaseOrderItemRepository) ClaimForReconciliation(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItemModel{}).
		Where("id = ? AND reconciled_at IS NULL", id).
		Updates(map[string]any{"reconciled_at": at, "updated_at": at})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SumLineTotals returns the sum of quantity x cost_price, 0 when the order has no items
func (r *GormPurchaseOrderItemRepository) SumLineTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItemModel{}).
		Select("COALESCE(SUM(quantity * cost_price), 0)").
		Where("purchase_order_id = ?", orderID).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return total, nil
}

var _ purchasing.PurchaseOrderItemRepository = (*GormPurchaseOrderItemRepository)(nil)
