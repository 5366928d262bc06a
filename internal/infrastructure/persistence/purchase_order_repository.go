package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	filter = filter.Normalized()
	var rows []models.PurchaseOrderModel
	query := r.applyConditions(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter, "")
	err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseOrderSortFields, "")).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	orders := make([]purchasing.PurchaseOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// FindAllWithTotals lists orders with the sum and count of their items in one grouped query
func (r *GormPurchaseOrderRepository) FindAllWithTotals(ctx context.Context, filter shared.Filter) ([]purchasing.OrderWithTotals, error) {
	filter = filter.Normalized()
	var rows []models.PurchaseOrderWithTotalsRow
	query := r.db.WithContext(ctx).
		Table("purchase_orders AS po").
		Select("po.*, COALESCE(SUM(poi.quantity * poi.cost_price), 0) AS items_total, COUNT(poi.id) AS items_count").
		Joins("LEFT JOIN purchase_order_items AS poi ON poi.purchase_order_id = po.id")
	query = r.applyConditions(query, filter, "po")
	err := query.
		Group("po.id").
		Order(orderClause(filter.OrderBy, filter.OrderDir, PurchaseOrderSortFields, "po")).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	result := make([]purchasing.OrderWithTotals, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

// Count counts purchase orders matching the filter, ignoring pagination
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter, "")
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// ExistsByPONumber checks if an order number is taken
func (r *GormPurchaseOrderRepository) ExistsByPONumber(ctx context.Context, poNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("po_number = ?", poNumber).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// Create inserts a new purchase order
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "po_number already exists: "+order.PONumber)
		}
		return translateError(err)
	}
	return nil
}

// SaveWithLock updates the header only if the stored version still matches.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"supplier_id":        order.SupplierID,
				"location_id":        order.LocationID,
				"status":             string(order.Status),
				"total_cost":         order.TotalCost,
				"shipping_cost":      order.ShippingCost,
				"tipping_cost":       order.TippingCost,
				"miscellaneous_cost": order.MiscellaneousCost,
				"notes":              order.Notes,
				"reconciled_at":      order.ReconciledAt,
				"version":            order.Version + 1,
				"updated_at":         now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.PurchaseOrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}
		order.Version++
		order.UpdatedAt = now
		return nil
	}))
}

// Delete removes an order together with its items and estimates
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&models.PurchaseOrderEstimateModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_order_id = ?", id).Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.PurchaseOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	}))
}

// applyConditions applies search and field filters, qualifying columns with alias when set
func (r *GormPurchaseOrderRepository) applyConditions(query *gorm.DB, filter shared.Filter, alias string) *gorm.DB {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER("+col("po_number")+") LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where(col("status")+" = ?", value)
		case "supplier_id":
			query = query.Where(col("supplier_id")+" = ?", value)
		case "location_id":
			query = query.Where(col("location_id")+" = ?", value)
		case "created_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where(col("created_at")+" >= ?", t)
			}
		case "created_to":
			if t, ok := value.(time.Time); ok {
				query = query.Where(col("created_at")+" <= ?", t)
			}
		}
	}
	return query
}

var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
