package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	PONumber          string          `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex"`
	SupplierID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status            string          `gorm:"type:varchar(30);not null;index"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TippingCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MiscellaneousCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes             string          `gorm:"type:text"`
	ReconciledAt      *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	return &purchasing.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PONumber:          m.PONumber,
		SupplierID:        m.SupplierID,
		LocationID:        m.LocationID,
		Status:            purchasing.Status(m.Status),
		Costs: purchasing.Costs{
			TotalCost:         m.TotalCost,
			ShippingCost:      m.ShippingCost,
			TippingCost:       m.TippingCost,
			MiscellaneousCost: m.MiscellaneousCost,
		},
		Notes:        m.Notes,
		ReconciledAt: m.ReconciledAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrder
func (m *PurchaseOrderModel) FromDomain(o *purchasing.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.PONumber = o.PONumber
	m.SupplierID = o.SupplierID
	m.LocationID = o.LocationID
	m.Status = string(o.Status)
	m.TotalCost = o.TotalCost
	m.ShippingCost = o.ShippingCost
	m.TippingCost = o.TippingCost
	m.MiscellaneousCost = o.MiscellaneousCost
	m.Notes = o.Notes
	m.ReconciledAt = o.ReconciledAt
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(o *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderWithTotalsRow is the scan target of the grouped totals query
type PurchaseOrderWithTotalsRow struct {
	PurchaseOrderModel
	ItemsTotal decimal.Decimal
	ItemsCount int64
}

// ToDomain converts the row to a domain OrderWithTotals
func (r *PurchaseOrderWithTotalsRow) ToDomain() purchasing.OrderWithTotals {
	return purchasing.OrderWithTotals{
		PurchaseOrder: *r.PurchaseOrderModel.ToDomain(),
		ItemsTotal:    r.ItemsTotal,
		ItemsCount:    r.ItemsCount,
	}
}

// PurchaseOrderItemModel is the persistence model for a received line
type PurchaseOrderItemModel struct {
	BaseModel
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID       *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity        int64           `gorm:"not null"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReconciledAt    *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

func (m *PurchaseOrderItemModel) ToDomain() *purchasing.PurchaseOrderItem {
	return &purchasing.PurchaseOrderItem{
		BaseEntity:      m.BaseModel.ToDomain(),
		PurchaseOrderID: m.PurchaseOrderID,
		VariantID:       m.VariantID,
		Quantity:        m.Quantity,
		CostPrice:       m.CostPrice,
		ReconciledAt:    m.ReconciledAt,
	}
}

// PurchaseOrderItemModelFromDomain creates a persistence model from a domain item
func PurchaseOrderItemModelFromDomain(i *purchasing.PurchaseOrderItem) *PurchaseOrderItemModel {
	m := &PurchaseOrderItemModel{
		PurchaseOrderID: i.PurchaseOrderID,
		VariantID:       i.VariantID,
		Quantity:        i.Quantity,
		CostPrice:       i.CostPrice,
		ReconciledAt:    i.ReconciledAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// PurchaseOrderEstimateModel is the persistence model for an estimate
type PurchaseOrderEstimateModel struct {
	BaseModel
	PurchaseOrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null"`
	EstimatedQuantity  int64           `gorm:"not null"`
	EstimatedTotalCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes              string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrderEstimateModel) TableName() string {
	return "purchase_order_estimates"
}

func (m *PurchaseOrderEstimateModel) ToDomain() *purchasing.PurchaseOrderEstimate {
	return &purchasing.PurchaseOrderEstimate{
		BaseEntity:         shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		PurchaseOrderID:    m.PurchaseOrderID,
		ProductID:          m.ProductID,
		EstimatedQuantity:  m.EstimatedQuantity,
		EstimatedTotalCost: m.EstimatedTotalCost,
		Notes:              m.Notes,
	}
}

// PurchaseOrderEstimateModelFromDomain creates a persistence model from a domain estimate
func PurchaseOrderEstimateModelFromDomain(e *purchasing.PurchaseOrderEstimate) *PurchaseOrderEstimateModel {
	m := &PurchaseOrderEstimateModel{
		PurchaseOrderID:    e.PurchaseOrderID,
		ProductID:          e.ProductID,
		EstimatedQuantity:  e.EstimatedQuantity,
		EstimatedTotalCost: e.EstimatedTotalCost,
		Notes:              e.Notes,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
