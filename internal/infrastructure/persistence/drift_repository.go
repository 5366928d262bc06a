package persistence

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDriftRepository implements DriftRepository using GORM
type GormDriftRepository struct {
	db *gorm.DB
}

// NewGormDriftRepository creates a new GormDriftRepository
func NewGormDriftRepository(db *gorm.DB) *GormDriftRepository {
	return &GormDriftRepository{db: db}
}

type driftRow struct {
	LocationID       uuid.UUID
	VariantID        uuid.UUID
	RecordedQuantity int64
	LedgerQuantity   int64
}

// FindDrift recomputes every pair's balance from the ledger and returns the pairs
// whose stored quantity differs
func (r *GormDriftRepository) FindDrift(ctx context.Context) ([]inventory.Drift, error) {
	var rows []driftRow
	err := r.db.WithContext(ctx).
		Table("inventory_records AS ir").
		Select("ir.location_id, ir.variant_id, ir.quantity_on_hand AS recorded_quantity, COALESCE(SUM(m.quantity), 0) AS ledger_quantity").
		Joins("LEFT JOIN inventory_movements AS m ON m.location_id = ir.location_id AND m.variant_id = ir.variant_id").
		Group("ir.location_id, ir.variant_id, ir.quantity_on_hand").
		Having("ir.quantity_on_hand <> COALESCE(SUM(m.quantity), 0)").
		Order("ir.location_id, ir.variant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	drifts := make([]inventory.Drift, len(rows))
	for i, row := range rows {
		drifts[i] = inventory.Drift{
			LocationID:       row.LocationID,
			VariantID:        row.VariantID,
			RecordedQuantity: row.RecordedQuantity,
			LedgerQuantity:   row.LedgerQuantity,
		}
	}
	return drifts, nil
}

func (r *GormDriftRepository) CountRecords(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InventoryRecordModel{}).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *GormDriftRepository) SaveReport(ctx context.Context, report *inventory.DriftReport) error {
	return translateError(r.db.WithContext(ctx).Create(models.DriftReportModelFromDomain(report)).Error)
}

// FindReports lists reports newest first; filter run_id narrows to one run
func (r *GormDriftRepository) FindReports(ctx context.Context, filter shared.Filter) ([]inventory.DriftReport, error) {
	filter = filter.Normalized()
	query := r.db.WithContext(ctx).Model(&models.DriftReportModel{})
	if runID, ok := filter.Filters["run_id"]; ok {
		query = query.Where("run_id = ?", runID)
	}
	var rows []models.DriftReportModel
	err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, DriftReportSortFields, "")).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	reports := make([]inventory.DriftReport, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports, nil
}

var _ inventory.DriftRepository = (*GormDriftRepository)(nil)
