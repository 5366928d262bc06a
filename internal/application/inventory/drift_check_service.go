package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportExporter stores a finished drift-check summary outside the database
type ReportExporter interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// DriftMetrics records drift-check outcomes
type DriftMetrics interface {
	RecordDriftRun(ctx context.Context, stats *DriftCheckStats)
}

// DriftCheckConfig controls a drift-check run
type DriftCheckConfig struct {
	// AutoCorrect resets drifted records to their ledger balance
	AutoCorrect bool
	// ExportPrefix is the object key prefix of exported summaries
	ExportPrefix string
}

// DriftCheckStats summarises one drift-check run
type DriftCheckStats struct {
	RunID       uuid.UUID             `json:"run_id"`
	Checked     int64                 `json:"checked"`
	Drifted     int                   `json:"drifted"` // pairs recorded; failures count only in Failed
	Corrected   int                   `json:"corrected"`
	Failed      int                   `json:"failed"`
	ProcessedAt time.Time             `json:"processed_at"`
	Reports     []DriftReportResponse `json:"reports"`
}

// DriftCheckService recomputes stock from the ledger and flags records that disagree
type DriftCheckService struct {
	driftRepo      inventory.DriftRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	exporter       ReportExporter
	metrics        DriftMetrics
	config         DriftCheckConfig
	logger         *zap.Logger
}

// NewDriftCheckService creates a new DriftCheckService
func NewDriftCheckService(
	driftRepo inventory.DriftRepository,
	txScope TransactionScope,
	config DriftCheckConfig,
	logger *zap.Logger,
) *DriftCheckService {
	if config.ExportPrefix == "" {
		config.ExportPrefix = "drift-reports"
	}
	return &DriftCheckService{
		driftRepo: driftRepo,
		txScope:   txScope,
		config:    config,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DriftCheckService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetExporter enables uploading run summaries
func (s *DriftCheckService) SetExporter(exporter ReportExporter) {
	s.exporter = exporter
}

// SetMetrics sets the metrics recorder
func (s *DriftCheckService) SetMetrics(metrics DriftMetrics) {
	s.metrics = metrics
}

// Run performs one drift check. Each drifted pair is handled in its own transaction;
// a failure on one pair is logged and counted without stopping the run.
func (s *DriftCheckService) Run(ctx context.Context) (_ *DriftCheckStats, err error) {
	stats := &DriftCheckStats{
		RunID:       uuid.New(),
		ProcessedAt: time.Now(),
		Reports:     make([]DriftReportResponse, 0),
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "drift_check", "run", telemetry.SpanAttrRunID, stats.RunID.String())
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	checked, err := s.driftRepo.CountRecords(ctx)
	if err != nil {
		s.logger.Error("Failed to count inventory records", zap.Error(err))
		return nil, err
	}
	stats.Checked = checked

	drifts, err := s.driftRepo.FindDrift(ctx)
	if err != nil {
		s.logger.Error("Failed to compute inventory drift", zap.Error(err))
		return nil, err
	}
	if len(drifts) == 0 {
		s.logger.Debug("No inventory drift found", zap.Int64("checked", checked))
	}

	for _, d := range drifts {
		report := inventory.NewDriftReport(stats.RunID, d)
		if err := s.recordDrift(ctx, report); err != nil {
			s.logger.Error("Failed to record inventory drift",
				zap.String("run_id", stats.RunID.String()),
				zap.String("location_id", d.LocationID.String()),
				zap.String("variant_id", d.VariantID.String()),
				zap.Int64("recorded", d.RecordedQuantity),
				zap.Int64("ledger", d.LedgerQuantity),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Drifted++
		if report.Corrected {
			stats.Corrected++
		}
		telemetry.AddEvent(span, "drift_detected",
			telemetry.SpanAttrLocationID, d.LocationID.String(),
			telemetry.SpanAttrVariantID, d.VariantID.String(),
			"drift.difference", report.Difference,
		)
		s.logger.Warn("Inventory drift detected",
			zap.String("location_id", d.LocationID.String()),
			zap.String("variant_id", d.VariantID.String()),
			zap.Int64("recorded", d.RecordedQuantity),
			zap.Int64("ledger", d.LedgerQuantity),
			zap.Bool("corrected", report.Corrected),
		)
		stats.Reports = append(stats.Reports, ToDriftReportResponse(report))
		s.publish(ctx, inventory.NewInventoryDriftDetectedEvent(report))
	}

	s.logger.Info("Completed inventory drift check",
		zap.String("run_id", stats.RunID.String()),
		zap.Int64("checked", stats.Checked),
		zap.Int("drifted", stats.Drifted),
		zap.Int("corrected", stats.Corrected),
		zap.Int("failed", stats.Failed),
	)

	if s.metrics != nil {
		s.metrics.RecordDriftRun(ctx, stats)
	}
	s.export(ctx, stats)
	return stats, nil
}

// ListReports returns stored drift findings, newest first
func (s *DriftCheckService) ListReports(ctx context.Context, runID *uuid.UUID, limit, offset int) ([]DriftReportResponse, error) {
	filter := shared.Filter{Limit: limit, Offset: offset, Filters: map[string]any{}}
	if runID != nil {
		filter.Filters["run_id"] = *runID
	}
	reports, err := s.driftRepo.FindReports(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]DriftReportResponse, len(reports))
	for i := range reports {
		result[i] = ToDriftReportResponse(&reports[i])
	}
	return result, nil
}

func (s *DriftCheckService) recordDrift(ctx context.Context, report *inventory.DriftReport) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if s.config.AutoCorrect {
			if err := repos.InventoryRepo().ResyncFromLedger(ctx, report.LocationID, report.VariantID); err != nil {
				return err
			}
			report.Corrected = true
		}
		return repos.DriftRepo().SaveReport(ctx, report)
	})
}

// export uploads the run summary; failures are logged because the findings are already stored
func (s *DriftCheckService) export(ctx context.Context, stats *DriftCheckStats) {
	if s.exporter == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		s.logger.Error("Failed to encode drift report", zap.Error(err))
		return
	}
	key := fmt.Sprintf("%s/%s-%s.json", s.config.ExportPrefix, stats.ProcessedAt.UTC().Format("20060102T150405Z"), stats.RunID)
	if err := s.exporter.Upload(ctx, key, data, "application/json"); err != nil {
		s.logger.Error("Failed to export drift report", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Info("Exported drift report", zap.String("key", key))
}

func (s *DriftCheckService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish drift events", zap.Error(err))
	}
}
