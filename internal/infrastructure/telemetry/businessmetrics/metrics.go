// Package businessmetrics records reconciliation and drift-check outcomes as OpenTelemetry metrics.
package businessmetrics

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"

	appinv "github.com/erp/procurement/internal/application/inventory"
	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/domain/purchasing"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
)

// Recorder records reconciliation and drift-check outcomes
type Recorder struct {
	itemsReconciled *telemetry.Counter
	runs            *telemetry.Counter
	runDuration     *telemetry.Histogram
	driftRuns       *telemetry.Counter
	driftDetected   *telemetry.Counter
	driftChecked    *telemetry.Counter
	driftDuration   *telemetry.Histogram
}

// New creates the instruments on meter
func New(meter metric.Meter) (*Recorder, error) {
	m := &Recorder{}
	var err error

	if m.itemsReconciled, err = telemetry.NewCounter(meter,
		"procurement.reconciliation.items", "Purchase order lines processed by reconciliation", "{item}"); err != nil {
		return nil, err
	}
	if m.runs, err = telemetry.NewCounter(meter,
		"procurement.reconciliation.runs", "Reconciliation runs by whether any line failed", "{run}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = telemetry.NewHistogram(meter,
		"procurement.reconciliation.duration", "Duration of a reconciliation run", "s", telemetry.RunDurationBuckets...); err != nil {
		return nil, err
	}
	if m.driftRuns, err = telemetry.NewCounter(meter,
		"procurement.drift.runs", "Drift-check runs", "{run}"); err != nil {
		return nil, err
	}
	if m.driftChecked, err = telemetry.NewCounter(meter,
		"procurement.drift.records_checked", "Inventory records compared against the ledger", "{record}"); err != nil {
		return nil, err
	}
	if m.driftDetected, err = telemetry.NewCounter(meter,
		"procurement.drift.detected", "Inventory records whose balance disagreed with the ledger", "{record}"); err != nil {
		return nil, err
	}
	if m.driftDuration, err = telemetry.NewHistogram(meter,
		"procurement.drift.duration", "Duration of a drift-check run", "s", telemetry.RunDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Recorder) RecordItemOutcome(ctx context.Context, outcome purchasing.ItemOutcome) {
	m.itemsReconciled.Inc(ctx, telemetry.AttrOutcome.String(string(outcome)))
}

func (m *Recorder) RecordRun(ctx context.Context, report *purchasing.ReconciliationReport) {
	outcome := "complete"
	if report.HasFailures() {
		outcome = "partial"
	}
	m.runs.Inc(ctx, telemetry.AttrOutcome.String(outcome))
	m.runDuration.RecordDuration(ctx, report.Duration(), telemetry.AttrOutcome.String(outcome))
}

func (m *Recorder) RecordDriftRun(ctx context.Context, stats *appinv.DriftCheckStats) {
	corrected := telemetry.AttrCorrected.String(strconv.FormatBool(stats.Corrected > 0))
	m.driftRuns.Inc(ctx, corrected)
	m.driftChecked.Add(ctx, stats.Checked)
	m.driftDetected.Add(ctx, int64(stats.Drifted), corrected)
	if !stats.ProcessedAt.IsZero() {
		m.driftDuration.RecordDuration(ctx, time.Since(stats.ProcessedAt), corrected)
	}
}

var (
	_ apppur.ReconciliationMetrics = (*Recorder)(nil)
	_ appinv.DriftMetrics          = (*Recorder)(nil)
)
