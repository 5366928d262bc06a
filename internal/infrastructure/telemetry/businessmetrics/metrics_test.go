package businessmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/erp/procurement/internal/domain/purchasing"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := New(provider.Meter("test"))
	require.NoError(t, err)
	return rec, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestRecorder_Reconciliation(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.RecordItemOutcome(ctx, purchasing.OutcomeSuccess)
	rec.RecordItemOutcome(ctx, purchasing.OutcomeSuccess)
	rec.RecordItemOutcome(ctx, purchasing.OutcomeFailed)

	start := time.Now()
	rec.RecordRun(ctx, &purchasing.ReconciliationReport{
		Succeeded:  2,
		Failed:     1,
		StartedAt:  start,
		FinishedAt: start.Add(250 * time.Millisecond),
	})

	data := collect(t, reader)
	items := data["procurement.reconciliation.items"]
	assert.Equal(t, int64(2), sumFor(t, items, attribute.String("outcome", "success")))
	assert.Equal(t, int64(1), sumFor(t, items, attribute.String("outcome", "failed")))
	assert.Equal(t, int64(1), sumFor(t, data["procurement.reconciliation.runs"], attribute.String("outcome", "partial")))

	hist, ok := data["procurement.reconciliation.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 0.25, hist.DataPoints[0].Sum, 0.001)
}

func TestRecorder_DriftRun(t *testing.T) {
	rec, reader := newTestRecorder(t)
	ctx := context.Background()

	rec.RecordDriftRun(ctx, &appinv.DriftCheckStats{
		RunID:       uuid.New(),
		Checked:     40,
		Drifted:     3,
		Corrected:   3,
		ProcessedAt: time.Now(),
	})
	rec.RecordDriftRun(ctx, &appinv.DriftCheckStats{RunID: uuid.New(), Checked: 40, ProcessedAt: time.Now()})

	data := collect(t, reader)
	assert.Equal(t, int64(80), sumFor(t, data["procurement.drift.records_checked"]))
	assert.Equal(t, int64(3), sumFor(t, data["procurement.drift.detected"], attribute.String("corrected", "true")))
	assert.Equal(t, int64(1), sumFor(t, data["procurement.drift.runs"], attribute.String("corrected", "false")))
	assert.Equal(t, int64(1), sumFor(t, data["procurement.drift.runs"], attribute.String("corrected", "true")))
}
