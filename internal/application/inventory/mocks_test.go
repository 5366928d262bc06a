package inventory

import (
	"context"

	"github.com/erp/procurement/internal/domain/inventory"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock implementation of InventoryRecordRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindByKey(ctx context.Context, locationID, variantID uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, locationID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) ApplyDelta(ctx context.Context, delta inventory.StockDelta) error {
	args := m.Called(ctx, delta)
	return args.Error(0)
}

func (m *MockInventoryRepository) ResyncFromLedger(ctx context.Context, locationID, variantID uuid.UUID) error {
	args := m.Called(ctx, locationID, variantID)
	return args.Error(0)
}

func (m *MockInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, entry *inventory.MovementEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.MovementEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.MovementEntry), args.Error(1)
}

func (m *MockMovementRepository) SumForKey(ctx context.Context, locationID, variantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, locationID, variantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDriftRepository is a mock implementation of DriftRepository
type MockDriftRepository struct {
	mock.Mock
}

func (m *MockDriftRepository) FindDrift(ctx context.Context) ([]inventory.Drift, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Drift), args.Error(1)
}

func (m *MockDriftRepository) CountRecords(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDriftRepository) SaveReport(ctx context.Context, report *inventory.DriftReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockDriftRepository) FindReports(ctx context.Context, filter shared.Filter) ([]inventory.DriftReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.DriftReport), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockExporter is a mock implementation of ReportExporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

// MockDriftMetrics is a mock implementation of DriftMetrics
type MockDriftMetrics struct {
	mock.Mock
}

func (m *MockDriftMetrics) RecordDriftRun(ctx context.Context, stats *DriftCheckStats) {
	m.Called(ctx, stats)
}
