package handler

import (
	"context"

	appinv "github.com/erp/procurement/internal/application/inventory"
	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseOrderService struct {
	mock.Mock
}

func (m *MockPurchaseOrderService) Create(ctx context.Context, req apppur.CreatePurchaseOrderRequest) (*apppur.PurchaseOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*apppur.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) List(ctx context.Context, req apppur.ListPurchaseOrdersRequest) ([]apppur.PurchaseOrderResponse, int64, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]apppur.PurchaseOrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderService) ListWithTotals(ctx context.Context, req apppur.ListPurchaseOrdersRequest) ([]apppur.PurchaseOrderWithTotalsResponse, int64, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]apppur.PurchaseOrderWithTotalsResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req apppur.UpdateStatusRequest) (*apppur.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) Reconcile(ctx context.Context, id uuid.UUID) (*apppur.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) Remove(ctx context.Context, id uuid.UUID) (*apppur.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.PurchaseOrderResponse), args.Error(1)
}

type MockEstimateService struct {
	mock.Mock
}

func (m *MockEstimateService) Create(ctx context.Context, orderID uuid.UUID, req apppur.CreateEstimateRequest) (*apppur.EstimateResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.EstimateResponse), args.Error(1)
}

func (m *MockEstimateService) Update(ctx context.Context, id uuid.UUID, req apppur.UpdateEstimateRequest) (*apppur.EstimateResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.EstimateResponse), args.Error(1)
}

func (m *MockEstimateService) Remove(ctx context.Context, id uuid.UUID) (*apppur.EstimateResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.EstimateResponse), args.Error(1)
}

func (m *MockEstimateService) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]apppur.EstimateResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apppur.EstimateResponse), args.Error(1)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Create(ctx context.Context, orderID uuid.UUID, req apppur.CreateItemRequest) (*apppur.CreateItemResult, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.CreateItemResult), args.Error(1)
}

func (m *MockItemService) ListForOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]apppur.ItemResponse, int64, error) {
	args := m.Called(ctx, orderID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]apppur.ItemResponse), args.Get(1).(int64), args.Error(2)
}

type MockVarianceService struct {
	mock.Mock
}

func (m *MockVarianceService) Get(ctx context.Context, orderID uuid.UUID) (*apppur.VarianceResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppur.VarianceResponse), args.Error(1)
}

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Get(ctx context.Context, locationID, variantID uuid.UUID) (*appinv.InventoryRecordResponse, error) {
	args := m.Called(ctx, locationID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.InventoryRecordResponse), args.Error(1)
}

func (m *MockInventoryService) List(ctx context.Context, req appinv.ListInventoryRequest) ([]appinv.InventoryRecordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.InventoryRecordResponse), args.Error(1)
}

func (m *MockInventoryService) ListMovements(ctx context.Context, req appinv.ListMovementsRequest) ([]appinv.MovementResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.MovementResponse), args.Error(1)
}

func (m *MockInventoryService) Adjust(ctx context.Context, req appinv.AdjustInventoryRequest) (*appinv.MovementResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.MovementResponse), args.Error(1)
}

func (m *MockInventoryService) SetReorderLevel(ctx context.Context, locationID, variantID uuid.UUID, level int64) (*appinv.InventoryRecordResponse, error) {
	args := m.Called(ctx, locationID, variantID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.InventoryRecordResponse), args.Error(1)
}

type MockDriftCheckService struct {
	mock.Mock
}

func (m *MockDriftCheckService) Run(ctx context.Context) (*appinv.DriftCheckStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.DriftCheckStats), args.Error(1)
}

func (m *MockDriftCheckService) ListReports(ctx context.Context, runID *uuid.UUID, limit, offset int) ([]appinv.DriftReportResponse, error) {
	args := m.Called(ctx, runID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinv.DriftReportResponse), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }
