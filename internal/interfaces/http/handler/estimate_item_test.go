package handler

import (
	"fmt"
	"net/http"
	"testing"

	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEstimateRouter(svc EstimateService) *gin.Engine {
	h := NewEstimateHandler(svc)
	r := gin.New()
	r.POST("/purchase-orders/:id/estimates", h.Create)
	r.GET("/purchase-orders/:id/estimates", h.ListForOrder)
	r.PUT("/estimates/:id", h.Update)
	r.DELETE("/estimates/:id", h.Delete)
	return r
}

func newItemRouter(items ItemService, variance VarianceService) *gin.Engine {
	h := NewItemHandler(items, variance)
	r := gin.New()
	r.POST("/purchase-orders/:id/items", h.Create)
	r.GET("/purchase-orders/:id/items", h.ListForOrder)
	r.GET("/purchase-orders/:id/variance", h.Variance)
	return r
}

func TestEstimateHandler(t *testing.T) {
	orderID := uuid.New()
	productID := uuid.New()

	t.Run("create", func(t *testing.T) {
		svc := new(MockEstimateService)
		svc.On("Create", mock.Anything, orderID, mock.MatchedBy(func(req apppur.CreateEstimateRequest) bool {
			return req.ProductID == productID && req.EstimatedQuantity == 4 &&
				req.EstimatedTotalCost.Equal(decimal.NewFromInt(80))
		})).Return(&apppur.EstimateResponse{ID: uuid.New(), PurchaseOrderID: orderID, ProductID: productID}, nil)

		body := fmt.Sprintf(`{"product_id":%q,"estimated_quantity":4,"estimated_total_cost":"80"}`, productID)
		w := doJSON(newEstimateRouter(svc), http.MethodPost, "/purchase-orders/"+orderID.String()+"/estimates", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("create on an ordered order maps to 422", func(t *testing.T) {
		svc := new(MockEstimateService)
		svc.On("Create", mock.Anything, orderID, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeInvalidState, "estimates cannot be added to an ordered order"))

		body := fmt.Sprintf(`{"product_id":%q,"estimated_quantity":1}`, productID)
		w := doJSON(newEstimateRouter(svc), http.MethodPost, "/purchase-orders/"+orderID.String()+"/estimates", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("create on a missing order maps to 404", func(t *testing.T) {
		svc := new(MockEstimateService)
		svc.On("Create", mock.Anything, orderID, mock.Anything).Return(nil, shared.ErrOrderNotFound)

		body := fmt.Sprintf(`{"product_id":%q,"estimated_quantity":1}`, productID)
		w := doJSON(newEstimateRouter(svc), http.MethodPost, "/purchase-orders/"+orderID.String()+"/estimates", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeOrderNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"product_id":%q,"estimated_quantity":0}`, productID)
		w := doJSON(newEstimateRouter(new(MockEstimateService)), http.MethodPost, "/purchase-orders/"+orderID.String()+"/estimates", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		svc := new(MockEstimateService)
		svc.On("ListForOrder", mock.Anything, orderID).Return([]apppur.EstimateResponse{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

		w := doJSON(newEstimateRouter(svc), http.MethodGet, "/purchase-orders/"+orderID.String()+"/estimates", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeResponse(t, w).Data.([]any), 2)
	})

	t.Run("update converts the product id", func(t *testing.T) {
		id := uuid.New()
		svc := new(MockEstimateService)
		svc.On("Update", mock.Anything, id, mock.MatchedBy(func(req apppur.UpdateEstimateRequest) bool {
			return req.ProductID != nil && *req.ProductID == productID && req.EstimatedQuantity == nil
		})).Return(&apppur.EstimateResponse{ID: id}, nil)

		w := doJSON(newEstimateRouter(svc), http.MethodPut, "/estimates/"+id.String(), fmt.Sprintf(`{"product_id":%q}`, productID))
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("delete missing estimate", func(t *testing.T) {
		id := uuid.New()
		svc := new(MockEstimateService)
		svc.On("Remove", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := doJSON(newEstimateRouter(svc), http.MethodDelete, "/estimates/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestItemHandler(t *testing.T) {
	orderID := uuid.New()
	variantID := uuid.New()

	t.Run("a failed stock update still answers 201", func(t *testing.T) {
		itemID := uuid.New()
		items := new(MockItemService)
		items.On("Create", mock.Anything, orderID, mock.MatchedBy(func(req apppur.CreateItemRequest) bool {
			return req.VariantID != nil && *req.VariantID == variantID && req.Quantity == 3
		})).Return(&apppur.CreateItemResult{
			Item:    apppur.ItemResponse{ID: itemID, PurchaseOrderID: orderID, VariantID: &variantID, Quantity: 3},
			Outcome: apppur.ItemResultResponse{ItemID: itemID, Outcome: "failed", Reason: "storage unavailable"},
		}, nil)

		body := fmt.Sprintf(`{"variant_id":%q,"quantity":3,"cost_price":"9.99"}`, variantID)
		w := doJSON(newItemRouter(items, nil), http.MethodPost, "/purchase-orders/"+orderID.String()+"/items", body)

		require.Equal(t, http.StatusCreated, w.Code)
		outcome := decodeResponse(t, w).Data.(map[string]any)["outcome"].(map[string]any)
		assert.Equal(t, "failed", outcome["outcome"])
	})

	t.Run("a cost line has no variant", func(t *testing.T) {
		items := new(MockItemService)
		items.On("Create", mock.Anything, orderID, mock.MatchedBy(func(req apppur.CreateItemRequest) bool {
			return req.VariantID == nil
		})).Return(&apppur.CreateItemResult{Outcome: apppur.ItemResultResponse{Outcome: "skipped"}}, nil)

		w := doJSON(newItemRouter(items, nil), http.MethodPost, "/purchase-orders/"+orderID.String()+"/items", `{"quantity":1,"cost_price":"15"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		items.AssertExpectations(t)
	})

	t.Run("non-received order maps to 422", func(t *testing.T) {
		items := new(MockItemService)
		items.On("Create", mock.Anything, orderID, mock.Anything).Return(nil, shared.ErrInvalidState)

		w := doJSON(newItemRouter(items, nil), http.MethodPost, "/purchase-orders/"+orderID.String()+"/items", `{"quantity":1}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		w := doJSON(newItemRouter(new(MockItemService), nil), http.MethodPost, "/purchase-orders/"+orderID.String()+"/items", `{"quantity":-2}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list pages", func(t *testing.T) {
		items := new(MockItemService)
		items.On("ListForOrder", mock.Anything, orderID, 20, 40).Return([]apppur.ItemResponse{{ID: uuid.New()}}, int64(41), nil)

		w := doJSON(newItemRouter(items, nil), http.MethodGet, "/purchase-orders/"+orderID.String()+"/items?limit=20&offset=40", "")
		require.Equal(t, http.StatusOK, w.Code)
		meta := decodeResponse(t, w).Meta
		assert.Equal(t, 1, meta.Count)
		assert.Equal(t, int64(41), meta.Total)
	})

	t.Run("variance", func(t *testing.T) {
		variance := new(MockVarianceService)
		variance.On("Get", mock.Anything, orderID).Return(&apppur.VarianceResponse{
			PurchaseOrderID: orderID,
			EstimatedTotal:  decimal.NewFromInt(100),
			ActualTotal:     decimal.NewFromInt(120),
			Variance:        decimal.NewFromInt(20),
		}, nil)

		w := doJSON(newItemRouter(nil, variance), http.MethodGet, "/purchase-orders/"+orderID.String()+"/variance", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "20", decodeResponse(t, w).Data.(map[string]any)["variance"])
	})
}
