package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T, s *stack) *apiClient {
	t.Helper()
	engine := router.NewEngine(router.EngineConfig{Mode: gin.TestMode, MaxBodyBytes: 1 << 20}, s.log)
	router.NewRouter(engine).
		Register(router.PurchasingRoutes{
			Orders:    handler.NewPurchaseOrderHandler(s.orders),
			Estimates: handler.NewEstimateHandler(s.estimates),
			Items:     handler.NewItemHandler(s.items, s.variance),
		}).
		Register(router.InventoryRoutes{
			Inventory: handler.NewInventoryHandler(s.inventory),
			Drift:     handler.NewDriftHandler(s.drift),
		}).
		Register(router.HealthRoutes{Health: handler.NewHealthHandler(s.db, s.log)}).
		Setup()
	return &apiClient{t: t, engine: engine}
}

// do sends a request and decodes the envelope, storing data into out when given
func (c *apiClient) do(method, path string, body any, out any) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil && len(env.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return w.Code, env
}

func TestAPI_PurchaseOrderLifecycle(t *testing.T) {
	s := newStack(t, newPostgres(t), nil)
	api := newAPI(t, s)
	locationID, variantID := uuid.New(), uuid.New()

	code, _ := api.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, code)

	var order struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	code, _ = api.do(http.MethodPost, "/purchase-orders", map[string]any{
		"po_number":   "PO-API-1",
		"supplier_id": uuid.NewString(),
		"location_id": locationID.String(),
		"status":      "ordered",
		"total_cost":  "42.00",
	}, &order)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ordered", order.Status)

	code, env := api.do(http.MethodPost, "/purchase-orders", map[string]any{
		"po_number":   "PO-API-1",
		"supplier_id": uuid.NewString(),
		"location_id": locationID.String(),
	}, nil)
	assert.Equal(t, http.StatusConflict, code, "duplicate order number")
	require.NotNil(t, env.Error)

	code, env = api.do(http.MethodPost, fmt.Sprintf("/purchase-orders/%s/items", order.ID), map[string]any{
		"variant_id": variantID.String(),
		"quantity":   3,
		"cost_price": "4.00",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "items wait for receipt")
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	code, _ = api.do(http.MethodPut, fmt.Sprintf("/purchase-orders/%s/status", order.ID), map[string]any{
		"status": "received",
	}, &order)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "received", order.Status)

	var created struct {
		Outcome struct {
			Outcome string `json:"outcome"`
		} `json:"outcome"`
	}
	code, _ = api.do(http.MethodPost, fmt.Sprintf("/purchase-orders/%s/items", order.ID), map[string]any{
		"variant_id": variantID.String(),
		"quantity":   3,
		"cost_price": "4.00",
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "success", created.Outcome.Outcome)

	var record struct {
		QuantityOnHand int64 `json:"quantity_on_hand"`
	}
	code, _ = api.do(http.MethodGet, fmt.Sprintf("/inventory/%s/%s", locationID, variantID), nil, &record)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(3), record.QuantityOnHand)

	code, _ = api.do(http.MethodPost, "/inventory/adjustments", map[string]any{
		"location_id":   locationID.String(),
		"variant_id":    variantID.String(),
		"quantity":      -1,
		"movement_type": "sale",
		"reason":        "counter sale",
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	code, _ = api.do(http.MethodGet, fmt.Sprintf("/inventory/%s/%s", locationID, variantID), nil, &record)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2), record.QuantityOnHand)

	var variance struct {
		ActualTotal decimal.Decimal `json:"actual_total"`
	}
	code, _ = api.do(http.MethodGet, fmt.Sprintf("/purchase-orders/%s/variance", order.ID), nil, &variance)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, variance.ActualTotal.Equal(decimal.NewFromInt(12)), variance.ActualTotal.String())

	var drift struct {
		Drifted int `json:"drifted"`
	}
	code, _ = api.do(http.MethodPost, "/inventory/drift-checks", nil, &drift)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, drift.Drifted)

	code, _ = api.do(http.MethodDelete, fmt.Sprintf("/purchase-orders/%s", order.ID), nil, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = api.do(http.MethodGet, fmt.Sprintf("/purchase-orders/%s", order.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
}
