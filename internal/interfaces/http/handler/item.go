package handler

import (
	"context"

	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemService is the line-item API the handler depends on
type ItemService interface {
	Create(ctx context.Context, orderID uuid.UUID, req apppur.CreateItemRequest) (*apppur.CreateItemResult, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]apppur.ItemResponse, int64, error)
}

// VarianceService computes forecast against actual cost
type VarianceService interface {
	Get(ctx context.Context, orderID uuid.UUID) (*apppur.VarianceResponse, error)
}

// ItemHandler handles line item and variance endpoints
type ItemHandler struct {
	BaseHandler
	items    ItemService
	variance VarianceService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(items ItemService, variance VarianceService) *ItemHandler {
	return &ItemHandler{items: items, variance: variance}
}

// CreateItemRequest is one received line. variant_id is omitted for cost
// lines that do not move stock.
type CreateItemRequest struct {
	VariantID *string         `json:"variant_id" binding:"omitempty,uuid"`
	Quantity  int64           `json:"quantity" binding:"gt=0"`
	CostPrice decimal.Decimal `json:"cost_price" binding:"dec_gte0"`
}

func (r CreateItemRequest) toApp() (apppur.CreateItemRequest, error) {
	item := apppur.CreateItemRequest{Quantity: r.Quantity, CostPrice: r.CostPrice}
	if r.VariantID != nil {
		id, err := uuid.Parse(*r.VariantID)
		if err != nil {
			return item, err
		}
		item.VariantID = &id
	}
	return item, nil
}

// Create godoc
// @Summary      Record a received line
// @Description  The line is stored and applied to stock. A failed stock update does not fail the request; it is reported in outcome.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id      path string            true "Order ID" format(uuid)
// @Param        request body CreateItemRequest true "Received line"
// @Success      201 {object} dto.Response{data=purchasing.CreateItemResult}
// @Failure      422 {object} dto.Response
// @Router       /purchase-orders/{id}/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	appReq, err := req.toApp()
	if err != nil {
		h.BadRequest(c, "Invalid variant_id format")
		return
	}

	result, err := h.items.Create(c.Request.Context(), orderID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListForOrder godoc
// @Summary      List an order's lines
// @Tags         items
// @Produce      json
// @Param        id     path  string true  "Order ID" format(uuid)
// @Param        limit  query int    false "Page size" default(50)
// @Param        offset query int    false "Rows to skip"
// @Success      200 {object} dto.Response{data=[]purchasing.ItemResponse}
// @Router       /purchase-orders/{id}/items [get]
func (h *ItemHandler) ListForOrder(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	page, ok := h.bindPage(c)
	if !ok {
		return
	}
	items, total, err := h.items.ListForOrder(c.Request.Context(), orderID, page.Limit, page.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, items, len(items), total, page.Limit, page.Offset)
}

// Variance godoc
// @Summary      Compare estimated and actual cost of an order
// @Tags         items
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasing.VarianceResponse}
// @Failure      404 {object} dto.Response
// @Router       /purchase-orders/{id}/variance [get]
func (h *ItemHandler) Variance(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	variance, err := h.variance.Get(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variance)
}
