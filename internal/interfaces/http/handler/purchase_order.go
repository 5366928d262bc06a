package handler

import (
	"context"

	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderService is the order API the handler depends on
type PurchaseOrderService interface {
	Create(ctx context.Context, req apppur.CreatePurchaseOrderRequest) (*apppur.PurchaseOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*apppur.PurchaseOrderResponse, error)
	List(ctx context.Context, req apppur.ListPurchaseOrdersRequest) ([]apppur.PurchaseOrderResponse, int64, error)
	ListWithTotals(ctx context.Context, req apppur.ListPurchaseOrdersRequest) ([]apppur.PurchaseOrderWithTotalsResponse, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req apppur.UpdateStatusRequest) (*apppur.PurchaseOrderResponse, error)
	Reconcile(ctx context.Context, id uuid.UUID) (*apppur.PurchaseOrderResponse, error)
	Remove(ctx context.Context, id uuid.UUID) (*apppur.PurchaseOrderResponse, error)
}

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders}
}

// CreatePurchaseOrderRequest is the body of POST /purchase-orders
type CreatePurchaseOrderRequest struct {
	PONumber          string              `json:"po_number" binding:"required,min=1,max=64"`
	SupplierID        string              `json:"supplier_id" binding:"required,uuid"`
	LocationID        string              `json:"location_id" binding:"required,uuid"`
	Status            string              `json:"status" binding:"omitempty,oneof=draft estimated ordered received cancelled"`
	TotalCost         decimal.Decimal     `json:"total_cost" binding:"dec_gte0"`
	ShippingCost      decimal.Decimal     `json:"shipping_cost" binding:"dec_gte0"`
	TippingCost       decimal.Decimal     `json:"tipping_cost" binding:"dec_gte0"`
	MiscellaneousCost decimal.Decimal     `json:"miscellaneous_cost" binding:"dec_gte0"`
	Notes             string              `json:"notes" binding:"max=2000"`
	Items             []CreateItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateStatusRequest is the body of PUT /purchase-orders/:id/status. Absent
// fields are left unchanged.
type UpdateStatusRequest struct {
	Status            *string          `json:"status" binding:"omitempty,oneof=draft estimated ordered received cancelled"`
	TotalCost         *decimal.Decimal `json:"total_cost" binding:"omitempty,dec_gte0"`
	ShippingCost      *decimal.Decimal `json:"shipping_cost" binding:"omitempty,dec_gte0"`
	TippingCost       *decimal.Decimal `json:"tipping_cost" binding:"omitempty,dec_gte0"`
	MiscellaneousCost *decimal.Decimal `json:"miscellaneous_cost" binding:"omitempty,dec_gte0"`
	Notes             *string          `json:"notes" binding:"omitempty,max=2000"`
}

// Create godoc
// @Summary      Create a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body CreatePurchaseOrderRequest true "Order header and optional lines"
// @Success      201 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := apppur.CreatePurchaseOrderRequest{
		PONumber:          req.PONumber,
		SupplierID:        uuid.MustParse(req.SupplierID),
		LocationID:        uuid.MustParse(req.LocationID),
		Status:            req.Status,
		TotalCost:         req.TotalCost,
		ShippingCost:      req.ShippingCost,
		TippingCost:       req.TippingCost,
		MiscellaneousCost: req.MiscellaneousCost,
		Notes:             req.Notes,
	}
	for _, item := range req.Items {
		appItem, err := item.toApp()
		if err != nil {
			h.BadRequest(c, "Invalid variant_id format")
			return
		}
		appReq.Items = append(appReq.Items, appItem)
	}

	order, err := h.orders.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get godoc
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      404 {object} dto.Response
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        search       query string false "Matches po_number and notes"
// @Param        status       query string false "Order status"
// @Param        supplier_id  query string false "Supplier" format(uuid)
// @Param        location_id  query string false "Location" format(uuid)
// @Param        created_from query string false "Lower bound on created_at"
// @Param        created_to   query string false "Upper bound on created_at"
// @Param        limit        query int    false "Page size" default(50)
// @Param        offset       query int    false "Rows to skip"
// @Success      200 {object} dto.Response{data=[]purchasing.PurchaseOrderResponse}
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	req, ok := h.bindListQuery(c)
	if !ok {
		return
	}
	orders, total, err := h.orders.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, orders, len(orders), total, req.Limit, req.Offset)
}

// ListWithTotals godoc
// @Summary      List purchase orders with line totals
// @Tags         purchase-orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]purchasing.PurchaseOrderWithTotalsResponse}
// @Router       /purchase-orders/with-totals [get]
func (h *PurchaseOrderHandler) ListWithTotals(c *gin.Context) {
	req, ok := h.bindListQuery(c)
	if !ok {
		return
	}
	orders, total, err := h.orders.ListWithTotals(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, orders, len(orders), total, req.Limit, req.Offset)
}

// UpdateStatus godoc
// @Summary      Update an order's status and costs
// @Description  Moving an order to received replays its lines into inventory; the reconciliation summary is returned with the order.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Order ID" format(uuid)
// @Param        request body UpdateStatusRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /purchase-orders/{id}/status [put]
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, apppur.UpdateStatusRequest{
		Status:            req.Status,
		TotalCost:         req.TotalCost,
		ShippingCost:      req.ShippingCost,
		TippingCost:       req.TippingCost,
		MiscellaneousCost: req.MiscellaneousCost,
		Notes:             req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reconcile godoc
// @Summary      Re-run reconciliation for a received order
// @Description  Applies lines whose stock side effect has not been recorded yet. Already applied lines are skipped.
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      422 {object} dto.Response
// @Router       /purchase-orders/{id}/reconcile [post]
func (h *PurchaseOrderHandler) Reconcile(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete godoc
// @Summary      Remove a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasing.PurchaseOrderResponse}
// @Failure      404 {object} dto.Response
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Remove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *PurchaseOrderHandler) bindListQuery(c *gin.Context) (apppur.ListPurchaseOrdersRequest, bool) {
	page, ok := h.bindPage(c)
	if !ok {
		return apppur.ListPurchaseOrdersRequest{}, false
	}
	req := apppur.ListPurchaseOrdersRequest{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		OrderBy:  page.OrderBy,
		OrderDir: page.OrderDir,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	if req.SupplierID, ok = h.queryUUID(c, "supplier_id"); !ok {
		return req, false
	}
	if req.LocationID, ok = h.queryUUID(c, "location_id"); !ok {
		return req, false
	}
	if req.CreatedFrom, ok = h.queryTime(c, "created_from"); !ok {
		return req, false
	}
	if req.CreatedTo, ok = h.queryTime(c, "created_to"); !ok {
		return req, false
	}
	return req, true
}
