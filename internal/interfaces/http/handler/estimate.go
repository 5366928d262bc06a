package handler

import (
	"context"

	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstimateService is the estimate API the handler depends on
type EstimateService interface {
	Create(ctx context.Context, orderID uuid.UUID, req apppur.CreateEstimateRequest) (*apppur.EstimateResponse, error)
	Update(ctx context.Context, id uuid.UUID, req apppur.UpdateEstimateRequest) (*apppur.EstimateResponse, error)
	Remove(ctx context.Context, id uuid.UUID) (*apppur.EstimateResponse, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]apppur.EstimateResponse, error)
}

// EstimateHandler handles estimate endpoints
type EstimateHandler struct {
	BaseHandler
	estimates EstimateService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(estimates EstimateService) *EstimateHandler {
	return &EstimateHandler{estimates: estimates}
}

// CreateEstimateRequest is the body of POST /purchase-orders/:id/estimates
type CreateEstimateRequest struct {
	ProductID          string          `json:"product_id" binding:"required,uuid"`
	EstimatedQuantity  int64           `json:"estimated_quantity" binding:"gt=0"`
	EstimatedTotalCost decimal.Decimal `json:"estimated_total_cost" binding:"dec_gte0"`
	Notes              string          `json:"notes" binding:"max=2000"`
}

// UpdateEstimateRequest is the body of PUT /estimates/:id
type UpdateEstimateRequest struct {
	ProductID          *string          `json:"product_id" binding:"omitempty,uuid"`
	EstimatedQuantity  *int64           `json:"estimated_quantity" binding:"omitempty,gt=0"`
	EstimatedTotalCost *decimal.Decimal `json:"estimated_total_cost" binding:"omitempty,dec_gte0"`
	Notes              *string          `json:"notes" binding:"omitempty,max=2000"`
}

// Create godoc
// @Summary      Add an estimate to an order
// @Description  Only draft and estimated orders accept estimates.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Order ID" format(uuid)
// @Param        request body CreateEstimateRequest true "Forecast line"
// @Success      201 {object} dto.Response{data=purchasing.EstimateResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /purchase-orders/{id}/estimates [post]
func (h *EstimateHandler) Create(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	estimate, err := h.estimates.Create(c.Request.Context(), orderID, apppur.CreateEstimateRequest{
		ProductID:          uuid.MustParse(req.ProductID),
		EstimatedQuantity:  req.EstimatedQuantity,
		EstimatedTotalCost: req.EstimatedTotalCost,
		Notes:              req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, estimate)
}

// ListForOrder godoc
// @Summary      List an order's estimates
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]purchasing.EstimateResponse}
// @Router       /purchase-orders/{id}/estimates [get]
func (h *EstimateHandler) ListForOrder(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	estimates, err := h.estimates.ListForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimates)
}

// Update godoc
// @Summary      Update an estimate
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Estimate ID" format(uuid)
// @Param        request body UpdateEstimateRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=purchasing.EstimateResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /estimates/{id} [put]
func (h *EstimateHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	appReq := apppur.UpdateEstimateRequest{
		EstimatedQuantity:  req.EstimatedQuantity,
		EstimatedTotalCost: req.EstimatedTotalCost,
		Notes:              req.Notes,
	}
	if req.ProductID != nil {
		productID := uuid.MustParse(*req.ProductID)
		appReq.ProductID = &productID
	}

	estimate, err := h.estimates.Update(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}

// Delete godoc
// @Summary      Remove an estimate
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasing.EstimateResponse}
// @Failure      404 {object} dto.Response
// @Router       /estimates/{id} [delete]
func (h *EstimateHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	estimate, err := h.estimates.Remove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}
