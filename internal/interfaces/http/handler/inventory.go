package handler

import (
	"context"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/erp/procurement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryService is the stock API the handler depends on
type InventoryService interface {
	Get(ctx context.Context, locationID, variantID uuid.UUID) (*appinv.InventoryRecordResponse, error)
	List(ctx context.Context, req appinv.ListInventoryRequest) ([]appinv.InventoryRecordResponse, error)
	ListMovements(ctx context.Context, req appinv.ListMovementsRequest) ([]appinv.MovementResponse, error)
	Adjust(ctx context.Context, req appinv.AdjustInventoryRequest) (*appinv.MovementResponse, error)
	SetReorderLevel(ctx context.Context, locationID, variantID uuid.UUID, level int64) (*appinv.InventoryRecordResponse, error)
}

// InventoryHandler handles inventory record and ledger endpoints
type InventoryHandler struct {
	BaseHandler
	inventory InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// AdjustInventoryRequest is the body of POST /inventory/adjustments
type AdjustInventoryRequest struct {
	LocationID   string `json:"location_id" binding:"required,uuid"`
	VariantID    string `json:"variant_id" binding:"required,uuid"`
	Quantity     int64  `json:"quantity" binding:"ne=0"`
	MovementType string `json:"movement_type" binding:"omitempty,oneof=sale return transfer adjustment"`
	Reason       string `json:"reason" binding:"required,min=1,max=500"`
}

// SetReorderLevelRequest is the body of PUT /inventory/:locationId/:variantId/reorder-level
type SetReorderLevelRequest struct {
	ReorderLevel *int64 `json:"reorder_level" binding:"required,gte=0"`
}

// List godoc
// @Summary      List inventory records
// @Tags         inventory
// @Produce      json
// @Param        location_id   query string false "Location" format(uuid)
// @Param        variant_id    query string false "Variant" format(uuid)
// @Param        below_reorder query bool   false "Only records at or below their reorder level"
// @Param        limit         query int    false "Page size" default(50)
// @Param        offset        query int    false "Rows to skip"
// @Success      200 {object} dto.Response{data=[]inventory.InventoryRecordResponse}
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	page, ok := h.bindPage(c)
	if !ok {
		return
	}
	req := appinv.ListInventoryRequest{
		OrderBy:  page.OrderBy,
		OrderDir: page.OrderDir,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	if req.LocationID, ok = h.queryUUID(c, "location_id"); !ok {
		return
	}
	if req.VariantID, ok = h.queryUUID(c, "variant_id"); !ok {
		return
	}
	if req.BelowReorder, ok = h.queryBool(c, "below_reorder"); !ok {
		return
	}

	records, err := h.inventory.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, records, len(records), 0, page.Limit, page.Offset)
}

// Get godoc
// @Summary      Get the stock of a variant at a location
// @Tags         inventory
// @Produce      json
// @Param        locationId path string true "Location" format(uuid)
// @Param        variantId  path string true "Variant" format(uuid)
// @Success      200 {object} dto.Response{data=inventory.InventoryRecordResponse}
// @Failure      404 {object} dto.Response
// @Router       /inventory/{locationId}/{variantId} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	locationID, variantID, ok := h.recordKey(c)
	if !ok {
		return
	}
	record, err := h.inventory.Get(c.Request.Context(), locationID, variantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// ListMovements godoc
// @Summary      List ledger entries
// @Tags         inventory
// @Produce      json
// @Param        location_id    query string false "Location" format(uuid)
// @Param        variant_id     query string false "Variant" format(uuid)
// @Param        reference_type query string false "Source document type"
// @Param        reference_id   query string false "Source document" format(uuid)
// @Param        movement_type  query string false "Movement type"
// @Success      200 {object} dto.Response{data=[]inventory.MovementResponse}
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, ok := h.bindPage(c)
	if !ok {
		return
	}
	req := appinv.ListMovementsRequest{
		ReferenceType: c.Query("reference_type"),
		MovementType:  c.Query("movement_type"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	}
	if req.LocationID, ok = h.queryUUID(c, "location_id"); !ok {
		return
	}
	if req.VariantID, ok = h.queryUUID(c, "variant_id"); !ok {
		return
	}
	if req.ReferenceID, ok = h.queryUUID(c, "reference_id"); !ok {
		return
	}

	movements, err := h.inventory.ListMovements(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, movements, len(movements), 0, page.Limit, page.Offset)
}

// Adjust godoc
// @Summary      Record an administrative stock change
// @Description  Appends a ledger entry and applies it to the record in one transaction.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body AdjustInventoryRequest true "Adjustment"
// @Success      201 {object} dto.Response{data=inventory.MovementResponse}
// @Failure      400 {object} dto.Response
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	movement, err := h.inventory.Adjust(c.Request.Context(), appinv.AdjustInventoryRequest{
		LocationID:   uuid.MustParse(req.LocationID),
		VariantID:    uuid.MustParse(req.VariantID),
		Quantity:     req.Quantity,
		MovementType: req.MovementType,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// SetReorderLevel godoc
// @Summary      Change the reorder threshold of a record
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        locationId path string                 true "Location" format(uuid)
// @Param        variantId  path string                 true "Variant" format(uuid)
// @Param        request    body SetReorderLevelRequest true "New level"
// @Success      200 {object} dto.Response{data=inventory.InventoryRecordResponse}
// @Failure      404 {object} dto.Response
// @Router       /inventory/{locationId}/{variantId}/reorder-level [put]
func (h *InventoryHandler) SetReorderLevel(c *gin.Context) {
	locationID, variantID, ok := h.recordKey(c)
	if !ok {
		return
	}
	var req SetReorderLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.inventory.SetReorderLevel(c.Request.Context(), locationID, variantID, *req.ReorderLevel)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

func (h *InventoryHandler) recordKey(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	locationID, ok := h.pathUUID(c, "locationId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	variantID, ok := h.pathUUID(c, "variantId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return locationID, variantID, true
}
