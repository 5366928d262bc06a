package handler

import (
	"context"

	appinv "github.com/erp/procurement/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DriftCheckService is the drift-check API the handler depends on
type DriftCheckService interface {
	Run(ctx context.Context) (*appinv.DriftCheckStats, error)
	ListReports(ctx context.Context, runID *uuid.UUID, limit, offset int) ([]appinv.DriftReportResponse, error)
}

// DriftHandler exposes the ledger drift check
type DriftHandler struct {
	BaseHandler
	drift DriftCheckService
}

// NewDriftHandler creates a new DriftHandler
func NewDriftHandler(drift DriftCheckService) *DriftHandler {
	return &DriftHandler{drift: drift}
}

// Run godoc
// @Summary      Run a drift check now
// @Description  Compares every record with the sum of its ledger entries and stores a report per mismatch.
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=inventory.DriftCheckStats}
// @Failure      503 {object} dto.Response
// @Router       /inventory/drift-checks [post]
func (h *DriftHandler) Run(c *gin.Context) {
	stats, err := h.drift.Run(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListReports godoc
// @Summary      List drift findings
// @Tags         inventory
// @Produce      json
// @Param        run_id query string false "Restrict to one run" format(uuid)
// @Param        limit  query int    false "Page size" default(50)
// @Param        offset query int    false "Rows to skip"
// @Success      200 {object} dto.Response{data=[]inventory.DriftReportResponse}
// @Router       /inventory/drift-reports [get]
func (h *DriftHandler) ListReports(c *gin.Context) {
	page, ok := h.bindPage(c)
	if !ok {
		return
	}
	runID, ok := h.queryUUID(c, "run_id")
	if !ok {
		return
	}
	reports, err := h.drift.ListReports(c.Request.Context(), runID, page.Limit, page.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, reports, len(reports), 0, page.Limit, page.Offset)
}
