package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs-quantt/checklist-api/internal/service"
)

// AdminHandler handles administrator review and maintenance endpoints.
type AdminHandler struct {
	summaryService *service.SummaryService
	submitService  *service.SubmitService
	exportService  *service.ExportService
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - summaryService: summary service instance.
//   - submitService: submit service instance, used for recompute sweeps.
//   - exportService: export service instance; nil disables exports.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(summaryService *service.SummaryService, submitService *service.SubmitService, exportService *service.ExportService) *AdminHandler {
	return &AdminHandler{
		summaryService: summaryService,
		submitService:  submitService,
		exportService:  exportService,
	}
}

// GetOverview handles GET /api/v1/admin/overview.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) GetOverview(c *gin.Context) {
	overview, err := h.summaryService.GetOverview(c.Request.Context(), c.Query("task_code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ListSubmissions handles GET /api/v1/admin/submissions.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	subs, total, err := h.summaryService.ListSubmissions(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": subs,
		"total":       total,
	})
}

// RecomputeRequest asks for a fresh aggregation run for one user and task
// code. It is the recovery path for submissions that failed between stages.
type RecomputeRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	TaskCode    string `json:"task_code" binding:"required"`
	ChecklistID string `json:"checklist_id" binding:"required"`
	CategoryID  string `json:"category_id" binding:"required"`
}

// Recompute handles POST /api/v1/admin/recompute.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) Recompute(c *gin.Context) {
	var req RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	checklistSummary, err := h.submitService.RecomputeChecklistSummary(ctx, req.UserID, req.ChecklistID, req.TaskCode, "")
	if err != nil {
		respondError(c, err)
		return
	}
	categorySummary, err := h.submitService.RecomputeCategorySummary(ctx, req.UserID, req.CategoryID, req.TaskCode, "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary_id":          checklistSummary.ID,
		"category_summary_id": categorySummary.ID,
		"total_items":         checklistSummary.TotalItems,
		"passed_items":        checklistSummary.PassedItems,
	})
}

// ExportRequest scopes an export to one task code; empty exports everything.
type ExportRequest struct {
	TaskCode string `json:"task_code"`
}

// Export handles POST /api/v1/admin/export.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) Export(c *gin.Context) {
	if h.exportService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Export storage is not configured",
		})
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.exportService.ExportCategorySummaries(c.Request.Context(), req.TaskCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
