package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs-quantt/checklist-api/internal/service"
)

// SummaryHandler serves the per-user summary read endpoints.
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new summary handler.
// Parameters:
//   - summaryService: summary service instance.
// Returns:
//   - *SummaryHandler: initialized handler.
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
	}
}

// ListChecklistSummaries handles GET /api/v1/summaries/checklists.
// Requires user_id and task_code query parameters.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SummaryHandler) ListChecklistSummaries(c *gin.Context) {
	userID := c.Query("user_id")
	taskCode := c.Query("task_code")
	if userID == "" || taskCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameters 'user_id' and 'task_code' are required",
		})
		return
	}

	summaries, err := h.summaryService.ListChecklistSummaries(c.Request.Context(), userID, taskCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summaries": summaries,
		"total":     len(summaries),
	})
}

// GetChecklistSummary handles GET /api/v1/summaries/checklists/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SummaryHandler) GetChecklistSummary(c *gin.Context) {
	summary, err := h.summaryService.GetChecklistSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListCategorySummaries handles GET /api/v1/summaries/categories.
// Requires user_id and task_code query parameters.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SummaryHandler) ListCategorySummaries(c *gin.Context) {
	userID := c.Query("user_id")
	taskCode := c.Query("task_code")
	if userID == "" || taskCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameters 'user_id' and 'task_code' are required",
		})
		return
	}

	summaries, err := h.summaryService.ListCategorySummaries(c.Request.Context(), userID, taskCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summaries": summaries,
		"total":     len(summaries),
	})
}

// GetCategorySummary handles GET /api/v1/summaries/categories/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SummaryHandler) GetCategorySummary(c *gin.Context) {
	summary, err := h.summaryService.GetCategorySummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
