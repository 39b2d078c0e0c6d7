package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs-quantt/checklist-api/internal/service"
)

// SubmissionHandler handles checklist submission endpoints.
type SubmissionHandler struct {
	submitService *service.SubmitService
}

// NewSubmissionHandler creates a new submission handler.
// Parameters:
//   - submitService: submit service instance.
// Returns:
//   - *SubmissionHandler: initialized handler.
func NewSubmissionHandler(submitService *service.SubmitService) *SubmissionHandler {
	return &SubmissionHandler{
		submitService: submitService,
	}
}

// Submit handles POST /api/v1/submissions.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.submitService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
