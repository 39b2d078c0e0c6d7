package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs-quantt/checklist-api/internal/repository"
)

// ChecklistHandler serves the read-only checklist template and category
// content the submission UI renders.
type ChecklistHandler struct {
	templates  *repository.TemplateRepository
	categories *repository.CategoryRepository
}

// NewChecklistHandler creates a new checklist handler.
// Parameters:
//   - templates: template repository.
//   - categories: category repository.
// Returns:
//   - *ChecklistHandler: initialized handler.
func NewChecklistHandler(templates *repository.TemplateRepository, categories *repository.CategoryRepository) *ChecklistHandler {
	return &ChecklistHandler{
		templates:  templates,
		categories: categories,
	}
}

// ListChecklists handles GET /api/v1/checklists.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChecklistHandler) ListChecklists(c *gin.Context) {
	tpls, err := h.templates.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checklists": tpls,
		"total":      len(tpls),
	})
}

// GetChecklist handles GET /api/v1/checklists/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChecklistHandler) GetChecklist(c *gin.Context) {
	tpl, err := h.templates.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tpl)
}

// ListCategories handles GET /api/v1/categories.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChecklistHandler) ListCategories(c *gin.Context) {
	cats, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": cats,
		"total":      len(cats),
	})
}

// GetCategory handles GET /api/v1/categories/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ChecklistHandler) GetCategory(c *gin.Context) {
	cat, err := h.categories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cat)
}
