package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs-quantt/checklist-api/internal/service"
	"gorm.io/gorm"
)

// respondError maps service errors to HTTP statuses with a human-readable
// message. Validation → 400, unknown references → 404, lost aggregate
// races → 409, everything else → 500.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.IsNotFound(err), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAggregateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent submission detected, please retry: " + err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
