package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"evcharge/internal/domain"
)

// respondError maps domain failures to HTTP statuses. Storage and upstream
// errors are logged and surfaced as a generic 500 without internal detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrSlotConflict.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrForbidden.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidTransition.Error()})
	case errors.Is(err, domain.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrEmailInUse.Error()})
	case errors.Is(err, domain.ErrReviewExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrReviewExists.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
