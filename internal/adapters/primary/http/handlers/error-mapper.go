package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"diagnostic-imaging-service/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrImageTooLarge),
		errors.Is(err, domain.ErrCorruptImage),
		errors.Is(err, domain.ErrInvalidDimensions),
		errors.Is(err, domain.ErrEmptyPatientName),
		errors.Is(err, domain.ErrMissingUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	// Gateway errors
	case errors.Is(err, domain.ErrGatewayTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGatewayUnreachable),
		errors.Is(err, domain.ErrMalformedResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

	// Persistence errors
	case errors.Is(err, domain.ErrConstraintViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
