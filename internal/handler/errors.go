package handler

import (
	"errors"
	"net/http"

	"expense_ledger/internal/middleware"
	"expense_ledger/internal/service"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes the status and body for err. Errors the service layer
// does not name are logged and answered with fallback only.
func respondError(c *gin.Context, err error, fallback string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, service.ErrConfirmationRequired),
		errors.Is(err, service.ErrInvalidFileFormat),
		errors.Is(err, service.ErrFileSizeExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidCredentials.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGoogleLoginDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrExtractionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not read the receipt"})
	case errors.Is(err, service.ErrAdvisoryUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI advisor is unavailable, try again later"})
	default:
		_ = c.Error(err)
		log.Error(fallback, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// getAuthUserID returns the caller's id, answering 401 when it is missing.
func getAuthUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	return userID, true
}
