package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"onlyanon/internal/accesscode"
	"onlyanon/internal/middleware"
	"onlyanon/internal/services"
)

// notFoundBody is the only answer a failed redemption ever gets
var notFoundBody = gin.H{"error": "not found"}

// respondError maps service errors to HTTP status codes.
// Unexpected errors are logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, message := http.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, accesscode.ErrNotFound), errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, services.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrHandleTaken):
		status, message = http.StatusConflict, "handle already taken"
	case errors.Is(err, services.ErrAlreadyReplied):
		status, message = http.StatusConflict, "question already replied"
	case errors.Is(err, services.ErrPaymentReused):
		status, message = http.StatusConflict, "payment already used"
	case errors.Is(err, services.ErrOfferingInactive):
		status, message = http.StatusUnprocessableEntity, "offering is not accepting questions"
	case errors.Is(err, services.ErrPaymentRejected):
		status, message = http.StatusPaymentRequired, err.Error()
	case errors.Is(err, accesscode.ErrUniquenessExhausted):
		status, message = http.StatusServiceUnavailable, "could not issue an access code, try again"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"error", err,
			"route", c.FullPath(),
			"request_id", middleware.GetRequestID(c),
		)
	}

	c.JSON(status, gin.H{"error": message})
}
