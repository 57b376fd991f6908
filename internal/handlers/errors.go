package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velopay/payment_platform_app/internal/apperrors"
	"github.com/velopay/payment_platform_app/internal/core/domain"
	"github.com/velopay/payment_platform_app/internal/dto"
)

// isDuplicate reports whether err carries the duplicate sentinel.
func isDuplicate(err error) bool {
	return errors.Is(err, apperrors.ErrDuplicate)
}

// respondWithError maps service errors to HTTP responses. Domain and
// validation failures are the caller's fault; infra failures are ours.
func respondWithError(c *gin.Context, logger *slog.Logger, operation string, err error) {
	var transitionErr *domain.InvalidStateTransitionError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.As(err, &transitionErr):
		logger.Warn("Illegal lifecycle transition",
			slog.String("operation", operation),
			slog.String("current_status", string(transitionErr.CurrentStatus)),
		)
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate resource"})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Concurrent modification conflict", slog.String("operation", operation))
		c.JSON(http.StatusConflict, gin.H{"error": "The resource was modified concurrently, retry with fresh state"})
	case errors.Is(err, domain.ErrInvalidPayment),
		errors.Is(err, domain.ErrBlankReason),
		errors.Is(err, domain.ErrInvalidPolicy),
		errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnresolvedPolicy):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrPolicyStoreUnavailable),
		errors.Is(err, apperrors.ErrPersistenceUnavailable):
		logger.Error("Backing store unavailable", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		logger.Error("Unhandled service error", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + operation})
	}
}

// toValidationResult converts the request DTO to the domain outcome.
func toValidationResult(req dto.ValidatePaymentRequest) domain.ValidationResult {
	if req.Passed != nil && *req.Passed {
		return domain.PassedValidation()
	}
	return domain.FailedValidation(req.Reason)
}
