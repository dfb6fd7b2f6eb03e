package controller

import (
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"orders/internal/domain"
	"orders/internal/dto"
	apperrors "orders/internal/errors"
	"orders/internal/httputil"
)

const traceHeader = "X-Trace-Id"

// newTraceID tags the request and its response with a fresh trace id.
func newTraceID(w http.ResponseWriter) string {
	traceID := uuid.New().String()
	w.Header().Set(traceHeader, traceID)
	return traceID
}

// RequireJSON answers 415 unless the request declares a JSON body.
func RequireJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				traceID := newTraceID(w)
				logger.Warn("unsupported content type", zap.String("traceId", traceID), zap.String("contentType", r.Header.Get("Content-Type")))
				httputil.WriteJSON(w, logger, http.StatusUnsupportedMediaType, dto.ErrorResponse{
					TraceID: traceID,
					Status:  http.StatusUnsupportedMediaType,
					Code:    "UNSUPPORTED_MEDIA_TYPE",
					Message: "Content-Type must be application/json",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	httputil.WriteJSON(w, c.logger, status, data)
}

func (c *Controller) writeError(w http.ResponseWriter, traceID string, status int, code, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID: traceID,
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", message, details...)
}

// handleUseCaseError maps use case errors to status codes. Anything it does
// not recognise is logged and answered with 500.
func (c *Controller) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	var invalidStatus *domain.InvalidStatusError
	if stderrors.As(err, &invalidStatus) {
		c.writeError(w, traceID, http.StatusBadRequest, "INVALID_STATUS", err.Error(), apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("status must be one of %v", domain.OrderStatuses),
		})
		return
	}

	var transition *domain.TransitionError
	if stderrors.As(err, &transition) {
		c.writeError(w, traceID, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		logger.Warn("operation rejected by order status", zap.String("reason", ce.Message))
		c.writeError(w, traceID, http.StatusBadRequest, "INVALID_STATE", ce.Message)
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", nfe.Message)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

// pathID reads a positive integer path parameter.
func pathID(r *http.Request, name string) (uint, *apperrors.ValidationDetail) {
	value, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || value == 0 {
		return 0, &apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		}
	}
	return uint(value), nil
}
