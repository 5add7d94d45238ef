package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dimitrije/taskboard-api/internal/metrics"
	"github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/dimitrije/taskboard-api/internal/services"
	"github.com/dimitrije/taskboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

const (
	msgInvalidBody   = "Invalid request body"
	msgInvalidInput  = "Invalid input"
	msgInternalError = "Internal Server Error"
)

func respond(c *drift.Context, status int, data any, message string) {
	_ = c.JSON(status, dto.APIResponse{StatusCode: status, Data: data, Message: message})
}

func respondFailure(c *drift.Context, status int, message string, fields []dto.FieldError) {
	_ = c.JSON(status, dto.ErrorResponse{StatusCode: status, Message: message, Errors: fields})
}

// respondInvalid answers a request that failed DTO validation. A missing
// field is reported with the operation's own message.
func respondInvalid(c *drift.Context, err error, requiredMsg string) {
	msg := msgInvalidInput
	if dto.MissingRequired(err) {
		msg = requiredMsg
	}
	respondFailure(c, http.StatusBadRequest, msg, dto.FieldErrors(err))
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrValidation), errors.Is(kind, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error onto the response. Anything that is not a
// domain error is logged and reported as a generic 500.
func respondError(c *drift.Context, logger *zap.Logger, m *metrics.Metrics, operation string, err error) {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		status := statusFor(domainErr.Kind)
		if status == http.StatusForbidden {
			m.Denied(operation)
		}
		respondFailure(c, status, domainErr.Message, nil)
		return
	}

	logger.Error("request failed",
		zap.String("operation", operation),
		zap.String("path", c.Request.URL.Path),
		zap.Int64("user_id", middleware.GetUserID(c)),
		zap.Error(err),
	)
	respondFailure(c, http.StatusInternalServerError, msgInternalError, nil)
}

func parseID(c *drift.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter.
func queryID(c *drift.Context, name string) (*int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
