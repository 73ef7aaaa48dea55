package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"lendvault/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by code, endpoint, and status",
	},
	[]string{"code", "endpoint", "status"},
)

// CustomHTTPErrorHandler turns every error that escapes a handler into the
// standard error envelope. Handlers normally respond through SendError
// themselves; this catches unmatched routes, binding failures and anything
// a handler forgot to map.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	response, status := classifyError(err, traceID)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(c.Request().Context(), level, "request failed",
		slog.String("trace_id", traceID),
		slog.String("error_code", response.Error.Code),
		slog.Int("status", status),
		slog.String("method", c.Request().Method),
		slog.String("path", c.Request().URL.Path),
		slog.String("error", err.Error()),
	)

	apiErrorsTotal.WithLabelValues(response.Error.Code, c.Path(), strconv.Itoa(status)).Inc()

	if sendErr := c.JSON(status, response); sendErr != nil {
		slog.Error("failed to write error response",
			slog.String("trace_id", traceID),
			slog.String("error", sendErr.Error()),
		)
	}
}

func classifyError(err error, traceID string) (*errors.ErrorResponse, int) {
	switch e := err.(type) {
	case *echo.HTTPError:
		code := statusToErrorCode(e.Code)
		return errors.NewErrorResponse(code, traceID,
			errors.WithMessage(fmt.Sprintf("%v", e.Message))), e.Code
	case validator.ValidationErrors:
		fieldErrors := make(map[string]string, len(e))
		for _, fe := range e {
			fieldErrors[fe.Field()] = describeFieldError(fe)
		}
		return errors.NewValidationError(fieldErrors, traceID), http.StatusBadRequest
	default:
		response, _ := errors.WrapSystemError(err, traceID)
		return response, response.GetHTTPStatus()
	}
}

// statusToErrorCode maps the statuses Echo raises itself (routing, binding,
// method checks) onto API error codes.
func statusToErrorCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity:
		return errors.ValidationGeneral
	case http.StatusNotFound:
		// Unmatched route or malformed resource path
		return errors.ValidationInvalidFormat
	case http.StatusTooManyRequests:
		return errors.SystemRateLimitExceeded
	case http.StatusServiceUnavailable:
		return errors.SystemServiceUnavailable
	default:
		return errors.SystemInternalError
	}
}

var fieldErrorMessages = map[string]string{
	"required":          "is required",
	"email":             "must be a valid email address",
	"alpha":             "must contain only alphabetic characters",
	"alphanum":          "must contain only alphanumeric characters",
	"numeric":           "must be a valid number",
	"uuid":              "must be a valid UUID",
	"uuid4":             "must be a valid UUID v4",
	"account_number":    "must be a valid account number",
	"amount":            "must be a valid amount (positive, up to 2 decimal places)",
	"transaction_type":  "must be a valid transaction type (deposit, withdrawal, interest, loan_disbursement, payment, fee)",
	"collateral_status": "must be a valid collateral status (pending, approved, rejected, released, defaulted)",
}

// describeFieldError converts a validator.FieldError into a message a client
// can act on.
func describeFieldError(fe validator.FieldError) string {
	if msg, ok := fieldErrorMessages[fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}
