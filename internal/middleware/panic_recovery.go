package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"lendvault/internal/errors"

	"github.com/labstack/echo/v4"
)

// PanicRecovery converts handler panics into SYSTEM_001 responses. The panic
// value and stack land in the log under the request's trace ID; the client
// only sees the trace ID.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}

				slog.Error("panic recovered",
					slog.String("trace_id", traceID),
					slog.Any("panic", r),
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				response := errors.NewErrorResponse(errors.SystemInternalError, traceID)
				err = c.JSON(http.StatusInternalServerError, response)
			}()

			return next(c)
		}
	}
}
