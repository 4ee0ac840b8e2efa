package middleware

import (
	"github.com/mlbahja/01-blog/internal/audit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDContextKey is the echo.Context key for the request ID
	RequestIDContextKey = "request_id"

	maxRequestIDLength = audit.MaxRequestIDLength
)

// RequestID reuses a caller-supplied X-Request-ID or generates one, echoes it
// in the response and attaches audit request metadata to the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}

			c.Set(RequestIDContextKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			req := c.Request()
			c.SetRequest(req.WithContext(audit.WithRequestInfo(req.Context(), audit.RequestInfoFromEcho(c))))

			return next(c)
		}
	}
}

// GetRequestID extracts the request ID from the context
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}
