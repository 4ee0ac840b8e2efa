package middleware

import (
	"time"

	"github.com/mlbahja/01-blog/internal/auth"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request once the response is known.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Render through the central error handler so the logged status is final.
				c.Error(err)
			}

			status := c.Response().Status
			event := logger.Info()
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			}

			if p, ok := auth.CurrentPrincipal(c); ok {
				event = event.Str("username", p.Username)
			}
			if err != nil && status >= 500 {
				event = event.Err(err)
			}

			req := c.Request()
			event.
				Str("request_id", GetRequestID(c)).
				Str("client_ip", c.RealIP()).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("user_agent", req.UserAgent()).
				Msg("request")

			return nil
		}
	}
}
