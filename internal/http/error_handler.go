package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mlbahja/01-blog/internal/http/middleware"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"
	"github.com/mlbahja/01-blog/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	jsonKeyError     = "error"
	jsonKeyRequestID = "request_id"
	jsonKeyBanned    = "banned"
	jsonKeyField     = "field"

	fieldEmail    = "email"
	fieldUsername = "username"

	retryAfterSeconds = "60"
)

type errorMapping struct {
	target  error
	code    int
	message string
}

// errorMappings is checked in order; the first sentinel that matches wins.
var errorMappings = []errorMapping{
	{apperrors.ErrBannedAccount, http.StatusForbidden, "Account is banned"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{apperrors.ErrDuplicateEmail, http.StatusConflict, "Email already in use"},
	{apperrors.ErrDuplicateUsername, http.StatusConflict, "Username already in use"},
	{apperrors.ErrConflict, http.StatusConflict, "Resource already exists"},
	{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many attempts"},
	{apperrors.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{apperrors.ErrValidation, http.StatusBadRequest, "Validation error"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "Bad request"},
}

// NewErrorHandler maps sentinel errors to HTTP status codes, hides the
// detail of 5xx errors and logs every error with its request id.
func NewErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		} else {
			for _, m := range errorMappings {
				if errors.Is(err, m.target) {
					code = m.code
					message = m.message
					break
				}
			}

			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && code < http.StatusInternalServerError {
				message = appErr.Message
			}
		}

		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = c.Response().Header().Get(echo.HeaderXRequestID)
		}

		if code >= http.StatusInternalServerError {
			log.Error().
				Str("request_id", requestID).
				Int("status", code).
				Str("error", logger.SanitizeLogMessage(err.Error())).
				Msg("internal_server_error")
			message = "Internal server error"
		} else {
			log.Debug().
				Str("request_id", requestID).
				Int("status", code).
				Str("error", logger.SanitizeLogMessage(err.Error())).
				Msg("client_error")
		}

		body := map[string]interface{}{
			jsonKeyError:     message,
			jsonKeyRequestID: requestID,
		}

		switch {
		case errors.Is(err, apperrors.ErrBannedAccount):
			body[jsonKeyBanned] = true
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			body[jsonKeyField] = fieldEmail
		case errors.Is(err, apperrors.ErrDuplicateUsername):
			body[jsonKeyField] = fieldUsername
		case errors.Is(err, apperrors.ErrTooManyAttempts):
			c.Response().Header().Set("Retry-After", retryAfterSeconds)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, body)
		}
		if sendErr != nil {
			log.Error().Err(sendErr).Msg("failed to write error response")
		}
	}
}
