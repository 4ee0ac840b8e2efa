package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/mlbahja/01-blog/internal/audit"
	"github.com/mlbahja/01-blog/internal/repository"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestAuthenticator resolves the bearer token on every request into a
// Principal. Requests without a usable token continue anonymously; requests
// whose token belongs to a banned user are rejected before any route policy.
type RequestAuthenticator struct {
	tokens   *TokenCodec
	store    repository.CredentialStore
	recorder audit.Recorder
	logger   zerolog.Logger
}

func NewRequestAuthenticator(tokens *TokenCodec, store repository.CredentialStore, recorder audit.Recorder, logger zerolog.Logger) *RequestAuthenticator {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &RequestAuthenticator{
		tokens:   tokens,
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

func (m *RequestAuthenticator) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractBearerToken(c)
			if raw == "" {
				return next(c)
			}

			req := c.Request()
			p, err := m.resolve(req.Context(), raw)
			if err != nil {
				if errors.Is(err, apperrors.ErrBannedAccount) {
					return err
				}
				return next(c)
			}

			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), p)))
			c.Set(ContextKeyPrincipal, p)
			return next(c)
		}
	}
}

// resolve returns a Principal, apperrors.ErrBannedAccount, or another error
// meaning the request should be treated as anonymous.
func (m *RequestAuthenticator) resolve(ctx context.Context, raw string) (Principal, error) {
	claims, err := m.tokens.Parse(raw)
	if err != nil {
		var tokenErr *TokenError
		if errors.As(err, &tokenErr) {
			m.logger.Debug().Str("reason", tokenErr.Kind.String()).Msg("ignoring invalid bearer token")
		}
		return Principal{}, err
	}

	u, err := m.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			m.logger.Error().Err(err).Str("subject", claims.Subject).Msg(msgUserLookupFailed)
		}
		return Principal{}, err
	}

	if u.IsBanned() {
		event := &audit.Event{Type: audit.EventBannedRequest, Status: audit.StatusDenied, Subject: u.Username, ActorID: &u.ID}
		if err := m.recorder.Record(ctx, event); err != nil {
			m.logger.Error().Err(err).Msg("failed to record audit event")
		}
		return Principal{}, apperrors.BannedAccount()
	}

	return principalOf(u), nil
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}
