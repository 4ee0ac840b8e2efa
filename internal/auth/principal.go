package auth

import (
	"context"

	"github.com/mlbahja/01-blog/internal/domain/user"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Principal is the authenticated identity for one request.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     user.Role
}

func principalOf(u *user.User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// CurrentPrincipal returns the principal attached by RequestAuthenticator, if any.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	if p, ok := c.Get(ContextKeyPrincipal).(Principal); ok {
		return p, true
	}
	return PrincipalFromContext(c.Request().Context())
}

// MustPrincipal is for handlers that cannot run anonymously.
func MustPrincipal(c echo.Context) (Principal, error) {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return Principal{}, apperrors.Unauthenticated(msgAuthenticationRequired)
	}
	return p, nil
}
