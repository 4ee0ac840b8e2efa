package handler

import (
	"context"

	"github.com/mlbahja/01-blog/internal/auth"
	"github.com/mlbahja/01-blog/internal/domain/user"

	"github.com/google/uuid"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*auth.LoginResult, error)
	Register(ctx context.Context, in auth.RegisterInput) (*user.User, error)
	ChangePassword(ctx context.Context, p auth.Principal, current, next string) error
}

type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// AdminHandler interfaces
type UserAdministrator interface {
	List(ctx context.Context) ([]user.View, error)
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	Ban(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	Unban(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	ChangeRole(ctx context.Context, actor auth.Principal, id uuid.UUID, role string) error
	Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error
	DeleteAccount(ctx context.Context, actor auth.Principal, id uuid.UUID) error
}
