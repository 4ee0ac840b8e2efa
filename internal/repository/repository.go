package repository

import (
	"context"

	"github.com/mlbahja/01-blog/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository defines user data access operations
type UserRepository interface {
	CredentialStore

	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	SetRole(ctx context.Context, id uuid.UUID, role user.Role) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
