package repository

import (
	"context"

	"github.com/mlbahja/01-blog/internal/domain/user"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"
)

// ErrUserNotFound is the typed not-found result every credential store returns
// when an identifier does not resolve. It wraps apperrors.ErrNotFound.
var ErrUserNotFound = apperrors.NotFound("user not found")

// CredentialStore is the narrow view of user storage consumed by the auth core.
// Lookups are always fresh reads; implementations must not cache records.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	// Save inserts a new user. Uniqueness violations surface as apperrors.ErrConflict.
	Save(ctx context.Context, u *user.User) (*user.User, error)
}
