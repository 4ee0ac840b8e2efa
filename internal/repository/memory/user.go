// Package memory provides an in-process UserRepository for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mlbahja/01-blog/internal/domain/user"
	"github.com/mlbahja/01-blog/internal/repository"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/google/uuid"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User
	now   func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[uuid.UUID]*user.User),
		now:   time.Now,
	}
}

// Save enforces the same email/username uniqueness constraints as the SQL schema.
func (r *UserRepository) Save(_ context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, apperrors.DuplicateEmail()
		}
		if existing.Username == u.Username {
			return nil, apperrors.DuplicateUsername()
		}
	}

	stored := clone(u)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := r.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = stored

	return clone(stored), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == id })
}

func (r *UserRepository) find(match func(*user.User) bool) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, clone(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) SetBanned(_ context.Context, id uuid.UUID, banned bool) error {
	return r.update(id, func(u *user.User) { u.Banned = &banned })
}

func (r *UserRepository) SetRole(_ context.Context, id uuid.UUID, role user.Role) error {
	return r.update(id, func(u *user.User) { u.Role = role })
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *user.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) update(id uuid.UUID, apply func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	apply(u)
	u.UpdatedAt = r.now()
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func clone(u *user.User) *user.User {
	c := *u
	if u.Banned != nil {
		banned := *u.Banned
		c.Banned = &banned
	}
	return &c
}
