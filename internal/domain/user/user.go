package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account-level role stored with every user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// DefaultRole is assigned at registration regardless of caller input.
const DefaultRole = RoleUser

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	// Banned is nullable in storage; nil means not banned.
	Banned    *bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsBanned() bool {
	return u.Banned != nil && *u.Banned
}

// View is the sanitized representation returned to clients.
type View struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) View() View {
	return View{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Banned:    u.IsBanned(),
		CreatedAt: u.CreatedAt,
	}
}

// Profile is the public view of an account; it omits the email address.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID.String(),
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
