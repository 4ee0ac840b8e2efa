package presets

import (
	"github.com/mlbahja/01-blog/internal/domain/user"
	"github.com/mlbahja/01-blog/internal/rbac"
)

const (
	RoleUser  = rbac.Role(user.RoleUser)
	RoleAdmin = rbac.Role(user.RoleAdmin)
)

// Blog returns the role table for the blog service: ADMIN implies USER.
func Blog() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: RoleUser},
			{Name: RoleAdmin, Implies: []rbac.Role{RoleUser}},
		},
	}
}
