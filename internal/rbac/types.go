package rbac

// Role is a tagged role variant. Roles are only meaningful when declared in a Config.
type Role string

// RoleDefinition declares a role and the roles it directly implies.
// Implication is transitive: if ADMIN implies MODERATOR and MODERATOR implies USER,
// ADMIN satisfies every USER requirement.
type RoleDefinition struct {
	Name    Role
	Implies []Role
}
