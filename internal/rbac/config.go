package rbac

import "fmt"

// Config holds the role table
type Config struct {
	Roles []RoleDefinition
}

// Validate checks internal consistency of the Config
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}

	roleNames := make(map[Role]bool, len(c.Roles))
	for _, rd := range c.Roles {
		if rd.Name == "" {
			return fmt.Errorf(errConfigRoleNameEmpty)
		}
		if roleNames[rd.Name] {
			return fmt.Errorf(errConfigDuplicateRoleNameFmt, rd.Name)
		}
		roleNames[rd.Name] = true
	}

	for _, rd := range c.Roles {
		seen := make(map[Role]bool, len(rd.Implies))
		for _, implied := range rd.Implies {
			if !roleNames[implied] {
				return fmt.Errorf(errConfigImpliesUnknownRoleFmt, rd.Name, implied)
			}
			if implied == rd.Name {
				return fmt.Errorf(errConfigImpliesSelfFmt, rd.Name)
			}
			if seen[implied] {
				return fmt.Errorf(errConfigDuplicateImpliesFmt, rd.Name, implied)
			}
			seen[implied] = true
		}
	}

	return nil
}
