package rbac

const (
	errConfigRolesEmpty            = "rbac config: roles must not be empty"
	errConfigRoleNameEmpty         = "rbac config: role name must not be empty"
	errConfigDuplicateRoleNameFmt  = "rbac config: duplicate role name: %s"
	errConfigImpliesUnknownRoleFmt = "rbac config: role %s implies unknown role: %s"
	errConfigImpliesSelfFmt        = "rbac config: role %s implies itself"
	errConfigDuplicateImpliesFmt   = "rbac config: role %s implies %s more than once"
	errMustNewPanicFmt             = "rbac.MustNew: %v"
	errDeniedMissingRoleFmt        = "requires role '%s', but subject has role '%s'"
	errDeniedNoRole                = "subject has no role"
)
