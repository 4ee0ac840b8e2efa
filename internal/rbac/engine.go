package rbac

import (
	"errors"
	"fmt"
)

var (
	ErrDenied      = errors.New("authorization denied")
	ErrInvalidRole = errors.New("invalid role")
)

// Checker answers role implication questions based on a validated Config
type Checker struct {
	config     Config
	validRoles map[Role]bool
	// closure[r] holds r and every role r transitively implies
	closure map[Role]map[Role]bool
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups() {
	direct := make(map[Role][]Role, len(rc.config.Roles))
	rc.validRoles = make(map[Role]bool, len(rc.config.Roles))
	for _, rd := range rc.config.Roles {
		rc.validRoles[rd.Name] = true
		direct[rd.Name] = rd.Implies
	}

	rc.closure = make(map[Role]map[Role]bool, len(direct))
	for role := range direct {
		reach := map[Role]bool{role: true}
		stack := append([]Role(nil), direct[role]...)
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reach[next] {
				continue
			}
			reach[next] = true
			stack = append(stack, direct[next]...)
		}
		rc.closure[role] = reach
	}
}

// Implies reports whether a subject holding role have satisfies a requirement for role want.
// Unknown roles never satisfy anything.
func (rc *Checker) Implies(have, want Role) bool {
	if !rc.validRoles[want] {
		return false
	}
	reach, ok := rc.closure[have]
	if !ok {
		return false
	}
	return reach[want]
}

// RequireRole returns ErrDenied unless have implies want
func (rc *Checker) RequireRole(have, want Role) error {
	if have == "" {
		return fmt.Errorf("%w: %s", ErrDenied, errDeniedNoRole)
	}
	if !rc.Implies(have, want) {
		return fmt.Errorf("%w: "+errDeniedMissingRoleFmt, ErrDenied, want, have)
	}
	return nil
}

// ValidateRole validates a role string against configured roles
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if rc.validRoles[r] {
		return r, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidRole, role)
}

// Roles returns the configured role names in declaration order
func (rc *Checker) Roles() []Role {
	roles := make([]Role, 0, len(rc.config.Roles))
	for _, rd := range rc.config.Roles {
		roles = append(roles, rd.Name)
	}
	return roles
}
