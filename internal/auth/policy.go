package auth

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/mlbahja/01-blog/internal/domain/user"
	"github.com/mlbahja/01-blog/internal/rbac"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/labstack/echo/v4"
)

type RequirementKind int

const (
	RequirePublic RequirementKind = iota + 1
	RequireAuthenticated
	RequireRole
)

func (k RequirementKind) String() string {
	switch k {
	case RequirePublic:
		return "public"
	case RequireAuthenticated:
		return "authenticated"
	case RequireRole:
		return "role"
	default:
		return "unknown"
	}
}

// Requirement is what a request must present to reach a route.
type Requirement struct {
	Kind RequirementKind
	Role user.Role
}

func Public() Requirement { return Requirement{Kind: RequirePublic} }
func Authenticated() Requirement { return Requirement{Kind: RequireAuthenticated} }

func Role(r user.Role) Requirement {
	return Requirement{Kind: RequireRole, Role: r}
}

// Rule binds a path pattern and optional method set to a Requirement.
// Pattern segments are literals, ":name" for any single segment, or a final
// "*" matching the remainder of the path (including nothing).
type Rule struct {
	Pattern     string
	Methods     []string
	Requirement Requirement
}

type DenyReason int

const (
	DenyUnauthenticated DenyReason = iota + 1
	DenyForbidden
)

func (r DenyReason) String() string {
	switch r {
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func Allow() Decision { return Decision{Allowed: true} }
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

type compiledRule struct {
	segments    []string
	wildcard    bool
	methods     map[string]bool
	requirement Requirement
}

// Policy evaluates rules in order; the first match decides and an unmatched
// request requires authentication.
type Policy struct {
	rules []compiledRule
	roles *rbac.Checker
}

func NewPolicy(rules []Rule, roles *rbac.Checker) (*Policy, error) {
	p := &Policy{rules: make([]compiledRule, 0, len(rules)), roles: roles}

	for _, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		if r.Requirement.Kind == RequireRole {
			if _, err := roles.ValidateRole(string(r.Requirement.Role)); err != nil {
				return nil, fmt.Errorf(msgUnknownRoleFmt, r.Pattern, r.Requirement.Role)
			}
		}
		p.rules = append(p.rules, cr)
	}

	return p, nil
}

func compileRule(r Rule) (compiledRule, error) {
	switch r.Requirement.Kind {
	case RequirePublic, RequireAuthenticated, RequireRole:
	default:
		return compiledRule{}, fmt.Errorf(msgUnknownRequirementFmt, r.Pattern, r.Requirement.Kind)
	}

	if !strings.HasPrefix(r.Pattern, "/") {
		return compiledRule{}, fmt.Errorf(msgInvalidPatternFmt, r.Pattern, "must start with /")
	}

	segments := splitPath(r.Pattern)
	cr := compiledRule{requirement: r.Requirement}
	for i, seg := range segments {
		switch {
		case seg == "*":
			if i != len(segments)-1 {
				return compiledRule{}, fmt.Errorf(msgInvalidPatternFmt, r.Pattern, "* must be the last segment")
			}
			cr.wildcard = true
		case seg == ":":
			return compiledRule{}, fmt.Errorf(msgInvalidPatternFmt, r.Pattern, "parameter needs a name")
		}
	}
	if cr.wildcard {
		segments = segments[:len(segments)-1]
	}
	cr.segments = segments

	if len(r.Methods) > 0 {
		cr.methods = make(map[string]bool, len(r.Methods))
		for _, m := range r.Methods {
			cr.methods[strings.ToUpper(m)] = true
		}
	}

	return cr, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (cr compiledRule) matches(method string, segments []string) bool {
	if cr.methods != nil && !cr.methods[method] {
		return false
	}
	if len(segments) < len(cr.segments) {
		return false
	}
	if !cr.wildcard && len(segments) != len(cr.segments) {
		return false
	}
	for i, seg := range cr.segments {
		if strings.HasPrefix(seg, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}

// Evaluate decides whether principal (nil when anonymous) may call method on path.
func (p *Policy) Evaluate(method, requestPath string, principal *Principal) Decision {
	method = strings.ToUpper(method)
	segments := splitPath(path.Clean("/" + requestPath))

	requirement := Authenticated()
	for _, cr := range p.rules {
		if cr.matches(method, segments) {
			requirement = cr.requirement
			break
		}
	}

	return p.check(requirement, principal)
}

func (p *Policy) check(req Requirement, principal *Principal) Decision {
	switch req.Kind {
	case RequirePublic:
		return Allow()
	case RequireAuthenticated:
		if principal == nil {
			return Deny(DenyUnauthenticated)
		}
		return Allow()
	case RequireRole:
		if principal == nil {
			return Deny(DenyUnauthenticated)
		}
		if err := p.roles.RequireRole(rbac.Role(principal.Role), rbac.Role(req.Role)); err != nil {
			return Deny(DenyForbidden)
		}
		return Allow()
	default:
		return Deny(DenyUnauthenticated)
	}
}

// Enforce must run after RequestAuthenticator.Authenticate.
func (p *Policy) Enforce() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var principal *Principal
			if pr, ok := CurrentPrincipal(c); ok {
				principal = &pr
			}

			decision := p.Evaluate(c.Request().Method, c.Request().URL.Path, principal)
			if decision.Allowed {
				return next(c)
			}

			if decision.Reason == DenyForbidden {
				return apperrors.Forbidden(msgInsufficientRole)
			}
			return apperrors.Unauthenticated(msgAuthenticationRequired)
		}
	}
}

// DefaultRules is the built-in access table for the blog API.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/health", Requirement: Public()},
		{Pattern: "/auth/login", Methods: []string{http.MethodPost}, Requirement: Public()},
		{Pattern: "/auth/register", Methods: []string{http.MethodPost}, Requirement: Public()},
		{Pattern: "/auth/users/me/*", Requirement: Authenticated()},
		{Pattern: "/auth/users/:id", Methods: []string{http.MethodGet}, Requirement: Public()},
		{Pattern: "/auth/users/:id", Methods: []string{http.MethodDelete}, Requirement: Authenticated()},
		{Pattern: "/admin/*", Requirement: Role(user.RoleAdmin)},
		{Pattern: "/posts/*", Methods: []string{http.MethodGet}, Requirement: Public()},
		{Pattern: "/users/:username", Methods: []string{http.MethodGet}, Requirement: Public()},
	}
}
