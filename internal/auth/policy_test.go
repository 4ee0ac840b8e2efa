package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlbahja/01-blog/internal/domain/user"
	"github.com/mlbahja/01-blog/internal/rbac"
	"github.com/mlbahja/01-blog/internal/rbac/presets"
	apperrors "github.com/mlbahja/01-blog/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(DefaultRules(), rbac.MustNew(presets.Blog()))
	require.NoError(t, err)
	return p
}

func TestEvaluateDefaultRules(t *testing.T) {
	policy := newDefaultPolicy(t)
	userP := &Principal{Username: "alice", Role: user.RoleUser}
	adminP := &Principal{Username: "root", Role: user.RoleAdmin}

	tests := []struct {
		name      string
		method    string
		path      string
		principal *Principal
		want      Decision
	}{
		{"health is public", http.MethodGet, "/health", nil, Allow()},
		{"login is public", http.MethodPost, "/auth/login", nil, Allow()},
		{"login GET is not listed", http.MethodGet, "/auth/login", nil, Deny(DenyUnauthenticated)},
		{"post list is public", http.MethodGet, "/posts", nil, Allow()},
		{"single post is public", http.MethodGet, "/posts/42", nil, Allow()},
		{"nested post path is public", http.MethodGet, "/posts/42/comments", nil, Allow()},
		{"creating a post needs login", http.MethodPost, "/posts", nil, Deny(DenyUnauthenticated)},
		{"creating a post with login", http.MethodPost, "/posts", userP, Allow()},
		{"profile is public", http.MethodGet, "/users/alice", nil, Allow()},
		{"profile subpath is not public", http.MethodGet, "/users/alice/follow", nil, Deny(DenyUnauthenticated)},
		{"me needs login", http.MethodGet, "/auth/users/me", nil, Deny(DenyUnauthenticated)},
		{"me with login", http.MethodGet, "/auth/users/me", userP, Allow()},
		{"account profile is public", http.MethodGet, "/auth/users/7d3c2a1e-0000-4000-8000-000000000001", nil, Allow()},
		{"me password is not the public profile", http.MethodPut, "/auth/users/me/password", nil, Deny(DenyUnauthenticated)},
		{"account delete needs login", http.MethodDelete, "/auth/users/7d3c2a1e-0000-4000-8000-000000000001", nil, Deny(DenyUnauthenticated)},
		{"account delete with login", http.MethodDelete, "/auth/users/7d3c2a1e-0000-4000-8000-000000000001", userP, Allow()},
		{"role without principal role is forbidden", http.MethodGet, "/admin/users", &Principal{Username: "ghost"}, Deny(DenyForbidden)},
		{"admin anonymous", http.MethodGet, "/admin/users", nil, Deny(DenyUnauthenticated)},
		{"admin as user", http.MethodGet, "/admin/users", userP, Deny(DenyForbidden)},
		{"admin as admin", http.MethodPut, "/admin/users/1/ban", adminP, Allow()},
		{"admin satisfies user routes", http.MethodPost, "/posts", adminP, Allow()},
		{"unmatched route denies anonymous", http.MethodDelete, "/unknown/thing", nil, Deny(DenyUnauthenticated)},
		{"dot segments are cleaned", http.MethodGet, "/posts/../admin/users", userP, Deny(DenyForbidden)},
		{"trailing slash", http.MethodGet, "/health/", nil, Allow()},
		{"lowercase method", "get", "/health", nil, Allow()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Evaluate(tt.method, tt.path, tt.principal))
		})
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	roles := rbac.MustNew(presets.Blog())
	policy, err := NewPolicy([]Rule{
		{Pattern: "/admin/health", Requirement: Public()},
		{Pattern: "/admin/*", Requirement: Role(user.RoleAdmin)},
	}, roles)
	require.NoError(t, err)

	assert.Equal(t, Allow(), policy.Evaluate(http.MethodGet, "/admin/health", nil))
	assert.Equal(t, Deny(DenyUnauthenticated), policy.Evaluate(http.MethodGet, "/admin/users", nil))

	reversed, err := NewPolicy([]Rule{
		{Pattern: "/admin/*", Requirement: Role(user.RoleAdmin)},
		{Pattern: "/admin/health", Requirement: Public()},
	}, roles)
	require.NoError(t, err)
	assert.Equal(t, Deny(DenyUnauthenticated), reversed.Evaluate(http.MethodGet, "/admin/health", nil))
}

func TestEmptyPolicyFailsClosed(t *testing.T) {
	policy, err := NewPolicy(nil, rbac.MustNew(presets.Blog()))
	require.NoError(t, err)

	assert.Equal(t, Deny(DenyUnauthenticated), policy.Evaluate(http.MethodGet, "/", nil))
	assert.Equal(t, Allow(), policy.Evaluate(http.MethodGet, "/", &Principal{Username: "a", Role: user.RoleUser}))
}

func TestNewPolicyRejectsBadRules(t *testing.T) {
	roles := rbac.MustNew(presets.Blog())

	tests := []struct {
		name string
		rule Rule
	}{
		{"relative pattern", Rule{Pattern: "posts", Requirement: Public()}},
		{"wildcard in middle", Rule{Pattern: "/a/*/b", Requirement: Public()}},
		{"unnamed param", Rule{Pattern: "/a/:", Requirement: Public()}},
		{"unknown role", Rule{Pattern: "/a", Requirement: Role("OWNER")}},
		{"zero requirement", Rule{Pattern: "/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy([]Rule{tt.rule}, roles)
			assert.Error(t, err)
		})
	}
}

func TestEnforce(t *testing.T) {
	policy := newDefaultPolicy(t)
	e := echo.New()

	call := func(method, path string, p *Principal) error {
		c := e.NewContext(httptest.NewRequest(method, path, nil), httptest.NewRecorder())
		if p != nil {
			c.Set(ContextKeyPrincipal, *p)
		}
		return policy.Enforce()(func(echo.Context) error { return nil })(c)
	}

	assert.NoError(t, call(http.MethodGet, "/health", nil))
	assert.ErrorIs(t, call(http.MethodGet, "/admin/users", nil), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, call(http.MethodGet, "/admin/users", &Principal{Role: user.RoleUser}), apperrors.ErrForbidden)
	assert.NoError(t, call(http.MethodGet, "/admin/users", &Principal{Role: user.RoleAdmin}))
}
