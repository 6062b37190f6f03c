package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("TEAM_ENABLED", "")
	t.Setenv("TEAM_REQUIRE_AUTH", "")
	t.Setenv("ADMIN_TOKENS", "")
	t.Setenv("ADMIN_TOKEN", "")

	cfg := Load()
	assert.Equal(t, 3001, cfg.Port)
	assert.False(t, cfg.Production)
	assert.False(t, cfg.TeamEnabled)
	assertSinglePrincipal(t, cfg, "dev-admin-token", RoleAdmin)
}

func assertSinglePrincipal(t *testing.T, cfg Config, token string, role Role) {
	t.Helper()
	assert.Len(t, cfg.AdminPrincipals, 1)
	assert.Equal(t, token, cfg.AdminPrincipals[0].Token)
	assert.Equal(t, role, cfg.AdminPrincipals[0].Role)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("TEAM_ENABLED", "true")
	t.Setenv("TEAM_REQUIRE_AUTH", "true")
	t.Setenv("ADMIN_TOKENS", "")
	t.Setenv("ADMIN_TOKEN", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Production)
	assert.True(t, cfg.TeamEnabled)
	assert.True(t, cfg.TeamRequireAuth)
}

func TestParseAdminTokensMultiple(t *testing.T) {
	principals := parseAdminTokens("alice:tok1:admin,bob:tok2:viewer", "")
	assert.Len(t, principals, 2)
	assert.Equal(t, "alice", principals[0].Name)
	assert.Equal(t, RoleAdmin, principals[0].Role)
	assert.Equal(t, "bob", principals[1].Name)
	assert.Equal(t, RoleViewer, principals[1].Role)
}

func TestParseAdminTokensInvalidRoleFallsBackToAdmin(t *testing.T) {
	principals := parseAdminTokens("alice:tok1:superuser", "")
	assert.Equal(t, RoleAdmin, principals[0].Role)
}

func TestParseAdminTokensBareToken(t *testing.T) {
	principals := parseAdminTokens("justatoken", "")
	assert.Len(t, principals, 1)
	assert.Equal(t, "justatoken", principals[0].Token)
}

func TestParseAdminTokensEmptyFallsBackToAdminToken(t *testing.T) {
	principals := parseAdminTokens("", "custom-token")
	assert.Len(t, principals, 1)
	assert.Equal(t, "custom-token", principals[0].Token)
	assert.Equal(t, RoleAdmin, principals[0].Role)
}
