// Package config loads mockd's process-level configuration from
// environment variables, per spec.md §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Role is an admin principal's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// AdminPrincipal is one entry of ADMIN_TOKENS: a name, bearer token, and
// role used to authenticate calls to the admin facade.
type AdminPrincipal struct {
	Name  string
	Token string
	Role  Role
}

// Config holds mockd's process configuration.
type Config struct {
	// Port is the TCP port the mock/admin HTTP server listens on.
	Port int

	// Production suppresses sample-data seeding when true (NODE_ENV=production).
	Production bool

	// TeamEnabled turns on team/workspace auth checks.
	TeamEnabled bool

	// TeamRequireAuth requires authentication for all team operations.
	TeamRequireAuth bool

	// AdminPrincipals is the parsed ADMIN_TOKENS (or single ADMIN_TOKEN) list.
	AdminPrincipals []AdminPrincipal

	// DataDir is the directory holding endpoints.json and its siblings.
	DataDir string
}

// Load builds a Config from the process environment, applying the
// defaults spec.md §6 specifies.
func Load() Config {
	cfg := Config{
		Port:            envInt("PORT", 3001),
		Production:      os.Getenv("NODE_ENV") == "production",
		TeamEnabled:     envBool("TEAM_ENABLED", false),
		TeamRequireAuth: envBool("TEAM_REQUIRE_AUTH", false),
		DataDir:         envDataDir(),
	}
	cfg.AdminPrincipals = parseAdminTokens(os.Getenv("ADMIN_TOKENS"), os.Getenv("ADMIN_TOKEN"))
	return cfg
}

func envDataDir() string {
	if dir := os.Getenv("MOCKD_DATA_DIR"); dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(cwd, "data")
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(name string, fallback bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseAdminTokens parses ADMIN_TOKENS as comma-separated "name:token:role"
// triples. If empty, it falls back to a single admin principal built from
// ADMIN_TOKEN (default "dev-admin-token").
func parseAdminTokens(adminTokens, adminToken string) []AdminPrincipal {
	adminTokens = strings.TrimSpace(adminTokens)
	if adminTokens == "" {
		if adminToken == "" {
			adminToken = "dev-admin-token"
		}
		return []AdminPrincipal{{Name: "default", Token: adminToken, Role: RoleAdmin}}
	}

	var principals []AdminPrincipal
	for _, raw := range strings.Split(adminTokens, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.SplitN(raw, ":", 3)
		p := AdminPrincipal{Role: RoleAdmin}
		switch len(parts) {
		case 3:
			p.Name, p.Token, p.Role = parts[0], parts[1], Role(parts[2])
		case 2:
			p.Name, p.Token = parts[0], parts[1]
		case 1:
			p.Token = parts[0]
			p.Name = fmt.Sprintf("token-%d", len(principals))
		}
		if p.Role != RoleAdmin && p.Role != RoleEditor && p.Role != RoleViewer {
			p.Role = RoleAdmin
		}
		principals = append(principals, p)
	}
	return principals
}
