package admin

import (
	"net/http"
	"strings"

	"github.com/getmockd/mockd/pkg/config"
)

// RequireAdminToken wraps next with Bearer-token authentication against
// principals (spec.md §6's ADMIN_TOKENS/ADMIN_TOKEN). GET /health is
// always exempt so liveness probes don't need a token.
func RequireAdminToken(principals []config.AdminPrincipal, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" || !tokenAllowed(principals, token) {
			writeErr(w, r, http.StatusUnauthorized, "unauthorized", "a valid admin token is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func tokenAllowed(principals []config.AdminPrincipal, token string) bool {
	for _, p := range principals {
		if p.Token == token {
			return true
		}
	}
	return false
}
