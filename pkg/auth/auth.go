// Package auth simulates authentication checks against static, configured
// credentials. Signatures are never verified — this is a mock server, not
// an identity provider. See spec.md §4.5.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// Result is the outcome of Check, matching the {valid, method, error?,
// decoded?} shape spec.md §4.5 calls for.
type Result struct {
	Valid   bool                   `json:"valid"`
	Method  mockendpoint.AuthMethod `json:"method"`
	Error   string                 `json:"error,omitempty"`
	Decoded map[string]interface{} `json:"decoded,omitempty"`
}

// EffectiveConfig resolves the config a request is checked against: the
// endpoint's own AuthConfig if enabled, else the global settings if
// enabled, else nil (no auth).
func EffectiveConfig(endpointCfg *mockendpoint.AuthConfig, global mockendpoint.GlobalAuthSettings) *mockendpoint.AuthConfig {
	if endpointCfg != nil && endpointCfg.Enabled {
		return endpointCfg
	}
	if global.Enabled {
		cfg := global.AuthConfig
		return &cfg
	}
	return nil
}

// IsExcluded reports whether path matches one of cfg's excludePaths,
// translated per spec.md §4.3: `*` becomes `.*`, `?` becomes `.`.
func IsExcluded(cfg *mockendpoint.AuthConfig, path string) bool {
	if cfg == nil {
		return false
	}
	for _, pattern := range cfg.ExcludePaths {
		if globMatchCached(pattern).MatchString(path) {
			return true
		}
	}
	return false
}

var (
	globCacheMu sync.Mutex
	globCache   = map[string]*regexp.Regexp{}
)

func globMatchCached(pattern string) *regexp.Regexp {
	globCacheMu.Lock()
	defer globCacheMu.Unlock()
	if re, ok := globCache[pattern]; ok {
		return re
	}
	re := compileGlob(pattern)
	globCache[pattern] = re
	return re
}

// compileGlob turns a glob pattern into an anchored regexp, escaping
// everything except `*` (-> `.*`) and `?` (-> `.`).
func compileGlob(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		// An unparsable pattern excludes nothing rather than panicking
		// the request pipeline.
		return regexp.MustCompile(`^\x00never-matches\x00$`)
	}
	return re
}

// Check validates r against cfg per the table in spec.md §4.5. cfg must
// be non-nil and enabled; callers filter out excluded paths beforehand.
func Check(r *http.Request, cfg *mockendpoint.AuthConfig) Result {
	switch cfg.Method {
	case mockendpoint.AuthBearer:
		return checkBearer(r, cfg.BearerConfig)
	case mockendpoint.AuthJWT:
		return checkJWT(r, cfg.JWTConfig)
	case mockendpoint.AuthAPIKey:
		return checkAPIKey(r, cfg.APIKeyConfig)
	case mockendpoint.AuthBasic:
		return checkBasic(r, cfg.BasicConfig)
	default:
		return Result{Valid: true, Method: mockendpoint.AuthNone}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

func checkBearer(r *http.Request, cfg *mockendpoint.BearerConfig) Result {
	res := Result{Method: mockendpoint.AuthBearer}
	token, ok := bearerToken(r)
	if !ok {
		res.Error = "missing bearer token"
		return res
	}
	if cfg == nil {
		res.Error = "no bearer configuration"
		return res
	}
	for _, t := range cfg.ValidTokens {
		if t == token {
			res.Valid = true
			return res
		}
	}
	if cfg.AcceptAny && token != "" {
		res.Valid = true
		return res
	}
	res.Error = "token not recognised"
	return res
}

// checkJWT decodes the token structurally with jwt.ParseUnverified —
// signatures are never checked, per spec.md §4.5.
func checkJWT(r *http.Request, cfg *mockendpoint.JWTConfig) Result {
	res := Result{Method: mockendpoint.AuthJWT}
	token, ok := bearerToken(r)
	if !ok {
		res.Error = "missing bearer token"
		return res
	}
	if strings.Count(token, ".") != 2 {
		res.Error = "token is not three dot-separated parts"
		return res
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	parsed, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		res.Error = "failed to decode token: " + err.Error()
		return res
	}

	headerBytes, _ := json.Marshal(parsed.Header)
	var header map[string]interface{}
	_ = json.Unmarshal(headerBytes, &header)
	res.Decoded = map[string]interface{}{
		"header":  header,
		"payload": map[string]interface{}(claims),
	}

	if cfg == nil {
		res.Valid = true
		return res
	}

	if cfg.CheckExpiry {
		exp, ok := claims["exp"]
		if !ok {
			res.Error = "missing exp claim"
			return res
		}
		expSeconds, ok := toFloat64(exp)
		if !ok {
			res.Error = "exp claim is not numeric"
			return res
		}
		if int64(expSeconds) < time.Now().Unix() {
			res.Error = "token expired"
			return res
		}
	}

	for _, required := range cfg.RequiredClaims {
		if _, ok := claims[required]; !ok {
			res.Error = "missing required claim: " + required
			return res
		}
	}

	if len(cfg.ValidIssuers) > 0 {
		iss, _ := claims["iss"].(string)
		if !contains(cfg.ValidIssuers, iss) {
			res.Error = "issuer not allowed"
			return res
		}
	}

	if len(cfg.ValidAudiences) > 0 {
		if !audienceIntersects(claims["aud"], cfg.ValidAudiences) {
			res.Error = "audience not allowed"
			return res
		}
	}

	res.Valid = true
	return res
}

func audienceIntersects(aud interface{}, valid []string) bool {
	switch v := aud.(type) {
	case string:
		return contains(valid, v)
	case []interface{}:
		for _, a := range v {
			if s, ok := a.(string); ok && contains(valid, s) {
				return true
			}
		}
	}
	return false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func checkAPIKey(r *http.Request, cfg *mockendpoint.APIKeyConfig) Result {
	res := Result{Method: mockendpoint.AuthAPIKey}
	if cfg == nil {
		res.Error = "no apiKey configuration"
		return res
	}
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-API-Key"
	}
	key := r.Header.Get(headerName)
	if key == "" && cfg.QueryParam != "" {
		key = r.URL.Query().Get(cfg.QueryParam)
	}
	if key == "" {
		res.Error = "missing API key"
		return res
	}
	if !contains(cfg.ValidKeys, key) {
		res.Error = "API key not recognised"
		return res
	}
	res.Valid = true
	return res
}

func checkBasic(r *http.Request, cfg *mockendpoint.BasicConfig) Result {
	res := Result{Method: mockendpoint.AuthBasic}
	h := r.Header.Get("Authorization")
	const prefix = "Basic "
	if !strings.HasPrefix(h, prefix) {
		res.Error = "missing basic credentials"
		return res
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(h, prefix))
	if err != nil {
		res.Error = "malformed basic credentials"
		return res
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok || user == "" || pass == "" {
		res.Error = "malformed basic credentials"
		return res
	}
	if cfg == nil {
		res.Error = "no basic configuration"
		return res
	}
	if want, ok := cfg.Credentials[user]; ok && want == pass {
		res.Valid = true
		return res
	}
	res.Error = "credentials not recognised"
	return res
}

// WWWAuthenticateHeader returns the challenge header value for a failed
// check, or "" if the method doesn't use one.
func WWWAuthenticateHeader(method mockendpoint.AuthMethod) string {
	switch method {
	case mockendpoint.AuthBearer, mockendpoint.AuthJWT:
		return "Bearer"
	case mockendpoint.AuthBasic:
		return `Basic realm="mockd"`
	default:
		return ""
	}
}

// ErrorStatus returns cfg's configured error status, defaulting to 401.
func ErrorStatus(cfg *mockendpoint.AuthConfig) int {
	if cfg != nil && cfg.ErrorStatus != 0 {
		return cfg.ErrorStatus
	}
	return http.StatusUnauthorized
}
