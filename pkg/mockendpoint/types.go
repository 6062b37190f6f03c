// Package mockendpoint defines the data model mockd's registry stores and
// the dispatch pipeline composes: Endpoint and everything it owns
// (conditional responses, scenarios, proxying, auth, rate limits,
// environment overlays). Response bodies are kept as an opaque JSON value
// sum type (Value) throughout rather than erased at the boundary, so the
// template engine and conditional matcher can walk them without
// re-parsing.
package mockendpoint

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/getmockd/mockd/pkg/mockerr"
)

// Value is the opaque JSON value sum type: null, bool, float64, string,
// []Value, or map[string]Value, exactly as encoding/json decodes into
// interface{}. Kept as a named type so call sites document intent.
type Value = interface{}

// Status is an endpoint's lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Method is an HTTP method an endpoint can be registered against.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Delay models either a fixed millisecond delay or a {min,max} range,
// matching spec.md §4.3 step 10. A nil *Delay means no delay.
type Delay struct {
	Fixed *int `json:"-" yaml:"-"`
	Min   *int `json:"-" yaml:"-"`
	Max   *int `json:"-" yaml:"-"`
}

// MarshalJSON emits a bare number for a fixed delay, or {"min":.,"max":.}
// for a ranged one.
func (d Delay) MarshalJSON() ([]byte, error) {
	if d.Fixed != nil {
		return json.Marshal(*d.Fixed)
	}
	return json.Marshal(struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}{Min: deref(d.Min), Max: deref(d.Max)})
}

// UnmarshalJSON accepts either a bare number (fixed delay) or an object
// with min/max (ranged delay).
func (d *Delay) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		n := int(num)
		d.Fixed = &n
		return nil
	}
	var rng struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}
	if err := json.Unmarshal(data, &rng); err != nil {
		return fmt.Errorf("delay: expected number or {min,max}: %w", err)
	}
	d.Min, d.Max = &rng.Min, &rng.Max
	return nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FixedDelay builds a Delay with a single millisecond value.
func FixedDelay(ms int) *Delay { return &Delay{Fixed: &ms} }

// RangeDelay builds a Delay with a [min,max] millisecond range.
func RangeDelay(min, max int) *Delay { return &Delay{Min: &min, Max: &max} }

// Response is the (status, body, headers, delay) triple every precedence
// level (endpoint default, environment overlay, conditional, scenario)
// contributes a partial view of.
type Response struct {
	Status  int               `json:"status,omitempty" yaml:"status,omitempty"`
	Body    Value             `json:"body,omitempty" yaml:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Delay   *Delay            `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// ConditionSource names where a Condition reads its comparison value from.
type ConditionSource string

const (
	SourceQuery  ConditionSource = "query"
	SourceHeader ConditionSource = "header"
	SourceBody   ConditionSource = "body"
)

// ConditionOperator names a Condition's comparison.
type ConditionOperator string

const (
	OpEq         ConditionOperator = "eq"
	OpNeq        ConditionOperator = "neq"
	OpContains   ConditionOperator = "contains"
	OpStartsWith ConditionOperator = "startsWith"
	OpEndsWith   ConditionOperator = "endsWith"
	OpRegex      ConditionOperator = "regex"
	OpExists     ConditionOperator = "exists"
)

// Condition is a single predicate evaluated against one field of the
// incoming request. See spec.md §4.8.
type Condition struct {
	Source   ConditionSource   `json:"source" yaml:"source"`
	Field    string            `json:"field" yaml:"field"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Value    string            `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionalResponse is selected when every Condition in it matches
// (logical AND). The first ConditionalResponse in Endpoint.ConditionalResponses
// whose Conditions all match wins.
type ConditionalResponse struct {
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Response   Response    `json:"response" yaml:"response"`
}

// ScenarioMode selects how ScenarioConfig rotates through its Responses.
type ScenarioMode string

const (
	ScenarioSequential ScenarioMode = "sequential"
	ScenarioRandom     ScenarioMode = "random"
	ScenarioWeighted   ScenarioMode = "weighted"
)

// ScenarioResponse is one rotation slot. Order is used by sequential mode
// (missing/zero sorts first); Weight is used by weighted mode (missing/zero
// counts as 1).
type ScenarioResponse struct {
	Order    int      `json:"order,omitempty" yaml:"order,omitempty"`
	Weight   int      `json:"weight,omitempty" yaml:"weight,omitempty"`
	Response Response `json:"response" yaml:"response"`
}

// ScenarioConfig rotates an endpoint's response across requests. See
// spec.md §4.7.
type ScenarioConfig struct {
	Enabled    bool               `json:"enabled" yaml:"enabled"`
	Mode       ScenarioMode       `json:"mode" yaml:"mode"`
	Responses  []ScenarioResponse `json:"responses" yaml:"responses"`
	ResetAfter int                `json:"resetAfter,omitempty" yaml:"resetAfter,omitempty"` // seconds; 0 = never
	Loop       bool               `json:"loop" yaml:"loop"`
}

// PathRewriteRule is one entry of ProxyConfig.PathRewrite: the first
// pattern that matches the incoming path has its match replaced.
type PathRewriteRule struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// ProxyConfig forwards a mock request to a real upstream instead of
// answering it locally. See spec.md §4.6.
type ProxyConfig struct {
	Enabled       bool              `json:"enabled" yaml:"enabled"`
	TargetURL     string            `json:"targetUrl" yaml:"targetUrl"`
	PathRewrite   []PathRewriteRule `json:"pathRewrite,omitempty" yaml:"pathRewrite,omitempty"`
	Headers       map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	TimeoutMs     int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	CacheResponse bool              `json:"cacheResponse,omitempty" yaml:"cacheResponse,omitempty"`
	CacheTTL      int               `json:"cacheTtl,omitempty" yaml:"cacheTtl,omitempty"` // seconds
}

// AuthMethod names an auth simulation strategy. See spec.md §4.5.
type AuthMethod string

const (
	AuthNone   AuthMethod = "none"
	AuthBearer AuthMethod = "bearer"
	AuthJWT    AuthMethod = "jwt"
	AuthAPIKey AuthMethod = "apiKey"
	AuthBasic  AuthMethod = "basic"
)

// BearerConfig validates a static set of acceptable bearer tokens.
type BearerConfig struct {
	ValidTokens []string `json:"validTokens,omitempty" yaml:"validTokens,omitempty"`
	AcceptAny   bool     `json:"acceptAny,omitempty" yaml:"acceptAny,omitempty"`
}

// JWTConfig validates JWT *structure* only; signatures are never checked.
type JWTConfig struct {
	CheckExpiry    bool     `json:"checkExpiry,omitempty" yaml:"checkExpiry,omitempty"`
	RequiredClaims []string `json:"requiredClaims,omitempty" yaml:"requiredClaims,omitempty"`
	ValidIssuers   []string `json:"validIssuers,omitempty" yaml:"validIssuers,omitempty"`
	ValidAudiences []string `json:"validAudiences,omitempty" yaml:"validAudiences,omitempty"`
}

// APIKeyConfig validates a static API key carried in a header or query
// parameter.
type APIKeyConfig struct {
	HeaderName string   `json:"headerName,omitempty" yaml:"headerName,omitempty"`
	QueryParam string   `json:"queryParam,omitempty" yaml:"queryParam,omitempty"`
	ValidKeys  []string `json:"validKeys,omitempty" yaml:"validKeys,omitempty"`
}

// BasicConfig validates HTTP Basic credentials against a static map.
type BasicConfig struct {
	Credentials map[string]string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// AuthConfig is an endpoint's (or the global) authentication simulation
// configuration.
type AuthConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Method       AuthMethod    `json:"method,omitempty" yaml:"method,omitempty"`
	BearerConfig *BearerConfig `json:"bearerConfig,omitempty" yaml:"bearerConfig,omitempty"`
	JWTConfig    *JWTConfig    `json:"jwtConfig,omitempty" yaml:"jwtConfig,omitempty"`
	APIKeyConfig *APIKeyConfig `json:"apiKeyConfig,omitempty" yaml:"apiKeyConfig,omitempty"`
	BasicConfig  *BasicConfig  `json:"basicConfig,omitempty" yaml:"basicConfig,omitempty"`
	ExcludePaths []string      `json:"excludePaths,omitempty" yaml:"excludePaths,omitempty"`
	ErrorStatus  int           `json:"errorStatus,omitempty" yaml:"errorStatus,omitempty"`
	ErrorBody    Value         `json:"errorBody,omitempty" yaml:"errorBody,omitempty"`
}

// GlobalAuthSettings is the process-wide auth fallback used when an
// endpoint does not enable its own AuthConfig.
type GlobalAuthSettings struct {
	AuthConfig `yaml:",inline"`
}

// RateLimitKeyBy names what the rate limiter keys its counters on.
type RateLimitKeyBy string

const (
	KeyByIP     RateLimitKeyBy = "ip"
	KeyByHeader RateLimitKeyBy = "header"
	KeyByQuery  RateLimitKeyBy = "query"
)

// RateLimitConfig configures the fixed-window limiter for one endpoint.
// See spec.md §4 and §4.3 step 3.
type RateLimitConfig struct {
	RequestsPerWindow int            `json:"requestsPerWindow" yaml:"requestsPerWindow"`
	WindowSeconds     int            `json:"windowSeconds" yaml:"windowSeconds"`
	BurstLimit        int            `json:"burstLimit,omitempty" yaml:"burstLimit,omitempty"`
	KeyBy             RateLimitKeyBy `json:"keyBy,omitempty" yaml:"keyBy,omitempty"`
	KeyName           string         `json:"keyName,omitempty" yaml:"keyName,omitempty"`
	ErrorStatus       int            `json:"errorStatus,omitempty" yaml:"errorStatus,omitempty"`
	ErrorBody         Value          `json:"errorBody,omitempty" yaml:"errorBody,omitempty"`
}

// EnvironmentOverride replaces part of an endpoint's default response
// when the request resolves to the named environment. Enabled defaults
// to true; set to false to disable the override without removing it.
type EnvironmentOverride struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
	Body    Value  `json:"body,omitempty" yaml:"body,omitempty"`
	Delay   *Delay `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// IsEnabled reports whether the override applies (Enabled defaults true).
func (o EnvironmentOverride) IsEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

// Endpoint is the primary registry entity: a registered mock definition
// for one (method, path pattern). See spec.md §3.
type Endpoint struct {
	ID                    string                         `json:"id" yaml:"id"`
	Method                Method                         `json:"method" yaml:"method"`
	Path                  string                         `json:"path" yaml:"path"`
	Default               Response                       `json:"defaultResponse" yaml:"defaultResponse"`
	ConditionalResponses  []ConditionalResponse          `json:"conditionalResponses,omitempty" yaml:"conditionalResponses,omitempty"`
	ScenarioConfig        *ScenarioConfig                `json:"scenarioConfig,omitempty" yaml:"scenarioConfig,omitempty"`
	ProxyConfig           *ProxyConfig                   `json:"proxyConfig,omitempty" yaml:"proxyConfig,omitempty"`
	AuthConfig            *AuthConfig                    `json:"authConfig,omitempty" yaml:"authConfig,omitempty"`
	RateLimitConfig       *RateLimitConfig                `json:"rateLimitConfig,omitempty" yaml:"rateLimitConfig,omitempty"`
	EnvironmentOverrides  map[string]EnvironmentOverride `json:"environmentOverrides,omitempty" yaml:"environmentOverrides,omitempty"`
	Status                Status                         `json:"status" yaml:"status"`
	Tags                  []string                       `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt             time.Time                      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt             time.Time                      `json:"updatedAt" yaml:"updatedAt"`
}

// Active reports whether the endpoint should be considered by the matcher.
func (e *Endpoint) Active() bool {
	return e != nil && e.Status == StatusActive
}

// Clone returns a deep-enough copy of the endpoint for safe external
// consumption. The store always hands out clones, never internal
// pointers, per the "store exclusively owns all entities" ownership rule.
func (e *Endpoint) Clone() *Endpoint {
	if e == nil {
		return nil
	}
	clone := *e
	if e.ConditionalResponses != nil {
		clone.ConditionalResponses = append([]ConditionalResponse(nil), e.ConditionalResponses...)
	}
	if e.ScenarioConfig != nil {
		sc := *e.ScenarioConfig
		sc.Responses = append([]ScenarioResponse(nil), e.ScenarioConfig.Responses...)
		clone.ScenarioConfig = &sc
	}
	if e.ProxyConfig != nil {
		pc := *e.ProxyConfig
		clone.ProxyConfig = &pc
	}
	if e.AuthConfig != nil {
		ac := *e.AuthConfig
		clone.AuthConfig = &ac
	}
	if e.RateLimitConfig != nil {
		rc := *e.RateLimitConfig
		clone.RateLimitConfig = &rc
	}
	if e.EnvironmentOverrides != nil {
		clone.EnvironmentOverrides = make(map[string]EnvironmentOverride, len(e.EnvironmentOverrides))
		for k, v := range e.EnvironmentOverrides {
			clone.EnvironmentOverrides[k] = v
		}
	}
	if e.Tags != nil {
		clone.Tags = append([]string(nil), e.Tags...)
	}
	return &clone
}

// Validate checks the required-field invariants enforced on create/update.
func (e *Endpoint) Validate() error {
	if e.Method == "" {
		return fmt.Errorf("%w: method is required", mockerr.ErrValidation)
	}
	if e.Path == "" {
		return fmt.Errorf("%w: path is required", mockerr.ErrValidation)
	}
	if e.ScenarioConfig != nil && e.ScenarioConfig.Enabled {
		switch e.ScenarioConfig.Mode {
		case ScenarioSequential, ScenarioRandom, ScenarioWeighted:
		default:
			return fmt.Errorf("%w: scenarioConfig.mode must be sequential, random, or weighted", mockerr.ErrValidation)
		}
		if len(e.ScenarioConfig.Responses) == 0 {
			return fmt.Errorf("%w: scenarioConfig.responses must not be empty when enabled", mockerr.ErrValidation)
		}
	}
	if e.ProxyConfig != nil && e.ProxyConfig.Enabled && e.ProxyConfig.TargetURL == "" {
		return fmt.Errorf("%w: proxyConfig.targetUrl is required when enabled", mockerr.ErrValidation)
	}
	return nil
}
