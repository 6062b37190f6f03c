// Package template substitutes `{{$expression}}` tokens inside response
// bodies with values derived from the request or generated on the fly.
// See spec.md §4.4.
package template

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mockd/pkg/logging"
)

// Engine evaluates templates. It is stateless aside from its logger and
// safe for concurrent use.
type Engine struct {
	log *slog.Logger
}

// New creates an Engine. A nil logger falls back to a no-op logger.
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{log: log}
}

var tokenRegex = regexp.MustCompile(`\{\{\$([^}]+)\}\}`)

// Process scans s for `{{$expression}}` tokens and substitutes them. A
// panic anywhere in evaluation is recovered and the original string is
// returned unchanged, per the top-level-failure rule in spec.md §4.4.
func (e *Engine) Process(s string, ctx *Context) (result string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("template: recovered from panic, returning input unchanged", "error", r)
			result = s
		}
	}()

	return tokenRegex.ReplaceAllStringFunc(s, func(match string) string {
		expr := strings.TrimSpace(match[3 : len(match)-2])
		out, err := e.evaluate(expr, ctx)
		if err != nil {
			e.log.Debug("template: substitution failed, left verbatim", "expression", expr, "error", err)
			return match
		}
		if out == notAToken {
			return match // unknown token, left verbatim
		}
		return out
	})
}

// ProcessValue recursively applies Process to every string found in v,
// through arrays and map values; non-string leaves are returned unchanged.
func (e *Engine) ProcessValue(v interface{}, ctx *Context) interface{} {
	switch t := v.(type) {
	case string:
		return e.Process(t, ctx)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = e.ProcessValue(val, ctx)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = e.ProcessValue(val, ctx)
		}
		return out
	default:
		return v
	}
}

// notAToken is returned by evaluate to signal "not a recognised
// expression" without it being an error (errors get logged; unknown
// tokens are simply left alone).
const notAToken = "\x00unknown\x00"

func (e *Engine) evaluate(expr string, ctx *Context) (string, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return notAToken, nil
	}
	name, args := fields[0], fields[1:]

	switch {
	case name == "timestamp":
		return strconv.FormatInt(time.Now().UnixMilli(), 10), nil
	case name == "isoDate":
		return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"), nil
	case name == "uuid":
		return uuid.New().String(), nil
	case name == "randomInt":
		return evalRandomInt(ctx, args)
	case name == "randomFloat":
		return evalRandomFloat(ctx, args)
	case name == "randomString":
		return evalRandomString(ctx, args)
	case name == "randomEmail":
		return evalRandomEmail(ctx), nil
	case name == "randomName":
		return evalRandomName(ctx), nil
	case name == "randomBoolean":
		if rngIntN(ctx, 2) == 1 {
			return "true", nil
		}
		return "false", nil
	case name == "request.query" || strings.HasPrefix(name, "request.query."):
		return evalRequestQuery(ctx, name, args)
	case name == "request.header" || strings.HasPrefix(name, "request.header."):
		return evalRequestHeader(ctx, name, args)
	case name == "request.body" || strings.HasPrefix(name, "request.body."):
		return evalRequestBody(ctx, name, args)
	case name == "request.path" || strings.HasPrefix(name, "request.path."):
		return evalRequestPath(ctx, name, args)
	default:
		return notAToken, nil
	}
}

func evalRandomInt(ctx *Context, args []string) (string, error) {
	min, max := 0, 1000
	var err error
	if len(args) >= 1 {
		if min, err = strconv.Atoi(args[0]); err != nil {
			return "", fmt.Errorf("randomInt: invalid min %q: %w", args[0], err)
		}
	}
	if len(args) >= 2 {
		if max, err = strconv.Atoi(args[1]); err != nil {
			return "", fmt.Errorf("randomInt: invalid max %q: %w", args[1], err)
		}
	}
	if max < min {
		return "", fmt.Errorf("randomInt: max %d < min %d", max, min)
	}
	n := rngIntN(ctx, max-min+1) + min
	return strconv.Itoa(n), nil
}

func evalRandomFloat(ctx *Context, args []string) (string, error) {
	min, max, precision := 0.0, 1.0, 2
	var err error
	if len(args) >= 1 {
		if min, err = strconv.ParseFloat(args[0], 64); err != nil {
			return "", fmt.Errorf("randomFloat: invalid min %q: %w", args[0], err)
		}
	}
	if len(args) >= 2 {
		if max, err = strconv.ParseFloat(args[1], 64); err != nil {
			return "", fmt.Errorf("randomFloat: invalid max %q: %w", args[1], err)
		}
	}
	if len(args) >= 3 {
		if precision, err = strconv.Atoi(args[2]); err != nil {
			return "", fmt.Errorf("randomFloat: invalid precision %q: %w", args[2], err)
		}
	}
	if max < min {
		return "", fmt.Errorf("randomFloat: max %g < min %g", max, min)
	}
	v := min + rngFloat64(ctx)*(max-min)
	return strconv.FormatFloat(v, 'f', precision, 64), nil
}

func evalRandomString(ctx *Context, args []string) (string, error) {
	n := 10
	if len(args) >= 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("randomString: invalid length %q: %w", args[0], err)
		}
		n = v
	}
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rngIntN(ctx, len(charset))]
	}
	return string(b), nil
}

func evalRandomEmail(ctx *Context) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = charset[rngIntN(ctx, len(charset))]
	}
	domain := emailDomains[rngIntN(ctx, len(emailDomains))]
	return string(b) + "@" + domain
}

func evalRandomName(ctx *Context) string {
	first := firstNames[rngIntN(ctx, len(firstNames))]
	last := lastNames[rngIntN(ctx, len(lastNames))]
	return first + " " + last
}

// dottedKey extracts the key for a "request.X <k>" / "request.X.<k>" form:
// either the single remaining arg, or everything after prefix + ".".
func dottedKey(name string, args []string, prefix string) (string, bool) {
	if strings.HasPrefix(name, prefix+".") {
		return name[len(prefix)+1:], true
	}
	if len(args) == 1 {
		return args[0], true
	}
	return "", false
}

func evalRequestQuery(ctx *Context, name string, args []string) (string, error) {
	key, ok := dottedKey(name, args, "request.query")
	if !ok {
		return "", fmt.Errorf("request.query: missing key")
	}
	v, _ := ctx.queryFirst(key)
	return v, nil
}

func evalRequestHeader(ctx *Context, name string, args []string) (string, error) {
	key, ok := dottedKey(name, args, "request.header")
	if !ok {
		return "", fmt.Errorf("request.header: missing key")
	}
	v, _ := ctx.headerFirst(key)
	return v, nil
}

func evalRequestPath(ctx *Context, name string, args []string) (string, error) {
	key, ok := dottedKey(name, args, "request.path")
	if !ok {
		return "", fmt.Errorf("request.path: missing key")
	}
	v, _ := ctx.pathParam(key)
	return v, nil
}

func evalRequestBody(ctx *Context, name string, args []string) (string, error) {
	key, ok := dottedKey(name, args, "request.body")
	if !ok {
		return "", fmt.Errorf("request.body: missing key")
	}
	if ctx == nil || ctx.Body == nil {
		return "", nil
	}
	v, found := lookupDotPath(ctx.Body, key)
	if !found {
		return "", nil
	}
	return stringifyBodyValue(v)
}

// lookupDotPath walks a dot-separated path into a parsed JSON value
// (map[string]interface{} / []interface{} / scalars).
func lookupDotPath(v interface{}, path string) (interface{}, bool) {
	current := v
	for _, part := range strings.Split(path, ".") {
		switch c := current.(type) {
		case map[string]interface{}:
			val, ok := c[part]
			if !ok {
				return nil, false
			}
			current = val
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			current = c[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// stringifyBodyValue renders a scalar directly and JSON-encodes anything
// else, per spec.md §4.4's "non-scalars JSON-encoded" rule.
func stringifyBodyValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
