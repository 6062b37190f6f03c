package graphqlmock

import (
	"regexp"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// operationHeaderRe is the fallback extractor spec.md §4.10 names:
// "^ <operation-type> [name]?". Used only when gqlparser can't parse the
// document (partial/malformed queries are common in hand-written mock
// fixtures and must not turn into a pipeline error).
var operationHeaderRe = regexp.MustCompile(`^\s*(query|mutation|subscription)\s*([A-Za-z_][A-Za-z0-9_]*)?`)

// ParseOperation determines the operation type and name of query,
// preferring gqlparser.parser.ParseQuery (schema-less syntax parse) and
// falling back to a regex/brace heuristic when that fails.
func ParseOperation(query string) (opType OperationType, opName string) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err == nil && len(doc.Operations) > 0 {
		op := doc.Operations[0]
		return OperationType(op.Operation), op.Name
	}
	return parseOperationFallback(query)
}

func parseOperationFallback(query string) (OperationType, string) {
	trimmed := strings.TrimSpace(query)
	if m := operationHeaderRe.FindStringSubmatch(trimmed); m != nil {
		return OperationType(m[1]), m[2]
	}
	if strings.HasPrefix(trimmed, "{") {
		return OperationQuery, ""
	}
	return "", ""
}

// EffectiveOperationName returns the request's operationName field when
// set, else the name gqlparser (or the fallback) parsed from the query.
func EffectiveOperationName(req Request, parsedName string) string {
	if req.OperationName != "" {
		return req.OperationName
	}
	return parsedName
}
