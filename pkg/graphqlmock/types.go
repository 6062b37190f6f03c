// Package graphqlmock implements the GraphQL mock engine: operation
// parsing, resolver selection, and response composition. See spec.md
// §4.10.
package graphqlmock

import (
	"time"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// OperationType names a GraphQL operation kind.
type OperationType string

const (
	OperationQuery        OperationType = "query"
	OperationMutation     OperationType = "mutation"
	OperationSubscription OperationType = "subscription"
)

// Resolver is one entry in an endpoint's ordered resolver list. The
// first resolver whose operationName/operationType/variablesMatch all
// agree with the incoming request wins.
type Resolver struct {
	ID             string              `json:"id"`
	Enabled        bool                `json:"enabled"`
	OperationName  string              `json:"operationName,omitempty"`
	OperationType  OperationType       `json:"operationType,omitempty"`
	VariablesMatch map[string]any      `json:"variablesMatch,omitempty"`
	ResponseData   mockendpoint.Value  `json:"responseData,omitempty"`
	Errors         []GraphQLError      `json:"errors,omitempty"`
	Delay          *mockendpoint.Delay `json:"delay,omitempty"`
}

// GraphQLError is one element of a response's errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []string       `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Endpoint is a registered GraphQL mock: the path it's served at, its
// ordered resolvers, and the fallback response when none match.
type Endpoint struct {
	ID              string        `json:"id"`
	Path            string        `json:"path"`
	Status          string        `json:"status"` // "active" | "inactive"
	Resolvers       []Resolver    `json:"resolvers,omitempty"`
	DefaultResponse *ResponseBody `json:"defaultResponse,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Active reports whether the endpoint accepts requests.
func (e *Endpoint) Active() bool { return e.Status != "inactive" }

// ResponseBody is the {data?, errors?} envelope a resolver or the
// endpoint's defaultResponse contributes.
type ResponseBody struct {
	Data   mockendpoint.Value `json:"data,omitempty"`
	Errors []GraphQLError     `json:"errors,omitempty"`
}

// Request is the decoded incoming GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// LogEntry records one GraphQL request/response for the admin logs
// surface, mirroring pkg/requestlog's shape for the HTTP side.
type LogEntry struct {
	ID             string         `json:"id"`
	EndpointID     string         `json:"endpointId"`
	OperationName  string         `json:"operationName,omitempty"`
	OperationType  OperationType  `json:"operationType,omitempty"`
	Query          string         `json:"query"`
	Variables      map[string]any `json:"variables,omitempty"`
	ResponseStatus int            `json:"responseStatus"`
	Errors         []GraphQLError `json:"errors,omitempty"`
	ResponseTimeMs int64          `json:"responseTime"`
	Timestamp      time.Time      `json:"timestamp"`
}
