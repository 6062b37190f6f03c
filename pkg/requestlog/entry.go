// Package requestlog provides the bounded ring-buffer request log backing
// the mock dispatcher and admin /logs surface. See spec.md §3 (RequestLog)
// and §4.2 (log append/read contracts).
package requestlog

import "time"

// Special endpoint IDs used when a request never matched a registered
// endpoint, or when the pipeline failed before composing a response.
const (
	EndpointNotFound = "not-found"
	EndpointError    = "error"
)

// Entry captures one mock request/response for inspection via the admin
// API. Bodies are truncated (see pkg/util.TruncateBody) before storage so
// the ring buffer stays bounded in memory, not just in count.
type Entry struct {
	ID             string              `json:"id"`
	EndpointID     string              `json:"endpointId"`
	Method         string              `json:"method"`
	Path           string              `json:"path"`
	URL            string              `json:"url"`
	QueryParams    map[string][]string `json:"queryParams,omitempty"`
	RequestHeaders map[string][]string `json:"requestHeaders,omitempty"`
	RequestBody    string              `json:"requestBody,omitempty"`
	ResponseStatus int                 `json:"responseStatus"`
	ResponseData   string              `json:"responseData,omitempty"`
	ResponseTimeMs int64               `json:"responseTime"`
	Timestamp      time.Time           `json:"timestamp"`
	ClientIP       string              `json:"clientIp"`
	UserAgent      string              `json:"userAgent,omitempty"`
}
