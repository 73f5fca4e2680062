package observability

import (
	"strings"
)

const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrDeploymentEnv  = "deployment.environment"
	AttrTraceID        = "trace_id"
	AttrSpanID         = "span_id"
	AttrRequestID      = "request.id"
	AttrLogTag         = "log.tag"
	AttrIndicatorID    = "lariat.indicator.id"
	AttrSinkName       = "lariat.sink.name"
	AttrSinkKind       = "lariat.sink.kind"
	AttrRowCount       = "lariat.rows"
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrErrorType      = "error.type"
)

var secretKeySubstrings = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"api-key",
	"apikey",
	"application_key",
	"application-key",
	"authorization",
	"connection_string",
	"dsn",
}

// RedactAttributeValue masks values for known-sensitive attribute keys.
func RedactAttributeValue(key string, value string) string {
	lower := strings.ToLower(key)
	for _, needle := range secretKeySubstrings {
		if strings.Contains(lower, needle) {
			return "[REDACTED]"
		}
	}
	return value
}
