package observability

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/trace"
)

// TraceFields returns trace and span IDs for log correlation, or nil when ctx
// carries no valid span.
func TraceFields(ctx context.Context) map[string]string {
	if ctx == nil {
		return nil
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return map[string]string{
		AttrTraceID: spanCtx.TraceID().String(),
		AttrSpanID:  spanCtx.SpanID().String(),
	}
}

// StringifyAttrs converts attribute values to strings, redacting secrets.
func StringifyAttrs(attrs map[string]any) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		switch typed := v.(type) {
		case string:
			out[k] = RedactAttributeValue(k, typed)
		case bool:
			out[k] = strconv.FormatBool(typed)
		case int:
			out[k] = strconv.Itoa(typed)
		case int32:
			out[k] = strconv.FormatInt(int64(typed), 10)
		case int64:
			out[k] = strconv.FormatInt(typed, 10)
		case float64:
			out[k] = strconv.FormatFloat(typed, 'f', -1, 64)
		default:
			out[k] = RedactAttributeValue(k, "")
		}
	}
	return out
}
