package contexthelpers

import (
	"context"
)

// TraceID returns the id of the request being served, or an empty string outside of a request.
func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok {
		return ""
	}

	return traceID
}
