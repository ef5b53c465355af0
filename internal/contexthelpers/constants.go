package contexthelpers

type contextKey string

const TraceIDContextKey = contextKey("traceID")
