package logging

import "context"

type logDataContextKey struct{}

// ContextWithLogData attaches a LogData accumulator to the context so
// handlers further down the stack can add fields and timings to the
// request's completion log line.
func ContextWithLogData(ctx context.Context, logData *LogData) context.Context {
	return context.WithValue(ctx, logDataContextKey{}, logData)
}

// GetLogData returns the LogData attached to the context, or nil when the
// request did not pass through the logging middleware.
func GetLogData(ctx context.Context) *LogData {
	logData, _ := ctx.Value(logDataContextKey{}).(*LogData)
	return logData
}
