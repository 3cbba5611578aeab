package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID returns the request id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Logger returns the global logger annotated with the request id of ctx.
func Logger(ctx context.Context) *zap.Logger {
	if id := RequestID(ctx); id != "" {
		return zap.L().With(zap.String("req_id", id))
	}
	return zap.L()
}

// Time logs the duration of an operation once the returned func runs.
// Pass it the address of the named error result.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("op", name),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		}

		if errp != nil && *errp != nil {
			Logger(ctx).Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		Logger(ctx).Debug("operation done", fields...)
	}
}
