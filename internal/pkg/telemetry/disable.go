package telemetry

import (
	"context"
)

type ctxKey string

const disabledTracingCtxKey = ctxKey("disabled-tracing")

// ContextWithDisabledTracing marks the context, so Tracer.Start creates no span.
func ContextWithDisabledTracing(ctx context.Context) context.Context {
	return context.WithValue(ctx, disabledTracingCtxKey, true)
}

func IsTracingDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(disabledTracingCtxKey).(bool)
	return v
}
