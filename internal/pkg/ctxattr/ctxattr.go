// Package ctxattr stores logging and telemetry attributes in a context.Context.
package ctxattr

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

type ctxKey string

const attrsCtxKey = ctxKey("attributes")

// ContextWith returns a new context with the attributes merged into the existing ones.
// A newer value of the same key overwrites the older one.
func ContextWith(ctx context.Context, attrs ...attribute.KeyValue) context.Context {
	kvs := Attributes(ctx).ToSlice()
	kvs = append(kvs, attrs...)
	set := attribute.NewSet(kvs...)
	return context.WithValue(ctx, attrsCtxKey, &set)
}

// Attributes returns all attributes from the context, the set is empty if there are none.
func Attributes(ctx context.Context) *attribute.Set {
	if set, ok := ctx.Value(attrsCtxKey).(*attribute.Set); ok {
		return set
	}
	return attribute.EmptySet()
}
