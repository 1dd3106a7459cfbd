// Package correlation carries the identifier that ties outbound calls to the
// inbound request that caused them.
package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
	obscontext "github.com/smallbiznis/facturador/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HeaderName is the outbound header holding the correlation id.
const HeaderName = "X-Correlation-Id"

type correlationKey struct{}

// ExtractCorrelationID returns the correlation id stored on ctx, falling back
// to the inbound request id.
func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(correlationKey{}).(string); ok && val != "" {
		return val
	}
	return obscontext.RequestIDFromContext(ctx)
}

// ContextWithCorrelationID sets the correlation ID onto the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// EnsureCorrelationID guarantees a correlation ID on the context, generating one when missing.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	cid := ExtractCorrelationID(ctx)
	if cid == "" {
		cid = ulid.Make().String()
	}
	return ContextWithCorrelationID(ctx, cid), cid
}

// OutboundHeaders returns the correlation id plus W3C trace context headers
// for a call made on behalf of ctx.
func OutboundHeaders(ctx context.Context) map[string]string {
	_, cid := EnsureCorrelationID(ctx)
	carrier := propagation.MapCarrier{HeaderName: cid}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}
