package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/cryptogate/internal/logging"
)

const traceIDHeader = "X-Request-ID"

type traceIDKey struct{}

// Tracing assigns every request an id, preferring the caller's X-Request-ID,
// then the otel trace id, then a fresh uuid. The id is echoed back, set on the
// active span and carried by the request's logger.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		span := trace.SpanFromContext(ctx)

		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			if sc := span.SpanContext(); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			} else {
				traceID = uuid.New().String()
			}
		}

		w.Header().Set(traceIDHeader, traceID)
		span.SetAttributes(attribute.String("request.id", traceID))

		ctx = context.WithValue(ctx, traceIDKey{}, traceID)
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("request_id", traceID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}
