// Package logger enriches slog records with the identifiers carried by a context.
package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

type intentKey struct{}

// WithIntent marks ctx as belonging to the named intent.
func WithIntent(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, intentKey{}, name)
}

// IntentFrom returns the intent name stored by WithIntent.
func IntentFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(intentKey{}).(string)
	return name, ok
}

// ContextHandler adds trace, request and intent identifiers found in the context to every record.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: handler}
}

// Handle processes a log record and adds context information.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	if intent, ok := IntentFrom(ctx); ok {
		r.AddAttrs(slog.String("intent", intent))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(group string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(group)}
}
