package logger

import (
	"context"
	"log/slog"
	"slices"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Route is the matched route of a request, as seen by the log handler.
type Route interface {
	Endpoint() string
	Module() string
}

type routeKey struct{}

// RouteKey is the context key under which request contexts expose a Route.
var RouteKey any = routeKey{}

// RequestHandler enriches records with the matched route and extracted
// request values, then hands a copy to every sink enabled for the level.
type RequestHandler struct {
	sinks      []slog.Handler
	extractors []ContextExtractor
}

// NewRequestHandler wraps sinks in a RequestHandler. Wrapping a
// RequestHandler again only adds extractors. Nil extractors are dropped.
func NewRequestHandler(sink slog.Handler, extractors ...ContextExtractor) *RequestHandler {
	h := &RequestHandler{sinks: []slog.Handler{sink}}
	if rh, ok := sink.(*RequestHandler); ok {
		h = rh.clone(rh.sinks)
	}
	for _, ex := range extractors {
		if ex != nil {
			h.extractors = append(h.extractors, ex)
		}
	}
	return h
}

// Tee adds another sink, e.g. a remote error tracker.
func (h *RequestHandler) Tee(sink slog.Handler) *RequestHandler {
	return h.clone(append(slices.Clip(h.sinks), sink))
}

func (h *RequestHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(h.sinks, func(s slog.Handler) bool {
		return s.Enabled(ctx, level)
	})
}

func (h *RequestHandler) Handle(ctx context.Context, rec slog.Record) error {
	if r, ok := ctx.Value(RouteKey).(Route); ok && r.Endpoint() != "" {
		rec.AddAttrs(slog.String("endpoint", r.Endpoint()), slog.String("module", r.Module()))
	}
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}

	if len(h.sinks) == 1 {
		return h.sinks[0].Handle(ctx, rec)
	}
	for _, s := range h.sinks {
		if s.Enabled(ctx, rec.Level) {
			if err := s.Handle(ctx, rec.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *RequestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.mapSinks(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h *RequestHandler) WithGroup(name string) slog.Handler {
	return h.mapSinks(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *RequestHandler) mapSinks(fn func(slog.Handler) slog.Handler) *RequestHandler {
	sinks := make([]slog.Handler, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = fn(s)
	}
	return h.clone(sinks)
}

func (h *RequestHandler) clone(sinks []slog.Handler) *RequestHandler {
	return &RequestHandler{sinks: sinks, extractors: slices.Clone(h.extractors)}
}

// ValueExtractor returns an extractor that logs ctx.Value(key) under attr
// when the value is a non-empty string.
func ValueExtractor(key any, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(attr, v), true
		}
		return slog.Attr{}, false
	}
}
