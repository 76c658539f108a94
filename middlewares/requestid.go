package middlewares

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// RequestIDName is the settings name of the request ID middleware.
const RequestIDName = "request_id"

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for existing ID (in order)
	Order          int
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Generator = gen
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// WithRequestIDOrder sets the default chain position.
func WithRequestIDOrder(order int) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Order = order
	}
}

// RequestID returns middleware that assigns a unique request ID to each request.
// The ID is taken from request headers (if present) or generated, stored in
// the context and echoed on whatever response is finally sent.
func RequestID(opts ...RequestIDOption) internal.MiddlewareSpec {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
		Order:          100,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	sources := make([]internal.ExtractorSource, 0, len(cfg.Headers))
	for _, h := range cfg.Headers {
		sources = append(sources, internal.FromHeader(h))
	}
	extractor := internal.NewExtractor(sources...)

	return internal.MiddlewareSpec{
		Name:  RequestIDName,
		Order: cfg.Order,
		New: func(*internal.App, *settings.Settings) any {
			return &requestID{cfg: cfg, extractor: extractor}
		},
	}
}

type requestID struct {
	cfg       *RequestIDConfig
	extractor internal.Extractor
	id        string
}

func (m *requestID) ProcessRequest(c internal.Context) (internal.Result, error) {
	// First match wins so upstream tracing IDs survive.
	id, ok := m.extractor.Extract(c)
	if !ok {
		id = m.cfg.Generator()
	}
	m.id = id
	c.Set(requestIDKey{}, id)
	c.SetHeader(m.cfg.ResponseHeader, id)
	return nil, nil
}

func (m *requestID) ProcessResponse(c internal.Context, resp *internal.Response) (*internal.Response, error) {
	if m.id != "" {
		resp.Header().Set(m.cfg.ResponseHeader, m.id)
	}
	return resp, nil
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(c internal.Context) string {
	if v, ok := c.Get(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor for use with WithLogger.
// Automatically adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.ValueExtractor(requestIDKey{}, "request_id")
}
