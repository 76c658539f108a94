package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// TimeoutName is the settings name of the timeout middleware.
const TimeoutName = "timeout"

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Timeout time.Duration
	Order   int
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

// WithTimeoutOrder sets the default chain position.
func WithTimeoutOrder(order int) TimeoutOption {
	return func(cfg *TimeoutConfig) {
		cfg.Order = order
	}
}

// Timeout returns middleware that gives every request a deadline.
//
// Views reach the deadline through GetTimeoutContext and should pass it to
// blocking calls. A view failing with context.DeadlineExceeded after the
// deadline is reported as a TimeoutError, which renders with status 503.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.MiddlewareSpec {
	cfg := &TimeoutConfig{
		Timeout: timeout,
		Order:   300,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return internal.MiddlewareSpec{
		Name:  TimeoutName,
		Order: cfg.Order,
		New: func(*internal.App, *settings.Settings) any {
			return &deadline{timeout: cfg.Timeout}
		},
	}
}

type deadline struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// timeoutContextKey is used to store the timeout context.
type timeoutContextKey struct{}

func (m *deadline) ProcessRequest(c internal.Context) (internal.Result, error) {
	m.ctx, m.cancel = context.WithTimeout(c.Request().Context(), m.timeout)
	c.Set(timeoutContextKey{}, m.ctx)
	return nil, nil
}

// ProcessException turns an overrun into a TimeoutError. Returning it as an
// error hands it to lower-order processors such as json_errors.
func (m *deadline) ProcessException(c internal.Context, err error) (internal.Result, error) {
	m.stop()
	if m.ctx == nil || !errors.Is(m.ctx.Err(), context.DeadlineExceeded) {
		return nil, nil
	}
	if !errors.Is(err, context.DeadlineExceeded) || IsTimeoutError(err) {
		return nil, nil
	}
	c.LogWarn("request timeout", "timeout", m.timeout.String())
	return nil, &TimeoutError{Duration: m.timeout}
}

func (m *deadline) ProcessResponse(_ internal.Context, resp *internal.Response) (*internal.Response, error) {
	m.stop()
	return resp, nil
}

func (m *deadline) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// GetTimeoutContext retrieves the timeout context if available.
// Falls back to the request context when the middleware is not enabled.
func GetTimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c
}
