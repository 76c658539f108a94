package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// AccessLogName is the settings name of the access log middleware.
const AccessLogName = "access_log"

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	Level     slog.Level
	SkipPaths []string
	Order     int
}

// AccessLogOption configures AccessLogConfig.
type AccessLogOption func(*AccessLogConfig)

// WithAccessLogLevel sets the level successful requests are logged at.
// Responses with status 500 and above are always logged as errors.
func WithAccessLogLevel(level slog.Level) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Level = level
	}
}

// WithAccessLogSkipPaths excludes exact paths, such as health probes.
func WithAccessLogSkipPaths(paths ...string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.SkipPaths = paths
	}
}

// WithAccessLogOrder sets the default chain position.
func WithAccessLogOrder(order int) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Order = order
	}
}

// AccessLog returns middleware that logs one line per request reaching the
// middleware chain. With the lowest order it sees the final response of every
// other middleware, and the final error when no processor handled one.
// Unmatched routes skip the chain and are not logged here.
func AccessLog(opts ...AccessLogOption) internal.MiddlewareSpec {
	cfg := &AccessLogConfig{
		Level: slog.LevelInfo,
		Order: 10,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return internal.MiddlewareSpec{
		Name:  AccessLogName,
		Order: cfg.Order,
		New: func(*internal.App, *settings.Settings) any {
			return &accessLog{cfg: cfg, skip: skip, start: time.Now()}
		},
	}
}

type accessLog struct {
	start  time.Time
	cfg    *AccessLogConfig
	skip   map[string]struct{}
	logged bool
}

func (m *accessLog) ProcessResponse(c internal.Context, resp *internal.Response) (*internal.Response, error) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	m.log(c, status, len(resp.Body()))
	return resp, nil
}

// ProcessException records errors nobody handled before this middleware.
// The dispatcher escalates them without calling ProcessResponse.
func (m *accessLog) ProcessException(c internal.Context, err error) (internal.Result, error) {
	status := http.StatusInternalServerError
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	m.log(c, status, 0)
	return nil, nil
}

func (m *accessLog) log(c internal.Context, status, size int) {
	r := c.Request()
	if _, ok := m.skip[r.URL.Path]; ok || m.logged {
		return
	}
	m.logged = true

	level := m.cfg.Level
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	c.Logger().Log(c, level, "request completed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Int("bytes", size),
		slog.Duration("duration", time.Since(m.start)),
	)
}
