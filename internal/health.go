package internal

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultHealthTimeout = 5 * time.Second

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDraining  = "draining"
)

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// CheckFunc is the standard health check function signature.
type CheckFunc func(ctx context.Context) error

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        map[string]CheckFunc
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithHealthTimeout bounds all readiness checks together.
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if name != "" && fn != nil {
			c.checks[name] = fn
		}
	}
}

type healthResponse struct {
	Checks map[string]healthCheck `json:"checks,omitempty"`
	Status string                 `json:"status"`
}

type healthCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// healthModule exposes liveness and readiness probes as regular routes,
// so they pass through the middleware chain like any other view.
type healthModule struct {
	cfg *healthConfig
}

func newHealthModule(cfg *healthConfig) *healthModule {
	return &healthModule{cfg: cfg}
}

func (m *healthModule) Name() string { return "health" }

func (m *healthModule) Routes(r Router) {
	r.Handle([]string{http.MethodGet, http.MethodHead}, m.cfg.livenessPath, m.live)
	r.Handle([]string{http.MethodGet, http.MethodHead}, m.cfg.readinessPath, m.ready)
}

func (m *healthModule) live(c Context) (Result, error) {
	if wantsJSON(c.Request()) {
		return JSON(http.StatusOK, &healthResponse{Status: statusHealthy})
	}
	return String(http.StatusOK, "OK"), nil
}

func (m *healthModule) ready(c Context) (Result, error) {
	var resp *healthResponse
	if c.App().Draining() {
		resp = &healthResponse{Status: statusDraining}
	} else {
		resp = runChecks(c, m.cfg.checks, m.cfg.timeout, c.Logger())
	}

	status := http.StatusOK
	if resp.Status != statusHealthy {
		status = http.StatusServiceUnavailable
	}

	if wantsJSON(c.Request()) {
		return JSON(status, resp)
	}
	if resp.Status == statusHealthy {
		return String(status, "OK"), nil
	}
	return String(status, "Service Unavailable"), nil
}

// runChecks executes all checks in parallel and returns the aggregated result.
func runChecks(ctx context.Context, checks map[string]CheckFunc, timeout time.Duration, logger *slog.Logger) *healthResponse {
	if len(checks) == 0 {
		return &healthResponse{Status: statusHealthy}
	}
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make(map[string]healthCheck, len(checks))
		hasError bool
	)

	for name, check := range checks {
		wg.Go(func() {
			result := healthCheck{Status: statusHealthy}
			if err := check(ctx); err != nil {
				result.Status = statusUnhealthy
				result.Error = err.Error()
				logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result.Status == statusUnhealthy {
				hasError = true
			}
		})
	}

	wg.Wait()

	status := statusHealthy
	if hasError {
		status = statusUnhealthy
	}

	return &healthResponse{
		Status: status,
		Checks: results,
	}
}

// wantsJSON checks if the client wants JSON response.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
