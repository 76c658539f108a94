package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// CORSName is the settings name of the CORS middleware.
const CORSName = "cors"

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// DefaultCORSConfig provides sensible defaults for CORS.
var DefaultCORSConfig = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	MaxAge:       DefaultCORSMaxAge,
	Order:        200,
}

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins is a static list of allowed origins.
	// Use "*" to allow all origins (not recommended with credentials).
	AllowOrigins []string

	// AllowOriginFunc is a dynamic origin validator.
	// When set, it completely overrides AllowOrigins for that request.
	// Return true if the origin should be allowed.
	AllowOriginFunc func(origin string) bool

	// AllowMethods specifies the allowed HTTP methods.
	AllowMethods []string

	// AllowHeaders specifies the allowed request headers.
	AllowHeaders []string

	// ExposeHeaders specifies headers exposed to the client.
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials (cookies, authorization headers) are allowed.
	// When true, Access-Control-Allow-Origin cannot be "*"; the actual origin is echoed.
	AllowCredentials bool

	// MaxAge specifies how long preflight responses can be cached.
	MaxAge time.Duration

	// Order is the default chain position.
	Order int
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc sets a dynamic origin validator.
// When set, it completely overrides AllowOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods sets the allowed HTTP methods.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders sets the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders sets the headers exposed to the client.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials enables credentials support.
// When enabled, Access-Control-Allow-Origin echoes the actual origin instead of "*".
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithCORSOrder sets the default chain position.
func WithCORSOrder(order int) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.Order = order
	}
}

// WithMaxAge sets the preflight cache duration.
func WithMaxAge(duration time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = duration
	}
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
// Preflight (OPTIONS) requests are answered before the view runs; every other
// response from an allowed origin gets the CORS headers.
//
// Preflight requests only reach the middleware chain when the path has a route
// accepting OPTIONS. Register such routes with Router.OPTIONS or Router.Handle.
func CORS(opts ...CORSOption) internal.MiddlewareSpec {
	cfg := &CORSConfig{
		AllowOrigins: DefaultCORSConfig.AllowOrigins,
		AllowMethods: DefaultCORSConfig.AllowMethods,
		AllowHeaders: DefaultCORSConfig.AllowHeaders,
		MaxAge:       DefaultCORSConfig.MaxAge,
		Order:        DefaultCORSConfig.Order,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	p := &corsPolicy{
		cfg:           cfg,
		allowMethods:  strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:  strings.Join(cfg.AllowHeaders, ", "),
		exposeHeaders: strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:        strconv.Itoa(int(cfg.MaxAge.Seconds())),
		hasWildcard:   slices.Contains(cfg.AllowOrigins, "*"),
	}

	return internal.MiddlewareSpec{
		Name:  CORSName,
		Order: cfg.Order,
		New: func(*internal.App, *settings.Settings) any {
			return &cors{policy: p}
		},
	}
}

// corsPolicy is the precomputed, request-independent part of the config.
type corsPolicy struct {
	cfg           *CORSConfig
	allowMethods  string
	allowHeaders  string
	exposeHeaders string
	maxAge        string
	hasWildcard   bool
}

type cors struct {
	policy *corsPolicy
	origin string
}

func (m *cors) ProcessRequest(c internal.Context) (internal.Result, error) {
	origin := c.Header("Origin")

	// Not a CORS request, or a blocked origin the browser will reject.
	if origin == "" || !isOriginAllowed(origin, m.policy.cfg, m.policy.hasWildcard) {
		return nil, nil
	}
	m.origin = origin

	if c.Request().Method != http.MethodOptions {
		return nil, nil
	}

	resp := internal.NoContent()
	headers := resp.Header()
	headers.Add("Vary", "Access-Control-Request-Method")
	headers.Add("Vary", "Access-Control-Request-Headers")
	headers.Set("Access-Control-Allow-Methods", m.policy.allowMethods)
	headers.Set("Access-Control-Allow-Headers", m.policy.allowHeaders)
	if m.policy.cfg.MaxAge > 0 {
		headers.Set("Access-Control-Max-Age", m.policy.maxAge)
	}
	return resp, nil
}

func (m *cors) ProcessResponse(_ internal.Context, resp *internal.Response) (*internal.Response, error) {
	if m.origin == "" {
		return resp, nil
	}

	headers := resp.Header()
	headers.Add("Vary", "Origin")

	// Credentials or an explicit origin list require echoing the origin.
	if m.policy.cfg.AllowCredentials || !m.policy.hasWildcard {
		headers.Set("Access-Control-Allow-Origin", m.origin)
	} else {
		headers.Set("Access-Control-Allow-Origin", "*")
	}

	if m.policy.cfg.AllowCredentials {
		headers.Set("Access-Control-Allow-Credentials", "true")
	}

	if m.policy.exposeHeaders != "" {
		headers.Set("Access-Control-Expose-Headers", m.policy.exposeHeaders)
	}
	return resp, nil
}

// isOriginAllowed checks if the given origin is allowed based on configuration.
func isOriginAllowed(origin string, cfg *CORSConfig, hasWildcard bool) bool {
	// AllowOriginFunc completely overrides AllowOrigins when set
	if cfg.AllowOriginFunc != nil {
		return cfg.AllowOriginFunc(origin)
	}

	if hasWildcard {
		return true
	}

	return slices.Contains(cfg.AllowOrigins, origin)
}
