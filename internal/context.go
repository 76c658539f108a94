package internal

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// Context provides request data and response helpers to views, module hooks
// and middlewares. It embeds context.Context and is only valid while the
// request is being dispatched.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the current response. Views may set headers and
	// cookies on it and return a nil Result to send it as is.
	Response() *Response

	// App returns the application handling the request.
	App() *App

	// Settings returns the settings snapshot captured for this request.
	Settings() *settings.Settings

	// Endpoint returns the matched endpoint, empty when no route matched.
	Endpoint() string

	// Module returns the name of the module owning the matched route.
	Module() string

	// Route returns the matched route, nil when no route matched.
	Route() *Route

	// Param returns a path variable.
	Param(name string) string

	// Params returns a copy of all path variables.
	Params() map[string]string

	// Query returns a query string parameter.
	Query(name string) string

	// QueryDefault returns a query parameter or the default value.
	QueryDefault(name, defaultValue string) string

	// Form returns a form value (POST body or query).
	Form(name string) string

	// Header returns a request header.
	Header(name string) string

	// SetHeader sets a header on the current response.
	SetHeader(name, value string)

	// Cookie returns the value of a request cookie.
	Cookie(name string) (string, error)

	// SetCookie adds a cookie to the current response.
	SetCookie(cookie *http.Cookie)

	// SetStatus sets the status of the current response.
	SetStatus(code int)

	// Template returns the template name a Vars result renders with.
	Template() string

	// SetTemplate overrides the template for a Vars result.
	SetTemplate(name string)

	// Render renders a template through the application's renderer
	// with template events fired.
	Render(name string, vars Vars) (string, error)

	// URLFor builds the URL of an endpoint.
	URLFor(endpoint string, params map[string]string) (string, error)

	// Error creates an HTTPError that renders the error template with code.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Exception returns the error currently being handled, if any.
	Exception() error

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	// LogDebug logs a debug message with context.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with context.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with context.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with context.
	LogError(msg string, attrs ...any)
}

// requestContext implements Context. Instances are pooled by the App and
// reset on release.
type requestContext struct {
	request   *http.Request
	response  *Response
	app       *App
	state     *appState
	route     *Route
	params    map[string]string
	logger    *slog.Logger
	exception error
	template  string
}

func (c *requestContext) reset() {
	*c = requestContext{}
}

func (c *requestContext) ctx() context.Context {
	if c.request == nil {
		return context.Background()
	}
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.ctx().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.ctx().Done()
}

func (c *requestContext) Err() error {
	return c.ctx().Err()
}

func (c *requestContext) Value(key any) any {
	if key == contextKey || key == logger.RouteKey {
		return Context(c)
	}
	return c.ctx().Value(key)
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() *Response {
	return c.response
}

func (c *requestContext) App() *App {
	return c.app
}

func (c *requestContext) Settings() *settings.Settings {
	if c.state == nil {
		return nil
	}
	return c.state.settings
}

func (c *requestContext) Endpoint() string {
	if c.route == nil {
		return ""
	}
	return c.route.Endpoint
}

func (c *requestContext) Module() string {
	if c.route == nil {
		return ""
	}
	return c.route.Module
}

func (c *requestContext) Route() *Route {
	return c.route
}

func (c *requestContext) Param(name string) string {
	return c.params[name]
}

func (c *requestContext) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Cookie(name string) (string, error) {
	ck, err := c.request.Cookie(name)
	if err != nil {
		return "", err
	}
	return ck.Value, nil
}

func (c *requestContext) SetCookie(cookie *http.Cookie) {
	c.response.SetCookie(cookie)
}

func (c *requestContext) SetStatus(code int) {
	c.response.Status = code
}

func (c *requestContext) Template() string {
	if c.template != "" {
		return c.template
	}
	if c.route == nil {
		return ""
	}
	if c.route.Template != "" {
		return c.route.Template
	}
	return c.Settings().TemplateName(c.route.templateBase())
}

func (c *requestContext) SetTemplate(name string) {
	c.template = name
}

func (c *requestContext) Render(name string, vars Vars) (string, error) {
	return c.app.render(c, name, vars)
}

func (c *requestContext) URLFor(endpoint string, params map[string]string) (string, error) {
	// Relative endpoints resolve inside the current module.
	if !strings.Contains(endpoint, ".") && c.route != nil {
		endpoint = qualify(c.route.Module, endpoint)
	}
	return c.app.routes.URLFor(endpoint, params)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Exception() error {
	return c.exception
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c, msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c, msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c, msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c, msg, attrs...)
}

type ctxKey struct{}

var contextKey = ctxKey{}

// FromContext returns the relay Context carried by ctx, if any.
// Handlers that only receive a context.Context (event handlers, renderers)
// use it to reach the request.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(contextKey).(Context)
	return c, ok
}
