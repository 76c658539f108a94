package relay

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/eventbus"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// Type aliases - public API
type (
	// App is the composition root and the http.Handler dispatching requests.
	App = internal.App

	// Module groups views under a name and declares their routes.
	Module = internal.Module

	// Router is the interface modules use to declare routes.
	Router = internal.Router

	// RouteOption customizes a single route.
	RouteOption = internal.RouteOption

	// ViewFunc handles a matched route.
	ViewFunc = internal.ViewFunc

	// BeginHook runs before each view of a module.
	BeginHook = internal.BeginHook

	// EndHook runs after each view of a module.
	EndHook = internal.EndHook

	// Context provides request data and response helpers.
	Context = internal.Context

	// Result is Vars, Text or *Response.
	Result = internal.Result

	// Vars is rendered with the route's template.
	Vars = internal.Vars

	// Text is written as the HTML body.
	Text = internal.Text

	// Response is a buffered HTTP response.
	Response = internal.Response

	// Renderer renders named templates.
	Renderer = internal.Renderer

	// TagAware renderers receive template tag handlers at startup.
	TagAware = internal.TagAware

	// MiddlewareSpec declares a named, ordered middleware.
	MiddlewareSpec = internal.MiddlewareSpec

	// MiddlewareFactory builds a per-request middleware instance.
	MiddlewareFactory = internal.MiddlewareFactory

	// MiddlewareFuncs adapts plain functions to the processor interfaces.
	MiddlewareFuncs = internal.MiddlewareFuncs

	// RequestProcessor runs before the view.
	RequestProcessor = internal.RequestProcessor

	// ResponseProcessor runs after a response exists.
	ResponseProcessor = internal.ResponseProcessor

	// ExceptionProcessor runs when the view fails.
	ExceptionProcessor = internal.ExceptionProcessor

	// Route is a route table entry.
	Route = internal.Route

	// RouteTable resolves requests and builds URLs.
	RouteTable = internal.RouteTable

	// Match is a resolved route with its path variables.
	Match = internal.Match

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// CheckFunc is a readiness check.
	CheckFunc = internal.CheckFunc

	// Extractor reads a value from the first matching request source.
	Extractor = internal.Extractor

	// ExtractorSource is a single extractor source.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Settings is the application settings snapshot.
	Settings = settings.Settings

	// Event is a fired topic.
	Event = eventbus.Event

	// EventHandler handles a fired topic.
	EventHandler = eventbus.HandlerFunc

	// HTTPError is an error rendered with its status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ApplicationError renders a specific template instead of the view result.
	ApplicationError = internal.ApplicationError

	// RouteNotFoundError reports an unmatched request.
	RouteNotFoundError = internal.RouteNotFoundError

	// ReservedNameError reports a route using a reserved name.
	ReservedNameError = internal.ReservedNameError

	// PanicError wraps a recovered panic.
	PanicError = internal.PanicError
)

// Extension topics fired by the App.
const (
	TopicStartupInstalled     = internal.TopicStartupInstalled
	TopicPrepareDefaultEnv    = internal.TopicPrepareDefaultEnv
	TopicTemplateTagHandlers  = internal.TopicTemplateTagHandlers
	TopicStartup              = internal.TopicStartup
	TopicSetLocalEnv          = internal.TopicSetLocalEnv
	TopicPrepareTemplateEnv   = internal.TopicPrepareTemplateEnv
	TopicBeforeRenderTemplate = internal.TopicBeforeRenderTemplate
	TopicAfterRenderTemplate  = internal.TopicAfterRenderTemplate
)

// Content types used by results.
const (
	ContentTypeHTML = internal.ContentTypeHTML
	ContentTypeJSON = internal.ContentTypeJSON
	ContentTypeText = internal.ContentTypeText
)

// DefaultMiddlewareOrder is used for specs that leave Order at zero.
const DefaultMiddlewareOrder = internal.DefaultMiddlewareOrder

// Constructors

// New builds an application. Build problems are reported together.
//
// Example:
//
//	app, err := relay.New(
//	    relay.WithSettingsFile("settings.yaml"),
//	    relay.WithRenderer(tpl),
//	    relay.WithModules(blog.New(repo)),
//	    relay.WithMiddleware(middlewares.RequestID(), middlewares.AccessLog()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.Run(":8080")
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *App {
	return internal.MustNew(opts...)
}

// App options

// WithModules installs modules.
func WithModules(m ...Module) Option {
	return internal.WithModules(m...)
}

// WithMiddleware registers middleware specs.
// Settings decide which of them run and in what order.
func WithMiddleware(specs ...MiddlewareSpec) Option {
	return internal.WithMiddleware(specs...)
}

// WithSettings sets the initial settings.
func WithSettings(s *Settings) Option {
	return internal.WithSettings(s)
}

// WithSettingsFile loads settings from the environment and a YAML file.
func WithSettingsFile(path string, opts ...settings.LoadOption) Option {
	return internal.WithSettingsFile(path, opts...)
}

// WithRenderer sets the template renderer.
func WithRenderer(r Renderer) Option {
	return internal.WithRenderer(r)
}

// WithEventBus shares an existing event bus.
func WithEventBus(b *eventbus.Bus) Option {
	return internal.WithEventBus(b)
}

// WithHook registers an event handler on the application's bus.
func WithHook(topic string, h EventHandler, opts ...eventbus.RegisterOption) Option {
	return internal.WithHook(topic, h, opts...)
}

// WithHealthChecks enables liveness and readiness endpoints.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Route options

// Name overrides the derived endpoint.
func Name(endpoint string) RouteOption {
	return internal.Name(endpoint)
}

// Template overrides the derived template name.
func Template(name string) RouteOption {
	return internal.Template(name)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithHealthTimeout bounds readiness checks.
func WithHealthTimeout(d time.Duration) HealthOption {
	return internal.WithHealthTimeout(d)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the graceful shutdown timeout.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs before the server accepts connections.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs during graceful shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context; cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// DrainDelay keeps serving while the readiness probe reports 503 after a
// shutdown signal.
func DrainDelay(d time.Duration) RunOption {
	return internal.DrainDelay(d)
}

// WithListener serves on an existing listener.
func WithListener(ln net.Listener) RunOption {
	return internal.WithListener(ln)
}

// Results

// HTML builds a text/html response.
func HTML(status int, body string) *Response {
	return internal.HTML(status, body)
}

// String builds a text/plain response.
func String(status int, body string) *Response {
	return internal.String(status, body)
}

// JSON builds a JSON response.
func JSON(status int, v any) (Result, error) {
	return internal.JSON(status, v)
}

// Redirect builds a redirect response.
func Redirect(status int, url string) *Response {
	return internal.Redirect(status, url)
}

// NoContent builds a 204 response.
func NoContent() *Response {
	return internal.NoContent()
}

// NewResponse creates an empty response.
func NewResponse(status int) *Response {
	return internal.NewResponse(status)
}

// Context helpers

// FromContext returns the relay Context carried by ctx.
func FromContext(ctx context.Context) (Context, bool) {
	return internal.FromContext(ctx)
}

// ContextValue returns a typed request value.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed path variable.
func Param[T internal.Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter.
func Query[T internal.Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter or the default value.
func QueryDefault[T internal.Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Extractors

// NewExtractor creates an Extractor trying sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromCookie reads a request cookie.
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }

// FromParam reads a path variable.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromForm reads a form value.
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// FromValue reads a string stored with Context.Set.
func FromValue(key any) ExtractorSource { return internal.FromValue(key) }

// FromBearerToken reads a Bearer token.
func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// Errors

// Build and dispatch errors.
var (
	ErrDuplicateEndpoint   = internal.ErrDuplicateEndpoint
	ErrDuplicateRoute      = internal.ErrDuplicateRoute
	ErrDuplicateMiddleware = internal.ErrDuplicateMiddleware
	ErrUnknownMiddleware   = internal.ErrUnknownMiddleware
	ErrInvalidPattern      = internal.ErrInvalidPattern
	ErrInvalidModule       = internal.ErrInvalidModule
	ErrNilView             = internal.ErrNilView
	ErrUnnamedView         = internal.ErrUnnamedView
	ErrRouteNotFound       = internal.ErrRouteNotFound
	ErrUnknownEndpoint     = internal.ErrUnknownEndpoint
	ErrMissingURLParam     = internal.ErrMissingURLParam
	ErrNoRenderer          = internal.ErrNoRenderer
	ErrUnsupportedResult   = internal.ErrUnsupportedResult
)

// NewApplicationError asks the dispatcher to render template with vars.
func NewApplicationError(template string, vars Vars) *ApplicationError {
	return internal.NewApplicationError(template, vars)
}

// IsApplicationError reports whether err carries an ApplicationError.
func IsApplicationError(err error) bool {
	return internal.IsApplicationError(err)
}

// IsPanicError reports whether err carries a recovered panic.
func IsPanicError(err error) bool {
	return internal.IsPanicError(err)
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// AsHTTPError extracts an HTTPError from the error chain.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized creates a 401 HTTPError.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden creates a 403 HTTPError.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithTitle sets the error title.
func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }

// WithDetail sets the extended description.
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

// WithErrorCode sets the application error code.
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }

// WithRequestID sets the request tracking ID.
func WithRequestID(id string) HTTPErrorOption { return internal.WithRequestID(id) }

// WithError sets the underlying error.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }
