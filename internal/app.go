package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/relay/pkg/eventbus"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// appState is the per-request snapshot: settings and the middleware chain
// built from them always travel together.
type appState struct {
	settings *settings.Settings
	chain    []MiddlewareSpec
}

// App is the composition root. It owns the event bus, the route table,
// the middleware specs and the template renderer, and dispatches requests
// as an http.Handler.
type App struct {
	bus          *eventbus.Bus
	routes       *RouteTable
	renderer     Renderer
	logger       *slog.Logger
	settings     *settings.Settings
	healthConfig *healthConfig
	defaultEnv   Vars
	state        atomic.Pointer[appState]
	draining     atomic.Bool
	pool         sync.Pool
	middlewares  []MiddlewareSpec
	modules      []Module
	hooks        []hook
	errs         []error
}

// hook is an event handler registered through WithHook.
type hook struct {
	handler eventbus.HandlerFunc
	topic   string
	opts    []eventbus.RegisterOption
}

// New builds an application: it installs modules, builds the route table and
// the middleware chain, then fires the startup topics.
// Build problems (reserved names, duplicate endpoints, unknown middlewares)
// are reported together.
//
// Example:
//
//	app, err := relay.New(
//	    relay.WithSettings(cfg),
//	    relay.WithModules(blog.New(repo)),
//	    relay.WithMiddleware(middlewares.RequestID(), middlewares.AccessLog()),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		routes: NewRouteTable(),
		logger: logger.NewNope(), // Default: noop logger (before options)
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.settings == nil {
		a.settings = settings.Default()
	}
	if a.bus == nil {
		a.bus = eventbus.New(eventbus.WithLogger(a.logger))
	}
	a.pool.New = func() any { return new(requestContext) }

	errs := a.errs

	for _, h := range a.hooks {
		if _, err := a.bus.TryRegister(h.topic, h.handler, h.opts...); err != nil {
			errs = append(errs, fmt.Errorf("hook %q: %w", h.topic, err))
		}
	}

	seen := make(map[string]struct{}, len(a.middlewares))
	for _, spec := range a.middlewares {
		if _, dup := seen[spec.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateMiddleware, spec.Name))
		}
		seen[spec.Name] = struct{}{}
	}

	modules := a.modules
	if a.healthConfig != nil {
		modules = append(modules, newHealthModule(a.healthConfig))
	}
	for _, m := range modules {
		if m == nil || m.Name() == "" {
			errs = append(errs, fmt.Errorf("%w: module without a name", ErrInvalidModule))
			continue
		}
		m.Routes(&routerAdapter{table: a.routes, module: m, errs: &errs})
	}

	chain, err := buildChain(a.middlewares, a.settings)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	a.state.Store(&appState{settings: a.settings, chain: chain})

	if err := a.startup(context.Background()); err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}

	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Bus returns the application's event bus.
func (a *App) Bus() *eventbus.Bus {
	return a.bus
}

// Routes returns the route table.
func (a *App) Routes() *RouteTable {
	return a.routes
}

// Settings returns the current settings snapshot.
func (a *App) Settings() *settings.Settings {
	return a.state.Load().settings
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Renderer returns the template renderer, nil if none is configured.
func (a *App) Renderer() Renderer {
	return a.renderer
}

// DefaultEnv returns the default template variables built at startup.
func (a *App) DefaultEnv() Vars {
	return a.defaultEnv
}

// Middlewares returns the names of the active middlewares in request order.
func (a *App) Middlewares() []string {
	chain := a.state.Load().chain
	names := make([]string, len(chain))
	for i, spec := range chain {
		names[i] = spec.Name
	}
	return names
}

// URLFor builds the URL of an endpoint ("module.view").
func (a *App) URLFor(endpoint string, params map[string]string) (string, error) {
	return a.routes.URLFor(endpoint, params)
}

// UpdateSettings swaps the settings and rebuilds the middleware chain.
// Requests already in flight keep the snapshot they started with.
func (a *App) UpdateSettings(s *settings.Settings) error {
	if s == nil {
		return errors.New("nil settings")
	}
	chain, err := buildChain(a.middlewares, s)
	if err != nil {
		return err
	}
	a.state.Store(&appState{settings: s, chain: chain})
	return nil
}
