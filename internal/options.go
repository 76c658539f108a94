package internal

import (
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/relay/pkg/eventbus"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/settings"
)

// Option configures the application.
type Option func(*App)

// WithModules installs modules. Each module's Routes method is called during New.
func WithModules(m ...Module) Option {
	return func(a *App) {
		a.modules = append(a.modules, m...)
	}
}

// WithMiddleware registers middleware specs.
// Settings decide which of them run and in what order.
func WithMiddleware(specs ...MiddlewareSpec) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, specs...)
	}
}

// WithSettings sets the initial settings. Defaults to settings.Default().
func WithSettings(s *settings.Settings) Option {
	return func(a *App) {
		if s != nil {
			a.settings = s
		}
	}
}

// WithSettingsFile loads settings from the environment and the given YAML file.
// Load errors are reported by New.
//
// Example:
//
//	relay.New(
//	    relay.WithSettingsFile("config/settings.yaml"),
//	)
func WithSettingsFile(path string, opts ...settings.LoadOption) Option {
	return func(a *App) {
		s, err := settings.Load(append([]settings.LoadOption{settings.WithFile(path)}, opts...)...)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("settings: %w", err))
			return
		}
		a.settings = s
	}
}

// WithRenderer sets the template renderer used for Vars results and error pages.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithEventBus shares an existing bus instead of creating one.
func WithEventBus(b *eventbus.Bus) Option {
	return func(a *App) {
		if b != nil {
			a.bus = b
		}
	}
}

// WithHook registers an event handler on the application's bus during New.
//
// Example:
//
//	relay.New(
//	    relay.WithHook(relay.TopicSetLocalEnv, func(ctx context.Context, e eventbus.Event) (any, error) {
//	        c := e.Arg(0).(relay.Context)
//	        c.Set(userKey{}, loadUser(c))
//	        return nil, nil
//	    }),
//	)
func WithHook(topic string, h eventbus.HandlerFunc, opts ...eventbus.RegisterOption) Option {
	return func(a *App) {
		a.hooks = append(a.hooks, hook{topic: topic, handler: h, opts: opts})
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	relay.WithHealthChecks(
//	    relay.WithReadinessCheck("db", pingDB),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			timeout:       defaultHealthTimeout,
			checks:        make(map[string]CheckFunc),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(logger.WithExtractors(extractors...)).With("component", component)
	}
}

// WithCustomLogger sets a custom logger. Its handler is wrapped so records
// logged during a request still carry the endpoint and module.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = slog.New(logger.NewRequestHandler(l.Handler()))
		}
	}
}
