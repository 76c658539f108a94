package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/eventbus"
	"github.com/dmitrymomot/relay/pkg/settings"
	"github.com/dmitrymomot/relay/pkg/templates"
)

type module struct {
	routes func(r internal.Router)
	name   string
}

func (m module) Name() string             { return m.name }
func (m module) Routes(r internal.Router) { m.routes(r) }

func newModule(name string, routes func(r internal.Router)) internal.Module {
	return module{name: name, routes: routes}
}

func text(s string) internal.ViewFunc {
	return func(internal.Context) (internal.Result, error) {
		return internal.Text(s), nil
	}
}

func serve(app *internal.App, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

// blog is a module whose views are methods, so endpoints derive from method names.
type blog struct{}

func (b *blog) Name() string { return "blog" }

func (b *blog) Routes(r internal.Router) {
	r.GET("/posts", b.index)
	r.GET("/posts/<int:id>", b.show)
}

func (b *blog) index(c internal.Context) (internal.Result, error) {
	return internal.Vars{"title": "All posts"}, nil
}

func (b *blog) show(c internal.Context) (internal.Result, error) {
	return internal.Vars{"id": internal.Param[int](c, "id")}, nil
}

func blogTemplates() *templates.Registry {
	return templates.New().
		Static("blog/index.html", "<h1>{{title}}</h1>").
		Static("blog/show.html", "<p>post {{id}}</p>").
		Static("404.html", "not found: {{path}}").
		Static("500.html", "error {{status}}: {{message}}")
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		app, err := internal.New()
		require.NoError(t, err)
		require.NotNil(t, app.Bus())
		require.NotNil(t, app.Logger())
		require.NotNil(t, app.Settings())
		require.Nil(t, app.Renderer())
		require.Empty(t, app.Routes().Routes())
		require.Empty(t, app.Middlewares())
	})

	t.Run("derives endpoints from view methods", func(t *testing.T) {
		t.Parallel()

		app, err := internal.New(internal.WithModules(&blog{}))
		require.NoError(t, err)

		routes := app.Routes().Routes()
		require.Len(t, routes, 2)
		require.Equal(t, "blog.index", routes[0].Endpoint)
		require.Equal(t, "blog.show", routes[1].Endpoint)
		require.Equal(t, "blog", routes[1].Module)
		require.Equal(t, "show", routes[1].View)
		require.Equal(t, []string{"id"}, routes[1].Vars)
		require.True(t, routes[0].Static)
		require.False(t, routes[1].Static)
	})

	t.Run("reports all build errors together", func(t *testing.T) {
		t.Parallel()

		_, err := internal.New(
			internal.WithModules(newModule("bad", func(r internal.Router) {
				r.GET("/x/{request}", text("x"), internal.Name("x"))
				r.GET("/y", text("y"), internal.Name("settings"))
			})),
			internal.WithMiddleware(internal.MiddlewareSpec{Name: "a"}, internal.MiddlewareSpec{Name: "a"}),
		)
		require.Error(t, err)
		require.ErrorIs(t, err, internal.ErrDuplicateMiddleware)

		var reserved *internal.ReservedNameError
		require.ErrorAs(t, err, &reserved)
	})

	t.Run("module without name", func(t *testing.T) {
		t.Parallel()

		_, err := internal.New(internal.WithModules(newModule("", func(internal.Router) {})))
		require.ErrorIs(t, err, internal.ErrInvalidModule)
	})

	t.Run("settings file errors are reported", func(t *testing.T) {
		t.Parallel()

		_, err := internal.New(internal.WithSettingsFile("/does/not/exist.yaml",
			settings.WithEnvironment(map[string]string{}),
		))
		require.ErrorIs(t, err, settings.ErrReadingFile)
	})

	t.Run("MustNew panics on error", func(t *testing.T) {
		t.Parallel()

		require.Panics(t, func() {
			internal.MustNew(internal.WithMiddleware(internal.MiddlewareSpec{Name: "a"}, internal.MiddlewareSpec{Name: "a"}))
		})
	})
}

func TestNew_StartupTopics(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	var order []string
	record := func(topic string) eventbus.HandlerFunc {
		return func(_ context.Context, e eventbus.Event) (any, error) {
			order = append(order, topic)
			return nil, nil
		}
	}

	for _, topic := range []string{
		internal.TopicStartup,
		internal.TopicStartupInstalled,
	} {
		bus.Register(topic, record(topic))
	}
	bus.Register(internal.TopicPrepareDefaultEnv, func(_ context.Context, e eventbus.Event) (any, error) {
		order = append(order, internal.TopicPrepareDefaultEnv)
		e.Arg(0).(internal.Vars)["site"] = "relay"
		return nil, nil
	})
	bus.Register(internal.TopicTemplateTagHandlers, func(context.Context, eventbus.Event) (any, error) {
		order = append(order, internal.TopicTemplateTagHandlers)
		return map[string]any{"shout": "!"}, nil
	})

	var sender any
	bus.Register(internal.TopicStartup, func(_ context.Context, e eventbus.Event) (any, error) {
		sender = e.Sender
		return nil, nil
	})

	tpl := templates.New()
	app, err := internal.New(internal.WithEventBus(bus), internal.WithRenderer(tpl))
	require.NoError(t, err)

	require.Equal(t, []string{
		internal.TopicStartupInstalled,
		internal.TopicPrepareDefaultEnv,
		internal.TopicTemplateTagHandlers,
		internal.TopicStartup,
	}, order)
	require.Same(t, app, sender)
	require.Equal(t, "relay", app.DefaultEnv()["site"])
	require.Same(t, bus, app.Bus())
}

func TestNew_StartupError(t *testing.T) {
	t.Parallel()

	_, err := internal.New(internal.WithHook(internal.TopicStartup, func(context.Context, eventbus.Event) (any, error) {
		return nil, http.ErrServerClosed
	}))
	require.ErrorIs(t, err, http.ErrServerClosed)

	_, err = internal.New(internal.WithHook("", func(context.Context, eventbus.Event) (any, error) {
		return nil, nil
	}))
	require.ErrorIs(t, err, eventbus.ErrEmptyTopic)
}

func TestApp_URLFor(t *testing.T) {
	t.Parallel()

	app, err := internal.New(internal.WithModules(&blog{}, newModule("files", func(r internal.Router) {
		r.GET("/files/<path:rest>", text("file"), internal.Name("serve"))
	})))
	require.NoError(t, err)

	u, err := app.URLFor("blog.show", map[string]string{"id": "7", "page": "2"})
	require.NoError(t, err)
	require.Equal(t, "/posts/7?page=2", u)

	u, err = app.URLFor("blog.index", nil)
	require.NoError(t, err)
	require.Equal(t, "/posts", u)

	u, err = app.URLFor("files.serve", map[string]string{"rest": "a b/c.txt"})
	require.NoError(t, err)
	require.Equal(t, "/files/a%20b/c.txt", u)

	_, err = app.URLFor("blog.show", nil)
	require.ErrorIs(t, err, internal.ErrMissingURLParam)

	_, err = app.URLFor("blog.missing", nil)
	require.ErrorIs(t, err, internal.ErrUnknownEndpoint)
}

func TestApp_UpdateSettings(t *testing.T) {
	t.Parallel()

	var log []string
	app, err := internal.New(
		internal.WithModules(newModule("m", func(r internal.Router) {
			r.GET("/", text("ok"), internal.Name("home"))
		})),
		internal.WithMiddleware(
			recorder("first", 100, &log, false),
			recorder("second", 200, &log, false),
		),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, app.Middlewares())

	s := settings.Default()
	s.Middlewares = []string{"second", "first:300"}
	require.NoError(t, app.UpdateSettings(s))
	require.Same(t, s, app.Settings())
	require.Equal(t, []string{"second", "first"}, app.Middlewares())

	serve(app, http.MethodGet, "/")
	require.Equal(t, []string{"second.request", "first.request", "first.response", "second.response"}, log)

	bad := settings.Default()
	bad.Middlewares = []string{"missing"}
	require.ErrorIs(t, app.UpdateSettings(bad), internal.ErrUnknownMiddleware)
	require.Same(t, s, app.Settings())

	require.Error(t, app.UpdateSettings(nil))
}

func TestApp_UnknownMiddlewareInSettings(t *testing.T) {
	t.Parallel()

	s := settings.Default()
	s.Middlewares = []string{"nope"}
	_, err := internal.New(internal.WithSettings(s))
	require.ErrorIs(t, err, internal.ErrUnknownMiddleware)
}

func TestApp_ZeroOrderOverride(t *testing.T) {
	t.Parallel()

	var log []string
	s := settings.Default()
	s.Middlewares = []string{"late", "first:0"}
	app, err := internal.New(
		internal.WithSettings(s),
		internal.WithModules(newModule("m", func(r internal.Router) {
			r.GET("/", text("ok"), internal.Name("home"))
		})),
		internal.WithMiddleware(
			recorder("first", 300, &log, false),
			recorder("late", 0, &log, false),
		),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "late"}, app.Middlewares())

	serve(app, http.MethodGet, "/")
	require.Equal(t, []string{"first.request", "late.request", "late.response", "first.response"}, log)
}
