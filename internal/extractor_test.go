package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/pkg/settings"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	var (
		value string
		found bool
	)
	ex := internal.NewExtractor(
		internal.FromHeader("X-Token"),
		internal.FromBearerToken(),
		internal.FromCookie("token"),
		internal.FromQuery("token"),
		internal.FromParam("token"),
		internal.FromForm("token"),
	)
	app, err := internal.New(internal.WithModules(newModule("m", func(r internal.Router) {
		r.Handle(nil, "/t/{token}", func(c internal.Context) (internal.Result, error) {
			value, found = ex.Extract(c)
			return nil, nil
		}, internal.Name("token"))
		r.Handle(nil, "/t", func(c internal.Context) (internal.Result, error) {
			value, found = ex.Extract(c)
			return nil, nil
		}, internal.Name("bare"))
	})))
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(r *http.Request)
		path  string
		want  string
		found bool
	}{
		{"header wins", func(r *http.Request) {
			r.Header.Set("X-Token", "h")
			r.Header.Set("Authorization", "Bearer b")
		}, "/t?token=q", "h", true},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer b") }, "/t", "b", true},
		{"empty bearer is skipped", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }, "/t?token=q", "q", true},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "c"}) }, "/t", "c", true},
		{"query", func(*http.Request) {}, "/t?token=q", "q", true},
		{"param", func(*http.Request) {}, "/t/p", "p", true},
		{"nothing", func(*http.Request) {}, "/t", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		tt.setup(req)
		app.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, tt.want, value, tt.name)
		require.Equal(t, tt.found, found, tt.name)
	}
}

func TestFromValue(t *testing.T) {
	t.Parallel()

	type key struct{}
	var got string
	app, err := internal.New(
		internal.WithModules(newModule("m", func(r internal.Router) {
			r.GET("/", func(c internal.Context) (internal.Result, error) {
				got, _ = internal.NewExtractor(internal.FromValue(key{}), internal.FromQuery("v")).Extract(c)
				return nil, nil
			}, internal.Name("home"))
		})),
		internal.WithMiddleware(internal.MiddlewareSpec{
			Name: "store",
			New: func(*internal.App, *settings.Settings) any {
				return internal.MiddlewareFuncs{Request: func(c internal.Context) (internal.Result, error) {
					if c.Query("set") != "" {
						c.Set(key{}, c.Query("set"))
					}
					return nil, nil
				}}
			},
		}),
	)
	require.NoError(t, err)

	serve(app, http.MethodGet, "/?set=stored&v=query")
	require.Equal(t, "stored", got)

	serve(app, http.MethodGet, "/?v=query")
	require.Equal(t, "query", got)
}
