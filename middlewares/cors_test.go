package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/middlewares"
)

func corsApp(t *testing.T, opts ...middlewares.CORSOption) *internal.App {
	t.Helper()

	app, _ := newTestApp(t, func(r internal.Router) {
		r.Handle([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, "/api", ok, internal.Name("api"))
	}, middlewares.CORS(opts...))
	return app
}

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("default configuration allows all origins", func(t *testing.T) {
		t.Parallel()

		rec := do(corsApp(t), corsRequest(http.MethodGet, "http://example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, []string{"Origin"}, rec.Header().Values("Vary"))
	})

	t.Run("no CORS headers when Origin header is missing", func(t *testing.T) {
		t.Parallel()

		rec := do(corsApp(t), corsRequest(http.MethodGet, ""))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("specific origins list", func(t *testing.T) {
		t.Parallel()

		app := corsApp(t, middlewares.WithAllowOrigins("http://allowed.com", "http://also-allowed.com"))

		rec := do(app, corsRequest(http.MethodGet, "http://allowed.com"))
		require.Equal(t, "http://allowed.com", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = do(app, corsRequest(http.MethodGet, "http://evil.com"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()

		app := corsApp(t,
			middlewares.WithAllowOrigins("http://listed.com"),
			middlewares.WithAllowOriginFunc(func(origin string) bool {
				return strings.HasSuffix(origin, ".example.com")
			}),
		)

		rec := do(app, corsRequest(http.MethodGet, "https://app.example.com"))
		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = do(app, corsRequest(http.MethodGet, "http://listed.com"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()

		app := corsApp(t,
			middlewares.WithAllowCredentials(),
			middlewares.WithExposeHeaders("X-Total", "X-Page"),
		)

		rec := do(app, corsRequest(http.MethodPost, "http://client.com"))
		require.Equal(t, "http://client.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "X-Total, X-Page", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight short-circuits the view", func(t *testing.T) {
		t.Parallel()

		called := false
		app, _ := newTestApp(t, func(r internal.Router) {
			r.Handle([]string{http.MethodGet, http.MethodOptions}, "/api", func(internal.Context) (internal.Result, error) {
				called = true
				return internal.Text("view"), nil
			}, internal.Name("api"))
		}, middlewares.CORS(
			middlewares.WithAllowMethods(http.MethodGet),
			middlewares.WithAllowHeaders("Content-Type"),
			middlewares.WithMaxAge(time.Hour),
		))

		rec := do(app, corsRequest(http.MethodOptions, "http://client.com"))
		require.False(t, called)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		require.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
		require.ElementsMatch(t,
			[]string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"},
			rec.Header().Values("Vary"),
		)
	})

	t.Run("preflight without max age", func(t *testing.T) {
		t.Parallel()

		rec := do(corsApp(t, middlewares.WithMaxAge(0)), corsRequest(http.MethodOptions, "http://client.com"))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("options from blocked origin reaches the view", func(t *testing.T) {
		t.Parallel()

		rec := do(corsApp(t, middlewares.WithAllowOrigins("http://allowed.com")), corsRequest(http.MethodOptions, "http://evil.com"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", rec.Body.String())
	})
}
