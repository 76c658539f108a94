package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
)

type testModule struct {
	routes func(r internal.Router)
}

func (m testModule) Name() string             { return "test" }
func (m testModule) Routes(r internal.Router) { m.routes(r) }

// newTestApp builds an app with a single module and the given middlewares.
// Logs are captured in the returned buffer as JSON lines.
func newTestApp(t *testing.T, routes func(r internal.Router), specs ...internal.MiddlewareSpec) (*internal.App, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app, err := internal.New(
		internal.WithCustomLogger(log),
		internal.WithModules(testModule{routes: routes}),
		internal.WithMiddleware(specs...),
	)
	require.NoError(t, err)
	return app, &buf
}

func ok(c internal.Context) (internal.Result, error) {
	return internal.Text("ok"), nil
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}
