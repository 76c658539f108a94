package middlewares_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
	"github.com/dmitrymomot/relay/middlewares"
)

func jsonRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) middlewares.ErrorBody {
	t.Helper()

	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var body middlewares.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONErrors(t *testing.T) {
	t.Parallel()

	routes := func(r internal.Router) {
		r.GET("/forbidden", func(c internal.Context) (internal.Result, error) {
			return nil, c.Error(http.StatusForbidden, "not yours",
				internal.WithErrorCode("E_OWNER"),
				internal.WithDetail("ask the owner"),
			)
		}, internal.Name("forbidden"))
		r.GET("/boom", func(internal.Context) (internal.Result, error) {
			return nil, errors.New("database password is hunter2")
		}, internal.Name("boom"))
		r.GET("/panic", func(internal.Context) (internal.Result, error) {
			panic("secret panic value")
		}, internal.Name("panic"))
		r.GET("/timeout", func(internal.Context) (internal.Result, error) {
			return nil, &middlewares.TimeoutError{}
		}, internal.Name("timeout"))
		r.GET("/page", func(internal.Context) (internal.Result, error) {
			return nil, internal.NewApplicationError("page.html", nil)
		}, internal.Name("page"))
	}

	t.Run("http error fields", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, routes, middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "rid" }),
		), middlewares.JSONErrors())

		rec := do(app, jsonRequest("/forbidden"))
		require.Equal(t, http.StatusForbidden, rec.Code)

		body := decodeErrorBody(t, rec)
		require.Equal(t, middlewares.ErrorBody{
			Error:     "Forbidden",
			Message:   "not yours",
			Code:      "E_OWNER",
			Detail:    "ask the owner",
			RequestID: "rid",
			Status:    http.StatusForbidden,
		}, body)
		require.Equal(t, "rid", rec.Header().Get("X-Request-ID"))
	})

	t.Run("plain errors are hidden", func(t *testing.T) {
		t.Parallel()

		app, buf := newTestApp(t, routes, middlewares.JSONErrors())

		rec := do(app, jsonRequest("/boom"))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "hunter2")

		body := decodeErrorBody(t, rec)
		require.Equal(t, "Internal Server Error", body.Message)

		lines := logLines(t, buf, "request failed")
		require.Len(t, lines, 1)
		require.Contains(t, lines[0]["error"], "hunter2")
	})

	t.Run("panics log their stack", func(t *testing.T) {
		t.Parallel()

		app, buf := newTestApp(t, routes, middlewares.JSONErrors(middlewares.WithStackSize(64)))

		rec := do(app, jsonRequest("/panic"))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "secret panic value")

		lines := logLines(t, buf, "request failed")
		require.Len(t, lines, 1)
		stack, ok := lines[0]["stack"].(string)
		require.True(t, ok)
		require.NotEmpty(t, stack)
		require.LessOrEqual(t, len(stack), 64)
	})

	t.Run("stack can be disabled", func(t *testing.T) {
		t.Parallel()

		app, buf := newTestApp(t, routes, middlewares.JSONErrors(middlewares.WithDisablePrintStack()))

		do(app, jsonRequest("/panic"))

		lines := logLines(t, buf, "request failed")
		require.Len(t, lines, 1)
		require.NotContains(t, lines[0], "stack")
	})

	t.Run("status from error", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, routes, middlewares.JSONErrors())

		rec := do(app, jsonRequest("/timeout"))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "Service Unavailable", decodeErrorBody(t, rec).Error)
	})

	t.Run("html requests keep the error template", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t, routes, middlewares.JSONErrors())

		rec := do(app, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.NotContains(t, rec.Header().Get("Content-Type"), "json")
	})
}
