package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
)

func TestResponse_Send(t *testing.T) {
	t.Parallel()

	t.Run("html", func(t *testing.T) {
		t.Parallel()

		resp := internal.HTML(http.StatusCreated, "<b>hi</b>")
		resp.Header().Set("X-Test", "1")
		resp.SetCookie(&http.Cookie{Name: "sid", Value: "abc"})

		rec := httptest.NewRecorder()
		require.NoError(t, resp.Send(rec))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "<b>hi</b>", rec.Body.String())
		require.Equal(t, internal.ContentTypeHTML, rec.Header().Get("Content-Type"))
		require.Equal(t, "1", rec.Header().Get("X-Test"))
		require.Equal(t, "9", rec.Header().Get("Content-Length"))
		require.Contains(t, rec.Header().Get("Set-Cookie"), "sid=abc")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		res, err := internal.JSON(http.StatusOK, map[string]int{"n": 1})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, res.(*internal.Response).Send(rec))
		require.JSONEq(t, `{"n":1}`, rec.Body.String())
		require.Equal(t, internal.ContentTypeJSON, rec.Header().Get("Content-Type"))

		_, err = internal.JSON(http.StatusOK, make(chan int))
		require.Error(t, err)
	})

	t.Run("redirect", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, internal.Redirect(0, "/login").Send(rec))
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("no content drops body", func(t *testing.T) {
		t.Parallel()

		resp := internal.NoContent()
		_, _ = resp.WriteString("ignored")

		rec := httptest.NewRecorder()
		require.NoError(t, resp.Send(rec))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
	})

	t.Run("body can be replaced", func(t *testing.T) {
		t.Parallel()

		resp := internal.String(http.StatusOK, "old")
		resp.SetBody([]byte("new"))
		require.Equal(t, []byte("new"), resp.Body())
		require.Equal(t, internal.ContentTypeText, resp.ContentType())
	})

	t.Run("zero status sends 200", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, (&internal.Response{}).Send(rec))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
