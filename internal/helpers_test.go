package internal_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
)

func TestTypedParams(t *testing.T) {
	t.Parallel()

	type got struct {
		id      int
		big     int64
		price   float64
		draft   bool
		slug    string
		page    int
		missing int
	}

	var g got
	app, err := internal.New(internal.WithModules(newModule("m", func(r internal.Router) {
		r.GET("/items/{id}/{slug}", func(c internal.Context) (internal.Result, error) {
			g = got{
				id:      internal.Param[int](c, "id"),
				slug:    internal.Param[string](c, "slug"),
				big:     internal.Query[int64](c, "big"),
				price:   internal.Query[float64](c, "price"),
				draft:   internal.Query[bool](c, "draft"),
				page:    internal.QueryDefault(c, "page", 1),
				missing: internal.QueryDefault(c, "bad", 5),
			}
			return nil, nil
		}, internal.Name("item"))
	})))
	require.NoError(t, err)

	serve(app, http.MethodGet, "/items/12/hello?big=9000000000&price=9.5&draft=true&bad=x")
	require.Equal(t, got{id: 12, big: 9000000000, price: 9.5, draft: true, slug: "hello", page: 1, missing: 5}, g)
}

func TestParse(t *testing.T) {
	t.Parallel()

	v, err := internal.Parse[int]("42")
	require.NoError(t, err)
	require.Equal(t, 42, v)

	_, err = internal.Parse[int]("x")
	require.Error(t, err)

	b, err := internal.Parse[bool]("1")
	require.NoError(t, err)
	require.True(t, b)
}
