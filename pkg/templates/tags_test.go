package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/pkg/templates"
)

func TestDefaultTags(t *testing.T) {
	t.Parallel()

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		out := templates.Markdown("# Hi\n\n**bold** <script>alert(1)</script>")
		require.Contains(t, out, "<h1")
		require.Contains(t, out, "<strong>bold</strong>")
		require.NotContains(t, out, "<script>")
	})

	t.Run("title", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, "Hello &amp; World", templates.Title("hello & world"))
	})

	t.Run("static templates apply tags", func(t *testing.T) {
		t.Parallel()

		tpl := templates.New().Static("post.html", "<h1>{{title name}}</h1>{{markdown body}}{{striptags raw}}{{nope body}}")
		tpl.SetTagHandlers(templates.DefaultTags())

		out, err := tpl.Render(context.Background(), "post.html", templates.Vars{
			"name": "first post",
			"body": "*hi*",
			"raw":  "<b>x</b> & y",
		})
		require.NoError(t, err)
		require.Equal(t, "<h1>First Post</h1><p><em>hi</em></p>\nx &amp; y", out)
	})

	t.Run("tags without handlers render empty", func(t *testing.T) {
		t.Parallel()

		out, err := templates.New().Static("a.html", "[{{markdown body}}]").
			Render(context.Background(), "a.html", templates.Vars{"body": "x"})
		require.NoError(t, err)
		require.Equal(t, "[]", out)
	})

	t.Run("Tag looks up handlers on the context", func(t *testing.T) {
		t.Parallel()

		_, ok := templates.Tag(context.Background(), "title", "x")
		require.False(t, ok)
	})
}
