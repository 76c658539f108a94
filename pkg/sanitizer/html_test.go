package sanitizer_test

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/relay/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips script injection", `<p>Hello</p><script>alert('xss')</script>`, "Hello"},
		{"strips all HTML tags", `<p>Hello <strong>world</strong></p>`, "Hello world"},
		{"strips event handlers", `<img src="x" onerror="alert('xss')">`, ""},
		{"strips javascript URLs", `<a href="javascript:alert('xss')">click</a>`, "click"},
		{"strips nested tags", `<div><p>nested <span>content</span></p></div>`, "nested content"},
		{"handles plain text", "normal text without HTML", "normal text without HTML"},
		{"handles empty string", "", ""},
		{"strips iframe", `<iframe src="https://evil.com"></iframe>content`, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips script but keeps safe tags", `<p>Hello</p><script>alert('xss')</script>`, "<p>Hello</p>"},
		{"allows basic formatting", `<p>Hello <strong>world</strong></p>`, "<p>Hello <strong>world</strong></p>"},
		{"allows lists", `<ul><li>item 1</li><li>item 2</li></ul>`, "<ul><li>item 1</li><li>item 2</li></ul>"},
		{"allows safe links with nofollow", `<a href="https://example.com">link</a>`, `<a href="https://example.com" rel="nofollow">link</a>`},
		{"strips javascript URLs from links", `<a href="javascript:alert('xss')">click</a>`, "click"},
		{"strips event handlers", `<p onclick="alert('xss')">content</p>`, "<p>content</p>"},
		{"strips div tags", `<div>content</div>`, "content"},
		{"allows line breaks", `line1<br>line2`, `line1<br>line2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.SanitizeHTML(tt.input))
		})
	}
}

func TestSanitizeMarkdownHTML(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<h2>Title</h2>", sanitizer.SanitizeMarkdownHTML("<h2>Title</h2>"))
	assert.Equal(t, "<p>x</p>", sanitizer.SanitizeMarkdownHTML(`<p>x</p><script>alert(1)</script>`))
	assert.Contains(t, sanitizer.SanitizeMarkdownHTML(`<a href="https://example.com">a</a>`), `rel="nofollow"`)
}

func TestSanitizeHTMLCustom(t *testing.T) {
	t.Parallel()

	t.Run("with custom policy allowing img", func(t *testing.T) {
		t.Parallel()

		policy := bluemonday.NewPolicy()
		policy.AllowElements("img")
		policy.AllowAttrs("src", "alt").OnElements("img")

		assert.Equal(t, `<img src="a.png" alt="a">`, sanitizer.SanitizeHTMLCustom(`<img src="a.png" alt="a" onerror="x()">`, policy))
	})

	t.Run("nil policy returns input unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "<b>x</b>", sanitizer.SanitizeHTMLCustom("<b>x</b>", nil))
	})
}
