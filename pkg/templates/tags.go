package templates

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/relay/pkg/sanitizer"
)

// TagFunc transforms a value for output. The result is written unescaped,
// so a tag must return safe HTML.
type TagFunc func(in string) string

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// DefaultTags returns the built-in tag handlers. Publish them on the
// get_template_tag_handlers topic to make them available to templates:
//
//	relay.WithHook(relay.TopicTemplateTagHandlers, func(context.Context, relay.Event) (any, error) {
//	    return templates.DefaultTags(), nil
//	})
func DefaultTags() map[string]any {
	return map[string]any{
		"markdown":  TagFunc(Markdown),
		"sanitize":  TagFunc(sanitizer.SanitizeHTML),
		"striptags": TagFunc(sanitizer.StripHTML),
		"title":     TagFunc(Title),
	}
}

// Markdown renders GitHub-flavored markdown and sanitizes the output.
// Input that fails to render is returned escaped.
func Markdown(in string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(in), &buf); err != nil {
		return templ.EscapeString(in)
	}
	return sanitizer.SanitizeMarkdownHTML(buf.String())
}

// Title converts in to English title case and escapes it.
func Title(in string) string {
	// cases.Caser is stateful, one per call.
	return templ.EscapeString(cases.Title(language.English).String(in))
}

// Tag applies the named tag handler from ctx to in.
// Returns false when the tag is unknown or not a TagFunc.
func Tag(ctx context.Context, name, in string) (string, bool) {
	fn, ok := lookupTag(TagHandlers(ctx), name)
	if !ok {
		return "", false
	}
	return fn(in), true
}

func lookupTag(tags map[string]any, name string) (TagFunc, bool) {
	switch fn := tags[name].(type) {
	case TagFunc:
		return fn, true
	case func(string) string:
		return fn, true
	}
	return nil, false
}
