package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// Vars are the variables passed to a template.
type Vars = map[string]any

// ComponentFunc builds a component from template variables.
type ComponentFunc func(vars Vars) templ.Component

// Registry maps template names to component builders.
// Registration is expected at startup; Render is safe for concurrent use.
type Registry struct {
	templates map[string]ComponentFunc
	tags      map[string]any
	mu        sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{templates: make(map[string]ComponentFunc)}
}

// Register binds a component builder to a template name, replacing any previous one.
func (r *Registry) Register(name string, fn ComponentFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = fn
	return r
}

// Static registers a template that always renders the given HTML.
// Occurrences of {{key}} are replaced by the escaped string form of vars[key];
// {{tag key}} passes the value through a tag handler instead.
func (r *Registry) Static(name, html string) *Registry {
	return r.Register(name, func(vars Vars) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, interpolate(html, vars, TagHandlers(ctx)))
			return err
		})
	})
}

// Has reports whether a template is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}

// Names returns the registered template names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.templates))
}

// SetTagHandlers stores the tag handlers exposed to components via TagHandlers.
func (r *Registry) SetTagHandlers(tags map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = maps.Clone(tags)
}

// Render renders the named template with vars and returns the output.
func (r *Registry) Render(ctx context.Context, name string, vars map[string]any) (string, error) {
	r.mu.RLock()
	fn, ok := r.templates[name]
	tags := r.tags
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	if tags != nil {
		ctx = context.WithValue(ctx, tagsKey{}, tags)
	}

	var sb strings.Builder
	if err := fn(vars).Render(ctx, &sb); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return sb.String(), nil
}

type tagsKey struct{}

// TagHandlers returns the tag handlers available to the component being rendered.
func TagHandlers(ctx context.Context) map[string]any {
	if tags, ok := ctx.Value(tagsKey{}).(map[string]any); ok {
		return tags
	}
	return nil
}

// Var returns vars[key] as T, or the zero value of T.
func Var[T any](vars Vars, key string) T {
	if v, ok := vars[key].(T); ok {
		return v
	}
	var zero T
	return zero
}

// interpolate replaces {{key}} and {{tag key}} placeholders.
// Unknown keys and unknown tags render empty.
func interpolate(html string, vars Vars, tags map[string]any) string {
	if !strings.Contains(html, "{{") {
		return html
	}
	var b strings.Builder
	for {
		start := strings.Index(html, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(html[start:], "}}")
		if end < 0 {
			break
		}
		b.WriteString(html[:start])
		b.WriteString(placeholder(strings.TrimSpace(html[start+2:start+end]), vars, tags))
		html = html[start+end+2:]
	}
	b.WriteString(html)
	return b.String()
}

func placeholder(expr string, vars Vars, tags map[string]any) string {
	tag, key, hasTag := strings.Cut(expr, " ")
	if !hasTag {
		key = expr
	}
	v, ok := vars[strings.TrimSpace(key)]
	if !ok || v == nil {
		return ""
	}
	if !hasTag {
		return templ.EscapeString(fmt.Sprint(v))
	}
	fn, ok := lookupTag(tags, tag)
	if !ok {
		return ""
	}
	return fn(fmt.Sprint(v))
}
