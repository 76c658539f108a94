package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrymomot/relay/pkg/logger"
)

// Defaults.
const (
	DefaultTemplateSuffix   = ".html"
	DefaultNotFoundTemplate = "404.html"
	DefaultErrorTemplate    = "500.html"
	DefaultLogLevel         = "info"
	DefaultEnvPrefix        = "RELAY_"
)

// Settings is the application configuration.
// Treat a loaded value as read-only; build a new one to change settings at runtime.
type Settings struct {
	// Extra holds every YAML key without a dedicated field, for Get lookups.
	Extra map[string]any `yaml:",inline"`

	Sentry logger.SentryConfig `yaml:"sentry"`

	TemplateSuffix   string `env:"TEMPLATE_SUFFIX" yaml:"template_suffix"`
	NotFoundTemplate string `env:"NOT_FOUND_TEMPLATE" yaml:"not_found_template"`
	ErrorTemplate    string `env:"ERROR_TEMPLATE" yaml:"error_template"`
	LogLevel         string `env:"LOG_LEVEL" yaml:"log_level"`

	// Middlewares enables middleware by name, optionally with an order: "csrf" or "csrf:300".
	Middlewares []string `env:"MIDDLEWARES" envSeparator:"," yaml:"middlewares"`

	// Debug enables diagnostic error pages. Never inferred; must be set explicitly.
	Debug bool `env:"DEBUG" yaml:"debug"`
}

// Default returns settings populated with defaults only.
func Default() *Settings {
	return &Settings{
		TemplateSuffix:   DefaultTemplateSuffix,
		NotFoundTemplate: DefaultNotFoundTemplate,
		ErrorTemplate:    DefaultErrorTemplate,
		LogLevel:         DefaultLogLevel,
		Sentry:           logger.SentryConfig{Environment: "production"},
	}
}

// Get returns a value from Extra by dotted path, e.g. "mail.smtp.host".
func (s *Settings) Get(key string) (any, bool) {
	if s == nil || key == "" {
		return nil, false
	}

	var cur any = s.Extra
	for part := range strings.SplitSeq(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at key formatted as a string, or def when missing.
func (s *Settings) String(key, def string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Int returns the integer at key, or def when missing or not numeric.
func (s *Settings) Int(key string, def int) int {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// Bool returns the boolean at key, or def when missing or not a boolean.
func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// TemplateName appends the configured suffix to base unless it already has one.
func (s *Settings) TemplateName(base string) string {
	suffix := s.TemplateSuffix
	if suffix == "" || strings.HasSuffix(base, suffix) {
		return base
	}
	return base + suffix
}

// MiddlewareEntry is one parsed item of Settings.Middlewares.
type MiddlewareEntry struct {
	Name     string
	Order    int
	HasOrder bool
}

// MiddlewareEntries parses Settings.Middlewares.
func (s *Settings) MiddlewareEntries() ([]MiddlewareEntry, error) {
	entries := make([]MiddlewareEntry, 0, len(s.Middlewares))
	for _, raw := range s.Middlewares {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		name, order, hasOrder := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMiddleware, raw)
		}

		entry := MiddlewareEntry{Name: name}
		if hasOrder {
			n, err := strconv.Atoi(strings.TrimSpace(order))
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidMiddleware, raw, err)
			}
			entry.Order = n
			entry.HasOrder = true
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}
