package internal

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// reservedNames are injected into views and templates by the framework
// and cannot be used as endpoint function names or path variables.
var reservedNames = map[string]struct{}{
	"settings":    {},
	"request":     {},
	"response":    {},
	"application": {},
	"app":         {},
	"env":         {},
}

// IsReservedName reports whether name is reserved.
func IsReservedName(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// allMethods are the methods a route without explicit methods answers to.
var allMethods = []string{
	http.MethodConnect,
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
	http.MethodTrace,
}

// Route is a single entry of the route table.
type Route struct {
	view         ViewFunc
	module       Module
	Pattern      string
	Endpoint     string
	Module       string
	View         string
	Template     string
	chiPattern   string
	wildcard     string
	viewID       string
	nameOverride string
	Methods      []string
	Vars         []string
	Static       bool
}

// templateBase is the template name without suffix derived from the endpoint.
func (r *Route) templateBase() string {
	if r.Module == "" {
		return r.View
	}
	return r.Module + "/" + r.View
}

// Match is the outcome of a successful route resolution.
type Match struct {
	Route  *Route
	Params map[string]string
}

// RouteTable maps method and path to routes, and endpoints back to URLs.
// It is populated while the App is built and read-only afterwards.
type RouteTable struct {
	mux        *chi.Mux
	byKey      map[string]*Route
	byEndpoint map[string][]*Route
	pool       sync.Pool
	routes     []*Route
	mu         sync.RWMutex
}

// NewRouteTable creates an empty route table.
func NewRouteTable() *RouteTable {
	t := &RouteTable{
		mux:        chi.NewRouter(),
		byKey:      make(map[string]*Route),
		byEndpoint: make(map[string][]*Route),
	}
	t.pool.New = func() any { return chi.NewRouteContext() }
	return t
}

// noop is stored in the chi tree; dispatch never calls it.
var noop = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// Add validates a route, derives its endpoint and stores it.
func (t *RouteTable) Add(r *Route) error {
	if r.view == nil {
		return fmt.Errorf("%w: %s", ErrNilView, r.Pattern)
	}
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, r.Pattern)
	}

	chiPattern, wildcard, err := convertPattern(r.Pattern)
	if err != nil {
		return err
	}
	tokens, err := tokenizePattern(chiPattern)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidPattern, r.Pattern, err)
	}
	r.chiPattern = chiPattern
	r.wildcard = wildcard
	r.Vars = r.Vars[:0]
	for _, tok := range tokens {
		switch {
		case tok.wildcard:
			r.Vars = append(r.Vars, r.wildcardName())
		case tok.param != "":
			r.Vars = append(r.Vars, tok.param)
		}
	}
	r.Static = len(r.Vars) == 0

	r.viewID = symbolName(r.view)
	r.View = shortFuncName(r.viewID)
	if isAnonymous(r.View) {
		// Closure symbols depend on inlining, so they name nothing.
		if r.nameOverride == "" {
			return fmt.Errorf("%w: %s", ErrUnnamedView, r.Pattern)
		}
		r.viewID = ""
	}
	fn := r.View
	switch override := r.nameOverride; {
	case override == "":
		r.Endpoint = qualify(r.Module, r.View)
	case strings.Contains(override, "."):
		r.Endpoint = override
		fn = override[strings.LastIndex(override, ".")+1:]
	default:
		r.Endpoint = qualify(r.Module, override)
		fn = override
	}
	if r.nameOverride != "" {
		r.View = fn
	}
	if fn == "" {
		return fmt.Errorf("%w: empty endpoint for %q", ErrInvalidPattern, r.Pattern)
	}
	if IsReservedName(fn) {
		return &ReservedNameError{Name: fn, Pattern: r.Pattern, Kind: "endpoint"}
	}
	for _, v := range r.Vars {
		if IsReservedName(v) {
			return &ReservedNameError{Name: v, Pattern: r.Pattern, Kind: "variable"}
		}
	}

	if len(r.Methods) == 0 {
		r.Methods = slices.Clone(allMethods)
	}
	for i, m := range r.Methods {
		m = strings.ToUpper(m)
		if !slices.Contains(allMethods, m) {
			return fmt.Errorf("%w: unsupported method %q for %q", ErrInvalidPattern, m, r.Pattern)
		}
		r.Methods[i] = m
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, other := range t.byEndpoint[r.Endpoint] {
		if r.viewID == "" || other.viewID != r.viewID {
			return fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateEndpoint, r.Endpoint, other.viewID, r.viewID)
		}
	}
	for _, m := range r.Methods {
		if _, ok := t.byKey[routeKey(m, chiPattern)]; ok {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, m, r.Pattern)
		}
	}

	if err := t.insert(r); err != nil {
		return err
	}

	for _, m := range r.Methods {
		t.byKey[routeKey(m, chiPattern)] = r
	}
	t.byEndpoint[r.Endpoint] = append(t.byEndpoint[r.Endpoint], r)
	t.routes = append(t.routes, r)
	return nil
}

// insert adds the route to the chi tree, converting chi's panics on
// malformed patterns into errors.
func (t *RouteTable) insert(r *Route) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %q: %v", ErrInvalidPattern, r.Pattern, rec)
		}
	}()
	for _, m := range r.Methods {
		t.mux.Method(m, r.chiPattern, noop)
	}
	return nil
}

// Resolve finds the route for method and path.
// Literal segments take precedence over variable segments.
func (t *RouteTable) Resolve(method, path string) (*Match, error) {
	if path == "" {
		path = "/"
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	rctx := t.pool.Get().(*chi.Context)
	rctx.Reset()
	defer t.pool.Put(rctx)

	pattern := t.mux.Find(rctx, method, path)
	route, ok := t.byKey[routeKey(method, pattern)]
	if pattern == "" || !ok {
		nf := &RouteNotFoundError{Method: method, Path: path}
		nf.Allowed = t.allowed(path, method)
		nf.MethodNotAllowed = len(nf.Allowed) > 0
		return nil, nf
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			key = route.wildcardName()
		}
		params[key] = rctx.URLParams.Values[i]
	}

	return &Match{Route: route, Params: params}, nil
}

func (t *RouteTable) allowed(path, except string) []string {
	var allowed []string
	for _, m := range allMethods {
		if m == except {
			continue
		}
		rctx := chi.NewRouteContext()
		if t.mux.Find(rctx, m, path) != "" {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// Lookup returns the first route registered for an endpoint.
func (t *RouteTable) Lookup(endpoint string) (*Route, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	routes := t.byEndpoint[endpoint]
	if len(routes) == 0 {
		return nil, false
	}
	return routes[0], true
}

// URLFor builds the path of an endpoint. Params not consumed by path
// variables are appended as a sorted query string.
func (t *RouteTable) URLFor(endpoint string, params map[string]string) (string, error) {
	route, ok := t.Lookup(endpoint)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	tokens, err := tokenizePattern(route.chiPattern)
	if err != nil {
		return "", err
	}

	used := make(map[string]struct{}, len(tokens))
	var b strings.Builder
	for _, tok := range tokens {
		switch {
		case tok.wildcard:
			name := route.wildcardName()
			v, ok := params[name]
			if !ok {
				return "", fmt.Errorf("%w: %s for %s", ErrMissingURLParam, name, endpoint)
			}
			used[name] = struct{}{}
			b.WriteString(escapeWildcard(v))
		case tok.param != "":
			v, ok := params[tok.param]
			if !ok {
				return "", fmt.Errorf("%w: %s for %s", ErrMissingURLParam, tok.param, endpoint)
			}
			used[tok.param] = struct{}{}
			b.WriteString(url.PathEscape(v))
		default:
			b.WriteString(tok.literal)
		}
	}

	query := url.Values{}
	for k, v := range params {
		if _, ok := used[k]; !ok {
			query.Set(k, v)
		}
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String(), nil
}

// Routes returns the routes in registration order.
func (t *RouteTable) Routes() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.routes)
}

func (r *Route) wildcardName() string {
	if r.wildcard != "" {
		return r.wildcard
	}
	return "*"
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

func qualify(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}

func escapeWildcard(v string) string {
	segs := strings.Split(v, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// bracketConverters maps bracket converter names to chi param regexps.
var bracketConverters = map[string]string{
	"":       "",
	"string": "",
	"int":    "[0-9]+",
	"float":  `[0-9]+\.[0-9]+`,
	"uuid":   "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
}

// convertPattern rewrites bracket variables to chi syntax.
// A <path:name> variable becomes chi's trailing wildcard and name is returned.
func convertPattern(pattern string) (string, string, error) {
	if !strings.Contains(pattern, "<") {
		return pattern, "", nil
	}

	var (
		b        strings.Builder
		wildcard string
	)
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '<' {
			b.WriteByte(pattern[i])
			continue
		}
		end := strings.IndexByte(pattern[i:], '>')
		if end < 0 {
			return "", "", fmt.Errorf("%w: unclosed '<' in %q", ErrInvalidPattern, pattern)
		}
		body := pattern[i+1 : i+end]
		i += end

		conv, name := "", body
		if k := strings.IndexByte(body, ':'); k >= 0 {
			conv, name = body[:k], body[k+1:]
		}
		if name == "" {
			return "", "", fmt.Errorf("%w: empty variable in %q", ErrInvalidPattern, pattern)
		}

		if conv == "path" {
			if i != len(pattern)-1 {
				return "", "", fmt.Errorf("%w: <path:%s> must end %q", ErrInvalidPattern, name, pattern)
			}
			wildcard = name
			b.WriteByte('*')
			continue
		}

		re, ok := bracketConverters[conv]
		if !ok {
			return "", "", fmt.Errorf("%w: unknown converter %q in %q", ErrInvalidPattern, conv, pattern)
		}
		b.WriteByte('{')
		b.WriteString(name)
		if re != "" {
			b.WriteByte(':')
			b.WriteString(re)
		}
		b.WriteByte('}')
	}
	return b.String(), wildcard, nil
}

type patternToken struct {
	literal  string
	param    string
	wildcard bool
}

var (
	errUnclosedParam = errors.New("unclosed '{'")
	errEmptyParam    = errors.New("empty parameter name")
	errWildcardLast  = errors.New("wildcard '*' must be the last character")
)

// tokenizePattern splits a chi pattern into literals, params and a trailing wildcard.
func tokenizePattern(p string) ([]patternToken, error) {
	var (
		toks []patternToken
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, patternToken{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '{':
			depth, j := 1, i+1
			for ; j < len(p) && depth > 0; j++ {
				switch p[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
			}
			if depth != 0 {
				return nil, errUnclosedParam
			}
			body := p[i+1 : j-1]
			name := body
			if k := strings.IndexByte(body, ':'); k >= 0 {
				name = body[:k]
			}
			if name == "" {
				return nil, errEmptyParam
			}
			flush()
			toks = append(toks, patternToken{param: name})
			i = j - 1
		case '*':
			if i != len(p)-1 {
				return nil, errWildcardLast
			}
			flush()
			toks = append(toks, patternToken{wildcard: true})
		default:
			lit.WriteByte(p[i])
		}
	}
	flush()
	return toks, nil
}

// symbolName returns the full symbol name of a function value.
func symbolName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return ""
}

// isAnonymous reports whether a short symbol names a function literal:
// "func1" or, for inlined closures, a bare sequence number.
func isAnonymous(name string) bool {
	name = strings.TrimPrefix(name, "func")
	if name == "" {
		return true
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// shortFuncName reduces a symbol like "example.com/blog.(*Module).show-fm" to "show".
func shortFuncName(symbol string) string {
	name := strings.TrimSuffix(symbol, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
