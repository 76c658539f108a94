package internal

import (
	"net/http"
	"strings"
)

// Router is the interface modules use to declare routes.
// Patterns accept chi syntax ({id}, {id:[0-9]+}, trailing *) and
// bracket syntax (<id>, <int:id>, <path:rest>).
type Router interface {
	// GET registers a view for GET requests.
	GET(pattern string, v ViewFunc, opts ...RouteOption)

	// POST registers a view for POST requests.
	POST(pattern string, v ViewFunc, opts ...RouteOption)

	// PUT registers a view for PUT requests.
	PUT(pattern string, v ViewFunc, opts ...RouteOption)

	// PATCH registers a view for PATCH requests.
	PATCH(pattern string, v ViewFunc, opts ...RouteOption)

	// DELETE registers a view for DELETE requests.
	DELETE(pattern string, v ViewFunc, opts ...RouteOption)

	// HEAD registers a view for HEAD requests.
	HEAD(pattern string, v ViewFunc, opts ...RouteOption)

	// OPTIONS registers a view for OPTIONS requests.
	OPTIONS(pattern string, v ViewFunc, opts ...RouteOption)

	// Handle registers a view for the given methods.
	// No methods means every method.
	Handle(methods []string, pattern string, v ViewFunc, opts ...RouteOption)

	// Route creates a route group with a pattern prefix.
	Route(prefix string, fn func(r Router))
}

// RouteOption customizes a single route.
type RouteOption func(*Route)

// Name overrides the derived endpoint.
// A name without a dot is prefixed with the module name.
// Function literals have no stable name and always need one.
func Name(endpoint string) RouteOption {
	return func(r *Route) {
		r.nameOverride = endpoint
	}
}

// Template overrides the derived template name for Vars results.
func Template(name string) RouteOption {
	return func(r *Route) {
		r.Template = name
	}
}

// routerAdapter collects a module's routes into the route table.
// Errors are accumulated and reported by New.
type routerAdapter struct {
	table  *RouteTable
	module Module
	prefix string
	errs   *[]error
}

func (r *routerAdapter) GET(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodGet}, pattern, v, opts)
}

func (r *routerAdapter) POST(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodPost}, pattern, v, opts)
}

func (r *routerAdapter) PUT(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodPut}, pattern, v, opts)
}

func (r *routerAdapter) PATCH(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodPatch}, pattern, v, opts)
}

func (r *routerAdapter) DELETE(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodDelete}, pattern, v, opts)
}

func (r *routerAdapter) HEAD(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodHead}, pattern, v, opts)
}

func (r *routerAdapter) OPTIONS(pattern string, v ViewFunc, opts ...RouteOption) {
	r.add([]string{http.MethodOptions}, pattern, v, opts)
}

func (r *routerAdapter) Handle(methods []string, pattern string, v ViewFunc, opts ...RouteOption) {
	r.add(methods, pattern, v, opts)
}

func (r *routerAdapter) Route(prefix string, fn func(Router)) {
	fn(&routerAdapter{
		table:  r.table,
		module: r.module,
		prefix: joinPattern(r.prefix, prefix),
		errs:   r.errs,
	})
}

func (r *routerAdapter) add(methods []string, pattern string, v ViewFunc, opts []RouteOption) {
	route := &Route{
		Pattern: joinPattern(r.prefix, pattern),
		Methods: methods,
		Module:  r.module.Name(),
		module:  r.module,
		view:    v,
	}
	for _, opt := range opts {
		opt(route)
	}
	if err := r.table.Add(route); err != nil {
		*r.errs = append(*r.errs, err)
	}
}

func joinPattern(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if pattern == "" || pattern == "/" {
		return prefix + "/"
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return prefix + pattern
}
