// Package internal provides the core types and implementation of relay.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/relay" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: composition root and http.Handler; owns the event bus, route table,
//     middleware specs and renderer
//   - Module: named group of views that declares routes on a Router
//   - ViewFunc: view signature returning a Result
//   - Result: Vars (rendered with a template), Text (HTML body) or *Response
//   - Context: per-request data handed to views, hooks and middlewares
//   - MiddlewareSpec: named, ordered middleware factory
//   - RouteTable: chi-backed route resolution and reverse routing
//
// # Dispatch
//
// Every request follows the same path:
//
//	resolve route -> build context -> ProcessRequest (ascending order)
//	    -> short-circuit or Begin/view/End
//	    -> ProcessException (descending, on error)
//	    -> ProcessResponse (descending) -> send
//
// Unmatched requests skip the middleware chain and render the not-found
// template. Errors nobody handles render the error template, or a
// diagnostic page when settings.Debug is true. The request context is
// released on every path, including panics.
//
// # Modules
//
//	type Blog struct{}
//
//	func (b *Blog) Name() string { return "blog" }
//
//	func (b *Blog) Routes(r internal.Router) {
//	    r.GET("/posts/<int:id>", b.show)
//	}
//
//	func (b *Blog) show(c internal.Context) (internal.Result, error) {
//	    return internal.Vars{"id": internal.Param[int](c, "id")}, nil
//	}
//
// The view above is the endpoint "blog.show" and renders "blog/show.html".
// Closures passed as views need an explicit Name.
//
// # Context as context.Context
//
// Context embeds context.Context. Pass it directly to database calls, HTTP
// clients and event handlers; FromContext recovers it on the other side.
package internal
