// Package relay is a small request-dispatch framework for server-rendered
// Go applications.
//
// Relay turns an HTTP request into a response through a fixed pipeline:
// resolve the route, build a request context, run the configured middleware
// chain, invoke the view, wrap its result and send it. Every extension point
// is an event topic on a shared bus, so plugins can hook startup, template
// rendering and per-request setup without touching the core.
//
// # Quick Start
//
//	app, err := relay.New(
//	    relay.WithSettingsFile("settings.yaml"),
//	    relay.WithRenderer(templates.New().Static("blog/index.html", "<h1>{{title}}</h1>")),
//	    relay.WithModules(&Blog{}),
//	    relay.WithMiddleware(middlewares.RequestID(), middlewares.AccessLog()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Modules and Views
//
// A module groups views and declares their routes:
//
//	type Blog struct{}
//
//	func (b *Blog) Name() string { return "blog" }
//
//	func (b *Blog) Routes(r relay.Router) {
//	    r.GET("/", b.index)
//	    r.GET("/posts/<int:id>", b.show)
//	}
//
//	func (b *Blog) show(c relay.Context) (relay.Result, error) {
//	    return relay.Vars{"id": relay.Param[int](c, "id")}, nil
//	}
//
// Endpoints are "module.view" and are derived from the view's method name,
// so the view above is "blog.show". Use [Name] to override it and [Template]
// to choose a template other than "blog/show.html".
//
// Patterns accept chi placeholders ("{id}", "{id:[0-9]+}", "*") and typed
// converters ("<id>", "<int:id>", "<float:x>", "<uuid:id>", "<path:rest>").
// Reverse routing is available through [App.URLFor] and Context.URLFor.
//
// # Results
//
// A view returns one of:
//
//   - [Vars]: rendered with the route template
//   - [Text]: written as an HTML body
//   - *[Response]: sent as is (see [HTML], [String], [JSON], [Redirect])
//   - nil: the response prepared on the context is sent
//
// # Middleware
//
// Middlewares are registered as named specs and enabled by settings:
//
//	middlewares:
//	  - request_id
//	  - access_log:900
//
// ProcessRequest runs in ascending order and may short-circuit with a
// response. ProcessResponse and ProcessException run in descending order.
// A fresh instance is built for every request.
//
// # Errors
//
// Return [NewApplicationError] to render a specific template, an [HTTPError]
// to pick the status, or any error for a 500. Unmatched requests render the
// not-found template. With settings.Debug enabled a diagnostic page with the
// error chain and route table is shown instead.
//
// # Events
//
// Startup fires [TopicStartupInstalled], [TopicPrepareDefaultEnv],
// [TopicTemplateTagHandlers] and [TopicStartup] in that order. Each request
// fires [TopicSetLocalEnv], and every render fires [TopicPrepareTemplateEnv],
// [TopicBeforeRenderTemplate] and [TopicAfterRenderTemplate].
package relay
