// Package middlewares provides ready-made middleware specs for relay applications.
//
// Every constructor returns a relay.MiddlewareSpec. Specs are registered with
// relay.WithMiddleware and enabled, disabled or reordered by the
// "middlewares" list in settings, using the names below:
//
//	middlewares:
//	  - access_log
//	  - json_errors
//	  - request_id
//	  - cors
//	  - timeout:250
//
// Request processors run in ascending order; response and exception
// processors run in descending order. Each request gets fresh instances.
//
// # Request ID
//
// RequestID (request_id, order 100) assigns a unique ID to each request for
// tracing. It reuses an incoming X-Request-ID or generates a UUID, and echoes
// it on the final response. Use RequestIDExtractor with WithLogger for an
// automatic request_id in all logs:
//
//	app, err := relay.New(
//	    relay.WithLogger("api", middlewares.RequestIDExtractor()),
//	    relay.WithMiddleware(middlewares.RequestID()),
//	)
//
// # CORS
//
// CORS (cors, order 200) answers preflight requests before the view runs and
// adds CORS headers to every response sent to an allowed origin.
//
//	relay.WithMiddleware(
//	    middlewares.CORS(
//	        middlewares.WithAllowOrigins("https://app.example.com"),
//	        middlewares.WithAllowCredentials(),
//	    ),
//	)
//
// # Timeout
//
// Timeout (timeout, order 300) gives each request a deadline. Views pass
// GetTimeoutContext(c) to blocking calls; a deadline overrun becomes a
// TimeoutError rendered with status 503.
//
// # JSON Errors
//
// JSONErrors (json_errors, order 50) answers failed requests that accept
// JSON with an ErrorBody instead of the HTML error template. Panics are
// logged with their stack; their values never reach the client.
//
// # Access Log
//
// AccessLog (access_log, order 10) writes one log line per dispatched
// request with the status and size of the response actually sent.
package middlewares
