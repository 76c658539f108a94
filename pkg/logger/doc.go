// Package logger builds slog loggers for relay applications.
//
// It adds two things on top of log/slog: a request handler, which tags every
// record logged with a request context with the matched endpoint and module
// plus extracted values (request ID), and an optional Sentry sink for
// warnings and errors.
//
// # Basic Usage
//
//	log := logger.New(
//	    logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	    logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//
// Debug setups usually switch to the text encoding:
//
//	log := logger.New(logger.WithFormat(logger.FormatText), logger.WithLevel(slog.LevelDebug))
//
// # Sentry
//
//	log := logger.NewWithSentry(cfg.Sentry, logger.WithExtractors(extractors...))
//
// An empty DSN falls back to local-only logging, so the same code path works in
// development and production.
//
// # Request Handler
//
// [NewRequestHandler] wraps any slog.Handler. Request contexts expose their
// route under [RouteKey]; values stored on them are read by extractors:
//
//	h := logger.NewRequestHandler(slog.NewJSONHandler(os.Stderr, nil),
//	    logger.ValueExtractor(tenantKey{}, "tenant"),
//	)
//	log := slog.New(h)
package logger
