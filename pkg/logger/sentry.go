package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN" yaml:"dsn"`
	Environment string `env:"SENTRY_ENVIRONMENT" yaml:"environment"`
	// MinLevel determines which log levels reach Sentry (slog.LevelWarn for warnings+errors).
	MinLevel slog.Level `yaml:"-"`
}

// NewWithSentry creates a logger that writes locally and forwards warnings and
// errors to Sentry. With an empty DSN it behaves exactly like New.
// Errors create Sentry issues; warnings are stored as breadcrumb logs.
func NewWithSentry(cfg SentryConfig, opts ...Option) *slog.Logger {
	o := newOptions(opts...)
	local := o.handler()

	if cfg.DSN == "" {
		return slog.New(NewRequestHandler(local, o.extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewRequestHandler(local, o.extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(NewRequestHandler(local, o.extractors...).Tee(remote))
}
