package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler encoding.
type Format string

const (
	// FormatJSON writes one JSON object per record. Default.
	FormatJSON Format = "json"
	// FormatText writes logfmt-style records, handy in debug mode.
	FormatText Format = "text"
)

// Option configures a logger built by New.
type Option func(*options)

type options struct {
	writer     io.Writer
	format     Format
	extractors []ContextExtractor
	level      slog.Level
}

// WithLevel sets the minimum level. Defaults to slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithFormat sets the output encoding.
func WithFormat(f Format) Option {
	return func(o *options) {
		if f != "" {
			o.format = f
		}
	}
}

// WithWriter sets the output destination. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithExtractors adds context extractors applied on every log call.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		writer: os.Stdout,
		format: FormatJSON,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: o.level}
	if o.format == FormatText {
		return slog.NewTextHandler(o.writer, ho)
	}
	return slog.NewJSONHandler(o.writer, ho)
}

// New creates a logger with the given options.
//
// Example:
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
func New(opts ...Option) *slog.Logger {
	o := newOptions(opts...)
	return slog.New(NewRequestHandler(o.handler(), o.extractors...))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name ("debug", "info", "warn", "error") to slog.Level.
// Unknown names map to slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
